// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package logic

import (
	"errors"
	"fmt"
)

// ErrUnboundVariable is returned when a formula is evaluated without a truth
// value for one of its variables.
var ErrUnboundVariable = errors.New("unbound variable")

// Formula represents a propositional formula over named variables.
type Formula interface {
	// Evaluate this formula under a given assignment of truth values.
	Evaluate(env map[string]bool) (bool, error)
	// Equals determines whether this formula is structurally identical to
	// another.
	Equals(Formula) bool
	// String returns the fully bracketed textual form, e.g. "(p)&(~(q))".
	String() string
	//
	visit(func(string))
}

// Op identifies a binary connective.
type Op uint8

const (
	// AND is logical conjunction.
	AND Op = iota
	// OR is logical disjunction.
	OR
	// XOR is exclusive disjunction.
	XOR
	// IMPLIES is material implication.
	IMPLIES
)

// Symbol returns the textual form of a connective.
func (op Op) Symbol() string {
	switch op {
	case AND:
		return "&"
	case OR:
		return "|"
	case XOR:
		return "^"
	case IMPLIES:
		return "->"
	}
	//
	panic(fmt.Sprintf("unknown connective %d", op))
}

// OpFromSymbol is the inverse of Symbol.
func OpFromSymbol(symbol string) (Op, bool) {
	switch symbol {
	case "&":
		return AND, true
	case "|":
		return OR, true
	case "^":
		return XOR, true
	case "->":
		return IMPLIES, true
	}
	//
	return 0, false
}

// Var is a propositional variable.
type Var struct {
	Name string
}

// Not is the negation of a formula.
type Not struct {
	Arg Formula
}

// Binary is a formula joined by a binary connective.
type Binary struct {
	Op    Op
	Left  Formula
	Right Formula
}

// NewVar constructs a variable.
func NewVar(name string) *Var { return &Var{name} }

// NewNot constructs a negation.
func NewNot(arg Formula) *Not { return &Not{arg} }

// NewBinary constructs a binary formula.
func NewBinary(op Op, left Formula, right Formula) *Binary { return &Binary{op, left, right} }

// Evaluate implementation for Formula interface.
func (p *Var) Evaluate(env map[string]bool) (bool, error) {
	if val, ok := env[p.Name]; ok {
		return val, nil
	}
	//
	return false, fmt.Errorf("%w %q", ErrUnboundVariable, p.Name)
}

// Evaluate implementation for Formula interface.
func (p *Not) Evaluate(env map[string]bool) (bool, error) {
	val, err := p.Arg.Evaluate(env)
	return !val, err
}

// Evaluate implementation for Formula interface.  Both sides are always
// evaluated, so that an unbound variable is reported regardless of the other
// operand.
func (p *Binary) Evaluate(env map[string]bool) (bool, error) {
	lhs, err := p.Left.Evaluate(env)
	if err != nil {
		return false, err
	}
	//
	rhs, err := p.Right.Evaluate(env)
	if err != nil {
		return false, err
	}
	//
	switch p.Op {
	case AND:
		return lhs && rhs, nil
	case OR:
		return lhs || rhs, nil
	case XOR:
		return lhs != rhs, nil
	default:
		return !lhs || rhs, nil
	}
}

// Equals implementation for Formula interface.
func (p *Var) Equals(other Formula) bool {
	o, ok := other.(*Var)
	return ok && p.Name == o.Name
}

// Equals implementation for Formula interface.
func (p *Not) Equals(other Formula) bool {
	o, ok := other.(*Not)
	return ok && p.Arg.Equals(o.Arg)
}

// Equals implementation for Formula interface.
func (p *Binary) Equals(other Formula) bool {
	o, ok := other.(*Binary)
	return ok && p.Op == o.Op && p.Left.Equals(o.Left) && p.Right.Equals(o.Right)
}

func (p *Var) String() string {
	return p.Name
}

func (p *Not) String() string {
	return "~(" + p.Arg.String() + ")"
}

func (p *Binary) String() string {
	return "(" + p.Left.String() + ")" + p.Op.Symbol() + "(" + p.Right.String() + ")"
}

func (p *Var) visit(fn func(string)) { fn(p.Name) }

func (p *Not) visit(fn func(string)) { p.Arg.visit(fn) }

func (p *Binary) visit(fn func(string)) {
	p.Left.visit(fn)
	p.Right.visit(fn)
}

// Variables returns the distinct variables of a formula in order of first
// occurrence.
func Variables(f Formula) []string {
	var (
		names []string
		seen  = make(map[string]bool)
	)
	//
	f.visit(func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	})
	//
	return names
}
