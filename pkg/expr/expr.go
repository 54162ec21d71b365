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
package expr

import (
	"math"
	"strconv"
	"strings"
)

// Expr represents the symbolic (displayable) form of a conjecture.  Expressions
// are immutable trees whose leaves are invariants applied to a variable, or
// constants.
type Expr interface {
	// String renders the expression using infix notation with a minimal number
	// of brackets.
	String() string
	// Equals determines whether this expression is structurally identical to
	// another.
	Equals(Expr) bool
	// Precedence of the outermost construct, used to decide where brackets are
	// needed.
	precedence() int
}

const (
	precCompare = iota + 1
	precSum
	precProduct
	precUnary
	precPower
	precAtom
)

// ============================================================================
// Leaf
// ============================================================================

// Leaf is a formal unary function, named after an invariant, applied to the
// variable denoting the object (e.g. "order(G)").
type Leaf struct {
	Name     string
	Variable string
}

// NewLeaf constructs a new invariant leaf.
func NewLeaf(name string, variable string) *Leaf {
	return &Leaf{name, variable}
}

func (p *Leaf) String() string {
	return p.Name + "(" + p.Variable + ")"
}

// Equals implementation for the Expr interface.
func (p *Leaf) Equals(other Expr) bool {
	if o, ok := other.(*Leaf); ok {
		return p.Name == o.Name && p.Variable == o.Variable
	}
	//
	return false
}

func (p *Leaf) precedence() int { return precAtom }

// ============================================================================
// Const
// ============================================================================

// Const represents a numeric constant which arose from an operator (e.g. the
// "1" in "a(x) - 1").
type Const struct {
	Value float64
}

// NewConst constructs a new constant.
func NewConst(value float64) *Const {
	return &Const{value}
}

func (p *Const) String() string {
	return strconv.FormatFloat(p.Value, 'g', -1, 64)
}

// Equals implementation for the Expr interface.
func (p *Const) Equals(other Expr) bool {
	if o, ok := other.(*Const); ok {
		return p.Value == o.Value || (math.IsNaN(p.Value) && math.IsNaN(o.Value))
	}
	//
	return false
}

func (p *Const) precedence() int { return precAtom }

// ============================================================================
// Neg
// ============================================================================

// Neg represents the arithmetic negation of an expression.
type Neg struct {
	Arg Expr
}

// NewNeg constructs a negation.
func NewNeg(arg Expr) *Neg {
	return &Neg{arg}
}

func (p *Neg) String() string {
	return "-" + bracket(p.Arg, p.Arg.precedence() <= precUnary)
}

// Equals implementation for the Expr interface.
func (p *Neg) Equals(other Expr) bool {
	if o, ok := other.(*Neg); ok {
		return p.Arg.Equals(o.Arg)
	}
	//
	return false
}

func (p *Neg) precedence() int { return precUnary }

// ============================================================================
// Binary
// ============================================================================

// Binary represents an infix arithmetic operation, where the operator is one
// of "+", "-", "*", "/" or "^".
type Binary struct {
	Op    string
	Left  Expr
	Right Expr
}

// NewBinary constructs a binary arithmetic expression.
func NewBinary(op string, left Expr, right Expr) *Binary {
	switch op {
	case "+", "-", "*", "/", "^":
		return &Binary{op, left, right}
	}
	//
	panic("unknown arithmetic operator " + op)
}

// Add constructs "left + right".
func Add(left Expr, right Expr) *Binary { return NewBinary("+", left, right) }

// Sub constructs "left - right".
func Sub(left Expr, right Expr) *Binary { return NewBinary("-", left, right) }

// Mul constructs "left*right".
func Mul(left Expr, right Expr) *Binary { return NewBinary("*", left, right) }

// Div constructs "left/right".
func Div(left Expr, right Expr) *Binary { return NewBinary("/", left, right) }

// Pow constructs "left^right".
func Pow(left Expr, right Expr) *Binary { return NewBinary("^", left, right) }

func (p *Binary) String() string {
	var (
		prec = p.precedence()
		// Power is right associative, everything else is left associative.
		lhs = bracket(p.Left, p.Left.precedence() < prec || (p.Op == "^" && p.Left.precedence() == prec))
		rhs string
	)
	//
	switch p.Op {
	case "+", "*":
		rhs = bracket(p.Right, p.Right.precedence() < prec || isNeg(p.Right))
	case "-", "/":
		rhs = bracket(p.Right, p.Right.precedence() <= prec || isNeg(p.Right))
	default:
		rhs = bracket(p.Right, p.Right.precedence() < prec)
	}
	//
	switch p.Op {
	case "+", "-":
		return lhs + " " + p.Op + " " + rhs
	default:
		return lhs + p.Op + rhs
	}
}

// Equals implementation for the Expr interface.
func (p *Binary) Equals(other Expr) bool {
	if o, ok := other.(*Binary); ok {
		return p.Op == o.Op && p.Left.Equals(o.Left) && p.Right.Equals(o.Right)
	}
	//
	return false
}

func (p *Binary) precedence() int {
	switch p.Op {
	case "+", "-":
		return precSum
	case "*", "/":
		return precProduct
	default:
		return precPower
	}
}

// ============================================================================
// Call
// ============================================================================

// Call represents a named function applied to one or more arguments (e.g.
// "sqrt(a(x))" or "max(a(x), b(x))").
type Call struct {
	Func string
	Args []Expr
}

// NewCall constructs a function application.
func NewCall(fn string, args ...Expr) *Call {
	return &Call{fn, args}
}

func (p *Call) String() string {
	var builder strings.Builder
	//
	builder.WriteString(p.Func)
	builder.WriteString("(")
	//
	for i, arg := range p.Args {
		if i != 0 {
			builder.WriteString(", ")
		}
		//
		builder.WriteString(arg.String())
	}
	//
	builder.WriteString(")")
	//
	return builder.String()
}

// Equals implementation for the Expr interface.
func (p *Call) Equals(other Expr) bool {
	if o, ok := other.(*Call); ok && p.Func == o.Func && len(p.Args) == len(o.Args) {
		for i := range p.Args {
			if !p.Args[i].Equals(o.Args[i]) {
				return false
			}
		}
		//
		return true
	}
	//
	return false
}

func (p *Call) precedence() int { return precAtom }

// ============================================================================
// Compare
// ============================================================================

// Compare represents an inequality between two expressions, where the
// operator is one of "<", "<=", ">" or ">=".  Every bound conjecture has a
// Compare at its root.
type Compare struct {
	Op    string
	Left  Expr
	Right Expr
}

// NewCompare constructs a new inequality.
func NewCompare(op string, left Expr, right Expr) *Compare {
	switch op {
	case "<", "<=", ">", ">=":
		return &Compare{op, left, right}
	}
	//
	panic("unknown comparator " + op)
}

func (p *Compare) String() string {
	lhs := bracket(p.Left, p.Left.precedence() <= precCompare)
	rhs := bracket(p.Right, p.Right.precedence() <= precCompare)
	//
	return lhs + " " + p.Op + " " + rhs
}

// Equals implementation for the Expr interface.
func (p *Compare) Equals(other Expr) bool {
	if o, ok := other.(*Compare); ok {
		return p.Op == o.Op && p.Left.Equals(o.Left) && p.Right.Equals(o.Right)
	}
	//
	return false
}

func (p *Compare) precedence() int { return precCompare }

// ============================================================================
// Helpers
// ============================================================================

// Leaves returns the names of all invariants referenced in an expression, in
// order of first occurrence.
func Leaves(e Expr) []string {
	var (
		names []string
		seen  = make(map[string]bool)
	)
	//
	walk(e, func(leaf *Leaf) {
		if !seen[leaf.Name] {
			seen[leaf.Name] = true
			names = append(names, leaf.Name)
		}
	})
	//
	return names
}

func walk(e Expr, visit func(*Leaf)) {
	switch e := e.(type) {
	case *Leaf:
		visit(e)
	case *Neg:
		walk(e.Arg, visit)
	case *Binary:
		walk(e.Left, visit)
		walk(e.Right, visit)
	case *Call:
		for _, arg := range e.Args {
			walk(arg, visit)
		}
	case *Compare:
		walk(e.Left, visit)
		walk(e.Right, visit)
	}
}

func isNeg(e Expr) bool {
	_, ok := e.(*Neg)
	return ok
}

func bracket(e Expr, needed bool) string {
	if needed {
		return "(" + e.String() + ")"
	}
	//
	return e.String()
}
