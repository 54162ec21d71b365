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
package operator

import (
	"errors"
	"fmt"

	"github.com/consensys/go-conjecture/pkg/expr"
)

// Kind classifies an operator by the kind of value it produces.
type Kind uint8

const (
	// Numeric operators map reals to reals.
	Numeric Kind = iota
	// Comparison operators relate two reals and form the root of a bound.
	Comparison
	// Boolean operators are the propositional connectives.
	Boolean
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Comparison:
		return "comparison"
	case Boolean:
		return "boolean"
	}
	//
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ErrUnknownOperator is matched (via errors.Is) by every UnknownOperatorError.
var ErrUnknownOperator = errors.New("unknown operator")

// UnknownOperatorError reports a token which matches neither an invariant nor
// any operator of the relevant catalog.
type UnknownOperatorError struct {
	Token string
}

func (e *UnknownOperatorError) Error() string {
	return fmt.Sprintf("unknown element %q", e.Token)
}

// Is allows errors.Is(err, ErrUnknownOperator).
func (e *UnknownOperatorError) Is(target error) bool {
	return target == ErrUnknownOperator
}

// Operator describes a single entry of the numeric catalog.  Each operator has
// a numeric semantics (used when evaluating a conjecture), a display semantics
// (used when constructing its symbolic form) and, unless it is a comparator, a
// code understood by the expressions process.
type Operator struct {
	// Token used by the expressions process when printing a stack.
	Token string
	// Arity is the number of operands (1 or 2).
	Arity uint
	// Kind of the operator.
	Kind Kind
	// Wire code used when negotiating the operator subset, or "" if the
	// operator cannot be negotiated.
	Wire string
	// Unary numeric semantics (arity 1 only)
	Unary func(float64) float64
	// Binary numeric semantics (arity 2 only).  For comparators this returns
	// 1 or 0.
	Binary func(float64, float64) float64
	// Display semantics (arity 1 only)
	Display1 func(expr.Expr) expr.Expr
	// Display semantics (arity 2 only)
	Display2 func(expr.Expr, expr.Expr) expr.Expr
}

// IsComparison checks whether this operator is one of "<", "<=", ">", ">=".
func (p *Operator) IsComparison() bool {
	return p.Kind == Comparison
}

// Lookup an operator in the numeric catalog (including comparators).
func Lookup(token string) (*Operator, bool) {
	op, ok := numericByToken[token]
	return op, ok
}

// AllNumeric returns every operator which can be negotiated with the
// expressions process when searching for bounds, in wire order.
func AllNumeric() []string {
	tokens := make([]string, len(numeric))
	//
	for i, op := range numeric {
		tokens[i] = op.Token
	}
	//
	return tokens
}

// NumericWireCodes translates a restricted operator subset into the wire codes
// which are sent to the expressions process.  The codes are returned in the
// order the tokens were given.
func NumericWireCodes(tokens []string) ([]string, error) {
	codes := make([]string, len(tokens))
	//
	for i, token := range tokens {
		op, ok := numericByToken[token]
		if !ok || op.Wire == "" {
			return nil, &UnknownOperatorError{token}
		}
		//
		codes[i] = op.Wire
	}
	//
	return codes, nil
}

var numericByToken map[string]*Operator

func init() {
	numericByToken = make(map[string]*Operator, len(numeric)+len(comparators))
	//
	for i := range numeric {
		numericByToken[numeric[i].Token] = &numeric[i]
	}
	//
	for i := range comparators {
		numericByToken[comparators[i].Token] = &comparators[i]
	}
}
