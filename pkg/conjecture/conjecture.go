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
package conjecture

import (
	"errors"
	"fmt"
	"math"

	"github.com/consensys/go-conjecture/pkg/expr"
	"github.com/consensys/go-conjecture/pkg/invariant"
	"github.com/consensys/go-conjecture/pkg/operator"
	"github.com/consensys/go-conjecture/pkg/util/collection/stack"
	"github.com/consensys/go-conjecture/pkg/value"
)

// ErrMalformed indicates a token sequence which does not describe exactly one
// expression (i.e. an operator is missing operands, or operands are left
// over).
var ErrMalformed = errors.New("malformed conjecture")

// ErrNotABound is returned when the bound value of a conjecture is requested,
// but its outermost operator is not a comparison.
var ErrNotABound = errors.New("conjecture is not a bound")

// Step is a single instruction of an evaluation plan.  A step of arity 0
// computes an invariant, whilst steps of arity 1 or 2 apply an operator to the
// values on top of the stack.
type Step[O any] struct {
	// Token from which this step was constructed.
	Token string
	// Arity of this step.
	Arity uint
	// Invariant computed (arity 0 only).
	leaf invariant.Invariant[O]
	// Operator applied (arity 1 or 2 only).
	op *operator.Operator
}

// Operator returns the operator applied by this step, or nil for a leaf.
func (s Step[O]) Operator() *operator.Operator {
	return s.op
}

// Conjecture is a numeric conjecture over a set of invariants, typically an
// upper or lower bound on the main invariant (e.g. "a(x) <= b(x) - 1").  It
// carries both a symbolic form, for display, and an evaluation plan, for
// testing against objects.  A conjecture is immutable once built.
type Conjecture[O any] struct {
	// Flattened postfix program.
	plan []Step[O]
	// Symbolic form
	expression expr.Expr
	// Replay information
	tokens   []string
	variable string
	table    *invariant.Table[O, float64]
}

// Build a conjecture from a postfix token sequence, as printed by the
// expressions process.  Each token must be either the name of an invariant in
// the table, or an operator from the numeric catalog (including comparators).
// Invariant names take precedence over operator tokens.
func Build[O any](tokens []string, variable string, table *invariant.Table[O, float64]) (*Conjecture[O], error) {
	var (
		exprs = stack.NewStack[expr.Expr](uint(len(tokens)))
		plan  = stack.NewStack[Step[O]](uint(len(tokens)))
	)
	//
	for _, token := range tokens {
		if ref, ok := table.Lookup(token); ok {
			exprs.Push(expr.NewLeaf(token, variable))
			plan.Push(Step[O]{Token: token, Arity: 0, leaf: ref})
		} else if op, ok := operator.Lookup(token); ok {
			if err := display(exprs, op); err != nil {
				return nil, err
			}
			//
			plan.Push(Step[O]{Token: token, Arity: op.Arity, op: op})
		} else {
			return nil, &operator.UnknownOperatorError{Token: token}
		}
	}
	//
	if exprs.Len() != 1 {
		return nil, fmt.Errorf("%w: %d expressions remain", ErrMalformed, exprs.Len())
	}
	//
	return &Conjecture[O]{plan.Items(), exprs.Pop(), clone(tokens), variable, table}, nil
}

// Apply the display semantics of an operator to the symbolic stack.
func display(exprs *stack.Stack[expr.Expr], op *operator.Operator) error {
	if op.Arity == 1 {
		arg, ok := exprs.TryPop()
		if !ok {
			return fmt.Errorf("%w: missing operand for %s", ErrMalformed, op.Token)
		}
		//
		exprs.Push(op.Display1(arg))
	} else {
		lhs, rhs, ok := exprs.TryPop2()
		if !ok {
			return fmt.Errorf("%w: missing operands for %s", ErrMalformed, op.Token)
		}
		//
		exprs.Push(op.Display2(lhs, rhs))
	}
	//
	return nil
}

// Evaluate this conjecture on a given object.  Normally, comparisons evaluate
// to 1 (holds) or 0 (does not hold).  When the bound value is requested, each
// comparison instead evaluates to its right-hand side rounded to 6 decimal
// places; in this case the outermost operator must be a comparison.
//
// Arithmetic never fails: edge cases produce infinities or NaN.  An error is
// returned only when an invariant itself could not be computed, in which case
// it is a *value.ResolutionError.
func (p *Conjecture[O]) Evaluate(o O, bound bool) (float64, error) {
	if bound && !p.IsBound() {
		return math.NaN(), ErrNotABound
	}
	//
	var (
		vals = make([]float64, len(p.plan))
		sp   = 0
	)
	//
	for _, step := range p.plan {
		switch step.Arity {
		case 0:
			v, err := value.Compute(step.leaf, o)
			if err != nil {
				return math.NaN(), err
			}
			//
			vals[sp] = v
			sp++
		case 1:
			vals[sp-1] = step.op.Unary(vals[sp-1])
		default:
			// Right operand is on top
			left, right := vals[sp-2], vals[sp-1]
			//
			if bound && step.op.IsComparison() {
				vals[sp-2] = operator.Round6(right)
			} else {
				vals[sp-2] = step.op.Binary(left, right)
			}
			//
			sp--
		}
	}
	//
	return vals[0], nil
}

// Holds checks whether this conjecture holds for a given object.
func (p *Conjecture[O]) Holds(o O) (bool, error) {
	v, err := p.Evaluate(o, false)
	//
	return err == nil && v != 0 && !math.IsNaN(v), err
}

// BoundValue returns the value this conjecture bounds the main invariant by
// for a given object (i.e. the right-hand side of its comparison).
func (p *Conjecture[O]) BoundValue(o O) (float64, error) {
	return p.Evaluate(o, true)
}

// IsBound checks whether the outermost operator of this conjecture is a
// comparison.
func (p *Conjecture[O]) IsBound() bool {
	last := p.plan[len(p.plan)-1]
	//
	return last.op != nil && last.op.IsComparison()
}

// Expression returns the symbolic form of this conjecture.
func (p *Conjecture[O]) Expression() expr.Expr {
	return p.expression
}

// Plan returns a copy of the evaluation plan of this conjecture.
func (p *Conjecture[O]) Plan() []Step[O] {
	return clone(p.plan)
}

// Tokens returns the postfix tokens this conjecture was built from.
func (p *Conjecture[O]) Tokens() []string {
	return clone(p.tokens)
}

// Equals checks whether two conjectures have both the same plan and the same
// symbolic form.
func (p *Conjecture[O]) Equals(other *Conjecture[O]) bool {
	if len(p.plan) != len(other.plan) {
		return false
	}
	//
	for i, step := range p.plan {
		if step.Token != other.plan[i].Token || step.Arity != other.plan[i].Arity {
			return false
		}
	}
	//
	return p.expression.Equals(other.expression)
}

func (p *Conjecture[O]) String() string {
	return p.expression.String()
}

// Record returns the information needed to rebuild this conjecture later.
func (p *Conjecture[O]) Record() Record {
	return Record{invariant.Invariants.String(), clone(p.tokens), p.variable, p.table.ID()}
}

func clone[T any](items []T) []T {
	return append(make([]T, 0, len(items)), items...)
}
