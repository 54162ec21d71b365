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
	"fmt"
	"strings"
	"unicode"

	"github.com/consensys/go-conjecture/pkg/invariant"
	"github.com/consensys/go-conjecture/pkg/logic"
	"github.com/consensys/go-conjecture/pkg/operator"
	"github.com/consensys/go-conjecture/pkg/util/collection/stack"
	"github.com/consensys/go-conjecture/pkg/value"
)

// PropertyConjecture is a propositional conjecture over a set of properties,
// typically a sufficient or necessary condition for the main property (e.g.
// "(is_prime)->(is_odd)").
type PropertyConjecture[O any] struct {
	formula logic.Formula
	// Properties used by the formula, indexed by variable name.
	calculators map[string]invariant.Property[O]
	// Replay information
	tokens []string
	table  *invariant.Table[O, bool]
}

// BuildProperty builds a property conjecture from a postfix token sequence, as
// printed by the expressions process.  Each token must be either the name of a
// property in the table, or a propositional connective.
func BuildProperty[O any](tokens []string, table *invariant.Table[O, bool]) (*PropertyConjecture[O], error) {
	var (
		fragments   = stack.NewStack[logic.Formula](uint(len(tokens)))
		calculators = make(map[string]invariant.Property[O])
	)
	//
	for _, token := range tokens {
		if ref, ok := table.Lookup(token); ok {
			name := stripSpace(token)
			calculators[name] = ref
			fragments.Push(logic.NewVar(name))
		} else if c, ok := operator.LookupConnective(token); ok {
			if err := connect(fragments, c); err != nil {
				return nil, err
			}
		} else {
			return nil, &operator.UnknownOperatorError{Token: token}
		}
	}
	//
	if fragments.Len() != 1 {
		return nil, fmt.Errorf("%w: %d formulas remain", ErrMalformed, fragments.Len())
	}
	//
	return &PropertyConjecture[O]{fragments.Pop(), calculators, clone(tokens), table}, nil
}

// connect applies a connective to the topmost fragment(s), with the left
// operand written first unless the connective is reversed.
func connect(fragments *stack.Stack[logic.Formula], c *operator.Connective) error {
	if c.Arity == 1 {
		arg, ok := fragments.TryPop()
		if !ok {
			return fmt.Errorf("%w: missing operand for %s", ErrMalformed, c.Token)
		}
		//
		fragments.Push(logic.NewNot(arg))
		//
		return nil
	}
	//
	lhs, rhs, ok := fragments.TryPop2()
	if !ok {
		return fmt.Errorf("%w: missing operands for %s", ErrMalformed, c.Token)
	} else if c.Reversed {
		lhs, rhs = rhs, lhs
	}
	//
	op, ok := logic.OpFromSymbol(c.Symbol)
	if !ok {
		return fmt.Errorf("%w: no connective %s", ErrMalformed, c.Symbol)
	}
	//
	fragments.Push(logic.NewBinary(op, lhs, rhs))
	//
	return nil
}

// Evaluate this conjecture on a given object, by computing each property it
// uses and evaluating the formula.  An error is returned only when a property
// could not be computed, in which case it is a *value.ResolutionError.
func (p *PropertyConjecture[O]) Evaluate(o O) (bool, error) {
	env := make(map[string]bool, len(p.calculators))
	//
	for _, name := range logic.Variables(p.formula) {
		v, err := value.Compute(p.calculators[name], o)
		if err != nil {
			return false, err
		}
		//
		env[name] = v
	}
	//
	return p.formula.Evaluate(env)
}

// Formula returns the propositional formula of this conjecture.
func (p *PropertyConjecture[O]) Formula() logic.Formula {
	return p.formula
}

// Tokens returns the postfix tokens this conjecture was built from.
func (p *PropertyConjecture[O]) Tokens() []string {
	return clone(p.tokens)
}

// Equals checks whether two property conjectures have the same formula.
func (p *PropertyConjecture[O]) Equals(other *PropertyConjecture[O]) bool {
	return p.formula.Equals(other.formula)
}

func (p *PropertyConjecture[O]) String() string {
	return p.formula.String()
}

// Record returns the information needed to rebuild this conjecture later.
func (p *PropertyConjecture[O]) Record() Record {
	return Record{Kind: invariant.Properties.String(), Tokens: clone(p.tokens), Table: p.table.ID()}
}

// AsProperty turns this conjecture into a property in its own right, e.g. so
// that it can be given as part of the theory of a later search.
func (p *PropertyConjecture[O]) AsProperty(name string) invariant.Property[O] {
	return invariant.New(name, p.Evaluate)
}

func stripSpace(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		//
		return r
	}, name)
}
