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

// Connective describes a single entry of the propositional catalog.
type Connective struct {
	// Token used by the expressions process when printing a stack.
	Token string
	// Arity is the number of operands (1 or 2).
	Arity uint
	// Wire code used when negotiating the operator subset, or "" if the
	// connective cannot be negotiated.
	Wire string
	// Symbol used in the textual form of a formula.
	Symbol string
	// Reversed connectives write their operands in the opposite order to the
	// stack, i.e. "a b <-" is written "(b)->(a)".
	Reversed bool
}

var propositional = []Connective{
	{"~", 1, "U 0", "~", false},
	{"&", 2, "C 0", "&", false},
	{"|", 2, "C 1", "|", false},
	{"^", 2, "C 2", "^", false},
	{"->", 2, "N 0", "->", false},
}

// The expressions process prints necessary conditions using a reverse
// implication, which is not itself negotiable.
var reverseImplication = Connective{"<-", 2, "", "->", true}

// LookupConnective looks up a connective in the propositional catalog
// (including reverse implication).
func LookupConnective(token string) (*Connective, bool) {
	if token == reverseImplication.Token {
		return &reverseImplication, true
	}
	//
	for i := range propositional {
		if propositional[i].Token == token {
			return &propositional[i], true
		}
	}
	//
	return nil, false
}

// AllPropositional returns every connective which can be negotiated with the
// expressions process when searching for property conjectures, in wire order.
func AllPropositional() []string {
	tokens := make([]string, len(propositional))
	//
	for i, c := range propositional {
		tokens[i] = c.Token
	}
	//
	return tokens
}

// PropositionalWireCodes translates a restricted connective subset into its
// wire codes, in the order given.
func PropositionalWireCodes(tokens []string) ([]string, error) {
	codes := make([]string, len(tokens))
	//
	for i, token := range tokens {
		c, ok := LookupConnective(token)
		if !ok || c.Wire == "" {
			return nil, &UnknownOperatorError{token}
		}
		//
		codes[i] = c.Wire
	}
	//
	return codes, nil
}
