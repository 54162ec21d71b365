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

// Parse a given string into a propositional formula.  The environment
// determines the set of permitted variable names (nil permits any name).
// Connectives bind, from loosest to tightest: "->" (right associative), "|",
// "^", "&" and finally "~".
func Parse(input string, environment func(string) bool) (Formula, []SyntaxError) {
	var text = []rune(input)
	//
	tokens, err := lex(text)
	if err != nil {
		return nil, []SyntaxError{*err}
	}
	//
	parser := &parser{environment, text, tokens, 0}
	// Parse formula
	formula, errs := parser.parseImplication()
	// Check all parsed
	if len(errs) == 0 && parser.lookahead().kind != tEOF {
		return nil, parser.syntaxErrors(parser.lookahead(), "unexpected token")
	}
	//
	return formula, errs
}

type parser struct {
	environment func(string) bool
	text        []rune
	tokens      []token
	// Position within the tokens
	index int
}

func (p *parser) parseImplication() (Formula, []SyntaxError) {
	lhs, errs := p.parseLeft(IMPLIES)
	//
	if len(errs) != 0 || !p.match(tIMPLIES) {
		return lhs, errs
	}
	// Right associative
	rhs, errs := p.parseImplication()
	if len(errs) != 0 {
		return nil, errs
	}
	//
	return NewBinary(IMPLIES, lhs, rhs), nil
}

// Parse a (left associative) chain of connectives binding tighter than the
// given connective.
func (p *parser) parseLeft(looser Op) (Formula, []SyntaxError) {
	var (
		op, kind = tighter(looser)
		next     = func() (Formula, []SyntaxError) { return p.parseLeft(op) }
	)
	//
	if kind == tNOT {
		return p.parseUnary()
	}
	//
	lhs, errs := next()
	//
	for len(errs) == 0 && p.match(kind) {
		var rhs Formula
		//
		if rhs, errs = next(); len(errs) == 0 {
			lhs = NewBinary(op, lhs, rhs)
		}
	}
	//
	return lhs, errs
}

// tighter returns the connective (and its token) binding immediately tighter
// than a given one.  When there is none, the unary level is signalled by tNOT.
func tighter(op Op) (Op, uint) {
	switch op {
	case IMPLIES:
		return OR, tOR
	case OR:
		return XOR, tXOR
	case XOR:
		return AND, tAND
	default:
		return AND, tNOT
	}
}

func (p *parser) parseUnary() (Formula, []SyntaxError) {
	token := p.lookahead()
	//
	switch token.kind {
	case tNOT:
		p.index++
		//
		arg, errs := p.parseUnary()
		if len(errs) != 0 {
			return nil, errs
		}
		//
		return NewNot(arg), nil
	case tLBRACE:
		p.index++
		//
		inner, errs := p.parseImplication()
		if len(errs) != 0 {
			return nil, errs
		} else if !p.match(tRBRACE) {
			return nil, p.syntaxErrors(p.lookahead(), "expected ')'")
		}
		//
		return inner, nil
	case tIDENTIFIER:
		p.index++
		name := string(p.text[token.span.Start:token.span.End])
		//
		if p.environment != nil && !p.environment(name) {
			return nil, p.syntaxErrors(token, "unknown variable")
		}
		//
		return NewVar(name), nil
	}
	//
	return nil, p.syntaxErrors(token, "expected formula")
}

// Lookahead returns the next token.  This must exist because EOF is always
// the last token.
func (p *parser) lookahead() token {
	return p.tokens[min(p.index, len(p.tokens)-1)]
}

func (p *parser) match(kind uint) bool {
	if p.lookahead().kind == kind {
		p.index++
		return true
	}
	//
	return false
}

func (p *parser) syntaxErrors(token token, msg string) []SyntaxError {
	return []SyntaxError{{token.span, msg}}
}
