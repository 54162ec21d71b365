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
	"fmt"
	"unicode"
)

// Span identifies a contiguous range of characters [start, end) in the text
// being parsed.
type Span struct {
	Start int
	End   int
}

// SyntaxError associates an error message with a given span of the text.
type SyntaxError struct {
	Span Span
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Span.Start, e.Span.End, e.Msg)
}

// These token kinds are recognised by the lexer.
const (
	tEOF uint = iota
	tWHITESPACE
	tLBRACE
	tRBRACE
	tNOT
	tAND
	tOR
	tXOR
	tIMPLIES
	tIDENTIFIER
)

type token struct {
	kind uint
	span Span
}

// scanner determines how many characters at the start of the input it
// accepts, where 0 means no match.
type scanner func(items []rune) int

type lexRule struct {
	scanner scanner
	kind    uint
}

func unit(chars ...rune) scanner {
	return func(items []rune) int {
		if len(items) < len(chars) {
			return 0
		}
		//
		for i, c := range chars {
			if items[i] != c {
				return 0
			}
		}
		//
		return len(chars)
	}
}

func satisfies(predicate func(rune) bool) scanner {
	return func(items []rune) int {
		if len(items) > 0 && predicate(items[0]) {
			return 1
		}
		//
		return 0
	}
}

func many(acceptor scanner) scanner {
	return func(items []rune) int {
		index := 0
		//
		for index < len(items) {
			n := acceptor(items[index:])
			if n == 0 {
				break
			}
			//
			index += n
		}
		//
		return index
	}
}

func eof(items []rune) int {
	if len(items) == 0 {
		return 1
	}
	//
	return 0
}

// Property names are stripped of whitespace before they reach a formula, so
// an identifier is any run of letters, digits and a few punctuation marks.
func isIdentifierChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '\'' || r == '.'
}

// Longer operators must come before their prefixes.
var rules = []lexRule{
	{many(satisfies(unicode.IsSpace)), tWHITESPACE},
	{unit('('), tLBRACE},
	{unit(')'), tRBRACE},
	{unit('~'), tNOT},
	{unit('¬'), tNOT},
	{unit('&'), tAND},
	{unit('∧'), tAND},
	{unit('|'), tOR},
	{unit('∨'), tOR},
	{unit('^'), tXOR},
	{unit('-', '>'), tIMPLIES},
	{unit('→'), tIMPLIES},
	{many(satisfies(isIdentifierChar)), tIDENTIFIER},
	{eof, tEOF},
}

// lex splits the input into tokens, discarding whitespace.  The final token is
// always tEOF, unless lexing failed in which case the error identifies the
// offending character.
func lex(input []rune) ([]token, *SyntaxError) {
	var tokens []token
	//
	for index := 0; index <= len(input); {
		matched := false
		//
		for _, r := range rules {
			if n := r.scanner(input[index:]); n > 0 {
				end := min(len(input), index+n)
				//
				if r.kind != tWHITESPACE {
					tokens = append(tokens, token{r.kind, Span{index, end}})
				}
				//
				index += n
				matched = true
				//
				break
			}
		}
		//
		if !matched {
			return nil, &SyntaxError{Span{index, index + 1}, "unknown text encountered"}
		}
	}
	//
	return tokens, nil
}
