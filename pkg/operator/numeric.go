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
	"math"

	"github.com/consensys/go-conjecture/pkg/expr"
)

// The numbering of the wire codes is fixed by the expressions process.  New
// operators must be appended, never inserted.
var numeric = []Operator{
	// Unary operators
	unary("-1", "U 0", func(x float64) float64 { return x - 1 },
		func(e expr.Expr) expr.Expr { return expr.Sub(e, expr.NewConst(1)) }),
	unary("+1", "U 1", func(x float64) float64 { return x + 1 },
		func(e expr.Expr) expr.Expr { return expr.Add(e, expr.NewConst(1)) }),
	unary("*2", "U 2", func(x float64) float64 { return x * 2 },
		func(e expr.Expr) expr.Expr { return expr.Mul(expr.NewConst(2), e) }),
	unary("/2", "U 3", func(x float64) float64 { return x * 0.5 },
		func(e expr.Expr) expr.Expr { return expr.Div(e, expr.NewConst(2)) }),
	unary("^2", "U 4", func(x float64) float64 { return x * x },
		func(e expr.Expr) expr.Expr { return expr.Pow(e, expr.NewConst(2)) }),
	unary("-()", "U 5", func(x float64) float64 { return -x },
		func(e expr.Expr) expr.Expr { return expr.NewNeg(e) }),
	unary("1/", "U 6", Reciprocal,
		func(e expr.Expr) expr.Expr { return expr.Div(expr.NewConst(1), e) }),
	function("sqrt", "U 7", math.Sqrt),
	function("ln", "U 8", math.Log),
	function("log10", "U 9", math.Log10),
	function("exp", "U 10", math.Exp),
	unary("10^", "U 11", func(x float64) float64 { return math.Pow(10, x) },
		func(e expr.Expr) expr.Expr { return expr.Pow(expr.NewConst(10), e) }),
	function("ceil", "U 12", math.Ceil),
	function("floor", "U 13", math.Floor),
	function("abs", "U 14", math.Abs),
	function("sin", "U 15", math.Sin),
	function("cos", "U 16", math.Cos),
	function("tan", "U 17", math.Tan),
	function("asin", "U 18", math.Asin),
	function("acos", "U 19", math.Acos),
	function("atan", "U 20", math.Atan),
	function("sinh", "U 21", math.Sinh),
	function("cosh", "U 22", math.Cosh),
	function("tanh", "U 23", math.Tanh),
	function("asinh", "U 24", math.Asinh),
	function("acosh", "U 25", math.Acosh),
	function("atanh", "U 26", math.Atanh),
	// Commutative binary operators
	binary("+", "C 0", func(l, r float64) float64 { return l + r }, infix("+")),
	binary("*", "C 1", func(l, r float64) float64 { return l * r }, infix("*")),
	binary("max", "C 2", Maximum, call2("max")),
	binary("min", "C 3", Minimum, call2("min")),
	// Non-commutative binary operators
	binary("-", "N 0", func(l, r float64) float64 { return l - r }, infix("-")),
	binary("/", "N 1", Divide, infix("/")),
	binary("^", "N 2", Power, infix("^")),
}

// Comparators have no wire code, since the expressions process chooses the
// comparator itself (from --leq / --geq).
var comparators = []Operator{
	comparator("<", func(l, r float64) bool { return l < r }),
	comparator("<=", func(l, r float64) bool { return l <= r }),
	comparator(">", func(l, r float64) bool { return l > r }),
	comparator(">=", func(l, r float64) bool { return l >= r }),
}

func unary(token string, wire string, fn func(float64) float64, display func(expr.Expr) expr.Expr) Operator {
	return Operator{Token: token, Arity: 1, Kind: Numeric, Wire: wire, Unary: fn, Display1: display}
}

// Function operators are displayed as a call of the same name.
func function(token string, wire string, fn func(float64) float64) Operator {
	return unary(token, wire, fn, func(e expr.Expr) expr.Expr { return expr.NewCall(token, e) })
}

func binary(token string, wire string, fn func(float64, float64) float64,
	display func(expr.Expr, expr.Expr) expr.Expr) Operator {
	return Operator{Token: token, Arity: 2, Kind: Numeric, Wire: wire, Binary: fn, Display2: display}
}

func infix(op string) func(expr.Expr, expr.Expr) expr.Expr {
	return func(l, r expr.Expr) expr.Expr { return expr.NewBinary(op, l, r) }
}

func call2(name string) func(expr.Expr, expr.Expr) expr.Expr {
	return func(l, r expr.Expr) expr.Expr { return expr.NewCall(name, l, r) }
}

func comparator(token string, cmp func(float64, float64) bool) Operator {
	fn := func(l, r float64) float64 {
		if cmp(Round6(l), Round6(r)) {
			return 1
		}
		//
		return 0
	}
	//
	return Operator{Token: token, Arity: 2, Kind: Comparison, Binary: fn,
		Display2: func(l, r expr.Expr) expr.Expr { return expr.NewCompare(token, l, r) }}
}
