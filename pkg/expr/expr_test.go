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
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	a = NewLeaf("a", "x")
	b = NewLeaf("b", "x")
)

func Test_Expr_01(t *testing.T) {
	check(t, "a(x) <= b(x) - 1", NewCompare("<=", a, Sub(b, NewConst(1))))
}

func Test_Expr_02(t *testing.T) {
	check(t, "a(x) >= 2*b(x)", NewCompare(">=", a, Mul(NewConst(2), b)))
}

func Test_Expr_03(t *testing.T) {
	check(t, "(a(x) + b(x))/2", Div(Add(a, b), NewConst(2)))
}

func Test_Expr_04(t *testing.T) {
	check(t, "a(x) - (b(x) - 1)", Sub(a, Sub(b, NewConst(1))))
}

func Test_Expr_05(t *testing.T) {
	check(t, "a(x) - b(x) - 1", Sub(Sub(a, b), NewConst(1)))
}

func Test_Expr_06(t *testing.T) {
	check(t, "(a(x)^b(x))^2", Pow(Pow(a, b), NewConst(2)))
}

func Test_Expr_07(t *testing.T) {
	check(t, "a(x)^b(x)^2", Pow(a, Pow(b, NewConst(2))))
}

func Test_Expr_08(t *testing.T) {
	check(t, "(-a(x))^2", Pow(NewNeg(a), NewConst(2)))
}

func Test_Expr_09(t *testing.T) {
	check(t, "-(a(x) + 1)", NewNeg(Add(a, NewConst(1))))
}

func Test_Expr_10(t *testing.T) {
	check(t, "max(sqrt(a(x)), b(x))", NewCall("max", NewCall("sqrt", a), b))
}

func Test_Expr_11(t *testing.T) {
	check(t, "a(x) + (-b(x))", Add(a, NewNeg(b)))
}

func Test_Expr_12(t *testing.T) {
	check(t, "10^a(x) - 1", Sub(Pow(NewConst(10), a), NewConst(1)))
}

func Test_Expr_Equals_01(t *testing.T) {
	e1 := NewCompare("<=", a, Sub(b, NewConst(1)))
	e2 := NewCompare("<=", NewLeaf("a", "x"), Sub(NewLeaf("b", "x"), NewConst(1)))
	assert.True(t, e1.Equals(e2))
	assert.False(t, e1.Equals(NewCompare("<", a, Sub(b, NewConst(1)))))
	assert.False(t, e1.Equals(NewCompare("<=", a, Sub(b, NewConst(2)))))
	assert.False(t, a.Equals(NewLeaf("a", "n")))
	assert.False(t, NewCall("max", a, b).Equals(NewCall("max", b, a)))
}

func Test_Expr_Leaves_01(t *testing.T) {
	e := NewCompare("<=", a, Add(NewCall("max", b, a), NewLeaf("c", "x")))
	assert.Equal(t, []string{"a", "b", "c"}, Leaves(e))
}

func check(t *testing.T, expected string, e Expr) {
	t.Helper()
	assert.Equal(t, expected, e.String())
	assert.True(t, e.Equals(e))
}
