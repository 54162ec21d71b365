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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Parse_01(t *testing.T) {
	checkRoundTrip(t, "(p)&(q)")
}

func Test_Parse_02(t *testing.T) {
	checkRoundTrip(t, "(q)->(p)")
}

func Test_Parse_03(t *testing.T) {
	checkRoundTrip(t, "(~(is_even))->(is_prime)")
}

func Test_Parse_04(t *testing.T) {
	checkRoundTrip(t, "((a)|(b))^(~(~(c)))")
}

func Test_Parse_05(t *testing.T) {
	checkRoundTrip(t, "p")
}

func Test_Parse_06(t *testing.T) {
	checkParse(t, "p & q | r", "((p)&(q))|(r)")
}

func Test_Parse_07(t *testing.T) {
	checkParse(t, "p -> q -> r", "(p)->((q)->(r))")
}

func Test_Parse_08(t *testing.T) {
	checkParse(t, "~p ^ q & r", "(~(p))^((q)&(r))")
}

func Test_Parse_09(t *testing.T) {
	checkParse(t, "¬p ∧ q → r ∨ s", "((~(p))&(q))->((r)|(s))")
}

func Test_Parse_Invalid_01(t *testing.T) {
	checkInvalid(t, "(p&q")
}

func Test_Parse_Invalid_02(t *testing.T) {
	checkInvalid(t, "p & ")
}

func Test_Parse_Invalid_03(t *testing.T) {
	checkInvalid(t, "p - q")
}

func Test_Parse_Invalid_04(t *testing.T) {
	checkInvalid(t, "p q")
}

func Test_Parse_Invalid_05(t *testing.T) {
	_, errs := Parse("(p)&(r)", func(name string) bool { return name == "p" || name == "q" })
	require.Len(t, errs, 1)
	assert.Equal(t, "unknown variable", errs[0].Msg)
	assert.Equal(t, Span{5, 6}, errs[0].Span)
}

func Test_Evaluate_01(t *testing.T) {
	checkTruthTable(t, "(p)&(q)", false, false, false, true)
	checkTruthTable(t, "(p)|(q)", false, true, true, true)
	checkTruthTable(t, "(p)^(q)", false, true, true, false)
	checkTruthTable(t, "(p)->(q)", true, true, false, true)
	checkTruthTable(t, "~((p)&(q))", true, true, true, false)
}

func Test_Evaluate_02(t *testing.T) {
	f, errs := Parse("(p)&(q)", nil)
	require.Empty(t, errs)
	//
	_, err := f.Evaluate(map[string]bool{"p": true})
	assert.True(t, errors.Is(err, ErrUnboundVariable))
}

func Test_Variables_01(t *testing.T) {
	f, errs := Parse("((b)&(a))->(~(b))", nil)
	require.Empty(t, errs)
	assert.Equal(t, []string{"b", "a"}, Variables(f))
}

func Test_Equals_01(t *testing.T) {
	f1, _ := Parse("(p)&(q)", nil)
	f2 := NewBinary(AND, NewVar("p"), NewVar("q"))
	f3 := NewBinary(AND, NewVar("q"), NewVar("p"))
	//
	assert.True(t, f1.Equals(f2))
	assert.False(t, f1.Equals(f3))
	assert.False(t, f1.Equals(NewNot(f2)))
}

func checkRoundTrip(t *testing.T, input string) {
	t.Helper()
	checkParse(t, input, input)
}

func checkParse(t *testing.T, input string, expected string) {
	t.Helper()
	//
	f, errs := Parse(input, nil)
	require.Empty(t, errs, input)
	assert.Equal(t, expected, f.String())
}

func checkInvalid(t *testing.T, input string) {
	t.Helper()
	//
	_, errs := Parse(input, nil)
	assert.NotEmpty(t, errs, input)
}

// Check a formula over p and q, where the expected values are given for
// (p,q) = FF, FT, TF, TT.
func checkTruthTable(t *testing.T, input string, expected ...bool) {
	t.Helper()
	//
	f, errs := Parse(input, nil)
	require.Empty(t, errs)
	//
	for i, e := range expected {
		env := map[string]bool{"p": i&2 != 0, "q": i&1 != 0}
		val, err := f.Evaluate(env)
		require.NoError(t, err)
		assert.Equal(t, e, val, "%s with %v", input, env)
	}
}
