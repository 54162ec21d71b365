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
	"strconv"
)

// Exponents larger than this are rejected, as the expressions process does,
// rather than being handed to the power routine.
const maxExponent = 2147483647

// Divide computes left / right, where division by zero gives +Inf, -Inf or NaN
// depending on the sign of left.
func Divide(left, right float64) float64 {
	if right == 0 {
		switch {
		case left > 0:
			return math.Inf(1)
		case left < 0:
			return math.Inf(-1)
		default:
			return math.NaN()
		}
	}
	//
	return left / right
}

// Power computes left ^ right.  The special cases are checked in order and
// mirror the C pow function used by the expressions process, so that both
// sides agree on the significance of a conjecture.
func Power(left, right float64) float64 {
	switch {
	case math.IsInf(right, 1):
		if left < -1 || left > 1 {
			return math.Inf(1)
		} else if -1 < left && left < 1 {
			return 0
		}
		// left is ±1 (or NaN)
		return 1
	case math.IsInf(right, -1):
		if left < -1 || left > 1 {
			return 0
		} else if -1 < left && left < 1 {
			return math.Inf(1)
		}
		//
		return 1
	case left == 0 && right < 0:
		return math.Inf(1)
	case math.IsInf(left, -1) && !isInteger(right):
		return math.Inf(1)
	case left < 0 && !isInteger(right):
		return math.NaN()
	case right > maxExponent:
		return math.NaN()
	}
	//
	return math.Pow(left, right)
}

// Reciprocal computes 1/x, where the reciprocal of zero (of either sign) is
// +Inf.
func Reciprocal(x float64) float64 {
	if x == 0 {
		return math.Inf(1)
	}
	//
	return 1.0 / x
}

// Maximum returns right only when it is strictly greater than left.  Hence, a
// NaN on the left is preserved, whilst a NaN on the right is ignored.
func Maximum(left, right float64) float64 {
	if right > left {
		return right
	}
	//
	return left
}

// Minimum returns right only when it is strictly less than left.
func Minimum(left, right float64) float64 {
	if right < left {
		return right
	}
	//
	return left
}

// Round6 rounds a value to 6 decimal places, using the exact decimal expansion
// of the value with ties going to even.  Comparators apply this to both
// operands to absorb floating point noise.
func Round6(x float64) float64 {
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return x
	}
	//
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 6, 64), 64)
	if err != nil {
		// Formatting a finite float always parses back.
		panic(err)
	}
	//
	return r
}

func isInteger(x float64) bool {
	return !math.IsInf(x, 0) && x == math.Trunc(x)
}
