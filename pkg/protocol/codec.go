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
package protocol

import (
	"math"
	"strconv"
	"strings"

	"github.com/consensys/go-conjecture/pkg/value"
)

// Sentinels written in place of values which could not be resolved.
const (
	NumericError       = "NaN"
	PropositionalError = "-1"
)

// EncodeValue encodes a numeric cell for the wire.  Finite values use the
// shortest representation which reads back exactly, always with a decimal
// point or exponent (e.g. "2.0", "0.1", "1e-05", "1.5e+16").
func EncodeValue(cell value.Cell[float64]) string {
	if !cell.Ok() {
		return NumericError
	}
	//
	return EncodeFloat(cell.Value)
}

// EncodeFloat encodes a single floating point value for the wire.
func EncodeFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return NumericError
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	//
	var text string
	//
	if abs := math.Abs(v); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		text = strconv.FormatFloat(v, 'e', -1, 64)
	} else {
		text = strconv.FormatFloat(v, 'f', -1, 64)
	}
	//
	if !strings.ContainsAny(text, ".e") {
		text += ".0"
	}
	//
	return text
}

// EncodeTruth encodes a propositional cell for the wire.
func EncodeTruth(cell value.Cell[bool]) string {
	switch {
	case !cell.Ok():
		return PropositionalError
	case cell.Value:
		return "1"
	default:
		return "0"
	}
}
