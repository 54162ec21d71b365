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
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidRequest indicates a request whose parts are inconsistent with
// each other.
var ErrInvalidRequest = errors.New("invalid request")

// Mode determines which kind of search the expressions process performs.
type Mode uint8

const (
	// Numeric searches for bounds on a main invariant.
	Numeric Mode = iota
	// Propositional searches for conditions on a main property.
	Propositional
)

func (m Mode) String() string {
	if m == Propositional {
		return "propositional"
	}
	//
	return "numeric"
}

// Request describes everything sent to the expressions process during one
// search.  All values are already encoded for the wire.
type Request struct {
	Mode Mode
	// Upper requests upper bounds (numeric mode) or sufficient conditions
	// (propositional mode); otherwise lower bounds or necessary conditions
	// are requested.
	Upper bool
	// TimeLimit for the search, in seconds.
	TimeLimit uint
	// Operators are wire codes of the operators to use, or nil for all.
	Operators []string
	// Names of the invariants (or properties), in matrix column order.
	Names []string
	// Main is the (0-indexed) column being bounded.
	Main uint
	// Theory holds one line per object, or is nil when there is no theory.
	Theory []string
	// Matrix holds one row per object, with one value per name.
	Matrix [][]string
	// Verbose asks the process to report its progress on standard error.
	Verbose bool
}

// Validate checks the consistency of a request.
func (r *Request) Validate() error {
	switch {
	case r.Main >= uint(len(r.Names)):
		return fmt.Errorf("%w: main index %d out of range", ErrInvalidRequest, r.Main)
	case r.Theory != nil && len(r.Theory) != len(r.Matrix):
		return fmt.Errorf("%w: %d theory lines for %d objects", ErrInvalidRequest, len(r.Theory), len(r.Matrix))
	}
	//
	for i, row := range r.Matrix {
		if len(row) != len(r.Names) {
			return fmt.Errorf("%w: object %d has %d values for %d names", ErrInvalidRequest, i, len(row), len(r.Names))
		}
	}
	//
	return nil
}

// Args constructs the command line arguments for a given request.
func Args(r *Request) []string {
	var flags = "-c"
	//
	if r.Mode == Propositional {
		flags = "-pc"
	}
	//
	if r.Verbose {
		flags += "v"
	}
	//
	if r.Theory != nil {
		flags += "t"
	}
	//
	args := []string{flags, "--dalmatian"}
	//
	if r.Operators == nil {
		args = append(args, "--all-operators")
	}
	//
	args = append(args, "--time", strconv.FormatUint(uint64(r.TimeLimit), 10), "--invariant-names", "--output", "stack")
	//
	switch {
	case r.Mode == Numeric && r.Upper:
		args = append(args, "--leq")
	case r.Mode == Numeric:
		args = append(args, "--geq")
	case r.Upper:
		args = append(args, "--sufficient")
	default:
		args = append(args, "--necessary")
	}
	//
	return append(args, "--allowed-skips", "0")
}
