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
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/consensys/go-conjecture/pkg/invariant"
)

// ErrTableMismatch indicates an attempt to rebuild a conjecture against a
// table other than the one it was found with.
var ErrTableMismatch = errors.New("table does not match record")

// Record holds everything needed to rebuild a conjecture, given the table of
// invariants (or properties) it was found with.  This allows conjectures to be
// persisted without rerunning a search.
type Record struct {
	// Kind is either "invariant" or "property".
	Kind string `json:"kind"`
	// Tokens in postfix order.
	Tokens []string `json:"tokens"`
	// Variable used in the symbolic form (numeric conjectures only).
	Variable string `json:"variable,omitempty"`
	// Table identifies the table the conjecture was built against.
	Table string `json:"table"`
}

// Rebuild a numeric conjecture from its record.
func Rebuild[O any](record Record, table *invariant.Table[O, float64]) (*Conjecture[O], error) {
	if err := checkRecord(record, table.Kind(), table.ID()); err != nil {
		return nil, err
	}
	//
	return Build(record.Tokens, record.Variable, table)
}

// RebuildProperty rebuilds a property conjecture from its record.
func RebuildProperty[O any](record Record, table *invariant.Table[O, bool]) (*PropertyConjecture[O], error) {
	if err := checkRecord(record, table.Kind(), table.ID()); err != nil {
		return nil, err
	}
	//
	return BuildProperty(record.Tokens, table)
}

func checkRecord(record Record, kind invariant.Kind, id string) error {
	if record.Kind != kind.String() {
		return fmt.Errorf("%w: expected %s record, found %s", ErrTableMismatch, kind, record.Kind)
	} else if record.Table != id {
		return fmt.Errorf("%w: expected table %s, found %s", ErrTableMismatch, id, record.Table)
	}
	//
	return nil
}

// WriteRecords writes a list of records as an indented JSON array.
func WriteRecords(w io.Writer, records []Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	//
	if records == nil {
		records = []Record{}
	}
	//
	return enc.Encode(records)
}

// ReadRecords reads a list of records previously written with WriteRecords.
func ReadRecords(r io.Reader) ([]Record, error) {
	var records []Record
	//
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	//
	return records, nil
}
