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
package invariant

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Kind distinguishes tables of (real-valued) invariants from tables of
// (boolean-valued) properties.
type Kind uint8

const (
	// Invariants are real-valued measurements.
	Invariants Kind = iota
	// Properties are boolean-valued measurements.
	Properties
)

func (k Kind) String() string {
	if k == Properties {
		return "property"
	}
	//
	return "invariant"
}

// Ref associates a name with a measurement of an object.  All measurements are
// normalised into the same shape when they are registered, so that consumers
// only ever see a function from an object to a value or an error.
type Ref[O any, V any] struct {
	name string
	fn   func(O) (V, error)
}

// Invariant is a real-valued measurement of an object.
type Invariant[O any] = Ref[O, float64]

// Property is a boolean-valued measurement of an object.
type Property[O any] = Ref[O, bool]

// New constructs a named measurement from a fallible function.
func New[O any, V any](name string, fn func(O) (V, error)) Ref[O, V] {
	return Ref[O, V]{name, fn}
}

// Func constructs a named measurement from an infallible function.
func Func[O any, V any](name string, fn func(O) V) Ref[O, V] {
	return Ref[O, V]{name, func(o O) (V, error) { return fn(o), nil }}
}

// Unnamed constructs a measurement which will be named by its position when
// registered.
func Unnamed[O any, V any](fn func(O) (V, error)) Ref[O, V] {
	return Ref[O, V]{"", fn}
}

// Name returns the name of this measurement (which is empty for an unnamed
// measurement which has not been registered).
func (p Ref[O, V]) Name() string {
	return p.name
}

// Compute this measurement for a given object.
func (p Ref[O, V]) Compute(o O) (V, error) {
	return p.fn(o)
}

// Rename returns a copy of this measurement with a different name.
func (p Ref[O, V]) Rename(name string) Ref[O, V] {
	return Ref[O, V]{name, p.fn}
}

// Table is an ordered collection of uniquely named measurements.  The position
// of a measurement within the table determines its position in the value
// matrix.
type Table[O any, V any] struct {
	kind  Kind
	refs  []Ref[O, V]
	index map[string]int
}

// NewTable registers a given set of measurements, in the order given.
// Unnamed measurements are named after their position (e.g. "invariant_2"),
// whilst a name already in use is suffixed with the position (e.g. "size_3").
func NewTable[O any, V any](kind Kind, refs ...Ref[O, V]) *Table[O, V] {
	table := &Table[O, V]{kind, make([]Ref[O, V], 0, len(refs)), make(map[string]int, len(refs))}
	//
	for pos, ref := range refs {
		name := ref.name
		//
		if name == "" {
			name = fmt.Sprintf("%s_%d", kind, pos)
		}
		//
		for table.Contains(name) {
			name = fmt.Sprintf("%s_%d", name, pos)
		}
		//
		table.index[name] = len(table.refs)
		table.refs = append(table.refs, ref.Rename(name))
	}
	//
	return table
}

// Kind returns the kind of measurements held in this table.
func (p *Table[O, V]) Kind() Kind {
	return p.kind
}

// Len returns the number of measurements in this table.
func (p *Table[O, V]) Len() int {
	return len(p.refs)
}

// At returns the measurement at a given position.
func (p *Table[O, V]) At(i int) Ref[O, V] {
	return p.refs[i]
}

// Contains checks whether a measurement of the given name is registered.
func (p *Table[O, V]) Contains(name string) bool {
	_, ok := p.index[name]
	return ok
}

// Lookup a measurement by name.
func (p *Table[O, V]) Lookup(name string) (Ref[O, V], bool) {
	if i, ok := p.index[name]; ok {
		return p.refs[i], true
	}
	//
	return Ref[O, V]{}, false
}

// Index returns the (0-based) position of a named measurement, or -1.
func (p *Table[O, V]) Index(name string) int {
	if i, ok := p.index[name]; ok {
		return i
	}
	//
	return -1
}

// Names returns the registered names in order.
func (p *Table[O, V]) Names() []string {
	names := make([]string, len(p.refs))
	//
	for i, ref := range p.refs {
		names[i] = ref.name
	}
	//
	return names
}

// ID returns a snapshot identifier for this table, which is determined by its
// kind and its names (in order).  Two tables with the same identifier resolve
// every token of a conjecture in the same way.
func (p *Table[O, V]) ID() string {
	hash := sha256.New()
	//
	hash.Write([]byte(p.kind.String()))
	//
	for _, ref := range p.refs {
		hash.Write([]byte{0})
		hash.Write([]byte(ref.name))
	}
	//
	return hex.EncodeToString(hash.Sum(nil)[:16])
}
