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
package value

import (
	"fmt"

	"github.com/consensys/go-conjecture/pkg/invariant"
)

// Cell holds the resolved value of one invariant (or property) on one object.
// A cell whose Err is non-nil is an error cell: it is written to the
// expressions process as the error sentinel of the relevant mode.
type Cell[V any] struct {
	Value V
	Err   error
}

// Valid constructs a cell holding a value.
func Valid[V any](value V) Cell[V] {
	return Cell[V]{Value: value}
}

// Failed constructs an error cell.
func Failed[V any](err error) Cell[V] {
	return Cell[V]{Err: err}
}

// Ok checks whether this cell holds a value.
func (c Cell[V]) Ok() bool {
	return c.Err == nil
}

// ResolutionError reports that the value of an invariant could not be
// determined for a given object, either because its callable failed (or
// panicked), or because a cached value could not be used.
type ResolutionError struct {
	// Invariant whose value was being resolved.
	Invariant string
	// Object key, or "" when the object has none.
	Object string
	// Cause of the failure.
	Cause error
}

func (e *ResolutionError) Error() string {
	if e.Object == "" {
		return fmt.Sprintf("resolving %s: %v", e.Invariant, e.Cause)
	}
	//
	return fmt.Sprintf("resolving %s on %s: %v", e.Invariant, e.Object, e.Cause)
}

func (e *ResolutionError) Unwrap() error {
	return e.Cause
}

// Compute invokes the callable of an invariant on a given object, converting
// both returned errors and panics into a *ResolutionError.
func Compute[O any, V any](ref invariant.Ref[O, V], o O) (val V, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero V
			val, err = zero, &ResolutionError{ref.Name(), "", fmt.Errorf("panic: %v", r)}
		}
	}()
	//
	if val, err = ref.Compute(o); err != nil {
		return val, &ResolutionError{ref.Name(), "", err}
	}
	//
	return val, nil
}
