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
package stack

// Stack represents a reusable LIFO stack which is implemented using an array.
// Items are addressed by their depth from the top, so the stack can also be
// read without being consumed.
type Stack[T any] struct {
	items []T
}

// NewStack returns an empty stack with room for a given number of items.
func NewStack[T any](capacity uint) *Stack[T] {
	return &Stack[T]{make([]T, 0, capacity)}
}

// IsEmpty checks whether or not there are still items on the stack
func (p *Stack[T]) IsEmpty() bool {
	return p.Len() == 0
}

// Len returns the number of items on the stack.
func (p *Stack[T]) Len() uint {
	return uint(len(p.items))
}

// Peek at nth item from top of stack.
func (p *Stack[T]) Peek(offset uint) T {
	var n = len(p.items) - int(offset) - 1
	//
	if n < 0 {
		panic("peek out-of-bounds")
	}
	// Get last item
	return p.items[n]
}

// Push a new item onto the stack
func (p *Stack[T]) Push(item T) {
	p.items = append(p.items, item)
}

// Pop the last item off the stack
func (p *Stack[T]) Pop() T {
	item, ok := p.TryPop()
	//
	if !ok {
		panic("cannot pop from empty stack")
	}
	//
	return item
}

// TryPop pops the last item off the stack, or reports false when the stack is
// empty.  This is the variant to use when the stack is driven by untrusted
// input.
func (p *Stack[T]) TryPop() (T, bool) {
	var (
		empty T
		n     = len(p.items)
	)
	//
	if n == 0 {
		return empty, false
	}
	// Get last item
	item := p.items[n-1]
	// Remove last item, clearing the slot so it can be collected.
	p.items[n-1] = empty
	p.items = p.items[:n-1]
	// Done
	return item, true
}

// TryPop2 pops the top two items, returning them in the order they were
// pushed (i.e. the deeper item first).
func (p *Stack[T]) TryPop2() (T, T, bool) {
	var empty T
	//
	if len(p.items) < 2 {
		return empty, empty, false
	}
	//
	right, _ := p.TryPop()
	left, _ := p.TryPop()
	//
	return left, right, true
}

// Items returns a copy of the stack contents, bottom first.
func (p *Stack[T]) Items() []T {
	items := make([]T, len(p.items))
	copy(items, p.items)
	//
	return items
}

// Reset empties the stack whilst retaining its capacity.
func (p *Stack[T]) Reset() {
	clear(p.items)
	p.items = p.items[:0]
}
