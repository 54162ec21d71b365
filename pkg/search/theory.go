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
package search

import (
	"github.com/consensys/go-conjecture/pkg/conjecture"
	"github.com/consensys/go-conjecture/pkg/invariant"
	"github.com/consensys/go-conjecture/pkg/operator"
	"github.com/consensys/go-conjecture/pkg/protocol"
	"github.com/consensys/go-conjecture/pkg/value"
)

func encodeMatrix[V any](matrix *value.Matrix[V], encode func(value.Cell[V]) string) [][]string {
	rows := make([][]string, matrix.Rows())
	//
	for i := range matrix.Rows() {
		row := make([]string, matrix.Cols())
		//
		for j := range matrix.Cols() {
			row[j] = encode(matrix.At(i, j))
		}
		//
		rows[i] = row
	}
	//
	return rows
}

// For each object, the tightest bound value given by the theory: the least
// when searching for upper bounds, and the greatest for lower bounds.
func numericTheory[O any](objects []O, theory []*conjecture.Conjecture[O], lower bool) []string {
	lines := make([]string, len(objects))
	//
	for i, o := range objects {
		lines[i] = encodeBound(o, theory, lower)
	}
	//
	return lines
}

func encodeBound[O any](o O, theory []*conjecture.Conjecture[O], lower bool) string {
	var best float64
	//
	for i, c := range theory {
		v, err := c.BoundValue(o)
		if err != nil {
			return protocol.NumericError
		}
		//
		switch {
		case i == 0:
			best = v
		case lower:
			best = operator.Maximum(best, v)
		default:
			best = operator.Minimum(best, v)
		}
	}
	//
	return protocol.EncodeFloat(best)
}

// For each object, whether any condition of the theory holds (for sufficient
// conditions) or whether every condition holds (for necessary conditions).
func propositionalTheory[O any](objects []O, theory []invariant.Property[O], resolver *value.Resolver[O, bool],
	necessary bool) []string {
	lines := make([]string, len(objects))
	//
	for i, o := range objects {
		lines[i] = encodeCondition(o, theory, resolver, necessary)
	}
	//
	return lines
}

func encodeCondition[O any](o O, theory []invariant.Property[O], resolver *value.Resolver[O, bool],
	necessary bool) string {
	var best = necessary
	//
	for _, t := range theory {
		cell := resolver.Resolve(t, o)
		//
		if !cell.Ok() {
			return protocol.PropositionalError
		} else if necessary {
			best = best && cell.Value
		} else {
			best = best || cell.Value
		}
	}
	//
	return protocol.EncodeTruth(value.Valid(best))
}
