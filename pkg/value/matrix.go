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
	"context"
	"runtime"
	"sync/atomic"

	"github.com/consensys/go-conjecture/pkg/invariant"
	"github.com/consensys/go-conjecture/pkg/util"
	"golang.org/x/sync/errgroup"
)

// Matrix is a read-only table of objects (rows) by invariants (columns).
type Matrix[V any] struct {
	cols     uint
	cells    [][]Cell[V]
	failures uint
}

// BuildMatrix resolves every invariant of a table on every object.  Rows are
// partitioned across workers by object index modulo the number of workers, so
// each row is written by exactly one worker.  Individual failures become error
// cells; an error is returned only if the context is cancelled.
func BuildMatrix[O any, V any](ctx context.Context, objects []O, table *invariant.Table[O, V],
	resolver *Resolver[O, V], workers uint) (*Matrix[V], error) {
	var (
		n        = uint(len(objects))
		cols     = uint(table.Len())
		cells    = make([][]Cell[V], n)
		failures atomic.Uint64
		done     atomic.Uint64
		stats    = util.NewPerfStats()
	)
	//
	if workers == 0 {
		workers = uint(runtime.NumCPU())
	}
	//
	workers = max(1, min(workers, n))
	//
	group, gctx := errgroup.WithContext(ctx)
	//
	for w := range workers {
		group.Go(func() error {
			for i := w; i < n; i += workers {
				if err := gctx.Err(); err != nil {
					return err
				}
				//
				row := make([]Cell[V], cols)
				//
				for j := range cols {
					if row[j] = resolver.Resolve(table.At(int(j)), objects[i]); !row[j].Ok() {
						failures.Add(1)
					}
				}
				//
				cells[i] = row
				//
				reportProgress(resolver, done.Add(1), uint64(n))
			}
			//
			return nil
		})
	}
	//
	if err := group.Wait(); err != nil {
		return nil, err
	}
	//
	stats.Log(resolver.logger(), "Building value matrix")
	resolver.Metrics.ObserveMatrix(resolver.Kind.String(), stats.Elapsed())
	//
	return &Matrix[V]{cols, cells, uint(failures.Load())}, nil
}

// Log progress each time another tenth of the objects has been resolved.
func reportProgress[O any, V any](resolver *Resolver[O, V], done uint64, total uint64) {
	if total >= 10 && (done*10)/total != ((done-1)*10)/total {
		resolver.logger().Infof("resolved %d%% of objects (%d/%d)", (done*100)/total, done, total)
	}
}

// NewMatrix constructs a matrix directly from its cells, which must all have
// the same number of columns.
func NewMatrix[V any](cols uint, cells [][]Cell[V]) *Matrix[V] {
	var failures uint
	//
	for _, row := range cells {
		if uint(len(row)) != cols {
			panic("inconsistent matrix row")
		}
		//
		for _, c := range row {
			if !c.Ok() {
				failures++
			}
		}
	}
	//
	return &Matrix[V]{cols, cells, failures}
}

// Rows returns the number of objects in this matrix.
func (p *Matrix[V]) Rows() uint {
	return uint(len(p.cells))
}

// Cols returns the number of invariants in this matrix.
func (p *Matrix[V]) Cols() uint {
	return p.cols
}

// At returns the cell for a given object and invariant.
func (p *Matrix[V]) At(row uint, col uint) Cell[V] {
	return p.cells[row][col]
}

// Column returns a copy of every cell for a given invariant.
func (p *Matrix[V]) Column(col uint) []Cell[V] {
	column := make([]Cell[V], len(p.cells))
	//
	for i, row := range p.cells {
		column[i] = row[col]
	}
	//
	return column
}

// Failures returns the number of error cells in this matrix.
func (p *Matrix[V]) Failures() uint {
	return p.failures
}
