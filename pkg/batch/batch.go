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
package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/consensys/go-conjecture/pkg/invariant"
	"github.com/consensys/go-conjecture/pkg/metrics"
	"github.com/consensys/go-conjecture/pkg/util"
	"github.com/consensys/go-conjecture/pkg/value"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrOverlap indicates that two workers attempted to write the same
// (invariant, object) cell, which happens when an object key is repeated.
var ErrOverlap = errors.New("overlapping result")

// Options controls a precomputation.
type Options struct {
	// Workers is the number of parallel workers (0 means one per CPU).
	Workers uint
	// InvariantKey maps an invariant name to its key in the results (default
	// is the name itself).
	InvariantKey func(string) string
	// Metrics records resolved and failed cells, or nil.
	Metrics *metrics.Metrics
	// Log is the logger to which failures are reported.
	Log *log.Entry
}

// Decoder reconstructs an object from its canonical key.
type Decoder[O any] func(key string) (O, error)

// Precompute every invariant of a table on every object, where objects are
// given by their canonical keys.  Keys are partitioned across workers by index
// modulo the number of workers, and each worker decodes its own objects.
// Failures (including failure to decode an object) are stored as error cells.
// An error is returned only if the context is cancelled, or a key is repeated.
func Precompute[O any, V any](ctx context.Context, keys []string, decode Decoder[O],
	table *invariant.Table[O, V], opts Options) (*Results[V], error) {
	var (
		n       = uint(len(keys))
		workers = opts.Workers
		results = NewResults[V](table.Kind())
		stats   = util.NewPerfStats()
	)
	//
	if workers == 0 {
		workers = uint(runtime.NumCPU())
	}
	//
	workers = max(1, min(workers, n))
	//
	if opts.Log == nil {
		opts.Log = log.NewEntry(log.StandardLogger())
	}
	//
	group, gctx := errgroup.WithContext(ctx)
	//
	for w := range workers {
		group.Go(func() error {
			logger := opts.Log.WithField("worker", w)
			//
			for i := w; i < n; i += workers {
				if err := gctx.Err(); err != nil {
					return err
				}
				//
				if err := results.put(keys[i], resolveAll(keys[i], decode, table, opts, logger)); err != nil {
					return err
				}
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
	stats.Log(opts.Log, fmt.Sprintf("Precomputing %d objects", n))
	//
	return results, nil
}

// Resolve every invariant of the table on the object with the given key.
func resolveAll[O any, V any](key string, decode Decoder[O], table *invariant.Table[O, V], opts Options,
	logger *log.Entry) map[string]value.Cell[V] {
	var (
		cells = make(map[string]value.Cell[V], table.Len())
		mode  = table.Kind().String()
	)
	//
	object, err := decode(key)
	//
	for i := range table.Len() {
		var (
			ref  = table.At(i)
			name = invariantKey(opts, ref.Name())
		)
		//
		if err != nil {
			// Object could not be reconstructed, so every cell fails
			cells[name] = value.Failed[V](&value.ResolutionError{Invariant: ref.Name(), Object: key, Cause: err})
			logger.WithFields(log.Fields{mode: ref.Name(), "object": key}).Warnf("decoding object: %v", err)
			opts.Metrics.Failure(mode)
			//
			continue
		}
		//
		resolver := value.Resolver[O, V]{
			Kind:      table.Kind(),
			ObjectKey: func(O) string { return key },
			Metrics:   opts.Metrics,
			Log:       logger,
		}
		//
		cells[name] = resolver.Resolve(ref, object)
	}
	//
	return cells
}

func invariantKey(opts Options, name string) string {
	if opts.InvariantKey == nil {
		return name
	}
	//
	return opts.InvariantKey(name)
}

// Results is a table of precomputed cells keyed by (invariant, object).  It is
// safe for concurrent use.
type Results[V any] struct {
	mux   sync.RWMutex
	kind  invariant.Kind
	cells map[string]map[string]value.Cell[V]
	count int
}

// NewResults constructs an empty results table.
func NewResults[V any](kind invariant.Kind) *Results[V] {
	return &Results[V]{kind: kind, cells: make(map[string]map[string]value.Cell[V])}
}

// Kind returns the kind of values held in this table.
func (p *Results[V]) Kind() invariant.Kind {
	return p.kind
}

// Put adds a single cell, failing if that cell is already present.
func (p *Results[V]) Put(invariantKey string, objectKey string, cell value.Cell[V]) error {
	return p.put(objectKey, map[string]value.Cell[V]{invariantKey: cell})
}

// Merge all cells of a given object into the table.
func (p *Results[V]) put(objectKey string, cells map[string]value.Cell[V]) error {
	p.mux.Lock()
	defer p.mux.Unlock()
	//
	row, ok := p.cells[objectKey]
	if !ok {
		row = make(map[string]value.Cell[V], len(cells))
		p.cells[objectKey] = row
	}
	//
	for invariantKey, cell := range cells {
		if _, ok := row[invariantKey]; ok {
			return fmt.Errorf("%w: (%s, %s)", ErrOverlap, invariantKey, objectKey)
		}
		//
		row[invariantKey] = cell
		p.count++
	}
	//
	return nil
}

// Get returns the cell for a given invariant and object, if present.
func (p *Results[V]) Get(invariantKey string, objectKey string) (value.Cell[V], bool) {
	p.mux.RLock()
	defer p.mux.RUnlock()
	//
	cell, ok := p.cells[objectKey][invariantKey]
	//
	return cell, ok
}

// Len returns the number of cells in this table.
func (p *Results[V]) Len() int {
	p.mux.RLock()
	defer p.mux.RUnlock()
	//
	return p.count
}

// Failures returns the number of error cells in this table.
func (p *Results[V]) Failures() int {
	var failures int
	//
	p.Each(func(_, _ string, cell value.Cell[V]) {
		if !cell.Ok() {
			failures++
		}
	})
	//
	return failures
}

// Each visits every cell, ordered by object key and then invariant key.
func (p *Results[V]) Each(visit func(invariantKey string, objectKey string, cell value.Cell[V])) {
	p.mux.RLock()
	defer p.mux.RUnlock()
	//
	for _, obj := range sortedKeys(p.cells) {
		row := p.cells[obj]
		//
		for _, inv := range sortedKeys(row) {
			visit(inv, obj, row[inv])
		}
	}
}

// Cache returns a read-only view of this table for use when resolving values.
// Error cells are returned as the error itself so that they are never
// recomputed.
func (p *Results[V]) Cache() value.Cache {
	return resultsCache[V]{p}
}

type resultsCache[V any] struct {
	results *Results[V]
}

func (p resultsCache[V]) Lookup(objectKey string, invariantKey string) (any, bool) {
	cell, ok := p.results.Get(invariantKey, objectKey)
	//
	switch {
	case !ok:
		return nil, false
	case !cell.Ok():
		return cell.Err, true
	default:
		return cell.Value, true
	}
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	//
	for k := range m {
		keys = append(keys, k)
	}
	//
	sort.Strings(keys)
	//
	return keys
}
