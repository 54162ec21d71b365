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
	"github.com/consensys/go-conjecture/pkg/metrics"
	log "github.com/sirupsen/logrus"
)

// Resolver determines the value of an invariant on an object, consulting a
// precomputed cache before falling back to the invariant's callable.
// Resolution never fails outright: any failure becomes an error cell.
type Resolver[O any, V any] struct {
	// Kind of values being resolved (used for logging and metrics).
	Kind invariant.Kind
	// Cache of precomputed values, or nil.
	Cache Cache
	// ObjectKey determines the cache key of an object.  An empty key means the
	// object has no key, in which case the cache is not consulted.
	ObjectKey func(O) string
	// InvariantKey determines the cache key of an invariant from its name.  An
	// empty key means the cache is not consulted.
	InvariantKey func(string) string
	// Metrics records resolved and failed cells, or nil.
	Metrics *metrics.Metrics
	// Log is the logger to which failures are reported.
	Log *log.Entry
}

// NewResolver constructs a resolver with the default key functions: objects
// are keyed by their default formatting, and invariants by their name.
func NewResolver[O any, V any](kind invariant.Kind, cache Cache) *Resolver[O, V] {
	return &Resolver[O, V]{
		Kind:         kind,
		Cache:        cache,
		ObjectKey:    func(o O) string { return fmt.Sprint(o) },
		InvariantKey: func(name string) string { return name },
		Log:          log.NewEntry(log.StandardLogger()),
	}
}

// Resolve the value of a given invariant on a given object.  When a cache is
// present and both keys are known, the cached value always wins (even when it
// is itself an error); otherwise the invariant is computed.
func (p *Resolver[O, V]) Resolve(ref invariant.Ref[O, V], o O) Cell[V] {
	var (
		mode    = p.Kind.String()
		objKey  = p.objectKey(o)
		invKey  = p.invariantKey(ref.Name())
		val     V
		err     error
		fromHit bool
	)
	//
	if p.Cache != nil && objKey != "" && invKey != "" {
		var raw any
		//
		if raw, fromHit = p.Cache.Lookup(objKey, invKey); fromHit {
			if val, err = Coerce[V](raw); err != nil {
				err = &ResolutionError{ref.Name(), objKey, err}
			}
		}
	}
	//
	if !fromHit {
		if val, err = Compute(ref, o); err != nil {
			// Attach the object key
			if rerr, ok := err.(*ResolutionError); ok {
				rerr.Object = objKey
			}
		}
	}
	//
	if err != nil {
		p.logger().WithFields(log.Fields{mode: ref.Name(), "object": objKey}).Warnf("%v", err)
		p.Metrics.Failure(mode)
		//
		return Failed[V](err)
	}
	//
	if fromHit {
		p.Metrics.Resolved(mode, metrics.SourceCache)
	} else {
		p.Metrics.Resolved(mode, metrics.SourceCompute)
	}
	//
	return Valid(val)
}

func (p *Resolver[O, V]) objectKey(o O) string {
	if p.ObjectKey == nil {
		return fmt.Sprint(o)
	}
	//
	return p.ObjectKey(o)
}

func (p *Resolver[O, V]) invariantKey(name string) string {
	if p.InvariantKey == nil {
		return name
	}
	//
	return p.InvariantKey(name)
}

func (p *Resolver[O, V]) logger() *log.Entry {
	if p.Log == nil {
		return log.NewEntry(log.StandardLogger())
	}
	//
	return p.Log
}
