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
	"context"
	"errors"
	"fmt"

	"github.com/consensys/go-conjecture/pkg/conjecture"
	"github.com/consensys/go-conjecture/pkg/invariant"
	"github.com/consensys/go-conjecture/pkg/operator"
	"github.com/consensys/go-conjecture/pkg/protocol"
	"github.com/consensys/go-conjecture/pkg/value"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ErrMainIndex indicates a main invariant (or property) index which is out of
// range.
var ErrMainIndex = errors.New("main index out of range")

// Invariants searches for bounds on the main invariant in terms of the
// others, over the given objects.  Fewer than two invariants, or no objects,
// gives no conjectures.
//
// Should the expressions process exit with a non-zero code, the conjectures
// it emitted beforehand are returned along with a *protocol.ProcessFailure.
func Invariants[O any](ctx context.Context, objects []O, refs []invariant.Invariant[O], main uint,
	opts InvariantOptions[O]) ([]*conjecture.Conjecture[O], error) {
	//
	if len(refs) < 2 || len(objects) == 0 {
		return nil, nil
	} else if main >= uint(len(refs)) {
		return nil, fmt.Errorf("%w: %d of %d invariants", ErrMainIndex, main, len(refs))
	}
	//
	for i, c := range opts.Theory {
		if !c.IsBound() {
			return nil, fmt.Errorf("theory %d (%s): %w", i, c, conjecture.ErrNotABound)
		}
	}
	//
	var codes []string
	//
	if opts.Operators != nil {
		var err error
		if codes, err = operator.NumericWireCodes(opts.Operators); err != nil {
			return nil, err
		}
	}
	//
	var (
		table    = invariant.NewTable(invariant.Invariants, refs...)
		variable = opts.Variable
		s        = newSession(&opts.Options, table.Kind())
	)
	//
	if variable == "" {
		variable = DefaultVariable
	}
	//
	matrix, err := value.BuildMatrix(ctx, objects, table, newResolver[O, float64](s, &opts.Options), opts.Workers)
	if err != nil {
		return nil, err
	}
	//
	req := s.request(protocol.Numeric, !opts.Lower, codes, table.Names(), main)
	req.Matrix = encodeMatrix(matrix, protocol.EncodeValue)
	//
	if len(opts.Theory) > 0 {
		req.Theory = numericTheory(objects, opts.Theory, opts.Lower)
	}
	//
	return run(ctx, s, req, func(tokens []string) (*conjecture.Conjecture[O], error) {
		return conjecture.Build(tokens, variable, table)
	})
}

// Properties searches for sufficient (or necessary) conditions for the main
// property in terms of the others, over the given objects.  Fewer than two
// properties, or no objects, gives no conjectures.
//
// Should the expressions process exit with a non-zero code, the conjectures
// it emitted beforehand are returned along with a *protocol.ProcessFailure.
func Properties[O any](ctx context.Context, objects []O, refs []invariant.Property[O], main uint,
	opts PropertyOptions[O]) ([]*conjecture.PropertyConjecture[O], error) {
	//
	if len(refs) < 2 || len(objects) == 0 {
		return nil, nil
	} else if main >= uint(len(refs)) {
		return nil, fmt.Errorf("%w: %d of %d properties", ErrMainIndex, main, len(refs))
	}
	//
	var codes []string
	//
	if opts.Operators != nil {
		var err error
		if codes, err = operator.PropositionalWireCodes(opts.Operators); err != nil {
			return nil, err
		}
	}
	//
	var (
		table    = invariant.NewTable(invariant.Properties, refs...)
		s        = newSession(&opts.Options, table.Kind())
		resolver = newResolver[O, bool](s, &opts.Options)
	)
	//
	matrix, err := value.BuildMatrix(ctx, objects, table, resolver, opts.Workers)
	if err != nil {
		return nil, err
	}
	//
	req := s.request(protocol.Propositional, !opts.Necessary, codes, table.Names(), main)
	req.Matrix = encodeMatrix(matrix, protocol.EncodeTruth)
	//
	if len(opts.Theory) > 0 {
		req.Theory = propositionalTheory(objects, opts.Theory, resolver, opts.Necessary)
	}
	//
	return run(ctx, s, req, func(tokens []string) (*conjecture.PropertyConjecture[O], error) {
		return conjecture.BuildProperty(tokens, table)
	})
}

// session holds the state shared by every stage of a single search.
type session[O any] struct {
	opts *Options[O]
	kind invariant.Kind
	log  *log.Entry
}

func newSession[O any](opts *Options[O], kind invariant.Kind) *session[O] {
	logger := opts.logger().WithFields(log.Fields{"session": uuid.NewString(), "mode": kind.String()})
	//
	return &session[O]{opts, kind, logger}
}

func (p *session[O]) request(mode protocol.Mode, upper bool, codes []string, names []string,
	main uint) *protocol.Request {
	return &protocol.Request{
		Mode:      mode,
		Upper:     upper,
		TimeLimit: p.opts.timeLimit(),
		Operators: codes,
		Names:     names,
		Main:      main,
		Verbose:   p.opts.Verbose && p.opts.Debug,
	}
}

func newResolver[O any, V any](s *session[O], opts *Options[O]) *value.Resolver[O, V] {
	resolver := value.NewResolver[O, V](s.kind, opts.Cache)
	resolver.Metrics = opts.Metrics
	resolver.Log = s.log
	//
	if opts.ObjectKey != nil {
		resolver.ObjectKey = opts.ObjectKey
	}
	//
	if opts.InvariantKey != nil {
		resolver.InvariantKey = opts.InvariantKey
	}
	//
	return resolver
}

// Run the expressions process, building a conjecture from each block it
// emits.  Blocks which cannot be built are logged and discarded.
func run[O any, C fmt.Stringer](ctx context.Context, s *session[O], req *protocol.Request,
	build func([]string) (C, error)) ([]C, error) {
	var (
		mode        = s.kind.String()
		conjectures []C
		driver      = protocol.Driver{Engine: s.opts.Engine, Grace: s.opts.Grace, Log: s.log}
	)
	//
	s.log.Infof("searching with %d objects and %d %ss (main %s)", len(req.Matrix), len(req.Names), mode,
		req.Names[req.Main])
	//
	report, err := driver.Run(ctx, req, func(tokens []string) {
		c, err := build(tokens)
		//
		if err != nil {
			s.log.WithField("tokens", tokens).Warnf("discarding block: %v", err)
			s.opts.Metrics.Discarded(mode)
			//
			return
		}
		//
		s.log.Debugf("conjecture %s", c)
		s.opts.Metrics.Conjecture(mode)
		conjectures = append(conjectures, c)
	})
	//
	var failure *protocol.ProcessFailure
	//
	switch {
	case errors.As(err, &failure):
		s.log.Warnf("%v", failure)
		s.opts.Metrics.EngineRun("failed")
		//
		return conjectures, err
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		s.opts.Metrics.EngineRun("cancelled")
		return nil, err
	case err != nil:
		s.opts.Metrics.EngineRun("error")
		return nil, err
	}
	//
	s.opts.Metrics.EngineRun("ok")
	s.log.Infof("found %d conjectures from %d blocks in %0.2fs", len(conjectures), report.Blocks,
		report.Elapsed.Seconds())
	//
	return conjectures, nil
}
