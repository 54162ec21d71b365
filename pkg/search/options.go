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
	"time"

	"github.com/consensys/go-conjecture/pkg/conjecture"
	"github.com/consensys/go-conjecture/pkg/invariant"
	"github.com/consensys/go-conjecture/pkg/metrics"
	"github.com/consensys/go-conjecture/pkg/protocol"
	"github.com/consensys/go-conjecture/pkg/value"
	log "github.com/sirupsen/logrus"
)

// DefaultTimeLimit is the default time given to the expressions process, in
// seconds.
const DefaultTimeLimit = 5

// DefaultVariable is the default name of the variable denoting an object in
// the symbolic form of a conjecture.
const DefaultVariable = "x"

// Options common to both kinds of search.
type Options[O any] struct {
	// TimeLimit for the expressions process, in seconds (0 means
	// DefaultTimeLimit).
	TimeLimit uint
	// Operators restricts the search to the given operator tokens, or nil for
	// all operators.
	Operators []string
	// Cache of precomputed values, or nil.
	Cache value.Cache
	// ObjectKey determines the cache key of an object (default is its default
	// formatting).
	ObjectKey func(O) string
	// InvariantKey determines the cache key of an invariant from its name
	// (default is the name).
	InvariantKey func(string) string
	// Workers used to build the value matrix (0 means one per CPU).
	Workers uint
	// Engine runs the expressions process (default is an ExecEngine).
	Engine protocol.Engine
	// Verbose and Debug together ask the expressions process to report its
	// progress, which is logged at debug level.
	Verbose bool
	Debug   bool
	// Grace, when positive, kills the expressions process once it has run for
	// its time limit plus this duration.
	Grace time.Duration
	// Metrics, or nil.
	Metrics *metrics.Metrics
	// Log is the base logger (default is the standard logger).
	Log *log.Entry
}

// InvariantOptions controls a search for numeric conjectures.
type InvariantOptions[O any] struct {
	Options[O]
	// Lower requests lower bounds on the main invariant, rather than upper
	// bounds.
	Lower bool
	// Theory holds known bounds on the main invariant.  Every conjecture
	// reported must be more significant than these bounds.
	Theory []*conjecture.Conjecture[O]
	// Variable names the object in the symbolic form (default is
	// DefaultVariable).
	Variable string
}

// PropertyOptions controls a search for propositional conjectures.
type PropertyOptions[O any] struct {
	Options[O]
	// Necessary requests necessary conditions for the main property, rather
	// than sufficient conditions.
	Necessary bool
	// Theory holds known conditions on the main property (e.g. conjectures
	// from an earlier search, see PropertyConjecture.AsProperty).
	Theory []invariant.Property[O]
}

func (p *Options[O]) timeLimit() uint {
	if p.TimeLimit == 0 {
		return DefaultTimeLimit
	}
	//
	return p.TimeLimit
}

func (p *Options[O]) logger() *log.Entry {
	if p.Log == nil {
		return log.NewEntry(log.StandardLogger())
	}
	//
	return p.Log
}
