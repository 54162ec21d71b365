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
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "conjecture"

// Source labels distinguish values read from a precomputed cache from those
// computed by calling an invariant.
const (
	SourceCache   = "cache"
	SourceCompute = "compute"
)

// Metrics holds the collectors for a single process.  A nil *Metrics is valid
// and records nothing, so library code never needs to check whether metrics
// were enabled.
type Metrics struct {
	registry    *prometheus.Registry
	resolved    *prometheus.CounterVec
	failures    *prometheus.CounterVec
	conjectures *prometheus.CounterVec
	discarded   *prometheus.CounterVec
	runs        *prometheus.CounterVec
	matrix      *prometheus.HistogramVec
}

// New constructs a fresh set of collectors on their own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		resolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "values_resolved_total",
			Help:      "Matrix cells resolved by mode and source",
		}, []string{"mode", "source"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolution_failures_total",
			Help:      "Matrix cells whose value could not be resolved",
		}, []string{"mode"}),
		conjectures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conjectures_total",
			Help:      "Conjectures parsed from the expressions process",
		}, []string{"mode"}),
		discarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_discarded_total",
			Help:      "Result blocks which could not be parsed into a conjecture",
		}, []string{"mode"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "engine_runs_total",
			Help:      "Runs of the expressions process by outcome",
		}, []string{"outcome"}),
		matrix: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "matrix_build_seconds",
			Help:      "Time taken to resolve a value matrix",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}, []string{"mode"}),
	}
	//
	m.registry.MustRegister(m.resolved, m.failures, m.conjectures, m.discarded, m.runs, m.matrix)
	//
	return m
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	//
	return m.registry
}

// Resolved records a resolved matrix cell.
func (m *Metrics) Resolved(mode string, source string) {
	if m != nil {
		m.resolved.WithLabelValues(mode, source).Inc()
	}
}

// Failure records a matrix cell which failed to resolve.
func (m *Metrics) Failure(mode string) {
	if m != nil {
		m.failures.WithLabelValues(mode).Inc()
	}
}

// Conjecture records a successfully parsed result block.
func (m *Metrics) Conjecture(mode string) {
	if m != nil {
		m.conjectures.WithLabelValues(mode).Inc()
	}
}

// Discarded records a result block which was logged and dropped.
func (m *Metrics) Discarded(mode string) {
	if m != nil {
		m.discarded.WithLabelValues(mode).Inc()
	}
}

// EngineRun records the outcome of one run of the expressions process (e.g.
// "ok", "failed", "cancelled").
func (m *Metrics) EngineRun(outcome string) {
	if m != nil {
		m.runs.WithLabelValues(outcome).Inc()
	}
}

// ObserveMatrix records how long a value matrix took to build.
func (m *Metrics) ObserveMatrix(mode string, elapsed time.Duration) {
	if m != nil {
		m.matrix.WithLabelValues(mode).Observe(elapsed.Seconds())
	}
}

// WriteTextfile writes every collector to the given file in the text
// exposition format, as read by the node exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	//
	return prometheus.WriteToTextfile(path, m.registry)
}
