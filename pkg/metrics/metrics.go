// Copyright (c) 2025, The amctl Authors.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "amctl"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the collectors of one amctl invocation on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	stepDuration      *prometheus.HistogramVec
	stepsTotal        *prometheus.CounterVec
	discoveryRuns     *prometheus.CounterVec
	discoveredTargets prometheus.Gauge
	lastSuccess       *prometheus.GaugeVec
}

// New returns Metrics registered on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		stepDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "step_duration_seconds",
				Help:      "Duration of pipeline steps in seconds",
				Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
			},
			[]string{"pipeline", "step"},
		),
		stepsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "steps_total",
				Help:      "Total number of pipeline steps run, by outcome",
			},
			[]string{"pipeline", "step", "outcome"},
		),
		discoveryRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "discovery_runs_total",
				Help:      "Total number of target discovery runs, by outcome",
			},
			[]string{"outcome"},
		),
		discoveredTargets: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "discovery_targets",
				Help:      "Number of target groups written by the last discovery run",
			},
		),
		lastSuccess: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "pipeline_last_success_timestamp_seconds",
				Help:      "Unix time of the last successful pipeline run",
			},
			[]string{"pipeline"},
		),
	}
}

// Gatherer exposes the registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// ObserveStep records one step of pipeline with its duration and result.
func (m *Metrics) ObserveStep(pipeline, step string, d time.Duration, err error) {
	m.stepDuration.WithLabelValues(pipeline, step).Observe(d.Seconds())
	m.stepsTotal.WithLabelValues(pipeline, step, outcome(err)).Inc()
}

// ObservePipeline marks a successful pipeline completion at t.
func (m *Metrics) ObservePipeline(pipeline string, t time.Time) {
	m.lastSuccess.WithLabelValues(pipeline).Set(float64(t.Unix()))
}

// ObserveDiscovery records a discovery run and, on success, its group count.
func (m *Metrics) ObserveDiscovery(groups int, err error) {
	m.discoveryRuns.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		m.discoveredTargets.Set(float64(groups))
	}
}

// WriteToTextfile writes all metrics to path in the text exposition format.
// An empty path is a no-op.
func (m *Metrics) WriteToTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
