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

package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/apigee-monitor/amctl/pkg/errors"
	"github.com/apigee-monitor/amctl/pkg/metrics"
)

// Step is one named unit of a pipeline.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Outcome is the typed result of one executed step.
type Outcome struct {
	Step     string
	Duration time.Duration
	Err      error
}

// Succeeded reports whether the step completed without error.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// Result aggregates the outcomes of one pipeline run.
type Result struct {
	Pipeline string
	RunID    string
	Outcomes []Outcome
	Duration time.Duration
}

// Failed returns the failing outcome, or nil when every step succeeded.
func (r *Result) Failed() *Outcome {
	for i := range r.Outcomes {
		if !r.Outcomes[i].Succeeded() {
			return &r.Outcomes[i]
		}
	}
	return nil
}

// Err returns the error of the failing step, if any.
func (r *Result) Err() error {
	if o := r.Failed(); o != nil {
		return o.Err
	}
	return nil
}

// Runner executes steps sequentially and stops at the first failure.
type Runner struct {
	name    string
	runID   string
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(r *Runner) {
		r.runID = id
	}
}

// WithMetrics records step outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// NewRunner returns a Runner for the named pipeline.
func NewRunner(name string, opts ...Option) *Runner {
	r := &Runner{
		name:  name,
		runID: uuid.NewString(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunID returns the identifier attached to this run's logs.
func (r *Runner) RunID() string {
	return r.runID
}

// Run executes steps in order. A failed or cancelled step ends the run;
// later steps are not attempted and nothing is rolled back.
func (r *Runner) Run(ctx context.Context, steps ...Step) *Result {
	log := slog.With("pipeline", r.name, "run_id", r.runID)
	res := &Result{
		Pipeline: r.name,
		RunID:    r.runID,
		Outcomes: make([]Outcome, 0, len(steps)),
	}

	log.Info("pipeline started", "steps", len(steps))
	runStart := r.now()

	for _, step := range steps {
		start := r.now()
		err := ctx.Err()
		if err != nil {
			err = apperrors.Wrap(apperrors.ErrCodeInternal, "run cancelled before step "+step.Name, err).
				WithRemediation("re-run the %s pipeline; completed steps are idempotent", r.name)
		} else {
			log.Info("step started", "step", step.Name)
			err = step.Run(ctx)
		}
		o := Outcome{Step: step.Name, Duration: r.now().Sub(start), Err: err}
		res.Outcomes = append(res.Outcomes, o)

		if r.metrics != nil {
			r.metrics.ObserveStep(r.name, step.Name, o.Duration, o.Err)
		}

		if err != nil {
			log.Error("step failed",
				"step", step.Name,
				"code", apperrors.CodeOf(err),
				"error", err,
				"duration_sec", o.Duration.Seconds(),
			)
			break
		}
		log.Info("step completed", "step", step.Name, "duration_sec", o.Duration.Seconds())
	}

	end := r.now()
	res.Duration = end.Sub(runStart)
	if res.Failed() == nil {
		if r.metrics != nil {
			r.metrics.ObservePipeline(r.name, end)
		}
		log.Info("pipeline completed", "duration_sec", res.Duration.Seconds())
	}
	return res
}
