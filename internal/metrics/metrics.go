// Copyright 2026 The incplan Authors.
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

// Package metrics exposes the planner's prometheus instrumentation:
// gauges for the current mandatory/skipped/discovered set sizes and a
// counter for job outcomes. Registration is explicit via New rather than
// an init()-time global registry, so a CLI invocation that never passes
// --metrics-addr never pays for an HTTP handler or a package-level
// Registry.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Planner bundles every metric the scheduler updates as it plans and
// schedules a build.
type Planner struct {
	MandatorySetSize   prometheus.Gauge
	SkippedSetSize     prometheus.Gauge
	DiscoveredSetSize  prometheus.Gauge
	JobOutcomesTotal   *prometheus.CounterVec
	IncrementalEnabled prometheus.Gauge
}

// New constructs a Planner and registers its metrics with reg.
func New(reg *prometheus.Registry) *Planner {
	p := &Planner{
		MandatorySetSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "incplan_mandatory_set_size",
			Help: "Number of inputs in the current build's mandatory set.",
		}),
		SkippedSetSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "incplan_skipped_set_size",
			Help: "Number of inputs in the current build's skipped set.",
		}),
		DiscoveredSetSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "incplan_discovered_set_size",
			Help: "Number of inputs released from the skipped set so far this build.",
		}),
		JobOutcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "incplan_job_outcomes_total",
			Help: "Total number of compile job completions, by outcome.",
		}, []string{"outcome"}),
		IncrementalEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "incplan_incremental_enabled",
			Help: "1 if incremental mode is active for the current build, 0 if it fell back to a full rebuild.",
		}),
	}
	reg.MustRegister(
		p.MandatorySetSize,
		p.SkippedSetSize,
		p.DiscoveredSetSize,
		p.JobOutcomesTotal,
		p.IncrementalEnabled,
	)
	return p
}

// RecordJobSuccess increments the success outcome counter.
func (p *Planner) RecordJobSuccess() { p.JobOutcomesTotal.WithLabelValues("success").Inc() }

// RecordJobFailure increments the failure outcome counter.
func (p *Planner) RecordJobFailure() { p.JobOutcomesTotal.WithLabelValues("failure").Inc() }

// SetIncrementalEnabled records whether this build ran incrementally.
func (p *Planner) SetIncrementalEnabled(enabled bool) {
	if enabled {
		p.IncrementalEnabled.Set(1)
		return
	}
	p.IncrementalEnabled.Set(0)
}
