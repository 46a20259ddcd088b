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

package scheduler

import (
	"context"
	"time"

	"github.com/buildgraph/incplan/internal/buildrecord"
	"github.com/buildgraph/incplan/internal/changedetector"
	"github.com/buildgraph/incplan/internal/depgraph"
)

// InputState is one current-build input plus everything the first-wave
// planner needs to classify it: its modification time, and whether its
// summary failed to parse or its declared output is missing (both
// computed by the caller from internal/summary and internal/outputmap
// respectively, since those are per-build, not per-planner concerns).
type InputState struct {
	Input         depgraph.Input
	ModTime       time.Time
	Malformed     bool
	MissingOutput bool
}

// FirstWave computes the mandatory first-wave compile set against a Graph already seeded with every provider's initial
// summary.
type FirstWave struct {
	Graph                   *depgraph.Graph
	Record                  *buildrecord.Record
	AlwaysRebuildDependents bool
}

// Batcher turns a single selected input into the CompileJobGroup the
// driver will run for it. Batching policy (e.g. grouping several inputs
// into one subprocess invocation) belongs to the driver collaborator;
// the planner only needs *some* group per input to track as
// skipped/mandatory.
type Batcher func(depgraph.Input) CompileJobGroup

// Plan runs the first-wave algorithm over states, in the order given
// (their order is taken to be input-file order), and returns the
// resulting Plan.
func (fw *FirstWave) Plan(ctx context.Context, states []InputState, batch Batcher) Plan {
	classification := make(map[string]changedetector.Classification, len(states))
	byPath := make(map[string]InputState, len(states))
	for _, st := range states {
		classification[st.Input.Path] = changedetector.Classify(fw.Record, st.Input.Path, st.ModTime)
		byPath[st.Input.Path] = st
	}

	mandatory := make(map[string]bool, len(states))

	addMandatory := func(path string) {
		mandatory[path] = true
	}

	// Item 1: changed inputs.
	for _, st := range states {
		if classification[st.Input.Path].IsCompileCandidate() {
			addMandatory(st.Input.Path)
		}
	}

	// Item 2: externally-affected inputs.
	buildStart := fw.Record.BuildStart()
	for _, ext := range fw.Graph.ExternalDependencies() {
		if ext.ModTime.Before(buildStart) {
			continue
		}
		for _, provider := range fw.Graph.TraceFromExternalDependency(ext.Path) {
			if src, ok := fw.Graph.SourceFor(provider); ok {
				if _, known := byPath[src]; known {
					addMandatory(src)
				}
			}
		}
	}

	// Item 3: malformed-summary inputs.
	for _, st := range states {
		if st.Malformed {
			addMandatory(st.Input.Path)
		}
	}

	// Item 4: missing-output inputs.
	for _, st := range states {
		if st.MissingOutput {
			addMandatory(st.Input.Path)
		}
	}

	// Item 5: speculative dependents, minus the union of (1)-(4).
	baseline := make(map[string]bool, len(mandatory))
	for path := range mandatory {
		baseline[path] = true
	}
	for _, st := range states {
		c := classification[st.Input.Path]
		cascading := c.Cascading() || (fw.AlwaysRebuildDependents && c.IsCompileCandidate())
		if !cascading {
			continue
		}
		deps, err := fw.Graph.DependentSourceFiles(ctx, st.Input)
		if err != nil {
			// InvariantViolated in release mode (or a cancelled ctx):
			// fall back to a full rebuild by making every input
			// mandatory, rather than let a bad trace abort planning.
			for _, all := range states {
				addMandatory(all.Input.Path)
			}
			break
		}
		for _, dep := range deps {
			if baseline[dep.Path] {
				continue
			}
			if _, known := byPath[dep.Path]; !known {
				continue
			}
			addMandatory(dep.Path)
		}
	}

	plan := Plan{Skipped: make(map[string]CompileJobGroup)}
	for _, st := range states {
		if mandatory[st.Input.Path] {
			plan.MandatoryJobsInOrder = append(plan.MandatoryJobsInOrder, batch(st.Input))
		} else {
			plan.Skipped[st.Input.Path] = batch(st.Input)
		}
	}

	return plan
}
