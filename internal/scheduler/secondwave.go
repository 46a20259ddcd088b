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
	"io"
	"sort"
	"sync"

	"github.com/buildgraph/incplan/internal/depgraph"
)

// Reintegrator re-integrates a freshly compiled source's summary into
// the graph and reports which inputs must now compile. Implemented by
// the caller (cmd/incplan) so SecondWave stays decoupled from how
// summaries are read off disk (internal/summary) versus handed over in
// memory (the simulate subcommand's fixtures).
type Reintegrator interface {
	// ReintegrateAndTrace integrates primaryInput's new summary and
	// returns the inputs newly reached by tracing the resulting delta.
	ReintegrateAndTrace(primaryInput depgraph.Input) ([]depgraph.Input, error)
}

// SecondWave is the mutex-guarded critical section: all graph and
// scheduler-state mutations happen inside JobFinished, one call at a
// time, regardless of how many jobs run concurrently outside it.
type SecondWave struct {
	mu sync.Mutex

	skippedGroups  map[string]CompileJobGroup
	unfinishedJobs map[JobID]CompileJobGroup

	reintegrator Reintegrator

	// remarkSink receives "failed to read some swiftdeps; compiling
	// everything"-style diagnostics.
	remarkSink io.Writer
}

// NewSecondWave constructs a SecondWave seeded with the first wave's
// skipped set and the jobs already dispatched for the mandatory set.
func NewSecondWave(skipped map[string]CompileJobGroup, dispatched []CompileJobGroup, reintegrator Reintegrator, remarkSink io.Writer) *SecondWave {
	sw := &SecondWave{
		skippedGroups:  make(map[string]CompileJobGroup, len(skipped)),
		unfinishedJobs: make(map[JobID]CompileJobGroup, len(dispatched)),
		reintegrator:   reintegrator,
		remarkSink:     remarkSink,
	}
	for k, v := range skipped {
		sw.skippedGroups[k] = v
	}
	for _, j := range dispatched {
		sw.unfinishedJobs[j.ID] = j
	}
	return sw
}

// JobFinished implements a six-step algorithm for one completion event.
// Callers funnel every job completion through this method one at a
// time (internal/execution.Runner does so by holding its own dispatch
// loop outside the lock and calling JobFinished from whichever
// goroutine a job finishes on); the mutex here is the only
// synchronization point, giving the whole sequence an as-if-serial
// contract.
func (sw *SecondWave) JobFinished(outcome JobOutcome) (WaveResult, error) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	// Step 1.
	delete(sw.unfinishedJobs, outcome.Finished.ID)

	// Step 2.
	if !outcome.Success {
		return WaveResult{}, &JobFailed{Job: outcome.Finished}
	}

	// Step 3.
	discovered := make(map[string]bool)
	for _, primary := range outcome.Finished.PrimaryInputs {
		deps, err := sw.reintegrator.ReintegrateAndTrace(primary)
		if err != nil {
			if depgraph.IsMalformedSummary(err) {
				sw.emitRemark("failed to read some swiftdeps; compiling everything")
				for path := range sw.skippedGroups {
					discovered[path] = true
				}
				continue
			}
			return WaveResult{}, err
		}
		for _, dep := range deps {
			discovered[dep.Path] = true
		}
	}
	for _, primary := range outcome.Finished.PrimaryInputs {
		delete(discovered, primary.Path)
	}

	// Ordering: discovered is sorted by input path.
	paths := make([]string, 0, len(discovered))
	for p := range discovered {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	// Step 4.
	var newJobs []CompileJobGroup
	for _, p := range paths {
		group, ok := sw.skippedGroups[p]
		if !ok {
			continue
		}
		delete(sw.skippedGroups, p)
		newJobs = append(newJobs, group)
	}

	// Step 5.
	for _, j := range newJobs {
		sw.unfinishedJobs[j.ID] = j
	}

	// Step 6.
	if len(newJobs) == 0 && len(sw.unfinishedJobs) == 0 {
		return WaveResult{Done: true}, nil
	}
	return WaveResult{NewJobs: newJobs}, nil
}

func (sw *SecondWave) emitRemark(msg string) {
	if sw.remarkSink == nil {
		return
	}
	_, _ = io.WriteString(sw.remarkSink, msg+"\n")
}

// RemainingSkipped returns a snapshot of the still-skipped input paths,
// sorted, used by tests asserting end-of-build state.
func (sw *SecondWave) RemainingSkipped() []string {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	out := make([]string, 0, len(sw.skippedGroups))
	for p := range sw.skippedGroups {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
