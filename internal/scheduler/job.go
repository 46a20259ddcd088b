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

// Package scheduler implements the two-wave scheduler: the first-wave
// planner that selects the mandatory compile set, and the second-wave
// scheduler that expands it as compiles finish.
package scheduler

import (
	"sort"

	"github.com/buildgraph/incplan/internal/depgraph"
)

// JobID identifies a CompileJobGroup; assigned by whatever batches
// inputs into groups (the driver collaborator).
type JobID string

// CompileJobGroup is a batch of primary inputs the driver will compile
// together. The planner never looks inside a group beyond its primary
// inputs; batching policy belongs to the driver collaborator.
type CompileJobGroup struct {
	ID            JobID
	PrimaryInputs []depgraph.Input
}

// ContainsInput reports whether path is one of g's primary inputs.
func (g CompileJobGroup) ContainsInput(path string) bool {
	for _, in := range g.PrimaryInputs {
		if in.Path == path {
			return true
		}
	}
	return false
}

// SortGroupsByFirstInput orders groups deterministically by their first
// primary input's path, for places where job order must be
// reproducible but no input-file-order context is available. Groups
// with no primary inputs sort last.
func SortGroupsByFirstInput(groups []CompileJobGroup) {
	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		switch {
		case len(a.PrimaryInputs) == 0:
			return false
		case len(b.PrimaryInputs) == 0:
			return true
		default:
			return a.PrimaryInputs[0].Path < b.PrimaryInputs[0].Path
		}
	})
}

// Plan is the first-wave planner's output.
type Plan struct {
	MandatoryJobsInOrder []CompileJobGroup
	JobsAfterCompiles    []CompileJobGroup
	Skipped              map[string]CompileJobGroup
}

// JobOutcome is what the driver reports back for one finished job.
type JobOutcome struct {
	Finished CompileJobGroup
	Success  bool
}

// WaveResult is what JobFinished returns: either a (possibly empty)
// slice of newly released jobs, or Done signalling no more compiles
// remain.
type WaveResult struct {
	NewJobs []CompileJobGroup
	Done    bool
}

// JobFailed reports that a compile job exited non-success; the planner
// stops releasing new work but does not itself abort the build.
type JobFailed struct {
	Job      CompileJobGroup
	ExitCode int
}

func (e *JobFailed) Error() string {
	return "compile job failed"
}
