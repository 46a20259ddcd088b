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

// Package changedetector classifies each current input against the
// prior build record by comparing modification times in whole seconds.
package changedetector

import (
	"time"

	"github.com/buildgraph/incplan/internal/buildrecord"
)

// Classification is the outcome of comparing one input against the
// prior build record.
type Classification int

const (
	// Skip means the input is unchanged and up to date; it is not a
	// compile candidate on its own.
	Skip Classification = iota
	// Changed means the input's modification time no longer matches
	// the prior record.
	Changed
	// NewlyAdded means the input has no prior record at all.
	NewlyAdded
	// ChangedCascading means the prior build left this input marked
	// needsCascadingBuild (e.g. an interrupted build).
	ChangedCascading
	// ChangedNonCascading means the prior build left this input marked
	// needsNonCascadingBuild.
	ChangedNonCascading
)

// String renders c for logs and remarks.
func (c Classification) String() string {
	switch c {
	case Skip:
		return "skip"
	case Changed:
		return "changed"
	case NewlyAdded:
		return "newlyAdded"
	case ChangedCascading:
		return "changedCascading"
	case ChangedNonCascading:
		return "changedNonCascading"
	default:
		return "unknown"
	}
}

// Cascading reports whether c implies cascading behavior should be
// considered for this input. The first-wave planner uses it to decide
// speculative dependents; with alwaysRebuildDependents enabled it also
// treats every other compile candidate as cascading.
func (c Classification) Cascading() bool {
	return c == ChangedCascading
}

// IsCompileCandidate reports whether c means the input must compile on
// its own, independent of any dependency tracing.
func (c Classification) IsCompileCandidate() bool { return c != Skip }

// Classify implements the classification table for a single input
// given its current modification time and the prior build record.
func Classify(record *buildrecord.Record, inputPath string, modTime time.Time) Classification {
	prior, existed := record.Lookup(inputPath)
	if !existed {
		return NewlyAdded
	}

	datesMatch := buildrecord.AsOfSeconds(modTime) == prior.PreviousModTime

	switch prior.Status {
	case buildrecord.UpToDate:
		if datesMatch {
			return Skip
		}
		return Changed
	case buildrecord.NewlyAdded:
		return NewlyAdded
	case buildrecord.NeedsCascadingBuild:
		return ChangedCascading
	case buildrecord.NeedsNonCascadingBuild:
		return ChangedNonCascading
	default:
		// An unrecognized status in a record written by a future,
		// newer version of this tool: treat conservatively as changed
		// rather than silently skipping.
		return Changed
	}
}

// ResultingStatus maps a classification to the status that should be
// persisted for this input in the *next* build record, assuming the
// compile that classification implies actually ran to completion. Every
// classification resolves to UpToDate here: once its implied compile
// (if any) has completed, the input is current as of this build,
// regardless of why it was or wasn't compiled.
func ResultingStatus(c Classification) buildrecord.Status {
	return buildrecord.UpToDate
}
