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

package command

import (
	"os"
	"time"

	"github.com/buildgraph/incplan/internal/buildrecord"
	"github.com/buildgraph/incplan/internal/depgraph"
	"github.com/buildgraph/incplan/internal/outputmap"
	"github.com/buildgraph/incplan/internal/scheduler"
	"github.com/buildgraph/incplan/internal/summary"
)

// loadInputStates stats every input path, registers its source<->provider
// mapping, and integrates whatever summary the output map currently
// points at into graph. A missing or malformed summary marks the input
// Malformed rather than aborting the load: the first-wave planner folds
// that case into the mandatory set instead of failing the whole build.
func loadInputStates(paths []string, graph *depgraph.Graph, omap *outputmap.OutputMap, emitDot, verify bool) ([]scheduler.InputState, error) {
	states := make([]scheduler.InputState, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		provider := depgraph.Provider(path)
		if err := graph.RegisterSource(path, provider); err != nil {
			return nil, err
		}

		st := scheduler.InputState{
			Input:   depgraph.Input{Path: path},
			ModTime: info.ModTime(),
		}

		st.MissingOutput = !omap.HasEntry(path) || len(omap.MissingOutputs(path)) > 0

		summaryPath, ok := omap.PathFor(path, depgraph.OutputKindSummary)
		if !ok {
			st.Malformed = true
		} else if parsed, err := parseSummaryFile(summaryPath, provider); err != nil {
			st.Malformed = true
		} else if _, err := graph.Integrate(provider, parsed, emitDot, verify); err != nil {
			st.Malformed = true
		}

		states = append(states, st)
	}
	return states, nil
}

func parseSummaryFile(path string, provider depgraph.Provider) (depgraph.ParsedSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return depgraph.ParsedSummary{}, err
	}
	defer f.Close()
	return summary.Parse(f, provider)
}

// batcherForSingleInputJobs returns the simplest Batcher: one
// CompileJobGroup per input, keyed by its own path. Multi-input
// batching policy belongs to the driver collaborator and
// is out of scope for this CLI's fixtures.
func batcherForSingleInputJobs() scheduler.Batcher {
	return func(in depgraph.Input) scheduler.CompileJobGroup {
		return scheduler.CompileJobGroup{
			ID:            scheduler.JobID(in.Path),
			PrimaryInputs: []depgraph.Input{in},
		}
	}
}

// loadOrNewRecord loads the build record at path, falling back to an
// empty one stamped with buildStart if path is empty or doesn't exist
// yet (the very first build has no prior record).
func loadOrNewRecord(path string, buildStart time.Time) *buildrecord.Record {
	if path != "" {
		if rec, err := buildrecord.Load(path); err == nil {
			return rec
		}
	}
	return buildrecord.New(buildStart)
}
