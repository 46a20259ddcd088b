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

package scheduler_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildgraph/incplan/internal/buildrecord"
	"github.com/buildgraph/incplan/internal/depgraph"
	"github.com/buildgraph/incplan/internal/scheduler"
)

func batch(in depgraph.Input) scheduler.CompileJobGroup {
	return scheduler.CompileJobGroup{ID: scheduler.JobID(in.Path), PrimaryInputs: []depgraph.Input{in}}
}

func TestFirstWave_NoChanges_AllSkipped(t *testing.T) {
	modTime := time.Unix(1700000000, 0)
	record := buildrecord.New(time.Now())
	record.Set("a.swift", buildrecord.UpToDate, modTime)
	record.Set("b.swift", buildrecord.UpToDate, modTime)

	fw := &scheduler.FirstWave{Graph: depgraph.NewGraph(), Record: record}
	states := []scheduler.InputState{
		{Input: depgraph.Input{Path: "a.swift"}, ModTime: modTime},
		{Input: depgraph.Input{Path: "b.swift"}, ModTime: modTime},
	}

	plan := fw.Plan(context.Background(), states, batch)
	assert.Empty(t, plan.MandatoryJobsInOrder)
	assert.Len(t, plan.Skipped, 2)
}

func TestFirstWave_ChangedInputIsMandatory(t *testing.T) {
	modTime := time.Unix(1700000000, 0)
	record := buildrecord.New(time.Now())
	record.Set("a.swift", buildrecord.UpToDate, modTime)

	fw := &scheduler.FirstWave{Graph: depgraph.NewGraph(), Record: record}
	states := []scheduler.InputState{
		{Input: depgraph.Input{Path: "a.swift"}, ModTime: modTime.Add(time.Second)},
	}

	plan := fw.Plan(context.Background(), states, batch)
	require.Len(t, plan.MandatoryJobsInOrder, 1)
	assert.Equal(t, "a.swift", plan.MandatoryJobsInOrder[0].PrimaryInputs[0].Path)
}

func TestFirstWave_MalformedSummaryIsMandatory(t *testing.T) {
	record := buildrecord.New(time.Now())
	record.Set("a.swift", buildrecord.UpToDate, time.Unix(1700000000, 0))

	fw := &scheduler.FirstWave{Graph: depgraph.NewGraph(), Record: record}
	states := []scheduler.InputState{
		{Input: depgraph.Input{Path: "a.swift"}, ModTime: time.Unix(1700000000, 0), Malformed: true},
	}

	plan := fw.Plan(context.Background(), states, batch)
	assert.Len(t, plan.MandatoryJobsInOrder, 1)
	assert.Empty(t, plan.Skipped)
}

func TestFirstWave_MissingOutputIsMandatory(t *testing.T) {
	record := buildrecord.New(time.Now())
	record.Set("a.swift", buildrecord.UpToDate, time.Unix(1700000000, 0))

	fw := &scheduler.FirstWave{Graph: depgraph.NewGraph(), Record: record}
	states := []scheduler.InputState{
		{Input: depgraph.Input{Path: "a.swift"}, ModTime: time.Unix(1700000000, 0), MissingOutput: true},
	}

	plan := fw.Plan(context.Background(), states, batch)
	assert.Len(t, plan.MandatoryJobsInOrder, 1)
}

func TestFirstWave_CascadingClassificationPullsInDependent(t *testing.T) {
	modTime := time.Unix(1700000000, 0)
	record := buildrecord.New(time.Now())
	record.Set("widget.swift", buildrecord.NeedsCascadingBuild, modTime)
	record.Set("gadget.swift", buildrecord.UpToDate, modTime)

	g := depgraph.NewGraph()
	require.NoError(t, g.RegisterSource("widget.swift", "widget.swift"))
	require.NoError(t, g.RegisterSource("gadget.swift", "gadget.swift"))
	_, err := g.Integrate("widget.swift", depgraph.ParsedSummary{
		Definitions: []depgraph.Definition{
			{Key: depgraph.DependencyKey{Aspect: depgraph.Interface, Designator: depgraph.TopLevelName("Widget")}, Fingerprint: "v1"},
		},
	}, false, false)
	require.NoError(t, err)
	_, err = g.Integrate("gadget.swift", depgraph.ParsedSummary{
		Uses: []depgraph.DependencyKey{
			{Aspect: depgraph.Interface, Designator: depgraph.TopLevelName("Widget")},
		},
	}, false, false)
	require.NoError(t, err)

	fw := &scheduler.FirstWave{Graph: g, Record: record}
	states := []scheduler.InputState{
		{Input: depgraph.Input{Path: "widget.swift"}, ModTime: modTime},
		{Input: depgraph.Input{Path: "gadget.swift"}, ModTime: modTime},
	}

	plan := fw.Plan(context.Background(), states, batch)

	mandatoryPaths := map[string]bool{}
	for _, g := range plan.MandatoryJobsInOrder {
		mandatoryPaths[g.PrimaryInputs[0].Path] = true
	}
	assert.True(t, mandatoryPaths["widget.swift"])
	assert.True(t, mandatoryPaths["gadget.swift"], "cascading build should pull in the dependent")
}

func TestFirstWave_MandatoryJobsPreserveInputFileOrder(t *testing.T) {
	buildStart := time.Unix(1700000000, 0)
	modTime := buildStart.Add(-time.Hour)
	record := buildrecord.New(buildStart)
	record.Set("main.swift", buildrecord.UpToDate, modTime)
	record.Set("b.swift", buildrecord.UpToDate, modTime)

	g := depgraph.NewGraph()
	require.NoError(t, g.RegisterSource("main.swift", "main.swift"))
	_, err := g.Integrate("main.swift", depgraph.ParsedSummary{
		Uses: []depgraph.DependencyKey{
			{Aspect: depgraph.Interface, Designator: depgraph.ExternalDependPath("dep.txt")},
		},
	}, false, false)
	require.NoError(t, err)
	g.RegisterExternalDependency("dep.txt", buildStart.Add(time.Hour))

	fw := &scheduler.FirstWave{Graph: g, Record: record}
	states := []scheduler.InputState{
		{Input: depgraph.Input{Path: "main.swift"}, ModTime: modTime},
		{Input: depgraph.Input{Path: "b.swift"}, ModTime: modTime.Add(2 * time.Hour)},
	}

	plan := fw.Plan(context.Background(), states, batch)

	require.Len(t, plan.MandatoryJobsInOrder, 2)
	assert.Equal(t, "main.swift", plan.MandatoryJobsInOrder[0].PrimaryInputs[0].Path,
		"mandatory jobs must preserve input-file order, not discovery order")
	assert.Equal(t, "b.swift", plan.MandatoryJobsInOrder[1].PrimaryInputs[0].Path)
}

func TestFirstWave_AlwaysRebuildDependents_TreatsChangedAsCascading(t *testing.T) {
	modTime := time.Unix(1700000000, 0)
	record := buildrecord.New(time.Now())
	record.Set("widget.swift", buildrecord.UpToDate, modTime)
	record.Set("gadget.swift", buildrecord.UpToDate, modTime)

	g := depgraph.NewGraph()
	require.NoError(t, g.RegisterSource("widget.swift", "widget.swift"))
	require.NoError(t, g.RegisterSource("gadget.swift", "gadget.swift"))
	_, err := g.Integrate("widget.swift", depgraph.ParsedSummary{
		Definitions: []depgraph.Definition{
			{Key: depgraph.DependencyKey{Aspect: depgraph.Interface, Designator: depgraph.TopLevelName("Widget")}, Fingerprint: "v1"},
		},
	}, false, false)
	require.NoError(t, err)
	_, err = g.Integrate("gadget.swift", depgraph.ParsedSummary{
		Uses: []depgraph.DependencyKey{
			{Aspect: depgraph.Interface, Designator: depgraph.TopLevelName("Widget")},
		},
	}, false, false)
	require.NoError(t, err)

	fw := &scheduler.FirstWave{Graph: g, Record: record, AlwaysRebuildDependents: true}
	states := []scheduler.InputState{
		{Input: depgraph.Input{Path: "widget.swift"}, ModTime: modTime.Add(time.Second)},
		{Input: depgraph.Input{Path: "gadget.swift"}, ModTime: modTime},
	}

	plan := fw.Plan(context.Background(), states, batch)

	mandatoryPaths := map[string]bool{}
	for _, grp := range plan.MandatoryJobsInOrder {
		mandatoryPaths[grp.PrimaryInputs[0].Path] = true
	}
	assert.True(t, mandatoryPaths["gadget.swift"], "AlwaysRebuildDependents should speculatively rebuild gadget.swift")
}
