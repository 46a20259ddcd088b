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

package execution_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildgraph/incplan/internal/depgraph"
	"github.com/buildgraph/incplan/internal/execution"
	"github.com/buildgraph/incplan/internal/scheduler"
)

type fakeReintegrator struct {
	mu   sync.Mutex
	deps map[string][]depgraph.Input
}

func (f *fakeReintegrator) ReintegrateAndTrace(primary depgraph.Input) ([]depgraph.Input, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deps[primary.Path], nil
}

func jobGroup(path string) scheduler.CompileJobGroup {
	return scheduler.CompileJobGroup{ID: scheduler.JobID(path), PrimaryInputs: []depgraph.Input{{Path: path}}}
}

func TestRunner_Run_NoInitialJobsIsNoOp(t *testing.T) {
	second := scheduler.NewSecondWave(nil, nil, &fakeReintegrator{}, nil)
	r := execution.NewRunner(second, func(ctx context.Context, g scheduler.CompileJobGroup) (int, error) {
		t.Fatal("compile should never be called with no initial jobs")
		return 0, nil
	}, execution.Options{})

	require.NoError(t, r.Run(context.Background(), nil))
}

func TestRunner_Run_DrivesDiscoveredDependentsToCompletion(t *testing.T) {
	reint := &fakeReintegrator{deps: map[string][]depgraph.Input{
		"a.swift": {{Path: "b.swift"}},
	}}
	skipped := map[string]scheduler.CompileJobGroup{"b.swift": jobGroup("b.swift")}
	second := scheduler.NewSecondWave(skipped, []scheduler.CompileJobGroup{jobGroup("a.swift")}, reint, nil)

	var mu sync.Mutex
	compiled := map[string]bool{}
	compile := func(ctx context.Context, g scheduler.CompileJobGroup) (int, error) {
		mu.Lock()
		compiled[g.PrimaryInputs[0].Path] = true
		mu.Unlock()
		return 0, nil
	}

	r := execution.NewRunner(second, compile, execution.Options{Parallelism: 2})
	err := r.Run(context.Background(), []scheduler.CompileJobGroup{jobGroup("a.swift")})
	require.NoError(t, err)

	assert.True(t, compiled["a.swift"])
	assert.True(t, compiled["b.swift"])
	assert.Empty(t, second.RemainingSkipped())
}

func TestRunner_Run_PropagatesJobFailure(t *testing.T) {
	second := scheduler.NewSecondWave(nil, []scheduler.CompileJobGroup{jobGroup("a.swift")}, &fakeReintegrator{}, nil)
	compile := func(ctx context.Context, g scheduler.CompileJobGroup) (int, error) {
		return 1, nil
	}

	r := execution.NewRunner(second, compile, execution.Options{Parallelism: 1})
	err := r.Run(context.Background(), []scheduler.CompileJobGroup{jobGroup("a.swift")})

	require.Error(t, err)
	var jf *scheduler.JobFailed
	require.ErrorAs(t, err, &jf)
}
