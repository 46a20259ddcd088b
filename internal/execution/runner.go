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

// Package execution stands in for the compiler driver: it runs a dynamically growing set
// of scheduler.CompileJobGroups with bounded parallelism and funnels
// every completion, one at a time, into scheduler.SecondWave.JobFinished.
//
// Unlike a walker over a statically known DAG computed up front, the
// job graph here is not known in advance:
// the second wave discovers newly-runnable groups only as each compile
// finishes. The worker-pool shape (bounded semaphore, errgroup,
// channel-fed ready queue) is kept; the static indegree/nextVertices
// bookkeeping is replaced by SecondWave's own skippedGroups/unfinishedJobs
// state.
package execution

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/buildgraph/incplan/internal/metrics"
	"github.com/buildgraph/incplan/internal/scheduler"
)

// CompileFunc runs one job group and reports its outcome. In
// `cmd/incplan simulate` this is backed by a deterministic in-memory
// fixture rather than a real subprocess, consistent with compilation
// launch staying out of scope.
type CompileFunc func(ctx context.Context, group scheduler.CompileJobGroup) (exitCode int, err error)

// Options configures the runner's execution behavior.
type Options struct {
	// Parallelism bounds concurrent compiles. If <= 0, defaults to
	// runtime.NumCPU().
	Parallelism int

	// DispatchLimiter, if non-nil, throttles how fast new jobs are
	// handed to workers — grounded on the rate-limiter wiring pattern
	// in pkg/dynamiccontroller, generalized here to dispatch throttling
	// instead of API-request throttling.
	DispatchLimiter *rate.Limiter

	// Metrics, if non-nil, receives job outcome counts.
	Metrics *metrics.Planner
}

// Runner drives CompileJobGroups to completion against a SecondWave.
type Runner struct {
	second  *scheduler.SecondWave
	compile CompileFunc
	opts    Options
}

// NewRunner constructs a Runner bound to second, which owns the single
// serializing critical section that every completion is
// funneled through.
func NewRunner(second *scheduler.SecondWave, compile CompileFunc, opts Options) *Runner {
	if opts.Parallelism <= 0 {
		opts.Parallelism = runtime.NumCPU()
	}
	return &Runner{second: second, compile: compile, opts: opts}
}

// Run dispatches initial (the mandatory first wave), then keeps
// dispatching whatever SecondWave.JobFinished releases until the
// scheduler reports the build complete, JobFinished returns an error
// (a failed job surfaces as *scheduler.JobFailed, which Run returns),
// or ctx is cancelled.
func (r *Runner) Run(ctx context.Context, initial []scheduler.CompileJobGroup) error {
	if len(initial) == 0 {
		// Scenario 1, "no changes": nothing to compile, nothing to
		// discover from a completion that never happens.
		return nil
	}

	// Buffered generously: every group ever released by the second wave
	// is sent here at most once, and there are at most len(all inputs)
	// of them across the whole build.
	ready := make(chan scheduler.CompileJobGroup, 4096)
	for _, g := range initial {
		ready <- g
	}

	var closeOnce sync.Once
	closeReady := func() { closeOnce.Do(func() { close(ready) }) }

	sem := semaphore.NewWeighted(int64(r.opts.Parallelism))
	g, ctx := errgroup.WithContext(ctx)

	for i := 0; i < r.opts.Parallelism; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case job, ok := <-ready:
					if !ok {
						return nil
					}
					if r.opts.DispatchLimiter != nil {
						if err := r.opts.DispatchLimiter.Wait(ctx); err != nil {
							return err
						}
					}
					if err := sem.Acquire(ctx, 1); err != nil {
						return err
					}
					exitCode, err := r.compile(ctx, job)
					sem.Release(1)

					success := err == nil && exitCode == 0
					if r.opts.Metrics != nil {
						if success {
							r.opts.Metrics.RecordJobSuccess()
						} else {
							r.opts.Metrics.RecordJobFailure()
						}
					}

					result, waveErr := r.second.JobFinished(scheduler.JobOutcome{Finished: job, Success: success})
					if waveErr != nil {
						closeReady()
						return waveErr
					}
					if result.Done {
						closeReady()
						return nil
					}
					for _, nj := range result.NewJobs {
						select {
						case ready <- nj:
						case <-ctx.Done():
							return ctx.Err()
						}
					}
				}
			}
		})
	}

	return g.Wait()
}
