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
	"context"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"

	"github.com/buildgraph/incplan/internal/config"
	"github.com/buildgraph/incplan/internal/depgraph"
	"github.com/buildgraph/incplan/internal/execution"
	"github.com/buildgraph/incplan/internal/metrics"
	"github.com/buildgraph/incplan/internal/outputmap"
	"github.com/buildgraph/incplan/internal/remark"
	"github.com/buildgraph/incplan/internal/scheduler"
)

// SimulateOptions holds the simulate subcommand's flags. Flags carries
// the behavior toggles shared with the plan subcommand.
type SimulateOptions struct {
	BuildRecordPath       string
	OutputMapPath         string
	Parallelism           int
	DispatchRatePerSecond float64
	MetricsAddr           string
	LogLevel              int
	FailInputs            []string
	Flags                 config.Flags
}

// customLevelEnabler maps a plain integer verbosity flag onto zapcore's
// named levels rather than exposing level names on the CLI.
type customLevelEnabler struct{ level int }

func (c customLevelEnabler) Enabled(lvl zapcore.Level) bool { return -int(lvl) <= c.level }

// NewSimulateCommand builds the simulate subcommand: runs the complete
// two-wave build against an in-memory compile fixture — there is no
// real subprocess launch — driving internal/execution.Runner
// until internal/scheduler.SecondWave reports the build complete.
func NewSimulateCommand(cli *CLI) *cobra.Command {
	opts := SimulateOptions{Parallelism: 4, Flags: config.Default()}

	cmd := &cobra.Command{
		Use:   "simulate <input>...",
		Short: "Plan and drive a complete incremental build",
		Long: Highlight("incplan simulate") + "\n\n" +
			"Runs the first-wave planner, then dispatches the resulting jobs\n" +
			"through a bounded-parallelism runner, re-integrating each finished\n" +
			"job's summary and releasing newly-runnable dependents until no\n" +
			"work remains.\n",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cli, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.BuildRecordPath, "build-record", "", "Path to the prior build record (.yaml)")
	cmd.Flags().StringVar(&opts.OutputMapPath, "output-map", "", "Path to the output file map (.yaml)")
	cmd.Flags().BoolVar(&opts.Flags.AlwaysRebuildDependents, "always-rebuild-dependents", false,
		"Treat every directly changed input as cascading")
	cmd.Flags().IntVar(&opts.Parallelism, "parallelism", 4, "Maximum number of concurrent compile jobs")
	cmd.Flags().Float64Var(&opts.DispatchRatePerSecond, "dispatch-rate", 0,
		"Maximum job dispatch rate per second (0 disables throttling)")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "Address to serve Prometheus metrics on (empty disables)")
	cmd.Flags().IntVar(&opts.LogLevel, "log-level", 0, "Daemon log verbosity; 0 is least verbose")
	cmd.Flags().StringSliceVar(&opts.FailInputs, "fail-input", nil, "Input paths whose compile job should report failure")
	cmd.Flags().BoolVar(&opts.Flags.ShowIncremental, "show-incremental", true, "Print queuing/skipping remarks for each input")
	cmd.Flags().BoolVar(&opts.Flags.ShowJobLifecycle, "show-job-lifecycle", false, "Log each compile job as it is dispatched (debug level)")

	return cmd
}

func runSimulate(cli *CLI, opts SimulateOptions, inputs []string) error {
	buildStart := time.Now()
	ctx := context.Background()

	logger := zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(os.Stderr),
		customLevelEnabler{level: opts.LogLevel},
	))
	defer func() { _ = logger.Sync() }()

	record := loadOrNewRecord(opts.BuildRecordPath, buildStart)

	omap, err := outputmap.Load(opts.OutputMapPath)
	if err != nil {
		remark.Disabling(remarkSinkFor(cli), err.Error())
		return err
	}

	graph := depgraph.NewGraph()
	states, err := loadInputStates(inputs, graph, omap, opts.Flags.EmitDotAfterIntegration, opts.Flags.VerifyAfterIntegration)
	if err != nil {
		return err
	}

	fw := &scheduler.FirstWave{
		Graph:                   graph,
		Record:                  record,
		AlwaysRebuildDependents: opts.Flags.AlwaysRebuildDependents,
	}
	batch := batcherForSingleInputJobs()
	plan := fw.Plan(ctx, states, batch)

	var plannerMetrics *metrics.Planner
	if opts.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		plannerMetrics = metrics.New(reg)
		plannerMetrics.SetIncrementalEnabled(true)
		plannerMetrics.MandatorySetSize.Set(float64(len(plan.MandatoryJobsInOrder)))
		plannerMetrics.SkippedSetSize.Set(float64(len(plan.Skipped)))

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		server := &http.Server{Addr: opts.MetricsAddr, Handler: mux}
		go func() {
			if serveErr := server.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
				logger.Error("metrics server exited", zap.Error(serveErr))
			}
		}()
		defer server.Close()
	}

	sink := remarkSinkFor(cli)
	if opts.Flags.ShowIncremental {
		for _, group := range plan.MandatoryJobsInOrder {
			for _, in := range group.PrimaryInputs {
				remark.Queuing(sink, compileFor(in.Path, omap))
			}
		}
	}

	failSet := make(map[string]bool, len(opts.FailInputs))
	for _, p := range opts.FailInputs {
		failSet[p] = true
	}

	reint := &fixtureReintegrator{graph: graph, omap: omap}
	second := scheduler.NewSecondWave(plan.Skipped, plan.MandatoryJobsInOrder, reint, simulateRemarkWriter{sink})

	compile := func(ctx context.Context, group scheduler.CompileJobGroup) (int, error) {
		for _, in := range group.PrimaryInputs {
			if opts.Flags.ShowJobLifecycle {
				logger.Debug("compiling", zap.String("input", in.Path))
			}
			if failSet[in.Path] {
				return 1, nil
			}
		}
		return 0, nil
	}

	var limiter *rate.Limiter
	if opts.DispatchRatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.DispatchRatePerSecond), opts.Parallelism)
	}

	runner := execution.NewRunner(second, compile, execution.Options{
		Parallelism:     opts.Parallelism,
		DispatchLimiter: limiter,
		Metrics:         plannerMetrics,
	})

	if err := runner.Run(ctx, plan.MandatoryJobsInOrder); err != nil {
		return err
	}

	if opts.Flags.ShowIncremental {
		for _, path := range second.RemainingSkipped() {
			remark.Skipping(sink, compileFor(path, omap))
		}
	}

	cli.Printf("build complete: %d remaining skipped\n", len(second.RemainingSkipped()))
	return nil
}

// fixtureReintegrator re-reads the summary file the output map already
// points at for a recompiled input. It stands in for the real compiler
// driver handing back a freshly written summary: the simulate fixture
// assumes the file on disk already reflects whatever the caller wants
// this compile to have produced.
type fixtureReintegrator struct {
	graph *depgraph.Graph
	omap  *outputmap.OutputMap
}

func (f *fixtureReintegrator) ReintegrateAndTrace(primaryInput depgraph.Input) ([]depgraph.Input, error) {
	provider, ok := f.graph.ProviderFor(primaryInput.Path)
	if !ok {
		provider = depgraph.Provider(primaryInput.Path)
	}

	summaryPath, ok := f.omap.PathFor(primaryInput.Path, depgraph.OutputKindSummary)
	if !ok {
		return nil, &depgraph.MalformedSummary{Provider: provider}
	}

	parsed, err := parseSummaryFile(summaryPath, provider)
	if err != nil {
		return nil, &depgraph.MalformedSummary{Provider: provider, Err: err}
	}

	return f.graph.IntegrateAndTrace(provider, parsed)
}

// simulateRemarkWriter adapts a remark.Sink to the io.Writer SecondWave
// expects for its fallback diagnostics.
type simulateRemarkWriter struct{ sink remark.Sink }

func (w simulateRemarkWriter) Write(p []byte) (int, error) {
	w.sink.Remark(string(p))
	return len(p), nil
}
