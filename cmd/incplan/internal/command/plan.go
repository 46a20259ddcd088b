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
	"os"
	"sort"
	"time"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/buildgraph/incplan/internal/config"
	"github.com/buildgraph/incplan/internal/depgraph"
	"github.com/buildgraph/incplan/internal/outputmap"
	"github.com/buildgraph/incplan/internal/remark"
	"github.com/buildgraph/incplan/internal/scheduler"
)

// PlanOptions holds the plan subcommand's flags. Flags carries the
// behavior toggles shared with the simulate subcommand; BuildRecordPath,
// OutputMapPath, and EmitDot are plan-specific and stay separate.
type PlanOptions struct {
	BuildRecordPath string
	OutputMapPath   string
	EmitDot         string
	Flags           config.Flags
}

// NewPlanCommand builds the plan subcommand: runs the first-wave planner
// against a set of input paths and prints the resulting mandatory/
// skipped partition, without compiling anything.
func NewPlanCommand(cli *CLI) *cobra.Command {
	opts := PlanOptions{Flags: config.Default()}

	cmd := &cobra.Command{
		Use:   "plan <input>...",
		Short: "Compute the first-wave mandatory compile set",
		Long: Highlight("incplan plan") + "\n\n" +
			"Classifies every given input against the prior build record and\n" +
			"traces the dependency graph to decide which inputs must compile\n" +
			"before any job runs.\n",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cli, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.BuildRecordPath, "build-record", "", "Path to the prior build record (.yaml)")
	cmd.Flags().StringVar(&opts.OutputMapPath, "output-map", "", "Path to the output file map (.yaml)")
	cmd.Flags().BoolVar(&opts.Flags.AlwaysRebuildDependents, "always-rebuild-dependents", false,
		"Treat every directly changed input as cascading")
	cmd.Flags().StringVar(&opts.EmitDot, "emit-dot", "", "Write a Graphviz snapshot after each integration to this path")
	cmd.Flags().BoolVar(&opts.Flags.VerifyAfterIntegration, "verify", false, "Verify node finder invariants after each integration")
	cmd.Flags().BoolVar(&opts.Flags.ShowIncremental, "show-incremental", true, "Print queuing/skipping remarks for each input")

	return cmd
}

func runPlan(cli *CLI, opts PlanOptions, inputs []string) error {
	buildStart := time.Now()

	opts.Flags.EmitDotAfterIntegration = opts.EmitDot != ""

	record := loadOrNewRecord(opts.BuildRecordPath, buildStart)

	omap, err := outputmap.Load(opts.OutputMapPath)
	if err != nil {
		remark.Disabling(remarkSinkFor(cli), err.Error())
		return err
	}

	graph := depgraph.NewGraph()
	if opts.EmitDot != "" {
		f, ferr := os.Create(opts.EmitDot)
		if ferr != nil {
			return ferr
		}
		defer f.Close()
		graph.SetDotSink(f)
	}

	states, err := loadInputStates(inputs, graph, omap, opts.Flags.EmitDotAfterIntegration, opts.Flags.VerifyAfterIntegration)
	if err != nil {
		return err
	}

	fw := &scheduler.FirstWave{
		Graph:                   graph,
		Record:                  record,
		AlwaysRebuildDependents: opts.Flags.AlwaysRebuildDependents,
	}
	plan := fw.Plan(context.Background(), states, batcherForSingleInputJobs())

	printPlan(cli, plan, omap, opts.Flags)
	return nil
}

func printPlan(cli *CLI, plan scheduler.Plan, omap *outputmap.OutputMap, cfg config.Flags) {
	tbl := table.New("Input", "Action", "Compile")
	tbl.WithWriter(cli.Writer)

	sink := remarkSinkFor(cli)

	for _, group := range plan.MandatoryJobsInOrder {
		for _, in := range group.PrimaryInputs {
			c := compileFor(in.Path, omap)
			if cfg.ShowIncremental {
				remark.Queuing(sink, c)
			}
			tbl.AddRow(in.Path, "mandatory", remark.Format("queuing", c))
		}
	}

	skippedPaths := make([]string, 0, len(plan.Skipped))
	for path := range plan.Skipped {
		skippedPaths = append(skippedPaths, path)
	}
	sort.Strings(skippedPaths)
	for _, path := range skippedPaths {
		c := compileFor(path, omap)
		if cfg.ShowIncremental {
			remark.Skipping(sink, c)
		}
		tbl.AddRow(path, "skipped", remark.Format("skipping", c))
	}

	tbl.Print()
	cli.Printf("\n%d mandatory, %d skipped\n", len(plan.MandatoryJobsInOrder), len(plan.Skipped))
}

func compileFor(path string, omap *outputmap.OutputMap) remark.Compile {
	objPath, ok := omap.PathFor(path, depgraph.OutputKindObject)
	if !ok {
		return remark.Compile{}
	}
	return remark.Compile{
		OutputBasename: outputmap.Basename(objPath),
		InputBasename:  outputmap.Basename(path),
		HasOutput:      true,
	}
}

// remarkSinkFor adapts cli's Logger to a remark.Sink.
func remarkSinkFor(cli *CLI) remark.Sink {
	return remarkSink{cli}
}

type remarkSink struct{ cli *CLI }

func (r remarkSink) Remark(message string) { r.cli.Logger().Info(message) }
