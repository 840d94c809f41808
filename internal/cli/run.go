package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/clonetree/pkg/config"
	cio "github.com/matzehuels/clonetree/pkg/io"
	"github.com/matzehuels/clonetree/pkg/phylo"
	"github.com/matzehuels/clonetree/pkg/pipeline"
)

// runFlags holds the reconstruction flags shared by reconstruct, render
// and browse. Flags the user did not set fall back to the configuration.
type runFlags struct {
	inputFormat   string
	margin        float64
	rootAAF       float64
	keepShortcuts bool
	allLevels     bool
	maxTrees      int
	top           int
	timeout       time.Duration
	minAAF        float64
	minRobust     int
	noRebuild     bool
	noCache       bool
	refresh       bool
	quiet         bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.inputFormat, "input-format", "", "input format: json, table (default: by extension)")
	fl.Float64Var(&f.margin, "margin", phylo.DefaultErrorMargin, "error margin for AAF comparisons")
	fl.Float64Var(&f.rootAAF, "root-aaf", phylo.DefaultRootAAF, "germline AAF in every sample")
	fl.BoolVar(&f.keepShortcuts, "keep-shortcuts", false, "keep edges to nodes already reachable through a closer parent")
	fl.BoolVar(&f.allLevels, "all-levels", false, "add edges between non-adjacent levels")
	fl.IntVar(&f.maxTrees, "max-trees", 0, "stop enumeration after this many trees (0 = unbounded)")
	fl.IntVar(&f.top, "top", pipeline.DefaultTop, "number of ranked trees to keep")
	fl.DurationVar(&f.timeout, "timeout", 0, "stop enumeration after this long (default from config)")
	fl.Float64Var(&f.minAAF, "min-aaf", cio.DefaultMinAAF, "table input: AAF above which a mutation is present")
	fl.IntVar(&f.minRobust, "min-robust", cio.DefaultMinRobustSize, "table input: mutations needed for a robust group")
	fl.BoolVar(&f.noRebuild, "no-rebuild", false, "fail instead of retrying with robust groups only")
	fl.BoolVar(&f.noCache, "no-cache", false, "disable the result cache")
	fl.BoolVar(&f.refresh, "refresh", false, "recompute even when a cached result exists")
	fl.BoolVarP(&f.quiet, "quiet", "q", false, "hide the progress spinner")
}

// settings merges the flags the user set over cfg.
func (f *runFlags) settings(cmd *cobra.Command, cfg config.Config) (pipeline.Options, cio.TableOptions, time.Duration) {
	opts := pipeline.Options{
		ErrorMargin:   cfg.Model.ErrorMargin,
		RootAAF:       cfg.Model.RootAAF,
		KeepShortcuts: cfg.Model.KeepShortcuts,
		AllLevels:     cfg.Model.AllLevels,
		MaxTrees:      cfg.Enumeration.MaxTrees,
		Top:           f.top,
		NoRebuild:     f.noRebuild,
		Refresh:       f.refresh,
	}
	table := cfg.TableOptions()
	timeout := cfg.Enumeration.Timeout.Duration

	changed := cmd.Flags().Changed
	if changed("margin") {
		opts.ErrorMargin = f.margin
	}
	if changed("root-aaf") {
		opts.RootAAF = f.rootAAF
	}
	if changed("keep-shortcuts") {
		opts.KeepShortcuts = f.keepShortcuts
	}
	if changed("all-levels") {
		opts.AllLevels = f.allLevels
	}
	if changed("max-trees") {
		opts.MaxTrees = f.maxTrees
	}
	if changed("timeout") {
		timeout = f.timeout
	}
	if changed("min-aaf") {
		table.MinAAF = f.minAAF
	}
	if changed("min-robust") {
		table.MinRobustSize = f.minRobust
	}
	return opts, table, timeout
}

// execute loads the input at path and runs the pipeline. The caller owns
// the returned runner and must close it.
func (c *CLI) execute(cmd *cobra.Command, path string, f *runFlags) (*pipeline.Result, *pipeline.Runner, error) {
	ctx := withLogger(cmd.Context(), c.Logger)
	logger := loggerFromContext(ctx)
	opts, table, timeout := f.settings(cmd, c.config)

	set, err := pipeline.LoadInput(path, f.inputFormat, table)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("loaded mutation set",
		"samples", set.NumSamples(),
		"groups", len(set.Groups),
		"nodes", set.NodeCount())

	runner, err := c.newRunner(ctx, f.noCache)
	if err != nil {
		return nil, nil, err
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var spinner *Spinner
	if !f.quiet {
		spinner = newSpinnerWithContext(ctx, "Enumerating spanning trees...")
		opts.Progress = func(n int) {
			spinner.SetMessage(fmt.Sprintf("Enumerated %d trees...", n))
		}
		spinner.Start()
	}

	prog := newProgress(logger)
	res, err := runner.Execute(ctx, set, opts)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		runner.Close()
		return nil, nil, err
	}
	prog.done("Reconstructed lineages", "trees", len(res.Trees), "cached", res.CacheInfo.Hit)
	return res, runner, nil
}

// printWarnings reports partial or rebuilt results.
func printWarnings(res *pipeline.Result) {
	if res.Report.Truncated {
		printWarning("Enumeration stopped after %d trees; ranking is partial", res.Report.Enumerated)
	}
	if res.Report.Rebuilt {
		printWarning("No tree fitted every group; rebuilt from robust groups only")
	}
}
