package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	cio "github.com/matzehuels/clonetree/pkg/io"
	"github.com/matzehuels/clonetree/pkg/pipeline"
)

// defaultShown is how many ranked trees the summary table lists.
const defaultShown = 5

// reconstructOpts holds the command-line flags for the reconstruct command.
type reconstructOpts struct {
	run    runFlags
	output string // report file path
	json   bool   // print the report as JSON instead of the summary
	shown  int    // ranked trees listed in the summary
}

// reconstructCommand creates the reconstruct command, which ranks lineage
// trees and prints the per-sample lineages of the best one.
func (c *CLI) reconstructCommand() *cobra.Command {
	opts := reconstructOpts{shown: defaultShown}

	cmd := &cobra.Command{
		Use:   "reconstruct [file]",
		Short: "Rank lineage trees for a mutation set",
		Long: `Reconstruct reads a mutation set (JSON, or a tab-separated AAF table with
one row per mutation), enumerates every spanning tree of its constraint
network and ranks the trees satisfying the AAF sum rule by error score.

Use "-" to read from stdin.`,
		Example: `  clonetree reconstruct patient1.json
  clonetree reconstruct snvs.tsv --min-aaf 0.05 --max-trees 100000
  clonetree reconstruct patient1.json --json > report.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.json {
				opts.run.quiet = true
			}
			res, runner, err := c.execute(cmd, args[0], &opts.run)
			if err != nil {
				return err
			}
			defer runner.Close()

			if opts.output != "" {
				if err := writeReportFile(opts.output, res.Report); err != nil {
					return err
				}
			}
			if opts.json {
				return cio.WriteReport(res.Report, cmd.OutOrStdout())
			}
			printSummary(cmd.OutOrStdout(), res, opts.shown)
			if opts.output != "" {
				printFile(opts.output)
			}
			printNextStep("Draw the best tree", fmt.Sprintf("%s render %s", appName, args[0]))
			return nil
		},
	}

	opts.run.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the JSON report to this file")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the JSON report to stdout")
	cmd.Flags().IntVar(&opts.shown, "show", opts.shown, "ranked trees listed in the summary (0 = all kept)")

	return cmd
}

// printSummary writes the ranking table and the lineage of every sample
// in the best tree.
func printSummary(w io.Writer, res *pipeline.Result, shown int) {
	printSuccess("Found %d valid lineage trees", res.Stats.Valid)
	fmt.Println(statsLine(res.Stats.NodeCount, res.Stats.EdgeCount, res.Report.Enumerated, res.CacheInfo.Hit))
	printWarnings(res)

	fmt.Fprintln(w, rankTable(res.Report.Trees, shown))
	fmt.Fprintln(w, StyleTitle.Render("Best tree lineages"))
	for _, l := range res.Report.Lineages {
		fmt.Fprintln(w, l.Text)
	}
}

// writeReportFile writes report as JSON to path.
func writeReportFile(path string, report *cio.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := cio.WriteReport(report, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
