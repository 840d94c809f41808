package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/clonetree/pkg/pipeline"
	"github.com/matzehuels/clonetree/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	run      runFlags
	output   string // output file path (or base path for multiple formats)
	kind     string // graph or tree
	tree     int    // 1-based rank of the tree to draw
	formats  string // comma-separated output formats
	detailed bool   // per-sample AAFs in node labels
	samples  bool   // attach sample leaves to tree diagrams
}

// renderCommand creates the render command, which draws the constraint
// network or one ranked tree.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{kind: pipeline.KindTree, tree: 1}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Draw the constraint network or a ranked lineage tree",
		Example: `  clonetree render patient1.json
  clonetree render patient1.json --tree 2 --samples -f svg,png
  clonetree render patient1.json --kind graph --detailed -o network.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := parseFormats(opts.formats)
			if err != nil {
				return err
			}
			res, runner, err := c.execute(cmd, args[0], &opts.run)
			if err != nil {
				return err
			}
			defer runner.Close()

			ropts := pipeline.RenderOptions{
				Kind:     opts.kind,
				Tree:     opts.tree - 1,
				Formats:  formats,
				Detailed: opts.detailed,
				Samples:  opts.samples,
			}
			artifacts, cached, err := runner.RenderWithCacheInfo(cmd.Context(), res, ropts)
			if err != nil {
				return err
			}

			paths := outputPaths(opts.output, args[0], ropts)
			for _, format := range formats {
				if err := os.WriteFile(paths[format], artifacts[format], 0o644); err != nil {
					return fmt.Errorf("write %s: %w", paths[format], err)
				}
			}

			what := "constraint network"
			if opts.kind == pipeline.KindTree {
				what = fmt.Sprintf("tree %d", opts.tree)
			}
			status := iconFresh
			if cached {
				status = iconCached
			}
			printSuccess("Rendered %s %s", what, StyleDim.Render("("+status+")"))
			printWarnings(res)
			for _, format := range formats {
				printFile(paths[format])
			}
			return nil
		},
	}

	opts.run.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVar(&opts.kind, "kind", opts.kind, "diagram: tree (default), graph")
	cmd.Flags().IntVarP(&opts.tree, "tree", "t", opts.tree, "rank of the tree to draw")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), png, dot (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show per-sample AAFs in node labels")
	cmd.Flags().BoolVar(&opts.samples, "samples", false, "attach sample leaves to tree diagrams")

	return cmd
}

// outputPaths names one file per format. A single format writes to output
// verbatim; otherwise the extension of output (or of a name derived from
// the input) is replaced per format.
func outputPaths(output, input string, opts pipeline.RenderOptions) map[render.Format]string {
	paths := make(map[render.Format]string, len(opts.Formats))
	if output != "" && len(opts.Formats) == 1 {
		paths[opts.Formats[0]] = output
		return paths
	}

	base := strings.TrimSuffix(output, filepath.Ext(output))
	if output == "" {
		name := appName
		if input != "-" {
			name = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		}
		suffix := "-" + pipeline.KindGraph
		if opts.Kind == pipeline.KindTree {
			suffix = fmt.Sprintf("-tree%d", opts.Tree+1)
		}
		base = name + suffix
	}
	for _, f := range opts.Formats {
		paths[f] = base + "." + string(f)
	}
	return paths
}
