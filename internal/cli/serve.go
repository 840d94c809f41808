package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/clonetree/internal/api"
	"github.com/matzehuels/clonetree/pkg/pipeline"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr     string
	timeout  time.Duration
	maxTrees int
	maxBody  int64
	noCache  bool
}

// serveCommand creates the serve command, which exposes the pipeline over
// HTTP until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:     ":8080",
		timeout:  api.DefaultTimeout,
		maxTrees: api.DefaultMaxTrees,
		maxBody:  api.DefaultMaxBodyBytes,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve reconstructions over HTTP",
		Long: `Serve starts the HTTP API:

  GET  /healthz         liveness and build version
  POST /v1/reconstruct  mutation set in, ranked lineage report out
  POST /v1/render       mutation set in, diagram out

Model defaults come from the configuration file; requests may override them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			runner, err := c.newRunner(ctx, opts.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			model := c.config.Model
			srv := api.New(runner, c.Logger, api.Config{
				Timeout:      opts.timeout,
				MaxBodyBytes: opts.maxBody,
				MaxTrees:     opts.maxTrees,
				Defaults: pipeline.Options{
					ErrorMargin:   model.ErrorMargin,
					RootAAF:       model.RootAAF,
					KeepShortcuts: model.KeepShortcuts,
					AllLevels:     model.AllLevels,
				},
			})

			loggerFromContext(ctx).Info("serving", "addr", opts.addr, "cache", c.config.Cache.Backend)
			return srv.ListenAndServe(ctx, opts.addr)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", opts.timeout, "per-request enumeration timeout")
	cmd.Flags().IntVar(&opts.maxTrees, "max-trees", opts.maxTrees, "per-request enumeration budget")
	cmd.Flags().Int64Var(&opts.maxBody, "max-body", opts.maxBody, "maximum request body in bytes")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")

	return cmd
}
