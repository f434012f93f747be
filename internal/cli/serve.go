package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/roomweaver/internal/api"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		cfg      api.Config
		backends backendFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layout generation over HTTP",
		Long: `Serve exposes generation and the layout store as a JSON API:

  POST   /v1/layouts                   generate from {"blueprint": ..., "options": ...}
  GET    /v1/layouts                   list stored layouts
  GET    /v1/layouts/{id}              layout document
  DELETE /v1/layouts/{id}
  GET    /v1/layouts/{id}/floors/{z}.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, backends, apiScope, true)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv, err := api.New(runner, cfg)
			if err != nil {
				return err
			}
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&cfg.Addr, "addr", api.DefaultAddr, "listen address")
	cmd.Flags().DurationVar(&cfg.GenerateTimeout, "timeout", api.DefaultGenerateTimeout, "time limit per generate request")
	cmd.Flags().Int64Var(&cfg.MaxBodyBytes, "max-body", api.DefaultMaxBodyBytes, "request body limit in bytes")
	backends.bindCache(cmd)
	backends.bindStore(cmd, "layout store")

	return cmd
}
