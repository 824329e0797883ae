package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/matzehuels/latentscope/internal/server"
	"github.com/matzehuels/latentscope/pkg/geometry"
	"github.com/matzehuels/latentscope/pkg/latent"
	"github.com/matzehuels/latentscope/pkg/recon"
)

// serveCommand creates the serve command for the HTTP front end.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dataset and explorer API over HTTP",
		Long: `Serve the dataset and explorer API over HTTP.

Assets are read from the data directory through the asset cache and served
under /data/. The /api routes report layouts, samples and reconstructions;
/metrics exposes Prometheus metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			e, err := c.open(ctx, logger)
			if err != nil {
				return err
			}
			defer e.Close()

			metrics := server.NewMetrics()
			metrics.Install()

			shared := recon.NewShared(e.client)
			settings, err := e.settings(ctx, shared)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				e.cfg.Server.Addr = addr
			}

			consts := geometry.DefaultConstants()
			consts.Sliders = latent.Dims
			srv := server.New(e.client, shared, server.Options{
				Addr:         e.cfg.Server.Addr,
				ReadTimeout:  e.cfg.Server.ReadTimeout.Duration,
				WriteTimeout: e.cfg.Server.WriteTimeout.Duration,
				Settings:     settings,
				Constants:    consts,
				Metrics:      metrics,
				Logger:       logger,
			})
			printInfo(cmd.OutOrStdout(), "Serving samples [%d, %d) on %s", settings.MinRange, settings.MaxRange, e.cfg.Server.Addr)

			err = srv.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")

	return cmd
}
