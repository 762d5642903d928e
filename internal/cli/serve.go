package cli

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pedigree/internal/server"
	"github.com/matzehuels/pedigree/pkg/export"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API for the animal registry, pedigrees and exports.

Prometheus metrics are served at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			reg, err := c.openRegistry(ctx, cfg)
			if err != nil {
				return err
			}
			defer reg.Close()

			sink, err := c.newSink(ctx, cfg)
			if err != nil {
				return err
			}
			deps, err := c.newPipeline(ctx, cfg, export.NopSurface{}, sink, false, export.PerRoot)
			if err != nil {
				return err
			}
			defer deps.Close()

			promReg := prometheus.NewRegistry()
			promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			server.NewMetrics(promReg).Install()

			srv := server.New(server.Options{
				Registry:        reg,
				Resolver:        c.newResolver(reg),
				Exporter:        deps.Pipeline,
				SVG:             deps.Renderer,
				Gatherer:        promReg,
				Logger:          c.Logger,
				ReadTimeout:     cfg.Server.ReadTimeout,
				WriteTimeout:    cfg.Server.WriteTimeout,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
			})
			c.Logger.Info("starting server", "store", cfg.Store.Driver, "cache", cfg.Cache.Driver, "artifacts", cfg.Artifacts.Driver)
			err = srv.ListenAndServe(ctx, cfg.Server.Addr)
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}
