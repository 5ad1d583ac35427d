package commands

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/usefold/pkg/language"
	"github.com/Sumatoshi-tech/usefold/pkg/lsp"
	"github.com/Sumatoshi-tech/usefold/pkg/observability"
	"github.com/Sumatoshi-tech/usefold/pkg/version"
)

const (
	metricsPath            = "/metrics"
	metricsReadTimeout     = 5 * time.Second
	metricsShutdownTimeout = 2 * time.Second
	opMetricsScrape        = "metrics.scrape"
)

// NewLSPCommand creates the language server command.
func NewLSPCommand(global *GlobalOptions) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the import folding language server (stdio)",
		Long: `Start a Language Server Protocol server on stdio that answers
textDocument/foldingRange with the import groups of open documents whose
language id is in the configured language set.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("metrics-addr") {
				cfg.Telemetry.MetricsAddr = metricsAddr
			}

			obsCfg, err := observabilityConfig(cfg, global, observability.ModeLSP)
			if err != nil {
				return err
			}

			tel, err := initTelemetry(obsCfg)
			if err != nil {
				return err
			}
			defer tel.shutdown()

			if tel.MetricsHandler != nil {
				stop := serveMetrics(cfg.Telemetry.MetricsAddr, tel.MetricsHandler, tel)
				defer stop()
			}

			srv := lsp.NewServer(lsp.Options{
				Languages: language.NewSet(cfg.Languages...),
				Logger:    tel.Logger,
				Tracer:    tel.Tracer,
				RED:       tel.RED,
				Fold:      tel.Fold,
				Version:   version.Version,
			})

			return srv.Run()
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9464)")

	return cmd
}

// serveMetrics exposes handler on addr until the returned func is called.
func serveMetrics(addr string, handler http.Handler, tel *telemetry) func() {
	mux := http.NewServeMux()
	mux.Handle(metricsPath, observability.HTTPMiddleware(tel.Tracer, tel.RED, opMetricsScrape, handler))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: metricsReadTimeout,
	}

	go func() {
		tel.Logger.Info("serving metrics", "addr", addr, "path", metricsPath)

		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			tel.Logger.Error("metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			tel.Logger.Warn("metrics server shutdown failed", "error", err)
		}
	}
}
