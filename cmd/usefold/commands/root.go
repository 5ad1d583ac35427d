// Package commands implements the usefold CLI commands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/usefold/pkg/config"
	"github.com/Sumatoshi-tech/usefold/pkg/observability"
	"github.com/Sumatoshi-tech/usefold/pkg/version"
)

// otlpEndpointEnv is consulted when telemetry.otlp_endpoint is not configured.
const otlpEndpointEnv = "OTEL_EXPORTER_OTLP_ENDPOINT"

// GlobalOptions holds the persistent root flags.
type GlobalOptions struct {
	ConfigPath string
	Verbose    bool
	Quiet      bool
}

// NewRootCommand builds the usefold command tree.
func NewRootCommand() *cobra.Command {
	global := &GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "usefold",
		Short: "Fold groups of import statements",
		Long: `usefold finds runs of consecutive import (use) statements and reports them
as foldable line ranges.

Commands:
  fold      Print import folding ranges for files or stdin
  classify  Show how each line of a file is classified
  lsp       Serve folding ranges to editors over LSP (stdio)
  mcp       Serve folding ranges to AI agents over MCP (stdio)`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&global.ConfigPath, "config", "", "config file (default: .usefold.yaml in CWD or $HOME)")
	rootCmd.PersistentFlags().BoolVarP(&global.Verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&global.Quiet, "quiet", "q", false, "suppress output")

	rootCmd.AddCommand(NewFoldCommand(global))
	rootCmd.AddCommand(NewClassifyCommand(global))
	rootCmd.AddCommand(NewLSPCommand(global))
	rootCmd.AddCommand(NewMCPCommand(global))
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "usefold %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}

func loadConfig(global *GlobalOptions) (*config.Config, error) {
	cfg, err := config.LoadConfig(global.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}

// observabilityConfig maps the loaded configuration and global flags onto
// the observability settings for mode.
func observabilityConfig(cfg *config.Config, global *GlobalOptions, mode observability.AppMode) (observability.Config, error) {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = mode
	obsCfg.Environment = cfg.Telemetry.Environment
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.Prometheus = cfg.Telemetry.MetricsAddr != ""
	obsCfg.LogJSON = cfg.Logging.JSON

	if obsCfg.OTLPEndpoint == "" {
		obsCfg.OTLPEndpoint = os.Getenv(otlpEndpointEnv)
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return observability.Config{}, err
	}

	obsCfg.LogLevel = level

	switch {
	case global.Verbose:
		obsCfg.LogLevel = slog.LevelDebug
	case global.Quiet:
		obsCfg.LogLevel = slog.LevelError
	}

	return obsCfg, nil
}

// telemetry bundles the initialized providers with the usefold instruments.
type telemetry struct {
	observability.Providers

	RED  *observability.REDMetrics
	Fold *observability.FoldMetrics
}

func initTelemetry(obsCfg observability.Config) (*telemetry, error) {
	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	red, err := observability.NewREDMetrics(providers.Meter)
	if err != nil {
		return nil, errors.Join(err, providers.Shutdown(context.Background()))
	}

	fold, err := observability.NewFoldMetrics(providers.Meter)
	if err != nil {
		return nil, errors.Join(err, providers.Shutdown(context.Background()))
	}

	return &telemetry{Providers: providers, RED: red, Fold: fold}, nil
}

func (t *telemetry) shutdown() {
	err := t.Shutdown(context.Background())
	if err != nil {
		t.Logger.Warn("observability shutdown failed", "error", err)
	}
}
