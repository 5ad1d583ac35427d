package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/usefold/pkg/language"
	"github.com/Sumatoshi-tech/usefold/pkg/mcp"
	"github.com/Sumatoshi-tech/usefold/pkg/observability"
	"github.com/Sumatoshi-tech/usefold/pkg/version"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand(global *GlobalOptions) *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The server exposes one tool:
  - usefold_ranges: import folding ranges for inline code and a language id`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}

			obsCfg, err := observabilityConfig(cfg, global, observability.ModeMCP)
			if err != nil {
				return err
			}

			obsCfg.LogJSON = true

			if debug {
				obsCfg.LogLevel = slog.LevelDebug
				obsCfg.DebugTrace = true
			}

			tel, err := initTelemetry(obsCfg)
			if err != nil {
				return err
			}
			defer tel.shutdown()

			srv := mcp.NewServer(mcp.ServerDeps{
				Logger:    tel.Logger,
				Metrics:   tel.RED,
				Tracer:    tel.Tracer,
				Fold:      tel.Fold,
				Languages: language.NewSet(cfg.Languages...),
				Version:   version.Version,
			})

			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging and full trace sampling")

	return cmd
}
