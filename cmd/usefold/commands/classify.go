package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/usefold/pkg/folding"
	"github.com/Sumatoshi-tech/usefold/pkg/render"
)

// NewClassifyCommand creates the classify command, a debugging aid that
// shows the scanner's view of every line.
func NewClassifyCommand(global *GlobalOptions) *cobra.Command {
	var (
		format    string
		noColor   bool
		zeroBased bool
	)

	cmd := &cobra.Command{
		Use:   "classify <file>",
		Short: "Show how each line is classified",
		Long: `Print the kind the scanner assigns to every line (blank, import, comment,
comment-open, comment-close, other) and whether a block comment is open
after it. Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("format") {
				cfg.Output.Format = format
			}

			content, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			lines := render.ClassifyLines(folding.FromText(string(content)))

			return render.WriteLines(cmd.OutOrStdout(), lines, render.Options{
				Format:    cfg.Output.Format,
				Color:     cfg.Output.Color && !noColor && !color.NoColor,
				ZeroBased: zeroBased || cfg.Output.ZeroBased,
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text, table, json, yaml (default from config)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&zeroBased, "zero-based", false, "Print 0-based line numbers")

	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == stdinArg {
		content, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}

		return content, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return content, nil
}
