// Package render formats folding results for terminals and machines.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/usefold/pkg/folding"
)

// Output formats.
const (
	FormatText  = "text"
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown output format")

// Formats lists the supported output formats.
func Formats() []string {
	return []string{FormatText, FormatTable, FormatJSON, FormatYAML}
}

// IsKnownFormat reports whether format is supported.
func IsKnownFormat(format string) bool {
	return slices.Contains(Formats(), format)
}

// FileReport holds the folding ranges found in one file.
type FileReport struct {
	Path     string          `json:"path"     yaml:"path"`
	Language string          `json:"language" yaml:"language"`
	Size     int64           `json:"size"     yaml:"size"`
	Lines    int             `json:"lines"    yaml:"lines"`
	Ranges   []folding.Range `json:"ranges"   yaml:"ranges"`
}

// Options controls rendering.
type Options struct {
	Format string
	// Color enables ANSI colors in the text format.
	Color bool
	// ZeroBased prints raw line indices in text and table output. JSON and
	// YAML always carry raw indices.
	ZeroBased bool
}

// Write renders reports to w in the configured format.
func Write(w io.Writer, reports []FileReport, opts Options) error {
	switch opts.Format {
	case FormatText, "":
		return writeText(w, reports, opts)
	case FormatTable:
		return writeTable(w, reports, opts)
	case FormatJSON:
		return writeJSON(w, reports)
	case FormatYAML:
		return writeYAML(w, reports)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, opts.Format)
	}
}

func displayLine(line int, opts Options) int {
	if opts.ZeroBased {
		return line
	}

	return line + 1
}

func writeText(w io.Writer, reports []FileReport, opts Options) error {
	pathColor := color.New(color.FgCyan, color.Bold)
	spanColor := color.New(color.FgGreen)
	kindColor := color.New(color.FgYellow)

	for _, c := range []*color.Color{pathColor, spanColor, kindColor} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	for _, report := range reports {
		for _, rng := range report.Ranges {
			_, err := fmt.Fprintf(w, "%s:%s %s (%d lines)\n",
				pathColor.Sprint(report.Path),
				spanColor.Sprintf("%d-%d", displayLine(rng.StartLine, opts), displayLine(rng.EndLine, opts)),
				kindColor.Sprint(string(rng.Kind)),
				rng.Lines(),
			)
			if err != nil {
				return fmt.Errorf("write text: %w", err)
			}
		}
	}

	return nil
}

func writeTable(w io.Writer, reports []FileReport, opts Options) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"File", "Language", "Size", "Start", "End", "Lines"})

	total := 0

	for _, report := range reports {
		size := humanize.Bytes(uint64(max(report.Size, 0)))

		if len(report.Ranges) == 0 {
			tbl.AppendRow(table.Row{report.Path, report.Language, size, "-", "-", 0})

			continue
		}

		for _, rng := range report.Ranges {
			tbl.AppendRow(table.Row{
				report.Path,
				report.Language,
				size,
				strconv.Itoa(displayLine(rng.StartLine, opts)),
				strconv.Itoa(displayLine(rng.EndLine, opts)),
				rng.Lines(),
			})

			total++
		}
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d ranges in %d files", total, len(reports))})

	_, err := fmt.Fprintln(w, tbl.Render())
	if err != nil {
		return fmt.Errorf("write table: %w", err)
	}

	return nil
}

func writeJSON(w io.Writer, reports []FileReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(nonNil(reports))
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	return nil
}

func writeYAML(w io.Writer, reports []FileReport) error {
	data, err := yaml.Marshal(nonNil(reports))
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}

	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("write yaml: %w", err)
	}

	return nil
}

// nonNil keeps empty results encoding as [] rather than null.
func nonNil(reports []FileReport) []FileReport {
	out := make([]FileReport, len(reports))

	for i, report := range reports {
		if report.Ranges == nil {
			report.Ranges = []folding.Range{}
		}

		out[i] = report
	}

	return out
}
