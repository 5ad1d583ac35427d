package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/usefold/pkg/folding"
)

// LineReport is the classification of one source line.
type LineReport struct {
	Line    int    `json:"line"             yaml:"line"`
	Kind    string `json:"kind"             yaml:"kind"`
	InBlock bool   `json:"in_block_comment" yaml:"in_block_comment"`
	Text    string `json:"text"             yaml:"text"`
}

// ClassifyLines runs the line classifier over doc, carrying the block
// comment state from line to line the way the scanner does.
func ClassifyLines(doc folding.Document) []LineReport {
	if doc == nil {
		return []LineReport{}
	}

	out := make([]LineReport, 0, doc.LineCount())
	inBlock := false

	for i := range doc.LineCount() {
		text := doc.LineText(i)

		var kind folding.LineKind
		kind, inBlock = folding.Classify(text, inBlock)

		out = append(out, LineReport{Line: i, Kind: kind.String(), InBlock: inBlock, Text: text})
	}

	return out
}

// WriteLines renders line classifications to w in the configured format.
func WriteLines(w io.Writer, lines []LineReport, opts Options) error {
	switch opts.Format {
	case FormatText, "":
		return writeLinesText(w, lines, opts)
	case FormatTable:
		return writeLinesTable(w, lines, opts)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		err := enc.Encode(lines)
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}

		return nil
	case FormatYAML:
		data, err := yaml.Marshal(lines)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		_, err = w.Write(data)
		if err != nil {
			return fmt.Errorf("write yaml: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, opts.Format)
	}
}

func writeLinesText(w io.Writer, lines []LineReport, opts Options) error {
	kindColor := color.New(color.FgYellow)
	if opts.Color {
		kindColor.EnableColor()
	} else {
		kindColor.DisableColor()
	}

	for _, line := range lines {
		_, err := fmt.Fprintf(w, "%5d  %s  %s\n",
			displayLine(line.Line, opts),
			kindColor.Sprintf("%-13s", line.Kind),
			line.Text,
		)
		if err != nil {
			return fmt.Errorf("write text: %w", err)
		}
	}

	return nil
}

func writeLinesTable(w io.Writer, lines []LineReport, opts Options) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Line", "Kind", "Block", "Text"})

	for _, line := range lines {
		tbl.AppendRow(table.Row{
			strconv.Itoa(displayLine(line.Line, opts)),
			line.Kind,
			line.InBlock,
			line.Text,
		})
	}

	_, err := fmt.Fprintln(w, tbl.Render())
	if err != nil {
		return fmt.Errorf("write table: %w", err)
	}

	return nil
}
