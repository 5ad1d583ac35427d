package lsp

import (
	"strings"
	"unicode/utf16"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// applyChange returns text with the content change applied. A change without
// a range replaces the whole text.
func applyChange(text string, change any) (string, bool) {
	switch c := change.(type) {
	case protocol.TextDocumentContentChangeEventWhole:
		return c.Text, true
	case *protocol.TextDocumentContentChangeEventWhole:
		return c.Text, true
	case protocol.TextDocumentContentChangeEvent:
		return applyRanged(text, c), true
	case *protocol.TextDocumentContentChangeEvent:
		return applyRanged(text, *c), true
	default:
		return text, false
	}
}

func applyRanged(text string, change protocol.TextDocumentContentChangeEvent) string {
	if change.Range == nil {
		return change.Text
	}

	start := offsetOf(text, change.Range.Start)
	end := max(offsetOf(text, change.Range.End), start)

	return text[:start] + change.Text + text[end:]
}

// offsetOf converts an LSP position, whose character is counted in UTF-16
// code units, to a byte offset into text. Positions past the end of a line
// clamp to the line end; positions past the last line clamp to len(text).
func offsetOf(text string, pos protocol.Position) int {
	offset := 0

	for range pos.Line {
		idx := strings.IndexByte(text[offset:], '\n')
		if idx < 0 {
			return len(text)
		}

		offset += idx + 1
	}

	units := 0

	for i, r := range text[offset:] {
		if r == '\n' || units >= int(pos.Character) {
			return offset + i
		}

		units += utf16.RuneLen(r)
	}

	return len(text)
}
