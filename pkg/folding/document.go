package folding

import "strings"

// Document is the read-only view of a text buffer the scanner needs.
type Document interface {
	// LineCount returns the number of lines in the document.
	LineCount() int
	// LineText returns the raw text of the zero-based line i.
	LineText(i int) string
}

// Lines is a Document backed by a slice of line texts.
type Lines []string

// LineCount returns the number of lines.
func (l Lines) LineCount() int {
	return len(l)
}

// LineText returns line i, or an empty string when i is out of range.
func (l Lines) LineText(i int) string {
	if i < 0 || i >= len(l) {
		return ""
	}

	return l[i]
}

// FromText splits text into lines on "\n", dropping the "\r" of CRLF endings.
// A trailing newline yields a final empty line, as editors count it.
func FromText(text string) Lines {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	return lines
}
