// Package folding finds groups of PHP use statements and reports them as
// collapsible line ranges.
//
// The scanner makes a single forward pass. Each line is classified with
// lightweight heuristics rather than a lexer: blank lines and comments are
// transparent to a group, any other line closes it, and a group is reported
// only when it holds at least two use statements.
package folding

// RangeKind tags what a folding range covers.
type RangeKind string

// KindImports marks a range spanning a group of use statements.
const KindImports RangeKind = "imports"

// noLine marks an unset line index in the scan state.
const noLine = -1

// Range is an inclusive, zero-based span of lines.
type Range struct {
	StartLine int       `json:"start_line" yaml:"start_line"`
	EndLine   int       `json:"end_line"   yaml:"end_line"`
	Kind      RangeKind `json:"kind"       yaml:"kind"`
}

// Lines returns the number of lines the range covers.
func (r Range) Lines() int {
	return r.EndLine - r.StartLine + 1
}

// scanState lives for one Scan call. groupStart and lastImport are either
// both noLine or both set.
type scanState struct {
	groupStart     int
	lastImport     int
	inBlockComment bool
}

func newScanState() scanState {
	return scanState{groupStart: noLine, lastImport: noLine}
}

func (st *scanState) open() bool {
	return st.groupStart != noLine
}

// close ends the current group and appends its range when it spans more
// than one use statement.
func (st *scanState) close(ranges []Range) []Range {
	if st.lastImport > st.groupStart {
		ranges = append(ranges, Range{StartLine: st.groupStart, EndLine: st.lastImport, Kind: KindImports})
	}

	st.groupStart = noLine
	st.lastImport = noLine

	return ranges
}

// Scan returns the import ranges of doc in document order. It never fails;
// a nil or empty document yields an empty slice.
func Scan(doc Document) []Range {
	ranges := make([]Range, 0)
	if doc == nil {
		return ranges
	}

	st := newScanState()

	for i := range doc.LineCount() {
		var kind LineKind

		kind, st.inBlockComment = Classify(doc.LineText(i), st.inBlockComment)

		switch kind {
		case KindImport:
			if !st.open() {
				st.groupStart = i
			}

			st.lastImport = i
		case KindOther:
			if st.open() {
				ranges = st.close(ranges)
			}
		case KindBlank, KindComment, KindCommentOpen, KindCommentClose:
			// Transparent: the group stays open without being extended.
		}
	}

	if st.open() {
		ranges = st.close(ranges)
	}

	return ranges
}

// ScanText splits text into lines and scans it.
func ScanText(text string) []Range {
	return Scan(FromText(text))
}
