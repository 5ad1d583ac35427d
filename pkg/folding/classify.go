package folding

import (
	"regexp"
	"strings"
)

// Comment markers recognized by the classifier.
const (
	lineCommentSlash  = "//"
	lineCommentHash   = "#"
	blockCommentOpen  = "/*"
	blockCommentClose = "*/"
)

// importStatementPattern matches a whole trimmed line of the form
// `use Qualified\Name [as Alias];`. The trailing anchor rejects lines that
// carry anything after the semicolon.
var importStatementPattern = regexp.MustCompile(
	`^use\s+[A-Za-z_\\][A-Za-z0-9_\\]*(\s+as\s+[A-Za-z_][A-Za-z0-9_]*)?\s*;$`,
)

// LineKind is the classification of a single line as seen by the scanner.
type LineKind int

// Line kinds.
const (
	KindBlank LineKind = iota
	KindImport
	KindComment
	KindCommentOpen
	KindCommentClose
	KindOther
)

var lineKindNames = [...]string{
	KindBlank:        "blank",
	KindImport:       "import",
	KindComment:      "comment",
	KindCommentOpen:  "comment-open",
	KindCommentClose: "comment-close",
	KindOther:        "other",
}

// String returns the lower-case name of the kind.
func (k LineKind) String() string {
	if k < 0 || int(k) >= len(lineKindNames) {
		return "unknown"
	}

	return lineKindNames[k]
}

// IsImportStatement reports whether text, once trimmed, consists solely of a
// `use` statement.
func IsImportStatement(text string) bool {
	return importStatementPattern.MatchString(strings.TrimSpace(text))
}

// IsCommentLine reports whether text is a comment line. It does not update
// the block comment state; that belongs to the caller.
func IsCommentLine(text string, inBlockComment bool) bool {
	if inBlockComment {
		return true
	}

	trimmed := strings.TrimSpace(text)

	return strings.HasPrefix(trimmed, lineCommentSlash) || strings.HasPrefix(trimmed, lineCommentHash)
}

// Classify returns the kind of line together with the block comment state
// that applies to the next line.
//
// Markers are found by substring search, not by lexing. A line holding `*/`
// always classifies as KindCommentClose and clears the state, even when it
// also opens a comment or looks like an import.
func Classify(text string, inBlockComment bool) (LineKind, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return KindBlank, inBlockComment
	}

	opens := strings.Contains(trimmed, blockCommentOpen)
	if opens {
		inBlockComment = true
	}

	if strings.Contains(trimmed, blockCommentClose) {
		return KindCommentClose, false
	}

	switch {
	case IsImportStatement(trimmed):
		return KindImport, inBlockComment
	case IsCommentLine(trimmed, inBlockComment):
		if opens {
			return KindCommentOpen, inBlockComment
		}

		return KindComment, inBlockComment
	default:
		return KindOther, inBlockComment
	}
}
