// Package language identifies the language of a document and decides whether
// import folding applies to it.
package language

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/src-d/enry/v2"
)

// PHP is the language identifier the import grammar targets.
const PHP = "php"

// htmlPHP is linguist's name for PHP templates (.phtml). Their use
// statements follow the same grammar, so they fold as PHP.
const htmlPHP = "html+php"

// Detect returns the lower-cased language of the file at path, using content
// to break ties between languages sharing an extension. It returns an empty
// string when the language is unknown.
func Detect(path string, content []byte) string {
	lang := Normalize(enry.GetLanguage(filepath.Base(path), content))
	if lang == htmlPHP {
		return PHP
	}

	return lang
}

// IsVendor reports whether path looks like third-party vendored code.
func IsVendor(path string) bool {
	return enry.IsVendor(filepath.ToSlash(path))
}

// Normalize lower-cases and trims a language identifier so editor ids
// ("php") and linguist names ("PHP") compare equal.
func Normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Set is a case-insensitive allow-list of language identifiers.
type Set struct {
	ids []string
}

// NewSet builds a Set from ids. Empty entries are ignored.
func NewSet(ids ...string) Set {
	normalized := make([]string, 0, len(ids))

	for _, id := range ids {
		id = Normalize(id)
		if id == "" || slices.Contains(normalized, id) {
			continue
		}

		normalized = append(normalized, id)
	}

	return Set{ids: normalized}
}

// Allows reports whether id is in the set.
func (s Set) Allows(id string) bool {
	return slices.Contains(s.ids, Normalize(id))
}

// IDs returns the normalized identifiers in insertion order.
func (s Set) IDs() []string {
	return slices.Clone(s.ids)
}

// Default returns the first identifier, or PHP for an empty set.
func (s Set) Default() string {
	if len(s.ids) == 0 {
		return PHP
	}

	return s.ids[0]
}
