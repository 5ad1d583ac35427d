// Package discovery expands command line paths into the list of files to fold.
package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"

	"github.com/Sumatoshi-tech/usefold/pkg/language"
)

// globSeparator is the path separator globs are compiled against.
const globSeparator = '/'

// doubleStarPrefix lets root-level files match "**/" patterns.
const doubleStarPrefix = "**/"

// ErrInvalidPattern is returned for a glob that does not compile.
var ErrInvalidPattern = errors.New("invalid glob pattern")

type compiledPattern struct {
	pattern string
	glob    glob.Glob
	// rootGlob matches the pattern with a leading "**/" removed.
	rootGlob glob.Glob
}

// Options configures a Finder.
type Options struct {
	Include    []string
	Exclude    []string
	SkipVendor bool
}

// Finder walks directories and keeps files matching the include globs.
type Finder struct {
	include    []compiledPattern
	exclude    []compiledPattern
	skipVendor bool
}

// NewFinder compiles the include and exclude patterns.
func NewFinder(opts Options) (*Finder, error) {
	include, err := compileAll(opts.Include)
	if err != nil {
		return nil, err
	}

	exclude, err := compileAll(opts.Exclude)
	if err != nil {
		return nil, err
	}

	return &Finder{include: include, exclude: exclude, skipVendor: opts.SkipVendor}, nil
}

// Validate reports the first pattern that fails to compile.
func Validate(patterns []string) error {
	_, err := compileAll(patterns)

	return err
}

func compileAll(patterns []string) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))

	for _, pattern := range patterns {
		cp, err := compile(pattern)
		if err != nil {
			return nil, err
		}

		compiled = append(compiled, cp)
	}

	return compiled, nil
}

func compile(pattern string) (compiledPattern, error) {
	if unclosed(pattern) {
		return compiledPattern{}, fmt.Errorf("%w %q: unclosed { or [", ErrInvalidPattern, pattern)
	}

	g, err := glob.Compile(pattern, globSeparator)
	if err != nil {
		return compiledPattern{}, fmt.Errorf("%w %q: %w", ErrInvalidPattern, pattern, err)
	}

	cp := compiledPattern{pattern: pattern, glob: g}

	if rest, ok := strings.CutPrefix(pattern, doubleStarPrefix); ok {
		rootGlob, rootErr := glob.Compile(rest, globSeparator)
		if rootErr == nil {
			cp.rootGlob = rootGlob
		}
	}

	return cp, nil
}

// unclosed reports an open "{" or "[" left at the end of pattern. glob
// compiles such patterns without error, but they never match.
func unclosed(pattern string) bool {
	depth := 0
	inClass := false

	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; {
		case c == '\\':
			i++
		case inClass:
			inClass = c != ']'
		case c == '[':
			inClass = true
		case c == '{':
			depth++
		case c == '}' && depth > 0:
			depth--
		}
	}

	return inClass || depth > 0
}

// Find returns the sorted, de-duplicated files named by paths. Files given
// explicitly are always kept; directories are walked and filtered.
func (f *Finder) Find(paths []string) ([]string, error) {
	seen := make(map[string]struct{})

	var files []string

	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}

		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}

		if !info.IsDir() {
			add(filepath.Clean(root))

			continue
		}

		walkErr := f.walk(root, add)
		if walkErr != nil {
			return nil, walkErr
		}
	}

	slices.Sort(files)

	return files, nil
}

func (f *Finder) walk(root string, add func(string)) error {
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path of %s: %w", path, err)
		}

		rel = filepath.ToSlash(rel)

		if entry.IsDir() {
			if rel != "." && f.excludesDir(rel) {
				return filepath.SkipDir
			}

			return nil
		}

		if f.Match(rel) {
			add(path)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", root, err)
	}

	return nil
}

// Match reports whether the slash-separated relative path is selected.
func (f *Finder) Match(rel string) bool {
	if matchAny(rel, f.exclude) {
		return false
	}

	if f.skipVendor && language.IsVendor(rel) {
		return false
	}

	return matchAny(rel, f.include)
}

func (f *Finder) excludesDir(rel string) bool {
	return matchAny(rel+"/**", f.exclude) || matchAny(rel, f.exclude)
}

func matchAny(path string, patterns []compiledPattern) bool {
	rootLevel := !strings.Contains(path, "/")

	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}

		if rootLevel && cp.rootGlob != nil && cp.rootGlob.Match(path) {
			return true
		}
	}

	return false
}
