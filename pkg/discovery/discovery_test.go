package discovery_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/usefold/pkg/discovery"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()

	for _, name := range names {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte("<?php\n"), 0o600))
	}
}

func defaultFinder(t *testing.T) *discovery.Finder {
	t.Helper()

	finder, err := discovery.NewFinder(discovery.Options{
		Include: []string{"**/*.php"},
		Exclude: []string{"vendor/**", ".git/**"},
	})
	require.NoError(t, err)

	return finder
}

func TestFinder_Find_WalksAndFilters(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root,
		"index.php",
		"src/Models/User.php",
		"src/Models/README.md",
		"vendor/acme/lib/Thing.php",
		".git/hooks/pre-commit.php",
	)

	files, err := defaultFinder(t).Find([]string{root})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "index.php"),
		filepath.Join(root, "src", "Models", "User.php"),
	}, files)
}

func TestFinder_Find_ExplicitFileAlwaysKept(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root, "notes.txt")

	path := filepath.Join(root, "notes.txt")

	files, err := defaultFinder(t).Find([]string{path, path})
	require.NoError(t, err)

	assert.Equal(t, []string{path}, files)
}

func TestFinder_Find_MissingPath(t *testing.T) {
	t.Parallel()

	_, err := defaultFinder(t).Find([]string{filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
}

func TestFinder_Match(t *testing.T) {
	t.Parallel()

	finder, err := discovery.NewFinder(discovery.Options{
		Include:    []string{"**/*.php", "**/*.phtml"},
		Exclude:    []string{"cache/**"},
		SkipVendor: true,
	})
	require.NoError(t, err)

	assert.True(t, finder.Match("a.php"))
	assert.True(t, finder.Match("app/views/page.phtml"))
	assert.False(t, finder.Match("cache/compiled.php"))
	assert.False(t, finder.Match("vendor/acme/Thing.php"))
	assert.False(t, finder.Match("app/main.js"))
}

func TestNewFinder_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := discovery.NewFinder(discovery.Options{Include: []string{"[unterminated"}})
	require.ErrorIs(t, err, discovery.ErrInvalidPattern)

	_, err = discovery.NewFinder(discovery.Options{Exclude: []string{"{vendor,cache/**"}})
	require.ErrorIs(t, err, discovery.ErrInvalidPattern)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		valid   bool
	}{
		{pattern: "**/*.php", valid: true},
		{pattern: "**/*.{php,phtml}", valid: true},
		{pattern: "src/[A-Z]*.php", valid: true},
		{pattern: `literal\{brace.php`, valid: true},
		{pattern: "{a,b", valid: false},
		{pattern: "{a,{b,c}", valid: false},
		{pattern: "src/[A-Z", valid: false},
		{pattern: "[unterminated", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			t.Parallel()

			err := discovery.Validate([]string{tt.pattern})
			if tt.valid {
				require.NoError(t, err)

				return
			}

			require.ErrorIs(t, err, discovery.ErrInvalidPattern)
		})
	}
}

func TestFinder_Find_BraceAlternatives(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root, "index.php", "views/page.phtml", "main.js")

	finder, err := discovery.NewFinder(discovery.Options{Include: []string{"**/*.{php,phtml}"}})
	require.NoError(t, err)

	files, err := finder.Find([]string{root})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "index.php"),
		filepath.Join(root, "views", "page.phtml"),
	}, files)
}
