package lsp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentStore_SetGetDelete(t *testing.T) {
	t.Parallel()

	store := NewDocumentStore()
	uri := "file:///src/User.php"

	_, ok := store.Get(uri)
	assert.False(t, ok)

	store.Set(uri, Document{Text: "<?php", LanguageID: "php", Version: 1})

	doc, ok := store.Get(uri)
	require.True(t, ok)
	assert.Equal(t, "<?php", doc.Text)
	assert.Equal(t, 1, store.Len())

	store.Delete(uri)

	_, ok = store.Get(uri)
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestDocumentStore_Update(t *testing.T) {
	t.Parallel()

	store := NewDocumentStore()
	uri := "file:///src/User.php"

	assert.False(t, store.Update(uri, 2, strings.ToUpper))

	store.Set(uri, Document{Text: "use a;", LanguageID: "php", Version: 1})
	require.True(t, store.Update(uri, 2, strings.ToUpper))

	doc, ok := store.Get(uri)
	require.True(t, ok)
	assert.Equal(t, "USE A;", doc.Text)
	assert.Equal(t, int32(2), doc.Version)
	assert.Equal(t, "php", doc.LanguageID)
}
