package lsp

import (
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Document is an open editor buffer.
type Document struct {
	Text       string
	LanguageID string
	Version    int32
}

// DocumentStore is a thread-safe store for open documents keyed by URI.
type DocumentStore struct {
	documents map[protocol.DocumentUri]Document
	mu        sync.RWMutex
}

// NewDocumentStore creates a new empty DocumentStore.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[protocol.DocumentUri]Document),
	}
}

// Set stores the document for the given URI.
func (ds *DocumentStore) Set(uri protocol.DocumentUri, doc Document) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.documents[uri] = doc
}

// Get retrieves a document by URI.
func (ds *DocumentStore) Get(uri protocol.DocumentUri) (Document, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	doc, ok := ds.documents[uri]

	return doc, ok
}

// Update applies fn to the stored text of uri and records version. It
// reports false when the URI is not open.
func (ds *DocumentStore) Update(uri protocol.DocumentUri, version int32, fn func(text string) string) bool {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	doc, ok := ds.documents[uri]
	if !ok {
		return false
	}

	doc.Text = fn(doc.Text)
	doc.Version = version
	ds.documents[uri] = doc

	return true
}

// Delete removes a document by URI.
func (ds *DocumentStore) Delete(uri protocol.DocumentUri) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	delete(ds.documents, uri)
}

// Len returns the number of open documents.
func (ds *DocumentStore) Len() int {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	return len(ds.documents)
}
