// Package document tracks the open working set: document text, language ids,
// versions, and open order. Lifecycle events feed the symbol store, which is
// how the index stays consistent with the most recent text of every document.
package document

import (
	"log/slog"
	"sync"

	"github.com/mvp-joe/wayfind/internal/store"
)

// Document is one open document's state. Text is the full current content;
// changes replace it wholesale, no incremental diffs are consumed.
type Document struct {
	URI        string
	LanguageID string
	Version    int32
	Text       string
}

// Manager owns the open-document set and forwards lifecycle events to the
// symbol store. Events for the same URI are applied in observation order:
// the manager's lock is held across the text update and the re-analysis so a
// later change can never be indexed before an earlier one.
type Manager struct {
	mu     sync.Mutex
	store  *store.Store
	docs   map[string]*Document
	order  []string
	logger *slog.Logger
}

// NewManager creates a manager feeding the given store.
func NewManager(st *store.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:  st,
		docs:   make(map[string]*Document),
		logger: logger,
	}
}

// Open registers a document and analyzes it. Re-opening an already-open URI
// replaces its state but keeps its original position in the open order.
func (m *Manager) Open(uri, languageID string, version int32, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.docs[uri]; !exists {
		m.order = append(m.order, uri)
	}
	m.docs[uri] = &Document{URI: uri, LanguageID: languageID, Version: version, Text: text}
	m.store.Analyze(uri, text, languageID)
	m.logger.Debug("document opened", "uri", uri, "language", languageID, "version", version)
}

// Change replaces the document's text and re-analyzes it. A change for an
// unopened URI is tolerated by treating it as an open with an unknown
// language, since editors can race a change past a close.
func (m *Manager) Change(uri string, version int32, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[uri]
	if !ok {
		m.logger.Warn("change for unopened document", "uri", uri)
		doc = &Document{URI: uri}
		m.docs[uri] = doc
		m.order = append(m.order, uri)
	}
	doc.Version = version
	doc.Text = text
	m.store.Analyze(uri, text, doc.LanguageID)
}

// Close drops the document and clears its symbol table and index entries.
func (m *Manager) Close(uri string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[uri]; !ok {
		return
	}
	delete(m.docs, uri)
	for i, u := range m.order {
		if u == uri {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.store.ClearDocument(uri)
	m.logger.Debug("document closed", "uri", uri)
}

// Get returns a snapshot of the document's state.
func (m *Manager) Get(uri string) (Document, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[uri]
	if !ok {
		return Document{}, false
	}
	return *doc, true
}

// OpenOrder returns the open documents in the order they were opened. The
// cross-document resolution strategy iterates documents in exactly this order.
func (m *Manager) OpenOrder() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// IsOpen reports whether the URI is in the working set.
func (m *Manager) IsOpen(uri string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.docs[uri]
	return ok
}
