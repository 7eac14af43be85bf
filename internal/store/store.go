// Package store owns the per-document symbol tables and the cross-document
// index derived from them. The store is the engine's only shared mutable
// state: all mutations are serialized behind one writer lock, while resolution
// queries take read locks and may run concurrently with each other.
package store

import (
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/hbollon/go-edlib"

	"github.com/mvp-joe/wayfind/internal/extract"
	"github.com/mvp-joe/wayfind/internal/grammar"
)

// ErrUnknownDocument is returned for queries against a URI with no live
// symbol table. It is a caller contract violation, distinct from the normal
// "no result" outcome.
var ErrUnknownDocument = errors.New("no symbol table for document")

// indexKey addresses one cross-document index bucket.
type indexKey struct {
	Name string
	Kind string
}

// Hit pairs a symbol with the document that contributed it.
type Hit struct {
	Symbol extract.Symbol
	URI    string
}

// kindPriority is the fixed tie-break order for name-only lookups. Ambiguous
// names resolve predictably instead of by document scan order.
var kindPriority = []string{
	extract.KindFunction,
	extract.KindClass,
	extract.KindVariable,
	extract.KindMethod,
}

// Store maps open documents to symbol tables and maintains the derived
// (name, kind) index across all of them.
type Store struct {
	mu       sync.RWMutex
	registry *grammar.Registry
	tables   map[string][]extract.Symbol
	index    map[indexKey][]Hit
	logger   *slog.Logger
}

// New creates an empty store backed by the given grammar registry.
func New(registry *grammar.Registry, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		registry: registry,
		tables:   make(map[string][]extract.Symbol),
		index:    make(map[indexKey][]Hit),
		logger:   logger,
	}
}

// Analyze parses text, extracts its symbols, and replaces the document's
// table wholesale. The cross-document index is re-folded in the same critical
// section so no reader observes a half-updated document. An unsupported
// language yields an empty table, not an error.
func (s *Store) Analyze(uri, text, languageID string) []extract.Symbol {
	resolved := s.registry.Resolve(languageID)

	var symbols []extract.Symbol
	if resolved == "" {
		s.logger.Debug("unsupported language, empty symbol table", "uri", uri, "language", languageID)
	} else {
		source := []byte(text)
		tree, ok := s.registry.Parse(resolved, source)
		if ok {
			symbols = extract.Extract(tree, source, resolved)
			tree.Close()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeFromIndexLocked(uri)
	s.tables[uri] = symbols
	for _, sym := range symbols {
		key := indexKey{Name: sym.Name, Kind: sym.Kind}
		s.index[key] = append(s.index[key], Hit{Symbol: sym, URI: uri})
	}

	s.logger.Debug("analyzed document", "uri", uri, "language", resolved, "symbols", len(symbols))
	return symbols
}

// ClearDocument deletes the document's table and prunes exactly its index
// contributions. Buckets left empty are deleted outright.
func (s *Store) ClearDocument(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tables[uri]; !ok {
		return
	}
	s.removeFromIndexLocked(uri)
	delete(s.tables, uri)
	s.logger.Debug("cleared document", "uri", uri)
}

// removeFromIndexLocked strips every index entry tagged with uri. Caller holds
// the write lock.
func (s *Store) removeFromIndexLocked(uri string) {
	for key, hits := range s.index {
		kept := hits[:0]
		for _, hit := range hits {
			if hit.URI != uri {
				kept = append(kept, hit)
			}
		}
		if len(kept) == 0 {
			delete(s.index, key)
		} else {
			s.index[key] = kept
		}
	}
}

// DocumentSymbols returns the document's current table, or ErrUnknownDocument
// for a URI that was never analyzed or has been closed.
func (s *Store) DocumentSymbols(uri string) ([]extract.Symbol, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	table, ok := s.tables[uri]
	if !ok {
		return nil, ErrUnknownDocument
	}
	out := make([]extract.Symbol, len(table))
	copy(out, table)
	return out, nil
}

// HasDocument reports whether a table exists for the URI.
func (s *Store) HasDocument(uri string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tables[uri]
	return ok
}

// FindSymbol resolves a bare name. The preferred document's table is searched
// first and wins on any exact name match; otherwise the index is scanned with
// the fixed kind priority (function, class, variable, method), falling back to
// remaining kinds in sorted order, insertion order within a bucket.
func (s *Store) FindSymbol(name, preferredURI string) *Hit {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if preferredURI != "" {
		if table, ok := s.tables[preferredURI]; ok {
			for _, sym := range table {
				if sym.Name == name {
					return &Hit{Symbol: sym, URI: preferredURI}
				}
			}
		}
	}

	for _, kind := range kindPriority {
		if hits, ok := s.index[indexKey{Name: name, Kind: kind}]; ok && len(hits) > 0 {
			hit := hits[0]
			return &hit
		}
	}

	// Remaining kinds, sorted for a deterministic scan.
	var rest []string
	for key := range s.index {
		if key.Name == name && !isPriorityKind(key.Kind) {
			rest = append(rest, key.Kind)
		}
	}
	sort.Strings(rest)
	for _, kind := range rest {
		if hits := s.index[indexKey{Name: name, Kind: kind}]; len(hits) > 0 {
			hit := hits[0]
			return &hit
		}
	}
	return nil
}

// FindSymbolFuzzy returns up to limit hits whose names are within the edit
// distance threshold of the query, nearest first. Used by the CLI and tool
// surfaces, never by go-to-definition.
func (s *Store) FindSymbolFuzzy(name string, limit int) []Hit {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		hit  Hit
		dist int
	}
	var candidates []scored
	seen := make(map[indexKey]bool)
	for key, hits := range s.index {
		if seen[key] || len(hits) == 0 {
			continue
		}
		seen[key] = true
		dist := edlib.LevenshteinDistance(name, key.Name)
		if dist > len(name)/2+1 {
			continue
		}
		candidates = append(candidates, scored{hit: hits[0], dist: dist})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].hit.Symbol.Name < candidates[j].hit.Symbol.Name
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]Hit, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.hit)
	}
	return out
}

// Documents returns the URIs with live tables, sorted.
func (s *Store) Documents() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uris := make([]string, 0, len(s.tables))
	for uri := range s.tables {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}

// IndexSize returns the number of live index buckets. Exposed for tests and
// the status surfaces.
func (s *Store) IndexSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.index)
}

// EntriesFor returns every index hit tagged with the URI, mainly for tests
// asserting close-time isolation.
func (s *Store) EntriesFor(uri string) []Hit {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Hit
	for _, hits := range s.index {
		for _, hit := range hits {
			if hit.URI == uri {
				out = append(out, hit)
			}
		}
	}
	return out
}

func isPriorityKind(kind string) bool {
	for _, k := range kindPriority {
		if k == kind {
			return true
		}
	}
	return false
}
