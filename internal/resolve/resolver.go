// Package resolve answers definition and reference queries. Definition runs a
// strict ordered fallback chain; the chain is an explicit slice of strategy
// functions so the ordering is data, not code layout, and tests can assert
// the priority law directly.
package resolve

import (
	"log/slog"

	"github.com/mvp-joe/wayfind/internal/document"
	"github.com/mvp-joe/wayfind/internal/extract"
	"github.com/mvp-joe/wayfind/internal/grammar"
	"github.com/mvp-joe/wayfind/internal/store"
)

// Location is a resolved position: a document URI plus a 0-based half-open
// range. Builtin results use the "builtin:" scheme instead of a file URI.
type Location struct {
	URI   string
	Range extract.Range
}

// query carries one definition lookup through the strategy chain.
type query struct {
	word     string
	uri      string
	pos      extract.Position
	language string
	text     string
}

// strategy is one step of the definition fallback chain.
type strategy struct {
	name string
	run  func(r *Resolver, q *query) *Location
}

// Resolver runs definition and reference queries against the open working set
// and, as a fallback, the surrounding file tree.
type Resolver struct {
	docs       *document.Manager
	store      *store.Store
	registry   *grammar.Registry
	search     *fileSearcher
	strategies []strategy
	logger     *slog.Logger
}

// SearchOptions bounds the filesystem fallback search.
type SearchOptions struct {
	MaxDepth      int      // recursion limit below each candidate dir
	CandidateDirs []string // subdirectories of the project root to search
	SkipDirs      []string // well-known build/dependency dirs to skip
	IgnoreGlobs   []string // extra ignore patterns
	MaxFileSize   int64    // files larger than this are never content-scanned
}

// DefaultSearchOptions returns the stock bounds: depth 3 under the usual
// source directories, skipping dependency and build output.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		MaxDepth:      3,
		CandidateDirs: []string{".", "src", "lib", "app", "internal", "pkg", "cmd"},
		SkipDirs: []string{
			"node_modules", ".git", "vendor", "dist", "build", "target",
			"__pycache__", ".venv", "venv", ".next", "coverage", ".cache",
		},
		MaxFileSize: 10 * 1024 * 1024,
	}
}

// New creates a resolver over the given working set.
func New(docs *document.Manager, st *store.Store, registry *grammar.Registry, opts SearchOptions, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{
		docs:     docs,
		store:    st,
		registry: registry,
		search:   newFileSearcher(opts, logger),
		logger:   logger,
	}
	// Strict order. Each strategy short-circuits the rest on success.
	r.strategies = []strategy{
		{name: "in-document", run: (*Resolver).definitionInDocument},
		{name: "cross-document", run: (*Resolver).definitionAcrossDocuments},
		{name: "filesystem", run: (*Resolver).definitionOnDisk},
		{name: "import", run: (*Resolver).definitionViaImport},
		{name: "builtin", run: (*Resolver).definitionBuiltin},
	}
	return r
}

// Definition resolves word at a position in the query document. A nil result
// means every strategy missed, which is a normal outcome, not an error.
func (r *Resolver) Definition(word, uri string, pos extract.Position) *Location {
	if word == "" {
		return nil
	}

	q := &query{word: word, uri: uri, pos: pos}
	if doc, ok := r.docs.Get(uri); ok {
		q.text = doc.Text
		q.language = r.registry.Resolve(doc.LanguageID)
	}

	for _, s := range r.strategies {
		if loc := s.run(r, q); loc != nil {
			r.logger.Debug("definition resolved", "word", word, "strategy", s.name, "uri", loc.URI)
			return loc
		}
	}
	r.logger.Debug("definition not found", "word", word, "uri", uri)
	return nil
}

// definitionInDocument is strategy 1: the earliest structural definition of
// the word in the query document's own tree.
func (r *Resolver) definitionInDocument(q *query) *Location {
	if q.language == "" || q.text == "" {
		return nil
	}
	source := []byte(q.text)
	tree, ok := r.registry.Parse(q.language, source)
	if !ok {
		return nil
	}
	defer tree.Close()

	if rng, found := extract.FindDefinition(tree, source, q.word); found {
		return &Location{URI: q.uri, Range: rng}
	}
	return nil
}

// definitionAcrossDocuments is strategy 2: the same structural match against
// every other open document, in open order, first hit wins.
func (r *Resolver) definitionAcrossDocuments(q *query) *Location {
	for _, uri := range r.docs.OpenOrder() {
		if uri == q.uri {
			continue
		}
		doc, ok := r.docs.Get(uri)
		if !ok {
			continue
		}
		language := r.registry.Resolve(doc.LanguageID)
		if language == "" {
			continue
		}
		source := []byte(doc.Text)
		tree, ok := r.registry.Parse(language, source)
		if !ok {
			continue
		}
		rng, found := extract.FindDefinition(tree, source, q.word)
		tree.Close()
		if found {
			return &Location{URI: uri, Range: rng}
		}
	}
	return nil
}

// definitionOnDisk is strategy 3: the bounded filesystem text search.
func (r *Resolver) definitionOnDisk(q *query) *Location {
	return r.search.findDefinition(q.word, uriToPath(q.uri))
}

// definitionBuiltin is strategy 5: the static per-language builtin table.
func (r *Resolver) definitionBuiltin(q *query) *Location {
	return builtinLocation(q.language, q.word)
}
