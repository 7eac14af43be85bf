// Package grammar owns the tree-sitter grammars: lazy loading, extension
// mapping, and the fallback table for languages without a grammar of their
// own. Parsers are created per parse call; only the loaded Language objects
// are cached, since a tree-sitter Parser is not safe for concurrent use.
package grammar

import (
	"log/slog"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	golang "github.com/tree-sitter/tree-sitter-go/bindings/go"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// loaders maps canonical language ids to grammar constructors. Construction is
// deferred until first use; a language stays unsupported if its loader is
// missing from this table.
var loaders = map[string]func() *sitter.Language{
	"javascript": func() *sitter.Language { return sitter.NewLanguage(javascript.Language()) },
	"typescript": func() *sitter.Language { return sitter.NewLanguage(typescript.LanguageTypescript()) },
	"tsx":        func() *sitter.Language { return sitter.NewLanguage(typescript.LanguageTSX()) },
	"python":     func() *sitter.Language { return sitter.NewLanguage(python.Language()) },
	"c":          func() *sitter.Language { return sitter.NewLanguage(c.Language()) },
	"cpp":        func() *sitter.Language { return sitter.NewLanguage(cpp.Language()) },
	"go":         func() *sitter.Language { return sitter.NewLanguage(golang.Language()) },
	"java":       func() *sitter.Language { return sitter.NewLanguage(java.Language()) },
	"ruby":       func() *sitter.Language { return sitter.NewLanguage(ruby.Language()) },
	"rust":       func() *sitter.Language { return sitter.NewLanguage(rust.Language()) },
	"php":        func() *sitter.Language { return sitter.NewLanguage(php.LanguagePHP()) },
}

// Registry lazily loads and caches one grammar per language.
type Registry struct {
	mu        sync.Mutex
	languages map[string]*sitter.Language
	logger    *slog.Logger
}

// NewRegistry creates an empty registry. Grammars load on first request.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		languages: make(map[string]*sitter.Language),
		logger:    logger,
	}
}

// Supported reports whether a grammar exists for the language id, without
// loading it.
func (r *Registry) Supported(languageID string) bool {
	_, ok := loaders[languageID]
	return ok
}

// Load returns the cached grammar for the language, loading it on first use.
// ok=false means the language is unsupported; callers treat that as "no
// symbols", never as an error.
func (r *Registry) Load(languageID string) (*sitter.Language, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if lang, ok := r.languages[languageID]; ok {
		return lang, lang != nil
	}

	loader, ok := loaders[languageID]
	if !ok {
		r.logger.Debug("no grammar for language", "language", languageID)
		// Negative-cache so repeated lookups stay quiet.
		r.languages[languageID] = nil
		return nil, false
	}

	lang := loader()
	r.languages[languageID] = lang
	r.logger.Debug("loaded grammar", "language", languageID)
	return lang, lang != nil
}

// Parse parses source with the language's grammar. The returned tree is owned
// by the caller and must be closed; trees are never retained across edits.
// ok=false means no grammar was available or parsing produced no tree.
func (r *Registry) Parse(languageID string, source []byte) (*sitter.Tree, bool) {
	lang, ok := r.Load(languageID)
	if !ok {
		return nil, false
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, false
	}
	return tree, true
}

// Resolve maps a language id to the id that will actually parse it: the id
// itself when supported, else its fallback, else "". Fallback output is
// approximate by contract and may mis-extract.
func (r *Registry) Resolve(languageID string) string {
	if r.Supported(languageID) {
		return languageID
	}
	if fb := Fallback(languageID); fb != "" && r.Supported(fb) {
		return fb
	}
	return ""
}
