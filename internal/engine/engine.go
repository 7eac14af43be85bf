// Package engine wires the document manager, symbol store, and resolver into
// the query surface consumed by the request handlers: definition, references,
// document symbols, and name lookup.
package engine

import (
	"log/slog"
	"unicode"

	"github.com/mvp-joe/wayfind/internal/document"
	"github.com/mvp-joe/wayfind/internal/extract"
	"github.com/mvp-joe/wayfind/internal/grammar"
	"github.com/mvp-joe/wayfind/internal/resolve"
	"github.com/mvp-joe/wayfind/internal/store"
)

// Engine is the navigation engine: one registry, one store, one open working
// set, and the resolver over all of them.
type Engine struct {
	Registry *grammar.Registry
	Store    *store.Store
	Docs     *document.Manager
	Resolver *resolve.Resolver
	logger   *slog.Logger
}

// New assembles an engine with the given search bounds.
func New(opts resolve.SearchOptions, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	registry := grammar.NewRegistry(logger)
	st := store.New(registry, logger)
	docs := document.NewManager(st, logger)
	resolver := resolve.New(docs, st, registry, opts, logger)

	return &Engine{
		Registry: registry,
		Store:    st,
		Docs:     docs,
		Resolver: resolver,
		logger:   logger,
	}
}

// OnOpen handles a document-open notification.
func (e *Engine) OnOpen(uri, languageID string, version int32, text string) {
	e.Docs.Open(uri, languageID, version, text)
}

// OnChange handles a whole-text change notification.
func (e *Engine) OnChange(uri string, version int32, text string) {
	e.Docs.Change(uri, version, text)
}

// OnClose handles a document-close notification.
func (e *Engine) OnClose(uri string) {
	e.Docs.Close(uri)
}

// Definition resolves the word at a position. A nil location with a nil error
// means no definition was found, which is a normal outcome. Querying a URI
// that is not open is a contract violation and returns ErrUnknownDocument.
func (e *Engine) Definition(uri string, pos extract.Position) (*resolve.Location, error) {
	doc, ok := e.Docs.Get(uri)
	if !ok {
		return nil, store.ErrUnknownDocument
	}
	word := WordAt(doc.Text, pos)
	if word == "" {
		return nil, nil
	}
	return e.Resolver.Definition(word, uri, pos), nil
}

// References collects occurrences of the word at a position.
func (e *Engine) References(uri string, pos extract.Position, includeDeclaration bool) ([]resolve.Location, error) {
	doc, ok := e.Docs.Get(uri)
	if !ok {
		return nil, store.ErrUnknownDocument
	}
	word := WordAt(doc.Text, pos)
	if word == "" {
		return nil, nil
	}
	return e.Resolver.References(word, uri, includeDeclaration), nil
}

// DocumentSymbols returns the current symbol table for an open document.
func (e *Engine) DocumentSymbols(uri string) ([]extract.Symbol, error) {
	return e.Store.DocumentSymbols(uri)
}

// FindSymbol resolves a bare name across the working set.
func (e *Engine) FindSymbol(name, preferredURI string) *store.Hit {
	return e.Store.FindSymbol(name, preferredURI)
}

// WordAt extracts the identifier spanning a 0-based position in text.
// Identifier characters are letters, digits, underscore, and $ (for the
// javascript family). Returns "" when the position is not on a word.
func WordAt(text string, pos extract.Position) string {
	line := lineAt(text, pos.Line)
	if line == "" || pos.Character > len(line) {
		return ""
	}

	isWord := func(b byte) bool {
		return b == '_' || b == '$' ||
			(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
	}

	start := pos.Character
	if start == len(line) || (start > 0 && !isWord(line[start])) {
		start--
	}
	if start < 0 || start >= len(line) || !isWord(line[start]) {
		return ""
	}
	for start > 0 && isWord(line[start-1]) {
		start--
	}
	end := start
	for end < len(line) && isWord(line[end]) {
		end++
	}

	word := line[start:end]
	// A word cannot start with a digit.
	if word != "" && unicode.IsDigit(rune(word[0])) {
		return ""
	}
	return word
}

// lineAt returns the n-th 0-based line of text without its terminator.
func lineAt(text string, n int) string {
	start := 0
	for i := 0; i < n; i++ {
		idx := indexByteFrom(text, start, '\n')
		if idx < 0 {
			return ""
		}
		start = idx + 1
	}
	end := indexByteFrom(text, start, '\n')
	if end < 0 {
		end = len(text)
	}
	line := text[start:end]
	if len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}
	return line
}

func indexByteFrom(s string, from int, c byte) int {
	for i := from; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}
