package resolve

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/wayfind/internal/document"
	"github.com/mvp-joe/wayfind/internal/extract"
	"github.com/mvp-joe/wayfind/internal/grammar"
	"github.com/mvp-joe/wayfind/internal/store"
)

// Test Plan for Resolver:
// - Definition of an empty word is nil without consulting any strategy
// - An in-document definition wins even when other open documents define the word
// - Cross-document lookup walks the open set in open order, first hit wins
// - The disk fallback finds declarations in unopened files under the project root
// - Imported names resolve through their source module to a file on disk
// - An import whose module cannot be found on disk resolves to nil
// - Builtins resolve to symbolic "builtin:" locations, with typescript folded onto javascript
// - A word no strategy knows resolves to nil
// - References classifies declarations and honors includeDeclaration
// - References falls back to a whole-word text scan for unsupported languages

// newTestResolver builds a resolver over a fresh working set rooted in a temp
// project directory. The .git marker pins the disk search to that directory.
func newTestResolver(t *testing.T) (*Resolver, *document.Manager, string) {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))

	registry := grammar.NewRegistry(nil)
	st := store.New(registry, nil)
	docs := document.NewManager(st, nil)
	return New(docs, st, registry, DefaultSearchOptions(), nil), docs, root
}

func projectURI(root string, names ...string) string {
	return "file://" + filepath.Join(append([]string{root}, names...)...)
}

func TestResolver_DefinitionEmptyWord(t *testing.T) {
	t.Parallel()

	r, _, _ := newTestResolver(t)
	assert.Nil(t, r.Definition("", "file:///a.py", extract.Position{}))
}

func TestResolver_InDocumentDefinition(t *testing.T) {
	t.Parallel()

	r, docs, root := newTestResolver(t)
	uri := projectURI(root, "main.py")
	docs.Open(uri, "python", 1, "def greet():\n    pass\n\ngreet()\n")

	loc := r.Definition("greet", uri, extract.Position{Line: 3, Character: 0})
	require.NotNil(t, loc)
	assert.Equal(t, uri, loc.URI)
	assert.Equal(t, 0, loc.Range.Start.Line)
	assert.Equal(t, 4, loc.Range.Start.Character)
}

func TestResolver_InDocumentBeatsOtherDocuments(t *testing.T) {
	t.Parallel()

	r, docs, root := newTestResolver(t)
	first := projectURI(root, "a.py")
	second := projectURI(root, "b.py")
	docs.Open(first, "python", 1, "def shared():\n    pass\n")
	docs.Open(second, "python", 1, "def shared():\n    return 1\n")

	loc := r.Definition("shared", second, extract.Position{Line: 0, Character: 4})
	require.NotNil(t, loc)
	assert.Equal(t, second, loc.URI, "the query document's own definition must win")
}

func TestResolver_CrossDocumentOpenOrder(t *testing.T) {
	t.Parallel()

	r, docs, root := newTestResolver(t)
	caller := projectURI(root, "caller.py")
	first := projectURI(root, "first.py")
	second := projectURI(root, "second.py")
	docs.Open(caller, "python", 1, "value = shared\n")
	docs.Open(first, "python", 1, "def shared():\n    pass\n")
	docs.Open(second, "python", 1, "def shared():\n    pass\n")

	loc := r.Definition("shared", caller, extract.Position{Line: 0, Character: 8})
	require.NotNil(t, loc)
	assert.Equal(t, first, loc.URI, "the earliest-opened defining document wins")
}

func TestResolver_DiskFallback(t *testing.T) {
	t.Parallel()

	r, docs, root := newTestResolver(t)
	require.NoError(t, os.Mkdir(filepath.Join(root, "src"), 0o755))
	target := filepath.Join(root, "src", "mathy.py")
	require.NoError(t, os.WriteFile(target, []byte("def compute(x):\n    return x * 2\n"), 0o644))

	uri := projectURI(root, "main.py")
	docs.Open(uri, "python", 1, "print(compute(2))\n")

	loc := r.Definition("compute", uri, extract.Position{Line: 0, Character: 6})
	require.NotNil(t, loc)
	assert.Equal(t, "file://"+target, loc.URI)
	assert.Equal(t, 0, loc.Range.Start.Line)
	assert.Equal(t, 4, loc.Range.Start.Character)
	assert.Equal(t, 4+len("compute"), loc.Range.End.Character)
}

func TestResolver_ImportResolution(t *testing.T) {
	t.Parallel()

	r, docs, root := newTestResolver(t)
	// A lambda binding so the disk search's declaration shapes stay silent and
	// the import strategy has to carry the lookup.
	module := filepath.Join(root, "utils.py")
	require.NoError(t, os.WriteFile(module, []byte("helper = lambda value: value * 2\n"), 0o644))

	uri := projectURI(root, "main.py")
	docs.Open(uri, "python", 1, "from utils import helper\n\nresult = helper(2)\n")

	loc := r.Definition("helper", uri, extract.Position{Line: 2, Character: 9})
	require.NotNil(t, loc)
	assert.Equal(t, "file://"+module, loc.URI)
	assert.Equal(t, extract.Range{}, loc.Range, "import resolution points at the top of the module")
}

func TestResolver_ImportMissingModule(t *testing.T) {
	t.Parallel()

	r, docs, root := newTestResolver(t)
	uri := projectURI(root, "main.py")
	docs.Open(uri, "python", 1, "from missingmod import gone\n\ngone()\n")

	loc := r.Definition("gone", uri, extract.Position{Line: 2, Character: 0})
	assert.Nil(t, loc, "an import whose module is not on disk resolves to nothing")
}

func TestResolver_BuiltinTable(t *testing.T) {
	t.Parallel()

	r, docs, root := newTestResolver(t)
	pyURI := projectURI(root, "main.py")
	docs.Open(pyURI, "python", 1, "print(len([1, 2]))\n")

	loc := r.Definition("len", pyURI, extract.Position{Line: 0, Character: 6})
	require.NotNil(t, loc)
	assert.Equal(t, "builtin:python/len", loc.URI)

	tsURI := projectURI(root, "main.ts")
	docs.Open(tsURI, "typescript", 1, "console.log(1)\n")

	loc = r.Definition("console", tsURI, extract.Position{Line: 0, Character: 0})
	require.NotNil(t, loc)
	assert.Equal(t, "builtin:javascript/console", loc.URI, "typescript shares the javascript table")
}

func TestBuiltinNames(t *testing.T) {
	t.Parallel()

	names := BuiltinNames("python")
	assert.Contains(t, names, "len")
	assert.Contains(t, names, "print")
	assert.True(t, sort.StringsAreSorted(names))

	assert.Equal(t, BuiltinNames("javascript"), BuiltinNames("tsx"), "tsx folds onto javascript")
	assert.Empty(t, BuiltinNames("plaintext"))
}

func TestResolver_DefinitionMiss(t *testing.T) {
	t.Parallel()

	r, docs, root := newTestResolver(t)
	uri := projectURI(root, "main.py")
	docs.Open(uri, "python", 1, "print(zzqx_nothing)\n")

	assert.Nil(t, r.Definition("zzqx_nothing", uri, extract.Position{Line: 0, Character: 6}))
}

func TestResolver_ReferencesClassifiesDeclarations(t *testing.T) {
	t.Parallel()

	r, docs, root := newTestResolver(t)
	uri := projectURI(root, "main.py")
	docs.Open(uri, "python", 1, "def foo():\n    pass\n\nfoo()\nfoo()\n")

	withDecl := r.References("foo", uri, true)
	require.Len(t, withDecl, 3)
	assert.Equal(t, 0, withDecl[0].Range.Start.Line)
	assert.Equal(t, 4, withDecl[0].Range.Start.Character)
	for _, loc := range withDecl {
		assert.Equal(t, uri, loc.URI)
	}

	usesOnly := r.References("foo", uri, false)
	require.Len(t, usesOnly, 2)
	assert.Equal(t, 3, usesOnly[0].Range.Start.Line)
	assert.Equal(t, 4, usesOnly[1].Range.Start.Line)
}

func TestResolver_ReferencesTextualFallback(t *testing.T) {
	t.Parallel()

	r, docs, root := newTestResolver(t)
	uri := projectURI(root, "notes.txt")
	docs.Open(uri, "plaintext", 1, "alpha beta alpha\nalpha\n")

	locs := r.References("alpha", uri, false)
	require.Len(t, locs, 3, "the text fallback has no declaration notion to filter")
	assert.Equal(t, extract.Position{Line: 0, Character: 0}, locs[0].Range.Start)
	assert.Equal(t, extract.Position{Line: 0, Character: 11}, locs[1].Range.Start)
	assert.Equal(t, extract.Position{Line: 1, Character: 0}, locs[2].Range.Start)

	assert.Empty(t, r.References("alphabet", uri, true), "partial words never match")
}

func TestResolver_ReferencesUnknownDocument(t *testing.T) {
	t.Parallel()

	r, _, _ := newTestResolver(t)
	assert.Nil(t, r.References("foo", "file:///never-opened.py", true))
}
