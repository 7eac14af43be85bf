package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Registry:
// - Supported knows all eleven grammars without loading them
// - Load caches grammars and negative-caches unknown languages
// - Parse produces a tree for supported languages, fails for others
// - Resolve maps supported ids to themselves, fallbacks to their target,
//   and everything else to ""
// - LanguageForFile maps extensions case-insensitively, defaulting to plaintext
// - ExtensionsForLanguage covers every supported language

func TestRegistry_Supported(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	for _, lang := range []string{
		"javascript", "typescript", "tsx", "python", "c", "cpp",
		"go", "java", "ruby", "rust", "php",
	} {
		assert.True(t, r.Supported(lang), "%s should be supported", lang)
	}
	assert.False(t, r.Supported("haskell"))
	assert.False(t, r.Supported(""))
}

func TestRegistry_LoadAndParse(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)

	lang, ok := r.Load("python")
	require.True(t, ok)
	require.NotNil(t, lang)

	// Second load hits the cache and returns the same object.
	again, ok := r.Load("python")
	require.True(t, ok)
	assert.Same(t, lang, again)

	tree, ok := r.Parse("python", []byte("def f():\n    pass\n"))
	require.True(t, ok)
	defer tree.Close()
	assert.NotNil(t, tree.RootNode())
}

func TestRegistry_ParseUnsupported(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	tree, ok := r.Parse("haskell", []byte("main = return ()"))
	assert.False(t, ok)
	assert.Nil(t, tree)

	// Repeated misses are fine (negative cache path).
	_, ok = r.Parse("haskell", []byte(""))
	assert.False(t, ok)
}

func TestRegistry_Resolve(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	assert.Equal(t, "python", r.Resolve("python"))
	assert.Equal(t, "javascript", r.Resolve("coffeescript"), "fallback languages resolve to a grammar")
	assert.Equal(t, "java", r.Resolve("kotlin"))
	assert.Equal(t, "", r.Resolve("haskell"))
	assert.Equal(t, "", r.Resolve("plaintext"))
}

func TestLanguageForFile(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"main.go":        "go",
		"app.tsx":        "tsx",
		"script.PY":      "python",
		"lib/util.cpp":   "cpp",
		"header.h":       "c",
		"index.mjs":      "javascript",
		"README.md":      "plaintext",
		"Makefile":       "plaintext",
		"service.rb":     "ruby",
		"parser.rs":      "rust",
		"view.php":       "php",
		"Main.java":      "java",
	}
	for file, want := range cases {
		assert.Equal(t, want, LanguageForFile(file), "extension of %s", file)
	}
}

func TestRegisterFallback(t *testing.T) {
	// Not parallel: mutates the shared fallback table.
	RegisterFallback("mylang", "python")
	assert.Equal(t, "python", Fallback("mylang"))

	r := NewRegistry(nil)
	assert.Equal(t, "python", r.Resolve("mylang"))
}

func TestExtensionsForLanguage(t *testing.T) {
	t.Parallel()

	assert.Contains(t, ExtensionsForLanguage("typescript"), ".ts")
	assert.Contains(t, ExtensionsForLanguage("python"), ".py")
	assert.Empty(t, ExtensionsForLanguage("plaintext"))
}
