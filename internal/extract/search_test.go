package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/wayfind/internal/grammar"
)

// Test Plan for structural search:
// - FindDefinition locates a declaration name slot, not uses
// - FindDefinition picks the earliest definition when a name is declared twice
// - FindDefinition ignores words that only appear as uses
// - FindReferences returns all occurrences with declarations classified
// - FindReferences deduplicates and covers parameters and call sites

func parseTree(t *testing.T, languageID, source string) (*sitter.Tree, []byte) {
	t.Helper()
	registry := grammar.NewRegistry(nil)
	tree, ok := registry.Parse(languageID, []byte(source))
	require.True(t, ok)
	t.Cleanup(tree.Close)
	return tree, []byte(source)
}

func TestFindDefinition_Function(t *testing.T) {
	t.Parallel()

	source := `function greet(name) {
  return name;
}
greet("world");
`
	tree, src := parseTree(t, "javascript", source)

	rng, ok := FindDefinition(tree, src, "greet")
	require.True(t, ok)
	assert.Equal(t, 0, rng.Start.Line, "definition is the declaration, not the call")
	assert.Equal(t, 9, rng.Start.Character)
}

func TestFindDefinition_ParameterAndVariable(t *testing.T) {
	t.Parallel()

	source := `def compute(value):
    total = value * 2
    return total
`
	tree, src := parseTree(t, "python", source)

	rng, ok := FindDefinition(tree, src, "value")
	require.True(t, ok)
	assert.Equal(t, 0, rng.Start.Line, "parameter position is a definition")

	rng, ok = FindDefinition(tree, src, "total")
	require.True(t, ok)
	assert.Equal(t, 1, rng.Start.Line, "assignment left side is a definition")
}

func TestFindDefinition_EarliestWins(t *testing.T) {
	t.Parallel()

	source := `x = 1
x = 2
`
	tree, src := parseTree(t, "python", source)

	rng, ok := FindDefinition(tree, src, "x")
	require.True(t, ok)
	assert.Equal(t, 0, rng.Start.Line)
}

func TestFindDefinition_UseOnlyWordNotFound(t *testing.T) {
	t.Parallel()

	source := `def run():
    return undefined_helper()
`
	tree, src := parseTree(t, "python", source)

	_, ok := FindDefinition(tree, src, "undefined_helper")
	assert.False(t, ok, "a word that is only called is not defined here")
}

func TestFindReferences_ClassifiesDeclarations(t *testing.T) {
	t.Parallel()

	source := `def foo():
    pass

foo()
result = foo()
`
	tree, src := parseTree(t, "python", source)

	occurrences := FindReferences(tree, src, "foo")
	require.Len(t, occurrences, 3)

	var declarations, uses int
	for _, occ := range occurrences {
		if occ.IsDeclaration {
			declarations++
		} else {
			uses++
		}
	}
	assert.Equal(t, 1, declarations, "only the def line declares foo")
	assert.Equal(t, 2, uses)
}

func TestFindReferences_NoMatches(t *testing.T) {
	t.Parallel()

	tree, src := parseTree(t, "python", "x = 1\n")
	assert.Empty(t, FindReferences(tree, src, "missing"))
}
