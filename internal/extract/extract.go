// Package extract turns parsed tree-sitter trees into normalized symbol
// records. One extraction function exists per language family; all families
// share the Symbol output schema. Extraction is pure and deterministic: the
// same (tree, source) pair always yields the same symbol sequence.
package extract

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Family identifies the extraction strategy for a language. The set is closed:
// dispatch is a switch, not an interface, so each extractor stays an
// independently testable function.
type Family int

const (
	FamilyUnknown Family = iota
	FamilyCLike          // javascript, typescript, tsx, java, c, cpp
	FamilyScript         // python, ruby
	FamilySystems        // go, rust
	FamilyMarkup         // php (HTML-embedded grammar)
)

var families = map[string]Family{
	"javascript": FamilyCLike,
	"typescript": FamilyCLike,
	"tsx":        FamilyCLike,
	"java":       FamilyCLike,
	"c":          FamilyCLike,
	"cpp":        FamilyCLike,
	"python":     FamilyScript,
	"ruby":       FamilyScript,
	"go":         FamilySystems,
	"rust":       FamilySystems,
	"php":        FamilyMarkup,
}

// FamilyFor returns the extraction family for a canonical language id.
func FamilyFor(languageID string) Family {
	return families[languageID]
}

// Extract walks the parsed tree in pre-order and emits normalized symbols for
// every declaration the language family recognizes. Malformed subtrees
// (tree-sitter ERROR nodes) are walked like any other: whatever declarations
// survived error recovery are still extracted. An unknown language yields nil.
func Extract(tree *sitter.Tree, source []byte, languageID string) []Symbol {
	if tree == nil {
		return nil
	}
	root := tree.RootNode()
	if root == nil {
		return nil
	}

	switch FamilyFor(languageID) {
	case FamilyCLike:
		return extractCLike(root, source)
	case FamilyScript:
		return extractScript(root, source)
	case FamilySystems:
		return extractSystems(root, source)
	case FamilyMarkup:
		return extractMarkup(root, source)
	default:
		return nil
	}
}
