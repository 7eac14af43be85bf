package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/mvp-joe/wayfind/internal/extract"
	"github.com/mvp-joe/wayfind/internal/resolve"
)

// Test Plan for server helpers:
// - Position and range conversions round-trip between wire and engine types
// - Symbol kinds map onto the protocol's enumeration, unknowns to Variable
// - Tool argument parsing handles missing, wrongly-typed, and float64 values

func TestProtocolConversions(t *testing.T) {
	t.Parallel()

	pos := fromProtocolPosition(protocol.Position{Line: 3, Character: 7})
	assert.Equal(t, extract.Position{Line: 3, Character: 7}, pos)

	rng := toProtocolRange(extract.Range{
		Start: extract.Position{Line: 1, Character: 2},
		End:   extract.Position{Line: 1, Character: 9},
	})
	assert.Equal(t, uint32(1), rng.Start.Line)
	assert.Equal(t, uint32(9), rng.End.Character)

	loc := toProtocolLocation(resolve.Location{
		URI:   "file:///a.py",
		Range: extract.Range{Start: extract.Position{Line: 4}},
	})
	assert.Equal(t, protocol.DocumentURI("file:///a.py"), loc.URI)
	assert.Equal(t, uint32(4), loc.Range.Start.Line)
}

func TestSymbolKindFor(t *testing.T) {
	t.Parallel()

	cases := map[string]protocol.SymbolKind{
		extract.KindFunction:  protocol.SymbolKindFunction,
		extract.KindMethod:    protocol.SymbolKindMethod,
		extract.KindClass:     protocol.SymbolKindClass,
		extract.KindInterface: protocol.SymbolKindInterface,
		extract.KindStruct:    protocol.SymbolKindStruct,
		extract.KindEnum:      protocol.SymbolKindEnum,
		extract.KindImport:    protocol.SymbolKindModule,
		"mystery":             protocol.SymbolKindVariable,
	}
	for kind, want := range cases {
		assert.Equal(t, want, symbolKindFor(kind), kind)
	}
}

func TestCompletionKindFor(t *testing.T) {
	t.Parallel()

	cases := map[string]protocol.CompletionItemKind{
		extract.KindFunction: protocol.CompletionItemKindFunction,
		extract.KindClass:    protocol.CompletionItemKindClass,
		extract.KindImport:   protocol.CompletionItemKindModule,
		extract.KindTrait:    protocol.CompletionItemKindInterface,
		"mystery":            protocol.CompletionItemKindVariable,
	}
	for kind, want := range cases {
		assert.Equal(t, want, completionKindFor(kind), kind)
	}
}

func TestParseArgs(t *testing.T) {
	t.Parallel()

	args := map[string]interface{}{
		"file":  "main.py",
		"line":  float64(12),
		"fuzzy": true,
		"blank": "  ",
	}

	file, err := parseStringArg(args, "file", true)
	require.NoError(t, err)
	assert.Equal(t, "main.py", file)

	_, err = parseStringArg(args, "missing", true)
	assert.Error(t, err)

	opt, err := parseStringArg(args, "missing", false)
	require.NoError(t, err)
	assert.Empty(t, opt)

	_, err = parseStringArg(args, "line", true)
	assert.Error(t, err, "non-string values are rejected")

	_, err = parseStringArg(args, "blank", true)
	assert.Error(t, err, "required strings cannot be whitespace")

	assert.Equal(t, 12, parseIntArg(args, "line", 0))
	assert.Equal(t, 5, parseIntArg(args, "missing", 5))
	assert.True(t, parseBoolArg(args, "fuzzy", false))
	assert.False(t, parseBoolArg(args, "missing", false))
}
