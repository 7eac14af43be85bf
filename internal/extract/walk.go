package extract

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// walkTree visits node and all descendants in pre-order using an explicit
// stack, so deeply nested source cannot exhaust the goroutine stack. The
// visitor returns false to skip a node's subtree.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}

	stack := make([]*sitter.Node, 0, 64)
	stack = append(stack, node)

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !visitor(n) {
			continue
		}

		// Push children in reverse so they pop in source order.
		for i := int(n.ChildCount()) - 1; i >= 0; i-- {
			if child := n.Child(uint(i)); child != nil {
				stack = append(stack, child)
			}
		}
	}
}

// nodeText extracts the text content of a tree-sitter node.
func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if start > end || end > uint(len(source)) {
		return ""
	}
	return string(source[start:end])
}

// nodeRange converts a node's span to a 0-based half-open Range.
func nodeRange(node *sitter.Node) Range {
	return Range{
		Start: Position{Line: int(node.StartPosition().Row), Character: int(node.StartPosition().Column)},
		End:   Position{Line: int(node.EndPosition().Row), Character: int(node.EndPosition().Column)},
	}
}

// fieldFallbacks maps node kind -> logical field -> child kinds that plausibly
// fill the field when the grammar has no named-field accessor for it. The
// lookup is best-effort: "the name is the first identifier-typed child" misfires
// on multi-name constructs, and that imprecision is accepted.
var fieldFallbacks = map[string]map[string][]string{
	"function_declaration":  {"name": {"identifier"}, "parameters": {"formal_parameters", "parameter_list"}},
	"function_definition":   {"name": {"identifier", "name"}, "parameters": {"parameters", "formal_parameters", "parameter_list"}},
	"method_definition":     {"name": {"property_identifier", "identifier"}, "parameters": {"formal_parameters"}},
	"field_definition":      {"name": {"property_identifier", "private_property_identifier"}},
	"method_declaration":    {"name": {"identifier", "field_identifier", "name"}, "parameters": {"formal_parameters", "parameter_list"}},
	"class_declaration":     {"name": {"identifier", "type_identifier", "name"}},
	"class_definition":      {"name": {"identifier"}},
	"interface_declaration": {"name": {"type_identifier", "identifier", "name"}},
	"variable_declarator":   {"name": {"identifier"}, "value": {}},
	"assignment":            {"left": {"identifier"}},
	"struct_item":           {"name": {"type_identifier"}},
	"enum_item":             {"name": {"type_identifier"}},
	"trait_item":            {"name": {"type_identifier"}},
	"function_item":         {"name": {"identifier"}, "parameters": {"parameters"}},
	"type_spec":             {"name": {"type_identifier"}},
}

// genericNameKinds is the last-resort candidate set for a "name" field on a
// node kind the table does not know about.
var genericNameKinds = []string{"identifier", "type_identifier", "property_identifier", "field_identifier", "name"}

// fieldChild resolves a logical field of a node, preferring the grammar's
// named-field accessor and falling back to the heuristic table. Returns nil
// when neither yields a child; callers must treat that as "no symbol here".
func fieldChild(node *sitter.Node, field string) *sitter.Node {
	if node == nil {
		return nil
	}
	if child := node.ChildByFieldName(field); child != nil {
		return child
	}

	kinds := fieldFallbacks[node.Kind()][field]
	if len(kinds) == 0 && field == "name" {
		kinds = genericNameKinds
	}
	for _, kind := range kinds {
		if child := findChildByKind(node, kind); child != nil {
			return child
		}
	}
	return nil
}

// findChildByKind finds the first direct child with the given kind.
func findChildByKind(node *sitter.Node, kind string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}

// findChildrenByKind finds all direct children with the given kind.
func findChildrenByKind(node *sitter.Node, kind string) []*sitter.Node {
	var results []*sitter.Node
	if node == nil {
		return results
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child != nil && child.Kind() == kind {
			results = append(results, child)
		}
	}
	return results
}

// hasChildOfKind reports whether the node has a direct child of the given kind.
// Anonymous children count, which is how modifiers like "async" surface.
func hasChildOfKind(node *sitter.Node, kind string) bool {
	return findChildByKind(node, kind) != nil
}

// precedingComment returns the first line of a comment node immediately above
// the declaration, stripped of comment markers. Empty when no comment adjoins.
func precedingComment(node *sitter.Node, source []byte) string {
	prev := node.PrevNamedSibling()
	if prev == nil || !strings.Contains(prev.Kind(), "comment") {
		return ""
	}
	// Only treat it as doc when it ends on the line directly above.
	if int(prev.EndPosition().Row)+1 < int(node.StartPosition().Row) {
		return ""
	}
	text := nodeText(prev, source)
	line := text
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		line = text[:idx]
	}
	line = strings.TrimPrefix(line, "///")
	line = strings.TrimPrefix(line, "//")
	line = strings.TrimPrefix(line, "#")
	line = strings.TrimPrefix(line, "/*")
	line = strings.TrimPrefix(line, "*")
	line = strings.TrimSuffix(line, "*/")
	return strings.TrimSpace(line)
}

// stripQuotes removes surrounding string-literal syntax from an import module
// path: quotes, angle brackets for C includes, and surrounding whitespace.
func stripQuotes(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'`")
	s = strings.TrimPrefix(s, "<")
	s = strings.TrimSuffix(s, ">")
	return s
}
