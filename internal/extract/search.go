package extract

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// declarationParents are node kinds whose name slot declares a new binding.
// Shared across grammars; kinds missing from one grammar simply never match.
var declarationParents = map[string]bool{
	"function_declaration":           true,
	"generator_function_declaration": true,
	"function_definition":            true,
	"function_item":                  true,
	"method_definition":              true,
	"method_declaration":             true,
	"method":                         true,
	"singleton_method":               true,
	"class_declaration":              true,
	"abstract_class_declaration":     true,
	"class_definition":               true,
	"class_specifier":                true,
	"class":                          true,
	"interface_declaration":          true,
	"type_alias_declaration":         true,
	"type_spec":                      true,
	"type_alias":                     true,
	"struct_specifier":               true,
	"struct_item":                    true,
	"enum_declaration":               true,
	"enum_specifier":                 true,
	"enum_item":                      true,
	"trait_item":                     true,
	"trait_declaration":              true,
	"mod_item":                       true,
	"module":                         true,
	"namespace_definition":           true,
	"variable_declarator":            true,
	"init_declarator":                true,
	"const_spec":                     true,
	"var_spec":                       true,
	"const_item":                     true,
	"static_item":                    true,
	"const_element":                  true,
	"field_declaration":              true,
	"public_field_definition":        true,
}

// identifierKinds are the node kinds that can carry a name occurrence.
var identifierKinds = map[string]bool{
	"identifier":          true,
	"type_identifier":     true,
	"property_identifier": true,
	"field_identifier":    true,
	"shorthand_property_identifier": true,
	"name":                true,
	"constant":            true,
}

// isDeclarationName reports whether an identifier node sits in a definition
// position: the name slot of a declaration, the bound side of an assignment,
// or a parameter.
func isDeclarationName(n *sitter.Node) bool {
	parent := n.Parent()
	if parent == nil {
		return false
	}

	kind := parent.Kind()
	if declarationParents[kind] {
		// Must be the name slot, not e.g. a value mentioning the same word.
		name := fieldChild(parent, "name")
		if name != nil {
			return name.StartByte() == n.StartByte() && name.EndByte() == n.EndByte()
		}
		// Declarator chains use "declarator" instead of "name".
		if decl := parent.ChildByFieldName("declarator"); decl != nil {
			return decl.StartByte() == n.StartByte() && decl.EndByte() == n.EndByte()
		}
		return true
	}

	switch kind {
	case "assignment", "assignment_expression", "augmented_assignment":
		left := parent.ChildByFieldName("left")
		return left != nil && left.StartByte() == n.StartByte() && left.EndByte() == n.EndByte()
	case "formal_parameters", "parameters", "parameter_list", "parameter_declaration",
		"required_parameter", "optional_parameter", "default_parameter",
		"typed_parameter", "typed_default_parameter", "simple_parameter",
		"rest_pattern", "list_splat_pattern", "dictionary_splat_pattern",
		"variadic_parameter_declaration":
		return true
	case "import_specifier", "aliased_import", "namespace_import", "import_clause",
		"import_spec", "use_as_clause", "namespace_use_clause":
		return true
	}
	return false
}

// FindDefinition returns the earliest (row, column) definition of word in the
// tree: a declaration name slot or the bound name of an assignment. ok=false
// when the word is not defined in this document.
func FindDefinition(tree *sitter.Tree, source []byte, word string) (Range, bool) {
	if tree == nil {
		return Range{}, false
	}

	var best Range
	found := false
	walkTree(tree.RootNode(), func(n *sitter.Node) bool {
		if !identifierKinds[n.Kind()] || nodeText(n, source) != word {
			return true
		}
		if !isDeclarationName(n) {
			return true
		}
		rng := nodeRange(n)
		if !found || rng.Start.Line < best.Start.Line ||
			(rng.Start.Line == best.Start.Line && rng.Start.Character < best.Start.Character) {
			best = rng
			found = true
		}
		return true
	})
	return best, found
}

// Occurrence is one appearance of a word in a document.
type Occurrence struct {
	Range         Range
	IsDeclaration bool
}

// FindReferences collects every identifier, property, member-access and call
// occurrence of word, classified as declaration or use by parent shape.
func FindReferences(tree *sitter.Tree, source []byte, word string) []Occurrence {
	if tree == nil {
		return nil
	}

	var out []Occurrence
	seen := make(map[Range]bool)
	add := func(n *sitter.Node, decl bool) {
		rng := nodeRange(n)
		if seen[rng] {
			return
		}
		seen[rng] = true
		out = append(out, Occurrence{Range: rng, IsDeclaration: decl})
	}

	walkTree(tree.RootNode(), func(n *sitter.Node) bool {
		kind := n.Kind()
		switch {
		case identifierKinds[kind]:
			if nodeText(n, source) == word {
				add(n, isDeclarationName(n))
			}
		case kind == "member_expression" || kind == "attribute" || kind == "field_expression":
			// The relevant sub-node is the property/attribute side; the
			// identifier child is also visited directly, so only catch
			// grammars whose property side is not an identifier kind.
			prop := n.ChildByFieldName("property")
			if prop == nil {
				prop = n.ChildByFieldName("attribute")
			}
			if prop == nil {
				prop = n.ChildByFieldName("field")
			}
			if prop != nil && !identifierKinds[prop.Kind()] && nodeText(prop, source) == word {
				add(prop, false)
			}
		case kind == "call_expression" || kind == "call":
			fn := n.ChildByFieldName("function")
			if fn == nil {
				fn = n.ChildByFieldName("method")
			}
			if fn != nil && !identifierKinds[fn.Kind()] && fn.ChildCount() == 0 && nodeText(fn, source) == word {
				add(fn, false)
			}
		}
		return true
	})
	return out
}
