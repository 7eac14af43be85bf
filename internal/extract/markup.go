package extract

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// extractMarkup handles php, whose grammar embeds code in HTML documents.
// Nodes outside php tags are plain text and yield nothing.
func extractMarkup(root *sitter.Node, source []byte) []Symbol {
	var symbols []Symbol

	walkTree(root, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "function_definition":
			if sym, ok := phpFunction(n, source); ok {
				symbols = append(symbols, sym)
			}
		case "method_declaration":
			if sym, ok := phpMethod(n, source); ok {
				symbols = append(symbols, sym)
			}
		case "class_declaration":
			if sym, ok := namedDecl(n, source, KindClass); ok {
				symbols = append(symbols, sym)
			}
		case "interface_declaration":
			if sym, ok := namedDecl(n, source, KindInterface); ok {
				symbols = append(symbols, sym)
			}
		case "trait_declaration":
			if sym, ok := namedDecl(n, source, KindTrait); ok {
				symbols = append(symbols, sym)
			}
		case "namespace_definition":
			if sym, ok := namedDecl(n, source, KindModule); ok {
				symbols = append(symbols, sym)
			}
		case "const_declaration":
			symbols = append(symbols, phpConstants(n, source)...)
		case "namespace_use_declaration":
			symbols = append(symbols, phpUses(n, source)...)
		}
		return true
	})

	return symbols
}

func phpFunction(n *sitter.Node, source []byte) (Symbol, bool) {
	nameNode := fieldChild(n, "name")
	if nameNode == nil {
		return Symbol{}, false
	}
	name := nodeText(nameNode, source)
	params := n.ChildByFieldName("parameters")

	return Symbol{
		Name:      name,
		Kind:      KindFunction,
		Signature: name + paramsText(params, source),
		Params:    phpParams(params, source),
		Range:     nodeRange(n),
		Doc:       precedingComment(n, source),
	}, true
}

func phpMethod(n *sitter.Node, source []byte) (Symbol, bool) {
	nameNode := fieldChild(n, "name")
	if nameNode == nil {
		return Symbol{}, false
	}
	name := nodeText(nameNode, source)
	params := n.ChildByFieldName("parameters")
	container := enclosingTypeName(n, source)

	sig := name + paramsText(params, source)
	if container != "" {
		sig = container + "::" + sig
	}

	return Symbol{
		Name:      name,
		Kind:      KindMethod,
		Signature: sig,
		Params:    phpParams(params, source),
		Range:     nodeRange(n),
		Container: container,
		Doc:       precedingComment(n, source),
		Static:    hasChildOfKind(n, "static_modifier"),
		Exported:  phpVisible(n, source),
	}, true
}

// phpVisible treats methods as exported unless explicitly private/protected.
func phpVisible(n *sitter.Node, source []byte) bool {
	mod := findChildByKind(n, "visibility_modifier")
	if mod == nil {
		return true
	}
	text := nodeText(mod, source)
	return text != "private" && text != "protected"
}

func phpConstants(n *sitter.Node, source []byte) []Symbol {
	var symbols []Symbol
	for _, elem := range findChildrenByKind(n, "const_element") {
		nameNode := findChildByKind(elem, "name")
		if nameNode == nil {
			continue
		}
		symbols = append(symbols, Symbol{
			Name:      nodeText(nameNode, source),
			Kind:      KindConstant,
			Signature: firstLine(nodeText(elem, source)),
			Range:     nodeRange(elem),
			Container: enclosingTypeName(n, source),
		})
	}
	return symbols
}

// phpUses expands `use A\B\C as D;` declarations.
func phpUses(n *sitter.Node, source []byte) []Symbol {
	var symbols []Symbol
	rng := nodeRange(n)

	for _, clause := range findChildrenByKind(n, "namespace_use_clause") {
		var qualified, alias string
		for i := 0; i < int(clause.ChildCount()); i++ {
			child := clause.Child(uint(i))
			if child == nil {
				continue
			}
			switch child.Kind() {
			case "qualified_name", "name":
				if qualified == "" {
					qualified = nodeText(child, source)
				}
			case "namespace_aliasing_clause":
				if nameNode := findChildByKind(child, "name"); nameNode != nil {
					alias = nodeText(nameNode, source)
				}
			}
		}
		if qualified == "" {
			continue
		}
		original := qualified
		if idx := strings.LastIndexByte(qualified, '\\'); idx >= 0 {
			original = qualified[idx+1:]
		}
		local := original
		imported := ""
		if alias != "" {
			local = alias
			imported = original
		}
		symbols = append(symbols, Symbol{
			Name:         local,
			Kind:         KindImport,
			Signature:    "use " + qualified,
			Range:        rng,
			SourceModule: qualified,
			ImportedName: imported,
		})
	}
	return symbols
}

func phpParams(params *sitter.Node, source []byte) []Param {
	if params == nil {
		return nil
	}
	var result []Param
	for _, decl := range findChildrenByKind(params, "simple_parameter") {
		nameNode := decl.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		result = append(result, Param{
			Name:    nodeText(nameNode, source),
			Default: decl.ChildByFieldName("default_value") != nil,
		})
	}
	for _, decl := range findChildrenByKind(params, "variadic_parameter") {
		if nameNode := decl.ChildByFieldName("name"); nameNode != nil {
			result = append(result, Param{Name: nodeText(nameNode, source), Variadic: true})
		}
	}
	return result
}
