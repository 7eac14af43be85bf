package extract

import (
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// extractSystems handles go and rust.
func extractSystems(root *sitter.Node, source []byte) []Symbol {
	var symbols []Symbol

	walkTree(root, func(n *sitter.Node) bool {
		switch n.Kind() {
		// go
		case "function_declaration":
			if sym, ok := goFunction(n, source); ok {
				symbols = append(symbols, sym)
			}
		case "method_declaration":
			if sym, ok := goMethod(n, source); ok {
				symbols = append(symbols, sym)
			}
		case "type_declaration":
			symbols = append(symbols, goTypes(n, source)...)
		case "const_declaration", "var_declaration":
			symbols = append(symbols, goValues(n, source)...)
		case "import_declaration":
			symbols = append(symbols, goImports(n, source)...)

		// rust
		case "function_item":
			if sym, ok := rustFunction(n, source); ok {
				symbols = append(symbols, sym)
			}
		case "struct_item":
			if sym, ok := rustType(n, source, KindStruct); ok {
				symbols = append(symbols, sym)
			}
		case "enum_item":
			if sym, ok := rustType(n, source, KindEnum); ok {
				symbols = append(symbols, sym)
			}
		case "trait_item":
			if sym, ok := rustType(n, source, KindTrait); ok {
				symbols = append(symbols, sym)
			}
		case "mod_item":
			if sym, ok := rustType(n, source, KindModule); ok {
				symbols = append(symbols, sym)
			}
		case "const_item", "static_item":
			if sym, ok := rustValue(n, source); ok {
				symbols = append(symbols, sym)
			}
		case "use_declaration":
			symbols = append(symbols, rustUses(n, source)...)
		}
		return true
	})

	return symbols
}

// goExported follows the Go convention: an identifier is exported when its
// first rune is upper case.
func goExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

func goFunction(n *sitter.Node, source []byte) (Symbol, bool) {
	nameNode := fieldChild(n, "name")
	if nameNode == nil {
		return Symbol{}, false
	}
	name := nodeText(nameNode, source)
	params := n.ChildByFieldName("parameters")

	return Symbol{
		Name:      name,
		Kind:      KindFunction,
		Signature: "func " + name + paramsText(params, source),
		Params:    goParams(params, source),
		Range:     nodeRange(n),
		Doc:       precedingComment(n, source),
		Exported:  goExported(name),
	}, true
}

func goMethod(n *sitter.Node, source []byte) (Symbol, bool) {
	nameNode := fieldChild(n, "name")
	if nameNode == nil {
		return Symbol{}, false
	}
	name := nodeText(nameNode, source)
	params := n.ChildByFieldName("parameters")
	receiver := n.ChildByFieldName("receiver")

	container := ""
	if receiver != nil {
		container = strings.TrimLeft(nodeText(receiver, source), "(")
		container = strings.TrimRight(container, ")")
		if fields := strings.Fields(container); len(fields) > 0 {
			container = strings.TrimPrefix(fields[len(fields)-1], "*")
		}
	}

	return Symbol{
		Name:      name,
		Kind:      KindMethod,
		Signature: "func " + paramsText(receiver, source) + " " + name + paramsText(params, source),
		Params:    goParams(params, source),
		Range:     nodeRange(n),
		Container: container,
		Doc:       precedingComment(n, source),
		Exported:  goExported(name),
	}, true
}

// goTypes expands a type declaration block into one symbol per type_spec,
// classifying struct/interface/alias by each spec node's type child.
func goTypes(n *sitter.Node, source []byte) []Symbol {
	var symbols []Symbol
	specs := findChildrenByKind(n, "type_spec")
	specs = append(specs, findChildrenByKind(n, "type_alias")...)

	for _, spec := range specs {
		nameNode := fieldChild(spec, "name")
		if nameNode == nil {
			continue
		}
		name := nodeText(nameNode, source)

		kind := KindType
		if typ := spec.ChildByFieldName("type"); typ != nil {
			switch typ.Kind() {
			case "struct_type":
				kind = KindStruct
			case "interface_type":
				kind = KindInterface
			}
		}
		symbols = append(symbols, Symbol{
			Name:      name,
			Kind:      kind,
			Signature: "type " + name,
			Range:     nodeRange(spec),
			Doc:       precedingComment(n, source),
			Exported:  goExported(name),
		})
	}
	return symbols
}

// goValues expands const/var blocks: a single spec may bind several names and
// every one gets a symbol.
func goValues(n *sitter.Node, source []byte) []Symbol {
	isConst := n.Kind() == "const_declaration"
	specKind := "var_spec"
	if isConst {
		specKind = "const_spec"
	}

	var specs []*sitter.Node
	walkTree(n, func(c *sitter.Node) bool {
		if c.Kind() == specKind {
			specs = append(specs, c)
			return false
		}
		return true
	})

	var symbols []Symbol
	for _, spec := range specs {
		for _, nameNode := range findChildrenByKind(spec, "identifier") {
			name := nodeText(nameNode, source)
			kind := KindVariable
			if isConst {
				kind = KindConstant
			}
			symbols = append(symbols, Symbol{
				Name:      name,
				Kind:      kind,
				Signature: firstLine(nodeText(spec, source)),
				Range:     nodeRange(nameNode),
				Mutable:   !isConst,
				Exported:  goExported(name),
			})
		}
	}
	return symbols
}

// goImports expands an import block into one symbol per import_spec. The
// local name is the explicit alias or the path's last element.
func goImports(n *sitter.Node, source []byte) []Symbol {
	var specs []*sitter.Node
	walkTree(n, func(c *sitter.Node) bool {
		if c.Kind() == "import_spec" {
			specs = append(specs, c)
			return false
		}
		return true
	})

	var symbols []Symbol
	for _, spec := range specs {
		pathNode := spec.ChildByFieldName("path")
		module := stripQuotes(nodeText(pathNode, source))
		local := path.Base(module)
		original := ""
		if alias := spec.ChildByFieldName("name"); alias != nil {
			local = nodeText(alias, source)
			original = path.Base(module)
		}
		symbols = append(symbols, Symbol{
			Name:         local,
			Kind:         KindImport,
			Signature:    "import \"" + module + "\"",
			Range:        nodeRange(spec),
			SourceModule: module,
			ImportedName: original,
		})
	}
	return symbols
}

// goParams extracts parameter names, flagging Go's trailing variadic.
func goParams(params *sitter.Node, source []byte) []Param {
	if params == nil {
		return nil
	}
	var result []Param
	for i := 0; i < int(params.ChildCount()); i++ {
		child := params.Child(uint(i))
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "parameter_declaration":
			for _, nameNode := range findChildrenByKind(child, "identifier") {
				result = append(result, Param{Name: nodeText(nameNode, source)})
			}
		case "variadic_parameter_declaration":
			if nameNode := findChildByKind(child, "identifier"); nameNode != nil {
				result = append(result, Param{Name: nodeText(nameNode, source), Variadic: true})
			}
		}
	}
	return result
}

// rustVisible reports whether an item carries a pub modifier.
func rustVisible(n *sitter.Node) bool {
	return hasChildOfKind(n, "visibility_modifier")
}

func rustFunction(n *sitter.Node, source []byte) (Symbol, bool) {
	nameNode := fieldChild(n, "name")
	if nameNode == nil {
		return Symbol{}, false
	}
	name := nodeText(nameNode, source)
	params := n.ChildByFieldName("parameters")
	container := enclosingTypeName(n, source)

	kind := KindFunction
	sig := "fn " + name + paramsText(params, source)
	if container != "" {
		kind = KindMethod
		sig = container + "::" + name + paramsText(params, source)
	}

	return Symbol{
		Name:      name,
		Kind:      kind,
		Signature: sig,
		Range:     nodeRange(n),
		Container: container,
		Doc:       precedingComment(n, source),
		Async:     hasChildOfKind(n, "async"),
		Exported:  rustVisible(n),
	}, true
}

func rustType(n *sitter.Node, source []byte, kind string) (Symbol, bool) {
	sym, ok := namedDecl(n, source, kind)
	if !ok {
		return Symbol{}, false
	}
	sym.Exported = rustVisible(n)
	return sym, true
}

func rustValue(n *sitter.Node, source []byte) (Symbol, bool) {
	nameNode := fieldChild(n, "name")
	if nameNode == nil {
		return Symbol{}, false
	}
	name := nodeText(nameNode, source)

	kind := KindConstant
	mutable := false
	if n.Kind() == "static_item" && hasChildOfKind(n, "mutable_specifier") {
		kind = KindVariable
		mutable = true
	}
	return Symbol{
		Name:      name,
		Kind:      kind,
		Signature: firstLine(nodeText(n, source)),
		Range:     nodeRange(n),
		Mutable:   mutable,
		Exported:  rustVisible(n),
	}, true
}

// rustUses flattens a use declaration into one symbol per bound name:
// plain paths, as-renames, and use lists all expand.
func rustUses(n *sitter.Node, source []byte) []Symbol {
	arg := n.ChildByFieldName("argument")
	if arg == nil {
		return nil
	}
	rng := nodeRange(n)

	var symbols []Symbol
	var expand func(node *sitter.Node, prefix string)
	expand = func(node *sitter.Node, prefix string) {
		if node == nil {
			return
		}
		switch node.Kind() {
		case "identifier", "type_identifier":
			full := joinPath(prefix, nodeText(node, source))
			symbols = append(symbols, Symbol{
				Name:         nodeText(node, source),
				Kind:         KindImport,
				Signature:    "use " + full,
				Range:        rng,
				SourceModule: full,
			})
		case "scoped_identifier":
			full := joinPath(prefix, nodeText(node, source))
			name := full
			if idx := strings.LastIndex(full, "::"); idx >= 0 {
				name = full[idx+2:]
			}
			symbols = append(symbols, Symbol{
				Name:         name,
				Kind:         KindImport,
				Signature:    "use " + full,
				Range:        rng,
				SourceModule: full,
			})
		case "use_as_clause":
			pathNode := node.ChildByFieldName("path")
			aliasNode := node.ChildByFieldName("alias")
			full := joinPath(prefix, nodeText(pathNode, source))
			original := full
			if idx := strings.LastIndex(full, "::"); idx >= 0 {
				original = full[idx+2:]
			}
			symbols = append(symbols, Symbol{
				Name:         nodeText(aliasNode, source),
				Kind:         KindImport,
				Signature:    "use " + full + " as " + nodeText(aliasNode, source),
				Range:        rng,
				SourceModule: full,
				ImportedName: original,
			})
		case "scoped_use_list":
			base := joinPath(prefix, nodeText(node.ChildByFieldName("path"), source))
			if list := node.ChildByFieldName("list"); list != nil {
				for i := 0; i < int(list.ChildCount()); i++ {
					if child := list.Child(uint(i)); child != nil && child.IsNamed() {
						expand(child, base)
					}
				}
			}
		case "use_list":
			for i := 0; i < int(node.ChildCount()); i++ {
				if child := node.Child(uint(i)); child != nil && child.IsNamed() {
					expand(child, prefix)
				}
			}
		case "use_wildcard":
			full := joinPath(prefix, strings.TrimSuffix(nodeText(node, source), "::*"))
			symbols = append(symbols, Symbol{
				Name:         "*",
				Kind:         KindImport,
				Signature:    "use " + full + "::*",
				Range:        rng,
				SourceModule: full,
				ImportedName: "*",
			})
		}
	}
	expand(arg, "")
	return symbols
}

func joinPath(prefix, rest string) string {
	if prefix == "" {
		return rest
	}
	return prefix + "::" + rest
}
