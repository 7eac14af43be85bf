package extract

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// extractScript handles python and ruby. Both are indentation/keyword-block
// grammars with def/class declarations and untyped assignments.
func extractScript(root *sitter.Node, source []byte) []Symbol {
	var symbols []Symbol

	walkTree(root, func(n *sitter.Node) bool {
		switch n.Kind() {
		// python
		case "function_definition":
			if sym, ok := pyFunction(n, source); ok {
				symbols = append(symbols, sym)
			}
		case "class_definition":
			if sym, ok := pyClass(n, source); ok {
				symbols = append(symbols, sym)
			}
		case "assignment":
			if sym, ok := pyAssignment(n, source); ok {
				symbols = append(symbols, sym)
			}
			// Don't descend: chained assignments repeat the same node shape.
			return false
		case "import_statement":
			symbols = append(symbols, pyImports(n, source)...)
		case "import_from_statement":
			symbols = append(symbols, pyFromImports(n, source)...)

		// ruby
		case "method", "singleton_method":
			if sym, ok := rubyMethod(n, source); ok {
				symbols = append(symbols, sym)
			}
		case "class":
			if sym, ok := namedDecl(n, source, KindClass); ok {
				symbols = append(symbols, sym)
			}
		case "module":
			if sym, ok := namedDecl(n, source, KindModule); ok {
				symbols = append(symbols, sym)
			}
		}
		return true
	})

	return symbols
}

// isConstantName follows the scripting convention that ALL_CAPS names are
// constants.
func isConstantName(name string) bool {
	if name == "" {
		return false
	}
	hasLetter := false
	for _, r := range name {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

func pyFunction(n *sitter.Node, source []byte) (Symbol, bool) {
	nameNode := fieldChild(n, "name")
	if nameNode == nil {
		return Symbol{}, false
	}
	name := nodeText(nameNode, source)
	params := fieldChild(n, "parameters")
	container := enclosingTypeName(n, source)

	kind := KindFunction
	sig := name + paramsText(params, source)
	if container != "" {
		kind = KindMethod
		sig = container + "." + sig
	}
	if ret := n.ChildByFieldName("return_type"); ret != nil {
		sig += " -> " + nodeText(ret, source)
	}

	return Symbol{
		Name:      name,
		Kind:      kind,
		Signature: sig,
		Params:    pyParams(params, source),
		Range:     nodeRange(n),
		Container: container,
		Doc:       pyDocstring(n, source),
		Async:     hasChildOfKind(n, "async"),
		Static:    pyHasDecorator(n, source, "staticmethod"),
	}, true
}

func pyClass(n *sitter.Node, source []byte) (Symbol, bool) {
	sym, ok := namedDecl(n, source, KindClass)
	if !ok {
		return Symbol{}, false
	}
	if doc := pyDocstring(n, source); doc != "" {
		sym.Doc = doc
	}
	return sym, true
}

// pyAssignment extracts the bound name of a module or class level assignment.
// Multi-target assignments fall back to the first identifier child, an
// accepted imprecision of the field heuristics.
func pyAssignment(n *sitter.Node, source []byte) (Symbol, bool) {
	left := fieldChild(n, "left")
	if left == nil || left.Kind() != "identifier" {
		return Symbol{}, false
	}
	name := nodeText(left, source)

	kind := KindVariable
	if isConstantName(name) {
		kind = KindConstant
	}
	return Symbol{
		Name:      name,
		Kind:      kind,
		Signature: firstLine(nodeText(n, source)),
		Range:     nodeRange(n),
		Container: enclosingTypeName(n, source),
		Mutable:   kind == KindVariable,
	}, true
}

// pyImports expands `import a.b, c as d` into one symbol per module.
func pyImports(n *sitter.Node, source []byte) []Symbol {
	var symbols []Symbol
	rng := nodeRange(n)

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(uint(i))
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "dotted_name":
			module := nodeText(child, source)
			local := module
			if idx := strings.IndexByte(module, '.'); idx >= 0 {
				local = module[:idx]
			}
			symbols = append(symbols, Symbol{
				Name:         local,
				Kind:         KindImport,
				Signature:    "import " + module,
				Range:        rng,
				SourceModule: module,
			})
		case "aliased_import":
			nameNode := child.ChildByFieldName("name")
			aliasNode := child.ChildByFieldName("alias")
			module := nodeText(nameNode, source)
			local := nodeText(aliasNode, source)
			symbols = append(symbols, Symbol{
				Name:         local,
				Kind:         KindImport,
				Signature:    "import " + module + " as " + local,
				Range:        rng,
				SourceModule: module,
				ImportedName: module,
			})
		}
	}
	return symbols
}

// pyFromImports expands `from mod import a, b as c` into one symbol per
// imported name, all tagged with the source module.
func pyFromImports(n *sitter.Node, source []byte) []Symbol {
	moduleNode := n.ChildByFieldName("module_name")
	module := nodeText(moduleNode, source)
	rng := nodeRange(n)

	var symbols []Symbol
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(uint(i))
		if child == nil || child == moduleNode {
			continue
		}
		switch child.Kind() {
		case "dotted_name":
			name := nodeText(child, source)
			symbols = append(symbols, Symbol{
				Name:         name,
				Kind:         KindImport,
				Signature:    "from " + module + " import " + name,
				Range:        rng,
				SourceModule: module,
			})
		case "aliased_import":
			nameNode := child.ChildByFieldName("name")
			aliasNode := child.ChildByFieldName("alias")
			original := nodeText(nameNode, source)
			local := nodeText(aliasNode, source)
			symbols = append(symbols, Symbol{
				Name:         local,
				Kind:         KindImport,
				Signature:    "from " + module + " import " + original + " as " + local,
				Range:        rng,
				SourceModule: module,
				ImportedName: original,
			})
		case "wildcard_import":
			symbols = append(symbols, Symbol{
				Name:         "*",
				Kind:         KindImport,
				Signature:    "from " + module + " import *",
				Range:        rng,
				SourceModule: module,
				ImportedName: "*",
			})
		}
	}
	return symbols
}

// pyDocstring returns the first line of a def/class body docstring.
func pyDocstring(n *sitter.Node, source []byte) string {
	body := n.ChildByFieldName("body")
	if body == nil || body.ChildCount() == 0 {
		return ""
	}
	first := body.Child(0)
	if first == nil || first.Kind() != "expression_statement" {
		return ""
	}
	str := findChildByKind(first, "string")
	if str == nil {
		return ""
	}
	text := nodeText(str, source)
	text = strings.Trim(text, "\"'")
	return strings.TrimSpace(firstLine(text))
}

// pyHasDecorator checks whether a decorated definition carries @name.
func pyHasDecorator(n *sitter.Node, source []byte, name string) bool {
	parent := n.Parent()
	if parent == nil || parent.Kind() != "decorated_definition" {
		return false
	}
	for _, dec := range findChildrenByKind(parent, "decorator") {
		if strings.Contains(nodeText(dec, source), name) {
			return true
		}
	}
	return false
}

// pyParams parses a python parameter list, flagging defaults and splats.
func pyParams(params *sitter.Node, source []byte) []Param {
	if params == nil {
		return nil
	}
	var result []Param
	for i := 0; i < int(params.ChildCount()); i++ {
		child := params.Child(uint(i))
		if child == nil || !child.IsNamed() {
			continue
		}
		switch child.Kind() {
		case "identifier":
			result = append(result, Param{Name: nodeText(child, source)})
		case "typed_parameter":
			if name := findChildByKind(child, "identifier"); name != nil {
				result = append(result, Param{Name: nodeText(name, source)})
			}
		case "default_parameter", "typed_default_parameter":
			if name := fieldChild(child, "name"); name != nil {
				result = append(result, Param{Name: nodeText(name, source), Default: true})
			}
		case "list_splat_pattern", "dictionary_splat_pattern":
			if name := findChildByKind(child, "identifier"); name != nil {
				result = append(result, Param{Name: nodeText(name, source), Rest: true})
			}
		}
	}
	return result
}

func rubyMethod(n *sitter.Node, source []byte) (Symbol, bool) {
	nameNode := fieldChild(n, "name")
	if nameNode == nil {
		return Symbol{}, false
	}
	name := nodeText(nameNode, source)
	params := n.ChildByFieldName("parameters")
	container := enclosingTypeName(n, source)

	kind := KindFunction
	if container != "" {
		kind = KindMethod
	}
	return Symbol{
		Name:      name,
		Kind:      kind,
		Signature: name + paramsText(params, source),
		Range:     nodeRange(n),
		Container: container,
		Doc:       precedingComment(n, source),
		Static:    n.Kind() == "singleton_method",
	}, true
}

// firstLine truncates multi-line text at the first newline.
func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
