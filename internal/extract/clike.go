package extract

import (
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// extractCLike handles the curly-brace family: javascript, typescript, tsx,
// java, c and cpp. Node kinds are distinct across these grammars, so one
// switch serves all of them.
func extractCLike(root *sitter.Node, source []byte) []Symbol {
	var symbols []Symbol

	walkTree(root, func(n *sitter.Node) bool {
		switch n.Kind() {
		// javascript / typescript
		case "function_declaration", "generator_function_declaration":
			if sym, ok := jsFunction(n, source); ok {
				symbols = append(symbols, sym)
			}
		case "method_definition":
			if sym, ok := jsMethod(n, source); ok {
				symbols = append(symbols, sym)
			}
		case "class_declaration", "abstract_class_declaration":
			if sym, ok := namedDecl(n, source, KindClass); ok {
				sym.Exported = isExportedJS(n) || isPublicJava(n)
				symbols = append(symbols, sym)
			}
		case "interface_declaration":
			if sym, ok := namedDecl(n, source, KindInterface); ok {
				sym.Exported = isExportedJS(n) || isPublicJava(n)
				symbols = append(symbols, sym)
			}
		case "type_alias_declaration":
			if sym, ok := namedDecl(n, source, KindType); ok {
				sym.Exported = isExportedJS(n)
				symbols = append(symbols, sym)
			}
		case "enum_declaration":
			if sym, ok := namedDecl(n, source, KindEnum); ok {
				sym.Exported = isExportedJS(n) || isPublicJava(n)
				symbols = append(symbols, sym)
			}
		case "lexical_declaration", "variable_declaration":
			symbols = append(symbols, jsVariables(n, source)...)
		case "public_field_definition", "field_definition":
			if sym, ok := namedDecl(n, source, KindProperty); ok {
				sym.Container = enclosingTypeName(n, source)
				sym.Static = hasChildOfKind(n, "static")
				symbols = append(symbols, sym)
			}
		case "import_statement":
			symbols = append(symbols, jsImports(n, source)...)

		// java
		case "method_declaration":
			if sym, ok := javaMethod(n, source); ok {
				symbols = append(symbols, sym)
			}
		case "field_declaration":
			symbols = append(symbols, javaFields(n, source)...)
		case "import_declaration":
			if sym, ok := javaImport(n, source); ok {
				symbols = append(symbols, sym)
			}

		// c / cpp
		case "function_definition":
			if sym, ok := cFunction(n, source); ok {
				symbols = append(symbols, sym)
			}
		case "struct_specifier", "class_specifier", "union_specifier":
			if sym, ok := cTypeSpecifier(n, source, KindStruct); ok {
				if n.Kind() == "class_specifier" {
					sym.Kind = KindClass
				}
				symbols = append(symbols, sym)
			}
		case "enum_specifier":
			if sym, ok := cTypeSpecifier(n, source, KindEnum); ok {
				symbols = append(symbols, sym)
			}
		case "type_definition":
			if sym, ok := cTypedef(n, source); ok {
				symbols = append(symbols, sym)
			}
		case "preproc_include":
			if sym, ok := cInclude(n, source); ok {
				symbols = append(symbols, sym)
			}
		case "declaration":
			symbols = append(symbols, cVariables(n, source)...)
		}
		return true
	})

	return symbols
}

// isExportedJS reports whether the declaration is wrapped by an export
// statement. The wrapper re-tags the inner declaration; it never yields its
// own symbol.
func isExportedJS(n *sitter.Node) bool {
	parent := n.Parent()
	return parent != nil && parent.Kind() == "export_statement"
}

// isPublicJava checks the java modifiers child for "public".
func isPublicJava(n *sitter.Node) bool {
	mods := findChildByKind(n, "modifiers")
	if mods == nil {
		return false
	}
	return hasChildOfKind(mods, "public")
}

// enclosingTypeName finds the nearest ancestor class/interface/impl name, used
// as the container for methods and properties.
func enclosingTypeName(n *sitter.Node, source []byte) string {
	for parent := n.Parent(); parent != nil; parent = parent.Parent() {
		switch parent.Kind() {
		case "class_declaration", "abstract_class_declaration", "class_definition",
			"interface_declaration", "class_specifier", "struct_specifier",
			"enum_declaration", "trait_declaration", "class", "module":
			if name := fieldChild(parent, "name"); name != nil {
				return nodeText(name, source)
			}
		case "impl_item":
			if typ := parent.ChildByFieldName("type"); typ != nil {
				return nodeText(typ, source)
			}
		}
	}
	return ""
}

// namedDecl builds a symbol for a declaration whose only interesting parts are
// name and range. Returns ok=false when the name cannot be resolved, which the
// walk treats as "no symbol for this node" rather than an error.
func namedDecl(n *sitter.Node, source []byte, kind string) (Symbol, bool) {
	nameNode := fieldChild(n, "name")
	if nameNode == nil {
		return Symbol{}, false
	}
	name := nodeText(nameNode, source)
	if name == "" {
		return Symbol{}, false
	}
	return Symbol{
		Name:      name,
		Kind:      kind,
		Signature: kind + " " + name,
		Range:     nodeRange(n),
		Doc:       precedingComment(n, source),
	}, true
}

func jsFunction(n *sitter.Node, source []byte) (Symbol, bool) {
	nameNode := fieldChild(n, "name")
	if nameNode == nil {
		return Symbol{}, false
	}
	name := nodeText(nameNode, source)
	params := fieldChild(n, "parameters")

	sym := Symbol{
		Name:      name,
		Kind:      KindFunction,
		Signature: name + paramsText(params, source),
		Params:    jsParams(params, source),
		Range:     nodeRange(n),
		Doc:       precedingComment(n, source),
		Async:     hasChildOfKind(n, "async"),
		Generator: n.Kind() == "generator_function_declaration" || hasChildOfKind(n, "*"),
		Exported:  isExportedJS(n),
	}
	return sym, true
}

func jsMethod(n *sitter.Node, source []byte) (Symbol, bool) {
	nameNode := fieldChild(n, "name")
	if nameNode == nil {
		return Symbol{}, false
	}
	name := nodeText(nameNode, source)
	params := fieldChild(n, "parameters")
	container := enclosingTypeName(n, source)

	sig := name + paramsText(params, source)
	if container != "" {
		sig = container + "." + sig
	}

	return Symbol{
		Name:      name,
		Kind:      KindMethod,
		Signature: sig,
		Params:    jsParams(params, source),
		Range:     nodeRange(n),
		Container: container,
		Doc:       precedingComment(n, source),
		Static:    hasChildOfKind(n, "static"),
		Async:     hasChildOfKind(n, "async"),
		Generator: hasChildOfKind(n, "*"),
	}, true
}

// jsVariables emits one symbol per declarator. A declarator whose value is a
// function or arrow function is reported as a function, matching how such
// bindings are used.
func jsVariables(n *sitter.Node, source []byte) []Symbol {
	var symbols []Symbol
	isConst := hasChildOfKind(n, "const")
	exported := isExportedJS(n)

	for _, decl := range findChildrenByKind(n, "variable_declarator") {
		nameNode := fieldChild(decl, "name")
		if nameNode == nil {
			continue
		}
		name := nodeText(nameNode, source)
		value := decl.ChildByFieldName("value")

		if value != nil && (value.Kind() == "arrow_function" || value.Kind() == "function_expression" ||
			value.Kind() == "function" || value.Kind() == "generator_function") {
			params := fieldChild(value, "parameters")
			symbols = append(symbols, Symbol{
				Name:      name,
				Kind:      KindFunction,
				Signature: name + paramsText(params, source),
				Params:    jsParams(params, source),
				Range:     nodeRange(decl),
				Doc:       precedingComment(n, source),
				Async:     hasChildOfKind(value, "async"),
				Generator: value.Kind() == "generator_function",
				Exported:  exported,
			})
			continue
		}

		kind := KindVariable
		if isConst {
			kind = KindConstant
		}
		symbols = append(symbols, Symbol{
			Name:      name,
			Kind:      kind,
			Signature: nodeText(decl, source),
			Range:     nodeRange(decl),
			Mutable:   !isConst,
			Exported:  exported,
		})
	}
	return symbols
}

// jsImports expands an import statement into one symbol per imported binding:
// default imports, named imports (with aliases), and namespace imports.
func jsImports(n *sitter.Node, source []byte) []Symbol {
	sourceNode := n.ChildByFieldName("source")
	module := stripQuotes(nodeText(sourceNode, source))
	rng := nodeRange(n)

	importSym := func(local, original string) Symbol {
		return Symbol{
			Name:         local,
			Kind:         KindImport,
			Signature:    "import " + local + " from '" + module + "'",
			Range:        rng,
			SourceModule: module,
			ImportedName: original,
		}
	}

	var symbols []Symbol
	clause := findChildByKind(n, "import_clause")
	if clause == nil {
		// Bare `import './side-effect'`.
		if module != "" {
			base := strings.TrimSuffix(filepath.Base(module), filepath.Ext(module))
			symbols = append(symbols, importSym(base, ""))
		}
		return symbols
	}

	walkTree(clause, func(c *sitter.Node) bool {
		switch c.Kind() {
		case "identifier":
			// Default import: `import foo from 'mod'`.
			if c.Parent() != nil && c.Parent().Kind() == "import_clause" {
				symbols = append(symbols, importSym(nodeText(c, source), ""))
			}
			return true
		case "namespace_import":
			if name := findChildByKind(c, "identifier"); name != nil {
				symbols = append(symbols, importSym(nodeText(name, source), "*"))
			}
			return false
		case "import_specifier":
			nameNode := c.ChildByFieldName("name")
			aliasNode := c.ChildByFieldName("alias")
			original := nodeText(nameNode, source)
			local := original
			if aliasNode != nil {
				local = nodeText(aliasNode, source)
			} else {
				original = ""
			}
			symbols = append(symbols, importSym(local, original))
			return false
		}
		return true
	})
	return symbols
}

func javaMethod(n *sitter.Node, source []byte) (Symbol, bool) {
	nameNode := fieldChild(n, "name")
	if nameNode == nil {
		return Symbol{}, false
	}
	name := nodeText(nameNode, source)
	params := fieldChild(n, "parameters")
	container := enclosingTypeName(n, source)

	sig := name + paramsText(params, source)
	if container != "" {
		sig = container + "." + sig
	}

	mods := findChildByKind(n, "modifiers")
	return Symbol{
		Name:      name,
		Kind:      KindMethod,
		Signature: sig,
		Params:    jsParams(params, source),
		Range:     nodeRange(n),
		Container: container,
		Doc:       precedingComment(n, source),
		Static:    mods != nil && hasChildOfKind(mods, "static"),
		Exported:  isPublicJava(n),
	}, true
}

func javaFields(n *sitter.Node, source []byte) []Symbol {
	var symbols []Symbol
	container := enclosingTypeName(n, source)
	mods := findChildByKind(n, "modifiers")
	isFinal := mods != nil && hasChildOfKind(mods, "final")

	for _, decl := range findChildrenByKind(n, "variable_declarator") {
		nameNode := fieldChild(decl, "name")
		if nameNode == nil {
			continue
		}
		kind := KindVariable
		if isFinal {
			kind = KindConstant
		}
		symbols = append(symbols, Symbol{
			Name:      nodeText(nameNode, source),
			Kind:      kind,
			Signature: nodeText(n, source),
			Range:     nodeRange(decl),
			Container: container,
			Static:    mods != nil && hasChildOfKind(mods, "static"),
			Mutable:   !isFinal,
			Exported:  isPublicJava(n),
		})
	}
	return symbols
}

func javaImport(n *sitter.Node, source []byte) (Symbol, bool) {
	path := findChildByKind(n, "scoped_identifier")
	if path == nil {
		path = findChildByKind(n, "identifier")
	}
	if path == nil {
		return Symbol{}, false
	}
	full := nodeText(path, source)
	local := full
	if idx := strings.LastIndexByte(full, '.'); idx >= 0 {
		local = full[idx+1:]
	}
	return Symbol{
		Name:         local,
		Kind:         KindImport,
		Signature:    "import " + full,
		Range:        nodeRange(n),
		SourceModule: full,
		Static:       hasChildOfKind(n, "static"),
	}, true
}

// cFunction digs through nested declarators to the function name. C grammars
// wrap the name arbitrarily deep (pointers, parenthesized declarators), so
// this descends the declarator chain until an identifier-shaped node appears.
func cFunction(n *sitter.Node, source []byte) (Symbol, bool) {
	decl := n.ChildByFieldName("declarator")
	var fnDecl *sitter.Node
	for decl != nil {
		if decl.Kind() == "function_declarator" {
			fnDecl = decl
		}
		next := decl.ChildByFieldName("declarator")
		if next == nil {
			break
		}
		decl = next
	}
	if decl == nil {
		return Symbol{}, false
	}

	kind := decl.Kind()
	if kind != "identifier" && kind != "field_identifier" && kind != "qualified_identifier" && kind != "destructor_name" {
		return Symbol{}, false
	}
	name := nodeText(decl, source)

	var params *sitter.Node
	if fnDecl != nil {
		params = fnDecl.ChildByFieldName("parameters")
	}

	container := ""
	if idx := strings.LastIndex(name, "::"); idx >= 0 {
		container = name[:idx]
		name = name[idx+2:]
	} else {
		container = enclosingTypeName(n, source)
	}

	symKind := KindFunction
	if container != "" {
		symKind = KindMethod
	}
	return Symbol{
		Name:      name,
		Kind:      symKind,
		Signature: name + paramsText(params, source),
		Params:    cParams(params, source),
		Range:     nodeRange(n),
		Container: container,
		Doc:       precedingComment(n, source),
		Static:    hasChildOfKind(n, "storage_class_specifier") && strings.Contains(nodeText(findChildByKind(n, "storage_class_specifier"), source), "static"),
	}, true
}

// cTypeSpecifier extracts struct/class/enum/union declarations. Bodyless
// specifiers are type references (`struct Foo x;`), not declarations, and are
// skipped.
func cTypeSpecifier(n *sitter.Node, source []byte, kind string) (Symbol, bool) {
	if n.ChildByFieldName("body") == nil {
		return Symbol{}, false
	}
	nameNode := fieldChild(n, "name")
	if nameNode == nil {
		return Symbol{}, false
	}
	name := nodeText(nameNode, source)
	return Symbol{
		Name:      name,
		Kind:      kind,
		Signature: n.Kind()[:strings.IndexByte(n.Kind(), '_')] + " " + name,
		Range:     nodeRange(n),
		Doc:       precedingComment(n, source),
	}, true
}

func cTypedef(n *sitter.Node, source []byte) (Symbol, bool) {
	decl := n.ChildByFieldName("declarator")
	for decl != nil && decl.Kind() != "type_identifier" {
		decl = decl.ChildByFieldName("declarator")
	}
	if decl == nil {
		return Symbol{}, false
	}
	name := nodeText(decl, source)
	return Symbol{
		Name:      name,
		Kind:      KindType,
		Signature: "typedef " + name,
		Range:     nodeRange(n),
	}, true
}

func cInclude(n *sitter.Node, source []byte) (Symbol, bool) {
	path := n.ChildByFieldName("path")
	if path == nil {
		path = findChildByKind(n, "string_literal")
	}
	if path == nil {
		path = findChildByKind(n, "system_lib_string")
	}
	if path == nil {
		return Symbol{}, false
	}
	module := stripQuotes(nodeText(path, source))
	base := strings.TrimSuffix(filepath.Base(module), filepath.Ext(module))
	return Symbol{
		Name:         base,
		Kind:         KindImport,
		Signature:    "#include " + module,
		Range:        nodeRange(n),
		SourceModule: module,
	}, true
}

// cVariables extracts file-scope variable declarations. Function-local
// declarations are skipped to keep tables focused on navigable entities.
func cVariables(n *sitter.Node, source []byte) []Symbol {
	parent := n.Parent()
	if parent == nil || parent.Kind() != "translation_unit" {
		return nil
	}

	var symbols []Symbol
	for _, decl := range findChildrenByKind(n, "init_declarator") {
		nameNode := decl.ChildByFieldName("declarator")
		for nameNode != nil && nameNode.Kind() != "identifier" {
			nameNode = nameNode.ChildByFieldName("declarator")
		}
		if nameNode == nil {
			continue
		}
		symbols = append(symbols, Symbol{
			Name:      nodeText(nameNode, source),
			Kind:      KindVariable,
			Signature: nodeText(n, source),
			Range:     nodeRange(decl),
			Mutable:   true,
		})
	}
	return symbols
}

// paramsText renders a parameter list node, defaulting to "()".
func paramsText(params *sitter.Node, source []byte) string {
	if params == nil {
		return "()"
	}
	return nodeText(params, source)
}

// jsParams parses a formal_parameters list into Param records with
// default/rest flags. Also serves java, whose formal_parameters children are
// plain enough for the same shape.
func jsParams(params *sitter.Node, source []byte) []Param {
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
		case "assignment_pattern", "optional_parameter":
			if name := fieldChild(child, "left"); name != nil {
				result = append(result, Param{Name: nodeText(name, source), Default: true})
			} else if name := findChildByKind(child, "identifier"); name != nil {
				result = append(result, Param{Name: nodeText(name, source), Default: true})
			}
		case "rest_pattern":
			if name := findChildByKind(child, "identifier"); name != nil {
				result = append(result, Param{Name: nodeText(name, source), Rest: true})
			}
		case "required_parameter", "formal_parameter", "parameter_declaration":
			if name := fieldChild(child, "name"); name != nil {
				result = append(result, Param{Name: nodeText(name, source)})
			} else if name := findChildByKind(child, "identifier"); name != nil {
				result = append(result, Param{Name: nodeText(name, source)})
			}
		case "spread_parameter":
			if name := findChildByKind(child, "identifier"); name != nil {
				result = append(result, Param{Name: nodeText(name, source), Variadic: true})
			}
		}
	}
	return result
}

// cParams extracts parameter names from a C parameter_list.
func cParams(params *sitter.Node, source []byte) []Param {
	if params == nil {
		return nil
	}
	var result []Param
	for _, decl := range findChildrenByKind(params, "parameter_declaration") {
		nameNode := decl.ChildByFieldName("declarator")
		for nameNode != nil && nameNode.Kind() != "identifier" {
			nameNode = nameNode.ChildByFieldName("declarator")
		}
		if nameNode != nil {
			result = append(result, Param{Name: nodeText(nameNode, source)})
		}
	}
	if findChildByKind(params, "variadic_parameter") != nil {
		result = append(result, Param{Name: "...", Variadic: true})
	}
	return result
}
