package extract

// Symbol kinds emitted by the extractors. These are shared across languages:
// a Python class and a TypeScript class both produce KindClass.
const (
	KindFunction  = "function"
	KindMethod    = "method"
	KindClass     = "class"
	KindInterface = "interface"
	KindStruct    = "struct"
	KindEnum      = "enum"
	KindTrait     = "trait"
	KindModule    = "module"
	KindType      = "type"
	KindVariable  = "variable"
	KindConstant  = "constant"
	KindImport    = "import"
	KindProperty  = "property"
)

// Position is a 0-based (line, character) pair into document text.
type Position struct {
	Line      int
	Character int
}

// Range is a half-open [Start, End) span of document text.
type Range struct {
	Start Position
	End   Position
}

// Param is one entry of a function's parameter list.
type Param struct {
	Name     string
	Default  bool // has a default value
	Rest     bool // JS rest / Python splat parameter
	Variadic bool // Go ... / C va_args style
}

// Symbol is one named program entity extracted from source. Symbols are not
// unique within a document: overloads and shadowed names each produce their
// own entry.
type Symbol struct {
	Name      string
	Kind      string
	Signature string // rendered declaration, e.g. "greet(name, greeting = 'hi')"
	Params    []Param
	Range     Range  // doc-relative span of the declaring node
	Container string // enclosing class/module name, if any
	Doc       string // first line of an adjacent doc comment or docstring

	// Modifier flags.
	Exported  bool
	Static    bool
	Async     bool
	Mutable   bool
	Generator bool

	// Cross-reference fields, populated for import symbols.
	SourceModule string // unquoted module/path string of the import
	ImportedName string // original name when the local binding is an alias
}
