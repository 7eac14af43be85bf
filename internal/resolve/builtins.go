package resolve

import "sort"

// builtins is the static per-language table of well-known identifiers. A hit
// produces a symbolic location under the "builtin:" scheme rather than a file
// position, which the handlers above this engine render as non-navigable
// documentation.
var builtins = map[string]map[string]bool{
	"javascript": {
		"console": true, "require": true, "module": true, "exports": true,
		"setTimeout": true, "setInterval": true, "clearTimeout": true,
		"clearInterval": true, "Promise": true, "JSON": true, "Math": true,
		"Object": true, "Array": true, "String": true, "Number": true,
		"Boolean": true, "Error": true, "Map": true, "Set": true,
		"fetch": true, "parseInt": true, "parseFloat": true,
	},
	"python": {
		"print": true, "len": true, "range": true, "open": true, "input": true,
		"int": true, "str": true, "float": true, "bool": true, "list": true,
		"dict": true, "set": true, "tuple": true, "type": true, "super": true,
		"isinstance": true, "enumerate": true, "zip": true, "map": true,
		"filter": true, "sorted": true, "sum": true, "min": true, "max": true,
	},
	"go": {
		"make": true, "new": true, "len": true, "cap": true, "append": true,
		"copy": true, "delete": true, "panic": true, "recover": true,
		"print": true, "println": true, "close": true,
	},
	"ruby": {
		"puts": true, "print": true, "require": true, "require_relative": true,
		"attr_accessor": true, "attr_reader": true, "attr_writer": true,
		"lambda": true, "proc": true, "raise": true,
	},
	"rust": {
		"println": true, "print": true, "vec": true, "format": true,
		"panic": true, "assert": true, "Some": true, "None": true,
		"Ok": true, "Err": true, "String": true, "Vec": true, "Box": true,
	},
	"php": {
		"echo": true, "print": true, "isset": true, "unset": true,
		"array": true, "count": true, "strlen": true, "implode": true,
		"explode": true, "require": true, "include": true,
	},
	"c": {
		"printf": true, "scanf": true, "malloc": true, "calloc": true,
		"realloc": true, "free": true, "memcpy": true, "memset": true,
		"strlen": true, "strcmp": true, "fopen": true, "fclose": true,
	},
	"java": {
		"System": true, "String": true, "Integer": true, "Object": true,
		"Math": true, "List": true, "Map": true, "Set": true,
	},
}

// builtinAliases fold grammar variants onto one table.
var builtinAliases = map[string]string{
	"typescript": "javascript",
	"tsx":        "javascript",
	"cpp":        "c",
}

// BuiltinNames returns the builtin identifiers for a language, sorted, after
// alias folding. Empty for languages without a table.
func BuiltinNames(language string) []string {
	table := language
	if alias, ok := builtinAliases[language]; ok {
		table = alias
	}
	names := make([]string, 0, len(builtins[table]))
	for name := range builtins[table] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// builtinLocation returns the symbolic location for a builtin identifier, or
// nil when the word is not in the language's table.
func builtinLocation(language, word string) *Location {
	table := language
	if alias, ok := builtinAliases[language]; ok {
		table = alias
	}
	if builtins[table][word] {
		return &Location{URI: "builtin:" + table + "/" + word}
	}
	return nil
}
