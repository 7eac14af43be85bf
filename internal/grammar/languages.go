package grammar

import (
	"path/filepath"
	"strings"
)

// extensions maps file extensions to canonical language ids. The table
// mirrors the editor's mapping so both sides agree on what "typescript" means.
var extensions = map[string]string{
	".js":   "javascript",
	".jsx":  "javascript",
	".mjs":  "javascript",
	".cjs":  "javascript",
	".ts":   "typescript",
	".tsx":  "tsx",
	".py":   "python",
	".pyw":  "python",
	".c":    "c",
	".h":    "c",
	".cpp":  "cpp",
	".cc":   "cpp",
	".cxx":  "cpp",
	".hpp":  "cpp",
	".hxx":  "cpp",
	".go":   "go",
	".java": "java",
	".rb":   "ruby",
	".rs":   "rust",
	".php":  "php",
}

// fallbacks maps unsupported language ids to a structurally similar supported
// one. Extraction through a fallback is best-effort: a CoffeeScript file run
// through the javascript extractor will miss or mangle symbols, and callers
// must treat the output as approximate.
var fallbacks = map[string]string{
	"javascriptreact": "javascript",
	"typescriptreact": "tsx",
	"coffeescript":    "javascript",
	"vue":             "javascript",
	"svelte":          "javascript",
	"perl":            "python",
	"lua":             "python",
	"r":               "python",
	"crystal":         "ruby",
	"kotlin":          "java",
	"scala":           "java",
	"csharp":          "java",
	"objective-c":     "c",
	"objective-cpp":   "cpp",
	"zig":             "rust",
	"hack":            "php",
}

// LanguageForFile maps a filename to a canonical language id by extension.
// Unknown extensions yield "plaintext", the editor's convention for files it
// does not highlight.
func LanguageForFile(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if lang, ok := extensions[ext]; ok {
		return lang
	}
	return "plaintext"
}

// Fallback maps an unsupported language id to a similar supported one, or ""
// when nothing plausible exists.
func Fallback(languageID string) string {
	return fallbacks[languageID]
}

// RegisterFallback adds or overrides a fallback mapping. Call during startup,
// before requests flow; the table is not guarded after that.
func RegisterFallback(from, to string) {
	fallbacks[from] = to
}

// ExtensionsForLanguage returns the extensions that map to a language id, in
// probe order. Used by import resolution to guess file names from module
// strings.
func ExtensionsForLanguage(languageID string) []string {
	switch languageID {
	case "javascript":
		return []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx"}
	case "typescript", "tsx":
		return []string{".ts", ".tsx", ".js", ".jsx", ".d.ts"}
	case "python":
		return []string{".py", ".pyw"}
	case "c":
		return []string{".h", ".c"}
	case "cpp":
		return []string{".hpp", ".h", ".cpp", ".cc"}
	case "go":
		return []string{".go"}
	case "java":
		return []string{".java"}
	case "ruby":
		return []string{".rb"}
	case "rust":
		return []string{".rs"}
	case "php":
		return []string{".php"}
	default:
		return nil
	}
}
