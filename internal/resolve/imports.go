package resolve

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/wayfind/internal/extract"
	"github.com/mvp-joe/wayfind/internal/grammar"
)

// indexFileNames are the per-language index-file conventions probed when an
// import resolves to a directory.
var indexFileNames = map[string][]string{
	"javascript": {"index.js", "index.jsx", "index.mjs"},
	"typescript": {"index.ts", "index.tsx", "index.js", "index.d.ts"},
	"tsx":        {"index.tsx", "index.ts", "index.js"},
	"python":     {"__init__.py"},
	"php":        {"index.php"},
}

// dependencyDirs are per-language guesses for where external modules live
// under the project root.
var dependencyDirs = map[string][]string{
	"javascript": {"node_modules"},
	"typescript": {"node_modules"},
	"tsx":        {"node_modules"},
	"ruby":       {"vendor/bundle"},
	"php":        {"vendor"},
	"go":         {"vendor"},
}

// definitionViaImport is strategy 4: if the word is an imported local name in
// the query document, resolve its source module to a file and return a
// zero-position location there when the file exists on disk.
func (r *Resolver) definitionViaImport(q *query) *Location {
	symbols, err := r.store.DocumentSymbols(q.uri)
	if err != nil {
		return nil
	}

	for _, sym := range symbols {
		if sym.Kind != extract.KindImport || sym.Name != q.word || sym.SourceModule == "" {
			continue
		}
		if path := r.resolveModulePath(sym.SourceModule, q); path != "" {
			return &Location{URI: pathToURI(path)}
		}
	}
	return nil
}

// resolveModulePath turns an import's module string into an on-disk path:
// relative to the importing file first, then project-root-relative, then a
// dependency-directory guess. Each base is probed with the language's
// extension and index-file conventions. Returns "" when nothing exists.
func (r *Resolver) resolveModulePath(module string, q *query) string {
	fromDir := filepath.Dir(uriToPath(q.uri))
	relative := strings.HasPrefix(module, "./") || strings.HasPrefix(module, "../")

	// Python spells paths with dots.
	probe := module
	if q.language == "python" {
		probe = strings.ReplaceAll(strings.TrimLeft(module, "."), ".", string(filepath.Separator))
	}

	var bases []string
	if relative || q.language == "python" || q.language == "c" || q.language == "cpp" {
		bases = append(bases, filepath.Join(fromDir, probe))
	}
	if !relative {
		if root := projectRoot(uriToPath(q.uri)); root != "" {
			bases = append(bases, filepath.Join(root, probe))
			for _, dep := range dependencyDirs[q.language] {
				bases = append(bases, filepath.Join(root, dep, probe))
			}
		}
	}

	for _, base := range bases {
		if path := probeFile(base, q.language); path != "" {
			return path
		}
	}
	return ""
}

// probeFile checks a base path as-is, with each language extension appended,
// and as a directory holding an index file.
func probeFile(base, language string) string {
	if info, err := os.Stat(base); err == nil && !info.IsDir() {
		return base
	}

	for _, ext := range grammar.ExtensionsForLanguage(language) {
		candidate := base + ext
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}

	if info, err := os.Stat(base); err == nil && info.IsDir() {
		for _, index := range indexFileNames[language] {
			candidate := filepath.Join(base, index)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}
