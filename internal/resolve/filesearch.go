package resolve

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gobwas/glob"
	"github.com/maypok86/otter"

	"github.com/mvp-joe/wayfind/internal/extract"
)

// rootMarkers identify a project root when walking parent directories.
var rootMarkers = []string{
	".git", "go.mod", "package.json", "Cargo.toml", "pyproject.toml",
	"setup.py", "composer.json", "Gemfile", "pom.xml", "Makefile",
}

// declarationPatterns are the per-language declaration shapes tried, in
// order, against a candidate file. %s is the quoted word. The first pattern
// to match anywhere in the file decides the result.
var declarationPatterns = []string{
	`(?m)^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*%s\s*\(`, // javascript/typescript
	`(?m)^\s*(?:export\s+)?(?:abstract\s+)?class\s+%s\b`,                         // js/ts/python/ruby/java/php
	`(?m)^\s*(?:async\s+)?def\s+%s\s*\(`,                                         // python
	`(?m)^\s*def\s+(?:self\.)?%s\b`,                                              // ruby
	`(?m)^func\s+(?:\([^)]*\)\s*)?%s\s*[\(\[]`,                                   // go
	`(?m)^type\s+%s\b`,                                                           // go
	`(?m)^\s*(?:pub(?:\([^)]*\))?\s+)?(?:async\s+)?fn\s+%s\s*[\(<]`,              // rust
	`(?m)^\s*(?:pub(?:\([^)]*\))?\s+)?(?:struct|enum|trait)\s+%s\b`,              // rust
	`(?m)^\s*(?:typedef\s+)?(?:struct|enum|union)\s+%s\b`,                        // c/cpp
	`(?m)^\s*interface\s+%s\b`,                                                   // ts/java/php
	`(?m)^\s*(?:export\s+)?(?:const|let|var)\s+%s\s*[=:]`,                        // js/ts
	`(?m)^[A-Za-z_][A-Za-z0-9_ \t\*]*\b%s\s*\([^;]*$`,                            // c function definition
}

// searchableExtensions bounds which files are content-scanned. Anything else
// is skipped without reading.
var searchableExtensions = map[string]bool{
	".js": true, ".jsx": true, ".mjs": true, ".cjs": true,
	".ts": true, ".tsx": true,
	".py": true, ".pyw": true,
	".c": true, ".h": true, ".cpp": true, ".cc": true, ".cxx": true,
	".hpp": true, ".hxx": true,
	".go": true, ".java": true, ".rb": true, ".rs": true, ".php": true,
}

// fileSearcher implements the bounded filesystem fallback. Reads go through a
// size-bounded cache keyed by path:mtime, so repeated queries against an
// unchanged tree do not re-read files.
type fileSearcher struct {
	opts    SearchOptions
	ignores []glob.Glob
	cache   otter.Cache[string, []byte]
	cacheOK bool
	logger  *slog.Logger
}

func newFileSearcher(opts SearchOptions, logger *slog.Logger) *fileSearcher {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = 3
	}
	if len(opts.CandidateDirs) == 0 {
		opts.CandidateDirs = DefaultSearchOptions().CandidateDirs
	}
	if len(opts.SkipDirs) == 0 {
		opts.SkipDirs = DefaultSearchOptions().SkipDirs
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = 10 * 1024 * 1024
	}

	var ignores []glob.Glob
	for _, pattern := range opts.IgnoreGlobs {
		g, err := glob.Compile(pattern)
		if err != nil {
			logger.Warn("bad ignore pattern", "pattern", pattern, "error", err)
			continue
		}
		ignores = append(ignores, g)
	}

	cache, err := otter.MustBuilder[string, []byte](32 * 1024 * 1024).
		Cost(func(key string, value []byte) uint32 { return uint32(len(value)) + 1 }).
		Build()
	if err != nil {
		// Capacity is a constant, so this should not fire; reads fall back
		// to uncached when it does.
		logger.Warn("file cache unavailable", "error", err)
	}

	return &fileSearcher{opts: opts, ignores: ignores, cache: cache, cacheOK: err == nil, logger: logger}
}

// findDefinition searches the project tree around fromPath for a declaration
// of word. Per-candidate I/O failures are skipped; the search always runs to
// completion within its bounds.
func (s *fileSearcher) findDefinition(word, fromPath string) *Location {
	if fromPath == "" {
		return nil
	}
	root := projectRoot(fromPath)
	if root == "" {
		return nil
	}

	wordPatterns := compilePatterns(word)
	wholeWord, err := regexp.Compile(`\b` + regexp.QuoteMeta(word) + `\b`)
	if err != nil {
		return nil
	}

	for _, dir := range s.opts.CandidateDirs {
		candidate := filepath.Join(root, dir)
		if dir == "." {
			candidate = root
		}
		if loc := s.searchDir(candidate, fromPath, word, wordPatterns, wholeWord, 0); loc != nil {
			return loc
		}
	}
	return nil
}

// searchDir recursively scans one directory up to the depth limit.
func (s *fileSearcher) searchDir(dir, fromPath, word string, patterns []*regexp.Regexp, wholeWord *regexp.Regexp, depth int) *Location {
	if depth > s.opts.MaxDepth {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		// Missing candidate dirs and permission errors are expected; skip.
		return nil
	}

	// Files first, then subdirectories, so shallow matches win.
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if path == fromPath || s.ignored(entry.Name()) {
			continue
		}
		if loc := s.searchFile(path, word, patterns, wholeWord); loc != nil {
			return loc
		}
	}
	for _, entry := range entries {
		if !entry.IsDir() || s.skipDir(entry.Name()) || s.ignored(entry.Name()) {
			continue
		}
		if loc := s.searchDir(filepath.Join(dir, entry.Name()), fromPath, word, patterns, wholeWord, depth+1); loc != nil {
			return loc
		}
	}
	return nil
}

// searchFile scans one candidate. The file qualifies when its name contains
// the word or its content mentions the word as a whole word; the declaration
// patterns then pick the exact position.
func (s *fileSearcher) searchFile(path, word string, patterns []*regexp.Regexp, wholeWord *regexp.Regexp) *Location {
	if !searchableExtensions[strings.ToLower(filepath.Ext(path))] {
		return nil
	}

	nameMatch := strings.Contains(filepath.Base(path), word)
	content, ok := s.readFile(path)
	if !ok {
		return nil
	}
	if !nameMatch && !wholeWord.Match(content) {
		return nil
	}

	for _, pattern := range patterns {
		if m := pattern.FindIndex(content); m != nil {
			// Position the cursor on the word itself, not the keyword.
			offset := m[0]
			if wm := wholeWord.FindIndex(content[m[0]:m[1]]); wm != nil {
				offset = m[0] + wm[0]
			}
			line, col := positionAt(content, offset)
			return &Location{
				URI: pathToURI(path),
				Range: extract.Range{
					Start: extract.Position{Line: line, Character: col},
					End:   extract.Position{Line: line, Character: col + len(word)},
				},
			}
		}
	}
	return nil
}

// readFile returns file content through the mtime-keyed cache, refusing
// oversized or binary-looking files.
func (s *fileSearcher) readFile(path string) ([]byte, bool) {
	info, err := os.Stat(path)
	if err != nil || info.Size() > s.opts.MaxFileSize {
		return nil, false
	}

	key := fmt.Sprintf("%s:%d", path, info.ModTime().UnixNano())
	if s.cacheOK {
		if content, ok := s.cache.Get(key); ok {
			return content, true
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	if !looksLikeText(content) {
		return nil, false
	}
	if s.cacheOK {
		s.cache.Set(key, content)
	}
	return content, true
}

func (s *fileSearcher) skipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, skip := range s.opts.SkipDirs {
		if name == skip {
			return true
		}
	}
	return false
}

func (s *fileSearcher) ignored(name string) bool {
	for _, g := range s.ignores {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// compilePatterns instantiates the declaration patterns for a word.
func compilePatterns(word string) []*regexp.Regexp {
	quoted := regexp.QuoteMeta(word)
	patterns := make([]*regexp.Regexp, 0, len(declarationPatterns))
	for _, shape := range declarationPatterns {
		re, err := regexp.Compile(fmt.Sprintf(shape, quoted))
		if err != nil {
			continue
		}
		patterns = append(patterns, re)
	}
	return patterns
}

// positionAt converts a byte offset to a 0-based (line, column).
func positionAt(content []byte, offset int) (int, int) {
	line, col := 0, 0
	for i := 0; i < offset && i < len(content); i++ {
		if content[i] == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}
	return line, col
}

// projectRoot walks parent directories from a file path until a root marker
// appears. Returns "" when the filesystem root is reached without one.
func projectRoot(fromPath string) string {
	dir := filepath.Dir(fromPath)
	for {
		for _, marker := range rootMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// looksLikeText samples the first kilobyte and requires 70% printable bytes,
// the same cheap heuristic editors use to avoid scanning binaries.
func looksLikeText(content []byte) bool {
	if len(content) == 0 {
		return true
	}
	sample := content
	if len(sample) > 1024 {
		sample = sample[:1024]
	}
	printable := 0
	for _, b := range sample {
		if (b >= 32 && b <= 126) || b == '\t' || b == '\n' || b == '\r' {
			printable++
		}
	}
	return float64(printable)/float64(len(sample)) > 0.7
}

// uriToPath strips the file scheme from a document URI.
func uriToPath(uri string) string {
	if strings.HasPrefix(uri, "file://") {
		return strings.TrimPrefix(uri, "file://")
	}
	return uri
}

// pathToURI renders a filesystem path as a file URI.
func pathToURI(path string) string {
	if strings.HasPrefix(path, "file://") {
		return path
	}
	return "file://" + path
}
