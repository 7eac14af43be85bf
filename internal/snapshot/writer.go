// Package snapshot persists batch-indexed symbol tables to sqlite. The
// `wayfind index` command walks a source tree through the same registry and
// extractors the live engine uses, and `wayfind symbols` queries the result.
package snapshot

import (
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mvp-joe/wayfind/internal/extract"
	"github.com/mvp-joe/wayfind/internal/grammar"
)

// Writer builds a snapshot of a directory tree.
type Writer struct {
	db       *sql.DB
	registry *grammar.Registry
	skipDirs map[string]bool
	ignores  []glob.Glob
	maxSize  int64
	logger   *slog.Logger

	// Progress, when set, is called once per visited source file.
	Progress func(path string)
}

// Options bounds a snapshot run.
type Options struct {
	SkipDirs    []string
	IgnoreGlobs []string
	MaxFileSize int64
}

// NewWriter opens (creating if needed) the snapshot database at dbPath.
func NewWriter(dbPath string, registry *grammar.Registry, opts Options, logger *slog.Logger) (*Writer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot db: %w", err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	skip := make(map[string]bool)
	for _, dir := range opts.SkipDirs {
		skip[dir] = true
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
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = 10 * 1024 * 1024
	}

	return &Writer{
		db:       db,
		registry: registry,
		skipDirs: skip,
		ignores:  ignores,
		maxSize:  maxSize,
		logger:   logger,
	}, nil
}

// Close releases the database handle.
func (w *Writer) Close() error {
	return w.db.Close()
}

// Index walks root, extracts symbols from every supported source file, and
// stores them under a fresh snapshot id. Unreadable or unparseable files are
// skipped, never fatal. Returns the snapshot id and counts.
func (w *Writer) Index(root string) (string, int, int, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	tx, err := w.db.Begin()
	if err != nil {
		return "", 0, 0, fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"INSERT INTO snapshots (id, root_path, created_at) VALUES (?, ?, ?)",
		id, root, now,
	); err != nil {
		return "", 0, 0, fmt.Errorf("failed to insert snapshot row: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO symbols
		(snapshot_id, path, language, name, kind, signature, container,
		 start_line, start_char, end_line, end_char, exported)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", 0, 0, fmt.Errorf("failed to prepare symbol insert: %w", err)
	}
	defer stmt.Close()

	files, symbols := 0, 0
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Permission problems on a subtree should not kill the run.
			w.logger.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (w.skipDirs[name] || name[0] == '.') {
				return filepath.SkipDir
			}
			return nil
		}
		if w.ignored(d.Name()) {
			return nil
		}

		language := grammar.LanguageForFile(path)
		if !w.registry.Supported(language) {
			return nil
		}
		if info, err := d.Info(); err != nil || info.Size() > w.maxSize {
			return nil
		}

		source, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		tree, ok := w.registry.Parse(language, source)
		if !ok {
			return nil
		}
		syms := extract.Extract(tree, source, language)
		tree.Close()

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		for _, sym := range syms {
			if _, err := stmt.Exec(
				id, rel, language, sym.Name, sym.Kind, sym.Signature, sym.Container,
				sym.Range.Start.Line, sym.Range.Start.Character,
				sym.Range.End.Line, sym.Range.End.Character,
				boolToInt(sym.Exported),
			); err != nil {
				return fmt.Errorf("failed to insert symbol %s: %w", sym.Name, err)
			}
		}

		files++
		symbols += len(syms)
		if w.Progress != nil {
			w.Progress(path)
		}
		return nil
	})
	if walkErr != nil {
		return "", 0, 0, walkErr
	}

	if _, err := tx.Exec(
		"UPDATE snapshots SET files_indexed = ?, symbol_count = ? WHERE id = ?",
		files, symbols, id,
	); err != nil {
		return "", 0, 0, fmt.Errorf("failed to finalize snapshot: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", 0, 0, fmt.Errorf("failed to commit snapshot: %w", err)
	}

	w.logger.Info("snapshot complete", "id", id, "files", files, "symbols", symbols)
	return id, files, symbols, nil
}

func (w *Writer) ignored(name string) bool {
	for _, g := range w.ignores {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
