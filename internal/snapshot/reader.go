package snapshot

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Record is one persisted symbol row.
type Record struct {
	Path      string
	Language  string
	Name      string
	Kind      string
	Signature string
	Container string
	StartLine int
	StartChar int
	Exported  bool
}

// Info describes one snapshot run.
type Info struct {
	ID           string
	RootPath     string
	CreatedAt    time.Time
	FilesIndexed int
	SymbolCount  int
}

// Reader queries a snapshot database.
type Reader struct {
	db *sql.DB
}

// NewReader opens an existing snapshot database read-only.
func NewReader(dbPath string) (*Reader, error) {
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot db: %w", err)
	}
	return &Reader{db: db}, nil
}

// Close releases the database handle.
func (r *Reader) Close() error {
	return r.db.Close()
}

// Latest returns the most recent snapshot's info, or nil when the database
// holds none.
func (r *Reader) Latest() (*Info, error) {
	row := r.db.QueryRow(
		"SELECT id, root_path, created_at, files_indexed, symbol_count FROM snapshots ORDER BY created_at DESC, rowid DESC LIMIT 1")
	var info Info
	if err := row.Scan(&info.ID, &info.RootPath, &info.CreatedAt, &info.FilesIndexed, &info.SymbolCount); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot info: %w", err)
	}
	return &info, nil
}

// Lookup returns symbols from the snapshot matching name exactly, optionally
// narrowed to a kind, in path then line order.
func (r *Reader) Lookup(snapshotID, name, kind string, limit int) ([]Record, error) {
	query := `SELECT path, language, name, kind, signature, container, start_line, start_char, exported
		FROM symbols WHERE snapshot_id = ? AND name = ?`
	args := []any{snapshotID, name}
	if kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}
	query += " ORDER BY path, start_line"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query symbols: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Search returns symbols whose names contain the substring, in name order.
func (r *Reader) Search(snapshotID, substring string, limit int) ([]Record, error) {
	query := `SELECT path, language, name, kind, signature, container, start_line, start_char, exported
		FROM symbols WHERE snapshot_id = ? AND name LIKE ? ORDER BY name, path`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := r.db.Query(query, snapshotID, "%"+substring+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search symbols: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var rec Record
		var exported int
		if err := rows.Scan(&rec.Path, &rec.Language, &rec.Name, &rec.Kind,
			&rec.Signature, &rec.Container, &rec.StartLine, &rec.StartChar, &exported); err != nil {
			return nil, fmt.Errorf("failed to scan symbol row: %w", err)
		}
		rec.Exported = exported != 0
		records = append(records, rec)
	}
	return records, rows.Err()
}
