package snapshot

import (
	"database/sql"
	"fmt"
)

// schema is the snapshot database layout. One row per snapshot run, one row
// per extracted symbol.
const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id            TEXT PRIMARY KEY,
	root_path     TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL,
	files_indexed INTEGER NOT NULL DEFAULT 0,
	symbol_count  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS symbols (
	snapshot_id TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
	path        TEXT NOT NULL,
	language    TEXT NOT NULL,
	name        TEXT NOT NULL,
	kind        TEXT NOT NULL,
	signature   TEXT NOT NULL DEFAULT '',
	container   TEXT NOT NULL DEFAULT '',
	start_line  INTEGER NOT NULL,
	start_char  INTEGER NOT NULL,
	end_line    INTEGER NOT NULL,
	end_char    INTEGER NOT NULL,
	exported    INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name, kind);
CREATE INDEX IF NOT EXISTS idx_symbols_path ON symbols(snapshot_id, path);
`

// initSchema creates the tables if they do not exist.
func initSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize snapshot schema: %w", err)
	}
	// Foreign keys are off by default in sqlite.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return nil
}
