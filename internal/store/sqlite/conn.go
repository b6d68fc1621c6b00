package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Open opens (or creates) a SQLite database at the given path and enables
// WAL journal mode. The URI parameter ensures better concurrency for
// read-heavy workloads.
func Open(path string) (*sql.DB, error) {
	// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenInMemory opens a private in-memory database, used by tests.
func OpenInMemory() (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, err
	}
	// every pooled connection would otherwise see its own empty database
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS entries (
    entry_id       TEXT PRIMARY KEY,
    owner_id       TEXT NOT NULL,
    category       TEXT NOT NULL,
    data           TEXT NOT NULL,
    confidence     REAL NOT NULL,
    needs_review   INTEGER NOT NULL DEFAULT 0,
    archived       INTEGER NOT NULL DEFAULT 0,
    linked_entries TEXT NOT NULL DEFAULT '[]',
    creation_time  TIMESTAMP NOT NULL,
    update_time    TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_entries_owner_created
    ON entries(owner_id, creation_time DESC);
`

// bootstrapSchema creates the entries table when missing.
func bootstrapSchema(db *sql.DB) error {
	_, err := db.Exec(schemaDDL)
	return err
}
