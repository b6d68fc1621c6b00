package postgres

import (
	"context"
	"database/sql"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS entries (
    entry_id       uuid PRIMARY KEY,
    owner_id       text NOT NULL,
    category       text NOT NULL,
    data           jsonb NOT NULL,
    confidence     double precision NOT NULL,
    needs_review   boolean NOT NULL DEFAULT false,
    archived       boolean NOT NULL DEFAULT false,
    linked_entries jsonb NOT NULL DEFAULT '[]',
    creation_time  timestamptz NOT NULL DEFAULT now(),
    update_time    timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_entries_owner_created
    ON entries(owner_id, creation_time DESC);
`

// EnsureSchema applies the entries DDL. Idempotent; called once at startup.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schemaDDL)
	return err
}
