package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/notedrop/notedrop-server/internal/model"
	"github.com/notedrop/notedrop-server/internal/store"
)

// sqliteStore implements store.Store on a local SQLite file. It is the
// default driver for development and tests.
type sqliteStore struct {
	db *sql.DB
}

// New opens (or creates) the database at path and bootstraps the schema.
func New(path string) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return NewWithDB(db)
}

// NewWithDB wires the store over an existing connection (used by tests).
func NewWithDB(db *sql.DB) (store.Store, error) {
	if err := bootstrapSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Entries() store.Entries { return &entries{db: s.db} }

func (s *sqliteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type entries struct {
	db *sql.DB
}

func (e *entries) Create(ctx context.Context, in *model.Entry) (*model.Entry, error) {
	if err := model.ValidatePayload(in.Category, in.Data); err != nil {
		return nil, err
	}
	out := *in
	if out.EntryID == "" {
		out.EntryID = uuid.New().String()
	}
	now := time.Now().UTC()
	out.CreationTime = now
	out.UpdateTime = now
	if out.LinkedEntries == nil {
		out.LinkedEntries = []string{}
	}

	dataJSON, err := json.Marshal(out.Data)
	if err != nil {
		return nil, err
	}
	linkedJSON, err := json.Marshal(out.LinkedEntries)
	if err != nil {
		return nil, err
	}

	_, err = e.db.ExecContext(ctx, `
        INSERT INTO entries (entry_id, owner_id, category, data, confidence, needs_review, archived, linked_entries, creation_time, update_time)
        VALUES (?,?,?,?,?,?,?,?,?,?)`,
		out.EntryID, out.OwnerID, string(out.Category), string(dataJSON), out.Confidence,
		out.NeedsReview, out.Archived, string(linkedJSON), now, now)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (e *entries) Get(ctx context.Context, ownerID, entryID string) (*model.Entry, error) {
	row := e.db.QueryRowContext(ctx, `
        SELECT entry_id, owner_id, category, data, confidence, needs_review, archived, linked_entries, creation_time, update_time
        FROM entries WHERE owner_id = ? AND entry_id = ?`, ownerID, entryID)
	out, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	return out, err
}

func (e *entries) List(ctx context.Context, req model.ListEntriesRequest) ([]*model.Entry, error) {
	q := `SELECT entry_id, owner_id, category, data, confidence, needs_review, archived, linked_entries, creation_time, update_time
          FROM entries WHERE owner_id = ?`
	args := []interface{}{req.OwnerID}

	if req.Category != nil {
		q += ` AND category = ?`
		args = append(args, string(*req.Category))
	}
	switch req.Archived {
	case model.ArchivedOnly:
		q += ` AND archived = 1`
	case model.ArchivedInclude:
		// no filter
	default:
		q += ` AND archived = 0`
	}
	if req.NeedsReview != nil {
		q += ` AND needs_review = ?`
		args = append(args, *req.NeedsReview)
	}
	q += ` ORDER BY creation_time DESC`
	if req.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, req.Limit)
	}

	rows, err := e.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (e *entries) Update(ctx context.Context, ownerID, entryID string, patch model.EntryPatch) (*model.Entry, error) {
	cur, err := e.Get(ctx, ownerID, entryID)
	if err != nil {
		return nil, err
	}
	applyPatch(cur, patch)
	if err := model.ValidatePayload(cur.Category, cur.Data); err != nil {
		return nil, err
	}
	cur.UpdateTime = time.Now().UTC()

	dataJSON, err := json.Marshal(cur.Data)
	if err != nil {
		return nil, err
	}
	linkedJSON, err := json.Marshal(cur.LinkedEntries)
	if err != nil {
		return nil, err
	}

	res, err := e.db.ExecContext(ctx, `
        UPDATE entries
        SET category = ?, data = ?, needs_review = ?, archived = ?, linked_entries = ?, update_time = ?
        WHERE owner_id = ? AND entry_id = ?`,
		string(cur.Category), string(dataJSON), cur.NeedsReview, cur.Archived,
		string(linkedJSON), cur.UpdateTime, ownerID, entryID)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, model.ErrNotFound
	}
	return cur, nil
}

func (e *entries) Delete(ctx context.Context, ownerID, entryID string) error {
	res, err := e.db.ExecContext(ctx, `DELETE FROM entries WHERE owner_id = ? AND entry_id = ?`, ownerID, entryID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// applyPatch merges the provided top-level fields onto the current entry.
// Entry data is replaced wholesale when present; shallow merging against
// the stored payload is the caller's concern.
func applyPatch(cur *model.Entry, patch model.EntryPatch) {
	if patch.Category != nil {
		cur.Category = *patch.Category
	}
	if patch.Data != nil {
		cur.Data = *patch.Data
	}
	if patch.NeedsReview != nil {
		cur.NeedsReview = *patch.NeedsReview
	}
	if patch.Archived != nil {
		cur.Archived = *patch.Archived
	}
	if patch.LinkedEntries != nil {
		cur.LinkedEntries = *patch.LinkedEntries
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*model.Entry, error) {
	var out model.Entry
	var category, dataJSON, linkedJSON string
	if err := row.Scan(&out.EntryID, &out.OwnerID, &category, &dataJSON, &out.Confidence,
		&out.NeedsReview, &out.Archived, &linkedJSON, &out.CreationTime, &out.UpdateTime); err != nil {
		return nil, err
	}
	out.Category = model.Category(category)
	if err := json.Unmarshal([]byte(dataJSON), &out.Data); err != nil {
		return nil, fmt.Errorf("corrupt data payload for entry %s: %w", out.EntryID, err)
	}
	if err := json.Unmarshal([]byte(linkedJSON), &out.LinkedEntries); err != nil {
		return nil, fmt.Errorf("corrupt linked entries for entry %s: %w", out.EntryID, err)
	}
	return &out, nil
}
