package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/notedrop/notedrop-server/internal/model"
	"github.com/notedrop/notedrop-server/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and
// verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a Postgres-backed store over database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Entries() store.Entries { return &entries{db: s.db} }

func (s *pgStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type entries struct{ db *sql.DB }

func (e *entries) Create(ctx context.Context, in *model.Entry) (*model.Entry, error) {
	if err := model.ValidatePayload(in.Category, in.Data); err != nil {
		return nil, err
	}
	out := *in
	if out.EntryID == "" {
		out.EntryID = uuid.New().String()
	}
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

	var created time.Time
	row := e.db.QueryRowContext(ctx, `
        INSERT INTO entries (entry_id, owner_id, category, data, confidence, needs_review, archived, linked_entries)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING creation_time`,
		out.EntryID, out.OwnerID, string(out.Category), dataJSON, out.Confidence,
		out.NeedsReview, out.Archived, linkedJSON)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out.CreationTime = created
	out.UpdateTime = created
	return &out, nil
}

func (e *entries) Get(ctx context.Context, ownerID, entryID string) (*model.Entry, error) {
	row := e.db.QueryRowContext(ctx, `
        SELECT entry_id, owner_id, category, data, confidence, needs_review, archived, linked_entries, creation_time, update_time
        FROM entries WHERE owner_id=$1 AND entry_id=$2`, ownerID, entryID)
	out, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	return out, err
}

func (e *entries) List(ctx context.Context, req model.ListEntriesRequest) ([]*model.Entry, error) {
	q := `SELECT entry_id, owner_id, category, data, confidence, needs_review, archived, linked_entries, creation_time, update_time
          FROM entries WHERE owner_id=$1`
	args := []interface{}{req.OwnerID}

	if req.Category != nil {
		args = append(args, string(*req.Category))
		q += fmt.Sprintf(` AND category=$%d`, len(args))
	}
	switch req.Archived {
	case model.ArchivedOnly:
		q += ` AND archived`
	case model.ArchivedInclude:
		// no filter
	default:
		q += ` AND NOT archived`
	}
	if req.NeedsReview != nil {
		args = append(args, *req.NeedsReview)
		q += fmt.Sprintf(` AND needs_review=$%d`, len(args))
	}
	q += ` ORDER BY creation_time DESC`
	if req.Limit > 0 {
		args = append(args, req.Limit)
		q += fmt.Sprintf(` LIMIT $%d`, len(args))
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
	if err := model.ValidatePayload(cur.Category, cur.Data); err != nil {
		return nil, err
	}

	dataJSON, err := json.Marshal(cur.Data)
	if err != nil {
		return nil, err
	}
	linkedJSON, err := json.Marshal(cur.LinkedEntries)
	if err != nil {
		return nil, err
	}

	var updated time.Time
	row := e.db.QueryRowContext(ctx, `
        UPDATE entries
        SET category=$1, data=$2, needs_review=$3, archived=$4, linked_entries=$5, update_time=now()
        WHERE owner_id=$6 AND entry_id=$7
        RETURNING update_time`,
		string(cur.Category), dataJSON, cur.NeedsReview, cur.Archived, linkedJSON, ownerID, entryID)
	if err := row.Scan(&updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	cur.UpdateTime = updated
	return cur, nil
}

func (e *entries) Delete(ctx context.Context, ownerID, entryID string) error {
	res, err := e.db.ExecContext(ctx, `DELETE FROM entries WHERE owner_id=$1 AND entry_id=$2`, ownerID, entryID)
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

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*model.Entry, error) {
	var out model.Entry
	var category string
	var dataJSON, linkedJSON []byte
	if err := row.Scan(&out.EntryID, &out.OwnerID, &category, &dataJSON, &out.Confidence,
		&out.NeedsReview, &out.Archived, &linkedJSON, &out.CreationTime, &out.UpdateTime); err != nil {
		return nil, err
	}
	out.Category = model.Category(category)
	if err := json.Unmarshal(dataJSON, &out.Data); err != nil {
		return nil, fmt.Errorf("corrupt data payload for entry %s: %w", out.EntryID, err)
	}
	if err := json.Unmarshal(linkedJSON, &out.LinkedEntries); err != nil {
		return nil, fmt.Errorf("corrupt linked entries for entry %s: %w", out.EntryID, err)
	}
	return &out, nil
}
