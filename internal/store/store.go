package store

import (
	"context"

	"github.com/notedrop/notedrop-server/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (postgres, sqlite).
type Store interface {
	Entries() Entries
	Ping(ctx context.Context) error
}

// Entries is the single-table CRUD surface over entry records. Every
// operation is scoped by owner id; acting on another owner's entry behaves
// identically to the entry not existing (model.ErrNotFound).
type Entries interface {
	Create(ctx context.Context, e *model.Entry) (*model.Entry, error)
	Get(ctx context.Context, ownerID, entryID string) (*model.Entry, error)
	List(ctx context.Context, req model.ListEntriesRequest) ([]*model.Entry, error)
	Update(ctx context.Context, ownerID, entryID string, patch model.EntryPatch) (*model.Entry, error)
	Delete(ctx context.Context, ownerID, entryID string) error
}
