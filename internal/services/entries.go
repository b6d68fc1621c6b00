package services

import (
	"context"
	"fmt"

	"github.com/notedrop/notedrop-server/internal/model"
	"github.com/notedrop/notedrop-server/internal/store"
)

// EntryService orchestrates entry-related use cases over the store.
type EntryService struct {
	store store.Store
}

func NewEntryService(s store.Store) *EntryService {
	return &EntryService{store: s}
}

// CreateManual persists a user-authored entry. The manual path defaults
// confidence to 1.0 and never lands in the review queue unless the caller
// says otherwise.
func (s *EntryService) CreateManual(ctx context.Context, ownerID string, category model.Category, data map[string]interface{}, confidence *float64, needsReview *bool) (*model.Entry, error) {
	if !model.ValidCategory(category) {
		return nil, fmt.Errorf("%w: unknown category %q", model.ErrValidation, category)
	}
	e := &model.Entry{
		OwnerID:    ownerID,
		Category:   category,
		Data:       data,
		Confidence: 1.0,
	}
	if confidence != nil {
		e.Confidence = *confidence
	}
	if needsReview != nil {
		e.NeedsReview = *needsReview
	}
	return s.store.Entries().Create(ctx, e)
}

func (s *EntryService) Get(ctx context.Context, ownerID, entryID string) (*model.Entry, error) {
	return s.store.Entries().Get(ctx, ownerID, entryID)
}

func (s *EntryService) List(ctx context.Context, req model.ListEntriesRequest) ([]*model.Entry, error) {
	return s.store.Entries().List(ctx, req)
}

func (s *EntryService) Update(ctx context.Context, ownerID, entryID string, patch model.EntryPatch) (*model.Entry, error) {
	if patch.IsEmpty() {
		return nil, fmt.Errorf("%w: no fields to update", model.ErrValidation)
	}
	if patch.Category != nil && !model.ValidCategory(*patch.Category) {
		return nil, fmt.Errorf("%w: unknown category %q", model.ErrValidation, *patch.Category)
	}
	return s.store.Entries().Update(ctx, ownerID, entryID, patch)
}

func (s *EntryService) Delete(ctx context.Context, ownerID, entryID string) error {
	return s.store.Entries().Delete(ctx, ownerID, entryID)
}

// AssignCategory is the review-queue action: a human confirms or corrects
// the category, which clears the review flag.
func (s *EntryService) AssignCategory(ctx context.Context, ownerID, entryID string, category model.Category) (*model.Entry, error) {
	if !model.ValidCategory(category) {
		return nil, fmt.Errorf("%w: unknown category %q", model.ErrValidation, category)
	}
	cleared := false
	return s.store.Entries().Update(ctx, ownerID, entryID, model.EntryPatch{
		Category:    &category,
		NeedsReview: &cleared,
	})
}

// SetArchived toggles the soft-delete flag.
func (s *EntryService) SetArchived(ctx context.Context, ownerID, entryID string, archived bool) (*model.Entry, error) {
	return s.store.Entries().Update(ctx, ownerID, entryID, model.EntryPatch{Archived: &archived})
}

// ToggleSaved flips the idea bookmark flag.
func (s *EntryService) ToggleSaved(ctx context.Context, ownerID, entryID string) (*model.Entry, error) {
	entry, err := s.store.Entries().Get(ctx, ownerID, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Category != model.CategoryIdea {
		return nil, fmt.Errorf("%w: only ideas can be saved", model.ErrValidation)
	}
	saved, _ := entry.Data["saved"].(bool)
	merged := make(map[string]interface{}, len(entry.Data)+1)
	for k, v := range entry.Data {
		merged[k] = v
	}
	merged["saved"] = !saved
	return s.store.Entries().Update(ctx, ownerID, entryID, model.EntryPatch{Data: &merged})
}
