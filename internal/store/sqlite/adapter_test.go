package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notedrop/notedrop-server/internal/model"
	"github.com/notedrop/notedrop-server/internal/store"
)

func newStore(t *testing.T) store.Store {
	t.Helper()
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	st, err := NewWithDB(db)
	require.NoError(t, err)
	return st
}

func payloadFor(category model.Category) map[string]interface{} {
	switch category {
	case model.CategoryPerson:
		return map[string]interface{}{"name": "Ana", "context": "climbing gym", "lastContact": "2025-02-01"}
	case model.CategoryProject:
		return map[string]interface{}{"goal": "build a shed", "status": "active", "nextAction": "order lumber"}
	case model.CategoryIdea:
		return map[string]interface{}{"insight": "morning pages", "category": "habits", "date": "2025-02-01"}
	default:
		return map[string]interface{}{"task": "water plants", "deadline": "none", "priority": "low"}
	}
}

func TestEntries_RoundTripPerCategory(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	for _, category := range []model.Category{
		model.CategoryPerson, model.CategoryProject, model.CategoryIdea, model.CategoryTask,
	} {
		payload := payloadFor(category)
		created, err := st.Entries().Create(ctx, &model.Entry{
			OwnerID: "u1", Category: category, Data: payload, Confidence: 1.0,
		})
		require.NoError(t, err, category)

		got, err := st.Entries().Get(ctx, "u1", created.EntryID)
		require.NoError(t, err, category)
		assert.Equal(t, category, got.Category)
		assert.Equal(t, payload, got.Data, "payload must round-trip verbatim for %s", category)
		assert.Equal(t, created.CreationTime.Unix(), got.CreationTime.Unix())
	}
}

func TestEntries_PayloadValidationAtStoreBoundary(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	_, err := st.Entries().Create(ctx, &model.Entry{
		OwnerID:  "u1",
		Category: model.CategoryTask,
		Data:     map[string]interface{}{"task": "x", "deadline": "none", "priority": "urgent"},
	})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = st.Entries().Create(ctx, &model.Entry{
		OwnerID:  "u1",
		Category: model.CategoryProject,
		Data:     map[string]interface{}{"goal": "x", "status": "archived", "nextAction": "y"},
	})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestEntries_ArchivedPartition(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	open, err := st.Entries().Create(ctx, &model.Entry{
		OwnerID: "u1", Category: model.CategoryTask, Data: payloadFor(model.CategoryTask),
	})
	require.NoError(t, err)
	archived, err := st.Entries().Create(ctx, &model.Entry{
		OwnerID: "u1", Category: model.CategoryTask, Data: payloadFor(model.CategoryTask), Archived: true,
	})
	require.NoError(t, err)

	def, err := st.Entries().List(ctx, model.ListEntriesRequest{OwnerID: "u1"})
	require.NoError(t, err)
	only, err := st.Entries().List(ctx, model.ListEntriesRequest{OwnerID: "u1", Archived: model.ArchivedOnly})
	require.NoError(t, err)
	all, err := st.Entries().List(ctx, model.ListEntriesRequest{OwnerID: "u1", Archived: model.ArchivedInclude})
	require.NoError(t, err)

	require.Len(t, def, 1)
	assert.Equal(t, open.EntryID, def[0].EntryID)
	require.Len(t, only, 1)
	assert.Equal(t, archived.EntryID, only[0].EntryID)
	// the two listings partition the full set
	assert.Len(t, all, 2)
}

func TestEntries_CrossTenantBehavesAsNotFound(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	created, err := st.Entries().Create(ctx, &model.Entry{
		OwnerID: "u1", Category: model.CategoryIdea, Data: payloadFor(model.CategoryIdea),
	})
	require.NoError(t, err)

	_, err = st.Entries().Get(ctx, "u2", created.EntryID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	archived := true
	_, err = st.Entries().Update(ctx, "u2", created.EntryID, model.EntryPatch{Archived: &archived})
	assert.ErrorIs(t, err, model.ErrNotFound)

	err = st.Entries().Delete(ctx, "u2", created.EntryID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	// still intact for the owner
	got, err := st.Entries().Get(ctx, "u1", created.EntryID)
	require.NoError(t, err)
	assert.False(t, got.Archived)
}

func TestEntries_ListFilters(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	_, err := st.Entries().Create(ctx, &model.Entry{
		OwnerID: "u1", Category: model.CategoryTask, Data: payloadFor(model.CategoryTask),
	})
	require.NoError(t, err)
	review, err := st.Entries().Create(ctx, &model.Entry{
		OwnerID: "u1", Category: model.CategoryIdea, Data: payloadFor(model.CategoryIdea),
		Confidence: 0.4, NeedsReview: true,
	})
	require.NoError(t, err)

	taskCat := model.CategoryTask
	tasks, err := st.Entries().List(ctx, model.ListEntriesRequest{OwnerID: "u1", Category: &taskCat})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, model.CategoryTask, tasks[0].Category)

	needs := true
	queue, err := st.Entries().List(ctx, model.ListEntriesRequest{OwnerID: "u1", NeedsReview: &needs})
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, review.EntryID, queue[0].EntryID)
}

func TestEntries_UpdatePartialMerge(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	created, err := st.Entries().Create(ctx, &model.Entry{
		OwnerID: "u1", Category: model.CategoryTask, Data: payloadFor(model.CategoryTask),
		Confidence: 0.5, NeedsReview: true,
	})
	require.NoError(t, err)

	cleared := false
	cat := model.CategoryTask
	updated, err := st.Entries().Update(ctx, "u1", created.EntryID, model.EntryPatch{
		Category: &cat, NeedsReview: &cleared,
	})
	require.NoError(t, err)
	assert.False(t, updated.NeedsReview)
	// untouched fields survive
	assert.Equal(t, created.Data, updated.Data)
	assert.InDelta(t, 0.5, updated.Confidence, 1e-9)
	assert.False(t, updated.UpdateTime.Before(created.UpdateTime))
}

func TestEntries_DeleteIsHard(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	created, err := st.Entries().Create(ctx, &model.Entry{
		OwnerID: "u1", Category: model.CategoryTask, Data: payloadFor(model.CategoryTask),
	})
	require.NoError(t, err)

	require.NoError(t, st.Entries().Delete(ctx, "u1", created.EntryID))

	_, err = st.Entries().Get(ctx, "u1", created.EntryID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	all, err := st.Entries().List(ctx, model.ListEntriesRequest{OwnerID: "u1", Archived: model.ArchivedInclude})
	require.NoError(t, err)
	assert.Empty(t, all)
}
