package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notedrop/notedrop-server/internal/assistant"
	"github.com/notedrop/notedrop-server/internal/auth"
	"github.com/notedrop/notedrop-server/internal/model"
	"github.com/notedrop/notedrop-server/internal/services"
	"github.com/notedrop/notedrop-server/internal/store"
	"github.com/notedrop/notedrop-server/internal/store/sqlite"
)

type scriptedLLM struct {
	reply string
}

func (s *scriptedLLM) Generate(ctx context.Context, system, user string) (string, error) {
	return s.reply, nil
}

type testServer struct {
	store  store.Store
	llm    *scriptedLLM
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := sqlite.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	st, err := sqlite.NewWithDB(db)
	require.NoError(t, err)

	llmClient := &scriptedLLM{}
	log := zerolog.Nop()
	deps := Deps{
		Store:      st,
		Entries:    services.NewEntryService(st),
		Classifier: assistant.NewClassifier(llmClient, st, log),
		Chat:       assistant.NewChatService(llmClient, st, nil, log),
		Digest:     assistant.NewDigestService(llmClient, st, log),
		Plans:      assistant.NewPlanService(llmClient, st, log),
		Authorizer: auth.NewStaticAuthorizer("key-one:u1,key-two:u2", false),
	}
	return &testServer{store: st, llm: llmClient, router: NewRouter(deps)}
}

func (s *testServer) do(t *testing.T, method, path, apiKey string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeEntry(t *testing.T, rec *httptest.ResponseRecorder) model.Entry {
	t.Helper()
	var e model.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e
}

func TestRouter_RequiresBearerKey(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, "GET", "/api/entries", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(t, "GET", "/api/entries", "bogus-key", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEntries_CreateAndGetRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, "POST", "/api/entries", "key-one", map[string]interface{}{
		"category": "idea",
		"data": map[string]interface{}{
			"insight": "keep a reading log", "category": "learning", "date": "2025-06-01",
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeEntry(t, rec)
	assert.NotEmpty(t, created.EntryID)
	assert.InDelta(t, 1.0, created.Confidence, 1e-9)
	assert.False(t, created.NeedsReview)

	rec = srv.do(t, "GET", "/api/entries/"+created.EntryID, "key-one", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeEntry(t, rec)
	assert.Equal(t, "keep a reading log", got.Data["insight"])
}

func TestEntries_CreateRejectsBadPayload(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, "POST", "/api/entries", "key-one", map[string]interface{}{
		"category": "task",
		"data":     map[string]interface{}{"task": "x", "deadline": "none", "priority": "asap"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEntries_CrossTenantLooksLikeNotFound(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, "POST", "/api/entries", "key-one", map[string]interface{}{
		"category": "task",
		"data":     map[string]interface{}{"task": "water plants", "deadline": "none", "priority": "low"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeEntry(t, rec)

	for _, tc := range []struct {
		method, path string
		body         interface{}
	}{
		{"GET", "/api/entries/" + created.EntryID, nil},
		{"PATCH", "/api/entries/" + created.EntryID, map[string]interface{}{"archived": true}},
		{"DELETE", "/api/entries/" + created.EntryID, nil},
		{"POST", "/api/entries/" + created.EntryID + "/archive", nil},
	} {
		rec := srv.do(t, tc.method, tc.path, "key-two", tc.body)
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestEntries_ReviewAssignsCategoryAndClearsFlag(t *testing.T) {
	srv := newTestServer(t)

	low := 0.3
	flagged := true
	entry, err := services.NewEntryService(srv.store).CreateManual(
		context.Background(), "u1", model.CategoryIdea,
		map[string]interface{}{"insight": "x", "category": "misc", "date": "2025-06-01"},
		&low, &flagged,
	)
	require.NoError(t, err)

	rec := srv.do(t, "POST", "/api/entries/"+entry.EntryID+"/review", "key-one", map[string]string{"category": "project"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decodeEntry(t, rec)
	assert.Equal(t, model.CategoryProject, out.Category)
	assert.False(t, out.NeedsReview)
}

func TestEntries_ArchiveFilterParams(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, "POST", "/api/entries", "key-one", map[string]interface{}{
		"category": "task",
		"data":     map[string]interface{}{"task": "open", "deadline": "none", "priority": "low"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	open := decodeEntry(t, rec)

	rec = srv.do(t, "POST", "/api/entries", "key-one", map[string]interface{}{
		"category": "task",
		"data":     map[string]interface{}{"task": "done", "deadline": "none", "priority": "low"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	done := decodeEntry(t, rec)

	rec = srv.do(t, "POST", "/api/entries/"+done.EntryID+"/archive", "key-one", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	listIDs := func(query string) []string {
		rec := srv.do(t, "GET", "/api/entries"+query, "key-one", nil)
		require.Equal(t, http.StatusOK, rec.Code, query)
		var out struct {
			Entries []model.Entry `json:"entries"`
			Count   int           `json:"count"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		ids := make([]string, 0, len(out.Entries))
		for _, e := range out.Entries {
			ids = append(ids, e.EntryID)
		}
		return ids
	}

	assert.Equal(t, []string{open.EntryID}, listIDs(""))
	assert.Equal(t, []string{done.EntryID}, listIDs("?archived=only"))
	assert.Len(t, listIDs("?archived=include"), 2)

	rec = srv.do(t, "GET", "/api/entries?archived=sometimes", "key-one", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, "GET", "/api/entries?category=reminder", "key-one", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEntries_SaveTogglesIdeaBookmark(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, "POST", "/api/entries", "key-one", map[string]interface{}{
		"category": "idea",
		"data":     map[string]interface{}{"insight": "x", "category": "misc", "date": "2025-06-01"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	idea := decodeEntry(t, rec)

	rec = srv.do(t, "POST", "/api/entries/"+idea.EntryID+"/save", "key-one", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeEntry(t, rec).Data["saved"])

	rec = srv.do(t, "POST", "/api/entries/"+idea.EntryID+"/save", "key-one", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeEntry(t, rec).Data["saved"])
}

func TestClassifyEndpoint_CreatesEntry(t *testing.T) {
	srv := newTestServer(t)
	srv.llm.reply = `{"category":"task","confidence":0.88,"data":{"task":"renew passport","deadline":"none","priority":"high"},"people":[]}`

	rec := srv.do(t, "POST", "/api/entries/classify", "key-one", map[string]string{
		"text": "must renew my passport soon", "localTime": "2025-06-02T08:00:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	out := decodeEntry(t, rec)
	assert.Equal(t, model.CategoryTask, out.Category)
	assert.False(t, out.NeedsReview)

	rec = srv.do(t, "POST", "/api/entries/classify", "key-one", map[string]string{
		"text": "x", "localTime": "yesterday-ish",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatEndpoint_AppliesUpdate(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, "POST", "/api/entries", "key-one", map[string]interface{}{
		"category": "task",
		"data":     map[string]interface{}{"task": "buy groceries", "deadline": "none", "priority": "low"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	task := decodeEntry(t, rec)

	srv.llm.reply = `Done. {"action":"update","updates":{"priority":"high"}}`
	rec = srv.do(t, "POST", fmt.Sprintf("/api/entries/%s/chat", task.EntryID), "key-one", map[string]string{
		"message": "make it high priority",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out assistant.ChatResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.Updated)
	assert.Equal(t, "Done.", out.Reply)
}

func TestDigestEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, "GET", "/api/digest", "key-one", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Focus []string `json:"focus"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Empty(t, out.Focus)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, "GET", "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}
