package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/notedrop/notedrop-server/internal/api/respond"
	"github.com/notedrop/notedrop-server/internal/auth"
	"github.com/notedrop/notedrop-server/internal/model"
	"github.com/notedrop/notedrop-server/internal/services"
)

type EntryHandler struct {
	svc        *services.EntryService
	authorizer auth.Authorizer
}

func NewEntryHandler(svc *services.EntryService, authorizer auth.Authorizer) *EntryHandler {
	return &EntryHandler{svc: svc, authorizer: authorizer}
}

// authorize resolves the bearer key to an actor, writing a 401 and
// returning nil when the caller is not authenticated.
func authorize(w http.ResponseWriter, r *http.Request, az auth.Authorizer) *auth.Actor {
	apiKey, err := auth.ExtractAPIKey(r)
	if err != nil {
		respond.WriteUnauthorized(w, "Unauthorized: "+err.Error())
		return nil
	}
	actor, err := az.Authorize(r.Context(), apiKey)
	if err != nil {
		respond.WriteUnauthorized(w, "Unauthorized: "+err.Error())
		return nil
	}
	return actor
}

// ListEntries GET /api/entries?category=&archived=&needsReview=
func (h *EntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	actor := authorize(w, r, h.authorizer)
	if actor == nil {
		return
	}

	req := model.ListEntriesRequest{OwnerID: actor.ActorID, Archived: model.ArchivedExclude}
	q := r.URL.Query()

	if s := q.Get("category"); s != "" {
		c := model.Category(s)
		if !model.ValidCategory(c) {
			respond.WriteBadRequest(w, "unknown category: "+s)
			return
		}
		req.Category = &c
	}
	switch q.Get("archived") {
	case "", "false":
		req.Archived = model.ArchivedExclude
	case "true", "only":
		req.Archived = model.ArchivedOnly
	case "include", "all":
		req.Archived = model.ArchivedInclude
	default:
		respond.WriteBadRequest(w, "archived must be one of false, true, only, include")
		return
	}
	if s := q.Get("needsReview"); s != "" {
		needs := s == "true"
		req.NeedsReview = &needs
	}

	out, err := h.svc.List(r.Context(), req)
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	if out == nil {
		out = []*model.Entry{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"entries": out, "count": len(out)})
}

// CreateEntry POST /api/entries
func (h *EntryHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	actor := authorize(w, r, h.authorizer)
	if actor == nil {
		return
	}

	var req struct {
		Category    model.Category         `json:"category"`
		Data        map[string]interface{} `json:"data"`
		Confidence  *float64               `json:"confidence,omitempty"`
		NeedsReview *bool                  `json:"needsReview,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}

	out, err := h.svc.CreateManual(r.Context(), actor.ActorID, req.Category, req.Data, req.Confidence, req.NeedsReview)
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// GetEntry GET /api/entries/{entryId}
func (h *EntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	actor := authorize(w, r, h.authorizer)
	if actor == nil {
		return
	}

	out, err := h.svc.Get(r.Context(), actor.ActorID, mux.Vars(r)["entryId"])
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// UpdateEntry PATCH /api/entries/{entryId}
func (h *EntryHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	actor := authorize(w, r, h.authorizer)
	if actor == nil {
		return
	}

	var patch model.EntryPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}

	out, err := h.svc.Update(r.Context(), actor.ActorID, mux.Vars(r)["entryId"], patch)
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// DeleteEntry DELETE /api/entries/{entryId}
func (h *EntryHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	actor := authorize(w, r, h.authorizer)
	if actor == nil {
		return
	}

	if err := h.svc.Delete(r.Context(), actor.ActorID, mux.Vars(r)["entryId"]); err != nil {
		respond.WriteModelError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReviewEntry POST /api/entries/{entryId}/review
func (h *EntryHandler) ReviewEntry(w http.ResponseWriter, r *http.Request) {
	actor := authorize(w, r, h.authorizer)
	if actor == nil {
		return
	}

	var req struct {
		Category model.Category `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}

	out, err := h.svc.AssignCategory(r.Context(), actor.ActorID, mux.Vars(r)["entryId"], req.Category)
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// ArchiveEntry POST /api/entries/{entryId}/archive
func (h *EntryHandler) ArchiveEntry(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, true)
}

// UnarchiveEntry POST /api/entries/{entryId}/unarchive
func (h *EntryHandler) UnarchiveEntry(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, false)
}

func (h *EntryHandler) setArchived(w http.ResponseWriter, r *http.Request, archived bool) {
	actor := authorize(w, r, h.authorizer)
	if actor == nil {
		return
	}

	out, err := h.svc.SetArchived(r.Context(), actor.ActorID, mux.Vars(r)["entryId"], archived)
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// SaveEntry POST /api/entries/{entryId}/save toggles the idea bookmark.
func (h *EntryHandler) SaveEntry(w http.ResponseWriter, r *http.Request) {
	actor := authorize(w, r, h.authorizer)
	if actor == nil {
		return
	}

	out, err := h.svc.ToggleSaved(r.Context(), actor.ActorID, mux.Vars(r)["entryId"])
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}
