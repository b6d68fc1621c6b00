package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/notedrop/notedrop-server/internal/api/respond"
	"github.com/notedrop/notedrop-server/internal/assistant"
	"github.com/notedrop/notedrop-server/internal/auth"
)

// AssistantHandler hosts every endpoint backed by a model call: classify,
// chat, digest and suggestions.
type AssistantHandler struct {
	classifier *assistant.Classifier
	chat       *assistant.ChatService
	digest     *assistant.DigestService
	plans      *assistant.PlanService
	authorizer auth.Authorizer
}

func NewAssistantHandler(classifier *assistant.Classifier, chat *assistant.ChatService, digest *assistant.DigestService, plans *assistant.PlanService, authorizer auth.Authorizer) *AssistantHandler {
	return &AssistantHandler{
		classifier: classifier,
		chat:       chat,
		digest:     digest,
		plans:      plans,
		authorizer: authorizer,
	}
}

// Classify POST /api/entries/classify
func (h *AssistantHandler) Classify(w http.ResponseWriter, r *http.Request) {
	actor := authorize(w, r, h.authorizer)
	if actor == nil {
		return
	}

	var req struct {
		Text      string `json:"text"`
		LocalTime string `json:"localTime,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}

	localTime := time.Now()
	if req.LocalTime != "" {
		t, err := time.Parse(time.RFC3339, req.LocalTime)
		if err != nil {
			respond.WriteBadRequest(w, "localTime must be RFC 3339")
			return
		}
		localTime = t
	}

	out, err := h.classifier.Classify(r.Context(), actor.ActorID, req.Text, localTime)
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// Chat POST /api/entries/{entryId}/chat
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	actor := authorize(w, r, h.authorizer)
	if actor == nil {
		return
	}

	var req struct {
		Message string              `json:"message"`
		History []assistant.Message `json:"history,omitempty"`
		Coords  *assistant.Coords   `json:"coords,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}

	out, err := h.chat.Chat(r.Context(), actor.ActorID, mux.Vars(r)["entryId"], req.Message, req.History, req.Coords)
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// Digest GET /api/digest
func (h *AssistantHandler) Digest(w http.ResponseWriter, r *http.Request) {
	actor := authorize(w, r, h.authorizer)
	if actor == nil {
		return
	}

	bullets, err := h.digest.Digest(r.Context(), actor.ActorID)
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"focus": bullets})
}

// Suggestions GET /api/entries/{entryId}/suggestions?regenerate=
func (h *AssistantHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	actor := authorize(w, r, h.authorizer)
	if actor == nil {
		return
	}

	regenerate := r.URL.Query().Get("regenerate") == "true"
	plan, err := h.plans.Suggestions(r.Context(), actor.ActorID, mux.Vars(r)["entryId"], regenerate)
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, plan)
}
