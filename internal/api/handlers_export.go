package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/notedrop/notedrop-server/internal/api/respond"
	"github.com/notedrop/notedrop-server/internal/assistant"
	"github.com/notedrop/notedrop-server/internal/auth"
	"github.com/notedrop/notedrop-server/internal/export"
	"github.com/notedrop/notedrop-server/internal/model"
	"github.com/notedrop/notedrop-server/internal/services"
)

// ExportHandler renders a plan as PDF or printable HTML. The POST variant
// takes an already generated plan in the body; the GET variants reuse the
// cached plan, generating fresh only when none exists.
type ExportHandler struct {
	entries    *services.EntryService
	plans      *assistant.PlanService
	authorizer auth.Authorizer
}

func NewExportHandler(entries *services.EntryService, plans *assistant.PlanService, authorizer auth.Authorizer) *ExportHandler {
	return &ExportHandler{entries: entries, plans: plans, authorizer: authorizer}
}

// ExportPDFWithPlan POST /api/entries/{entryId}/export/pdf
func (h *ExportHandler) ExportPDFWithPlan(w http.ResponseWriter, r *http.Request) {
	actor := authorize(w, r, h.authorizer)
	if actor == nil {
		return
	}

	var plan model.Plan
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}

	entry, err := h.entries.Get(r.Context(), actor.ActorID, mux.Vars(r)["entryId"])
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	h.writePDF(w, entry, &plan)
}

// ExportPDF GET /api/entries/{entryId}/export/pdf
func (h *ExportHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	actor := authorize(w, r, h.authorizer)
	if actor == nil {
		return
	}

	entryID := mux.Vars(r)["entryId"]
	plan, err := h.plans.Suggestions(r.Context(), actor.ActorID, entryID, false)
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	entry, err := h.entries.Get(r.Context(), actor.ActorID, entryID)
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	h.writePDF(w, entry, plan)
}

// ExportHTML GET /api/entries/{entryId}/export/html
func (h *ExportHandler) ExportHTML(w http.ResponseWriter, r *http.Request) {
	actor := authorize(w, r, h.authorizer)
	if actor == nil {
		return
	}

	entryID := mux.Vars(r)["entryId"]
	plan, err := h.plans.Suggestions(r.Context(), actor.ActorID, entryID, false)
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	entry, err := h.entries.Get(r.Context(), actor.ActorID, entryID)
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := export.RenderHTML(w, planTitle(entry), plan); err != nil {
		respond.WriteInternalError(w, err.Error())
	}
}

func (h *ExportHandler) writePDF(w http.ResponseWriter, entry *model.Entry, plan *model.Plan) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="plan.pdf"`)
	if err := export.RenderPDF(w, planTitle(entry), plan); err != nil {
		respond.WriteInternalError(w, err.Error())
	}
}

// planTitle picks the document heading from the entry payload.
func planTitle(entry *model.Entry) string {
	switch entry.Category {
	case model.CategoryIdea:
		if s, _ := entry.Data["insight"].(string); s != "" {
			return s
		}
	case model.CategoryProject:
		if s, _ := entry.Data["goal"].(string); s != "" {
			return s
		}
	}
	return "Implementation Plan"
}
