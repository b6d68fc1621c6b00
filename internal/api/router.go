package api

import (
	"github.com/gorilla/mux"

	"github.com/notedrop/notedrop-server/internal/api/recovery"
	"github.com/notedrop/notedrop-server/internal/assistant"
	"github.com/notedrop/notedrop-server/internal/auth"
	"github.com/notedrop/notedrop-server/internal/maps"
	"github.com/notedrop/notedrop-server/internal/services"
	"github.com/notedrop/notedrop-server/internal/store"
)

// Deps carries every constructed collaborator the router wires into
// handlers. Clients are built once at process start; there is no ambient
// global state.
type Deps struct {
	Store      store.Store
	Entries    *services.EntryService
	Classifier *assistant.Classifier
	Chat       *assistant.ChatService
	Digest     *assistant.DigestService
	Plans      *assistant.PlanService
	Distance   *maps.Client
	Authorizer auth.Authorizer
}

// NewRouter wires HTTP routes to handlers.
func NewRouter(d Deps) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.Middleware)

	entries := NewEntryHandler(d.Entries, d.Authorizer)
	aiHandler := NewAssistantHandler(d.Classifier, d.Chat, d.Digest, d.Plans, d.Authorizer)
	exports := NewExportHandler(d.Entries, d.Plans, d.Authorizer)
	distance := NewDistanceHandler(d.Distance, d.Authorizer)

	// Classification and entry CRUD
	root.HandleFunc("/api/entries/classify", aiHandler.Classify).Methods("POST")
	root.HandleFunc("/api/entries", entries.ListEntries).Methods("GET")
	root.HandleFunc("/api/entries", entries.CreateEntry).Methods("POST")
	root.HandleFunc("/api/entries/{entryId}", entries.GetEntry).Methods("GET")
	root.HandleFunc("/api/entries/{entryId}", entries.UpdateEntry).Methods("PATCH")
	root.HandleFunc("/api/entries/{entryId}", entries.DeleteEntry).Methods("DELETE")
	root.HandleFunc("/api/entries/{entryId}/review", entries.ReviewEntry).Methods("POST")
	root.HandleFunc("/api/entries/{entryId}/archive", entries.ArchiveEntry).Methods("POST")
	root.HandleFunc("/api/entries/{entryId}/unarchive", entries.UnarchiveEntry).Methods("POST")
	root.HandleFunc("/api/entries/{entryId}/save", entries.SaveEntry).Methods("POST")

	// Advisory chat, plans and digest
	root.HandleFunc("/api/entries/{entryId}/chat", aiHandler.Chat).Methods("POST")
	root.HandleFunc("/api/entries/{entryId}/suggestions", aiHandler.Suggestions).Methods("GET")
	root.HandleFunc("/api/digest", aiHandler.Digest).Methods("GET")

	// Plan export
	root.HandleFunc("/api/entries/{entryId}/export/pdf", exports.ExportPDFWithPlan).Methods("POST")
	root.HandleFunc("/api/entries/{entryId}/export/pdf", exports.ExportPDF).Methods("GET")
	root.HandleFunc("/api/entries/{entryId}/export/html", exports.ExportHTML).Methods("GET")

	// Distance lookup
	root.HandleFunc("/api/distance", distance.Distance).Methods("GET")

	// Health
	health := NewHealthHandler(d.Store)
	root.HandleFunc("/api/health", health.CheckHealth).Methods("GET")

	return root
}
