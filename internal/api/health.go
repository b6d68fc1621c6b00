package api

import (
	"net/http"

	"github.com/notedrop/notedrop-server/internal/api/respond"
	"github.com/notedrop/notedrop-server/internal/store"
)

type HealthHandler struct {
	st store.Store
}

func NewHealthHandler(st store.Store) *HealthHandler {
	return &HealthHandler{st: st}
}

// CheckHealth GET /api/health
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.st.Ping(r.Context()); err != nil {
		respond.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
