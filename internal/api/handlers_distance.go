package api

import (
	"errors"
	"net/http"

	"github.com/notedrop/notedrop-server/internal/api/respond"
	"github.com/notedrop/notedrop-server/internal/auth"
	"github.com/notedrop/notedrop-server/internal/maps"
)

type DistanceHandler struct {
	dist       *maps.Client
	authorizer auth.Authorizer
}

func NewDistanceHandler(dist *maps.Client, authorizer auth.Authorizer) *DistanceHandler {
	return &DistanceHandler{dist: dist, authorizer: authorizer}
}

// Distance GET /api/distance?origin=&destination=
//
// The three failure kinds map to distinct statuses so clients can show a
// graceful "unavailable" state (404) versus a hard upstream error (502).
func (h *DistanceHandler) Distance(w http.ResponseWriter, r *http.Request) {
	actor := authorize(w, r, h.authorizer)
	if actor == nil {
		return
	}

	q := r.URL.Query()
	res, err := h.dist.Distance(r.Context(), q.Get("origin"), q.Get("destination"))
	switch {
	case errors.Is(err, maps.ErrMissingLocation):
		respond.WriteBadRequest(w, err.Error())
	case errors.Is(err, maps.ErrUnavailable):
		respond.WriteNotFound(w, err.Error())
	case errors.Is(err, maps.ErrUpstreamStatus):
		respond.WriteError(w, http.StatusBadGateway, err.Error())
	case err != nil:
		respond.WriteError(w, http.StatusBadGateway, err.Error())
	default:
		respond.WriteJSON(w, http.StatusOK, res)
	}
}
