// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
)

// BoroughsDependencies defines the interface for borough listing.
type BoroughsDependencies interface {
	Boroughs(ctx context.Context) []string
}

// BoroughsHandler handles borough list requests.
type BoroughsHandler struct {
	deps BoroughsDependencies
}

// NewBoroughsHandler creates a new borough list handler.
func NewBoroughsHandler(deps BoroughsDependencies) *BoroughsHandler {
	return &BoroughsHandler{deps: deps}
}

type boroughsResponse struct {
	Boroughs []string `json:"boroughs"`
}

// HandleListBoroughs handles GET /api/boroughs requests.
func (h *BoroughsHandler) HandleListBoroughs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	names := h.deps.Boroughs(r.Context())
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, boroughsResponse{Boroughs: names})
}
