// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
)

// HeatmapDependencies defines the interface for heatmap queries.
type HeatmapDependencies interface {
	Heatmap(ctx context.Context) []HeatmapCell
}

// HeatmapHandler handles choropleth heatmap requests.
type HeatmapHandler struct {
	deps HeatmapDependencies
}

// NewHeatmapHandler creates a new heatmap handler.
func NewHeatmapHandler(deps HeatmapDependencies) *HeatmapHandler {
	return &HeatmapHandler{deps: deps}
}

type heatmapResponse struct {
	Cells []HeatmapCell `json:"cells"`
}

// HandleGetHeatmap handles GET /api/heatmap requests.
func (h *HeatmapHandler) HandleGetHeatmap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	cells := h.deps.Heatmap(r.Context())
	if cells == nil {
		cells = []HeatmapCell{}
	}
	writeJSON(w, http.StatusOK, heatmapResponse{Cells: cells})
}
