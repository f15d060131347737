// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
)

// GeoJSONDependencies defines the interface for boundary queries.
type GeoJSONDependencies interface {
	GeoJSON(ctx context.Context) []byte
}

// GeoJSONHandler serves the borough boundary collection.
type GeoJSONHandler struct {
	deps GeoJSONDependencies
}

// NewGeoJSONHandler creates a new boundary handler.
func NewGeoJSONHandler(deps GeoJSONDependencies) *GeoJSONHandler {
	return &GeoJSONHandler{deps: deps}
}

// HandleGetGeoJSON handles GET /api/geojson requests. The payload is
// the decoded boundary file re-serialized, so polygon coordinates pass
// through byte for byte.
func (h *GeoJSONHandler) HandleGetGeoJSON(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_geojson"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	raw := h.deps.GeoJSON(r.Context())
	if len(raw) == 0 {
		writeError(w, http.StatusServiceUnavailable, "not_loaded", NewKind(op, ErrNotFound))
		return
	}
	w.Header().Set("Content-Type", "application/geo+json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}
