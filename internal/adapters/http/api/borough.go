// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"
)

// BoroughDependencies defines the interface for single-borough queries.
type BoroughDependencies interface {
	Trend(ctx context.Context, borough string) ([]TrendPoint, error)
	Categories(ctx context.Context, borough string) ([]CategoryCount, error)
	Breakdown(ctx context.Context, borough, major string) ([]BreakdownSeries, error)
}

// BoroughHandler handles per-borough requests.
type BoroughHandler struct {
	deps BoroughDependencies
}

// NewBoroughHandler creates a new per-borough handler.
func NewBoroughHandler(deps BoroughDependencies) *BoroughHandler {
	return &BoroughHandler{deps: deps}
}

type trendResponse struct {
	Borough string       `json:"borough"`
	Points  []TrendPoint `json:"points"`
}

type categoriesResponse struct {
	Borough    string          `json:"borough"`
	Categories []CategoryCount `json:"categories"`
}

type breakdownResponse struct {
	Borough string            `json:"borough"`
	Major   string            `json:"major"`
	Series  []BreakdownSeries `json:"series"`
}

// HandleBorough handles GET /api/boroughs/{name}/{trend|categories|breakdown}.
func (h *BoroughHandler) HandleBorough(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_borough"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameters after /api/boroughs/
	rest := strings.TrimPrefix(r.URL.Path, "/api/boroughs/")
	borough, action, ok := strings.Cut(rest, "/")
	if !ok || borough == "" || strings.Contains(action, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	switch action {
	case "trend":
		points, err := h.deps.Trend(r.Context(), borough)
		if err != nil {
			h.writeQueryError(w, op, err)
			return
		}
		if points == nil {
			points = []TrendPoint{}
		}
		writeJSON(w, http.StatusOK, trendResponse{Borough: borough, Points: points})
	case "categories":
		cats, err := h.deps.Categories(r.Context(), borough)
		if err != nil {
			h.writeQueryError(w, op, err)
			return
		}
		if cats == nil {
			cats = []CategoryCount{}
		}
		writeJSON(w, http.StatusOK, categoriesResponse{Borough: borough, Categories: cats})
	case "breakdown":
		major := r.URL.Query().Get("major")
		if strings.TrimSpace(major) == "" {
			writeError(w, http.StatusBadRequest, "missing_major", NewKind(op, ErrBadRequest))
			return
		}
		series, err := h.deps.Breakdown(r.Context(), borough, major)
		if err != nil {
			h.writeQueryError(w, op, err)
			return
		}
		if series == nil {
			series = []BreakdownSeries{}
		}
		writeJSON(w, http.StatusOK, breakdownResponse{Borough: borough, Major: major, Series: series})
	default:
		http.NotFound(w, r)
	}
}

func (h *BoroughHandler) writeQueryError(w http.ResponseWriter, op string, err error) {
	if isNotFound(err) {
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
}
