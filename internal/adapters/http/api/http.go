// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/safecity/safecity/internal/adapters/repository"
	"github.com/safecity/safecity/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Boroughs returns the selectable borough names, sorted.
	Boroughs(ctx context.Context) []string

	// Heatmap returns the per-borough choropleth cells.
	Heatmap(ctx context.Context) []HeatmapCell

	// Trend returns the monthly totals for one borough.
	Trend(ctx context.Context, borough string) ([]TrendPoint, error)

	// Categories returns the major-category totals for one borough.
	Categories(ctx context.Context, borough string) ([]CategoryCount, error)

	// Breakdown returns the minor-category series under a major category.
	Breakdown(ctx context.Context, borough, major string) ([]BreakdownSeries, error)

	// Rankings returns the top-n boroughs by severity index.
	Rankings(ctx context.Context, n int) ([]RankEntry, error)

	// GeoJSON returns the borough boundary collection as raw JSON.
	GeoJSON(ctx context.Context) []byte
}

// Read shapes returned by dashboard queries.
type (
	HeatmapCell     = types.HeatmapCell
	TrendPoint      = types.TrendPoint
	CategoryCount   = types.CategoryCount
	BreakdownSeries = types.BreakdownSeries
	RankEntry       = types.RankEntry
)

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	boroughsHandler *BoroughsHandler
	boroughHandler  *BoroughHandler
	heatmapHandler  *HeatmapHandler
	rankingsHandler *RankingsHandler
	geojsonHandler  *GeoJSONHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxRankingsLimit int) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		boroughsHandler: NewBoroughsHandler(deps),
		boroughHandler:  NewBoroughHandler(deps),
		heatmapHandler:  NewHeatmapHandler(deps),
		rankingsHandler: NewRankingsHandler(deps, maxRankingsLimit),
		geojsonHandler:  NewGeoJSONHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/boroughs", RequestIDMiddleware(MetricsMiddleware(s.boroughsHandler.HandleListBoroughs, "boroughs")))
	mux.HandleFunc("/api/boroughs/", RequestIDMiddleware(MetricsMiddleware(s.boroughHandler.HandleBorough, "borough")))
	mux.HandleFunc("/api/heatmap", RequestIDMiddleware(MetricsMiddleware(s.heatmapHandler.HandleGetHeatmap, "heatmap")))
	mux.HandleFunc("/api/rankings", RequestIDMiddleware(MetricsMiddleware(s.rankingsHandler.HandleGetRankings, "rankings")))
	mux.HandleFunc("/api/geojson", RequestIDMiddleware(MetricsMiddleware(s.geojsonHandler.HandleGetGeoJSON, "geojson")))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound translates upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrBoroughNotFound) || errors.Is(err, ErrNotFound)
}
