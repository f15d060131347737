// Package repository defines the aggregate store interface and errors.
package repository

import (
	"context"

	"github.com/safecity/safecity/internal/domain/model"
	"github.com/safecity/safecity/internal/domain/types"
)

// Store provides write access for ingest workers and read access for
// the HTTP API. Reads never observe a partially applied record.
type Store interface {
	// Apply folds one scored record into the aggregates.
	Apply(ctx context.Context, rec model.CrimeRecord, severity float64) error

	// Boroughs returns the known borough display names, sorted.
	Boroughs(ctx context.Context) []string

	// Months returns every month seen across all records, sorted.
	Months(ctx context.Context) []string

	// Heatmap returns one cell per borough, sorted by borough name.
	// The Matched flag is left false; the caller joins against the
	// boundary index.
	Heatmap(ctx context.Context) []types.HeatmapCell

	// Trend returns the total count per month for a borough, sorted by
	// month. Returns ErrBoroughNotFound for unknown boroughs.
	Trend(ctx context.Context, borough string) ([]types.TrendPoint, error)

	// Categories returns major-category totals for a borough, sorted by
	// count descending.
	Categories(ctx context.Context, borough string) ([]types.CategoryCount, error)

	// Breakdown returns the monthly series of each minor category under
	// a major category for a borough. An unknown major yields an empty
	// slice; an unknown borough yields ErrBoroughNotFound.
	Breakdown(ctx context.Context, borough, major string) ([]types.BreakdownSeries, error)

	// Rankings returns the top-n boroughs by severity index descending.
	// Returns ErrInvalidLimit when n < 1.
	Rankings(ctx context.Context, n int) ([]types.RankEntry, error)

	// Count returns the number of records applied.
	Count(ctx context.Context) int

	// BoroughCount returns the number of boroughs tracked.
	BoroughCount(ctx context.Context) int

	// Reset drops all aggregates, for a full reload.
	Reset(ctx context.Context)
}
