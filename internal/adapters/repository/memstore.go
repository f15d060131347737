package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/safecity/safecity/internal/domain/model"
	"github.com/safecity/safecity/internal/domain/types"
	"github.com/safecity/safecity/pkg/metrics"
)

// boroughAgg holds every aggregate the API reads for one borough.
// Severity index = sevSum / total, a count-weighted mean of category
// weights, so it stays comparable across boroughs of different sizes.
type boroughAgg struct {
	display string // first-seen spelling, used in responses
	total   int
	sevSum  float64
	months  map[string]int            // month -> count
	majors  map[string]int            // major -> count
	minors  map[string]map[string]map[string]int // major -> minor -> month -> count
}

func newBoroughAgg(display string) *boroughAgg {
	return &boroughAgg{
		display: display,
		months:  make(map[string]int),
		majors:  make(map[string]int),
		minors:  make(map[string]map[string]map[string]int),
	}
}

func (b *boroughAgg) severity() float64 {
	if b.total == 0 {
		return 0
	}
	return b.sevSum / float64(b.total)
}

// MemStore implements Store with mutex-guarded in-memory aggregates.
type MemStore struct {
	mu       sync.RWMutex
	boroughs map[string]*boroughAgg // keyed by normalized name
	months   map[string]struct{}
	records  int

	metricsEnabled bool
}

// NewMemStore creates an empty aggregate store.
func NewMemStore(_ context.Context, opts ...Option) *MemStore {
	s := &MemStore{
		boroughs:       make(map[string]*boroughAgg),
		months:         make(map[string]struct{}),
		metricsEnabled: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Apply folds one scored record into the aggregates.
func (s *MemStore) Apply(_ context.Context, rec model.CrimeRecord, severity float64) error {
	start := time.Now()
	defer func() {
		if s.metricsEnabled {
			metrics.RecordStoreApplyLatency(float64(time.Since(start).Milliseconds()))
		}
	}()

	key := model.NormalizeBorough(rec.Borough)

	s.mu.Lock()
	defer s.mu.Unlock()

	agg, ok := s.boroughs[key]
	if !ok {
		agg = newBoroughAgg(rec.Borough)
		s.boroughs[key] = agg
	}

	agg.total += rec.Count
	agg.sevSum += severity
	agg.months[rec.Month] += rec.Count
	agg.majors[rec.Major] += rec.Count

	byMinor, ok := agg.minors[rec.Major]
	if !ok {
		byMinor = make(map[string]map[string]int)
		agg.minors[rec.Major] = byMinor
	}
	byMonth, ok := byMinor[rec.Minor]
	if !ok {
		byMonth = make(map[string]int)
		byMinor[rec.Minor] = byMonth
	}
	byMonth[rec.Month] += rec.Count

	s.months[rec.Month] = struct{}{}
	s.records++

	if s.metricsEnabled {
		metrics.UpdateStoreBoroughs(len(s.boroughs))
		metrics.UpdateStoreRecords(s.records)
	}
	return nil
}

// Boroughs returns the known borough display names, sorted.
func (s *MemStore) Boroughs(_ context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.boroughs))
	for _, agg := range s.boroughs {
		names = append(names, agg.display)
	}
	sort.Strings(names)
	return names
}

// Months returns every month seen across all records, sorted.
// Canonical YYYY-MM keys sort chronologically as strings.
func (s *MemStore) Months(_ context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	months := make([]string, 0, len(s.months))
	for m := range s.months {
		months = append(months, m)
	}
	sort.Strings(months)
	return months
}

// Heatmap returns one cell per borough, sorted by borough name.
func (s *MemStore) Heatmap(_ context.Context) []types.HeatmapCell {
	start := time.Now()
	defer s.observeQuery(start)

	s.mu.RLock()
	defer s.mu.RUnlock()

	cells := make([]types.HeatmapCell, 0, len(s.boroughs))
	for _, agg := range s.boroughs {
		cells = append(cells, types.HeatmapCell{
			Borough:  agg.display,
			Total:    agg.total,
			Severity: agg.severity(),
		})
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].Borough < cells[j].Borough })
	return cells
}

// Trend returns the total count per month for a borough, sorted by month.
func (s *MemStore) Trend(_ context.Context, borough string) ([]types.TrendPoint, error) {
	start := time.Now()
	defer s.observeQuery(start)

	s.mu.RLock()
	defer s.mu.RUnlock()

	agg, ok := s.boroughs[model.NormalizeBorough(borough)]
	if !ok {
		s.observeQueryError()
		return nil, ErrBoroughNotFound
	}
	points := make([]types.TrendPoint, 0, len(agg.months))
	for month, count := range agg.months {
		points = append(points, types.TrendPoint{Month: month, Count: count})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Month < points[j].Month })
	return points, nil
}

// Categories returns major-category totals, sorted by count descending.
func (s *MemStore) Categories(_ context.Context, borough string) ([]types.CategoryCount, error) {
	start := time.Now()
	defer s.observeQuery(start)

	s.mu.RLock()
	defer s.mu.RUnlock()

	agg, ok := s.boroughs[model.NormalizeBorough(borough)]
	if !ok {
		s.observeQueryError()
		return nil, ErrBoroughNotFound
	}
	cats := make([]types.CategoryCount, 0, len(agg.majors))
	for major, count := range agg.majors {
		cats = append(cats, types.CategoryCount{Category: major, Count: count})
	}
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].Count != cats[j].Count {
			return cats[i].Count > cats[j].Count
		}
		return cats[i].Category < cats[j].Category
	})
	return cats, nil
}

// Breakdown returns the monthly series per minor category under major.
func (s *MemStore) Breakdown(_ context.Context, borough, major string) ([]types.BreakdownSeries, error) {
	start := time.Now()
	defer s.observeQuery(start)

	s.mu.RLock()
	defer s.mu.RUnlock()

	agg, ok := s.boroughs[model.NormalizeBorough(borough)]
	if !ok {
		s.observeQueryError()
		return nil, ErrBoroughNotFound
	}
	byMinor, ok := agg.minors[major]
	if !ok {
		return []types.BreakdownSeries{}, nil
	}
	series := make([]types.BreakdownSeries, 0, len(byMinor))
	for minor, byMonth := range byMinor {
		points := make([]types.TrendPoint, 0, len(byMonth))
		for month, count := range byMonth {
			points = append(points, types.TrendPoint{Month: month, Count: count})
		}
		sort.Slice(points, func(i, j int) bool { return points[i].Month < points[j].Month })
		series = append(series, types.BreakdownSeries{Minor: minor, Points: points})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Minor < series[j].Minor })
	return series, nil
}

// Rankings returns the top-n boroughs by severity index descending.
func (s *MemStore) Rankings(_ context.Context, n int) ([]types.RankEntry, error) {
	start := time.Now()
	defer s.observeQuery(start)

	if n < 1 {
		s.observeQueryError()
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]types.RankEntry, 0, len(s.boroughs))
	for _, agg := range s.boroughs {
		entries = append(entries, types.RankEntry{
			Borough:  agg.display,
			Severity: agg.severity(),
			Total:    agg.total,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Severity != entries[j].Severity {
			return entries[i].Severity > entries[j].Severity
		}
		return entries[i].Borough < entries[j].Borough
	})
	if n < len(entries) {
		entries = entries[:n]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// Count returns the number of records applied.
func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

// BoroughCount returns the number of boroughs tracked.
func (s *MemStore) BoroughCount(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.boroughs)
}

// Reset drops all aggregates.
func (s *MemStore) Reset(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.boroughs = make(map[string]*boroughAgg)
	s.months = make(map[string]struct{})
	s.records = 0

	if s.metricsEnabled {
		metrics.UpdateStoreBoroughs(0)
		metrics.UpdateStoreRecords(0)
	}
}

func (s *MemStore) observeQuery(start time.Time) {
	if s.metricsEnabled {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}
}

func (s *MemStore) observeQueryError() {
	if s.metricsEnabled {
		metrics.RecordStoreQueryError()
	}
}
