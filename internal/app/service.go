// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	recordqueue "github.com/safecity/safecity/internal/adapters/mq/queue"
	workerpool "github.com/safecity/safecity/internal/adapters/mq/worker"
	"github.com/safecity/safecity/internal/adapters/repository"
	"github.com/safecity/safecity/internal/dataset"
	"github.com/safecity/safecity/internal/domain/dedupe"
	"github.com/safecity/safecity/internal/domain/model"
	"github.com/safecity/safecity/internal/domain/severity"
	"github.com/safecity/safecity/internal/domain/types"
	"github.com/safecity/safecity/pkg/logger"
	"github.com/safecity/safecity/pkg/metrics"
)

// Service implements the API dependencies for the crime dashboard.
// Queries are served from an aggregate store that is rebuilt wholesale
// on reload; readers always see either the old or the new store.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	deduper    dedupe.Deduper
	scorer     severity.Scorer
	loader     *dataset.Loader
	watcher    *dataset.Watcher
	boundaries map[string]string // normalized borough -> display name
	geojson    []byte
	warnings   int
	files      int
	joinMisses int

	// Configuration
	workerCount      int
	queueSize        int
	dedupeSize       int
	categoryWeights  map[string]float64
	defaultWeight    float64
	maxRankingsLimit int
	watch            bool

	// State
	started  bool
	reloads  int
	lastLoad time.Time
	stopCh   chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of ingest worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the record queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(lg logger.Logger) Option {
	return func(s *Service) {
		if lg != nil {
			s.logger = lg
		}
	}
}

// WithLoader sets the dataset loader.
func WithLoader(l *dataset.Loader) Option {
	return func(s *Service) {
		if l != nil {
			s.loader = l
		}
	}
}

// WithCategoryWeights sets the severity weights per major category.
func WithCategoryWeights(weights map[string]float64, fallback float64) Option {
	return func(s *Service) {
		s.categoryWeights = weights
		if fallback > 0 {
			s.defaultWeight = fallback
		}
	}
}

// WithMaxRankingsLimit caps the rankings page size.
func WithMaxRankingsLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxRankingsLimit = limit
		}
	}
}

// WithWatch enables automatic reloads when the data files change.
func WithWatch(watch bool) Option {
	return func(s *Service) {
		s.watch = watch
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:      runtime.NumCPU() * 2,
		queueSize:        100000,
		dedupeSize:       500000,
		defaultWeight:    1.0,
		maxRankingsLimit: 100,
		stopCh:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the dataset, runs the ingest pipeline to completion and,
// when watching is enabled, begins reloading on file changes.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.loader == nil {
		s.loader = dataset.NewLoader()
	}

	s.logger.Info(ctx, "starting dashboard service...")

	s.scorer = severity.NewWeightedScorer(
		severity.WithCategoryWeights(s.categoryWeights, s.defaultWeight),
	)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)

	if err := s.loadLocked(ctx); err != nil {
		return err
	}

	if s.watch {
		w, err := dataset.NewWatcher(s.loader.Paths())
		if err != nil {
			return fmt.Errorf("%w: %w", ErrStartFailed, err)
		}
		s.watcher = w
		go w.Run(ctx)
		go s.reloadLoop(ctx)
	}

	s.started = true
	s.logger.Info(ctx, "dashboard service started",
		logger.Int("workers", s.workerCount),
		logger.Int("boroughs", s.store.BoroughCount(ctx)),
		logger.Int("records", s.store.Count(ctx)),
		logger.Bool("watch", s.watch),
	)
	return nil
}

// Reload rebuilds the aggregates from disk. The previous store keeps
// serving queries until the new one is complete; a failed reload leaves
// it untouched.
func (s *Service) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		s.logger.Error(ctx, "reload failed, keeping previous dataset",
			logger.Error(err),
		)
		return err
	}
	s.reloads++
	metrics.RecordDatasetReload()
	return nil
}

// loadLocked runs one full load and swaps the store on success.
// Callers must hold s.mu.
func (s *Service) loadLocked(ctx context.Context) error {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return err
	}

	store, err := s.ingest(ctx, snap.Records)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(snap.Boundaries)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStartFailed, err)
	}

	boundaries := make(map[string]string)
	for _, name := range snap.Boundaries.Names() {
		boundaries[model.NormalizeBorough(name)] = name
	}

	// Join misses are a property of the loaded dataset, so they are
	// counted once per load, not per heatmap request.
	joinMisses := 0
	for _, name := range store.Boroughs(ctx) {
		if _, ok := boundaries[model.NormalizeBorough(name)]; !ok {
			metrics.RecordJoinMiss()
			s.logger.Warn(ctx, "borough has no boundary polygon",
				logger.String("borough", name),
			)
			joinMisses++
		}
	}

	s.store = store
	s.joinMisses = joinMisses
	s.boundaries = boundaries
	s.geojson = raw
	s.warnings = len(snap.Warnings)
	s.files = len(snap.Files)
	s.lastLoad = time.Now()
	return nil
}

// ingest pushes every unseen record through the scoring workers into a
// fresh store and waits for the queue to drain.
func (s *Service) ingest(ctx context.Context, records []model.CrimeRecord) (repository.Store, error) {
	store := repository.NewMemStore(ctx)
	q := recordqueue.NewInMemoryQueue(
		recordqueue.WithCapacity(s.queueSize),
		recordqueue.WithBufferSize(s.queueSize),
	)
	pool := workerpool.NewPool(s.workerCount, q, s.scorer, store)
	pool.Start(ctx)

	// Each load starts from scratch, so the dedupe cache does too.
	s.deduper.Reset(ctx)

	enqueued := 0
	for _, rec := range records {
		fp := rec.Fingerprint()
		if s.deduper.SeenAndRecord(ctx, fp) {
			metrics.RecordRecordDuplicate()
			continue
		}
		// Blocking enqueue: a full queue means the producer outran the
		// workers, which is backpressure, not a failure.
		if err := q.EnqueueWait(ctx, rec); err != nil {
			s.deduper.Unrecord(ctx, fp)
			pool.Stop()
			return nil, fmt.Errorf("%w: %w", ErrIngestFailed, err)
		}
		enqueued++
	}
	if err := q.Close(); err != nil {
		pool.Stop()
		return nil, fmt.Errorf("%w: %w", ErrIngestFailed, err)
	}
	if err := pool.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIngestFailed, err)
	}

	s.logger.Info(ctx, "ingest complete",
		logger.Int("records", len(records)),
		logger.Int("enqueued", enqueued),
		logger.Int("duplicates", len(records)-enqueued),
	)
	return store, nil
}

func (s *Service) reloadLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case _, ok := <-s.watcher.C:
			if !ok {
				return
			}
			s.logger.Info(ctx, "data files changed, reloading")
			_ = s.Reload(ctx)
		}
	}
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping dashboard service...")

	if s.watcher != nil {
		_ = s.watcher.Close()
	}

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(ctx, "dashboard service stopped")
}

// Boroughs returns every borough present in either the crime data or
// the boundary file, sorted, with boundary-only boroughs included so
// the dropdown matches the map.
func (s *Service) Boroughs(ctx context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := s.store.Boroughs(ctx)
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		seen[model.NormalizeBorough(n)] = struct{}{}
	}
	for key, display := range s.boundaries {
		if _, ok := seen[key]; !ok {
			names = append(names, display)
		}
	}
	sort.Strings(names)
	return names
}

// Heatmap returns one cell per borough with the Matched flag set from
// the boundary join. Cells without a boundary polygon still carry
// their totals so nothing silently disappears from rankings.
func (s *Service) Heatmap(ctx context.Context) []types.HeatmapCell {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cells := s.store.Heatmap(ctx)
	for i := range cells {
		_, ok := s.boundaries[model.NormalizeBorough(cells[i].Borough)]
		cells[i].Matched = ok
	}
	return cells
}

// Trend returns the monthly totals for one borough.
func (s *Service) Trend(ctx context.Context, borough string) ([]types.TrendPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Trend(ctx, borough)
}

// Categories returns the major-category totals for one borough.
func (s *Service) Categories(ctx context.Context, borough string) ([]types.CategoryCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Categories(ctx, borough)
}

// Breakdown returns the minor-category monthly series for one borough
// and major category.
func (s *Service) Breakdown(ctx context.Context, borough, major string) ([]types.BreakdownSeries, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Breakdown(ctx, borough, major)
}

// Rankings returns the top-n boroughs by severity index. The limit is
// clamped to the configured maximum.
func (s *Service) Rankings(ctx context.Context, n int) ([]types.RankEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n > s.maxRankingsLimit {
		n = s.maxRankingsLimit
	}
	return s.store.Rankings(ctx, n)
}

// GeoJSON returns the borough boundary collection as raw JSON.
func (s *Service) GeoJSON(ctx context.Context) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.geojson
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"reloads":     s.reloads,
		"watch":       s.watch,
	}

	if s.started {
		boroughs := s.store.BoroughCount(ctx)
		records := s.store.Count(ctx)

		stats["boroughs"] = boroughs
		stats["records"] = records
		stats["months"] = len(s.store.Months(ctx))
		stats["files"] = s.files
		stats["warnings"] = s.warnings
		stats["joinMisses"] = s.joinMisses
		stats["lastLoad"] = s.lastLoad.UTC().Format(time.RFC3339)

		metrics.UpdateStoreBoroughs(boroughs)
		metrics.UpdateStoreRecords(records)
	}

	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
