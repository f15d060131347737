// Package worker runs the ingest workers that score and apply crime
// records to the aggregate store.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/safecity/safecity/internal/domain/model"
	"github.com/safecity/safecity/internal/domain/severity"
	"github.com/safecity/safecity/pkg/logger"
	"github.com/safecity/safecity/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Record is what workers read off the queue.
type Record = model.CrimeRecord

// Applier applies a scored record to the aggregate store.
type Applier interface {
	Apply(ctx context.Context, rec Record, severity float64) error
}

// Queue defines how workers receive records.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Record
}

// Worker processes records until its queue drains or ctx is cancelled.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// IngestWorker implements Worker for processing crime records.
type IngestWorker struct {
	queue   Queue
	scorer  severity.Scorer
	applier Applier
	name    string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewIngestWorker creates a new worker with configuration options.
func NewIngestWorker(queue Queue, scorer severity.Scorer, applier Applier, opts ...Option) *IngestWorker {
	w := &IngestWorker{
		queue:    queue,
		scorer:   scorer,
		applier:  applier,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *IngestWorker) Run(ctx context.Context) {
	defer close(w.done)

	records := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case rec, ok := <-records:
			if !ok {
				return
			}
			if err := w.processRecord(ctx, rec); err != nil {
				w.logger.Error(ctx, "error processing record", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *IngestWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processRecord scores one record and applies it to the store.
func (w *IngestWorker) processRecord(ctx context.Context, rec Record) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	scoreStart := time.Now()
	result, err := w.scorer.Score(ctx, severity.Input{
		Borough: rec.Borough,
		Major:   rec.Major,
		Count:   rec.Count,
	})
	metrics.RecordSeverityLatency(float64(time.Since(scoreStart).Milliseconds()))
	if err != nil {
		metrics.RecordSeverityError()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "severity_error")
		metrics.RecordErrorByType("severity_error", "high")
		w.logger.Error(ctx, "severity scoring failed",
			logger.String("borough", rec.Borough),
			logger.String("major", rec.Major),
			logger.Error(err),
		)
		return fmt.Errorf("failed to score record %s: %w", rec.Fingerprint(), err)
	}

	if err := w.applier.Apply(ctx, rec, result.Severity); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "store_error")
		metrics.RecordErrorByType("store_error", "high")
		w.logger.Error(ctx, "store apply failed",
			logger.String("borough", rec.Borough),
			logger.Error(err),
		)
		return fmt.Errorf("store apply failed: %w", err)
	}

	metrics.RecordDatasetRecordsLoaded(1)
	return nil
}

// Pool manages multiple ingest workers.
type Pool struct {
	workers []*IngestWorker
	queue   Queue
	scorer  severity.Scorer
	applier Applier

	shutdown chan struct{}

	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue Queue, scorer severity.Scorer, applier Applier) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:  make([]*IngestWorker, workerCount),
		queue:    queue,
		scorer:   scorer,
		applier:  applier,
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewIngestWorker(
			queue,
			scorer,
			applier,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerActiveCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Wait blocks until every worker has drained and exited, or ctx expires.
func (p *Pool) Wait(ctx context.Context) error {
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			return fmt.Errorf("waiting for workers: %w", ctx.Err())
		}
	}
	return nil
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	close(p.shutdown)

	for _, w := range p.workers {
		select {
		case <-w.done:
		default:
			close(w.shutdown)
		}
	}
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
	metrics.UpdateWorkerActiveCount(0)
}

// Shutdown closes the queue, then waits for the workers to drain.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	return nil
}
