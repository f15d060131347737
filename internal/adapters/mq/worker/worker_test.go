package worker_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/safecity/safecity/internal/adapters/mq/queue"
	"github.com/safecity/safecity/internal/adapters/mq/worker"
	"github.com/safecity/safecity/internal/domain/model"
	"github.com/safecity/safecity/internal/domain/severity"
	"github.com/safecity/safecity/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// recordingApplier captures applied records for assertions.
type recordingApplier struct {
	mu       sync.Mutex
	applied  []model.CrimeRecord
	severity map[string]float64
}

func newRecordingApplier() *recordingApplier {
	return &recordingApplier{severity: make(map[string]float64)}
}

func (a *recordingApplier) Apply(_ context.Context, rec model.CrimeRecord, sev float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.applied = append(a.applied, rec)
	a.severity[rec.Fingerprint()] = sev
	return nil
}

func (a *recordingApplier) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.applied)
}

func TestPoolIngest(t *testing.T) {
	Convey("Given a pool over a queue of records", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(100), queue.WithBufferSize(100))
		scorer := severity.NewWeightedScorer(
			severity.WithCategoryWeights(map[string]float64{"Robbery": 4.0}, 1.0),
		)
		applier := newRecordingApplier()

		records := []model.CrimeRecord{
			{Borough: "Camden", Major: "Robbery", Minor: "Street", Month: "2024-01", Count: 10},
			{Borough: "Hackney", Major: "Theft", Minor: "Shoplifting", Month: "2024-01", Count: 3},
			{Borough: "Camden", Major: "Robbery", Minor: "Street", Month: "2024-02", Count: 5},
		}
		for _, r := range records {
			So(q.Enqueue(ctx, r), ShouldBeTrue)
		}

		Convey("When the pool runs and the queue closes", func() {
			pool := worker.NewPool(4, q, scorer, applier)
			pool.Start(ctx)
			So(q.Close(), ShouldBeNil)

			waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			So(pool.Wait(waitCtx), ShouldBeNil)

			Convey("Then every record is applied exactly once", func() {
				So(applier.count(), ShouldEqual, 3)
			})

			Convey("And severities reflect the category weights", func() {
				fp := records[0].Fingerprint()
				So(applier.severity[fp], ShouldEqual, 40.0)
				fp = records[1].Fingerprint()
				So(applier.severity[fp], ShouldEqual, 3.0)
			})
		})

		Convey("When worker count is non-positive", func() {
			pool := worker.NewPool(0, q, scorer, applier)

			Convey("Then the pool still constructs with defaults", func() {
				So(pool, ShouldNotBeNil)
			})
		})
	})
}

func TestWorkerShutdown(t *testing.T) {
	Convey("Given a running worker with an open queue", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(10), queue.WithBufferSize(10))
		scorer := severity.NewWeightedScorer()
		applier := newRecordingApplier()

		w := worker.NewIngestWorker(q, scorer, applier, worker.WithName("test-worker"))
		go w.Run(ctx)

		Convey("When shutting down", func() {
			shutdownCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			err := w.Shutdown(shutdownCtx)

			Convey("Then the worker exits cleanly", func() {
				So(err, ShouldBeNil)
			})
		})
	})
}
