package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/safecity/safecity/internal/domain/geo"
	"github.com/safecity/safecity/internal/domain/model"
	"github.com/safecity/safecity/pkg/logger"
	"github.com/safecity/safecity/pkg/metrics"
)

// Snapshot is the result of one full dataset load.
type Snapshot struct {
	Boundaries *geo.FeatureCollection
	Records    []model.CrimeRecord
	Warnings   []RowWarning
	// Files lists the CSV paths that contributed records, sorted.
	Files []string
}

// Loader reads the boundary GeoJSON and every crime CSV under a directory.
type Loader struct {
	geojsonPath string
	crimeDir    string
	concurrency int
	logger      logger.Logger
}

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithGeoJSONPath sets the borough boundary file path.
func WithGeoJSONPath(path string) Option {
	return func(l *Loader) {
		if path != "" {
			l.geojsonPath = path
		}
	}
}

// WithCrimeDir sets the directory of monthly CSV extracts.
func WithCrimeDir(dir string) Option {
	return func(l *Loader) {
		if dir != "" {
			l.crimeDir = dir
		}
	}
}

// WithConcurrency bounds how many CSV files are parsed at once.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// WithLogger sets a custom logger for the loader.
func WithLogger(lg logger.Logger) Option {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// NewLoader creates a loader with configuration options.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		geojsonPath: "data/london-boroughs.geojson",
		crimeDir:    "data/met_police",
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logger.Get().Named("dataset")
	}
	return l
}

// Paths returns the file-system paths the loader reads, for watching.
func (l *Loader) Paths() []string {
	return []string{l.geojsonPath, l.crimeDir}
}

// Load reads the boundary file and all extracts concurrently. A missing
// or malformed boundary file, an unreadable crime directory, or a
// directory without a single CSV is a hard failure; individual bad rows
// are warnings on the snapshot.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	start := time.Now()

	paths, err := l.listCSVs()
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Files: paths}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	g.Go(func() error {
		fc, skipped, err := l.loadBoundaries()
		if err != nil {
			return err
		}
		for _, idx := range skipped {
			l.logger.Warn(gctx, "boundary feature without a name skipped",
				logger.String("file", l.geojsonPath),
				logger.Int("feature", idx),
			)
		}
		mu.Lock()
		snap.Boundaries = fc
		mu.Unlock()
		return nil
	})

	for _, path := range paths {
		path := path
		g.Go(func() error {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrLoadFailed, err)
			}
			defer f.Close()

			records, warnings, err := ReadCrimeCSV(f, filepath.Base(path))
			if err != nil {
				return fmt.Errorf("%w: %w", ErrLoadFailed, err)
			}
			metrics.RecordDatasetFileLoaded()
			for range warnings {
				metrics.RecordDatasetRowWarning()
			}
			mu.Lock()
			snap.Records = append(snap.Records, records...)
			snap.Warnings = append(snap.Warnings, warnings...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Deterministic record order regardless of goroutine scheduling.
	sort.SliceStable(snap.Records, func(i, j int) bool {
		return snap.Records[i].Fingerprint() < snap.Records[j].Fingerprint()
	})

	metrics.RecordDatasetLoadDuration(float64(time.Since(start).Milliseconds()))
	l.logger.Info(ctx, "dataset loaded",
		logger.Int("files", len(paths)),
		logger.Int("records", len(snap.Records)),
		logger.Int("warnings", len(snap.Warnings)),
		logger.Duration("took", time.Since(start)),
	)
	return snap, nil
}

func (l *Loader) loadBoundaries() (*geo.FeatureCollection, []int, error) {
	f, err := os.Open(l.geojsonPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	defer f.Close()

	fc, skipped, err := geo.Decode(f)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrLoadFailed, l.geojsonPath, err)
	}
	return fc, skipped, nil
}

func (l *Loader) listCSVs() ([]string, error) {
	entries, err := os.ReadDir(l.crimeDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			paths = append(paths, filepath.Join(l.crimeDir, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFiles, l.crimeDir)
	}
	sort.Strings(paths)
	return paths, nil
}
