package gendata

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/safecity/safecity/internal/domain/model"
	"github.com/safecity/safecity/pkg/logger"
)

// File permission constants.
const (
	dirPermission  = 0o750
	filePermission = 0o600
)

// Run generates the boundary file and CSV extracts described by config.
func Run(ctx context.Context, config *Config) error {
	if err := config.validate(); err != nil {
		return err
	}
	start := time.Now()
	runID := uuid.NewString()[:8]
	lg := logger.Get().Named("gendata")

	extractDir := filepath.Join(config.OutputDir, "met_police")
	if err := os.MkdirAll(extractDir, dirPermission); err != nil {
		return fmt.Errorf("create output dirs: %w", err)
	}

	profiles := buildProfiles(config.Boroughs)

	raw, err := boundaryGeoJSON(profiles)
	if err != nil {
		return fmt.Errorf("build boundaries: %w", err)
	}
	geojsonPath := filepath.Join(config.OutputDir, "london-boroughs.geojson")
	if err := os.WriteFile(geojsonPath, raw, filePermission); err != nil {
		return fmt.Errorf("write boundaries: %w", err)
	}

	startMonth, err := model.ParseMonth(config.StartMonth)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	months, err := monthSequence(startMonth, config.Months)
	if err != nil {
		return err
	}

	// Fix every count up front so overlapping extracts agree on the
	// shared month, the way re-published real extracts do.
	counts := buildCounts(profiles, months)

	for i, window := range splitMonths(months, config.Extracts) {
		name := fmt.Sprintf("extract-%s-%02d.csv", runID, i+1)
		path := filepath.Join(extractDir, name)
		if err := writeExtract(ctx, path, profiles, window, counts); err != nil {
			return err
		}
		lg.Info(ctx, "extract written",
			logger.String("file", name),
			logger.Int("months", len(window)),
		)
	}

	lg.Info(ctx, "synthetic dataset generated",
		logger.String("runID", runID),
		logger.String("dir", config.OutputDir),
		logger.Int("boroughs", config.Boroughs),
		logger.Int("months", config.Months),
		logger.Duration("took", time.Since(start)),
	)
	return nil
}

// cellKey identifies one borough, minor category and month.
type cellKey struct {
	borough string
	major   string
	minor   string
	month   string
}

func buildCounts(profiles []boroughProfile, months []string) map[cellKey]int {
	counts := make(map[cellKey]int)
	for _, p := range profiles {
		for major, minors := range categoryCatalog {
			for mi, minor := range minors {
				for _, month := range months {
					counts[cellKey{p.name, major, minor, month}] = countFor(p, mi)
				}
			}
		}
	}
	return counts
}

// splitMonths divides months into n windows with one month of overlap
// between consecutive windows.
func splitMonths(months []string, n int) [][]string {
	if n == 1 {
		return [][]string{months}
	}
	per := len(months) / n
	windows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		start := i * per
		end := start + per
		if i > 0 {
			start-- // overlap with the previous window
		}
		if i == n-1 {
			end = len(months)
		}
		windows = append(windows, months[start:end])
	}
	return windows
}

func writeExtract(ctx context.Context, path string, profiles []boroughProfile, months []string, counts map[cellKey]int) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermission)
	if err != nil {
		return fmt.Errorf("create extract: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"BoroughName", "MajorText", "MinorText"}, months...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	majors := make([]string, 0, len(categoryCatalog))
	for major := range categoryCatalog {
		majors = append(majors, major)
	}
	sort.Strings(majors)

	for _, p := range profiles {
		for _, major := range majors {
			for _, minor := range categoryCatalog[major] {
				select {
				case <-ctx.Done():
					return fmt.Errorf("extract generation cancelled: %w", ctx.Err())
				default:
				}
				row := make([]string, 0, len(months)+3)
				row = append(row, p.name, major, minor)
				for _, month := range months {
					row = append(row, fmt.Sprintf("%d", counts[cellKey{p.name, major, minor, month}]))
				}
				if err := w.Write(row); err != nil {
					return fmt.Errorf("write row: %w", err)
				}
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush extract: %w", err)
	}
	return nil
}
