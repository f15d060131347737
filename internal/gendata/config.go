// Package gendata produces synthetic borough boundaries and monthly
// crime extracts so the dashboard can run without the real datasets.
package gendata

import (
	"errors"
	"fmt"

	"github.com/safecity/safecity/internal/domain/model"
)

// Defaults for generation.
const (
	defaultBoroughs   = 33
	defaultMonths     = 24
	defaultStartMonth = "2023-01"
	defaultExtracts   = 2
)

// Config controls one generation run.
type Config struct {
	// OutputDir receives the geojson file and an extracts/ directory.
	OutputDir string
	// Boroughs is how many boroughs to emit, capped at the known list.
	Boroughs int
	// Months is how many consecutive months each borough gets.
	Months int
	// StartMonth is the first month, in YYYY-MM or YYYYMM form.
	StartMonth string
	// Extracts is how many CSV files the months are spread over. The
	// files share one month of overlap to exercise deduplication.
	Extracts int
}

// Error constants.
var (
	ErrInvalidConfig = errors.New("invalid gendata config")
)

// NewConfig returns a Config with defaults applied.
func NewConfig(outputDir string) *Config {
	return &Config{
		OutputDir:  outputDir,
		Boroughs:   defaultBoroughs,
		Months:     defaultMonths,
		StartMonth: defaultStartMonth,
		Extracts:   defaultExtracts,
	}
}

func (c *Config) validate() error {
	switch {
	case c.OutputDir == "":
		return fmt.Errorf("%w: output dir is required", ErrInvalidConfig)
	case c.Boroughs < 1 || c.Boroughs > len(boroughNames):
		return fmt.Errorf("%w: boroughs must be between 1 and %d", ErrInvalidConfig, len(boroughNames))
	case c.Months < 1:
		return fmt.Errorf("%w: months must be positive", ErrInvalidConfig)
	case c.Extracts < 1 || c.Extracts > c.Months:
		return fmt.Errorf("%w: extracts must be between 1 and the month count", ErrInvalidConfig)
	}
	if _, err := model.ParseMonth(c.StartMonth); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
