// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...Option) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8050".
	Addr string `koanf:"addr"`

	// GeoJSONFile is the borough boundary file path.
	GeoJSONFile string `koanf:"geojson_file"`

	// CrimeDir is the directory of Met Police monthly CSV extracts.
	CrimeDir string `koanf:"crime_dir"`

	// Watch enables reloading datasets when files change on disk.
	Watch bool `koanf:"watch"`

	// QueueSize bounds the in-memory ingest queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ingest workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the record deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxRankingsLimit caps GET /api/rankings?limit.
	MaxRankingsLimit int `koanf:"max_rankings_limit"`

	// CategoryWeights maps major crime categories to severity weights.
	CategoryWeights map[string]float64 `koanf:"category_weights"`

	// DefaultCategoryWeight is used for categories absent from CategoryWeights.
	DefaultCategoryWeight float64 `koanf:"default_category_weight"`
}

// New creates a Config populated with defaults. The defaults assume the
// repository layout: data/london-boroughs.geojson plus data/met_police/.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":8050",
		GeoJSONFile:      "data/london-boroughs.geojson",
		CrimeDir:         "data/met_police",
		Watch:            false,
		QueueSize:        100_000,
		WorkerCount:      runtime.NumCPU() * 2,
		DedupeSize:       500_000,
		MaxRankingsLimit: 100,
		CategoryWeights: map[string]float64{
			"Violence Against the Person": 5.0,
			"Robbery":                     4.0,
			"Burglary":                    3.0,
			"Vehicle Offences":            2.0,
			"Theft":                       2.0,
			"Arson and Criminal Damage":   3.0,
			"Drug Offences":               2.5,
			"Public Order Offences":       1.5,
		},
		DefaultCategoryWeight: 1.0,
	}
}
