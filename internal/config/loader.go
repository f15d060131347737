package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, dotenv, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. .env in the working directory, if present (populates the process env)
//  3. file (YAML) if SAFECITY_CONFIG is set
//  4. env (prefix SAFECITY_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	// Populate the process environment from .env when present. Absence
	// is not an error; a malformed file is.
	if _, statErr := os.Stat(".env"); statErr == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("%w: .env: %w", ErrLoadConfig, err)
		}
	}

	k := koanf.New(".")

	if path := os.Getenv("SAFECITY_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// Environment variables: SAFECITY_ADDR, SAFECITY_QUEUE_SIZE, ...
	// Keys map to the koanf tags on the struct; underscores are preserved.
	envProvider := env.Provider("SAFECITY_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "safecity_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations that cannot produce a working service.
func (c *Config) validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.GeoJSONFile) == "":
		return fmt.Errorf("%w: geojson_file must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.CrimeDir) == "":
		return fmt.Errorf("%w: crime_dir must not be empty", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.MaxRankingsLimit < 1:
		return fmt.Errorf("%w: max_rankings_limit must be positive", ErrInvalidConfig)
	case c.DefaultCategoryWeight <= 0:
		return fmt.Errorf("%w: default_category_weight must be positive", ErrInvalidConfig)
	}
	return nil
}
