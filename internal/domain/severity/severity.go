// Package severity computes weighted severity scores for crime records.
//
// The score of a record is its count multiplied by the weight of its
// major category; unknown categories fall back to a default weight. A
// borough's severity index is the severity-weighted mean over all its
// records, so boroughs with many violent crimes rank above boroughs
// with the same raw total of low-weight offences.
package severity

import (
	"context"
	"fmt"
)

const defaultWeight = 1.0

// Input abstracts the record fields needed for scoring.
type Input struct {
	Borough string
	Major   string
	Count   int
}

// Result contains the computed severity contribution of one record.
type Result struct {
	Borough  string
	Weight   float64
	Severity float64
}

// Scorer computes a severity contribution from an input.
type Scorer interface {
	// Score computes a severity contribution, honoring ctx for cancellation.
	Score(ctx context.Context, in Input) (Result, error)
}

// Option applies a configuration option to the WeightedScorer.
type Option func(*WeightedScorer)

// WithCategoryWeights sets category weights from a configuration map.
// Non-positive weights are dropped.
func WithCategoryWeights(weights map[string]float64, fallback float64) Option {
	return func(s *WeightedScorer) {
		s.weights = make(map[string]float64, len(weights))
		for category, weight := range weights {
			if weight > 0 {
				s.weights[category] = weight
			}
		}
		if fallback > 0 {
			s.fallback = fallback
		}
	}
}

// WeightedScorer implements Scorer as a pure weighted sum.
type WeightedScorer struct {
	weights  map[string]float64
	fallback float64
}

// NewWeightedScorer creates a scorer with configuration options.
func NewWeightedScorer(opts ...Option) *WeightedScorer {
	s := &WeightedScorer{
		weights:  make(map[string]float64),
		fallback: defaultWeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes the severity contribution for the given input.
func (s *WeightedScorer) Score(ctx context.Context, in Input) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}
	if in.Count < 0 {
		return Result{}, fmt.Errorf("negative count %d for %q", in.Count, in.Borough)
	}
	weight, ok := s.weights[in.Major]
	if !ok {
		weight = s.fallback
	}
	return Result{
		Borough:  in.Borough,
		Weight:   weight,
		Severity: float64(in.Count) * weight,
	}, nil
}

// Weight reports the configured weight for a category.
func (s *WeightedScorer) Weight(category string) float64 {
	if w, ok := s.weights[category]; ok {
		return w
	}
	return s.fallback
}
