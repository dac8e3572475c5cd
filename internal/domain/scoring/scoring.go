// Package scoring ranks predictions on a single 0-100 scale.
package scoring

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/dueline/internal/domain/model"
	"github.com/okian/dueline/internal/domain/trend"
)

// Default weights for the score components.
const (
	defaultBaseWeight  = 0.5
	defaultDueWeight   = 0.3
	defaultTrendWeight = 0.2
	maxScoreValue      = 100

	WeightBase  = "base"
	WeightDue   = "due"
	WeightTrend = "trend"
)

// Option applies a configuration option to the WeightedScorer.
type Option func(*WeightedScorer)

// WithWeightsFromConfig sets component weights from a configuration map keyed
// by base, due and trend. Unknown keys and negative weights are ignored.
func WithWeightsFromConfig(weights map[string]float64) Option {
	return func(s *WeightedScorer) {
		for k, w := range weights {
			if w < 0 {
				continue
			}
			switch k {
			case WeightBase:
				s.base = w
			case WeightDue:
				s.due = w
			case WeightTrend:
				s.trend = w
			}
		}
	}
}

// Input abstracts the prediction fields needed for scoring.
type Input struct {
	ID         string
	Confidence float64
	DueScore   float64
	Direction  model.Direction
}

// InputOf extracts the scoring input from a prediction.
func InputOf(p model.Prediction) Input {
	return Input{
		ID:         p.ID,
		Confidence: p.Confidence,
		DueScore:   p.Due.HitsBasedDueScore,
		Direction:  p.Trend.Direction,
	}
}

// Result contains the computed score for a prediction.
type Result struct {
	ID    string
	Score float64
}

// Scorer computes a score from an input.
type Scorer interface {
	// Score computes a score, honoring ctx for cancellation.
	Score(ctx context.Context, in Input) (Result, error)
}

// WeightedScorer scores as 100 * confidence * clamp(base + due*dueScore +
// trend*sign(direction), 0, 1).
type WeightedScorer struct {
	base  float64
	due   float64
	trend float64
}

// NewWeightedScorer creates a scorer with default weights.
func NewWeightedScorer(opts ...Option) *WeightedScorer {
	s := &WeightedScorer{
		base:  defaultBaseWeight,
		due:   defaultDueWeight,
		trend: defaultTrendWeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes a score for the given input.
func (s *WeightedScorer) Score(ctx context.Context, in Input) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("context cancelled: %w", err)
	}
	mix := s.base + s.due*in.DueScore + s.trend*trend.Sign(in.Direction)
	mix = math.Max(0, math.Min(1, mix))
	score := maxScoreValue * math.Max(0, math.Min(1, in.Confidence)) * mix
	return Result{ID: in.ID, Score: math.Round(score*100) / 100}, nil
}
