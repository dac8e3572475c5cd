// Package trend classifies whether a metric improved, declined or held
// steady between the earlier and recent halves of a game window.
package trend

import (
	"math"

	"github.com/okian/dueline/internal/domain/history"
	"github.com/okian/dueline/internal/domain/model"
)

// DefaultStabilityThreshold is the minimum mean difference, in the metric's
// native units, that counts as a change.
const DefaultStabilityThreshold = 0.25

// Classifier compares window halves. It holds no mutable state.
type Classifier struct {
	threshold float64
}

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithStabilityThreshold sets the default stability threshold.
func WithStabilityThreshold(t float64) Option {
	return func(c *Classifier) {
		if t > 0 {
			c.threshold = t
		}
	}
}

// NewClassifier creates a classifier with the default threshold.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{threshold: DefaultStabilityThreshold}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Threshold returns the threshold used for m.
func (c *Classifier) Threshold(m Metric) float64 {
	if m.Threshold > 0 {
		return m.Threshold
	}
	return c.threshold
}

// Classify splits w at its midpoint and compares the mean of m over each
// half. With fewer than two games, or a half with no usable values, it
// returns ErrInsufficientHistory alongside the unclassified stable default.
func (c *Classifier) Classify(w history.Window, m Metric) (model.TrendResult, error) {
	res := model.TrendResult{Metric: m.Name, Direction: model.DirectionStable}
	if w.Len() < 2 {
		return res, ErrInsufficientHistory
	}
	earlierHalf, recentHalf := w.Halves()
	earlier, ok1 := mean(earlierHalf, m.Extract)
	recent, ok2 := mean(recentHalf, m.Extract)
	if !ok1 || !ok2 {
		return res, ErrInsufficientHistory
	}

	res.EarlierAggregate = earlier
	res.RecentAggregate = recent
	res.Classified = true

	if math.Abs(recent-earlier) < c.Threshold(m) {
		return res, nil
	}
	better := recent > earlier
	if m.Polarity == LowerIsBetter {
		better = recent < earlier
	}
	if better {
		res.Direction = model.DirectionImproving
	} else {
		res.Direction = model.DirectionDeclining
	}
	return res, nil
}

// Certainty is how far past the threshold a classified difference landed,
// clamped to [0, 1]. Unclassified results have no certainty.
func (c *Classifier) Certainty(r model.TrendResult, m Metric) float64 {
	if !r.Classified {
		return 0
	}
	thr := c.Threshold(m)
	v := math.Abs(math.Abs(r.RecentAggregate-r.EarlierAggregate)-thr) / thr
	return math.Max(0, math.Min(1, v))
}

// Sign maps a direction onto +1, -1 or 0.
func Sign(d model.Direction) float64 {
	switch d {
	case model.DirectionImproving:
		return 1
	case model.DirectionDeclining:
		return -1
	default:
		return 0
	}
}

func mean(w history.Window, extract Extractor) (float64, bool) {
	var total float64
	var n int
	for _, r := range w.Records {
		if v, ok := extract(r); ok {
			total += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return total / float64(n), true
}
