// Package due derives "due for event" signals from a hitter's game window.
package due

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/dueline/internal/domain/history"
	"github.com/okian/dueline/internal/domain/model"
)

// Baseline selects what the recent hit rate is measured against.
type Baseline string

const (
	// BaselineWindow uses the hit rate over the same bounded window.
	BaselineWindow Baseline = "window"
	// BaselineSeason uses the season-to-date hit rate.
	BaselineSeason Baseline = "season"
)

// ParseBaseline validates a configured baseline mode. Empty means window.
func ParseBaseline(s string) (Baseline, error) {
	switch Baseline(strings.ToLower(strings.TrimSpace(s))) {
	case "", BaselineWindow:
		return BaselineWindow, nil
	case BaselineSeason:
		return BaselineSeason, nil
	default:
		return "", fmt.Errorf("unknown due baseline %q", s)
	}
}

// Calculator computes due factors. It holds no mutable state.
type Calculator struct {
	event    string
	baseline Baseline
}

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithEvent sets the tracked event stat. Defaults to home runs.
func WithEvent(stat string) Option {
	return func(c *Calculator) {
		if stat != "" {
			c.event = stat
		}
	}
}

// WithBaseline sets the baseline mode.
func WithBaseline(b Baseline) Option {
	return func(c *Calculator) {
		if b != "" {
			c.baseline = b
		}
	}
}

// NewCalculator creates a calculator tracking home runs against the window
// baseline.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{event: model.StatHomeRuns, baseline: BaselineWindow}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Baseline returns the configured baseline mode.
func (c *Calculator) Baseline() Baseline { return c.baseline }

// Compute derives the due factor for w. season is only consulted in season
// baseline mode. Every signal is zero when the data cannot support it.
func (c *Calculator) Compute(w, season history.Window) model.DueFactor {
	f := model.DueFactor{ABSinceLastEvent: c.abSinceLastEvent(w)}
	if w.Len() < 2 {
		return f
	}

	base := w
	if c.baseline == BaselineSeason {
		base = season
	}
	baseline, ok := base.Rate(model.StatHits, model.StatAtBats)
	if !ok || baseline <= 0 {
		return f
	}
	_, recentHalf := w.Halves()
	recent, ok := recentHalf.Rate(model.StatHits, model.StatAtBats)
	if !ok {
		return f
	}

	f.BaselineRate = baseline
	f.RecentRate = recent
	f.HitsBasedDueScore = math.Max(0, math.Min(1, (baseline-recent)/baseline))
	return f
}

// abSinceLastEvent sums at-bats in games after the most recent one with the
// event. Without any event in the window every at-bat counts.
func (c *Calculator) abSinceLastEvent(w history.Window) int {
	var ab float64
	for i := len(w.Records) - 1; i >= 0; i-- {
		r := w.Records[i]
		if v, _ := r.Stat(c.event); v > 0 {
			break
		}
		v, _ := r.Stat(model.StatAtBats)
		ab += v
	}
	return int(math.Round(ab))
}
