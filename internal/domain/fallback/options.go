package fallback

import (
	"github.com/okian/dueline/internal/domain/due"
	"github.com/okian/dueline/internal/domain/trend"
	"github.com/okian/dueline/pkg/logger"
)

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithWindowSize sets N, the number of most recent games per window.
func WithWindowSize(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.windowSize = n
		}
	}
}

// WithClassifier sets the trend classifier.
func WithClassifier(c *trend.Classifier) Option {
	return func(a *Aggregator) {
		if c != nil {
			a.classifier = c
		}
	}
}

// WithRateThreshold sets the stability threshold for batting average trends.
func WithRateThreshold(t float64) Option {
	return func(a *Aggregator) {
		if t > 0 {
			a.rateThreshold = t
		}
	}
}

// WithCalculator sets the due-factor calculator.
func WithCalculator(c *due.Calculator) Option {
	return func(a *Aggregator) {
		if c != nil {
			a.calculator = c
		}
	}
}

// WithLogger sets a custom logger for the aggregator.
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}
