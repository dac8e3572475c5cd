package identity

import (
	"github.com/okian/dueline/pkg/logger"
)

// Option applies a configuration option to the Matcher.
type Option func(*Matcher)

// WithStrategies replaces the accepting strategy chain.
func WithStrategies(strategies ...Strategy) Option {
	return func(m *Matcher) {
		if len(strategies) > 0 {
			m.strategies = strategies
		}
	}
}

// WithSuggestionLimit caps how many near-candidates a miss reports.
func WithSuggestionLimit(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.suggestionLimit = n
		}
	}
}

// WithLogger sets a custom logger for the matcher.
func WithLogger(l logger.Logger) Option {
	return func(m *Matcher) {
		if l != nil {
			m.logger = l
		}
	}
}
