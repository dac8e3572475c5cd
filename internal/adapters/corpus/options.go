package corpus

import (
	"time"

	"github.com/okian/dueline/pkg/logger"
)

// Option applies a configuration option to the FileLoader.
type Option func(*FileLoader)

// WithBreaker sets how many consecutive failures open the breaker and how
// long it stays open.
func WithBreaker(maxFailures uint32, timeout time.Duration) Option {
	return func(l *FileLoader) {
		if maxFailures > 0 {
			l.maxFailures = maxFailures
		}
		if timeout > 0 {
			l.breakerTimeout = timeout
		}
	}
}

// WithLogger sets a custom logger for the loader.
func WithLogger(lg logger.Logger) Option {
	return func(l *FileLoader) {
		if lg != nil {
			l.logger = lg
		}
	}
}
