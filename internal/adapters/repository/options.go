package repository

import (
	"github.com/okian/dueline/internal/domain/identity"
	"github.com/okian/dueline/pkg/logger"
)

// Option applies a configuration option to the SnapshotStore.
type Option func(*SnapshotStore)

// WithMatcherOptions sets the options every snapshot's matcher is built with.
func WithMatcherOptions(opts ...identity.Option) Option {
	return func(s *SnapshotStore) {
		s.matcherOpts = append(s.matcherOpts, opts...)
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *SnapshotStore) {
		if l != nil {
			s.logger = l
		}
	}
}
