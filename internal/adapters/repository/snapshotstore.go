package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/dueline/internal/domain/history"
	"github.com/okian/dueline/internal/domain/identity"
	"github.com/okian/dueline/internal/domain/model"
	"github.com/okian/dueline/pkg/logger"
	"github.com/okian/dueline/pkg/metrics"
)

// SnapshotStore publishes snapshots through an atomic pointer. Reads never
// lock; swaps are serialised so generations are strictly increasing.
type SnapshotStore struct {
	mu          sync.Mutex
	snapshot    atomic.Pointer[Snapshot]
	matcherOpts []identity.Option
	logger      logger.Logger
}

// NewSnapshotStore constructs an empty store. Current reports
// ErrCorpusUnavailable until the first Swap.
func NewSnapshotStore(opts ...Option) *SnapshotStore {
	s := &SnapshotStore{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("repository")
	}
	return s
}

// Current implements Store.Current.
func (s *SnapshotStore) Current(_ context.Context) (*Snapshot, error) {
	snap := s.snapshot.Load()
	if snap == nil {
		return nil, ErrCorpusUnavailable
	}
	return snap, nil
}

// Generation implements Store.Generation.
func (s *SnapshotStore) Generation() uint64 {
	if snap := s.snapshot.Load(); snap != nil {
		return snap.generation
	}
	return 0
}

// Swap implements Store.Swap.
func (s *SnapshotStore) Swap(ctx context.Context, roster []model.RosterEntry, records []model.DailyGameRecord) (*Snapshot, error) {
	if len(roster) == 0 {
		return nil, ErrEmptyRoster
	}
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	matcherOpts := append([]identity.Option{identity.WithLogger(s.logger.Named("identity"))}, s.matcherOpts...)
	snap := &Snapshot{
		id:         uuid.NewString(),
		generation: s.Generation() + 1,
		loadedAt:   time.Now(),
		matcher:    identity.NewMatcher(roster, matcherOpts...),
		index:      history.Build(records),
	}
	s.snapshot.Store(snap)

	ms := float64(time.Since(start).Milliseconds())
	metrics.RecordSnapshotReloadDuration(ms)
	metrics.RecordSnapshotPublished(snap.generation, snap.matcher.Len(), snap.index.Len(), float64(snap.loadedAt.Unix()))
	s.logger.Info(ctx, "snapshot published",
		logger.String("snapshot_id", snap.id),
		logger.Uint64("generation", snap.generation),
		logger.Int("roster_entries", snap.matcher.Len()),
		logger.Int("records", snap.index.Len()),
		logger.Duration("took", time.Since(start)),
	)
	return snap, nil
}
