// Package repository holds the immutable roster and game-log snapshot that
// every request reads from.
package repository

import (
	"context"
	"time"

	"github.com/okian/dueline/internal/domain/history"
	"github.com/okian/dueline/internal/domain/identity"
	"github.com/okian/dueline/internal/domain/model"
)

// Snapshot is one fully built, read-only view of the corpus. It is never
// modified after publication.
type Snapshot struct {
	id         string
	generation uint64
	loadedAt   time.Time
	matcher    *identity.Matcher
	index      *history.Index
}

// ID returns the snapshot's unique identifier.
func (s *Snapshot) ID() string { return s.id }

// Generation returns the snapshot's monotonically increasing generation.
func (s *Snapshot) Generation() uint64 { return s.generation }

// LoadedAt returns when the snapshot was published.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Matcher returns the identity matcher over the snapshot's roster.
func (s *Snapshot) Matcher() *identity.Matcher { return s.matcher }

// Index returns the snapshot's game history index.
func (s *Snapshot) Index() *history.Index { return s.index }

// Roster returns the normalised roster. Callers must not modify it.
func (s *Snapshot) Roster() []model.RosterEntry { return s.matcher.Entries() }

// Store provides the current snapshot and replaces it wholesale.
type Store interface {
	// Current returns the published snapshot or ErrCorpusUnavailable.
	Current(ctx context.Context) (*Snapshot, error)

	// Swap builds a snapshot from roster and records and publishes it
	// atomically. Readers holding the previous snapshot are unaffected.
	Swap(ctx context.Context, roster []model.RosterEntry, records []model.DailyGameRecord) (*Snapshot, error)

	// Generation returns the current generation, 0 before the first swap.
	Generation() uint64
}
