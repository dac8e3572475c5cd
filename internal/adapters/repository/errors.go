package repository

import (
	"errors"

	"github.com/okian/dueline/internal/domain/fallback"
)

var (
	// ErrCorpusUnavailable is returned until a snapshot has been published.
	ErrCorpusUnavailable = fallback.ErrCorpusUnavailable
	// ErrEmptyRoster rejects a swap that would publish no roster at all.
	ErrEmptyRoster = errors.New("empty roster")
)
