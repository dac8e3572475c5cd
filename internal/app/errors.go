package service

import (
	"errors"

	"github.com/okian/dueline/internal/adapters/repository"
)

// Sentinel error kinds returned by the service.
var (
	// ErrCorpusUnavailable means no snapshot has been published yet.
	ErrCorpusUnavailable = repository.ErrCorpusUnavailable
	ErrNotStarted        = errors.New("service not started")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrUnknownTeam       = errors.New("unknown team")
	ErrBackpressure      = errors.New("analysis queue full")
)
