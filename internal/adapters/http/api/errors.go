package api

import "errors"

const (
	codeDataNotReady = "data_not_ready"
	defaultMaxLimit  = 100
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrMissingName = errors.New("missing name")
	ErrInvalidRole = errors.New("invalid role; use hitter or pitcher")
	ErrInvalidDate = errors.New("invalid as_of; must be YYYY-MM-DD")
	ErrInvalidNum  = errors.New("invalid numeric parameter")
	ErrRateLimited = errors.New("rate limit exceeded")
	ErrNotReady    = errors.New("corpus not loaded yet")
)
