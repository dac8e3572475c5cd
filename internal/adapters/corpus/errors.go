package corpus

import "errors"

var (
	// ErrLoad wraps any failure reading the roster or game logs.
	ErrLoad = errors.New("corpus load failed")
	// ErrBreakerOpen is returned while the circuit breaker rejects loads.
	ErrBreakerOpen = errors.New("corpus breaker open")
	// ErrEmptyRoster is returned when the roster file holds no entries.
	ErrEmptyRoster = errors.New("roster is empty")
)
