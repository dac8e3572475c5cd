package queue

import "errors"

var (
	// ErrQueueFull is reported when a job cannot be enqueued.
	ErrQueueFull = errors.New("queue full")
	// ErrStopped is reported once the queue or its workers have stopped.
	ErrStopped = errors.New("queue stopped")
)
