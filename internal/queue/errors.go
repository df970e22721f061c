package queue

import "errors"

var (
	// ErrFull indicates the queue is at capacity. Nothing was enqueued.
	ErrFull = errors.New("queue: full")

	// ErrEmpty indicates there was nothing to dequeue.
	ErrEmpty = errors.New("queue: empty")

	// ErrNotInitialized indicates a zero-value or destroyed queue. It never
	// clears, so callers must not retry on it.
	ErrNotInitialized = errors.New("queue: not initialized")

	// ErrBatchTooLarge indicates a batch longer than the queue capacity,
	// which could never be enqueued.
	ErrBatchTooLarge = errors.New("queue: batch exceeds capacity")
)
