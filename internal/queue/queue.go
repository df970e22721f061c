// Package queue provides a bounded lock-free MPMC queue and a channel
// baseline to measure it against.
//
// This package offers two implementations of the Queue interface:
//   - MPMC: lock-free ring buffer, safe for any number of producers and consumers
//   - ChannelQueue: standard library approach using buffered channels
//
// # MPMC protocol
//
// MPMC keeps two cache-line isolated cursors counting total claims since
// construction. A producer snapshots both cursors, reports ErrFull if the
// window is exhausted, and otherwise claims the producer cursor with a
// single compare-and-swap. Consumers do the same against the consumer
// cursor and report ErrEmpty when the cursors are equal. Because the
// fullness (or emptiness) check is repeated on every retry and the claim
// is one atomic step, ConsumerCursor <= ProducerCursor <= ConsumerCursor +
// Cap holds at every instant.
//
// After claiming, the winner waits for the slot's generation tag before
// touching the payload. That wait is bounded by one in-flight peer: the
// producer that claimed the same cursor has not finished writing, or the
// consumer of the slot's previous lap has not finished reading.
//
// Full and Empty are ordinary results, not faults. Callers poll, back off,
// or use EnqueueWait and DequeueWait.
package queue

// Queue is a non-blocking FIFO queue.
//
// Push returns false if the queue is full, Pop returns false if it is
// empty.
type Queue[T any] interface {
	// Push adds an item to the queue.
	// Returns false if the queue is full.
	Push(T) bool

	// Pop removes and returns an item from the queue.
	// Returns false if the queue is empty.
	Pop() (T, bool)
}
