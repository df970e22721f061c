// Package cancel tells queue workers when to stop.
//
// Producers and consumers that spin on a full or empty queue check for
// cancellation on every failed attempt, so the check has to cost about as
// much as the attempt itself. Two implementations of Canceler are offered:
//   - ContextCanceler: a non-blocking select on a context's Done channel
//   - AtomicCanceler: a single atomic load, flipped from a context with Bind
//
// The harness uses AtomicCanceler; the combined benchmarks compare both.
package cancel

// Canceler is polled by workers between queue attempts.
//
// Implementations must be safe for concurrent use: any number of
// goroutines may call Done while another calls Cancel.
type Canceler interface {
	// Done reports whether the workers should stop.
	Done() bool

	// Cancel asks the workers to stop. Safe to call more than once.
	Cancel()
}
