package cancel

import (
	"context"
	"sync/atomic"
)

// AtomicCanceler is a stop flag held in an atomic.Bool.
//
// Done is a single load, roughly 1-2ns against 15-25ns for
// ContextCanceler, which matters when every failed Push or Pop polls it.
type AtomicCanceler struct {
	done atomic.Bool
}

// NewAtomic returns a canceler that is not yet done.
func NewAtomic() *AtomicCanceler {
	return &AtomicCanceler{}
}

// Done reports whether Cancel has been called.
func (a *AtomicCanceler) Done() bool {
	return a.done.Load()
}

// Cancel sets the flag.
func (a *AtomicCanceler) Cancel() {
	a.done.Store(true)
}

// Reset clears the flag so the canceler can drive another run.
// Not safe to call concurrently with Done or Cancel.
func (a *AtomicCanceler) Reset() {
	a.done.Store(false)
}

// Bind arranges for a to be cancelled once ctx is done. The returned stop
// function detaches a from ctx and reports whether it did so before the
// cancellation fired.
func (a *AtomicCanceler) Bind(ctx context.Context) (stop func() bool) {
	return context.AfterFunc(ctx, a.Cancel)
}
