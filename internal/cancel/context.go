package cancel

import "context"

// ContextCanceler polls a context.Context without blocking.
type ContextCanceler struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewContext derives a cancellable context from parent. Cancelling parent
// also makes Done report true.
func NewContext(parent context.Context) *ContextCanceler {
	ctx, cancel := context.WithCancel(parent)
	return &ContextCanceler{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Done reports whether the context has been cancelled.
func (c *ContextCanceler) Done() bool {
	select {
	case <-c.ctx.Done():
		return true
	default:
		return false
	}
}

// Cancel cancels the derived context.
func (c *ContextCanceler) Cancel() {
	c.cancel()
}

// Context returns the derived context, for handing to
// queue.EnqueueWait and queue.DequeueWait.
func (c *ContextCanceler) Context() context.Context {
	return c.ctx
}
