package queue

import "github.com/randomizedcoder/mpmc-queue/internal/backoff"

// Option configures an MPMC queue at construction.
type Option func(*options)

type options struct {
	backoff     backoff.Strategy
	slotLocking bool
	stats       bool
}

func defaultOptions() options {
	return options{backoff: backoff.Pause}
}

// WithBackoff selects how contended claims wait before retrying.
// The default is backoff.Pause.
func WithBackoff(s backoff.Strategy) Option {
	return func(o *options) {
		o.backoff = s
	}
}

// WithSlotLocking adds a per-slot guard around every payload read and
// write. It costs one extra atomic per access.
func WithSlotLocking() Option {
	return func(o *options) {
		o.slotLocking = true
	}
}

// WithStats enables the counters reported by Stats.
func WithStats() Option {
	return func(o *options) {
		o.stats = true
	}
}
