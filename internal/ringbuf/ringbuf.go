// Package ringbuf provides the fixed-capacity slot storage behind the MPMC
// queue.
//
// Storage owns one contiguous, zero-initialized array whose length is a
// power of two. Every accessor takes a raw 64-bit cursor and masks it, so
// any cursor value maps into the array; there is no other bounds check.
//
// Each slot carries a generation tag alongside its payload. The tag is the
// cursor value the slot is waiting for next: a writer that claimed cursor
// p may fill the slot once the tag equals p, and a reader that claimed
// cursor c may empty it once the tag equals c+1. Because tags are full
// 64-bit cursor values, a goroutine holding a stale claim from an earlier
// lap never matches.
package ringbuf

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// MaxCapacity bounds the slot count accepted by New.
const MaxCapacity = 1 << 40

var (
	// ErrInvalidCapacity is returned for a requested size of zero or less.
	ErrInvalidCapacity = errors.New("ringbuf: capacity must be positive")

	// ErrCapacityTooLarge is returned when the rounded size exceeds MaxCapacity.
	ErrCapacityTooLarge = errors.New("ringbuf: capacity too large")
)

type slot[T any] struct {
	tag   atomic.Uint64
	guard atomic.Uint32
	val   T
}

// Storage is a power-of-two array of slots addressed by masked cursors.
type Storage[T any] struct {
	slots   []slot[T]
	mask    uint64
	locking bool
	wait    func()
}

// Option configures a Storage.
type Option func(*config)

type config struct {
	locking bool
	wait    func()
}

// WithSlotLocking serializes each slot's payload access behind a spin
// guard, calling wait between acquisition attempts. The guard is
// independent of the tag protocol and only matters if that protocol is
// ever violated.
func WithSlotLocking(wait func()) Option {
	return func(c *config) {
		c.locking = true
		if wait != nil {
			c.wait = wait
		}
	}
}

// NextPowerOfTwo returns the smallest power of two >= n, and 1 for n == 0.
func NextPowerOfTwo(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// New allocates storage for NextPowerOfTwo(requested) slots. Slot i starts
// with tag i, i.e. free for the writer of cursor i.
func New[T any](requested int, opts ...Option) (*Storage[T], error) {
	if requested <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, requested)
	}
	if uint64(requested) > MaxCapacity {
		return nil, fmt.Errorf("%w: %d > %d", ErrCapacityTooLarge, requested, uint64(MaxCapacity))
	}

	cfg := config{wait: func() {}}
	for _, opt := range opts {
		opt(&cfg)
	}

	n := NextPowerOfTwo(uint64(requested))
	s := &Storage[T]{
		slots:   make([]slot[T], n),
		mask:    n - 1,
		locking: cfg.locking,
		wait:    cfg.wait,
	}
	for i := range s.slots {
		s.slots[i].tag.Store(uint64(i))
	}
	return s, nil
}

// Cap returns the number of slots.
func (s *Storage[T]) Cap() uint64 {
	return s.mask + 1
}

// Mask returns Cap()-1.
func (s *Storage[T]) Mask() uint64 {
	return s.mask
}

// Locking reports whether per-slot guards are enabled.
func (s *Storage[T]) Locking() bool {
	return s.locking
}

// Write stores v in the slot addressed by cursor.
func (s *Storage[T]) Write(cursor uint64, v T) {
	sl := &s.slots[cursor&s.mask]
	if s.locking {
		s.lock(sl)
		sl.val = v
		sl.guard.Store(0)
		return
	}
	sl.val = v
}

// Read returns the value in the slot addressed by cursor.
func (s *Storage[T]) Read(cursor uint64) T {
	sl := &s.slots[cursor&s.mask]
	if s.locking {
		s.lock(sl)
		v := sl.val
		sl.guard.Store(0)
		return v
	}
	return sl.val
}

// Take returns the value in the slot addressed by cursor and resets the
// slot to the zero value, dropping any reference it held.
func (s *Storage[T]) Take(cursor uint64) T {
	var zero T
	sl := &s.slots[cursor&s.mask]
	if s.locking {
		s.lock(sl)
		v := sl.val
		sl.val = zero
		sl.guard.Store(0)
		return v
	}
	v := sl.val
	sl.val = zero
	return v
}

// Tag returns the generation tag of the slot addressed by cursor.
func (s *Storage[T]) Tag(cursor uint64) uint64 {
	return s.slots[cursor&s.mask].tag.Load()
}

// Publish sets the generation tag of the slot addressed by cursor. All
// payload writes made before Publish are visible to whoever observes tag.
func (s *Storage[T]) Publish(cursor, tag uint64) {
	s.slots[cursor&s.mask].tag.Store(tag)
}

// Await spins, calling wait between checks, until the slot addressed by
// cursor carries tag.
func (s *Storage[T]) Await(cursor, tag uint64, wait func()) {
	t := &s.slots[cursor&s.mask].tag
	for t.Load() != tag {
		wait()
	}
}

// Release drops the backing array. The Storage must not be used afterwards.
func (s *Storage[T]) Release() {
	s.slots = nil
}

func (s *Storage[T]) lock(sl *slot[T]) {
	for !sl.guard.CompareAndSwap(0, 1) {
		s.wait()
	}
}
