package queue

import (
	"fmt"

	"github.com/randomizedcoder/mpmc-queue/internal/backoff"
	"github.com/randomizedcoder/mpmc-queue/internal/ringbuf"
)

// noCopy may be embedded into structs which must not be copied after first
// use. go vet's copylocks check reports copies.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// MPMC is a bounded lock-free queue safe for any number of concurrent
// producers and consumers.
//
// Values are stored by copy in a power-of-two ring. The zero value is not
// usable: every operation on it returns ErrNotInitialized. Use New or
// MustNew, and share the returned pointer; an MPMC must not be copied.
type MPMC[T any] struct {
	noCopy noCopy

	prod cursor // next cursor a producer may claim
	cons cursor // next cursor a consumer may claim

	ring     *ringbuf.Storage[T]
	capacity uint64
	backoff  backoff.Strategy
	stats    *counters
}

// New creates an MPMC queue holding the smallest power of two >= capacity
// elements.
func New[T any](capacity int, opts ...Option) (*MPMC[T], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var ringOpts []ringbuf.Option
	if o.slotLocking {
		ringOpts = append(ringOpts, ringbuf.WithSlotLocking(o.backoff.Wait))
	}
	ring, err := ringbuf.New[T](capacity, ringOpts...)
	if err != nil {
		return nil, fmt.Errorf("queue: new mpmc: %w", err)
	}

	q := &MPMC[T]{
		ring:     ring,
		capacity: ring.Cap(),
		backoff:  o.backoff,
	}
	if o.stats {
		q.stats = &counters{}
	}
	q.cons.reset()
	q.prod.reset()
	return q, nil
}

// MustNew is like New but panics if the queue cannot be constructed.
func MustNew[T any](capacity int, opts ...Option) *MPMC[T] {
	q, err := New[T](capacity, opts...)
	if err != nil {
		panic(err)
	}
	return q
}

// Enqueue adds v to the queue.
// Returns ErrFull if the queue is at capacity; the queue is unchanged.
func (q *MPMC[T]) Enqueue(v T) error {
	r := q.ring
	if r == nil {
		return ErrNotInitialized
	}
	p, err := q.claimProduce(1)
	if err != nil {
		return err
	}
	q.fill(r, p, v)
	return nil
}

// Dequeue removes and returns the oldest claimable value.
// Returns ErrEmpty if there is nothing to dequeue; the queue is unchanged.
func (q *MPMC[T]) Dequeue() (T, error) {
	var zero T
	r := q.ring
	if r == nil {
		return zero, ErrNotInitialized
	}
	c, _, err := q.claimConsume(1)
	if err != nil {
		return zero, err
	}
	return q.drain(r, c), nil
}

// Push adds v to the queue. Returns false if the queue is full or not
// initialized.
func (q *MPMC[T]) Push(v T) bool {
	return q.Enqueue(v) == nil
}

// Pop removes and returns a value. Returns false if the queue is empty or
// not initialized.
func (q *MPMC[T]) Pop() (T, bool) {
	v, err := q.Dequeue()
	return v, err == nil
}

// claimProduce reserves n consecutive producer cursors and returns the
// first. The run is claimed only if all of it fits.
func (q *MPMC[T]) claimProduce(n uint64) (uint64, error) {
	p := q.prod.Get()
	for {
		c := q.cons.Get()
		used := p - c
		if used > q.capacity {
			// p predates consumers that have since passed it.
			p = q.prod.Get()
			continue
		}
		if used+n > q.capacity {
			q.countFull()
			return 0, ErrFull
		}
		if q.prod.CompareAndSwap(&p, p+n) {
			return p, nil
		}
		q.countRetry()
		q.backoff.Wait()
	}
}

// claimConsume reserves up to limit consecutive consumer cursors and
// returns the first together with the number claimed.
func (q *MPMC[T]) claimConsume(limit uint64) (uint64, uint64, error) {
	c := q.cons.Get()
	for {
		p := q.prod.Get()
		avail := p - c
		if avail == 0 {
			q.countEmpty()
			return 0, 0, ErrEmpty
		}
		n := min(limit, avail)
		if q.cons.CompareAndSwap(&c, c+n) {
			return c, n, nil
		}
		q.countRetry()
		q.backoff.Wait()
	}
}

// fill writes v into the slot claimed at cursor p once the previous lap's
// consumer has released it.
func (q *MPMC[T]) fill(r *ringbuf.Storage[T], p uint64, v T) {
	r.Await(p, p, q.backoff.Wait)
	r.Write(p, v)
	r.Publish(p, p+1)
}

// drain takes the value claimed at cursor c once its producer has
// published it, and frees the slot for the next lap.
func (q *MPMC[T]) drain(r *ringbuf.Storage[T], c uint64) T {
	r.Await(c, c+1, q.backoff.Wait)
	v := r.Take(c)
	r.Publish(c, c+q.capacity)
	return v
}

// Cap returns the queue capacity, or 0 if the queue is not initialized.
func (q *MPMC[T]) Cap() int {
	if q.ring == nil {
		return 0
	}
	return int(q.capacity)
}

// Size returns the number of claimed but not yet consumed elements.
// This is an advisory snapshot and may be stale by the time it returns.
func (q *MPMC[T]) Size() int {
	if q.ring == nil {
		return 0
	}
	c := q.cons.Get()
	p := q.prod.Get()
	n := p - c
	if n > q.capacity {
		// producers advanced between the two loads
		n = q.capacity
	}
	return int(n)
}

// Len is an alias for Size.
func (q *MPMC[T]) Len() int {
	return q.Size()
}

// Empty reports whether Size is 0. Advisory.
func (q *MPMC[T]) Empty() bool {
	return q.Size() == 0
}

// Full reports whether Size equals Cap. Advisory.
func (q *MPMC[T]) Full() bool {
	return q.ring != nil && q.Size() == q.Cap()
}

// Backoff returns the strategy used between contended retries.
func (q *MPMC[T]) Backoff() backoff.Strategy {
	return q.backoff
}

// Stats returns activity counters. Full, Empty and ClaimRetries are only
// tracked when the queue was built WithStats.
func (q *MPMC[T]) Stats() Stats {
	s := Stats{
		Enqueued: q.prod.Get(),
		Dequeued: q.cons.Get(),
	}
	if q.stats != nil {
		s.Full = q.stats.full.Get()
		s.Empty = q.stats.empty.Get()
		s.ClaimRetries = q.stats.retries.Get()
	}
	return s
}

// Destroy releases the ring. Afterwards every operation returns
// ErrNotInitialized. Destroy must not run concurrently with any other
// method.
func (q *MPMC[T]) Destroy() {
	r := q.ring
	if r == nil {
		return
	}
	q.ring = nil
	r.Release()
}

func (q *MPMC[T]) countFull() {
	if q.stats != nil {
		q.stats.full.FetchAdd(1)
	}
}

func (q *MPMC[T]) countEmpty() {
	if q.stats != nil {
		q.stats.empty.FetchAdd(1)
	}
}

func (q *MPMC[T]) countRetry() {
	if q.stats != nil {
		q.stats.retries.FetchAdd(1)
	}
}
