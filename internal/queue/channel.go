package queue

// ChannelQueue wraps a buffered channel as a Queue.
//
// This is the standard library approach and the baseline MPMC is measured
// against. Each operation is a non-blocking channel send or receive via
// select with default.
type ChannelQueue[T any] struct {
	ch chan T
}

// NewChannel creates a ChannelQueue with the specified buffer size.
func NewChannel[T any](size int) *ChannelQueue[T] {
	return &ChannelQueue[T]{
		ch: make(chan T, size),
	}
}

// Enqueue adds v, returning ErrFull if the buffer is full.
func (q *ChannelQueue[T]) Enqueue(v T) error {
	select {
	case q.ch <- v:
		return nil
	default:
		return ErrFull
	}
}

// Dequeue removes a value, returning ErrEmpty if the buffer is empty.
func (q *ChannelQueue[T]) Dequeue() (T, error) {
	select {
	case v := <-q.ch:
		return v, nil
	default:
		var zero T
		return zero, ErrEmpty
	}
}

// Push adds an item to the queue.
// Returns false if the queue is full (non-blocking).
func (q *ChannelQueue[T]) Push(v T) bool {
	return q.Enqueue(v) == nil
}

// Pop removes and returns an item from the queue.
// Returns false if the queue is empty (non-blocking).
func (q *ChannelQueue[T]) Pop() (T, bool) {
	v, err := q.Dequeue()
	return v, err == nil
}

// Len returns the current number of items in the queue.
func (q *ChannelQueue[T]) Len() int {
	return len(q.ch)
}

// Cap returns the capacity of the queue.
func (q *ChannelQueue[T]) Cap() int {
	return cap(q.ch)
}
