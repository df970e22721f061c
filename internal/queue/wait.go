package queue

import (
	"context"
	"errors"
)

// EnqueueWait retries Enqueue until it succeeds or ctx is done, backing
// off between attempts with the queue's strategy. Only ErrFull is retried.
//
// Cancellation is only observed before a claim; once a slot is claimed the
// write always completes.
func (q *MPMC[T]) EnqueueWait(ctx context.Context, v T) error {
	for {
		err := q.Enqueue(v)
		if !errors.Is(err, ErrFull) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		q.backoff.Wait()
	}
}

// DequeueWait retries Dequeue until a value arrives or ctx is done.
// Only ErrEmpty is retried.
func (q *MPMC[T]) DequeueWait(ctx context.Context) (T, error) {
	for {
		v, err := q.Dequeue()
		if !errors.Is(err, ErrEmpty) {
			return v, err
		}
		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		default:
		}
		q.backoff.Wait()
	}
}
