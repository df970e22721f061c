package queue

// EnqueueBatch adds every value in vs as one contiguous run.
//
// The run is claimed with a single atomic step and only if all of it fits,
// so either every value is enqueued or none is. Returns ErrFull if the run
// does not currently fit and ErrBatchTooLarge if it could never fit.
// An empty vs is a no-op.
func (q *MPMC[T]) EnqueueBatch(vs []T) error {
	r := q.ring
	if r == nil {
		return ErrNotInitialized
	}
	n := uint64(len(vs))
	if n == 0 {
		return nil
	}
	if n > q.capacity {
		return ErrBatchTooLarge
	}
	p, err := q.claimProduce(n)
	if err != nil {
		return err
	}
	for i, v := range vs {
		q.fill(r, p+uint64(i), v)
	}
	return nil
}

// DequeueBatch fills dst with up to len(dst) values and returns how many
// were taken. The values are a contiguous run in claim order. Returns
// ErrEmpty if nothing was available.
func (q *MPMC[T]) DequeueBatch(dst []T) (int, error) {
	r := q.ring
	if r == nil {
		return 0, ErrNotInitialized
	}
	if len(dst) == 0 {
		return 0, nil
	}
	c, n, err := q.claimConsume(uint64(len(dst)))
	if err != nil {
		return 0, err
	}
	for i := uint64(0); i < n; i++ {
		dst[i] = q.drain(r, c+i)
	}
	return int(n), nil
}
