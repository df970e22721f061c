package queue

import (
	"errors"
	"testing"
)

// startAt moves an empty queue's cursors and slot tags to start, as if
// start claims had already been made and consumed.
func startAt[T any](q *MPMC[T], start uint64) {
	q.prod.Set(start)
	q.cons.Set(start)
	for i := uint64(0); i < q.capacity; i++ {
		q.ring.Publish(start+i, start+i)
	}
}

// TestMPMC_CursorWraparound runs the queue across the 2^64 cursor boundary.
func TestMPMC_CursorWraparound(t *testing.T) {
	q := MustNew[int](4)
	startAt(q, ^uint64(0)-5)

	next, want := 0, 0
	for round := 0; round < 8; round++ {
		for i := 0; i < 3; i++ {
			if err := q.Enqueue(next); err != nil {
				t.Fatalf("round %d: Enqueue(%d): %v", round, next, err)
			}
			next++
		}
		if q.Size() != 3 {
			t.Fatalf("round %d: expected Size() = 3, got %d", round, q.Size())
		}
		for i := 0; i < 3; i++ {
			got, err := q.Dequeue()
			if err != nil {
				t.Fatalf("round %d: Dequeue(): %v", round, err)
			}
			if got != want {
				t.Fatalf("round %d: FIFO violation: expected %d, got %d", round, want, got)
			}
			want++
		}
	}

	if q.prod.Get() >= ^uint64(0)-5 {
		t.Fatalf("producer cursor did not wrap: %d", q.prod.Get())
	}
}

func TestMPMC_CursorWraparound_Full(t *testing.T) {
	q := MustNew[int](4)
	startAt(q, ^uint64(0)-1)

	for i := 0; i < 4; i++ {
		if err := q.Enqueue(i); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}
	if err := q.Enqueue(4); !errors.Is(err, ErrFull) {
		t.Fatalf("expected ErrFull across wrap, got %v", err)
	}
	if !q.Full() {
		t.Error("expected Full() = true across wrap")
	}
}

// TestMPMC_ClaimKeepsWindow checks the cursor invariant directly after
// interleaved claims.
func TestMPMC_ClaimKeepsWindow(t *testing.T) {
	q := MustNew[int](2)
	q.Push(1)
	q.Push(2)
	q.Push(3)
	q.Pop()
	q.Pop()
	q.Pop()

	p, c := q.prod.Get(), q.cons.Get()
	if c > p || p-c > q.capacity {
		t.Fatalf("cursor window broken: prod=%d cons=%d", p, c)
	}
	if p != 2 || c != 2 {
		t.Errorf("unexpected cursors: prod=%d cons=%d", p, c)
	}
}

func TestMPMC_SlotTagsAdvancePerLap(t *testing.T) {
	q := MustNew[int](2)
	q.Push(10)
	if tag := q.ring.Tag(0); tag != 1 {
		t.Errorf("after fill: expected tag 1, got %d", tag)
	}
	q.Pop()
	if tag := q.ring.Tag(0); tag != 2 {
		t.Errorf("after drain: expected tag 2 (next lap), got %d", tag)
	}
}
