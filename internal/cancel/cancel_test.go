package cancel_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/randomizedcoder/mpmc-queue/internal/cancel"
	"github.com/randomizedcoder/mpmc-queue/internal/queue"
)

func TestAtomicCanceler(t *testing.T) {
	c := cancel.NewAtomic()

	if c.Done() {
		t.Error("expected Done() = false before Cancel()")
	}

	c.Cancel()
	if !c.Done() {
		t.Error("expected Done() = true after Cancel()")
	}

	// idempotent
	c.Cancel()
	if !c.Done() {
		t.Error("expected Done() = true after second Cancel()")
	}

	c.Reset()
	if c.Done() {
		t.Error("expected Done() = false after Reset()")
	}
}

func TestAtomicCanceler_Bind(t *testing.T) {
	ctx, cancelCtx := context.WithCancel(context.Background())
	c := cancel.NewAtomic()
	stop := c.Bind(ctx)
	defer stop()

	if c.Done() {
		t.Fatal("expected Done() = false before the context is cancelled")
	}

	cancelCtx()

	// the AfterFunc runs on its own goroutine
	deadline := time.Now().Add(time.Second)
	for !c.Done() {
		if time.Now().After(deadline) {
			t.Fatal("canceler not flipped after context cancel")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestAtomicCanceler_BindStop(t *testing.T) {
	ctx, cancelCtx := context.WithCancel(context.Background())
	c := cancel.NewAtomic()
	stop := c.Bind(ctx)

	if !stop() {
		t.Fatal("expected stop() = true before the context is cancelled")
	}
	cancelCtx()
	time.Sleep(10 * time.Millisecond)

	if c.Done() {
		t.Error("expected Done() = false after stop() detached the canceler")
	}
}

func TestContextCanceler(t *testing.T) {
	c := cancel.NewContext(context.Background())

	if c.Done() {
		t.Error("expected Done() = false before Cancel()")
	}

	c.Cancel()
	if !c.Done() {
		t.Error("expected Done() = true after Cancel()")
	}

	c.Cancel()
	if !c.Done() {
		t.Error("expected Done() = true after second Cancel()")
	}
}

func TestContextCanceler_Parent(t *testing.T) {
	parent, cancelParent := context.WithCancel(context.Background())
	c := cancel.NewContext(parent)

	cancelParent()
	if !c.Done() {
		t.Error("expected Done() = true after the parent is cancelled")
	}
}

// The derived context stops a consumer blocked in DequeueWait.
func TestContextCanceler_StopsDequeueWait(t *testing.T) {
	c := cancel.NewContext(context.Background())
	q := queue.MustNew[int](4)

	errc := make(chan error, 1)
	go func() {
		_, err := q.DequeueWait(c.Context())
		errc <- err
	}()

	time.Sleep(5 * time.Millisecond)
	c.Cancel()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("DequeueWait did not return after Cancel()")
	}
}

func TestCancelerInterface(t *testing.T) {
	testCases := []struct {
		name string
		c    cancel.Canceler
	}{
		{"Context", cancel.NewContext(context.Background())},
		{"Atomic", cancel.NewAtomic()},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.c.Done() {
				t.Error("expected Done() = false initially")
			}

			tc.c.Cancel()

			if !tc.c.Done() {
				t.Error("expected Done() = true after Cancel()")
			}
		})
	}
}
