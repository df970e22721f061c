package queue_test

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/randomizedcoder/mpmc-queue/internal/backoff"
	"github.com/randomizedcoder/mpmc-queue/internal/harness"
	"github.com/randomizedcoder/mpmc-queue/internal/queue"
)

var mpmcVariants = []struct {
	name string
	opts []queue.Option
}{
	{"Pause", nil},
	{"Yield", []queue.Option{queue.WithBackoff(backoff.Yield)}},
	{"SlotLocking", []queue.Option{queue.WithSlotLocking()}},
}

// TestMPMC_ConcurrentProducers_NoLoss has N producers fill a queue large
// enough for everything, then drains it from one goroutine and checks
// multiset equality.
// Run with: go test -race ./internal/queue
func TestMPMC_ConcurrentProducers_NoLoss(t *testing.T) {
	const producers = 8
	const perProducer = 2000

	for _, v := range mpmcVariants {
		t.Run(v.name, func(t *testing.T) {
			q := queue.MustNew[uint64](producers*perProducer, v.opts...)

			var wg sync.WaitGroup
			for p := 0; p < producers; p++ {
				wg.Add(1)
				go func(p int) {
					defer wg.Done()
					for i := 0; i < perProducer; i++ {
						if err := q.Enqueue(harness.Encode(p, i)); err != nil {
							t.Errorf("producer %d: Enqueue(%d): %v", p, i, err)
							return
						}
					}
				}(p)
			}
			wg.Wait()

			if q.Size() != producers*perProducer {
				t.Fatalf("expected Size() = %d, got %d", producers*perProducer, q.Size())
			}

			seen := make(map[uint64]int, producers*perProducer)
			for {
				val, ok := q.Pop()
				if !ok {
					break
				}
				seen[val]++
			}

			if len(seen) != producers*perProducer {
				t.Fatalf("expected %d distinct values, got %d", producers*perProducer, len(seen))
			}
			for val, n := range seen {
				if n != 1 {
					p, i := harness.Decode(val)
					t.Errorf("value (%d,%d) dequeued %d times", p, i, n)
				}
			}
		})
	}
}

// TestMPMC_ConcurrentProducersConsumers runs producers and consumers
// against a small queue so Full and Empty are hit constantly. Every value
// must arrive exactly once, and each consumer must see each producer's
// values in increasing order.
func TestMPMC_ConcurrentProducersConsumers(t *testing.T) {
	const producers = 4
	const consumers = 4
	const perProducer = 5000
	const total = producers * perProducer

	for _, v := range mpmcVariants {
		t.Run(v.name, func(t *testing.T) {
			q := queue.MustNew[uint64](16, v.opts...)

			var received atomic.Int64
			counts := make([]atomic.Int32, total)

			var wg sync.WaitGroup
			for p := 0; p < producers; p++ {
				wg.Add(1)
				go func(p int) {
					defer wg.Done()
					for i := 0; i < perProducer; i++ {
						for !q.Push(harness.Encode(p, i)) {
							runtime.Gosched()
						}
					}
				}(p)
			}

			for c := 0; c < consumers; c++ {
				wg.Add(1)
				go func(c int) {
					defer wg.Done()
					last := make([]int, producers)
					for i := range last {
						last[i] = -1
					}
					for received.Load() < total {
						val, ok := q.Pop()
						if !ok {
							runtime.Gosched()
							continue
						}
						p, i := harness.Decode(val)
						if i <= last[p] {
							t.Errorf("consumer %d: producer %d order violated: %d after %d", c, p, i, last[p])
						}
						last[p] = i
						counts[p*perProducer+i].Add(1)
						received.Add(1)
					}
				}(c)
			}
			wg.Wait()

			for idx := range counts {
				if n := counts[idx].Load(); n != 1 {
					t.Errorf("value (%d,%d) received %d times", idx/perProducer, idx%perProducer, n)
				}
			}
			if !q.Empty() {
				t.Errorf("expected empty queue after drain, size %d", q.Size())
			}
		})
	}
}

// TestMPMC_ConcurrentBatches mixes batch and single operations.
func TestMPMC_ConcurrentBatches(t *testing.T) {
	const producers = 4
	const batches = 500
	const batchLen = 4
	const total = producers * batches * batchLen

	q := queue.MustNew[uint64](32)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			buf := make([]uint64, batchLen)
			for b := 0; b < batches; b++ {
				for i := range buf {
					buf[i] = harness.Encode(p, b*batchLen+i)
				}
				for q.EnqueueBatch(buf) != nil {
					runtime.Gosched()
				}
			}
		}(p)
	}

	var mu sync.Mutex
	seen := make(map[uint64]int, total)
	var received atomic.Int64
	for c := 0; c < 2; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dst := make([]uint64, 3)
			for received.Load() < total {
				n, err := q.DequeueBatch(dst)
				if err != nil {
					runtime.Gosched()
					continue
				}
				// a batch is one contiguous claim, so a producer's run stays ordered
				for i := 1; i < n; i++ {
					pa, sa := harness.Decode(dst[i-1])
					pb, sb := harness.Decode(dst[i])
					if pa == pb && sb <= sa {
						t.Errorf("order violated inside batch: %d after %d", sb, sa)
					}
				}
				mu.Lock()
				for _, v := range dst[:n] {
					seen[v]++
				}
				mu.Unlock()
				received.Add(int64(n))
			}
		}()
	}
	wg.Wait()

	if len(seen) != total {
		t.Fatalf("expected %d distinct values, got %d", total, len(seen))
	}
	for v, n := range seen {
		if n != 1 {
			t.Errorf("value %d received %d times", v, n)
		}
	}
}

// TestMPMC_SizeInvariant_Concurrent samples Size while the queue churns.
func TestMPMC_SizeInvariant_Concurrent(t *testing.T) {
	q := queue.MustNew[int](8)
	stop := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					q.Push(1)
				}
			}
		}()
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					q.Pop()
				}
			}
		}()
	}

	for i := 0; i < 20000; i++ {
		if n := q.Size(); n < 0 || n > q.Cap() {
			t.Errorf("Size() = %d outside [0, %d]", n, q.Cap())
			break
		}
	}
	close(stop)
	wg.Wait()
}
