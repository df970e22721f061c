// Package harness drives producer/consumer workloads through a queue and
// checks that nothing was lost, duplicated or reordered.
//
// Every value a producer enqueues is unique: the producer id in the high
// 32 bits and a per-producer sequence number in the low 32 bits. That is
// enough to verify multiset equality and per-producer order without
// storing the values themselves.
package harness

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/randomizedcoder/mpmc-queue/internal/backoff"
	"github.com/randomizedcoder/mpmc-queue/internal/cancel"
	"github.com/randomizedcoder/mpmc-queue/internal/queue"
)

// Implementation names accepted by NewTarget.
const (
	ImplMPMC    = "mpmc"
	ImplChannel = "channel"
)

var (
	// ErrInvalidConfig is returned for a Config that cannot be run.
	ErrInvalidConfig = errors.New("harness: invalid config")

	// ErrVerification is returned when verification finds lost,
	// duplicated or reordered values.
	ErrVerification = errors.New("harness: verification failed")
)

// Target is the queue under test.
type Target = queue.Queue[uint64]

// Config describes one workload.
type Config struct {
	Impl        string `json:"impl"`
	Producers   int    `json:"producers"`
	Consumers   int    `json:"consumers"`
	PerProducer int    `json:"per_producer"`
	Capacity    int    `json:"capacity"`
	Backoff     string `json:"backoff"`
	SlotLocking bool   `json:"slot_locking"`
	Verify      bool   `json:"verify"`
}

// Validate reports whether the config can be run.
func (c Config) Validate() error {
	switch {
	case c.Producers < 1:
		return fmt.Errorf("%w: producers must be >= 1, got %d", ErrInvalidConfig, c.Producers)
	case c.Consumers < 1:
		return fmt.Errorf("%w: consumers must be >= 1, got %d", ErrInvalidConfig, c.Consumers)
	case c.PerProducer < 1 || int64(c.PerProducer) > math.MaxUint32:
		return fmt.Errorf("%w: per-producer count out of range: %d", ErrInvalidConfig, c.PerProducer)
	case c.Capacity < 1:
		return fmt.Errorf("%w: capacity must be >= 1, got %d", ErrInvalidConfig, c.Capacity)
	}
	return nil
}

// Total returns the number of values the workload moves.
func (c Config) Total() int64 {
	return int64(c.Producers) * int64(c.PerProducer)
}

// Result is the outcome of one Run.
type Result struct {
	Config
	Started    time.Time     `json:"started"`
	Duration   time.Duration `json:"duration_ns"`
	Items      int64         `json:"items"`
	NsPerOp    float64       `json:"ns_per_op"`
	OpsPerSec  float64       `json:"ops_per_sec"`
	Verified   bool          `json:"verified"`
	Lost       int64         `json:"lost"`
	Duplicated int64         `json:"duplicated"`
	Reordered  int64         `json:"reordered"`
}

// NewTarget builds the queue named by cfg.Impl.
func NewTarget(cfg Config) (Target, error) {
	switch cfg.Impl {
	case ImplMPMC, "":
		strategy := backoff.Pause
		if cfg.Backoff != "" {
			s, err := backoff.Parse(cfg.Backoff)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
			}
			strategy = s
		}
		opts := []queue.Option{queue.WithBackoff(strategy)}
		if cfg.SlotLocking {
			opts = append(opts, queue.WithSlotLocking())
		}
		q, err := queue.New[uint64](cfg.Capacity, opts...)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		return q, nil
	case ImplChannel:
		return queue.NewChannel[uint64](cfg.Capacity), nil
	default:
		return nil, fmt.Errorf("%w: unknown impl %q", ErrInvalidConfig, cfg.Impl)
	}
}

// Encode packs a producer id and sequence number into one value.
func Encode(producer, seq int) uint64 {
	return uint64(producer)<<32 | uint64(uint32(seq))
}

// Decode reverses Encode.
func Decode(v uint64) (producer, seq int) {
	return int(v >> 32), int(uint32(v))
}

// Run executes the workload against q. It returns when every value has
// been consumed or ctx is done; in the latter case the partial Result is
// returned with ctx.Err().
func Run(ctx context.Context, cfg Config, q Target) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	total := cfg.Total()
	var received atomic.Int64
	var counts []atomic.Uint32
	var reordered atomic.Int64
	if cfg.Verify {
		counts = make([]atomic.Uint32, total)
	}

	// workers poll stopped on every failed attempt
	stopped := cancel.NewAtomic()
	stop := stopped.Bind(ctx)
	defer stop()

	res := Result{Config: cfg, Started: time.Now()}
	var wg sync.WaitGroup

	for c := 0; c < cfg.Consumers; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var last []int
			if cfg.Verify {
				last = make([]int, cfg.Producers)
				for i := range last {
					last[i] = -1
				}
			}
			for received.Load() < total {
				v, ok := q.Pop()
				if !ok {
					if stopped.Done() {
						return
					}
					runtime.Gosched()
					continue
				}
				received.Add(1)
				if !cfg.Verify {
					continue
				}
				p, seq := Decode(v)
				if p >= cfg.Producers || seq >= cfg.PerProducer {
					// not something any producer sent
					reordered.Add(1)
					continue
				}
				if seq <= last[p] {
					reordered.Add(1)
				}
				last[p] = seq
				counts[int64(p)*int64(cfg.PerProducer)+int64(seq)].Add(1)
			}
		}()
	}

	for p := 0; p < cfg.Producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < cfg.PerProducer; i++ {
				for !q.Push(Encode(p, i)) {
					if stopped.Done() {
						return
					}
					runtime.Gosched()
				}
			}
		}(p)
	}

	wg.Wait()
	res.Duration = time.Since(res.Started)
	res.Items = received.Load()
	if res.Items > 0 {
		res.NsPerOp = float64(res.Duration.Nanoseconds()) / float64(res.Items)
		res.OpsPerSec = float64(res.Items) / res.Duration.Seconds()
	}

	if err := ctx.Err(); err != nil && res.Items < total {
		return res, err
	}

	if cfg.Verify {
		for i := range counts {
			switch n := counts[i].Load(); {
			case n == 0:
				res.Lost++
			case n > 1:
				res.Duplicated += int64(n - 1)
			}
		}
		res.Reordered = reordered.Load()
		res.Verified = res.Lost == 0 && res.Duplicated == 0 && res.Reordered == 0
		if !res.Verified {
			return res, fmt.Errorf("%w: lost=%d duplicated=%d reordered=%d",
				ErrVerification, res.Lost, res.Duplicated, res.Reordered)
		}
	}
	return res, nil
}
