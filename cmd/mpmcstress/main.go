// Command mpmcstress repeatedly runs verified producer/consumer rounds
// against the MPMC queue and exits non-zero on the first lost, duplicated
// or reordered item.
//
// Usage:
//
//	go run ./cmd/mpmcstress -duration 30s -producers 8 -consumers 8 -size 16
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/randomizedcoder/mpmc-queue/internal/backoff"
	"github.com/randomizedcoder/mpmc-queue/internal/harness"
)

func main() {
	log.SetFlags(log.Ltime | log.Lmicroseconds)
	log.SetPrefix("mpmcstress: ")

	duration := flag.Duration("duration", 10*time.Second, "how long to keep running rounds")
	perProducer := flag.Int("n", 100_000, "items per producer per round")
	size := flag.Int("size", 16, "queue size; small sizes force constant full/empty contention")
	producers := flag.Int("producers", 8, "number of producer goroutines")
	consumers := flag.Int("consumers", 8, "number of consumer goroutines")
	strategy := backoff.Yield
	flag.Var(&strategy, "backoff", "backoff strategy: pause or yield")
	slotLock := flag.Bool("slotlock", false, "enable per-slot guards")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *duration)
	defer cancel()

	cfg := harness.Config{
		Impl:        harness.ImplMPMC,
		Producers:   *producers,
		Consumers:   *consumers,
		PerProducer: *perProducer,
		Capacity:    *size,
		Backoff:     strategy.String(),
		SlotLocking: *slotLock,
		Verify:      true,
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	var rounds, items int64
	start := time.Now()
	for ctx.Err() == nil {
		q, err := harness.NewTarget(cfg)
		if err != nil {
			log.Fatalf("%v", err)
		}
		res, err := harness.Run(ctx, cfg, q)
		switch {
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			// the last round was cut short; nothing to verify
		case err != nil:
			log.Fatalf("round %d: %v", rounds+1, err)
		default:
			rounds++
			items += res.Items
			log.Printf("round %d ok: %d items in %v (%.2f M ops/sec)",
				rounds, res.Items, res.Duration, res.OpsPerSec/1e6)
		}
	}

	log.Printf("done: %d rounds, %d items, no loss or duplication in %v",
		rounds, items, time.Since(start).Round(time.Millisecond))
}
