// Command mpmcbench measures producer/consumer throughput of the MPMC queue
// against a buffered channel.
//
// Usage:
//
//	go run ./cmd/mpmcbench -producers 4 -consumers 4 -n 1000000 -size 1024
//	go run ./cmd/mpmcbench -impl mpmc -backoff yield -verify -json
//	go run ./cmd/mpmcbench -db bench.db -history 10
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sugawarayuuta/sonnet"

	"github.com/randomizedcoder/mpmc-queue/internal/backoff"
	"github.com/randomizedcoder/mpmc-queue/internal/harness"
	"github.com/randomizedcoder/mpmc-queue/internal/results"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("mpmcbench: ")

	impl := flag.String("impl", "all", "implementation: mpmc, channel or all")
	perProducer := flag.Int("n", 1_000_000, "items per producer")
	size := flag.Int("size", 1024, "queue size")
	producers := flag.Int("producers", 4, "number of producer goroutines")
	consumers := flag.Int("consumers", 4, "number of consumer goroutines")
	strategy := backoff.Pause
	flag.Var(&strategy, "backoff", "mpmc backoff strategy: pause or yield")
	slotLock := flag.Bool("slotlock", false, "enable per-slot guards on the mpmc queue")
	verify := flag.Bool("verify", false, "check for lost, duplicated or reordered items")
	asJSON := flag.Bool("json", false, "print results as JSON lines")
	dbPath := flag.String("db", "", "record results in this SQLite database")
	history := flag.Int("history", 0, "print the last N recorded results from -db and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store *results.Store
	if *dbPath != "" {
		var err error
		store, err = results.Open(*dbPath)
		if err != nil {
			log.Fatalf("%v", err)
		}
		defer store.Close()
	}

	if *history > 0 {
		if store == nil {
			log.Fatalf("-history requires -db")
		}
		filter := *impl
		if filter == "all" {
			filter = ""
		}
		past, err := store.Recent(ctx, filter, *history)
		if err != nil {
			log.Fatalf("%v", err)
		}
		for _, r := range past {
			emit(r, *asJSON)
		}
		return
	}

	impls := []string{harness.ImplChannel, harness.ImplMPMC}
	if *impl != "all" {
		impls = []string{*impl}
	}

	if !*asJSON {
		fmt.Printf("Benchmarking MPMC queue (%d producers x %d items, %d consumers, size=%d)\n",
			*producers, *perProducer, *consumers, *size)
		fmt.Println("─────────────────────────────────────────────────")
	}

	var runs []harness.Result
	for _, name := range impls {
		cfg := harness.Config{
			Impl:        name,
			Producers:   *producers,
			Consumers:   *consumers,
			PerProducer: *perProducer,
			Capacity:    *size,
			Backoff:     strategy.String(),
			SlotLocking: *slotLock,
			Verify:      *verify,
		}
		if name != harness.ImplMPMC {
			cfg.Backoff = ""
			cfg.SlotLocking = false
		}

		q, err := harness.NewTarget(cfg)
		if err != nil {
			log.Fatalf("%v", err)
		}
		res, err := harness.Run(ctx, cfg, q)
		if err != nil {
			log.Fatalf("%s: %v", name, err)
		}
		if store != nil {
			if _, err := store.Record(ctx, res); err != nil {
				log.Printf("record %s: %v", name, err)
			}
		}
		emit(res, *asJSON)
		runs = append(runs, res)
	}

	if len(runs) == 2 && !*asJSON {
		ch, mp := runs[0], runs[1]
		if mp.NsPerOp < ch.NsPerOp {
			fmt.Printf("\n  Speedup:  %.2fx (MPMC faster)\n", ch.NsPerOp/mp.NsPerOp)
		} else {
			fmt.Printf("\n  Speedup:  %.2fx (Channel faster)\n", mp.NsPerOp/ch.NsPerOp)
		}
	}
}

func emit(r harness.Result, asJSON bool) {
	if asJSON {
		b, err := sonnet.Marshal(r)
		if err != nil {
			log.Fatalf("encode result: %v", err)
		}
		if _, err := os.Stdout.Write(append(b, '\n')); err != nil {
			log.Fatalf("write result: %v", err)
		}
		return
	}

	fmt.Printf("\n  %-8s %v (%.2f ns/op, %.2f M ops/sec)\n",
		r.Impl, r.Duration, r.NsPerOp, r.OpsPerSec/1e6)
	if r.Impl == harness.ImplMPMC {
		fmt.Printf("           backoff=%s slotlock=%v\n", r.Backoff, r.SlotLocking)
	}
	if r.Verify {
		fmt.Printf("           verified=%v lost=%d duplicated=%d reordered=%d\n",
			r.Verified, r.Lost, r.Duplicated, r.Reordered)
	}
}
