// Package padded provides atomic scalars that occupy their own cache lines.
//
// Two hot counters placed next to each other in memory share a cache line,
// so a write by one core invalidates the line for every core reading the
// other counter (false sharing). Uint64 surrounds its value with
// cpu.CacheLinePad on both sides so that never happens.
//
// # Memory ordering
//
// Every operation in sync/atomic is sequentially consistent. The method
// names below still state the weakest ordering each call site relies on,
// so the queue code reads the same way its correctness argument does:
//   - Get: acquire load
//   - Set: release store
//   - SetFullFence: release store followed by a full fence
//   - CompareAndSwap: release on success, relaxed refresh on failure
//   - FetchAdd: acquire-release read-modify-write
package padded

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// Uint64 is a cache-line isolated atomic uint64.
//
// The zero value is ready to use and holds 0. A Uint64 must not be copied
// after first use.
type Uint64 struct {
	_ cpu.CacheLinePad
	v atomic.Uint64
	_ cpu.CacheLinePad
}

// Get loads the value. Everything written before the most recent Set,
// CompareAndSwap or FetchAdd by any goroutine is visible afterwards.
func (u *Uint64) Get() uint64 {
	return u.v.Load()
}

// Set stores v. A later Get on another goroutine observes all writes this
// goroutine made before calling Set.
func (u *Uint64) Set(v uint64) {
	u.v.Store(v)
}

// SetFullFence stores v. It is intended for construction, before the
// owner is shared.
//
// Store is already sequentially consistent in the Go memory model, so the
// trailing Add(0) adds no ordering; it only keeps the explicit full fence
// of the cursor protocol visible at this call site.
func (u *Uint64) SetFullFence(v uint64) {
	u.v.Store(v)
	u.v.Add(0)
}

// CompareAndSwap stores next if the current value equals *expected.
// On failure *expected is refreshed with the observed value so the caller
// can retry without another Get.
func (u *Uint64) CompareAndSwap(expected *uint64, next uint64) bool {
	if u.v.CompareAndSwap(*expected, next) {
		return true
	}
	*expected = u.v.Load()
	return false
}

// FetchAdd adds n and returns the value held before the addition.
// Concurrent callers always observe distinct pre-update values.
func (u *Uint64) FetchAdd(n uint64) uint64 {
	return u.v.Add(n) - n
}
