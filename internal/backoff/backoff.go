// Package backoff provides the busy-wait strategies used between failed
// claim attempts.
//
// This package offers two strategies:
//   - Pause: spin on the CPU's pause hint, never leaving the core
//   - Yield: hand the processor back to the Go scheduler
//
// Pause gives the lowest hand-off latency when every goroutine has a core
// of its own. Yield is the better choice when goroutines outnumber
// GOMAXPROCS, because a spinning waiter may be holding up the very
// goroutine it is waiting for.
package backoff

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	_ "unsafe" // Required for go:linkname
)

// procyield executes the architecture's spin-wait hint (PAUSE on amd64,
// YIELD on arm64) the given number of times.
//
//go:linkname procyield runtime.procyield
func procyield(cycles uint32)

// PauseCycles is the number of pause hints issued per Wait by Pause.
const PauseCycles = 30

// ErrUnknownStrategy is returned by Parse for an unrecognised name.
var ErrUnknownStrategy = errors.New("backoff: unknown strategy")

// Strategy selects how a goroutine waits before retrying.
type Strategy uint8

const (
	// Pause spins PauseCycles pause hints.
	Pause Strategy = iota
	// Yield calls runtime.Gosched.
	Yield
)

// Wait performs one backoff step.
func (s Strategy) Wait() {
	switch s {
	case Yield:
		runtime.Gosched()
	default:
		procyield(PauseCycles)
	}
}

func (s Strategy) String() string {
	switch s {
	case Pause:
		return "pause"
	case Yield:
		return "yield"
	default:
		return fmt.Sprintf("Strategy(%d)", uint8(s))
	}
}

// Parse returns the Strategy named by s ("pause" or "yield", case-insensitive).
func Parse(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pause":
		return Pause, nil
	case "yield":
		return Yield, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

// Set implements flag.Value.
func (s *Strategy) Set(v string) error {
	parsed, err := Parse(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
