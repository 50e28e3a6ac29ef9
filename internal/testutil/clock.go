// Package testutil provides deterministic fixtures for kernel and
// harness tests: a fixed logical clock and canned script/context
// builders. Same fixture, same inputs, byte-identical op traces.
package testutil

import (
	"sync"
	"time"
)

// BaseTime is the logical origin all deterministic tests evaluate from.
var BaseTime = time.Date(2026, time.March, 14, 15, 0, 0, 0, time.UTC)

// FixedClock is a settable logical clock for tests.
//
// Unlike wall time, a FixedClock only moves when a test advances it, so
// elapsed-time math (audio positions, scheduled offsets) is exact.
// Thread-safety: all methods are safe for concurrent use.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock creates a clock starting at BaseTime.
func NewFixedClock() *FixedClock {
	return &FixedClock{now: BaseTime}
}

// NewFixedClockAt creates a clock starting at a specific time.
func NewFixedClockAt(at time.Time) *FixedClock {
	return &FixedClock{now: at}
}

// Now returns the current logical time.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new time.
func (c *FixedClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}
