package testutil

import (
	"sync"
	"time"
)

// DefaultStart is the default FixedClock start: 2025-01-01T00:00:00Z
// (unix millis 1735689600000).
var DefaultStart = time.UnixMilli(1735689600000).UTC()

// FixedClock is a wall clock that only moves when told to.
//
// It satisfies engine.Clock. The same scenario run against a FixedClock
// stamps identical timestamps and verification codes every time.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock creates a clock reading start. A zero start uses
// DefaultStart.
func NewFixedClock(start time.Time) *FixedClock {
	if start.IsZero() {
		start = DefaultStart
	}
	return &FixedClock{now: start.UTC()}
}

// Now returns the current reading.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new reading.
func (c *FixedClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t.UTC()
}
