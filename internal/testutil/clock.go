// Package testutil provides deterministic helpers for tests: a simulated
// clock for driving the polling state machine without real sleeps, and an
// in-process stub engine that mechanically honors the engine's file-based
// contract.
package testutil

import (
	"sync"
	"time"
)

// SimClock is a manually advanced clock implementing engine.Clock.
//
// Now returns the simulated time; After registers a waiter that fires when
// Advance moves the clock past its due time. All methods are safe for
// concurrent use.
type SimClock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []simWaiter
}

type simWaiter struct {
	due time.Time
	ch  chan time.Time
}

// NewSimClock creates a simulated clock starting at the given instant.
func NewSimClock(start time.Time) *SimClock {
	return &SimClock{now: start}
}

// Now returns the current simulated time.
func (c *SimClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// After returns a channel that delivers once the clock has been advanced by
// at least d. A non-positive d fires on the next Advance call (or
// immediately if the clock never moves backwards, matching time.After's
// fire-at-or-after semantics).
func (c *SimClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan time.Time, 1)
	due := c.now.Add(d)
	if !due.After(c.now) {
		ch <- c.now
		return ch
	}
	c.waiters = append(c.waiters, simWaiter{due: due, ch: ch})
	return ch
}

// Advance moves the simulated time forward by d and fires every waiter whose
// due time has been reached.
func (c *SimClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)

	remaining := c.waiters[:0]
	for _, w := range c.waiters {
		if !w.due.After(c.now) {
			w.ch <- c.now
		} else {
			remaining = append(remaining, w)
		}
	}
	c.waiters = remaining
}

// Waiters returns the number of registered, unfired waiters. Tests use this
// to synchronize with a goroutine that is about to block on After.
func (c *SimClock) Waiters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}
