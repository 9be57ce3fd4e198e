package engine

import "time"

// Clock abstracts time for the polling state machine so tests can drive it
// with a simulated clock instead of real sleeps.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that delivers once d has elapsed.
	After(d time.Duration) <-chan time.Time
}

// WallClock returns the real-time clock.
func WallClock() Clock {
	return wallClock{}
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

func (wallClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
