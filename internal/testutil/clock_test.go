package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimClock_Now(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewSimClock(start)

	assert.Equal(t, start, c.Now())
	c.Advance(time.Minute)
	assert.Equal(t, start.Add(time.Minute), c.Now())
}

func TestSimClock_AfterFiresOnAdvance(t *testing.T) {
	c := NewSimClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	ch := c.After(time.Second)
	require.Equal(t, 1, c.Waiters())

	select {
	case <-ch:
		t.Fatal("waiter fired before the clock advanced")
	default:
	}

	c.Advance(500 * time.Millisecond)
	select {
	case <-ch:
		t.Fatal("waiter fired before its due time")
	default:
	}

	c.Advance(500 * time.Millisecond)
	select {
	case now := <-ch:
		assert.Equal(t, c.Now(), now)
	default:
		t.Fatal("waiter did not fire at its due time")
	}
	assert.Zero(t, c.Waiters())
}

func TestSimClock_NonPositiveDurationFiresImmediately(t *testing.T) {
	c := NewSimClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	select {
	case <-c.After(0):
	default:
		t.Fatal("zero-duration waiter did not fire immediately")
	}
	select {
	case <-c.After(-time.Second):
	default:
		t.Fatal("negative-duration waiter did not fire immediately")
	}
}

func TestSimClock_MultipleWaiters(t *testing.T) {
	c := NewSimClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	early := c.After(time.Second)
	late := c.After(3 * time.Second)
	require.Equal(t, 2, c.Waiters())

	c.Advance(2 * time.Second)
	select {
	case <-early:
	default:
		t.Fatal("earlier waiter did not fire")
	}
	select {
	case <-late:
		t.Fatal("later waiter fired early")
	default:
	}
	assert.Equal(t, 1, c.Waiters())

	c.Advance(time.Second)
	select {
	case <-late:
	default:
		t.Fatal("later waiter did not fire")
	}
}
