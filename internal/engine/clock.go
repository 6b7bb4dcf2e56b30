package engine

import "sync/atomic"

// Clock is the registry's logical round counter.
//
// Every Step stamps its throws with the round number from Next, so traces
// and stored runs are ordered by rounds, never by wall-clock time.
//
// Thread-safety: Clock is safe for concurrent reads (atomic operations), so a
// progress reporter may call Current while the owning goroutine steps.
type Clock struct {
	round atomic.Int64
}

// NewClock creates a clock at round 0 (nothing executed yet).
func NewClock() *Clock {
	return &Clock{}
}

// Next advances to the next round and returns its 1-based number.
func (c *Clock) Next() int64 {
	return c.round.Add(1)
}

// Current returns the number of rounds started so far.
func (c *Clock) Current() int64 {
	return c.round.Load()
}
