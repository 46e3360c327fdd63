package testutil

import "sync"

// Clock is a resettable monotonic logical clock. The harness stamps every
// trace record with a sequence number from one Clock, so re-running the same
// scenario yields the same stamps.
type Clock struct {
	mu  sync.Mutex
	seq int64
}

// NewClock returns a clock starting at zero; the first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// Next increments the clock and returns the new sequence number.
func (c *Clock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Current returns the latest sequence number without advancing.
func (c *Clock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset rewinds the clock to zero so the next Next returns 1 again.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}
