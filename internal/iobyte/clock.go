package iobyte

import (
	"sync"
	"time"
)

// Clock is the injected monotonic millisecond clock every timer in the
// stack (piggyback ACK, ARQ retransmit) is driven from.
type Clock interface {
	NowMS() uint64
}

// SystemClock is a Clock backed by the real wall clock.
type SystemClock struct{ start time.Time }

// NewSystemClock returns a Clock anchored to the current time.
func NewSystemClock() *SystemClock { return &SystemClock{start: time.Now()} }

// NowMS returns milliseconds elapsed since the clock was created.
func (c *SystemClock) NowMS() uint64 { return uint64(time.Since(c.start).Milliseconds()) }

// FakeClock is a manually advanced Clock for deterministic tests of
// timeout-driven behavior (ARQ retransmit, piggyback timer).
type FakeClock struct {
	mu  sync.Mutex
	now uint64
}

// NewFakeClock returns a FakeClock starting at t=0.
func NewFakeClock() *FakeClock { return &FakeClock{} }

// NowMS returns the current simulated time.
func (c *FakeClock) NowMS() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the simulated clock forward by deltaMS.
func (c *FakeClock) Advance(deltaMS uint64) {
	c.mu.Lock()
	c.now += deltaMS
	c.mu.Unlock()
}
