package testutil

import (
	"sync"
	"time"
)

// Epoch is the first time a StepClock reports.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// StepClock is a deterministic clock for tests: every call to Now advances
// it by a fixed step, so any interval bracketed by two consecutive reads is
// exactly one step long.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type StepClock struct {
	mu    sync.Mutex
	now   time.Time
	step  time.Duration
	reads int64
}

// NewStepClock creates a clock starting at Epoch.
//
// The first call to Now() returns Epoch + step.
func NewStepClock(step time.Duration) *StepClock {
	return &StepClock{now: Epoch, step: step}
}

// Now advances the clock by one step and returns the new time.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	c.reads++
	return c.now
}

// Reads returns the number of calls to Now.
func (c *StepClock) Reads() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// Reset rewinds the clock to Epoch.
func (c *StepClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = Epoch
	c.reads = 0
}

// FrozenClock never advances. It models a timer too coarse to resolve any
// interval.
type FrozenClock struct{}

// Now always returns Epoch.
func (FrozenClock) Now() time.Time { return Epoch }
