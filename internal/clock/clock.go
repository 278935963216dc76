// Package clock abstracts wall-clock time so that elapsed-time logic in
// actions and checks can be driven deterministically in tests.
//
// Production code should take a Clock and default to Real(); tests use
// NewManual and Advance it between ticks.
package clock

import "time"

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual system time.
type RealClock struct{}

// Now returns the current system time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant.
type FixedClock struct {
	T time.Time
}

// Now returns the fixed time.
func (c FixedClock) Now() time.Time {
	return c.T
}

// FuncClock wraps a function as a Clock.
type FuncClock func() time.Time

// Now calls the wrapped function.
func (f FuncClock) Now() time.Time {
	return f()
}

// ManualClock only moves when Advance or Set is called.
// It is not safe for concurrent use; the control loop is single-threaded.
type ManualClock struct {
	now time.Time
}

// Now returns the current manual time.
func (c *ManualClock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// Set jumps the clock to t.
func (c *ManualClock) Set(t time.Time) {
	c.now = t
}

// Real returns a Clock backed by time.Now.
func Real() Clock {
	return RealClock{}
}

// NewFixed returns a Clock that always returns t.
func NewFixed(t time.Time) Clock {
	return FixedClock{T: t}
}

// NewFunc returns a Clock backed by f.
func NewFunc(f func() time.Time) Clock {
	return FuncClock(f)
}

// NewManual returns a ManualClock starting at start.
func NewManual(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

var (
	_ Clock = RealClock{}
	_ Clock = FixedClock{}
	_ Clock = FuncClock(nil)
	_ Clock = (*ManualClock)(nil)
)
