package checks

import "time"

// ElapsedCheck finishes once its owner has been running for at least D.
type ElapsedCheck struct {
	Base
	D time.Duration
}

// Elapsed returns a time-based check.
func Elapsed(d time.Duration) *ElapsedCheck {
	return &ElapsedCheck{D: d}
}

func (c *ElapsedCheck) IsFinished() bool {
	if c.owner == nil {
		return false
	}
	return c.owner.TimeSinceInitialized() >= c.D
}

// TickCheck finishes after N calls to OnRun since the last Initialise.
type TickCheck struct {
	Base
	N     int
	count int
}

// Ticks returns a check counting polling ticks.
func Ticks(n int) *TickCheck {
	return &TickCheck{N: n}
}

func (c *TickCheck) Initialise(owner Owner) {
	c.Base.Initialise(owner)
	c.count = 0
}

func (c *TickCheck) OnRun() { c.count++ }

func (c *TickCheck) IsFinished() bool { return c.count >= c.N }

// Count returns the number of ticks observed in the current run.
func (c *TickCheck) Count() int { return c.count }

// NeverCheck never finishes. Actions using it end through Cancel or
// their own IsDone.
type NeverCheck struct {
	Base
}

// Never returns a check that never reports finished.
func Never() *NeverCheck { return &NeverCheck{} }

func (*NeverCheck) IsFinished() bool { return false }
