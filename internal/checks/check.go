// Package checks provides the completion predicates that gate actions.
//
// A Check is owned by exactly one action and follows that action's
// lifecycle: Initialise when it starts, OnRun once per tick (before the
// action's own hook), OnFinish when it ends. IsFinished is a pure query.
package checks

import "time"

// Owner is the read-only view a check has of the action that owns it.
// The reference is valid for the duration of one run and must not be
// retained past OnFinish.
type Owner interface {
	TimeSinceInitialized() time.Duration
	Name() string
}

// Check decides when its owning action should stop.
type Check interface {
	// Initialise is called once when the owning action starts.
	Initialise(owner Owner)
	// OnRun is called once per tick while the owner is running.
	OnRun()
	// OnFinish is called once when the owner ends.
	OnFinish()
	// IsFinished reports whether the owner should stop. It must have no
	// side effects and may be called any number of times.
	IsFinished() bool
}

// Base gives embedding checks no-op lifecycle hooks and keeps the owner
// reference handed over at Initialise.
type Base struct {
	owner Owner
}

func (b *Base) Initialise(owner Owner) { b.owner = owner }
func (b *Base) OnRun()                 {}
func (b *Base) OnFinish()              {}

// Owner returns the action that last initialised this check, or nil.
func (b *Base) Owner() Owner { return b.owner }

// Digital is the base for checks waiting on a boolean condition.
// Type is the truth value being waited for.
type Digital struct {
	Base
	Type bool
}

var (
	_ Check = (*GettableBool)(nil)
	_ Check = (*ElapsedCheck)(nil)
	_ Check = (*TickCheck)(nil)
	_ Check = (*NeverCheck)(nil)
	_ Check = (*Group)(nil)
)
