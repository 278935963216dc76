// Package actions implements the cooperative action lifecycle.
//
// An Action pairs a Behavior (the work) with a checks.Check (when to
// stop) and drives both through a fixed sequence:
//
//	Initialise -> Execute* -> IsFinished? -> End
//
// Nothing here blocks. A driver calls Loop once per control-loop tick and
// long-running work is spread across many ticks. Composite actions drive
// their children with Loop from inside their own hooks.
package actions

import (
	"time"

	"github.com/atomikpanda/spiderling/internal/checks"
	"github.com/atomikpanda/spiderling/internal/clock"
)

// Action is a unit of work with a fixed four-phase lifecycle. Behaviors
// supply hook bodies; they cannot change the order in which hooks run.
//
// An Action is not safe for concurrent use.
type Action struct {
	name     string
	check    checks.Check
	behavior Behavior
	clock    clock.Clock

	interrupted bool
	running     bool
	started     bool
	startTime   time.Time
	reason      Reason
}

// Option configures an Action at construction.
type Option func(*Action)

// WithClock sets the clock used for elapsed-time tracking.
func WithClock(c clock.Clock) Option {
	return func(a *Action) { a.clock = c }
}

// WithName sets a human-readable name, used in logs and by checks.
func WithName(name string) Option {
	return func(a *Action) { a.name = name }
}

// New creates an idle action. The check is owned by the returned action and
// must not be shared with another action. A nil check never finishes and a
// nil behavior does nothing.
func New(check checks.Check, b Behavior, opts ...Option) *Action {
	if check == nil {
		check = checks.Never()
	}
	if b == nil {
		b = Hooks{}
	}
	a := &Action{
		check:    check,
		behavior: b,
		clock:    clock.Real(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// IsFinished reports whether the action should stop: its check is
// finished, it was cancelled, or the behavior reports done.
func (a *Action) IsFinished() bool {
	return a.check.IsFinished() || a.interrupted || a.behavior.IsDone()
}

// Initialise starts a run. It must be called once before the first Execute
// of each run and clears any cancellation left over from the previous run.
func (a *Action) Initialise() {
	a.check.Initialise(a)
	a.startTime = a.clock.Now()
	a.started = true
	a.interrupted = false
	a.reason = ReasonNone
	a.running = true
	a.behavior.OnStart()
}

// Execute performs one tick of work. Calling it on an action that is not
// running is a driver bug; it is not guarded against.
func (a *Action) Execute() {
	a.check.OnRun()
	a.behavior.OnRun()
}

// End finishes a run. It must be called once after IsFinished reports true.
func (a *Action) End() {
	a.reason = a.finishReason()
	a.check.OnFinish()
	a.running = false
	a.behavior.OnFinish()
}

// Cancel interrupts the action. It does not call End: the next IsFinished
// reports true and whoever drives the action ends it.
func (a *Action) Cancel() {
	a.interrupted = true
}

// TimeSinceInitialized returns the time since the last Initialise, or zero
// if the action has never been initialised.
func (a *Action) TimeSinceInitialized() time.Duration {
	if !a.started {
		return 0
	}
	return a.clock.Now().Sub(a.startTime)
}

// ActionLoop drives child for one tick. See Loop.
func (a *Action) ActionLoop(child *Action) bool {
	return Loop(child)
}

func (a *Action) IsRunning() bool     { return a.running }
func (a *Action) IsInterrupted() bool { return a.interrupted }
func (a *Action) Name() string        { return a.name }
func (a *Action) Check() checks.Check { return a.check }

// Reason returns why the last run ended. It is ReasonNone while running and
// before the first End, and is already set when the behavior's OnFinish runs.
func (a *Action) Reason() Reason { return a.reason }

func (a *Action) finishReason() Reason {
	switch {
	case a.interrupted:
		return ReasonInterrupted
	case a.check.IsFinished():
		return ReasonCheck
	case a.behavior.IsDone():
		return ReasonDone
	default:
		return ReasonForced
	}
}

var _ checks.Owner = (*Action)(nil)
