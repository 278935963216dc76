// Package runner is the top-level driver: it compiles configured routines
// into action trees and ticks them on a fixed interval until they finish.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atomikpanda/spiderling/internal/actions"
	"github.com/atomikpanda/spiderling/internal/audit"
	"github.com/atomikpanda/spiderling/internal/clock"
	"github.com/atomikpanda/spiderling/internal/config"
	"github.com/atomikpanda/spiderling/internal/hardware"
	"github.com/atomikpanda/spiderling/internal/logger"
)

// ErrRoutineNotFound is returned by Run for an unknown routine name.
var ErrRoutineNotFound = errors.New("routine not found")

// Outcome is how a run ended.
type Outcome string

const (
	OutcomeCompleted   Outcome = "completed"
	OutcomeInterrupted Outcome = "interrupted"
	OutcomeFailed      Outcome = "failed"
)

// Result summarises one run.
type Result struct {
	RunID   string
	Routine string
	Outcome Outcome
	Reason  actions.Reason
	Ticks   uint64
	Elapsed time.Duration
}

// HookPanicError reports a panic raised by an action hook during a tick.
type HookPanicError struct {
	Action string
	Value  any
}

func (e *HookPanicError) Error() string {
	return fmt.Sprintf("action %q panicked: %v", e.Action, e.Value)
}

// Runner drives routines on a robot, one tick at a time.
type Runner struct {
	Config   config.Config
	Hardware hardware.Map
	Sim      *hardware.Sim // stepped before every tick when set
	Clock    clock.Clock
	Tick     time.Duration
	Timeout  time.Duration // zero means no limit
	History  string        // audit log path; empty disables history
	Log      *zap.SugaredLogger
}

// New creates a Runner on simulated hardware built from cfg.Devices.
func New(cfg config.Config, tick time.Duration) (*Runner, error) {
	if tick <= 0 {
		return nil, fmt.Errorf("tick must be positive, got %s", tick)
	}
	reg, sim, err := NewSimulated(cfg.Devices)
	if err != nil {
		return nil, fmt.Errorf("build hardware: %w", err)
	}
	return &Runner{
		Config:   cfg,
		Hardware: reg,
		Sim:      sim,
		Clock:    clock.Real(),
		Tick:     tick,
		Log:      logger.For(logger.ComponentRunner),
	}, nil
}

// Run builds the named routine and drives it to the end.
func (r *Runner) Run(ctx context.Context, name string) (Result, error) {
	rt := r.Config.Routine(name)
	if rt == nil {
		return Result{Routine: name}, fmt.Errorf("%q: %w", name, ErrRoutineNotFound)
	}
	root, err := r.Build(*rt)
	if err != nil {
		return Result{Routine: name}, err
	}
	return r.Drive(ctx, root)
}

// Step performs one tick: it advances the simulation by one interval and
// drives root once. It reports whether root completed on this tick. A
// panic from any hook is returned as a *HookPanicError.
func (r *Runner) Step(root *actions.Action) (done bool, err error) {
	if r.Sim != nil {
		r.Sim.Step(r.Tick)
	}
	err = r.guard(root, func() { done = actions.Loop(root) })
	return done, err
}

// Drive ticks root until it completes, ctx is cancelled, the runner's
// Timeout passes, or a hook panics. Cancellation and timeouts interrupt
// the action and are not errors.
func (r *Runner) Drive(ctx context.Context, root *actions.Action) (Result, error) {
	res := Result{RunID: uuid.NewString(), Routine: root.Name()}
	log := r.Log.With("routine", res.Routine, "run", res.RunID)

	m, err := newRunMachine(res.Routine)
	if err != nil {
		return res, fmt.Errorf("build run state machine: %w", err)
	}
	m.start()
	defer m.stop()

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	start := r.Clock.Now()
	ticker := time.NewTicker(r.Tick)
	defer ticker.Stop()

	log.Infow("run started", "tick", r.Tick)
	for {
		select {
		case <-ctx.Done():
			log.Infow("run interrupted", "cause", ctx.Err())
			err := r.guard(root, func() {
				if root.IsRunning() {
					root.Cancel()
					root.End()
				}
			})
			if err != nil {
				m.send(eventFail)
			} else {
				m.send(eventInterrupt)
			}
			return r.finish(res, root, m, start, err)

		case <-ticker.C:
			res.Ticks++
			tickStart := r.Clock.Now()
			done, err := r.Step(root)
			if cycle := r.Clock.Now().Sub(tickStart); cycle > r.Tick {
				log.Warnw("tick overran interval", "tick", res.Ticks, "cycle", cycle)
			}
			if err != nil {
				log.Errorw("run failed", "tick", res.Ticks, "error", err)
				r.abort(root)
				m.send(eventFail)
				return r.finish(res, root, m, start, err)
			}
			if done {
				if root.Reason() == actions.ReasonInterrupted {
					m.send(eventInterrupt)
				} else {
					m.send(eventComplete)
				}
				return r.finish(res, root, m, start, nil)
			}
		}
	}
}

func (r *Runner) finish(res Result, root *actions.Action, m *runMachine, start time.Time, err error) (Result, error) {
	res.Outcome = m.outcome()
	res.Reason = root.Reason()
	res.Elapsed = r.Clock.Now().Sub(start)

	e := audit.Entry{
		RunID:   res.RunID,
		Routine: res.Routine,
		Outcome: string(res.Outcome),
		Reason:  res.Reason.String(),
		Ticks:   res.Ticks,
		Elapsed: res.Elapsed,
	}
	if err != nil {
		e.Error = err.Error()
	}
	audit.Log(r.History, e)

	r.Log.Infow("run finished",
		"routine", res.Routine,
		"run", res.RunID,
		"outcome", res.Outcome,
		"reason", res.Reason.String(),
		"ticks", res.Ticks,
		"elapsed", res.Elapsed)
	return res, err
}

// abort makes a best-effort attempt to end a failed tree so that running
// actions get their OnFinish (motors stop). A second panic is dropped.
func (r *Runner) abort(root *actions.Action) {
	_ = r.guard(root, func() {
		if root.IsRunning() {
			root.Cancel()
			root.End()
		}
	})
}

func (r *Runner) guard(root *actions.Action, fn func()) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &HookPanicError{Action: root.Name(), Value: p}
		}
	}()
	fn()
	return nil
}
