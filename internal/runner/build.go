package runner

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/atomikpanda/spiderling/internal/actions"
	"github.com/atomikpanda/spiderling/internal/checks"
	"github.com/atomikpanda/spiderling/internal/config"
	"github.com/atomikpanda/spiderling/internal/hardware"
	"github.com/atomikpanda/spiderling/internal/logic"
)

// Build compiles a routine into a sequence of actions bound to the
// runner's hardware.
func (r *Runner) Build(rt config.Routine) (*actions.Action, error) {
	steps, err := r.buildSteps(rt.Steps)
	if err != nil {
		return nil, fmt.Errorf("routine %q: %w", rt.Name, err)
	}
	return actions.Sequence(rt.Name, steps...), nil
}

func (r *Runner) buildSteps(steps []config.Step) ([]*actions.Action, error) {
	out := make([]*actions.Action, 0, len(steps))
	for i, s := range steps {
		a, err := r.buildAction(s)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// buildAction converts a config.Step into an Action.
func (r *Runner) buildAction(s config.Step) (*actions.Action, error) {
	name := s.Describe()

	switch s.Type() {
	case "motor":
		m, err := hardware.Get[*hardware.Motor](r.Hardware, s.Motor)
		if err != nil {
			return nil, err
		}
		var cs []checks.Check
		if s.For > 0 {
			cs = append(cs, checks.Elapsed(s.For))
		}
		if cs, err = r.appendInput(cs, s); err != nil {
			return nil, err
		}
		return r.leaf(name, anyOf(cs, s), &drive{motor: m, power: s.Power}), nil

	case "wait":
		return r.leaf(name, checks.Elapsed(s.Wait), actions.Hooks{}), nil

	case "await":
		cs, err := r.appendInput(nil, s)
		if err != nil {
			return nil, err
		}
		return r.leaf(name, anyOf(cs, s), actions.Hooks{}), nil

	case "parallel", "race", "sequence":
		children, err := r.buildSteps(s.Children())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Type(), err)
		}
		switch s.Type() {
		case "parallel":
			return actions.Parallel(name, children...), nil
		case "race":
			return actions.Race(name, children...), nil
		default:
			return actions.Sequence(name, children...), nil
		}

	default:
		return nil, fmt.Errorf("%w: %+v", config.ErrUnknownStep, s)
	}
}

func (r *Runner) appendInput(cs []checks.Check, s config.Step) ([]checks.Check, error) {
	if in := s.Input(); in != "" {
		src, err := hardware.Get[logic.Bool](r.Hardware, in)
		if err != nil {
			return nil, err
		}
		cs = append(cs, checks.Gettable(src, s.Target()))
	}
	return cs, nil
}

// anyOf adds the step timeout, if any, and combines the checks so that
// the first one to finish ends the action.
func anyOf(cs []checks.Check, s config.Step) checks.Check {
	if s.Timeout > 0 {
		cs = append(cs, checks.Elapsed(s.Timeout))
	}
	switch len(cs) {
	case 0:
		return checks.Never()
	case 1:
		return cs[0]
	default:
		return checks.Any(cs...)
	}
}

func (r *Runner) leaf(name string, c checks.Check, b actions.Behavior) *actions.Action {
	t := &traced{Behavior: b, log: r.Log}
	a := actions.New(c, t, actions.WithName(name), actions.WithClock(r.Clock))
	t.action = a
	return a
}

// drive runs a motor at a fixed power for the life of the action.
type drive struct {
	actions.Hooks
	motor *hardware.Motor
	power float64
}

func (d *drive) OnStart()  { d.motor.SetPower(d.power) }
func (d *drive) OnFinish() { d.motor.SetPower(0) }

// traced logs when the wrapped behavior starts and finishes.
type traced struct {
	actions.Behavior
	action *actions.Action
	log    *zap.SugaredLogger
}

func (t *traced) OnStart() {
	t.log.Debugw("step started", "step", t.action.Name())
	t.Behavior.OnStart()
}

func (t *traced) OnFinish() {
	t.Behavior.OnFinish()
	t.log.Debugw("step finished",
		"step", t.action.Name(),
		"reason", t.action.Reason().String(),
		"elapsed", t.action.TimeSinceInitialized())
}
