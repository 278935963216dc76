package runner

import (
	"github.com/felixgeelhaar/statekit"
)

// Run states. The terminal states share their names with Outcome values.
const (
	stateIdle        = "idle"
	stateRunning     = "running"
	stateCompleted   = "completed"
	stateInterrupted = "interrupted"
	stateFailed      = "failed"
)

// Run events.
const (
	eventStart     = "START"
	eventComplete  = "COMPLETE"
	eventInterrupt = "INTERRUPT"
	eventFail      = "FAIL"
	eventReset     = "RESET"
)

// runContext is the statekit context of one run.
type runContext struct {
	Routine string
}

// runMachine tracks a single run: idle -> running -> completed |
// interrupted | failed.
type runMachine struct {
	interp *statekit.Interpreter[runContext]
}

func newRunMachine(routine string) (*runMachine, error) {
	machine, err := statekit.NewMachine[runContext]("spiderling-run").
		WithInitial(stateIdle).
		WithContext(runContext{Routine: routine}).
		State(stateIdle).
		On(eventStart).Target(stateRunning).Done().
		State(stateRunning).
		On(eventComplete).Target(stateCompleted).
		On(eventInterrupt).Target(stateInterrupted).
		On(eventFail).Target(stateFailed).Done().
		State(stateCompleted).
		On(eventReset).Target(stateIdle).Done().
		State(stateInterrupted).
		On(eventReset).Target(stateIdle).Done().
		State(stateFailed).
		On(eventReset).Target(stateIdle).Done().
		Build()
	if err != nil {
		return nil, err
	}
	return &runMachine{interp: statekit.NewInterpreter(machine)}, nil
}

func (m *runMachine) start() {
	m.interp.Start()
	m.send(eventStart)
}

func (m *runMachine) stop() { m.interp.Stop() }

func (m *runMachine) send(event string) {
	m.interp.Send(statekit.Event{Type: statekit.EventType(event)})
}

func (m *runMachine) state() string {
	return string(m.interp.State().Value)
}

// outcome maps the current state to an Outcome. A machine that never
// reached a terminal state reports failed.
func (m *runMachine) outcome() Outcome {
	switch s := m.state(); s {
	case stateCompleted, stateInterrupted, stateFailed:
		return Outcome(s)
	default:
		return OutcomeFailed
	}
}
