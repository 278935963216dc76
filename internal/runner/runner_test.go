package runner

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/atomikpanda/spiderling/internal/actions"
	"github.com/atomikpanda/spiderling/internal/audit"
	"github.com/atomikpanda/spiderling/internal/checks"
	"github.com/atomikpanda/spiderling/internal/clock"
	"github.com/atomikpanda/spiderling/internal/config"
	"github.com/atomikpanda/spiderling/internal/hardware"
)

var armDevices = []config.Device{
	{Motor: "arm", Rate: 100},
	{Switch: "arm_top", Watch: "arm", At: 9},
	{Button: "start"},
}

func newTestRunner(t *testing.T, cfg config.Config) (*Runner, *clock.ManualClock) {
	t.Helper()
	r, err := New(cfg, 20*time.Millisecond)
	require.NoError(t, err)
	mc := clock.NewManual(time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC))
	r.Clock = mc
	r.Log = zap.NewNop().Sugar()
	return r, mc
}

func stepUntilDone(t *testing.T, r *Runner, root *actions.Action, mc *clock.ManualClock, max int) int {
	t.Helper()
	for i := 1; i <= max; i++ {
		done, err := r.Step(root)
		require.NoError(t, err)
		if done {
			return i
		}
		mc.Advance(r.Tick)
	}
	t.Fatalf("routine did not finish within %d ticks", max)
	return 0
}

func TestNewSimulated(t *testing.T) {
	reg, sim, err := NewSimulated(armDevices)
	require.NoError(t, err)
	require.NotNil(t, sim)
	assert.Equal(t, []string{"arm", "arm_top", "start"}, reg.Names())

	top, err := hardware.Get[*hardware.LimitSwitch](reg, "arm_top")
	require.NoError(t, err)
	arm, err := hardware.Get[*hardware.Motor](reg, "arm")
	require.NoError(t, err)
	assert.Same(t, arm, top.Motor)
}

func TestNewSimulatedSwitchBeforeMotor(t *testing.T) {
	_, _, err := NewSimulated([]config.Device{
		{Switch: "top", Watch: "arm", At: 1},
		{Motor: "arm", Rate: 1},
	})
	assert.NoError(t, err)
}

func TestNewSimulatedErrors(t *testing.T) {
	_, _, err := NewSimulated([]config.Device{{Switch: "top", Watch: "ghost"}})
	assert.ErrorIs(t, err, hardware.ErrDeviceNotFound)

	_, _, err = NewSimulated([]config.Device{{Motor: "arm"}, {Button: "arm"}})
	assert.ErrorIs(t, err, hardware.ErrDuplicateDevice)

	_, _, err = NewSimulated([]config.Device{{}})
	assert.ErrorIs(t, err, config.ErrUnknownDevice)
}

func TestNewRejectsBadTick(t *testing.T) {
	_, err := New(config.Config{}, 0)
	assert.Error(t, err)
}

func TestBuildErrors(t *testing.T) {
	r, _ := newTestRunner(t, config.Config{Devices: armDevices})

	_, err := r.Build(config.Routine{Name: "r", Steps: []config.Step{{Motor: "lift", Power: 1, For: time.Second}}})
	assert.ErrorIs(t, err, hardware.ErrDeviceNotFound)
	assert.Contains(t, err.Error(), `routine "r": step 0`)

	_, err = r.Build(config.Routine{Name: "r", Steps: []config.Step{{Await: "arm"}}})
	assert.ErrorIs(t, err, hardware.ErrDeviceType)

	_, err = r.Build(config.Routine{Name: "r", Steps: []config.Step{{Parallel: []config.Step{{}}}}})
	assert.ErrorIs(t, err, config.ErrUnknownStep)
}

func TestStepDrivesMotorUntilSwitch(t *testing.T) {
	r, mc := newTestRunner(t, config.Config{Devices: armDevices})
	root, err := r.Build(config.Routine{Name: "raise", Steps: []config.Step{
		{Motor: "arm", Power: 1, Until: "arm_top"},
	}})
	require.NoError(t, err)

	// 100 units/s at 20ms per tick is 2 units per tick; the motor starts on
	// tick one and the simulation moves it from tick two on.
	ticks := stepUntilDone(t, r, root, mc, 20)
	assert.Equal(t, 6, ticks)

	arm, err := hardware.Get[*hardware.Motor](r.Hardware, "arm")
	require.NoError(t, err)
	assert.Equal(t, 0.0, arm.Power(), "motor stopped when the step finished")
	assert.InDelta(t, 10.0, arm.Position(), 1e-9)
}

func TestStepMotorTimeout(t *testing.T) {
	r, mc := newTestRunner(t, config.Config{Devices: armDevices})
	root, err := r.Build(config.Routine{Name: "stall", Steps: []config.Step{
		{Motor: "arm", Power: -1, Until: "arm_top", Timeout: 100 * time.Millisecond},
	}})
	require.NoError(t, err)

	assert.Equal(t, 6, stepUntilDone(t, r, root, mc, 20))
}

func TestStepWaitUsesClock(t *testing.T) {
	r, mc := newTestRunner(t, config.Config{})
	root, err := r.Build(config.Routine{Name: "pause", Steps: []config.Step{{Wait: 100 * time.Millisecond}}})
	require.NoError(t, err)

	assert.Equal(t, 6, stepUntilDone(t, r, root, mc, 20))
}

func TestStepAwaitButton(t *testing.T) {
	r, mc := newTestRunner(t, config.Config{Devices: armDevices})
	root, err := r.Build(config.Routine{Name: "wait-for-start", Steps: []config.Step{{Await: "start"}}})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		done, err := r.Step(root)
		require.NoError(t, err)
		require.False(t, done)
		mc.Advance(r.Tick)
	}

	btn, err := hardware.Get[*hardware.Button](r.Hardware, "start")
	require.NoError(t, err)
	btn.Press()

	done, err := r.Step(root)
	require.NoError(t, err)
	assert.True(t, done)
}

func TestStepRaceStopsLoser(t *testing.T) {
	r, mc := newTestRunner(t, config.Config{Devices: armDevices})
	root, err := r.Build(config.Routine{Name: "race", Steps: []config.Step{{Race: []config.Step{
		{Motor: "arm", Power: 0.5, Until: "arm_top"},
		{Wait: 40 * time.Millisecond},
	}}}})
	require.NoError(t, err)

	stepUntilDone(t, r, root, mc, 20)

	arm, err := hardware.Get[*hardware.Motor](r.Hardware, "arm")
	require.NoError(t, err)
	assert.Equal(t, 0.0, arm.Power())
	assert.Less(t, arm.Position(), 10.0)
}

func TestStepRecoversPanic(t *testing.T) {
	r, _ := newTestRunner(t, config.Config{})
	root := actions.New(checks.Never(), actions.Funcs{Run: func() { panic("encoder fault") }}, actions.WithName("bad"))

	done, err := r.Step(root)
	assert.False(t, done)

	var hp *HookPanicError
	require.True(t, errors.As(err, &hp))
	assert.Equal(t, "bad", hp.Action)
	assert.Equal(t, "encoder fault", hp.Value)
	assert.Contains(t, err.Error(), "encoder fault")
}

func TestDriveCompletes(t *testing.T) {
	r, _ := newTestRunner(t, config.Config{})
	r.Tick = time.Millisecond
	r.History = filepath.Join(t.TempDir(), "history.log")

	root := actions.New(checks.Ticks(3), nil, actions.WithName("three"))
	res, err := r.Drive(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, OutcomeCompleted, res.Outcome)
	assert.Equal(t, actions.ReasonCheck, res.Reason)
	assert.Equal(t, uint64(3), res.Ticks)
	assert.Equal(t, "three", res.Routine)
	assert.NotEmpty(t, res.RunID)

	entries, err := audit.Read(r.History, "", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "completed", entries[0].Outcome)
	assert.Equal(t, res.RunID, entries[0].RunID)
	assert.Equal(t, "check", entries[0].Reason)
}

func TestDriveTimeoutInterrupts(t *testing.T) {
	r, _ := newTestRunner(t, config.Config{})
	r.Tick = time.Millisecond
	r.Timeout = 20 * time.Millisecond

	finished := false
	root := actions.New(checks.Never(), actions.Funcs{Finish: func() { finished = true }})
	res, err := r.Drive(context.Background(), root)
	require.NoError(t, err, "interruption is not an error")

	assert.Equal(t, OutcomeInterrupted, res.Outcome)
	assert.Equal(t, actions.ReasonInterrupted, res.Reason)
	assert.False(t, root.IsRunning())
	assert.True(t, finished)
}

func TestDriveCancelledContext(t *testing.T) {
	r, _ := newTestRunner(t, config.Config{})
	r.Tick = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	root := actions.New(checks.Never(), nil)
	res, err := r.Drive(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, OutcomeInterrupted, res.Outcome)
	assert.Equal(t, uint64(0), res.Ticks)
	assert.False(t, root.IsRunning())
}

func TestDrivePanicFailsAndStopsMotors(t *testing.T) {
	r, _ := newTestRunner(t, config.Config{})
	r.Tick = time.Millisecond
	r.History = filepath.Join(t.TempDir(), "history.log")

	m := &hardware.Motor{Rate: 1}
	root := actions.Parallel("faulty",
		actions.New(checks.Never(), &drive{motor: m, power: 1}),
		actions.New(checks.Never(), actions.Funcs{Run: func() { panic("boom") }}),
	)

	res, err := r.Drive(context.Background(), root)
	var hp *HookPanicError
	require.ErrorAs(t, err, &hp)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, 0.0, m.Power())
	assert.False(t, root.IsRunning())

	entries, err := audit.Read(r.History, "faulty", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "failed", entries[0].Outcome)
	assert.Contains(t, entries[0].Error, "boom")
}

func TestRunUnknownRoutine(t *testing.T) {
	r, _ := newTestRunner(t, config.Config{})
	_, err := r.Run(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRoutineNotFound)
}

func TestRunRoutineEndToEnd(t *testing.T) {
	cfg := config.Config{
		Devices: []config.Device{
			{Motor: "arm", Rate: 1000},
			{Switch: "arm_top", Watch: "arm", At: 5},
		},
		Routines: []config.Routine{{
			Name: "raise-and-settle",
			Steps: []config.Step{
				{Motor: "arm", Power: 1, Until: "arm_top", Timeout: time.Second},
				{Wait: 5 * time.Millisecond},
			},
		}},
	}
	require.NoError(t, cfg.Validate())

	r, _ := newTestRunner(t, cfg)
	r.Clock = clock.Real()
	r.Tick = time.Millisecond
	r.Timeout = 5 * time.Second

	res, err := r.Run(context.Background(), "raise-and-settle")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, res.Outcome)
	assert.Equal(t, "raise-and-settle", res.Routine)
	assert.GreaterOrEqual(t, res.Elapsed, 5*time.Millisecond)
}

func TestStepsAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r, mc := newTestRunner(t, config.Config{})
	r.Log = zap.New(core).Sugar()

	root, err := r.Build(config.Routine{Name: "pause", Steps: []config.Step{{Wait: 20 * time.Millisecond}}})
	require.NoError(t, err)
	stepUntilDone(t, r, root, mc, 5)

	require.Equal(t, 1, logs.FilterMessage("step started").Len())
	finished := logs.FilterMessage("step finished").All()
	require.Len(t, finished, 1)
	assert.Equal(t, "check", finished[0].ContextMap()["reason"])
	assert.Equal(t, "wait 20ms", finished[0].ContextMap()["step"])
}

func TestRunMachine(t *testing.T) {
	m, err := newRunMachine("r")
	require.NoError(t, err)
	m.start()
	defer m.stop()

	assert.Equal(t, stateRunning, m.state())
	assert.Equal(t, OutcomeFailed, m.outcome(), "non-terminal state reports failed")

	m.send(eventInterrupt)
	assert.Equal(t, OutcomeInterrupted, m.outcome())
}
