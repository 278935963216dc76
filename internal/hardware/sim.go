package hardware

import (
	"time"

	"github.com/atomikpanda/spiderling/internal/logic"
)

// Motor is a simulated motor whose position integrates power over time.
type Motor struct {
	// Rate is the distance travelled per second at full power.
	Rate     float64
	power    float64
	position float64
}

// SetPower sets the motor output, clamped to [-1, 1].
func (m *Motor) SetPower(p float64) {
	switch {
	case p > 1:
		p = 1
	case p < -1:
		p = -1
	}
	m.power = p
}

func (m *Motor) Power() float64    { return m.power }
func (m *Motor) Position() float64 { return m.position }

// Step advances the motor by dt at its current power.
func (m *Motor) Step(dt time.Duration) {
	m.position += m.power * m.Rate * dt.Seconds()
}

// LimitSwitch reads true once the watched motor reaches At. With Below set
// it reads true at or under At instead.
type LimitSwitch struct {
	Motor *Motor
	At    float64
	Below bool
}

func (s *LimitSwitch) Get() bool {
	if s.Below {
		return s.Motor.Position() <= s.At
	}
	return s.Motor.Position() >= s.At
}

// Button is a manually operated digital input.
type Button struct {
	logic.Value
}

// Press sets the button down.
func (b *Button) Press() { b.Set(true) }

// Release lets the button up.
func (b *Button) Release() { b.Set(false) }

// Sim advances every simulated motor once per control-loop tick.
type Sim struct {
	motors []*Motor
}

// Attach adds motors to the simulation.
func (s *Sim) Attach(ms ...*Motor) {
	s.motors = append(s.motors, ms...)
}

// Step advances all attached motors by dt.
func (s *Sim) Step(dt time.Duration) {
	for _, m := range s.motors {
		m.Step(dt)
	}
}

var (
	_ logic.Bool = (*LimitSwitch)(nil)
	_ logic.Bool = (*Button)(nil)
)

// InitHardware attaches every motor registered in m.
func (s *Sim) InitHardware(m Map) error {
	for _, name := range m.Names() {
		d, _ := m.Device(name)
		if motor, ok := d.(*Motor); ok {
			s.Attach(motor)
		}
	}
	return nil
}

var _ Robot = (*Sim)(nil)
