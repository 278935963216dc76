package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config describes a robot's devices and the routines it can run.
type Config struct {
	Devices  []Device  `yaml:"devices"`
	Routines []Routine `yaml:"routines"`
}

// Device declares one simulated device. The device type is determined by
// which name field is populated.
type Device struct {
	// Motor
	Motor string  `yaml:"motor,omitempty"`
	Rate  float64 `yaml:"rate,omitempty"` // distance per second at full power

	// Limit switch watching a motor's position
	Switch string  `yaml:"switch,omitempty"`
	Watch  string  `yaml:"watch,omitempty"`
	At     float64 `yaml:"at,omitempty"`
	Below  bool    `yaml:"below,omitempty"`

	// Manually pressed input
	Button string `yaml:"button,omitempty"`
}

// Type returns "motor", "switch", "button" or "unknown".
func (d Device) Type() string {
	switch {
	case d.Motor != "":
		return "motor"
	case d.Switch != "":
		return "switch"
	case d.Button != "":
		return "button"
	default:
		return "unknown"
	}
}

// Name returns the device's name whatever its type.
func (d Device) Name() string {
	switch d.Type() {
	case "motor":
		return d.Motor
	case "switch":
		return d.Switch
	case "button":
		return d.Button
	default:
		return ""
	}
}

// Routine is a named list of steps run in order.
type Routine struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Steps       []Step `yaml:"steps"`
}

// Step is one unit of a routine. Like Device, its type is determined by
// which field is populated.
type Step struct {
	Name string `yaml:"name,omitempty"`

	// Drive a motor
	Motor string        `yaml:"motor,omitempty"`
	Power float64       `yaml:"power,omitempty"`
	For   time.Duration `yaml:"for,omitempty"`

	// Wait for a duration
	Wait time.Duration `yaml:"wait,omitempty"`

	// Wait for a digital input without moving anything
	Await string `yaml:"await,omitempty"`

	// Shared by motor and await steps
	Until   string        `yaml:"until,omitempty"` // digital input name
	Is      *bool         `yaml:"is,omitempty"`    // value to wait for (default true)
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Composite steps
	Parallel []Step `yaml:"parallel,omitempty"`
	Race     []Step `yaml:"race,omitempty"`
	Sequence []Step `yaml:"sequence,omitempty"`
}

// Type returns the step type.
func (s Step) Type() string {
	switch {
	case s.Motor != "":
		return "motor"
	case s.Wait > 0:
		return "wait"
	case s.Await != "":
		return "await"
	case len(s.Parallel) > 0:
		return "parallel"
	case len(s.Race) > 0:
		return "race"
	case len(s.Sequence) > 0:
		return "sequence"
	default:
		return "unknown"
	}
}

// Target returns the value a digital condition waits for.
func (s Step) Target() bool {
	if s.Is == nil {
		return true
	}
	return *s.Is
}

// Input returns the digital input the step waits on, if any.
func (s Step) Input() string {
	if s.Await != "" {
		return s.Await
	}
	return s.Until
}

// Children returns the nested steps of a composite step.
func (s Step) Children() []Step {
	switch s.Type() {
	case "parallel":
		return s.Parallel
	case "race":
		return s.Race
	case "sequence":
		return s.Sequence
	default:
		return nil
	}
}

// Describe returns a short human-readable summary.
func (s Step) Describe() string {
	if s.Name != "" {
		return s.Name
	}
	var d string
	switch s.Type() {
	case "motor":
		d = fmt.Sprintf("motor %s at %.2f", s.Motor, s.Power)
		if s.For > 0 {
			d += fmt.Sprintf(" for %s", s.For)
		}
	case "wait":
		return fmt.Sprintf("wait %s", s.Wait)
	case "await":
		d = "await"
	case "parallel", "race", "sequence":
		return fmt.Sprintf("%s of %d", s.Type(), len(s.Children()))
	default:
		return "unknown step"
	}
	if in := s.Input(); in != "" {
		if s.Type() == "await" {
			d += " " + in
		} else {
			d += " until " + in
		}
		d += fmt.Sprintf("=%t", s.Target())
	}
	if s.Timeout > 0 {
		d += fmt.Sprintf(" (timeout %s)", s.Timeout)
	}
	return d
}

// Load reads and parses a YAML config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Routine returns the named routine, or nil if not found.
func (c Config) Routine(name string) *Routine {
	for i := range c.Routines {
		if c.Routines[i].Name == name {
			return &c.Routines[i]
		}
	}
	return nil
}

// Device returns the named device, or nil if not found.
func (c Config) Device(name string) *Device {
	for i := range c.Devices {
		if c.Devices[i].Name() == name {
			return &c.Devices[i]
		}
	}
	return nil
}

// RoutineNames returns the routine names in declaration order.
func (c Config) RoutineNames() []string {
	names := make([]string, 0, len(c.Routines))
	for _, r := range c.Routines {
		names = append(names, r.Name)
	}
	return names
}
