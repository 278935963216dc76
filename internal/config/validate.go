package config

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownStep   = errors.New("unknown step type")
	ErrUnknownDevice = errors.New("unknown device")
)

// Validate reports every problem found in the config, joined into one
// error. A nil result means every routine can be built.
func (c Config) Validate() error {
	var errs []error

	seen := make(map[string]bool)
	for i, d := range c.Devices {
		name := d.Name()
		switch {
		case d.Type() == "unknown":
			errs = append(errs, fmt.Errorf("device %d: %w", i, ErrUnknownDevice))
			continue
		case seen[name]:
			errs = append(errs, fmt.Errorf("device %q: declared twice", name))
		}
		seen[name] = true
	}
	for _, d := range c.Devices {
		if d.Type() != "switch" {
			continue
		}
		if w := c.Device(d.Watch); w == nil || w.Type() != "motor" {
			errs = append(errs, fmt.Errorf("switch %q: watch %q is not a motor: %w", d.Switch, d.Watch, ErrUnknownDevice))
		}
	}

	names := make(map[string]bool)
	for _, r := range c.Routines {
		if r.Name == "" {
			errs = append(errs, errors.New("routine with empty name"))
			continue
		}
		if names[r.Name] {
			errs = append(errs, fmt.Errorf("routine %q: declared twice", r.Name))
		}
		names[r.Name] = true
		if len(r.Steps) == 0 {
			errs = append(errs, fmt.Errorf("routine %q: no steps", r.Name))
		}
		for i, s := range r.Steps {
			errs = append(errs, c.validateStep(fmt.Sprintf("routine %q step %d", r.Name, i), s)...)
		}
	}
	return errors.Join(errs...)
}

func (c Config) validateStep(where string, s Step) []error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%s: %w", where, fmt.Errorf(format, args...)))
	}

	if s.Timeout < 0 || s.For < 0 || s.Wait < 0 {
		fail("negative duration")
	}

	switch s.Type() {
	case "motor":
		if d := c.Device(s.Motor); d == nil || d.Type() != "motor" {
			fail("%q is not a motor: %w", s.Motor, ErrUnknownDevice)
		}
		if s.Power < -1 || s.Power > 1 {
			fail("power %.2f outside [-1, 1]", s.Power)
		}
		if s.For == 0 && s.Until == "" && s.Timeout == 0 {
			fail("motor step needs for, until or timeout")
		}
	case "wait":
	case "await":
	case "parallel", "race", "sequence":
		for i, child := range s.Children() {
			errs = append(errs, c.validateStep(fmt.Sprintf("%s.%s[%d]", where, s.Type(), i), child)...)
		}
	default:
		fail("%w", ErrUnknownStep)
	}

	if in := s.Input(); in != "" {
		if d := c.Device(in); d == nil || (d.Type() != "switch" && d.Type() != "button") {
			fail("%q is not a digital input: %w", in, ErrUnknownDevice)
		}
	}
	return errs
}
