package runner

import (
	"fmt"

	"github.com/atomikpanda/spiderling/internal/config"
	"github.com/atomikpanda/spiderling/internal/hardware"
)

// NewSimulated builds simulated devices from their declarations and
// attaches the motors to a simulation stepped once per tick.
func NewSimulated(devices []config.Device) (*hardware.Registry, *hardware.Sim, error) {
	reg := hardware.NewRegistry()
	motors := make(map[string]*hardware.Motor)

	// Motors first so switches can watch them regardless of order.
	for _, d := range devices {
		if d.Type() != "motor" {
			continue
		}
		m := &hardware.Motor{Rate: d.Rate}
		if err := reg.Add(d.Motor, m); err != nil {
			return nil, nil, err
		}
		motors[d.Motor] = m
	}

	for _, d := range devices {
		var err error
		switch d.Type() {
		case "motor":
			continue
		case "switch":
			m, ok := motors[d.Watch]
			if !ok {
				return nil, nil, fmt.Errorf("switch %q watches %q: %w", d.Switch, d.Watch, hardware.ErrDeviceNotFound)
			}
			err = reg.Add(d.Switch, &hardware.LimitSwitch{Motor: m, At: d.At, Below: d.Below})
		case "button":
			err = reg.Add(d.Button, &hardware.Button{})
		default:
			err = fmt.Errorf("device %+v: %w", d, config.ErrUnknownDevice)
		}
		if err != nil {
			return nil, nil, err
		}
	}

	sim := &hardware.Sim{}
	if err := hardware.Init(reg, sim); err != nil {
		return nil, nil, err
	}
	return reg, sim, nil
}
