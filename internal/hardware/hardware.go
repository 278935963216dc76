// Package hardware exposes named device handles to actions.
//
// A Map is populated once at startup; robots resolve the handles they need
// in InitHardware and hand them to the actions that read or write them.
package hardware

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrDeviceNotFound  = errors.New("device not found")
	ErrDeviceType      = errors.New("device has unexpected type")
	ErrDuplicateDevice = errors.New("device already registered")
)

// Map gives access to devices by name.
type Map interface {
	Device(name string) (any, bool)
	Names() []string
}

// Robot is implemented by anything that binds device handles from a Map.
type Robot interface {
	InitHardware(m Map) error
}

// Init hands m to r for its one-time device lookup.
func Init(m Map, r Robot) error {
	if m == nil {
		return errors.New("hardware map is nil")
	}
	if err := r.InitHardware(m); err != nil {
		return fmt.Errorf("init hardware: %w", err)
	}
	return nil
}

// Get returns the device called name as a T.
func Get[T any](m Map, name string) (T, error) {
	var zero T
	d, ok := m.Device(name)
	if !ok {
		return zero, fmt.Errorf("%q: %w", name, ErrDeviceNotFound)
	}
	t, ok := d.(T)
	if !ok {
		return zero, fmt.Errorf("%q is %T: %w", name, d, ErrDeviceType)
	}
	return t, nil
}

// Registry is an in-memory Map.
type Registry struct {
	devices map[string]any
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{devices: make(map[string]any)}
}

// Add registers device under name.
func (r *Registry) Add(name string, device any) error {
	if _, exists := r.devices[name]; exists {
		return fmt.Errorf("%q: %w", name, ErrDuplicateDevice)
	}
	r.devices[name] = device
	return nil
}

func (r *Registry) Device(name string) (any, bool) {
	d, ok := r.devices[name]
	return d, ok
}

// Names returns the registered device names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.devices))
	for n := range r.devices {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

var _ Map = (*Registry)(nil)
