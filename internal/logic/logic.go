// Package logic holds the boolean-valued sources that checks and
// actions read from: sensors, switches, or plain closures.
package logic

// Bool is anything with a boolean output.
type Bool interface {
	// Get returns the current value. It must not block.
	Get() bool
}

// BoolFunc adapts a function to Bool.
type BoolFunc func() bool

// Get calls f.
func (f BoolFunc) Get() bool { return f() }

// Value is a settable Bool, useful for manual triggers and tests.
type Value struct {
	v bool
}

// NewValue returns a Value holding v.
func NewValue(v bool) *Value { return &Value{v: v} }

// Get returns the stored value.
func (b *Value) Get() bool { return b.v }

// Set replaces the stored value.
func (b *Value) Set(v bool) { b.v = v }

// Not inverts a source.
func Not(b Bool) Bool {
	return BoolFunc(func() bool { return !b.Get() })
}

// Const returns a source that always reports v.
func Const(v bool) Bool {
	return BoolFunc(func() bool { return v })
}
