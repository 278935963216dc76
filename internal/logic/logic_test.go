package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValue(t *testing.T) {
	v := NewValue(false)
	assert.False(t, v.Get())
	v.Set(true)
	assert.True(t, v.Get())
}

func TestNot(t *testing.T) {
	v := NewValue(true)
	n := Not(v)
	assert.False(t, n.Get())
	v.Set(false)
	assert.True(t, n.Get())
}

func TestConstAndFunc(t *testing.T) {
	assert.True(t, Const(true).Get())
	assert.False(t, Const(false).Get())

	hits := 0
	f := BoolFunc(func() bool {
		hits++
		return hits > 1
	})
	assert.False(t, f.Get())
	assert.True(t, f.Get())
}
