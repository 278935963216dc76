package checks

import "github.com/atomikpanda/spiderling/internal/logic"

// GettableBool finishes when a boolean source matches the target value.
type GettableBool struct {
	Digital
	source logic.Bool
}

// Gettable returns a check on source. isTrue is the value to wait for.
func Gettable(source logic.Bool, isTrue bool) *GettableBool {
	return &GettableBool{Digital: Digital{Type: isTrue}, source: source}
}

func (c *GettableBool) IsFinished() bool {
	return c.source.Get() == c.Type
}
