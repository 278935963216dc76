package checks

// Group forwards every lifecycle hook to its children in order and
// combines their IsFinished results.
type Group struct {
	children []Check
	any      bool
}

// Any finishes as soon as one child does. An empty Any never finishes.
func Any(cs ...Check) *Group {
	return &Group{children: cs, any: true}
}

// All finishes once every child does. An empty All is always finished.
func All(cs ...Check) *Group {
	return &Group{children: cs}
}

func (g *Group) Initialise(owner Owner) {
	for _, c := range g.children {
		c.Initialise(owner)
	}
}

func (g *Group) OnRun() {
	for _, c := range g.children {
		c.OnRun()
	}
}

func (g *Group) OnFinish() {
	for _, c := range g.children {
		c.OnFinish()
	}
}

func (g *Group) IsFinished() bool {
	for _, c := range g.children {
		if c.IsFinished() == g.any {
			return g.any
		}
	}
	return !g.any
}

// Children returns the grouped checks.
func (g *Group) Children() []Check { return g.children }
