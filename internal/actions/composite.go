package actions

import (
	"fmt"
	"time"

	"github.com/atomikpanda/spiderling/internal/checks"
)

// Sequence runs children one after another. Each tick drives the current
// child with Loop; when it completes, the next child starts on the
// following tick. The sequence is done once every child has completed.
func Sequence(name string, children ...*Action) *Action {
	return New(checks.Never(), &sequence{children: children}, WithName(name))
}

type sequence struct {
	Hooks
	children []*Action
	current  int
}

func (s *sequence) OnStart() { s.current = 0 }

func (s *sequence) OnRun() {
	if s.current >= len(s.children) {
		return
	}
	if Loop(s.children[s.current]) {
		s.current++
	}
}

func (s *sequence) IsDone() bool { return s.current >= len(s.children) }

func (s *sequence) OnFinish() {
	if s.current < len(s.children) {
		stop(s.children[s.current])
	}
}

// Parallel runs every child on each tick and is done once all of them
// have completed.
func Parallel(name string, children ...*Action) *Action {
	return New(checks.Never(), &group{children: children}, WithName(name))
}

// Race runs every child on each tick and is done as soon as one completes.
// The children still running are cancelled and ended with it.
func Race(name string, children ...*Action) *Action {
	return New(checks.Never(), &group{children: children, race: true}, WithName(name))
}

type group struct {
	Hooks
	children  []*Action
	completed []bool
	count     int
	race      bool
}

func (g *group) OnStart() {
	g.completed = make([]bool, len(g.children))
	g.count = 0
}

func (g *group) OnRun() {
	for i, c := range g.children {
		if g.completed[i] {
			continue
		}
		if Loop(c) {
			g.completed[i] = true
			g.count++
			if g.race {
				return
			}
		}
	}
}

func (g *group) IsDone() bool {
	if g.race {
		return g.count > 0 || len(g.children) == 0
	}
	return g.count == len(g.children)
}

func (g *group) OnFinish() {
	for _, c := range g.children {
		stop(c)
	}
}

// Wait does nothing for d.
func Wait(d time.Duration, opts ...Option) *Action {
	opts = append([]Option{WithName(fmt.Sprintf("wait %s", d))}, opts...)
	return New(checks.Elapsed(d), Hooks{}, opts...)
}

// Do runs fn once when started and completes on the same tick.
func Do(name string, fn func()) *Action {
	return New(checks.Ticks(1), Funcs{Start: fn}, WithName(name))
}

// stop cancels and ends a child that is still running so that its
// OnFinish hook always runs.
func stop(a *Action) {
	if !a.IsRunning() {
		return
	}
	a.Cancel()
	a.End()
}
