package actions

// Loop drives child for one tick without blocking. It initialises the
// child if it is not running, executes it once, and ends it if it is now
// finished. It returns true only on the call that ended the child; callers
// keep calling it on later ticks until then.
func Loop(child *Action) bool {
	if !child.IsRunning() {
		child.Initialise()
	}
	child.Execute()
	if child.IsFinished() {
		child.End()
		return true
	}
	return false
}
