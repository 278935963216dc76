package actions

// Behavior supplies the body of an action. The Action calls these hooks
// at fixed points of its lifecycle; a behavior only decides what happens
// inside them.
type Behavior interface {
	// OnStart runs at the end of Initialise.
	OnStart()
	// OnRun runs once per tick, after the check's OnRun.
	OnRun()
	// OnFinish runs at the end of End, after the check's OnFinish.
	OnFinish()
	// IsDone lets a behavior finish the action on its own terms. It must be
	// free of side effects.
	IsDone() bool
}

// Hooks is a Behavior that does nothing and is never done. Embed it and
// override only the hooks you need.
type Hooks struct{}

func (Hooks) OnStart()     {}
func (Hooks) OnRun()       {}
func (Hooks) OnFinish()    {}
func (Hooks) IsDone() bool { return false }

// Funcs adapts plain functions to a Behavior. Nil fields are no-ops.
type Funcs struct {
	Start  func()
	Run    func()
	Finish func()
	Done   func() bool
}

func (f Funcs) OnStart() {
	if f.Start != nil {
		f.Start()
	}
}

func (f Funcs) OnRun() {
	if f.Run != nil {
		f.Run()
	}
}

func (f Funcs) OnFinish() {
	if f.Finish != nil {
		f.Finish()
	}
}

func (f Funcs) IsDone() bool {
	return f.Done != nil && f.Done()
}

// Reason records why an action's last run ended.
type Reason int

const (
	// ReasonNone means the action is running or has never ended.
	ReasonNone Reason = iota
	// ReasonCheck means the check reported finished.
	ReasonCheck
	// ReasonInterrupted means the action was cancelled.
	ReasonInterrupted
	// ReasonDone means the behavior's IsDone reported true.
	ReasonDone
	// ReasonForced means End was called with no finish condition met.
	ReasonForced
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonCheck:
		return "check"
	case ReasonInterrupted:
		return "interrupted"
	case ReasonDone:
		return "done"
	case ReasonForced:
		return "forced"
	default:
		return "unknown"
	}
}

var (
	_ Behavior = Hooks{}
	_ Behavior = Funcs{}
)
