package preflight

import "fmt"

// Plan carries the run flags the validator needs.
type Plan struct {
	DryRun bool
}

// ActionKind identifies a filesystem change made, or planned, during validation.
type ActionKind int

const (
	ActionCreateDir ActionKind = iota
)

// Action describes one filesystem change. When DryRun is set the change was
// only planned; otherwise it has already been performed.
type Action struct {
	Kind   ActionKind
	Path   string
	DryRun bool
}

func (a Action) String() string {
	switch a.Kind {
	case ActionCreateDir:
		if a.DryRun {
			return fmt.Sprintf("Would create directory: %q", a.Path)
		}
		return fmt.Sprintf("Created directory: %q", a.Path)
	default:
		return fmt.Sprintf("unknown_action(%d): %q", a.Kind, a.Path)
	}
}

// Result is the outcome of a successful validation.
type Result struct {
	Source string
	// Target is the resolved target. It never equals Source.
	Target string
	// Actions lists the directory creations performed or, in dry-run mode, planned.
	Actions []Action
}

// CreatedTargetDir reports whether Target was created (or would be, in dry-run mode)
// as a directory during validation.
func (r Result) CreatedTargetDir() bool {
	for _, a := range r.Actions {
		if a.Kind == ActionCreateDir && a.Path == r.Target {
			return true
		}
	}
	return false
}
