package verify

import (
	"errors"
	"fmt"
)

// ErrStartup is returned when the application never became reachable.
var ErrStartup = errors.New("server did not become ready")

// Phase names the part of a run in which a failure happened.
type Phase string

const (
	PhaseLaunch     Phase = "launch"
	PhaseStartup    Phase = "startup"
	PhaseNavigate   Phase = "navigate"
	PhaseWait       Phase = "wait"
	PhaseScreenshot Phase = "screenshot"
	PhaseWrite      Phase = "write"
)

// StepError is the single failure kind a run reports. Check is empty for
// failures that happen before any check starts.
type StepError struct {
	Check  string
	Phase  Phase
	Target string
	Err    error
}

func (e *StepError) Error() string {
	var what string
	switch e.Phase {
	case PhaseLaunch:
		what = "launch browser"
	case PhaseStartup:
		what = "wait for server"
	case PhaseNavigate:
		what = "navigate to " + e.Target
	case PhaseWait:
		what = fmt.Sprintf("wait for %q", e.Target)
	case PhaseScreenshot:
		what = "capture screenshot"
	case PhaseWrite:
		what = "write " + e.Target
	default:
		what = string(e.Phase)
	}
	if e.Check != "" {
		return fmt.Sprintf("%s: %s: %v", e.Check, what, e.Err)
	}
	return fmt.Sprintf("%s: %v", what, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
