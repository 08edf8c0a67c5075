package clearance

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the workflow. Controllers match with errors.Is and
// map each to an HTTP status; none of these is used for ordinary control flow.
var (
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrNoDamageRecorded       = errors.New("no damaged or lost condition recorded")
	ErrConcurrentModification = errors.New("item was modified concurrently, re-fetch and retry")
	ErrMalformedConditionData = errors.New("malformed return condition data")
	ErrStoreUnavailable       = errors.New("store unavailable")
)

// TransitionError explains which rule blocked an action: wrong role, wrong
// state, or a missing resolution kind. It unwraps to ErrInvalidTransition.
type TransitionError struct {
	From   Status
	Role   Role
	Action Action
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s from %q as %s: %s", e.Action, e.From, e.Role, e.Reason)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
