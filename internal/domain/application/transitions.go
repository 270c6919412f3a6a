package application

type Action string

const (
	ActionCreate          Action = "create"
	ActionUpdate          Action = "update"
	ActionSubmit          Action = "submit"
	ActionStartInspection Action = "start_inspection"
	ActionApprove         Action = "approve"
	ActionReject          Action = "reject"
	ActionReturn          Action = "return"
	ActionDelete          Action = "delete"
)

var allowedFrom = map[Action][]Status{
	ActionUpdate:          {StatusDraft, StatusReturned},
	ActionSubmit:          {StatusDraft, StatusReturned},
	ActionStartInspection: {StatusSubmitted},
	ActionApprove:         {StatusSubmitted, StatusUnderInspection},
	ActionReject:          {StatusSubmitted, StatusUnderInspection},
	ActionReturn:          {StatusSubmitted, StatusUnderInspection},
	ActionDelete:          {StatusDraft},
}

var targets = map[Action]Status{
	ActionSubmit:          StatusSubmitted,
	ActionStartInspection: StatusUnderInspection,
	ActionApprove:         StatusApproved,
	ActionReject:          StatusRejected,
	ActionReturn:          StatusReturned,
}

// AllowedFrom lists the legal source states of an action.
func AllowedFrom(a Action) []Status {
	src := allowedFrom[a]
	out := make([]Status, len(src))
	copy(out, src)
	return out
}

// Target is the status an action moves to; ok is false for actions that do not
// change status (create, update, delete).
func Target(a Action) (Status, bool) {
	s, ok := targets[a]
	return s, ok
}

// CheckTransition returns a *TransitionError when action may not run from current.
func CheckTransition(a Action, current Status) error {
	for _, s := range allowedFrom[a] {
		if s == current {
			return nil
		}
	}
	return &TransitionError{Action: a, Current: current, Allowed: AllowedFrom(a)}
}
