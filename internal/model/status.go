package model

import "fmt"

// ApplicationStatus is the caller-visible workflow state of a posting.
type ApplicationStatus string

const (
	StatusNotApplied ApplicationStatus = "not_applied"
	StatusApplied    ApplicationStatus = "applied"
	StatusTailored   ApplicationStatus = "tailored"
	StatusGenerating ApplicationStatus = "generating"
)

// transitions lists the allowed next states. Leaving "applied" is permitted;
// hiding tailoring actions after applying is a presentation concern.
var transitions = map[ApplicationStatus][]ApplicationStatus{
	StatusNotApplied: {StatusTailored, StatusGenerating, StatusApplied},
	StatusGenerating: {StatusTailored, StatusNotApplied, StatusApplied},
	StatusTailored:   {StatusGenerating, StatusApplied},
	StatusApplied:    {StatusGenerating, StatusTailored},
}

// ParseStatus converts a stored or user-supplied string into a status.
// The empty string maps to StatusNotApplied.
func ParseStatus(s string) (ApplicationStatus, error) {
	if s == "" {
		return StatusNotApplied, nil
	}
	st := ApplicationStatus(s)
	if _, ok := transitions[st]; !ok {
		return "", &ValidationError{Field: "status", Message: fmt.Sprintf("unknown application status %q", s)}
	}
	return st, nil
}

// CanTransition reports whether from -> to is allowed. Same-state is a no-op and allowed.
func CanTransition(from, to ApplicationStatus) bool {
	if from == "" {
		from = StatusNotApplied
	}
	if from == to {
		_, known := transitions[to]
		return known
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates from -> to and returns the new status.
func Transition(from, to ApplicationStatus) (ApplicationStatus, error) {
	if !CanTransition(from, to) {
		return from, &ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("cannot move application from %q to %q", from, to),
		}
	}
	return to, nil
}
