package tracker

import (
	"strings"

	"jobworkflow/internal/toolerr"
)

// Status is the tracker-facing vocabulary. It is deliberately disjoint from
// the database status strings ("Resume Written" here, resume_written there).
type Status string

const (
	StatusReviewed      Status = "Reviewed"
	StatusResumeWritten Status = "Resume Written"
	StatusApplied       Status = "Applied"
	StatusInterview     Status = "Interview"
	StatusOffer         Status = "Offer"
	StatusRejected      Status = "Rejected"
	StatusGhosted       Status = "Ghosted"
)

// AllStatuses returns the tracker vocabulary in display order.
func AllStatuses() []Status {
	return []Status{
		StatusReviewed,
		StatusResumeWritten,
		StatusApplied,
		StatusInterview,
		StatusOffer,
		StatusRejected,
		StatusGhosted,
	}
}

// ParseStatus validates a target status string. Matching is exact; padded or
// re-cased values are rejected so callers fix their input.
func ParseStatus(s string) (Status, error) {
	for _, st := range AllStatuses() {
		if s == string(st) {
			return st, nil
		}
	}
	return "", toolerr.Validation("invalid tracker status %q (allowed: %s)", s, statusList())
}

func statusList() string {
	all := AllStatuses()
	names := make([]string, len(all))
	for i, st := range all {
		names[i] = string(st)
	}
	return strings.Join(names, ", ")
}

// TransitionPlan classifies a requested status change.
type TransitionPlan int

const (
	TransitionNoop TransitionPlan = iota
	TransitionAllowed
	TransitionBlocked
)

// forwardTransitions lists the pairs the policy permits without force.
// Rejected and Ghosted are terminal and accept from any current status.
var forwardTransitions = map[Status][]Status{
	StatusReviewed:      {StatusResumeWritten},
	StatusResumeWritten: {StatusApplied},
}

// PlanTransition applies the tracker state machine to a current status read
// from a file (possibly hand-edited, so arbitrary text) and a validated
// target. Same-status requests are noops; everything not explicitly allowed
// is blocked and requires force.
func PlanTransition(current string, target Status) TransitionPlan {
	if current == string(target) {
		return TransitionNoop
	}
	if target == StatusRejected || target == StatusGhosted {
		return TransitionAllowed
	}
	for _, next := range forwardTransitions[Status(current)] {
		if next == target {
			return TransitionAllowed
		}
	}
	return TransitionBlocked
}
