package application

import (
	"math"
	"time"
)

// RequirementStatus is the state of a single checklist entry.
type RequirementStatus string

const (
	// RequirementCompleted - the requirement is done.
	RequirementCompleted RequirementStatus = "completed"
	// RequirementPending - the requirement is waiting on someone else
	// (a recommender, a registrar).
	RequirementPending RequirementStatus = "pending"
	// RequirementMissing - nothing has been done yet. Blocks submission.
	RequirementMissing RequirementStatus = "missing"
	// RequirementDraft - work has started but is unfinished. Counts as
	// half-done for progress.
	RequirementDraft RequirementStatus = "draft"
)

// IsValid checks that the status is one of the known values.
func (s RequirementStatus) IsValid() bool {
	switch s {
	case RequirementCompleted, RequirementPending, RequirementMissing, RequirementDraft:
		return true
	default:
		return false
	}
}

// Requirement is a single checklist item an applicant must satisfy
// before submission.
type Requirement struct {
	// ID is the checklist entry identifier.
	ID string `json:"id"`

	// Label is the display text ("Official Transcript").
	Label string `json:"label"`

	// Status is the entry's completion state.
	Status RequirementStatus `json:"status"`

	// Details carries extra context (essay prompt, "0/2 received").
	Details string `json:"details,omitempty"`

	// DueDate is an optional per-requirement deadline.
	DueDate *time.Time `json:"due_date,omitempty"`

	// CompletedAt is set when the status transitions to Completed.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// CalculateProgress maps a requirement list to a 0-100 completion
// percentage. Completed entries count fully, drafts count half; the
// result is rounded to the nearest integer. An empty list is 0.
func CalculateProgress(reqs []Requirement) int {
	if len(reqs) == 0 {
		return 0
	}

	var completed, draft int
	for _, req := range reqs {
		switch req.Status {
		case RequirementCompleted:
			completed++
		case RequirementDraft:
			draft++
		}
	}

	score := (float64(completed) + 0.5*float64(draft)) / float64(len(reqs))
	return int(math.Round(score * 100))
}
