package application

import (
	"time"
)

// TimelineAction identifies a lifecycle event. The timeline is the
// durable audit trail the UI renders as application history; keeping the
// action a closed enum lets consumers pattern-match on it safely.
type TimelineAction string

const (
	ActionStarted            TimelineAction = "Started"
	ActionRequirementUpdated TimelineAction = "Requirement Updated"
	ActionRequirementAdded   TimelineAction = "Requirement Added"
	ActionRequirementRemoved TimelineAction = "Requirement Removed"
	ActionEssayUpdated       TimelineAction = "Essay Updated"
	ActionDocumentAdded      TimelineAction = "Document Added"
	ActionDocumentRemoved    TimelineAction = "Document Removed"
	ActionSubmitted          TimelineAction = "Submitted"
	ActionWon                TimelineAction = "Won"
	ActionRejected           TimelineAction = "Rejected"
	ActionWithdrawn          TimelineAction = "Withdrawn"
	ActionDetailsUpdated     TimelineAction = "Details Updated"
	ActionRemindersUpdated   TimelineAction = "Reminders Updated"
	ActionNextStepAdded      TimelineAction = "Next Step Added"
	ActionNextStepCompleted  TimelineAction = "Next Step Completed"
)

// IsValid checks that the action is one of the known values.
func (a TimelineAction) IsValid() bool {
	switch a {
	case ActionStarted, ActionRequirementUpdated, ActionRequirementAdded,
		ActionRequirementRemoved, ActionEssayUpdated, ActionDocumentAdded,
		ActionDocumentRemoved, ActionSubmitted, ActionWon, ActionRejected,
		ActionWithdrawn, ActionDetailsUpdated, ActionRemindersUpdated,
		ActionNextStepAdded, ActionNextStepCompleted:
		return true
	default:
		return false
	}
}

// TimelineEntry is one append-only audit record. Entries are immutable
// once appended; no operation removes or edits a past entry.
type TimelineEntry struct {
	// Action is the event type.
	Action TimelineAction `json:"action"`

	// Timestamp is when the event happened.
	Timestamp time.Time `json:"timestamp"`

	// Details carries event-specific context (requirement label,
	// confirmation number, document name).
	Details string `json:"details,omitempty"`
}
