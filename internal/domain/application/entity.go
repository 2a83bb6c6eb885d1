// Package application contains the scholarship application aggregate:
// the entity itself, its requirement checklist, essay draft history,
// document records, and the append-only activity timeline. This is the
// consistency boundary of the system; all business rules live here.
package application

import (
	"strings"
	"time"

	"github.com/scholar-hub/scholar-application-hub/internal/domain/scholarship"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Status is the lifecycle status of an application.
type Status string

const (
	// StatusInProgress - the application is being worked on. Initial status.
	StatusInProgress Status = "in_progress"
	// StatusSubmitted - the application has been submitted and awaits a decision.
	StatusSubmitted Status = "submitted"
	// StatusWon - the scholarship was awarded. Terminal.
	StatusWon Status = "won"
	// StatusRejected - the application was declined. Terminal.
	StatusRejected Status = "rejected"
	// StatusWithdrawn - the applicant withdrew. Terminal.
	StatusWithdrawn Status = "withdrawn"
)

// IsValid checks that the status is one of the known values.
func (s Status) IsValid() bool {
	switch s {
	case StatusInProgress, StatusSubmitted, StatusWon, StatusRejected, StatusWithdrawn:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further status transitions are permitted.
func (s Status) IsTerminal() bool {
	return s == StatusWon || s == StatusRejected || s == StatusWithdrawn
}

// IsLocked reports whether free-form edits (checklist, essay, documents,
// notes) are blocked. Submitted applications are locked even though they
// are not terminal; withdrawn applications stay open for bookkeeping.
func (s Status) IsLocked() bool {
	return s == StatusSubmitted || s == StatusWon || s == StatusRejected
}

// CanTransitionTo checks transition legality.
// InProgress -> Submitted -> Won | Rejected; InProgress or Submitted -> Withdrawn.
// Win/reject from InProgress directly is allowed (a decision can arrive for a
// paper submission this tracker never saw).
func (s Status) CanTransitionTo(target Status) bool {
	switch target {
	case StatusSubmitted:
		return s == StatusInProgress
	case StatusWon, StatusRejected, StatusWithdrawn:
		return s == StatusInProgress || s == StatusSubmitted
	default:
		return false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SUB-ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// Document is the record of an externally stored file attached to the
// application. The binary itself lives in file storage; this core only
// keeps the reference.
type Document struct {
	// ID is the document record identifier.
	ID string `json:"id"`

	// Name is the display file name.
	Name string `json:"name"`

	// Type categorizes the document (transcript, essay, letter, ...).
	Type string `json:"type"`

	// URL is the public or signed URL returned by file storage.
	URL string `json:"url"`

	// ExternalRef is the storage-side handle used for deletion.
	ExternalRef string `json:"external_ref"`

	// UploadedAt is when the record was attached.
	UploadedAt time.Time `json:"uploaded_at"`
}

// NextStep is a free-form follow-up item the applicant tracks after a
// decision (thank-you letter, acceptance paperwork, ...).
type NextStep struct {
	Step      string     `json:"step"`
	Completed bool       `json:"completed"`
	DueDate   *time.Time `json:"due_date,omitempty"`
}

// AwardDetails describes a won scholarship's payout.
type AwardDetails struct {
	Amount       float64    `json:"amount"`
	Disbursement string     `json:"disbursement"`
	ExpectedDate *time.Time `json:"expected_date,omitempty"`
}

// ReminderSchedule is a named lead time before the scholarship deadline.
type ReminderSchedule string

const (
	RemindTwoWeeks  ReminderSchedule = "two_weeks"
	RemindOneWeek   ReminderSchedule = "one_week"
	RemindThreeDays ReminderSchedule = "three_days"
	RemindOneDay    ReminderSchedule = "one_day"
)

// IsValid checks that the schedule is a known value.
func (r ReminderSchedule) IsValid() bool {
	switch r {
	case RemindTwoWeeks, RemindOneWeek, RemindThreeDays, RemindOneDay:
		return true
	default:
		return false
	}
}

// Reminders holds the applicant's reminder preferences. This core only
// stores them; dispatch belongs to an external notifier.
type Reminders struct {
	Email     bool               `json:"email"`
	SMS       bool               `json:"sms"`
	Push      bool               `json:"push"`
	Schedules []ReminderSchedule `json:"schedules"`
}

// DefaultReminders returns the reminder preferences for a new application.
func DefaultReminders() Reminders {
	return Reminders{
		Email:     true,
		SMS:       false,
		Push:      true,
		Schedules: []ReminderSchedule{RemindOneWeek, RemindThreeDays, RemindOneDay},
	}
}

// HasSchedule reports whether a lead time is enabled.
func (r Reminders) HasSchedule(s ReminderSchedule) bool {
	for _, have := range r.Schedules {
		if have == s {
			return true
		}
	}
	return false
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: APPLICATION
// ══════════════════════════════════════════════════════════════════════════════

// Application is the aggregate root tracking one student's application
// against one scholarship. Exactly one application may exist per
// (owner, scholarship) pair; the repository enforces the uniqueness.
type Application struct {
	// ID is the internal unique identifier (UUID in string form).
	ID string

	// OwnerID is the student who owns this application.
	OwnerID string

	// ScholarshipID references the catalog entry applied to.
	ScholarshipID string

	// Status is the lifecycle status.
	Status Status

	// Progress is the derived completion percentage (0-100). It is
	// always recomputed from Requirements and never accepted as input.
	Progress int

	// Requirements is the ordered checklist gating submission.
	Requirements []Requirement

	// Essay holds the prompt, word limit, and versioned draft history.
	Essay Essay

	// Documents are references to externally stored files.
	Documents []Document

	// SubmittedAt is when the application was submitted.
	SubmittedAt *time.Time

	// ConfirmationNumber is the submission receipt.
	ConfirmationNumber string

	// DecisionDate is when a win or rejection was recorded.
	DecisionDate *time.Time

	// DecisionExpectedBy is when the provider said it would decide.
	DecisionExpectedBy *time.Time

	// AwardDetails is set when the application is won.
	AwardDetails *AwardDetails

	// WonAt is when the win was recorded.
	WonAt *time.Time

	// RejectedAt is when the rejection was recorded.
	RejectedAt *time.Time

	// Feedback is the provider's rejection feedback, if any.
	Feedback string

	// NextSteps are post-decision follow-up items.
	NextSteps []NextStep

	// Notes are the applicant's free-form notes.
	Notes string

	// Reminders are the stored reminder preferences.
	Reminders Reminders

	// Timeline is the append-only audit log of lifecycle events.
	Timeline []TimelineEntry

	// LastActivityAt is the time of the most recent mutation.
	LastActivityAt time.Time

	// Version supports optimistic concurrency. The repository performs a
	// compare-and-swap on it and bumps it on every successful persist.
	Version int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewApplicationParams contains parameters for starting an application.
type NewApplicationParams struct {
	// ID is the new aggregate's identifier.
	ID string

	// OwnerID is the applying student.
	OwnerID string

	// Scholarship is the catalog entry being applied to; its template
	// seeds the requirement checklist and essay word limit.
	Scholarship *scholarship.Scholarship

	// NewID generates identifiers for checklist entries.
	NewID func() string
}

// NewApplication starts a fresh application against a scholarship.
func NewApplication(params NewApplicationParams) (*Application, error) {
	if params.ID == "" {
		return nil, shared.NewDomainError("application", "Create", shared.ErrInvalidID, "application id is required")
	}
	if params.OwnerID == "" {
		return nil, shared.NewDomainError("application", "Create", shared.ErrInvalidID, "owner id is required")
	}
	if params.Scholarship == nil {
		return nil, shared.NewDomainError("application", "Create", shared.ErrInvalidInput, "scholarship is required")
	}
	if params.NewID == nil {
		return nil, shared.NewDomainError("application", "Create", shared.ErrInvalidInput, "id generator is required")
	}

	now := time.Now().UTC()
	tmpl := params.Scholarship.Template
	requirements := BuildChecklist(tmpl, params.NewID)

	app := &Application{
		ID:            params.ID,
		OwnerID:       params.OwnerID,
		ScholarshipID: params.Scholarship.ID,
		Status:        StatusInProgress,
		Requirements:  requirements,
		Essay: Essay{
			Prompt:            tmpl.EssayPrompt,
			WordLimit:         tmpl.EssayWordLimit,
			CurrentDraftIndex: -1,
		},
		Documents:      []Document{},
		NextSteps:      []NextStep{},
		Reminders:      DefaultReminders(),
		Timeline:       []TimelineEntry{},
		LastActivityAt: now,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	app.Progress = CalculateProgress(app.Requirements)
	app.appendTimeline(ActionStarted, params.Scholarship.Name, now)

	return app, nil
}

// touch records a mutation: bumps the activity clock and appends exactly
// one timeline entry for the operation.
func (a *Application) touch(action TimelineAction, details string) {
	now := time.Now().UTC()
	a.appendTimeline(action, details, now)
	a.LastActivityAt = now
	a.UpdatedAt = now
}

func (a *Application) appendTimeline(action TimelineAction, details string, at time.Time) {
	a.Timeline = append(a.Timeline, TimelineEntry{
		Action:    action,
		Timestamp: at,
		Details:   details,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// CHECKLIST OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// UpdateRequirement changes a checklist entry's status and recomputes
// progress. Sets CompletedAt on transition to Completed.
func (a *Application) UpdateRequirement(reqID string, status RequirementStatus, details *string) error {
	if a.Status.IsLocked() || a.Status == StatusWithdrawn {
		return shared.ErrApplicationLocked
	}
	if !status.IsValid() {
		return shared.ErrBadRequirementStatus
	}

	idx := a.findRequirement(reqID)
	if idx < 0 {
		return shared.ErrUnknownRequirement
	}

	req := &a.Requirements[idx]
	req.Status = status
	if details != nil {
		req.Details = *details
	}
	if status == RequirementCompleted {
		now := time.Now().UTC()
		req.CompletedAt = &now
	} else {
		req.CompletedAt = nil
	}

	a.Progress = CalculateProgress(a.Requirements)
	a.touch(ActionRequirementUpdated, req.Label)
	return nil
}

// AddRequirement appends a custom checklist entry with status Missing.
func (a *Application) AddRequirement(id, label, details string, dueDate *time.Time) (Requirement, error) {
	if a.Status.IsLocked() || a.Status == StatusWithdrawn {
		return Requirement{}, shared.ErrApplicationLocked
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return Requirement{}, shared.NewDomainError("application", "AddRequirement", shared.ErrEmptyValue, "requirement label is required")
	}

	req := Requirement{
		ID:      id,
		Label:   label,
		Status:  RequirementMissing,
		Details: details,
		DueDate: dueDate,
	}
	a.Requirements = append(a.Requirements, req)
	a.Progress = CalculateProgress(a.Requirements)
	a.touch(ActionRequirementAdded, label)
	return req, nil
}

// RemoveRequirement deletes a checklist entry and recomputes progress.
func (a *Application) RemoveRequirement(reqID string) error {
	if a.Status.IsLocked() || a.Status == StatusWithdrawn {
		return shared.ErrApplicationLocked
	}

	idx := a.findRequirement(reqID)
	if idx < 0 {
		return shared.ErrUnknownRequirement
	}

	label := a.Requirements[idx].Label
	a.Requirements = append(a.Requirements[:idx], a.Requirements[idx+1:]...)
	a.Progress = CalculateProgress(a.Requirements)
	a.touch(ActionRequirementRemoved, label)
	return nil
}

func (a *Application) findRequirement(reqID string) int {
	for i := range a.Requirements {
		if a.Requirements[i].ID == reqID {
			return i
		}
	}
	return -1
}

// MissingRequirements returns the labels of requirements still Missing.
func (a *Application) MissingRequirements() []string {
	var labels []string
	for _, req := range a.Requirements {
		if req.Status == RequirementMissing {
			labels = append(labels, req.Label)
		}
	}
	return labels
}

// ══════════════════════════════════════════════════════════════════════════════
// ESSAY OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// SaveEssayDraft appends a new draft snapshot to the essay history.
// History is append-only; past drafts are never edited.
func (a *Application) SaveEssayDraft(content string) (EssayDraft, error) {
	if a.Status.IsLocked() || a.Status == StatusWithdrawn {
		return EssayDraft{}, shared.ErrApplicationLocked
	}

	draft := a.Essay.SaveDraft(content, time.Now().UTC())
	a.touch(ActionEssayUpdated, "")
	return draft, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOCUMENT OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// AttachDocument appends a document record. The binary upload has already
// happened; the caller supplies the resulting URL and external reference.
func (a *Application) AttachDocument(doc Document) error {
	if a.Status.IsLocked() || a.Status == StatusWithdrawn {
		return shared.ErrApplicationLocked
	}
	if doc.ID == "" || doc.Name == "" {
		return shared.NewDomainError("application", "AttachDocument", shared.ErrInvalidInput, "document id and name are required")
	}

	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}
	a.Documents = append(a.Documents, doc)
	a.touch(ActionDocumentAdded, doc.Name)
	return nil
}

// RemoveDocument deletes a document record and returns it so the caller
// can run the external-storage cleanup. Record removal is authoritative;
// the storage side effect is best-effort.
func (a *Application) RemoveDocument(docID string) (Document, error) {
	if a.Status.IsLocked() || a.Status == StatusWithdrawn {
		return Document{}, shared.ErrApplicationLocked
	}

	for i, doc := range a.Documents {
		if doc.ID == docID {
			a.Documents = append(a.Documents[:i], a.Documents[i+1:]...)
			a.touch(ActionDocumentRemoved, doc.Name)
			return doc, nil
		}
	}
	return Document{}, shared.ErrDocumentNotFound
}

// ══════════════════════════════════════════════════════════════════════════════
// STATE TRANSITIONS
// ══════════════════════════════════════════════════════════════════════════════

// MissingRequirementsError is the submit precondition failure: at least
// one requirement is still Missing.
type MissingRequirementsError struct {
	Labels []string
}

func (e *MissingRequirementsError) Error() string {
	return "cannot submit: missing requirements: " + strings.Join(e.Labels, ", ")
}

// Is makes the error match the conflict family.
func (e *MissingRequirementsError) Is(target error) bool {
	return target == shared.ErrConflict
}

// Submit transitions the application to Submitted. Rejected while any
// requirement has status Missing.
func (a *Application) Submit(confirmationNumber string) error {
	if !a.Status.CanTransitionTo(StatusSubmitted) {
		return shared.ErrIllegalTransition
	}
	if missing := a.MissingRequirements(); len(missing) > 0 {
		return &MissingRequirementsError{Labels: missing}
	}

	now := time.Now().UTC()
	a.Status = StatusSubmitted
	a.SubmittedAt = &now
	a.ConfirmationNumber = confirmationNumber
	a.Progress = 100
	a.touch(ActionSubmitted, confirmationNumber)
	return nil
}

// RecordWin marks the application as won and stores the award details.
// Legal from InProgress or Submitted only.
func (a *Application) RecordWin(award *AwardDetails) error {
	if !a.Status.CanTransitionTo(StatusWon) {
		return shared.ErrIllegalTransition
	}

	now := time.Now().UTC()
	a.Status = StatusWon
	a.WonAt = &now
	a.DecisionDate = &now
	a.AwardDetails = award
	a.touch(ActionWon, "")
	return nil
}

// RecordRejection marks the application as rejected and stores feedback.
// Legal from InProgress or Submitted only.
func (a *Application) RecordRejection(feedback string) error {
	if !a.Status.CanTransitionTo(StatusRejected) {
		return shared.ErrIllegalTransition
	}

	now := time.Now().UTC()
	a.Status = StatusRejected
	a.RejectedAt = &now
	a.DecisionDate = &now
	a.Feedback = feedback
	a.touch(ActionRejected, "")
	return nil
}

// Withdraw abandons the application. Legal from InProgress or Submitted.
func (a *Application) Withdraw() error {
	if !a.Status.CanTransitionTo(StatusWithdrawn) {
		return shared.ErrIllegalTransition
	}

	a.Status = StatusWithdrawn
	a.touch(ActionWithdrawn, "")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// BOOKKEEPING MUTATIONS
// ══════════════════════════════════════════════════════════════════════════════

// MutableFieldsPatch is the allow-list for free-form application updates.
// nil values mean "don't change".
type MutableFieldsPatch struct {
	// Notes replaces the applicant's notes.
	Notes *string

	// Reminders replaces the reminder preferences.
	Reminders *Reminders

	// DecisionExpectedBy replaces the expected decision date.
	DecisionExpectedBy *time.Time
}

// UpdateMutableFields applies an allow-listed patch. Rejected once the
// status is Submitted, Won, or Rejected; withdrawn applications stay open
// for this bookkeeping.
func (a *Application) UpdateMutableFields(patch MutableFieldsPatch) error {
	if a.Status.IsLocked() {
		return shared.ErrApplicationLocked
	}

	if patch.Notes != nil {
		a.Notes = *patch.Notes
	}
	if patch.Reminders != nil {
		a.Reminders = *patch.Reminders
	}
	if patch.DecisionExpectedBy != nil {
		a.DecisionExpectedBy = patch.DecisionExpectedBy
	}
	a.touch(ActionDetailsUpdated, "")
	return nil
}

// UpdateReminders replaces reminder preferences. Unlike notes, reminders
// stay mutable in every status.
func (a *Application) UpdateReminders(r Reminders) error {
	for _, s := range r.Schedules {
		if !s.IsValid() {
			return shared.NewDomainError("application", "UpdateReminders", shared.ErrValidation, "unrecognized reminder schedule")
		}
	}
	a.Reminders = r
	a.touch(ActionRemindersUpdated, "")
	return nil
}

// AddNextStep appends a follow-up item. Next steps stay mutable in every
// status; they exist mostly for post-decision bookkeeping.
func (a *Application) AddNextStep(step string, dueDate *time.Time) error {
	step = strings.TrimSpace(step)
	if step == "" {
		return shared.NewDomainError("application", "AddNextStep", shared.ErrEmptyValue, "step text is required")
	}

	a.NextSteps = append(a.NextSteps, NextStep{Step: step, DueDate: dueDate})
	a.touch(ActionNextStepAdded, step)
	return nil
}

// CompleteNextStep marks the follow-up item at index as done.
func (a *Application) CompleteNextStep(index int) error {
	if index < 0 || index >= len(a.NextSteps) {
		return shared.ErrNoSuchNextStep
	}

	a.NextSteps[index].Completed = true
	a.touch(ActionNextStepCompleted, a.NextSteps[index].Step)
	return nil
}

// LatestDraft returns the current essay draft, or nil when none exists.
func (a *Application) LatestDraft() *EssayDraft {
	if a.Essay.CurrentDraftIndex < 0 || a.Essay.CurrentDraftIndex >= len(a.Essay.Drafts) {
		return nil
	}
	return &a.Essay.Drafts[a.Essay.CurrentDraftIndex]
}

// BelongsTo checks ownership.
func (a *Application) BelongsTo(ownerID string) bool {
	return a.OwnerID == ownerID
}

// Clone creates a deep copy of the application.
func (a *Application) Clone() *Application {
	if a == nil {
		return nil
	}

	clone := *a
	clone.Requirements = append([]Requirement(nil), a.Requirements...)
	clone.Essay.Drafts = append([]EssayDraft(nil), a.Essay.Drafts...)
	clone.Documents = append([]Document(nil), a.Documents...)
	clone.NextSteps = append([]NextStep(nil), a.NextSteps...)
	clone.Timeline = append([]TimelineEntry(nil), a.Timeline...)
	clone.Reminders.Schedules = append([]ReminderSchedule(nil), a.Reminders.Schedules...)
	return &clone
}
