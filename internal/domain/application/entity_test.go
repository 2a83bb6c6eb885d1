package application

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholar-hub/scholar-application-hub/internal/domain/scholarship"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/shared"
)

func testIDGen() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("req-%d", n)
	}
}

func testScholarship() *scholarship.Scholarship {
	return &scholarship.Scholarship{
		ID:       "sch-1",
		Name:     "STEM Excellence Award",
		Provider: "Acme Foundation",
		Amount:   5000,
		Deadline: time.Now().AddDate(0, 2, 0),
		Template: scholarship.Template{
			EssayRequired:         true,
			EssayPrompt:           "Describe a challenge you overcame.",
			EssayWordLimit:        scholarship.WordLimit{Min: 500, Max: 750},
			TranscriptRequired:    true,
			RecommendationLetters: 1,
		},
	}
}

func newTestApplication(t *testing.T) *Application {
	t.Helper()
	app, err := NewApplication(NewApplicationParams{
		ID:          "app-1",
		OwnerID:     "user-1",
		Scholarship: testScholarship(),
		NewID:       testIDGen(),
	})
	require.NoError(t, err)
	return app
}

func completeAllRequirements(t *testing.T, app *Application) {
	t.Helper()
	for _, req := range app.Requirements {
		require.NoError(t, app.UpdateRequirement(req.ID, RequirementCompleted, nil))
	}
}

func TestNewApplication(t *testing.T) {
	app := newTestApplication(t)

	assert.Equal(t, StatusInProgress, app.Status)
	assert.Equal(t, 0, app.Progress)
	assert.Equal(t, 1, app.Version)
	assert.Equal(t, -1, app.Essay.CurrentDraftIndex)
	assert.Equal(t, "Describe a challenge you overcame.", app.Essay.Prompt)

	// Application form + essay + transcript + 1 recommendation letter
	require.Len(t, app.Requirements, 4)
	assert.Equal(t, "Application form", app.Requirements[0].Label)
	assert.Equal(t, "Essay (500-750 words)", app.Requirements[1].Label)
	assert.Equal(t, "Official Transcript", app.Requirements[2].Label)
	assert.Equal(t, "1 Letter(s) of Recommendation", app.Requirements[3].Label)
	for _, req := range app.Requirements {
		assert.Equal(t, RequirementMissing, req.Status)
	}

	require.Len(t, app.Timeline, 1)
	assert.Equal(t, ActionStarted, app.Timeline[0].Action)
	assert.Equal(t, "STEM Excellence Award", app.Timeline[0].Details)
}

func TestNewApplication_Validation(t *testing.T) {
	sch := testScholarship()

	_, err := NewApplication(NewApplicationParams{OwnerID: "u", Scholarship: sch, NewID: testIDGen()})
	assert.Error(t, err)

	_, err = NewApplication(NewApplicationParams{ID: "a", Scholarship: sch, NewID: testIDGen()})
	assert.Error(t, err)

	_, err = NewApplication(NewApplicationParams{ID: "a", OwnerID: "u", NewID: testIDGen()})
	assert.Error(t, err)
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusInProgress, StatusSubmitted, true},
		{StatusInProgress, StatusWon, true},
		{StatusInProgress, StatusRejected, true},
		{StatusInProgress, StatusWithdrawn, true},
		{StatusSubmitted, StatusWon, true},
		{StatusSubmitted, StatusRejected, true},
		{StatusSubmitted, StatusWithdrawn, true},
		{StatusSubmitted, StatusSubmitted, false},
		{StatusWon, StatusRejected, false},
		{StatusWon, StatusWithdrawn, false},
		{StatusRejected, StatusWon, false},
		{StatusRejected, StatusSubmitted, false},
		{StatusWithdrawn, StatusSubmitted, false},
		{StatusWithdrawn, StatusWon, false},
		{StatusWithdrawn, StatusRejected, false},
		{StatusWithdrawn, StatusWithdrawn, false},
	}

	for _, tt := range tests {
		got := tt.from.CanTransitionTo(tt.to)
		assert.Equal(t, tt.allowed, got, "%s -> %s", tt.from, tt.to)
	}
}

func TestStatusFlags(t *testing.T) {
	assert.False(t, StatusInProgress.IsLocked())
	assert.True(t, StatusSubmitted.IsLocked())
	assert.True(t, StatusWon.IsLocked())
	assert.True(t, StatusRejected.IsLocked())
	assert.False(t, StatusWithdrawn.IsLocked())

	assert.False(t, StatusInProgress.IsTerminal())
	assert.False(t, StatusSubmitted.IsTerminal())
	assert.True(t, StatusWon.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.True(t, StatusWithdrawn.IsTerminal())
}

func TestUpdateRequirement(t *testing.T) {
	app := newTestApplication(t)
	reqID := app.Requirements[0].ID

	err := app.UpdateRequirement(reqID, RequirementCompleted, nil)
	require.NoError(t, err)

	assert.Equal(t, RequirementCompleted, app.Requirements[0].Status)
	assert.NotNil(t, app.Requirements[0].CompletedAt)
	assert.Equal(t, 25, app.Progress)

	// Reverting clears the completion timestamp.
	err = app.UpdateRequirement(reqID, RequirementMissing, nil)
	require.NoError(t, err)
	assert.Nil(t, app.Requirements[0].CompletedAt)
	assert.Equal(t, 0, app.Progress)
}

func TestUpdateRequirement_Errors(t *testing.T) {
	app := newTestApplication(t)

	err := app.UpdateRequirement("nope", RequirementCompleted, nil)
	assert.ErrorIs(t, err, shared.ErrUnknownRequirement)

	err = app.UpdateRequirement(app.Requirements[0].ID, RequirementStatus("bogus"), nil)
	assert.ErrorIs(t, err, shared.ErrBadRequirementStatus)
}

func TestAddAndRemoveRequirement(t *testing.T) {
	app := newTestApplication(t)

	req, err := app.AddRequirement("req-custom", "FAFSA confirmation", "", nil)
	require.NoError(t, err)
	assert.Equal(t, RequirementMissing, req.Status)
	assert.Len(t, app.Requirements, 5)

	err = app.RemoveRequirement("req-custom")
	require.NoError(t, err)
	assert.Len(t, app.Requirements, 4)

	err = app.RemoveRequirement("req-custom")
	assert.ErrorIs(t, err, shared.ErrUnknownRequirement)

	_, err = app.AddRequirement("req-x", "   ", "", nil)
	assert.Error(t, err)
}

func TestSubmit_BlockedByMissingRequirements(t *testing.T) {
	app := newTestApplication(t)

	err := app.Submit("SUB-1")
	require.Error(t, err)

	var missing *MissingRequirementsError
	require.ErrorAs(t, err, &missing)
	assert.Len(t, missing.Labels, 4)
	assert.ErrorIs(t, err, shared.ErrConflict)
	assert.Equal(t, StatusInProgress, app.Status)
	assert.Nil(t, app.SubmittedAt)
}

func TestSubmit_PendingAndDraftDoNotBlock(t *testing.T) {
	app := newTestApplication(t)
	require.NoError(t, app.UpdateRequirement(app.Requirements[0].ID, RequirementCompleted, nil))
	require.NoError(t, app.UpdateRequirement(app.Requirements[1].ID, RequirementDraft, nil))
	require.NoError(t, app.UpdateRequirement(app.Requirements[2].ID, RequirementPending, nil))
	require.NoError(t, app.UpdateRequirement(app.Requirements[3].ID, RequirementPending, nil))

	err := app.Submit("SUB-42")
	require.NoError(t, err)

	assert.Equal(t, StatusSubmitted, app.Status)
	assert.Equal(t, "SUB-42", app.ConfirmationNumber)
	assert.Equal(t, 100, app.Progress)
	require.NotNil(t, app.SubmittedAt)

	last := app.Timeline[len(app.Timeline)-1]
	assert.Equal(t, ActionSubmitted, last.Action)
	assert.Equal(t, "SUB-42", last.Details)
}

func TestSubmit_Twice(t *testing.T) {
	app := newTestApplication(t)
	completeAllRequirements(t, app)
	require.NoError(t, app.Submit("SUB-1"))

	err := app.Submit("SUB-2")
	assert.ErrorIs(t, err, shared.ErrIllegalTransition)
	assert.Equal(t, "SUB-1", app.ConfirmationNumber)
}

func TestLockedMutations(t *testing.T) {
	app := newTestApplication(t)
	completeAllRequirements(t, app)
	require.NoError(t, app.Submit("SUB-1"))

	err := app.UpdateRequirement(app.Requirements[0].ID, RequirementMissing, nil)
	assert.ErrorIs(t, err, shared.ErrApplicationLocked)

	_, err = app.AddRequirement("r", "Extra", "", nil)
	assert.ErrorIs(t, err, shared.ErrApplicationLocked)

	err = app.RemoveRequirement(app.Requirements[0].ID)
	assert.ErrorIs(t, err, shared.ErrApplicationLocked)

	_, err = app.SaveEssayDraft("content")
	assert.ErrorIs(t, err, shared.ErrApplicationLocked)

	err = app.AttachDocument(Document{ID: "d", Name: "f.pdf"})
	assert.ErrorIs(t, err, shared.ErrApplicationLocked)

	err = app.UpdateMutableFields(MutableFieldsPatch{Notes: strPtr("x")})
	assert.ErrorIs(t, err, shared.ErrApplicationLocked)
}

func TestWithdrawnMutations(t *testing.T) {
	app := newTestApplication(t)
	require.NoError(t, app.Withdraw())

	// Checklist, essay, and documents are frozen.
	err := app.UpdateRequirement(app.Requirements[0].ID, RequirementCompleted, nil)
	assert.ErrorIs(t, err, shared.ErrApplicationLocked)

	_, err = app.SaveEssayDraft("content")
	assert.ErrorIs(t, err, shared.ErrApplicationLocked)

	// Bookkeeping stays open after withdrawal.
	err = app.UpdateMutableFields(MutableFieldsPatch{Notes: strPtr("keeping for next year")})
	assert.NoError(t, err)
	assert.Equal(t, "keeping for next year", app.Notes)
}

func TestRecordWin(t *testing.T) {
	app := newTestApplication(t)
	completeAllRequirements(t, app)
	require.NoError(t, app.Submit("SUB-1"))

	award := &AwardDetails{Amount: 5000, Disbursement: "annual"}
	err := app.RecordWin(award)
	require.NoError(t, err)

	assert.Equal(t, StatusWon, app.Status)
	assert.Equal(t, award, app.AwardDetails)
	require.NotNil(t, app.WonAt)
	require.NotNil(t, app.DecisionDate)
	assert.Equal(t, ActionWon, app.Timeline[len(app.Timeline)-1].Action)
}

func TestRecordWin_FromInProgress(t *testing.T) {
	// A decision can arrive for a submission made outside the tracker.
	app := newTestApplication(t)

	err := app.RecordWin(nil)
	require.NoError(t, err)
	assert.Equal(t, StatusWon, app.Status)
	assert.Nil(t, app.AwardDetails)
}

func TestRecordRejection(t *testing.T) {
	app := newTestApplication(t)
	completeAllRequirements(t, app)
	require.NoError(t, app.Submit("SUB-1"))

	err := app.RecordRejection("strong pool this year")
	require.NoError(t, err)

	assert.Equal(t, StatusRejected, app.Status)
	assert.Equal(t, "strong pool this year", app.Feedback)
	require.NotNil(t, app.RejectedAt)

	// No decision can follow a decision.
	assert.ErrorIs(t, app.RecordWin(nil), shared.ErrIllegalTransition)
	assert.ErrorIs(t, app.Withdraw(), shared.ErrIllegalTransition)
}

func TestSaveEssayDraft_Versions(t *testing.T) {
	app := newTestApplication(t)

	first, err := app.SaveEssayDraft("one two three")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Version)
	assert.Equal(t, 3, first.WordCount)

	second, err := app.SaveEssayDraft("a longer second draft of the essay")
	require.NoError(t, err)
	assert.Equal(t, 2, second.Version)

	// History is append-only; the first draft is untouched.
	require.Len(t, app.Essay.Drafts, 2)
	assert.Equal(t, "one two three", app.Essay.Drafts[0].Content)
	assert.Equal(t, 1, app.Essay.CurrentDraftIndex)

	latest := app.LatestDraft()
	require.NotNil(t, latest)
	assert.Equal(t, 2, latest.Version)
}

func TestDocuments(t *testing.T) {
	app := newTestApplication(t)

	err := app.AttachDocument(Document{
		ID:          "doc-1",
		Name:        "transcript.pdf",
		Type:        "transcript",
		URL:         "https://files.example.com/abc",
		ExternalRef: "abc",
	})
	require.NoError(t, err)
	require.Len(t, app.Documents, 1)
	assert.False(t, app.Documents[0].UploadedAt.IsZero())

	removed, err := app.RemoveDocument("doc-1")
	require.NoError(t, err)
	assert.Equal(t, "abc", removed.ExternalRef)
	assert.Empty(t, app.Documents)

	_, err = app.RemoveDocument("doc-1")
	assert.ErrorIs(t, err, shared.ErrDocumentNotFound)
}

func TestAttachDocument_Validation(t *testing.T) {
	app := newTestApplication(t)

	err := app.AttachDocument(Document{Name: "no-id.pdf"})
	assert.Error(t, err)

	err = app.AttachDocument(Document{ID: "doc-1"})
	assert.Error(t, err)
}

func TestNextSteps(t *testing.T) {
	app := newTestApplication(t)
	require.NoError(t, app.RecordWin(&AwardDetails{Amount: 1000}))

	// Next steps stay open in every status.
	require.NoError(t, app.AddNextStep("Send thank-you letter", nil))
	require.NoError(t, app.AddNextStep("Return acceptance form", nil))

	err := app.CompleteNextStep(0)
	require.NoError(t, err)
	assert.True(t, app.NextSteps[0].Completed)
	assert.False(t, app.NextSteps[1].Completed)

	assert.ErrorIs(t, app.CompleteNextStep(5), shared.ErrNoSuchNextStep)
	assert.ErrorIs(t, app.CompleteNextStep(-1), shared.ErrNoSuchNextStep)

	err = app.AddNextStep("  ", nil)
	assert.Error(t, err)
}

func TestUpdateReminders(t *testing.T) {
	app := newTestApplication(t)
	completeAllRequirements(t, app)
	require.NoError(t, app.Submit("SUB-1"))

	// Reminders stay mutable after submission.
	err := app.UpdateReminders(Reminders{Email: true, Schedules: []ReminderSchedule{RemindOneDay}})
	require.NoError(t, err)
	assert.True(t, app.Reminders.HasSchedule(RemindOneDay))
	assert.False(t, app.Reminders.HasSchedule(RemindOneWeek))

	err = app.UpdateReminders(Reminders{Schedules: []ReminderSchedule{"fortnight"}})
	assert.Error(t, err)
}

func TestTimeline_AppendOnly(t *testing.T) {
	app := newTestApplication(t)
	before := len(app.Timeline)

	require.NoError(t, app.UpdateRequirement(app.Requirements[0].ID, RequirementDraft, nil))
	_, err := app.SaveEssayDraft("draft")
	require.NoError(t, err)

	require.Len(t, app.Timeline, before+2)
	assert.Equal(t, ActionRequirementUpdated, app.Timeline[before].Action)
	assert.Equal(t, ActionEssayUpdated, app.Timeline[before+1].Action)

	for _, entry := range app.Timeline {
		assert.True(t, entry.Action.IsValid())
		assert.False(t, entry.Timestamp.IsZero())
	}
}

func TestBelongsTo(t *testing.T) {
	app := newTestApplication(t)
	assert.True(t, app.BelongsTo("user-1"))
	assert.False(t, app.BelongsTo("user-2"))
}

func TestClone(t *testing.T) {
	app := newTestApplication(t)
	_, err := app.SaveEssayDraft("draft one")
	require.NoError(t, err)

	clone := app.Clone()
	require.NotNil(t, clone)

	// Mutating the clone must not leak into the original.
	clone.Requirements[0].Status = RequirementCompleted
	clone.Essay.Drafts[0].Content = "tampered"
	clone.Timeline[0].Details = "tampered"

	assert.Equal(t, RequirementMissing, app.Requirements[0].Status)
	assert.Equal(t, "draft one", app.Essay.Drafts[0].Content)
	assert.NotEqual(t, "tampered", app.Timeline[0].Details)
}

func strPtr(s string) *string { return &s }
