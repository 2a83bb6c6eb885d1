package command

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/scholar-hub/scholar-application-hub/internal/domain/application"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/shared"
	"github.com/scholar-hub/scholar-application-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// DETAILS COMMANDS
// Patch the mutable fields (notes, reminders, expected decision date)
// and manage the next-steps list. Reminders and next steps stay
// editable in every status; the notes patch is rejected once the
// application is submitted or decided.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateDetailsCommand patches the mutable fields. Nil fields are left
// unchanged.
type UpdateDetailsCommand struct {
	// ApplicationID identifies the application.
	ApplicationID string

	// OwnerID is the acting student, for the ownership check.
	OwnerID string

	// Notes replaces the free-form notes.
	Notes *string

	// Reminders replaces the reminder preferences.
	Reminders *application.Reminders

	// DecisionExpectedBy replaces the expected decision date.
	DecisionExpectedBy *time.Time
}

// Validate validates the command.
func (c UpdateDetailsCommand) Validate() error {
	if c.ApplicationID == "" {
		return errors.New("update_details: application_id is required")
	}
	if c.OwnerID == "" {
		return errors.New("update_details: owner_id is required")
	}
	if c.Notes == nil && c.Reminders == nil && c.DecisionExpectedBy == nil {
		return errors.New("update_details: nothing to update")
	}
	return nil
}

// UpdateRemindersCommand replaces the reminder preferences only.
type UpdateRemindersCommand struct {
	ApplicationID string
	OwnerID       string
	Reminders     application.Reminders
}

// Validate validates the command.
func (c UpdateRemindersCommand) Validate() error {
	if c.ApplicationID == "" {
		return errors.New("update_reminders: application_id is required")
	}
	if c.OwnerID == "" {
		return errors.New("update_reminders: owner_id is required")
	}
	for _, s := range c.Reminders.Schedules {
		if !s.IsValid() {
			return errors.New("update_reminders: unknown reminder schedule: " + string(s))
		}
	}
	return nil
}

// AddNextStepCommand appends a follow-up item.
type AddNextStepCommand struct {
	ApplicationID string
	OwnerID       string

	// Step is the follow-up text.
	Step string

	// DueDate is an optional due date.
	DueDate *time.Time
}

// Validate validates the command.
func (c AddNextStepCommand) Validate() error {
	if c.ApplicationID == "" {
		return errors.New("add_next_step: application_id is required")
	}
	if c.OwnerID == "" {
		return errors.New("add_next_step: owner_id is required")
	}
	if strings.TrimSpace(c.Step) == "" {
		return errors.New("add_next_step: step is required")
	}
	return nil
}

// CompleteNextStepCommand checks off a follow-up item by position.
type CompleteNextStepCommand struct {
	ApplicationID string
	OwnerID       string

	// Index is the zero-based position in the next-steps list.
	Index int
}

// Validate validates the command.
func (c CompleteNextStepCommand) Validate() error {
	if c.ApplicationID == "" {
		return errors.New("complete_next_step: application_id is required")
	}
	if c.OwnerID == "" {
		return errors.New("complete_next_step: owner_id is required")
	}
	if c.Index < 0 {
		return errors.New("complete_next_step: index cannot be negative")
	}
	return nil
}

// DetailsResult is the shared result of details commands.
type DetailsResult struct {
	// Application is the aggregate after the change.
	Application *application.Application
}

// DetailsHandler handles details and next-step commands.
type DetailsHandler struct {
	repo  application.Repository
	cache application.Cache
	log   *logger.Logger
}

// NewDetailsHandler creates a new DetailsHandler.
func NewDetailsHandler(
	repo application.Repository,
	cache application.Cache,
	log *logger.Logger,
) *DetailsHandler {
	return &DetailsHandler{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// HandleUpdate executes the update details command.
func (h *DetailsHandler) HandleUpdate(ctx context.Context, cmd UpdateDetailsCommand) (*DetailsResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("application", "UpdateDetails", shared.ErrValidation, err.Error(), err)
	}

	app, err := loadOwned(ctx, h.repo, cmd.ApplicationID, cmd.OwnerID)
	if err != nil {
		return nil, err
	}

	err = app.UpdateMutableFields(application.MutableFieldsPatch{
		Notes:              cmd.Notes,
		Reminders:          cmd.Reminders,
		DecisionExpectedBy: cmd.DecisionExpectedBy,
	})
	if err != nil {
		return nil, err
	}

	if err := persist(ctx, h.repo, h.cache, h.log, app); err != nil {
		return nil, err
	}

	h.log.Info("application details updated", logger.ApplicationID(app.ID))

	return &DetailsResult{Application: app}, nil
}

// HandleUpdateReminders executes the update reminders command.
func (h *DetailsHandler) HandleUpdateReminders(ctx context.Context, cmd UpdateRemindersCommand) (*DetailsResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("application", "UpdateReminders", shared.ErrValidation, err.Error(), err)
	}

	app, err := loadOwned(ctx, h.repo, cmd.ApplicationID, cmd.OwnerID)
	if err != nil {
		return nil, err
	}

	if err := app.UpdateReminders(cmd.Reminders); err != nil {
		return nil, err
	}

	if err := persist(ctx, h.repo, h.cache, h.log, app); err != nil {
		return nil, err
	}

	h.log.Info("reminders updated", logger.ApplicationID(app.ID))

	return &DetailsResult{Application: app}, nil
}

// HandleAddNextStep executes the add next step command.
func (h *DetailsHandler) HandleAddNextStep(ctx context.Context, cmd AddNextStepCommand) (*DetailsResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("application", "AddNextStep", shared.ErrValidation, err.Error(), err)
	}

	app, err := loadOwned(ctx, h.repo, cmd.ApplicationID, cmd.OwnerID)
	if err != nil {
		return nil, err
	}

	if err := app.AddNextStep(cmd.Step, cmd.DueDate); err != nil {
		return nil, err
	}

	if err := persist(ctx, h.repo, h.cache, h.log, app); err != nil {
		return nil, err
	}

	h.log.Info("next step added",
		logger.ApplicationID(app.ID),
		logger.Int("next_steps", len(app.NextSteps)),
	)

	return &DetailsResult{Application: app}, nil
}

// HandleCompleteNextStep executes the complete next step command.
func (h *DetailsHandler) HandleCompleteNextStep(ctx context.Context, cmd CompleteNextStepCommand) (*DetailsResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("application", "CompleteNextStep", shared.ErrValidation, err.Error(), err)
	}

	app, err := loadOwned(ctx, h.repo, cmd.ApplicationID, cmd.OwnerID)
	if err != nil {
		return nil, err
	}

	if err := app.CompleteNextStep(cmd.Index); err != nil {
		return nil, err
	}

	if err := persist(ctx, h.repo, h.cache, h.log, app); err != nil {
		return nil, err
	}

	h.log.Info("next step completed",
		logger.ApplicationID(app.ID),
		logger.Int("index", cmd.Index),
	)

	return &DetailsResult{Application: app}, nil
}
