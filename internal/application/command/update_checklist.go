package command

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/scholar-hub/scholar-application-hub/internal/domain/application"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/shared"
	"github.com/scholar-hub/scholar-application-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHECKLIST COMMANDS
// Update, add, and remove requirement checklist entries. Every change
// recomputes the derived progress percentage.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateRequirementCommand changes one checklist entry's status.
type UpdateRequirementCommand struct {
	// ApplicationID identifies the application.
	ApplicationID string

	// OwnerID is the acting student, for the ownership check.
	OwnerID string

	// RequirementID identifies the checklist entry.
	RequirementID string

	// Status is the new requirement status.
	Status application.RequirementStatus

	// Details optionally replaces the entry's details text.
	Details *string
}

// Validate validates the command.
func (c UpdateRequirementCommand) Validate() error {
	if c.ApplicationID == "" {
		return errors.New("update_requirement: application_id is required")
	}
	if c.OwnerID == "" {
		return errors.New("update_requirement: owner_id is required")
	}
	if c.RequirementID == "" {
		return errors.New("update_requirement: requirement_id is required")
	}
	return nil
}

// AddRequirementCommand appends a custom checklist entry.
type AddRequirementCommand struct {
	ApplicationID string
	OwnerID       string

	// Label is the requirement's display text.
	Label string

	// Details is optional free text.
	Details string

	// DueDate is an optional entry-level due date.
	DueDate *time.Time
}

// Validate validates the command.
func (c AddRequirementCommand) Validate() error {
	if c.ApplicationID == "" {
		return errors.New("add_requirement: application_id is required")
	}
	if c.OwnerID == "" {
		return errors.New("add_requirement: owner_id is required")
	}
	if c.Label == "" {
		return errors.New("add_requirement: label is required")
	}
	return nil
}

// RemoveRequirementCommand deletes a checklist entry.
type RemoveRequirementCommand struct {
	ApplicationID string
	OwnerID       string
	RequirementID string
}

// Validate validates the command.
func (c RemoveRequirementCommand) Validate() error {
	if c.ApplicationID == "" {
		return errors.New("remove_requirement: application_id is required")
	}
	if c.OwnerID == "" {
		return errors.New("remove_requirement: owner_id is required")
	}
	if c.RequirementID == "" {
		return errors.New("remove_requirement: requirement_id is required")
	}
	return nil
}

// ChecklistResult is the shared result of checklist commands.
type ChecklistResult struct {
	// Application is the aggregate after the change.
	Application *application.Application

	// Requirement is the entry that was changed or added.
	Requirement *application.Requirement
}

// ChecklistHandler handles checklist commands.
type ChecklistHandler struct {
	repo  application.Repository
	cache application.Cache
	log   *logger.Logger
}

// NewChecklistHandler creates a new ChecklistHandler.
func NewChecklistHandler(
	repo application.Repository,
	cache application.Cache,
	log *logger.Logger,
) *ChecklistHandler {
	return &ChecklistHandler{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// HandleUpdate executes the update requirement command.
func (h *ChecklistHandler) HandleUpdate(ctx context.Context, cmd UpdateRequirementCommand) (*ChecklistResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("application", "UpdateRequirement", shared.ErrValidation, err.Error(), err)
	}

	app, err := loadOwned(ctx, h.repo, cmd.ApplicationID, cmd.OwnerID)
	if err != nil {
		return nil, err
	}

	if err := app.UpdateRequirement(cmd.RequirementID, cmd.Status, cmd.Details); err != nil {
		return nil, err
	}

	if err := persist(ctx, h.repo, h.cache, h.log, app); err != nil {
		return nil, err
	}

	h.log.Info("requirement updated",
		logger.ApplicationID(app.ID),
		logger.String("requirement_id", cmd.RequirementID),
		logger.String("requirement_status", string(cmd.Status)),
		logger.ProgressField(app.Progress),
	)

	return &ChecklistResult{
		Application: app,
		Requirement: findRequirement(app, cmd.RequirementID),
	}, nil
}

// HandleAdd executes the add requirement command.
func (h *ChecklistHandler) HandleAdd(ctx context.Context, cmd AddRequirementCommand) (*ChecklistResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("application", "AddRequirement", shared.ErrValidation, err.Error(), err)
	}

	app, err := loadOwned(ctx, h.repo, cmd.ApplicationID, cmd.OwnerID)
	if err != nil {
		return nil, err
	}

	req, err := app.AddRequirement(uuid.NewString(), cmd.Label, cmd.Details, cmd.DueDate)
	if err != nil {
		return nil, err
	}

	if err := persist(ctx, h.repo, h.cache, h.log, app); err != nil {
		return nil, err
	}

	h.log.Info("requirement added",
		logger.ApplicationID(app.ID),
		logger.String("requirement_id", req.ID),
		logger.ProgressField(app.Progress),
	)

	return &ChecklistResult{Application: app, Requirement: &req}, nil
}

// HandleRemove executes the remove requirement command.
func (h *ChecklistHandler) HandleRemove(ctx context.Context, cmd RemoveRequirementCommand) (*ChecklistResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("application", "RemoveRequirement", shared.ErrValidation, err.Error(), err)
	}

	app, err := loadOwned(ctx, h.repo, cmd.ApplicationID, cmd.OwnerID)
	if err != nil {
		return nil, err
	}

	if err := app.RemoveRequirement(cmd.RequirementID); err != nil {
		return nil, err
	}

	if err := persist(ctx, h.repo, h.cache, h.log, app); err != nil {
		return nil, err
	}

	h.log.Info("requirement removed",
		logger.ApplicationID(app.ID),
		logger.String("requirement_id", cmd.RequirementID),
		logger.ProgressField(app.Progress),
	)

	return &ChecklistResult{Application: app}, nil
}

func findRequirement(app *application.Application, reqID string) *application.Requirement {
	for i := range app.Requirements {
		if app.Requirements[i].ID == reqID {
			return &app.Requirements[i]
		}
	}
	return nil
}
