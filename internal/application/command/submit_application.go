package command

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/scholar-hub/scholar-application-hub/internal/domain/application"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/shared"
	"github.com/scholar-hub/scholar-application-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMIT APPLICATION COMMAND
// Moves an application to submitted. Submission is gated on the
// checklist: any entry still pending or missing blocks the transition
// and the blocking labels are reported back to the caller.
// ══════════════════════════════════════════════════════════════════════════════

// SubmitApplicationCommand contains the data to submit an application.
type SubmitApplicationCommand struct {
	// ApplicationID identifies the application.
	ApplicationID string

	// OwnerID is the acting student, for the ownership check.
	OwnerID string

	// ConfirmationNumber is the provider's receipt. When empty, a
	// generated one is recorded so the submission is always traceable.
	ConfirmationNumber string
}

// Validate validates the command.
func (c SubmitApplicationCommand) Validate() error {
	if c.ApplicationID == "" {
		return errors.New("submit_application: application_id is required")
	}
	if c.OwnerID == "" {
		return errors.New("submit_application: owner_id is required")
	}
	return nil
}

// SubmitApplicationResult contains the result of submitting.
type SubmitApplicationResult struct {
	// Application is the aggregate after the transition.
	Application *application.Application

	// ConfirmationNumber is the recorded receipt.
	ConfirmationNumber string
}

// SubmitApplicationHandler handles the SubmitApplicationCommand.
type SubmitApplicationHandler struct {
	repo  application.Repository
	cache application.Cache
	log   *logger.Logger
}

// NewSubmitApplicationHandler creates a new SubmitApplicationHandler.
func NewSubmitApplicationHandler(
	repo application.Repository,
	cache application.Cache,
	log *logger.Logger,
) *SubmitApplicationHandler {
	return &SubmitApplicationHandler{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Handle executes the submit application command.
func (h *SubmitApplicationHandler) Handle(ctx context.Context, cmd SubmitApplicationCommand) (*SubmitApplicationResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("application", "Submit", shared.ErrValidation, err.Error(), err)
	}

	app, err := loadOwned(ctx, h.repo, cmd.ApplicationID, cmd.OwnerID)
	if err != nil {
		return nil, err
	}

	confirmation := strings.TrimSpace(cmd.ConfirmationNumber)
	if confirmation == "" {
		confirmation = "SUB-" + strings.ToUpper(uuid.NewString()[:8])
	}

	if err := app.Submit(confirmation); err != nil {
		return nil, err
	}

	if err := persist(ctx, h.repo, h.cache, h.log, app); err != nil {
		return nil, err
	}

	h.log.Info("application submitted",
		logger.ApplicationID(app.ID),
		logger.OwnerID(app.OwnerID),
		logger.String("confirmation_number", confirmation),
	)

	return &SubmitApplicationResult{
		Application:        app,
		ConfirmationNumber: confirmation,
	}, nil
}
