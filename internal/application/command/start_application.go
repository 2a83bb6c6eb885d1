// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/scholar-hub/scholar-application-hub/internal/domain/application"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/scholarship"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/shared"
	"github.com/scholar-hub/scholar-application-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// START APPLICATION COMMAND
// Starts a tracked application against a catalog scholarship. The
// scholarship's template seeds the requirement checklist; at most one
// application may exist per (owner, scholarship) pair.
// ══════════════════════════════════════════════════════════════════════════════

// StartApplicationCommand contains the data to start an application.
type StartApplicationCommand struct {
	// OwnerID is the student starting the application.
	OwnerID string

	// ScholarshipID is the catalog entry applied to.
	ScholarshipID string
}

// Validate validates the command.
func (c StartApplicationCommand) Validate() error {
	if c.OwnerID == "" {
		return errors.New("start_application: owner_id is required")
	}
	if c.ScholarshipID == "" {
		return errors.New("start_application: scholarship_id is required")
	}
	return nil
}

// StartApplicationResult contains the result of starting an application.
type StartApplicationResult struct {
	// Application is the freshly created aggregate.
	Application *application.Application

	// ScholarshipName is the catalog entry's display name.
	ScholarshipName string

	// Deadline is the scholarship's deadline.
	Deadline time.Time
}

// StartApplicationHandler handles the StartApplicationCommand.
type StartApplicationHandler struct {
	repo    application.Repository
	catalog scholarship.Catalog
	cache   application.Cache
	log     *logger.Logger
}

// NewStartApplicationHandler creates a new StartApplicationHandler.
func NewStartApplicationHandler(
	repo application.Repository,
	catalog scholarship.Catalog,
	cache application.Cache,
	log *logger.Logger,
) *StartApplicationHandler {
	return &StartApplicationHandler{
		repo:    repo,
		catalog: catalog,
		cache:   cache,
		log:     log,
	}
}

// Handle executes the start application command.
func (h *StartApplicationHandler) Handle(ctx context.Context, cmd StartApplicationCommand) (*StartApplicationResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("application", "Start", shared.ErrValidation, err.Error(), err)
	}

	sch, err := h.catalog.GetByID(ctx, cmd.ScholarshipID)
	if err != nil {
		return nil, fmt.Errorf("start_application: failed to load scholarship: %w", err)
	}

	app, err := application.NewApplication(application.NewApplicationParams{
		ID:          uuid.NewString(),
		OwnerID:     cmd.OwnerID,
		Scholarship: sch,
		NewID:       uuid.NewString,
	})
	if err != nil {
		return nil, err
	}

	if err := h.repo.Create(ctx, app); err != nil {
		return nil, err
	}

	// Bookkeeping on the catalog side; a failure must not undo the create.
	if err := h.catalog.IncrementApplications(ctx, sch.ID); err != nil {
		h.log.Warn("failed to bump scholarship applications counter",
			logger.ScholarshipID(sch.ID), logger.Err(err))
	}

	if err := h.cache.Invalidate(ctx, app.ID, app.OwnerID); err != nil {
		h.log.Warn("cache invalidation failed",
			logger.ApplicationID(app.ID), logger.Err(err))
	}

	h.log.Info("application started",
		logger.ApplicationID(app.ID),
		logger.OwnerID(app.OwnerID),
		logger.ScholarshipID(sch.ID),
		logger.Int("requirements", len(app.Requirements)),
	)

	return &StartApplicationResult{
		Application:     app,
		ScholarshipName: sch.Name,
		Deadline:        sch.Deadline,
	}, nil
}
