package command

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/scholar-hub/scholar-application-hub/internal/domain/application"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/scholarship"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/shared"
	"github.com/scholar-hub/scholar-application-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// DUPLICATE APPLICATION COMMAND
// Reapplying with a previously written essay: a fresh application is
// started against the new scholarship and the source's latest essay
// draft becomes the new application's first draft.
// ══════════════════════════════════════════════════════════════════════════════

// DuplicateApplicationCommand clones an application onto a new scholarship.
type DuplicateApplicationCommand struct {
	// ApplicationID identifies the source application.
	ApplicationID string

	// OwnerID is the acting student, for the ownership check.
	OwnerID string

	// NewScholarshipID is the catalog entry the copy applies to.
	NewScholarshipID string
}

// Validate validates the command.
func (c DuplicateApplicationCommand) Validate() error {
	if c.ApplicationID == "" {
		return errors.New("duplicate_application: application_id is required")
	}
	if c.OwnerID == "" {
		return errors.New("duplicate_application: owner_id is required")
	}
	if c.NewScholarshipID == "" {
		return errors.New("duplicate_application: new_scholarship_id is required")
	}
	return nil
}

// DuplicateApplicationResult contains the freshly created copy.
type DuplicateApplicationResult struct {
	// Application is the new aggregate.
	Application *application.Application

	// ScholarshipName is the target catalog entry's display name.
	ScholarshipName string

	// EssayCarriedOver reports whether a source draft was copied.
	EssayCarriedOver bool
}

// DuplicateApplicationHandler handles the DuplicateApplicationCommand.
type DuplicateApplicationHandler struct {
	repo    application.Repository
	catalog scholarship.Catalog
	cache   application.Cache
	log     *logger.Logger
}

// NewDuplicateApplicationHandler creates a new DuplicateApplicationHandler.
func NewDuplicateApplicationHandler(
	repo application.Repository,
	catalog scholarship.Catalog,
	cache application.Cache,
	log *logger.Logger,
) *DuplicateApplicationHandler {
	return &DuplicateApplicationHandler{
		repo:    repo,
		catalog: catalog,
		cache:   cache,
		log:     log,
	}
}

// Handle executes the duplicate application command.
func (h *DuplicateApplicationHandler) Handle(ctx context.Context, cmd DuplicateApplicationCommand) (*DuplicateApplicationResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("application", "Duplicate", shared.ErrValidation, err.Error(), err)
	}

	source, err := loadOwned(ctx, h.repo, cmd.ApplicationID, cmd.OwnerID)
	if err != nil {
		return nil, err
	}

	target, err := h.catalog.GetByID(ctx, cmd.NewScholarshipID)
	if err != nil {
		return nil, err
	}

	clone, err := application.NewApplication(application.NewApplicationParams{
		ID:          uuid.NewString(),
		OwnerID:     cmd.OwnerID,
		Scholarship: target,
		NewID:       uuid.NewString,
	})
	if err != nil {
		return nil, err
	}

	carried := false
	if draft := source.LatestDraft(); draft != nil {
		if _, err := clone.SaveEssayDraft(draft.Content); err != nil {
			return nil, err
		}
		carried = true
	}

	if err := h.repo.Create(ctx, clone); err != nil {
		return nil, err
	}

	if err := h.catalog.IncrementApplications(ctx, target.ID); err != nil {
		h.log.Warn("failed to bump scholarship application counter",
			logger.ScholarshipID(target.ID), logger.Err(err))
	}

	if err := h.cache.Invalidate(ctx, clone.ID, clone.OwnerID); err != nil {
		h.log.Warn("cache invalidation failed",
			logger.ApplicationID(clone.ID), logger.Err(err))
	}

	h.log.Info("application duplicated",
		logger.ApplicationID(clone.ID),
		logger.String("source_id", source.ID),
		logger.ScholarshipID(target.ID),
		logger.Bool("essay_carried_over", carried),
	)

	return &DuplicateApplicationResult{
		Application:      clone,
		ScholarshipName:  target.Name,
		EssayCarriedOver: carried,
	}, nil
}
