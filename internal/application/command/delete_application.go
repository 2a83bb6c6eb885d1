package command

import (
	"context"
	"errors"
	"time"

	"github.com/scholar-hub/scholar-application-hub/internal/domain/application"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/shared"
	"github.com/scholar-hub/scholar-application-hub/pkg/logger"
	"github.com/scholar-hub/scholar-application-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// DELETE APPLICATION COMMAND
// Hard-deletes an application and cleans up its stored files. The row
// goes first; file cleanup is best-effort so an unreachable storage
// service never blocks the delete.
// ══════════════════════════════════════════════════════════════════════════════

// DeleteApplicationCommand contains the data to delete an application.
type DeleteApplicationCommand struct {
	// ApplicationID identifies the application.
	ApplicationID string

	// OwnerID is the acting student, for the ownership check.
	OwnerID string
}

// Validate validates the command.
func (c DeleteApplicationCommand) Validate() error {
	if c.ApplicationID == "" {
		return errors.New("delete_application: application_id is required")
	}
	if c.OwnerID == "" {
		return errors.New("delete_application: owner_id is required")
	}
	return nil
}

// DeleteApplicationResult contains the result of deleting.
type DeleteApplicationResult struct {
	// DocumentsScheduled is how many stored files were scheduled for
	// cleanup.
	DocumentsScheduled int
}

// DeleteApplicationHandler handles the DeleteApplicationCommand.
type DeleteApplicationHandler struct {
	repo    application.Repository
	cache   application.Cache
	storage FileStore
	retrier *retry.Retrier
	log     *logger.Logger
}

// NewDeleteApplicationHandler creates a new DeleteApplicationHandler.
func NewDeleteApplicationHandler(
	repo application.Repository,
	cache application.Cache,
	storage FileStore,
	log *logger.Logger,
) *DeleteApplicationHandler {
	cfg := retry.DefaultConfig()
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		log.Warn("retrying storage delete",
			logger.Int("attempt", attempt),
			logger.Duration("delay", delay),
			logger.Err(err),
		)
	}

	return &DeleteApplicationHandler{
		repo:    repo,
		cache:   cache,
		storage: storage,
		retrier: retry.New(cfg),
		log:     log,
	}
}

// Handle executes the delete application command.
func (h *DeleteApplicationHandler) Handle(ctx context.Context, cmd DeleteApplicationCommand) (*DeleteApplicationResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("application", "Delete", shared.ErrValidation, err.Error(), err)
	}

	app, err := loadOwned(ctx, h.repo, cmd.ApplicationID, cmd.OwnerID)
	if err != nil {
		return nil, err
	}

	if err := h.repo.Delete(ctx, app.ID); err != nil {
		return nil, err
	}

	if err := h.cache.Invalidate(ctx, app.ID, app.OwnerID); err != nil {
		h.log.Warn("cache invalidation failed",
			logger.ApplicationID(app.ID), logger.Err(err))
	}

	scheduled := 0
	for _, doc := range app.Documents {
		if doc.ExternalRef == "" {
			continue
		}
		scheduled++
		h.cleanupStored(doc.ExternalRef)
	}

	h.log.Info("application deleted",
		logger.ApplicationID(app.ID),
		logger.OwnerID(app.OwnerID),
		logger.Int("documents_cleaned", scheduled),
	)

	return &DeleteApplicationResult{DocumentsScheduled: scheduled}, nil
}

func (h *DeleteApplicationHandler) cleanupStored(externalRef string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := h.retrier.Do(ctx, func(ctx context.Context) error {
		return h.storage.Delete(ctx, externalRef)
	})
	if err != nil {
		h.log.Warn("orphaned file left in storage",
			logger.String("external_ref", externalRef),
			logger.Err(err),
		)
	}
}
