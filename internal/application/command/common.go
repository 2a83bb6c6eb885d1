package command

import (
	"context"

	"github.com/scholar-hub/scholar-application-hub/internal/domain/application"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/shared"
	"github.com/scholar-hub/scholar-application-hub/pkg/logger"
)

// loadOwned fetches an application and verifies the caller owns it.
func loadOwned(ctx context.Context, repo application.Repository, id, ownerID string) (*application.Application, error) {
	app, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !app.BelongsTo(ownerID) {
		return nil, shared.ErrNotOwner
	}
	return app, nil
}

// persist saves the mutated aggregate and drops its cache entries. Cache
// failures are logged and swallowed; the write already succeeded.
func persist(ctx context.Context, repo application.Repository, cache application.Cache, log *logger.Logger, app *application.Application) error {
	if err := repo.Update(ctx, app); err != nil {
		return err
	}
	if err := cache.Invalidate(ctx, app.ID, app.OwnerID); err != nil {
		log.Warn("cache invalidation failed",
			logger.ApplicationID(app.ID), logger.Err(err))
	}
	return nil
}
