// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"errors"

	"github.com/scholar-hub/scholar-application-hub/internal/domain/application"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/scholarship"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/shared"
	"github.com/scholar-hub/scholar-application-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET APPLICATION QUERY
// Loads one application with its scholarship context. Reads go through
// the cache; a miss falls back to the repository and repopulates it.
// ══════════════════════════════════════════════════════════════════════════════

// GetApplicationQuery identifies the application to load.
type GetApplicationQuery struct {
	// ApplicationID identifies the application.
	ApplicationID string

	// OwnerID is the requesting student, for the ownership check.
	OwnerID string
}

// Validate validates the query.
func (q GetApplicationQuery) Validate() error {
	if q.ApplicationID == "" {
		return errors.New("get_application: application_id is required")
	}
	if q.OwnerID == "" {
		return errors.New("get_application: owner_id is required")
	}
	return nil
}

// GetApplicationResult contains the loaded application.
type GetApplicationResult struct {
	// Application is the aggregate.
	Application *application.Application

	// Scholarship is the referenced catalog entry, nil if it has been
	// removed from the catalog.
	Scholarship *scholarship.Scholarship
}

// GetApplicationHandler handles the GetApplicationQuery.
type GetApplicationHandler struct {
	repo     application.Repository
	catalog  scholarship.Catalog
	cache    application.Cache
	cacheTTL cacheTTLs
	log      *logger.Logger
}

// NewGetApplicationHandler creates a new GetApplicationHandler.
func NewGetApplicationHandler(
	repo application.Repository,
	catalog scholarship.Catalog,
	cache application.Cache,
	log *logger.Logger,
) *GetApplicationHandler {
	return &GetApplicationHandler{
		repo:     repo,
		catalog:  catalog,
		cache:    cache,
		cacheTTL: defaultCacheTTLs(),
		log:      log,
	}
}

// Handle executes the get application query.
func (h *GetApplicationHandler) Handle(ctx context.Context, q GetApplicationQuery) (*GetApplicationResult, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("application", "Get", shared.ErrValidation, err.Error(), err)
	}

	app, err := h.loadApplication(ctx, q.ApplicationID)
	if err != nil {
		return nil, err
	}
	if !app.BelongsTo(q.OwnerID) {
		return nil, shared.ErrNotOwner
	}

	sch, err := h.catalog.GetByID(ctx, app.ScholarshipID)
	if err != nil && !shared.IsNotFound(err) {
		return nil, err
	}

	return &GetApplicationResult{
		Application: app,
		Scholarship: sch,
	}, nil
}

// loadApplication reads through the cache.
func (h *GetApplicationHandler) loadApplication(ctx context.Context, id string) (*application.Application, error) {
	if app, err := h.cache.Get(ctx, id); err == nil {
		return app, nil
	} else if !shared.IsNotFound(err) {
		h.log.Warn("application cache read failed",
			logger.ApplicationID(id), logger.Err(err))
	}

	app, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := h.cache.Set(ctx, app, h.cacheTTL.application); err != nil {
		h.log.Warn("application cache write failed",
			logger.ApplicationID(id), logger.Err(err))
	}

	return app, nil
}
