package query

import (
	"context"
	"errors"

	"github.com/scholar-hub/scholar-application-hub/internal/domain/application"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/shared"
	"github.com/scholar-hub/scholar-application-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STATS QUERY
// Per-owner portfolio statistics: counts per status plus the total won
// amount. Served cache-aside; every write command invalidates the entry.
// ══════════════════════════════════════════════════════════════════════════════

// GetStatsQuery identifies the owner.
type GetStatsQuery struct {
	// OwnerID is the requesting student.
	OwnerID string
}

// Validate validates the query.
func (q GetStatsQuery) Validate() error {
	if q.OwnerID == "" {
		return errors.New("get_stats: owner_id is required")
	}
	return nil
}

// GetStatsResult contains the statistics.
type GetStatsResult struct {
	// Stats is the per-status breakdown.
	Stats *application.Stats

	// FromCache reports whether the cache served the read.
	FromCache bool
}

// GetStatsHandler handles the GetStatsQuery.
type GetStatsHandler struct {
	repo     application.Repository
	cache    application.Cache
	cacheTTL cacheTTLs
	log      *logger.Logger
}

// NewGetStatsHandler creates a new GetStatsHandler.
func NewGetStatsHandler(
	repo application.Repository,
	cache application.Cache,
	log *logger.Logger,
) *GetStatsHandler {
	return &GetStatsHandler{
		repo:     repo,
		cache:    cache,
		cacheTTL: defaultCacheTTLs(),
		log:      log,
	}
}

// Handle executes the get stats query.
func (h *GetStatsHandler) Handle(ctx context.Context, q GetStatsQuery) (*GetStatsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("application", "Stats", shared.ErrValidation, err.Error(), err)
	}

	if stats, err := h.cache.GetStats(ctx, q.OwnerID); err == nil {
		return &GetStatsResult{Stats: stats, FromCache: true}, nil
	} else if !shared.IsNotFound(err) {
		h.log.Warn("stats cache read failed",
			logger.OwnerID(q.OwnerID), logger.Err(err))
	}

	stats, err := h.repo.Stats(ctx, q.OwnerID)
	if err != nil {
		return nil, err
	}

	if err := h.cache.SetStats(ctx, q.OwnerID, stats, h.cacheTTL.stats); err != nil {
		h.log.Warn("stats cache write failed",
			logger.OwnerID(q.OwnerID), logger.Err(err))
	}

	return &GetStatsResult{Stats: stats}, nil
}
