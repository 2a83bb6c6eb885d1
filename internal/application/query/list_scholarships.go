package query

import (
	"context"
	"time"

	"github.com/scholar-hub/scholar-application-hub/internal/domain/scholarship"
	"github.com/scholar-hub/scholar-application-hub/pkg/logger"
	"github.com/scholar-hub/scholar-application-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST SCHOLARSHIPS QUERY
// Browses the catalog, soonest deadline first.
// ══════════════════════════════════════════════════════════════════════════════

// ListScholarshipsQuery describes the catalog listing.
type ListScholarshipsQuery struct {
	// OnlyUpcoming excludes entries whose deadline has passed.
	OnlyUpcoming bool
}

// ScholarshipListItem is one catalog row.
type ScholarshipListItem struct {
	// Scholarship is the catalog entry.
	Scholarship *scholarship.Scholarship

	// DaysUntilDeadline is whole days remaining, negative once passed.
	DaysUntilDeadline int
}

// ListScholarshipsResult contains the catalog entries.
type ListScholarshipsResult struct {
	Items []ScholarshipListItem
}

// ListScholarshipsHandler handles the ListScholarshipsQuery.
type ListScholarshipsHandler struct {
	catalog scholarship.Catalog
	log     *logger.Logger
}

// NewListScholarshipsHandler creates a new ListScholarshipsHandler.
func NewListScholarshipsHandler(catalog scholarship.Catalog, log *logger.Logger) *ListScholarshipsHandler {
	return &ListScholarshipsHandler{
		catalog: catalog,
		log:     log,
	}
}

// Handle executes the list scholarships query.
func (h *ListScholarshipsHandler) Handle(ctx context.Context, q ListScholarshipsQuery) (*ListScholarshipsResult, error) {
	entries, err := h.catalog.List(ctx, q.OnlyUpcoming)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	items := make([]ScholarshipListItem, 0, len(entries))
	for _, s := range entries {
		items = append(items, ScholarshipListItem{
			Scholarship:       s,
			DaysUntilDeadline: timeutil.DaysUntil(now, s.Deadline),
		})
	}

	return &ListScholarshipsResult{Items: items}, nil
}
