package query

import (
	"context"
	"errors"
	"time"

	"github.com/scholar-hub/scholar-application-hub/internal/domain/application"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/shared"
	"github.com/scholar-hub/scholar-application-hub/pkg/logger"
	"github.com/scholar-hub/scholar-application-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET URGENT QUERY
// In-progress applications whose scholarship deadline falls inside the
// urgency window, ordered soonest first.
// ══════════════════════════════════════════════════════════════════════════════

// GetUrgentQuery identifies the owner and optional window override.
type GetUrgentQuery struct {
	// OwnerID is the requesting student.
	OwnerID string

	// Within overrides the urgency window when positive.
	Within time.Duration
}

// Validate validates the query.
func (q GetUrgentQuery) Validate() error {
	if q.OwnerID == "" {
		return errors.New("get_urgent: owner_id is required")
	}
	if q.Within < 0 {
		return errors.New("get_urgent: window cannot be negative")
	}
	return nil
}

// UrgentItem is one urgent application.
type UrgentItem struct {
	// Application is the aggregate.
	Application *application.Application

	// ScholarshipName is the catalog entry's name.
	ScholarshipName string

	// Deadline is the scholarship deadline.
	Deadline time.Time

	// DaysLeft is whole days until the deadline.
	DaysLeft int
}

// GetUrgentResult contains the urgent applications.
type GetUrgentResult struct {
	Items []UrgentItem
}

// GetUrgentHandler handles the GetUrgentQuery.
type GetUrgentHandler struct {
	repo application.Repository
	log  *logger.Logger
}

// NewGetUrgentHandler creates a new GetUrgentHandler.
func NewGetUrgentHandler(repo application.Repository, log *logger.Logger) *GetUrgentHandler {
	return &GetUrgentHandler{
		repo: repo,
		log:  log,
	}
}

// Handle executes the get urgent query.
func (h *GetUrgentHandler) Handle(ctx context.Context, q GetUrgentQuery) (*GetUrgentResult, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("application", "Urgent", shared.ErrValidation, err.Error(), err)
	}

	within := q.Within
	if within == 0 {
		within = timeutil.UrgencyWindow
	}

	urgent, err := h.repo.FindUrgent(ctx, q.OwnerID, within)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	items := make([]UrgentItem, 0, len(urgent))
	for _, u := range urgent {
		items = append(items, UrgentItem{
			Application:     u.Application,
			ScholarshipName: u.ScholarshipName,
			Deadline:        u.Deadline,
			DaysLeft:        timeutil.DaysUntil(now, u.Deadline),
		})
	}

	return &GetUrgentResult{Items: items}, nil
}
