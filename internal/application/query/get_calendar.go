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
// GET CALENDAR QUERY
// Applications whose scholarship deadline falls inside a date range,
// for the deadline calendar view. The range is widened to whole days
// and reordered if given backwards.
// ══════════════════════════════════════════════════════════════════════════════

// GetCalendarQuery describes the date range.
type GetCalendarQuery struct {
	// OwnerID is the requesting student.
	OwnerID string

	// From is the range start.
	From time.Time

	// To is the range end.
	To time.Time
}

// Validate validates the query.
func (q GetCalendarQuery) Validate() error {
	if q.OwnerID == "" {
		return errors.New("get_calendar: owner_id is required")
	}
	if q.From.IsZero() || q.To.IsZero() {
		return errors.New("get_calendar: from and to are required")
	}
	return nil
}

// CalendarEntry is one deadline on the calendar.
type CalendarEntry struct {
	// ApplicationID identifies the application.
	ApplicationID string

	// ScholarshipName is the catalog entry's name.
	ScholarshipName string

	// Status is the application's lifecycle status.
	Status application.Status

	// Progress is the derived completion percentage.
	Progress int

	// Deadline is the scholarship deadline.
	Deadline time.Time
}

// GetCalendarResult contains the calendar entries, soonest first.
type GetCalendarResult struct {
	Entries []CalendarEntry

	// From and To are the effective whole-day range.
	From time.Time
	To   time.Time
}

// GetCalendarHandler handles the GetCalendarQuery.
type GetCalendarHandler struct {
	repo application.Repository
	log  *logger.Logger
}

// NewGetCalendarHandler creates a new GetCalendarHandler.
func NewGetCalendarHandler(repo application.Repository, log *logger.Logger) *GetCalendarHandler {
	return &GetCalendarHandler{
		repo: repo,
		log:  log,
	}
}

// Handle executes the get calendar query.
func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (*GetCalendarResult, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("application", "Calendar", shared.ErrValidation, err.Error(), err)
	}

	from, to := timeutil.ClampRange(q.From, q.To)

	found, err := h.repo.FindForCalendar(ctx, q.OwnerID, from, to)
	if err != nil {
		return nil, err
	}

	entries := make([]CalendarEntry, 0, len(found))
	for _, u := range found {
		entries = append(entries, CalendarEntry{
			ApplicationID:   u.Application.ID,
			ScholarshipName: u.ScholarshipName,
			Status:          u.Application.Status,
			Progress:        u.Application.Progress,
			Deadline:        u.Deadline,
		})
	}

	return &GetCalendarResult{
		Entries: entries,
		From:    from,
		To:      to,
	}, nil
}
