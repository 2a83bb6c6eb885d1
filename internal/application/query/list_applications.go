package query

import (
	"context"
	"errors"
	"time"

	"github.com/scholar-hub/scholar-application-hub/internal/domain/application"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/scholarship"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/shared"
	"github.com/scholar-hub/scholar-application-hub/pkg/logger"
	"github.com/scholar-hub/scholar-application-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST APPLICATIONS QUERY
// Pages through an owner's applications with status and name filters,
// enriched with the scholarship context the dashboard renders.
// ══════════════════════════════════════════════════════════════════════════════

// ListApplicationsQuery describes the listing.
type ListApplicationsQuery struct {
	// OwnerID is the requesting student.
	OwnerID string

	// Status filters by lifecycle status when set.
	Status application.Status

	// Search filters by scholarship name, case-insensitive substring.
	Search string

	// Page is the 1-based page number.
	Page int

	// Limit is the page size.
	Limit int

	// SortBy names the sort column (last_activity_at, created_at,
	// progress, status, deadline).
	SortBy string

	// SortDesc reverses the order.
	SortDesc bool
}

// Validate validates the query.
func (q ListApplicationsQuery) Validate() error {
	if q.OwnerID == "" {
		return errors.New("list_applications: owner_id is required")
	}
	if q.Status != "" && !q.Status.IsValid() {
		return errors.New("list_applications: unknown status: " + string(q.Status))
	}
	if q.Limit > 100 {
		return errors.New("list_applications: limit cannot exceed 100")
	}
	return nil
}

// ApplicationListItem is one row of the listing.
type ApplicationListItem struct {
	// Application is the aggregate.
	Application *application.Application

	// ScholarshipName is the referenced catalog entry's name, empty if
	// the entry has been removed.
	ScholarshipName string

	// Deadline is the scholarship deadline.
	Deadline time.Time

	// DaysUntilDeadline is whole days remaining, negative once passed.
	DaysUntilDeadline int
}

// ListApplicationsResult contains one page of applications.
type ListApplicationsResult struct {
	// Items are the page's rows.
	Items []ApplicationListItem

	// Total is the filtered row count across all pages.
	Total int

	// Page is the returned 1-based page number.
	Page int

	// Limit is the applied page size.
	Limit int
}

// ListApplicationsHandler handles the ListApplicationsQuery.
type ListApplicationsHandler struct {
	repo    application.Repository
	catalog scholarship.Catalog
	log     *logger.Logger
}

// NewListApplicationsHandler creates a new ListApplicationsHandler.
func NewListApplicationsHandler(
	repo application.Repository,
	catalog scholarship.Catalog,
	log *logger.Logger,
) *ListApplicationsHandler {
	return &ListApplicationsHandler{
		repo:    repo,
		catalog: catalog,
		log:     log,
	}
}

// Handle executes the list applications query.
func (h *ListApplicationsHandler) Handle(ctx context.Context, q ListApplicationsQuery) (*ListApplicationsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("application", "List", shared.ErrValidation, err.Error(), err)
	}

	opts := application.DefaultListOptions()
	if q.Page > 0 {
		opts.Page = q.Page
	}
	if q.Limit > 0 {
		opts.Limit = q.Limit
	}
	if q.SortBy != "" {
		opts.SortBy = q.SortBy
		opts.SortDesc = q.SortDesc
	}

	apps, total, err := h.repo.List(ctx, q.OwnerID, application.Filter{
		Status: q.Status,
		Search: q.Search,
	}, opts)
	if err != nil {
		return nil, err
	}

	items, err := h.enrich(ctx, apps)
	if err != nil {
		return nil, err
	}

	return &ListApplicationsResult{
		Items: items,
		Total: total,
		Page:  opts.Page,
		Limit: opts.Limit,
	}, nil
}

// enrich joins the page with its scholarship names and deadlines.
func (h *ListApplicationsHandler) enrich(ctx context.Context, apps []*application.Application) ([]ApplicationListItem, error) {
	ids := make([]string, 0, len(apps))
	seen := make(map[string]bool, len(apps))
	for _, app := range apps {
		if !seen[app.ScholarshipID] {
			seen[app.ScholarshipID] = true
			ids = append(ids, app.ScholarshipID)
		}
	}

	scholarships, err := h.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*scholarship.Scholarship, len(scholarships))
	for _, s := range scholarships {
		byID[s.ID] = s
	}

	now := time.Now().UTC()
	items := make([]ApplicationListItem, 0, len(apps))
	for _, app := range apps {
		item := ApplicationListItem{Application: app}
		if s, ok := byID[app.ScholarshipID]; ok {
			item.ScholarshipName = s.Name
			item.Deadline = s.Deadline
			item.DaysUntilDeadline = timeutil.DaysUntil(now, s.Deadline)
		}
		items = append(items, item)
	}
	return items, nil
}
