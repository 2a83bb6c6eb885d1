package application

import (
	"context"
	"time"
)

// Repository defines the persistence contract for applications.
// Implementations live in infrastructure/persistence. All errors use the
// shared domain error kinds so callers can check them with errors.Is.
type Repository interface {
	// Create persists a new application.
	// Returns shared.ErrDuplicateApplication when one already exists for
	// the same (owner, scholarship) pair.
	Create(ctx context.Context, app *Application) error

	// GetByID returns an application by ID.
	// Returns shared.ErrApplicationNotFound when absent.
	GetByID(ctx context.Context, id string) (*Application, error)

	// GetByOwnerAndScholarship returns the unique application for the
	// pair, or shared.ErrApplicationNotFound.
	GetByOwnerAndScholarship(ctx context.Context, ownerID, scholarshipID string) (*Application, error)

	// Update persists the aggregate with a compare-and-swap on Version.
	// Returns shared.ErrConcurrentModification when the stored version
	// no longer matches, shared.ErrApplicationNotFound when absent.
	// On success the aggregate's Version is bumped.
	Update(ctx context.Context, app *Application) error

	// Delete hard-deletes an application.
	// Returns shared.ErrApplicationNotFound when absent.
	Delete(ctx context.Context, id string) error

	// List returns an owner's applications with filtering and paging,
	// plus the total count before paging.
	List(ctx context.Context, ownerID string, filter Filter, opts ListOptions) ([]*Application, int, error)

	// Stats returns per-status counts and the total won amount.
	Stats(ctx context.Context, ownerID string) (*Stats, error)

	// FindUrgent returns in-progress applications whose scholarship
	// deadline falls within the window starting now.
	FindUrgent(ctx context.Context, ownerID string, within time.Duration) ([]*UrgentApplication, error)

	// FindForCalendar returns applications whose scholarship deadline
	// falls inside [from, to], for calendar rendering.
	FindForCalendar(ctx context.Context, ownerID string, from, to time.Time) ([]*UrgentApplication, error)
}

// Filter narrows a listing.
type Filter struct {
	// Status keeps only applications in this status. Empty = all.
	Status Status

	// Search matches against the scholarship name, case-insensitive.
	Search string
}

// ListOptions contains paging and sorting parameters.
type ListOptions struct {
	// Page is 1-based.
	Page int

	// Limit is the page size.
	Limit int

	// SortBy is the sort column key (last_activity_at, progress,
	// created_at, status).
	SortBy string

	// SortDesc sorts descending when true.
	SortDesc bool
}

// DefaultListOptions returns the defaults for listings.
func DefaultListOptions() ListOptions {
	return ListOptions{
		Page:     1,
		Limit:    20,
		SortBy:   "last_activity_at",
		SortDesc: true,
	}
}

// Offset converts the 1-based page to a row offset.
func (o ListOptions) Offset() int {
	page := o.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * o.Limit
}

// Stats aggregates an owner's applications by status.
type Stats struct {
	Total      int     `json:"total"`
	InProgress int     `json:"in_progress"`
	Submitted  int     `json:"submitted"`
	Won        int     `json:"won"`
	Rejected   int     `json:"rejected"`
	Withdrawn  int     `json:"withdrawn"`
	WonAmount  float64 `json:"won_amount"`
}

// UrgentApplication pairs an application with the scholarship deadline
// that makes it urgent or calendar-worthy.
type UrgentApplication struct {
	Application     *Application
	ScholarshipName string
	Deadline        time.Time
}

// Cache defines a read-path cache for applications and stats, invalidated
// by every write command. Typically backed by Redis.
type Cache interface {
	// Get returns a cached application, or shared.ErrNotFound (wrapped)
	// on a miss.
	Get(ctx context.Context, id string) (*Application, error)

	// Set caches an application with a TTL.
	Set(ctx context.Context, app *Application, ttl time.Duration) error

	// GetStats returns cached stats for an owner, or a miss error.
	GetStats(ctx context.Context, ownerID string) (*Stats, error)

	// SetStats caches an owner's stats with a TTL.
	SetStats(ctx context.Context, ownerID string, stats *Stats, ttl time.Duration) error

	// Invalidate drops the cached application and the owner's stats.
	Invalidate(ctx context.Context, id, ownerID string) error
}
