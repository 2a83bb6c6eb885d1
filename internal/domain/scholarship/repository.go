package scholarship

import (
	"context"
)

// Catalog defines the read-mostly contract against the scholarship catalog.
// Implementations live in infrastructure/persistence.
type Catalog interface {
	// Create persists a new catalog entry.
	// Returns shared.ErrAlreadyExists (wrapped) on a duplicate ID.
	Create(ctx context.Context, s *Scholarship) error

	// List returns catalog entries ordered by deadline. When onlyUpcoming
	// is true, entries whose deadline has already passed are excluded.
	List(ctx context.Context, onlyUpcoming bool) ([]*Scholarship, error)

	// GetByID returns a scholarship by ID.
	// Returns shared.ErrNotFound (wrapped) if the scholarship does not exist.
	GetByID(ctx context.Context, id string) (*Scholarship, error)

	// GetByIDs returns scholarships for a list of IDs. Missing IDs are
	// silently skipped; the result order is unspecified.
	GetByIDs(ctx context.Context, ids []string) ([]*Scholarship, error)

	// IncrementApplications bumps the started-applications counter.
	// Best-effort bookkeeping; a missing row is not an error.
	IncrementApplications(ctx context.Context, id string) error
}
