// Package scholarship contains the read-only scholarship catalog types.
// Applications reference scholarships by ID; the catalog itself (search,
// match scoring, recommendations) lives outside this core.
package scholarship

import (
	"time"
)

// WordLimit bounds the expected essay length, in words. Zero means "no bound".
type WordLimit struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Template declares what a scholarship asks of an applicant. It is the
// input for building an application's initial requirement checklist.
type Template struct {
	// EssayRequired indicates an essay must be written.
	EssayRequired bool `json:"essayRequired"`

	// EssayPrompt is the essay question, if any.
	EssayPrompt string `json:"essayPrompt"`

	// EssayWordLimit bounds the essay length.
	EssayWordLimit WordLimit `json:"essayWordLimit"`

	// TranscriptRequired indicates an official transcript must be provided.
	TranscriptRequired bool `json:"transcriptRequired"`

	// RecommendationLetters is the number of letters of recommendation
	// required (0 = none).
	RecommendationLetters int `json:"recommendationLetters"`

	// PortfolioRequired indicates a portfolio must be submitted.
	PortfolioRequired bool `json:"portfolioRequired"`

	// Extras are free-text requirements declared by the scholarship
	// beyond the structured flags above.
	Extras []string `json:"extras,omitempty"`
}

// Scholarship is a catalog entry. It is never mutated through this core
// except for the applications counter.
type Scholarship struct {
	// ID is the catalog identifier (UUID in string form).
	ID string

	// Name is the scholarship's display name.
	Name string

	// Provider is the awarding organization.
	Provider string

	// Amount is the award amount in the provider's currency.
	Amount float64

	// Deadline is when applications close.
	Deadline time.Time

	// AwardNotification is when the provider expects to announce decisions.
	AwardNotification time.Time

	// Template declares the application requirements.
	Template Template

	// Applications counts how many applications were started against
	// this scholarship.
	Applications int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DaysUntilDeadline returns whole days remaining until the deadline,
// negative once the deadline has passed.
func (s *Scholarship) DaysUntilDeadline(now time.Time) int {
	return int(s.Deadline.Sub(now).Hours() / 24)
}

// DeadlineWithin reports whether the deadline falls inside the window
// [now, now+d]. Past deadlines are excluded.
func (s *Scholarship) DeadlineWithin(now time.Time, d time.Duration) bool {
	if s.Deadline.Before(now) {
		return false
	}
	return s.Deadline.Sub(now) <= d
}
