package command

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/scholar-hub/scholar-application-hub/internal/domain/scholarship"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/shared"
	"github.com/scholar-hub/scholar-application-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE SCHOLARSHIP COMMAND
// Adds a catalog entry. The template captured here seeds the checklist
// of every application started against the scholarship.
// ══════════════════════════════════════════════════════════════════════════════

// CreateScholarshipCommand contains the data to create a catalog entry.
type CreateScholarshipCommand struct {
	// Name is the scholarship's display name.
	Name string

	// Provider is the awarding organization.
	Provider string

	// Amount is the award amount.
	Amount float64

	// Deadline is when applications close.
	Deadline time.Time

	// AwardNotification is when decisions are expected.
	AwardNotification time.Time

	// Template declares the application requirements.
	Template scholarship.Template
}

// Validate validates the command.
func (c CreateScholarshipCommand) Validate() error {
	if c.Name == "" {
		return errors.New("create_scholarship: name is required")
	}
	if c.Provider == "" {
		return errors.New("create_scholarship: provider is required")
	}
	if c.Amount < 0 {
		return errors.New("create_scholarship: amount cannot be negative")
	}
	if c.Deadline.IsZero() {
		return errors.New("create_scholarship: deadline is required")
	}
	if c.Template.EssayWordLimit.Min < 0 || c.Template.EssayWordLimit.Max < 0 {
		return errors.New("create_scholarship: word limit cannot be negative")
	}
	if c.Template.RecommendationLetters < 0 {
		return errors.New("create_scholarship: recommendation letters cannot be negative")
	}
	return nil
}

// CreateScholarshipResult contains the result of creating an entry.
type CreateScholarshipResult struct {
	// Scholarship is the created catalog entry.
	Scholarship *scholarship.Scholarship
}

// CreateScholarshipHandler handles the CreateScholarshipCommand.
type CreateScholarshipHandler struct {
	catalog scholarship.Catalog
	log     *logger.Logger
}

// NewCreateScholarshipHandler creates a new CreateScholarshipHandler.
func NewCreateScholarshipHandler(catalog scholarship.Catalog, log *logger.Logger) *CreateScholarshipHandler {
	return &CreateScholarshipHandler{
		catalog: catalog,
		log:     log,
	}
}

// Handle executes the create scholarship command.
func (h *CreateScholarshipHandler) Handle(ctx context.Context, cmd CreateScholarshipCommand) (*CreateScholarshipResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("scholarship", "Create", shared.ErrValidation, err.Error(), err)
	}

	now := time.Now().UTC()
	sch := &scholarship.Scholarship{
		ID:                uuid.NewString(),
		Name:              cmd.Name,
		Provider:          cmd.Provider,
		Amount:            cmd.Amount,
		Deadline:          cmd.Deadline,
		AwardNotification: cmd.AwardNotification,
		Template:          cmd.Template,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := h.catalog.Create(ctx, sch); err != nil {
		return nil, err
	}

	h.log.Info("scholarship created",
		logger.ScholarshipID(sch.ID),
		logger.String("scholarship_name", sch.Name),
	)

	return &CreateScholarshipResult{Scholarship: sch}, nil
}
