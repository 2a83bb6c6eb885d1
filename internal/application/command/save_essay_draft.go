package command

import (
	"context"
	"errors"
	"strings"

	"github.com/scholar-hub/scholar-application-hub/internal/domain/application"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/shared"
	"github.com/scholar-hub/scholar-application-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SAVE ESSAY DRAFT COMMAND
// Appends a new draft version to the essay history. Older drafts are
// never overwritten; the checklist's essay entry moves to "draft" and
// the word count is recorded against the scholarship's limit.
// ══════════════════════════════════════════════════════════════════════════════

// SaveEssayDraftCommand contains the data to save a draft.
type SaveEssayDraftCommand struct {
	// ApplicationID identifies the application.
	ApplicationID string

	// OwnerID is the acting student, for the ownership check.
	OwnerID string

	// Content is the full draft text.
	Content string
}

// Validate validates the command.
func (c SaveEssayDraftCommand) Validate() error {
	if c.ApplicationID == "" {
		return errors.New("save_essay_draft: application_id is required")
	}
	if c.OwnerID == "" {
		return errors.New("save_essay_draft: owner_id is required")
	}
	if strings.TrimSpace(c.Content) == "" {
		return errors.New("save_essay_draft: content is required")
	}
	return nil
}

// SaveEssayDraftResult contains the result of saving a draft.
type SaveEssayDraftResult struct {
	// Application is the aggregate after the change.
	Application *application.Application

	// Draft is the version that was appended.
	Draft application.EssayDraft

	// WithinLimit reports whether the draft respects the word limit.
	WithinLimit bool
}

// SaveEssayDraftHandler handles the SaveEssayDraftCommand.
type SaveEssayDraftHandler struct {
	repo  application.Repository
	cache application.Cache
	log   *logger.Logger
}

// NewSaveEssayDraftHandler creates a new SaveEssayDraftHandler.
func NewSaveEssayDraftHandler(
	repo application.Repository,
	cache application.Cache,
	log *logger.Logger,
) *SaveEssayDraftHandler {
	return &SaveEssayDraftHandler{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Handle executes the save essay draft command.
func (h *SaveEssayDraftHandler) Handle(ctx context.Context, cmd SaveEssayDraftCommand) (*SaveEssayDraftResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("application", "SaveEssayDraft", shared.ErrValidation, err.Error(), err)
	}

	app, err := loadOwned(ctx, h.repo, cmd.ApplicationID, cmd.OwnerID)
	if err != nil {
		return nil, err
	}

	draft, err := app.SaveEssayDraft(cmd.Content)
	if err != nil {
		return nil, err
	}

	if err := persist(ctx, h.repo, h.cache, h.log, app); err != nil {
		return nil, err
	}

	h.log.Info("essay draft saved",
		logger.ApplicationID(app.ID),
		logger.Int("draft_version", draft.Version),
		logger.Int("word_count", draft.WordCount),
		logger.ProgressField(app.Progress),
	)

	return &SaveEssayDraftResult{
		Application: app,
		Draft:       draft,
		WithinLimit: app.Essay.WithinLimit(draft.WordCount),
	}, nil
}
