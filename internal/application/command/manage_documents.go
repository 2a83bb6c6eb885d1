package command

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/scholar-hub/scholar-application-hub/internal/domain/application"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/shared"
	"github.com/scholar-hub/scholar-application-hub/pkg/logger"
	"github.com/scholar-hub/scholar-application-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOCUMENT COMMANDS
// Upload pushes the file to external storage first, then attaches the
// returned reference to the aggregate. Removal detaches the reference
// and cleans the stored file up best-effort: the application's state
// never depends on the storage service being reachable.
// ══════════════════════════════════════════════════════════════════════════════

// FileStore is the external storage the document commands depend on.
type FileStore interface {
	// Upload stores a file and returns its URL and deletion reference.
	Upload(ctx context.Context, name, contentType string, data io.Reader, size int64) (url, externalRef string, err error)

	// Delete removes a stored file by reference. A missing file is not
	// an error.
	Delete(ctx context.Context, externalRef string) error
}

// UploadDocumentCommand stores a file and attaches it to an application.
type UploadDocumentCommand struct {
	// ApplicationID identifies the application.
	ApplicationID string

	// OwnerID is the acting student, for the ownership check.
	OwnerID string

	// Name is the display file name.
	Name string

	// Type categorizes the document (transcript, essay, letter, ...).
	Type string

	// ContentType is the MIME type of the payload.
	ContentType string

	// Data is the file payload.
	Data io.Reader

	// Size is the payload size in bytes, when known.
	Size int64
}

// Validate validates the command.
func (c UploadDocumentCommand) Validate() error {
	if c.ApplicationID == "" {
		return errors.New("upload_document: application_id is required")
	}
	if c.OwnerID == "" {
		return errors.New("upload_document: owner_id is required")
	}
	if c.Name == "" {
		return errors.New("upload_document: name is required")
	}
	if c.Data == nil {
		return errors.New("upload_document: data is required")
	}
	return nil
}

// RemoveDocumentCommand detaches a document and deletes the stored file.
type RemoveDocumentCommand struct {
	ApplicationID string
	OwnerID       string
	DocumentID    string
}

// Validate validates the command.
func (c RemoveDocumentCommand) Validate() error {
	if c.ApplicationID == "" {
		return errors.New("remove_document: application_id is required")
	}
	if c.OwnerID == "" {
		return errors.New("remove_document: owner_id is required")
	}
	if c.DocumentID == "" {
		return errors.New("remove_document: document_id is required")
	}
	return nil
}

// DocumentResult is the shared result of document commands.
type DocumentResult struct {
	// Application is the aggregate after the change.
	Application *application.Application

	// Document is the attached or removed record.
	Document application.Document
}

// DocumentHandler handles document commands.
type DocumentHandler struct {
	repo    application.Repository
	cache   application.Cache
	storage FileStore
	retrier *retry.Retrier
	log     *logger.Logger
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(
	repo application.Repository,
	cache application.Cache,
	storage FileStore,
	log *logger.Logger,
) *DocumentHandler {
	cfg := retry.DefaultConfig()
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		log.Warn("retrying storage delete",
			logger.Int("attempt", attempt),
			logger.Duration("delay", delay),
			logger.Err(err),
		)
	}

	return &DocumentHandler{
		repo:    repo,
		cache:   cache,
		storage: storage,
		retrier: retry.New(cfg),
		log:     log,
	}
}

// HandleUpload executes the upload document command.
func (h *DocumentHandler) HandleUpload(ctx context.Context, cmd UploadDocumentCommand) (*DocumentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("application", "UploadDocument", shared.ErrValidation, err.Error(), err)
	}

	app, err := loadOwned(ctx, h.repo, cmd.ApplicationID, cmd.OwnerID)
	if err != nil {
		return nil, err
	}

	// Reject locked applications before paying for the upload.
	if app.Status.IsLocked() || app.Status == application.StatusWithdrawn {
		return nil, shared.ErrApplicationLocked
	}

	url, externalRef, err := h.storage.Upload(ctx, cmd.Name, cmd.ContentType, cmd.Data, cmd.Size)
	if err != nil {
		return nil, err
	}

	doc := application.Document{
		ID:          uuid.NewString(),
		Name:        cmd.Name,
		Type:        cmd.Type,
		URL:         url,
		ExternalRef: externalRef,
		UploadedAt:  time.Now().UTC(),
	}

	if err := app.AttachDocument(doc); err != nil {
		h.cleanupStored(externalRef)
		return nil, err
	}

	if err := persist(ctx, h.repo, h.cache, h.log, app); err != nil {
		h.cleanupStored(externalRef)
		return nil, err
	}

	h.log.Info("document uploaded",
		logger.ApplicationID(app.ID),
		logger.DocumentID(doc.ID),
		logger.String("document_type", doc.Type),
	)

	return &DocumentResult{Application: app, Document: doc}, nil
}

// HandleRemove executes the remove document command.
func (h *DocumentHandler) HandleRemove(ctx context.Context, cmd RemoveDocumentCommand) (*DocumentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("application", "RemoveDocument", shared.ErrValidation, err.Error(), err)
	}

	app, err := loadOwned(ctx, h.repo, cmd.ApplicationID, cmd.OwnerID)
	if err != nil {
		return nil, err
	}

	doc, err := app.RemoveDocument(cmd.DocumentID)
	if err != nil {
		return nil, err
	}

	if err := persist(ctx, h.repo, h.cache, h.log, app); err != nil {
		return nil, err
	}

	h.cleanupStored(doc.ExternalRef)

	h.log.Info("document removed",
		logger.ApplicationID(app.ID),
		logger.DocumentID(doc.ID),
	)

	return &DocumentResult{Application: app, Document: doc}, nil
}

// cleanupStored deletes a stored file best-effort. The aggregate has
// already moved on; a storage failure is logged and never surfaced.
func (h *DocumentHandler) cleanupStored(externalRef string) {
	if externalRef == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := h.retrier.Do(ctx, func(ctx context.Context) error {
		return h.storage.Delete(ctx, externalRef)
	})
	if err != nil {
		h.log.Warn("orphaned file left in storage",
			logger.String("external_ref", externalRef),
			logger.Err(err),
		)
	}
}
