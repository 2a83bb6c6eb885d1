package command

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholar-hub/scholar-application-hub/internal/domain/application"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/scholarship"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/shared"
	"github.com/scholar-hub/scholar-application-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY FAKES
// ══════════════════════════════════════════════════════════════════════════════

type fakeRepo struct {
	mu   sync.Mutex
	apps map[string]*application.Application

	updateErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{apps: make(map[string]*application.Application)}
}

func (r *fakeRepo) Create(_ context.Context, app *application.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.apps {
		if existing.OwnerID == app.OwnerID && existing.ScholarshipID == app.ScholarshipID {
			return shared.ErrDuplicateApplication
		}
	}
	r.apps[app.ID] = app.Clone()
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok {
		return nil, shared.ErrApplicationNotFound
	}
	return app.Clone(), nil
}

func (r *fakeRepo) GetByOwnerAndScholarship(_ context.Context, ownerID, scholarshipID string) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, app := range r.apps {
		if app.OwnerID == ownerID && app.ScholarshipID == scholarshipID {
			return app.Clone(), nil
		}
	}
	return nil, shared.ErrApplicationNotFound
}

func (r *fakeRepo) Update(_ context.Context, app *application.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	stored, ok := r.apps[app.ID]
	if !ok {
		return shared.ErrApplicationNotFound
	}
	if stored.Version != app.Version {
		return shared.ErrConcurrentModification
	}
	app.Version++
	r.apps[app.ID] = app.Clone()
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.apps[id]; !ok {
		return shared.ErrApplicationNotFound
	}
	delete(r.apps, id)
	return nil
}

func (r *fakeRepo) List(_ context.Context, ownerID string, _ application.Filter, _ application.ListOptions) ([]*application.Application, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*application.Application
	for _, app := range r.apps {
		if app.OwnerID == ownerID {
			out = append(out, app.Clone())
		}
	}
	return out, len(out), nil
}

func (r *fakeRepo) Stats(_ context.Context, _ string) (*application.Stats, error) {
	return &application.Stats{}, nil
}

func (r *fakeRepo) FindUrgent(_ context.Context, _ string, _ time.Duration) ([]*application.UrgentApplication, error) {
	return nil, nil
}

func (r *fakeRepo) FindForCalendar(_ context.Context, _ string, _, _ time.Time) ([]*application.UrgentApplication, error) {
	return nil, nil
}

type fakeCache struct {
	mu          sync.Mutex
	invalidated []string
}

func (c *fakeCache) Get(_ context.Context, id string) (*application.Application, error) {
	return nil, shared.WrapError("cache", "Get", shared.ErrNotFound, "cache miss", nil)
}

func (c *fakeCache) Set(_ context.Context, _ *application.Application, _ time.Duration) error {
	return nil
}

func (c *fakeCache) GetStats(_ context.Context, _ string) (*application.Stats, error) {
	return nil, shared.WrapError("cache", "GetStats", shared.ErrNotFound, "cache miss", nil)
}

func (c *fakeCache) SetStats(_ context.Context, _ string, _ *application.Stats, _ time.Duration) error {
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, id, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, id)
	return nil
}

type fakeCatalog struct {
	mu           sync.Mutex
	scholarships map[string]*scholarship.Scholarship
	incremented  []string
}

func newFakeCatalog(entries ...*scholarship.Scholarship) *fakeCatalog {
	c := &fakeCatalog{scholarships: make(map[string]*scholarship.Scholarship)}
	for _, s := range entries {
		c.scholarships[s.ID] = s
	}
	return c
}

func (c *fakeCatalog) Create(_ context.Context, s *scholarship.Scholarship) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.scholarships[s.ID]; ok {
		return shared.NewDomainError("scholarship", "Create", shared.ErrAlreadyExists, "scholarship already exists")
	}
	c.scholarships[s.ID] = s
	return nil
}

func (c *fakeCatalog) List(_ context.Context, _ bool) ([]*scholarship.Scholarship, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*scholarship.Scholarship
	for _, s := range c.scholarships {
		out = append(out, s)
	}
	return out, nil
}

func (c *fakeCatalog) GetByID(_ context.Context, id string) (*scholarship.Scholarship, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.scholarships[id]
	if !ok {
		return nil, shared.ErrScholarshipNotFound
	}
	return s, nil
}

func (c *fakeCatalog) GetByIDs(_ context.Context, ids []string) ([]*scholarship.Scholarship, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*scholarship.Scholarship
	for _, id := range ids {
		if s, ok := c.scholarships[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (c *fakeCatalog) IncrementApplications(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.incremented = append(c.incremented, id)
	return nil
}

type fakeStore struct {
	mu      sync.Mutex
	uploads int
	deletes []string

	uploadErr error
	deleteErr error
}

func (s *fakeStore) Upload(_ context.Context, name, _ string, _ io.Reader, _ int64) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploadErr != nil {
		return "", "", s.uploadErr
	}
	s.uploads++
	return "https://files.example.com/" + name, "ref-" + name, nil
}

func (s *fakeStore) Delete(_ context.Context, externalRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deletes = append(s.deletes, externalRef)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Output: io.Discard})
}

func testScholarship() *scholarship.Scholarship {
	return &scholarship.Scholarship{
		ID:       "sch-1",
		Name:     "STEM Excellence Award",
		Provider: "Acme Foundation",
		Amount:   5000,
		Deadline: time.Now().AddDate(0, 2, 0),
		Template: scholarship.Template{
			EssayRequired:      true,
			EssayWordLimit:     scholarship.WordLimit{Min: 100, Max: 500},
			TranscriptRequired: true,
		},
	}
}

type testEnv struct {
	repo    *fakeRepo
	cache   *fakeCache
	catalog *fakeCatalog
	store   *fakeStore
	log     *logger.Logger
}

func newTestEnv() *testEnv {
	return &testEnv{
		repo:    newFakeRepo(),
		cache:   &fakeCache{},
		catalog: newFakeCatalog(testScholarship()),
		store:   &fakeStore{},
		log:     testLogger(),
	}
}

func (e *testEnv) startApplication(t *testing.T) *application.Application {
	t.Helper()
	h := NewStartApplicationHandler(e.repo, e.catalog, e.cache, e.log)
	result, err := h.Handle(context.Background(), StartApplicationCommand{
		OwnerID:       "user-1",
		ScholarshipID: "sch-1",
	})
	require.NoError(t, err)
	return result.Application
}

func (e *testEnv) completeRequirements(t *testing.T, appID string) {
	t.Helper()
	h := NewChecklistHandler(e.repo, e.cache, e.log)
	app, err := e.repo.GetByID(context.Background(), appID)
	require.NoError(t, err)
	for _, req := range app.Requirements {
		_, err := h.HandleUpdate(context.Background(), UpdateRequirementCommand{
			ApplicationID: appID,
			OwnerID:       "user-1",
			RequirementID: req.ID,
			Status:        application.RequirementCompleted,
		})
		require.NoError(t, err)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// START APPLICATION
// ══════════════════════════════════════════════════════════════════════════════

func TestStartApplication(t *testing.T) {
	env := newTestEnv()
	app := env.startApplication(t)

	assert.Equal(t, application.StatusInProgress, app.Status)
	assert.Equal(t, "sch-1", app.ScholarshipID)
	assert.NotEmpty(t, app.Requirements)
	assert.Equal(t, []string{"sch-1"}, env.catalog.incremented)
}

func TestStartApplication_Duplicate(t *testing.T) {
	env := newTestEnv()
	env.startApplication(t)

	h := NewStartApplicationHandler(env.repo, env.catalog, env.cache, env.log)
	_, err := h.Handle(context.Background(), StartApplicationCommand{
		OwnerID:       "user-1",
		ScholarshipID: "sch-1",
	})
	assert.ErrorIs(t, err, shared.ErrDuplicateApplication)
}

func TestStartApplication_UnknownScholarship(t *testing.T) {
	env := newTestEnv()
	h := NewStartApplicationHandler(env.repo, env.catalog, env.cache, env.log)

	_, err := h.Handle(context.Background(), StartApplicationCommand{
		OwnerID:       "user-1",
		ScholarshipID: "sch-missing",
	})
	assert.True(t, shared.IsNotFound(err))
}

// ══════════════════════════════════════════════════════════════════════════════
// OWNERSHIP
// ══════════════════════════════════════════════════════════════════════════════

func TestOwnershipEnforced(t *testing.T) {
	env := newTestEnv()
	app := env.startApplication(t)

	h := NewSaveEssayDraftHandler(env.repo, env.cache, env.log)
	_, err := h.Handle(context.Background(), SaveEssayDraftCommand{
		ApplicationID: app.ID,
		OwnerID:       "intruder",
		Content:       "my essay",
	})
	assert.ErrorIs(t, err, shared.ErrNotOwner)
}

// ══════════════════════════════════════════════════════════════════════════════
// SUBMIT
// ══════════════════════════════════════════════════════════════════════════════

func TestSubmit_MissingRequirements(t *testing.T) {
	env := newTestEnv()
	app := env.startApplication(t)

	h := NewSubmitApplicationHandler(env.repo, env.cache, env.log)
	_, err := h.Handle(context.Background(), SubmitApplicationCommand{
		ApplicationID: app.ID,
		OwnerID:       "user-1",
	})

	var missing *application.MissingRequirementsError
	require.ErrorAs(t, err, &missing)
	assert.NotEmpty(t, missing.Labels)

	stored, err := env.repo.GetByID(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusInProgress, stored.Status)
}

func TestSubmit_GeneratesConfirmation(t *testing.T) {
	env := newTestEnv()
	app := env.startApplication(t)
	env.completeRequirements(t, app.ID)

	h := NewSubmitApplicationHandler(env.repo, env.cache, env.log)
	result, err := h.Handle(context.Background(), SubmitApplicationCommand{
		ApplicationID: app.ID,
		OwnerID:       "user-1",
	})
	require.NoError(t, err)

	assert.Equal(t, application.StatusSubmitted, result.Application.Status)
	assert.True(t, strings.HasPrefix(result.ConfirmationNumber, "SUB-"))
}

func TestSubmit_KeepsProvidedConfirmation(t *testing.T) {
	env := newTestEnv()
	app := env.startApplication(t)
	env.completeRequirements(t, app.ID)

	h := NewSubmitApplicationHandler(env.repo, env.cache, env.log)
	result, err := h.Handle(context.Background(), SubmitApplicationCommand{
		ApplicationID:      app.ID,
		OwnerID:            "user-1",
		ConfirmationNumber: "ACME-2026-001",
	})
	require.NoError(t, err)
	assert.Equal(t, "ACME-2026-001", result.ConfirmationNumber)
}

// ══════════════════════════════════════════════════════════════════════════════
// DECISIONS
// ══════════════════════════════════════════════════════════════════════════════

func TestRecordWin_LocksChecklist(t *testing.T) {
	env := newTestEnv()
	app := env.startApplication(t)

	decisions := NewDecisionHandler(env.repo, env.cache, env.log)
	_, err := decisions.HandleWin(context.Background(), RecordWinCommand{
		ApplicationID: app.ID,
		OwnerID:       "user-1",
		Award:         &application.AwardDetails{Amount: 5000},
	})
	require.NoError(t, err)

	checklist := NewChecklistHandler(env.repo, env.cache, env.log)
	_, err = checklist.HandleUpdate(context.Background(), UpdateRequirementCommand{
		ApplicationID: app.ID,
		OwnerID:       "user-1",
		RequirementID: app.Requirements[0].ID,
		Status:        application.RequirementCompleted,
	})
	assert.ErrorIs(t, err, shared.ErrApplicationLocked)
}

func TestRecordWin_NegativeAmount(t *testing.T) {
	env := newTestEnv()
	app := env.startApplication(t)

	decisions := NewDecisionHandler(env.repo, env.cache, env.log)
	_, err := decisions.HandleWin(context.Background(), RecordWinCommand{
		ApplicationID: app.ID,
		OwnerID:       "user-1",
		Award:         &application.AwardDetails{Amount: -1},
	})
	assert.Error(t, err)
}

func TestWithdraw_ThenDecisionFails(t *testing.T) {
	env := newTestEnv()
	app := env.startApplication(t)

	decisions := NewDecisionHandler(env.repo, env.cache, env.log)
	_, err := decisions.HandleWithdraw(context.Background(), WithdrawCommand{
		ApplicationID: app.ID,
		OwnerID:       "user-1",
	})
	require.NoError(t, err)

	_, err = decisions.HandleWin(context.Background(), RecordWinCommand{
		ApplicationID: app.ID,
		OwnerID:       "user-1",
	})
	assert.ErrorIs(t, err, shared.ErrIllegalTransition)
}

// ══════════════════════════════════════════════════════════════════════════════
// DOCUMENTS
// ══════════════════════════════════════════════════════════════════════════════

func TestUploadDocument(t *testing.T) {
	env := newTestEnv()
	app := env.startApplication(t)

	docs := NewDocumentHandler(env.repo, env.cache, env.store, env.log)
	result, err := docs.HandleUpload(context.Background(), UploadDocumentCommand{
		ApplicationID: app.ID,
		OwnerID:       "user-1",
		Name:          "transcript.pdf",
		Type:          "transcript",
		ContentType:   "application/pdf",
		Data:          strings.NewReader("pdf bytes"),
		Size:          9,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, env.store.uploads)
	assert.Equal(t, "ref-transcript.pdf", result.Document.ExternalRef)
	require.Len(t, result.Application.Documents, 1)
}

func TestUploadDocument_LockedSkipsStorage(t *testing.T) {
	env := newTestEnv()
	app := env.startApplication(t)
	env.completeRequirements(t, app.ID)

	submit := NewSubmitApplicationHandler(env.repo, env.cache, env.log)
	_, err := submit.Handle(context.Background(), SubmitApplicationCommand{
		ApplicationID: app.ID,
		OwnerID:       "user-1",
	})
	require.NoError(t, err)

	docs := NewDocumentHandler(env.repo, env.cache, env.store, env.log)
	_, err = docs.HandleUpload(context.Background(), UploadDocumentCommand{
		ApplicationID: app.ID,
		OwnerID:       "user-1",
		Name:          "late.pdf",
		Data:          strings.NewReader("x"),
	})
	assert.ErrorIs(t, err, shared.ErrApplicationLocked)
	assert.Equal(t, 0, env.store.uploads, "locked applications must not pay for an upload")
}

func TestRemoveDocument_CleansStorage(t *testing.T) {
	env := newTestEnv()
	app := env.startApplication(t)

	docs := NewDocumentHandler(env.repo, env.cache, env.store, env.log)
	uploaded, err := docs.HandleUpload(context.Background(), UploadDocumentCommand{
		ApplicationID: app.ID,
		OwnerID:       "user-1",
		Name:          "essay.pdf",
		Data:          strings.NewReader("x"),
	})
	require.NoError(t, err)

	result, err := docs.HandleRemove(context.Background(), RemoveDocumentCommand{
		ApplicationID: app.ID,
		OwnerID:       "user-1",
		DocumentID:    uploaded.Document.ID,
	})
	require.NoError(t, err)

	assert.Empty(t, result.Application.Documents)
	assert.Equal(t, []string{uploaded.Document.ExternalRef}, env.store.deletes)
}

func TestRemoveDocument_StorageFailureNotSurfaced(t *testing.T) {
	env := newTestEnv()
	app := env.startApplication(t)

	docs := NewDocumentHandler(env.repo, env.cache, env.store, env.log)
	uploaded, err := docs.HandleUpload(context.Background(), UploadDocumentCommand{
		ApplicationID: app.ID,
		OwnerID:       "user-1",
		Name:          "essay.pdf",
		Data:          strings.NewReader("x"),
	})
	require.NoError(t, err)

	env.store.deleteErr = errors.New("storage down")

	result, err := docs.HandleRemove(context.Background(), RemoveDocumentCommand{
		ApplicationID: app.ID,
		OwnerID:       "user-1",
		DocumentID:    uploaded.Document.ID,
	})
	require.NoError(t, err, "record removal is authoritative, storage cleanup is best-effort")
	assert.Empty(t, result.Application.Documents)
}

// ══════════════════════════════════════════════════════════════════════════════
// DELETE APPLICATION
// ══════════════════════════════════════════════════════════════════════════════

func TestDeleteApplication_CleansAllDocuments(t *testing.T) {
	env := newTestEnv()
	app := env.startApplication(t)

	docs := NewDocumentHandler(env.repo, env.cache, env.store, env.log)
	for _, name := range []string{"a.pdf", "b.pdf"} {
		_, err := docs.HandleUpload(context.Background(), UploadDocumentCommand{
			ApplicationID: app.ID,
			OwnerID:       "user-1",
			Name:          name,
			Data:          strings.NewReader("x"),
		})
		require.NoError(t, err)
	}

	del := NewDeleteApplicationHandler(env.repo, env.cache, env.store, env.log)
	result, err := del.Handle(context.Background(), DeleteApplicationCommand{
		ApplicationID: app.ID,
		OwnerID:       "user-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.DocumentsScheduled)
	assert.ElementsMatch(t, []string{"ref-a.pdf", "ref-b.pdf"}, env.store.deletes)

	_, err = env.repo.GetByID(context.Background(), app.ID)
	assert.ErrorIs(t, err, shared.ErrApplicationNotFound)
}

// ══════════════════════════════════════════════════════════════════════════════
// DUPLICATE APPLICATION
// ══════════════════════════════════════════════════════════════════════════════

func TestDuplicateApplication_CarriesEssay(t *testing.T) {
	env := newTestEnv()
	app := env.startApplication(t)

	other := testScholarship()
	other.ID = "sch-2"
	other.Name = "Community Leadership Grant"
	require.NoError(t, env.catalog.Create(context.Background(), other))

	essay := NewSaveEssayDraftHandler(env.repo, env.cache, env.log)
	_, err := essay.Handle(context.Background(), SaveEssayDraftCommand{
		ApplicationID: app.ID,
		OwnerID:       "user-1",
		Content:       "first draft",
	})
	require.NoError(t, err)
	_, err = essay.Handle(context.Background(), SaveEssayDraftCommand{
		ApplicationID: app.ID,
		OwnerID:       "user-1",
		Content:       "final draft",
	})
	require.NoError(t, err)

	dup := NewDuplicateApplicationHandler(env.repo, env.catalog, env.cache, env.log)
	result, err := dup.Handle(context.Background(), DuplicateApplicationCommand{
		ApplicationID:    app.ID,
		OwnerID:          "user-1",
		NewScholarshipID: "sch-2",
	})
	require.NoError(t, err)

	assert.True(t, result.EssayCarriedOver)
	assert.Equal(t, "Community Leadership Grant", result.ScholarshipName)
	assert.NotEqual(t, app.ID, result.Application.ID)
	assert.Equal(t, application.StatusInProgress, result.Application.Status)

	// Only the latest source draft carries over, as version 1.
	require.Len(t, result.Application.Essay.Drafts, 1)
	assert.Equal(t, "final draft", result.Application.Essay.Drafts[0].Content)
	assert.Equal(t, 1, result.Application.Essay.Drafts[0].Version)

	// The copy starts with a fresh checklist.
	for _, req := range result.Application.Requirements {
		assert.Equal(t, application.RequirementMissing, req.Status)
	}
}

func TestDuplicateApplication_NoEssay(t *testing.T) {
	env := newTestEnv()
	app := env.startApplication(t)

	other := testScholarship()
	other.ID = "sch-2"
	require.NoError(t, env.catalog.Create(context.Background(), other))

	dup := NewDuplicateApplicationHandler(env.repo, env.catalog, env.cache, env.log)
	result, err := dup.Handle(context.Background(), DuplicateApplicationCommand{
		ApplicationID:    app.ID,
		OwnerID:          "user-1",
		NewScholarshipID: "sch-2",
	})
	require.NoError(t, err)

	assert.False(t, result.EssayCarriedOver)
	assert.Empty(t, result.Application.Essay.Drafts)
}

func TestDuplicateApplication_SameScholarshipConflicts(t *testing.T) {
	env := newTestEnv()
	app := env.startApplication(t)

	dup := NewDuplicateApplicationHandler(env.repo, env.catalog, env.cache, env.log)
	_, err := dup.Handle(context.Background(), DuplicateApplicationCommand{
		ApplicationID:    app.ID,
		OwnerID:          "user-1",
		NewScholarshipID: "sch-1",
	})
	assert.ErrorIs(t, err, shared.ErrDuplicateApplication)
}

// ══════════════════════════════════════════════════════════════════════════════
// ESSAY
// ══════════════════════════════════════════════════════════════════════════════

func TestSaveEssayDraft_WordLimitFlag(t *testing.T) {
	env := newTestEnv()
	app := env.startApplication(t)

	h := NewSaveEssayDraftHandler(env.repo, env.cache, env.log)

	short, err := h.Handle(context.Background(), SaveEssayDraftCommand{
		ApplicationID: app.ID,
		OwnerID:       "user-1",
		Content:       "too short",
	})
	require.NoError(t, err)
	assert.False(t, short.WithinLimit)
	assert.Equal(t, 1, short.Draft.Version)

	long, err := h.Handle(context.Background(), SaveEssayDraftCommand{
		ApplicationID: app.ID,
		OwnerID:       "user-1",
		Content:       strings.Repeat("word ", 200),
	})
	require.NoError(t, err)
	assert.True(t, long.WithinLimit)
	assert.Equal(t, 2, long.Draft.Version)
}

// ══════════════════════════════════════════════════════════════════════════════
// CACHE INVALIDATION
// ══════════════════════════════════════════════════════════════════════════════

func TestWritesInvalidateCache(t *testing.T) {
	env := newTestEnv()
	app := env.startApplication(t)
	before := len(env.cache.invalidated)

	h := NewSaveEssayDraftHandler(env.repo, env.cache, env.log)
	_, err := h.Handle(context.Background(), SaveEssayDraftCommand{
		ApplicationID: app.ID,
		OwnerID:       "user-1",
		Content:       "draft",
	})
	require.NoError(t, err)

	assert.Greater(t, len(env.cache.invalidated), before)
	assert.Contains(t, env.cache.invalidated, app.ID)
}
