package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholar-hub/scholar-application-hub/internal/domain/shared"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/user"
	"github.com/scholar-hub/scholar-application-hub/pkg/logger"
)

type fakeUserStore struct {
	mu       sync.Mutex
	users    map[string]*user.User
	sessions map[string]*user.Session
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:    make(map[string]*user.User),
		sessions: make(map[string]*user.Session),
	}
}

func (s *fakeUserStore) CreateUser(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return shared.ErrDuplicateUser
		}
	}
	s.users[u.ID] = u
	return nil
}

func (s *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.NormalizeEmail(email) {
			return u, nil
		}
	}
	return nil, shared.ErrUserNotFound
}

func (s *fakeUserStore) GetUserByID(_ context.Context, id string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, shared.ErrUserNotFound
}

func (s *fakeUserStore) CreateSession(_ context.Context, sess *user.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Token] = sess
	return nil
}

func (s *fakeUserStore) GetSession(_ context.Context, token string) (*user.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[token]; ok {
		return sess, nil
	}
	return nil, shared.ErrSessionNotFound
}

func (s *fakeUserStore) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *fakeUserStore) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for token, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, token)
			n++
		}
	}
	return n, nil
}

func newTestServer(store user.Store) *Server {
	cfg := DefaultConfig()
	cfg.RateLimitPerMinute = 0
	return NewServer(cfg, Dependencies{
		Users:  store,
		Logger: logger.New(logger.Options{Output: io.Discard}),
	})
}

func TestBearerToken(t *testing.T) {
	mk := func(header string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		return r
	}

	assert.Equal(t, "abc123", bearerToken(mk("Bearer abc123")))
	assert.Equal(t, "abc123", bearerToken(mk("bearer abc123")))
	assert.Equal(t, "", bearerToken(mk("")))
	assert.Equal(t, "", bearerToken(mk("Basic abc123")))
	assert.Equal(t, "", bearerToken(mk("Bearer ")))
}

func TestAuthenticated_MissingToken(t *testing.T) {
	server := newTestServer(newFakeUserStore())

	handler := server.authenticated(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a session")
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/applications", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticated_ValidSession(t *testing.T) {
	store := newFakeUserStore()
	require.NoError(t, store.CreateSession(context.Background(), &user.Session{
		Token:     "tok-1",
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	server := newTestServer(store)

	var gotUserID string
	handler := server.authenticated(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = currentUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/applications", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", gotUserID)
}

func TestAuthenticated_ExpiredSession(t *testing.T) {
	store := newFakeUserStore()
	require.NoError(t, store.CreateSession(context.Background(), &user.Session{
		Token:     "tok-old",
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(-time.Hour),
	}))

	server := newTestServer(store)

	handler := server.authenticated(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with an expired session")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/applications", nil)
	req.Header.Set("Authorization", "Bearer tok-old")
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// The expired session is removed on first use.
	_, err := store.GetSession(context.Background(), "tok-old")
	assert.ErrorIs(t, err, shared.ErrSessionNotFound)
}
