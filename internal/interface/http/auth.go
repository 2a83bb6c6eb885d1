package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/scholar-hub/scholar-application-hub/internal/domain/shared"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/user"
	"github.com/scholar-hub/scholar-application-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// AUTHENTICATION
// Register/login issue an opaque bearer token persisted server-side.
// Every application route resolves the token to a user ID, which scopes
// all repository access.
// ══════════════════════════════════════════════════════════════════════════════

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// handleRegister creates an account and issues a session.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	if err := user.ValidateEmail(req.Email); err != nil {
		writeDomainError(w, err)
		return
	}
	if len(req.Password) < 8 {
		writeJSONError(w, http.StatusBadRequest, "weak_password", "password must be at least 8 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "failed to process password")
		return
	}

	now := time.Now().UTC()
	u := &user.User{
		ID:           uuid.NewString(),
		Email:        user.NormalizeEmail(req.Email),
		DisplayName:  strings.TrimSpace(req.DisplayName),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.deps.Users.CreateUser(r.Context(), u); err != nil {
		writeDomainError(w, err)
		return
	}

	session, err := s.issueSession(r.Context(), u.ID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "failed to create session")
		return
	}

	s.logger.Info("user registered", logger.String("user_id", u.ID))

	writeJSON(w, http.StatusCreated, authResponse{
		Token:     session.Token,
		UserID:    u.ID,
		Email:     u.Email,
		ExpiresAt: session.ExpiresAt,
	})
}

// handleLogin verifies credentials and issues a session.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	u, err := s.deps.Users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if shared.IsNotFound(err) {
			writeDomainError(w, shared.ErrInvalidCredentials)
			return
		}
		writeDomainError(w, err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		writeDomainError(w, shared.ErrInvalidCredentials)
		return
	}

	session, err := s.issueSession(r.Context(), u.ID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "failed to create session")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Token:     session.Token,
		UserID:    u.ID,
		Email:     u.Email,
		ExpiresAt: session.ExpiresAt,
	})
}

// handleLogout revokes the presented session.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token != "" {
		if err := s.deps.Users.DeleteSession(r.Context(), token); err != nil {
			s.logger.Warn("failed to delete session", logger.Err(err))
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"logged_out": true})
}

// issueSession creates and persists a new session token.
func (s *Server) issueSession(ctx context.Context, userID string) (*user.Session, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session := &user.Session{
		Token:     hex.EncodeToString(raw),
		UserID:    userID,
		ExpiresAt: now.Add(s.config.SessionTTL),
		CreatedAt: now,
	}

	if err := s.deps.Users.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// authenticated resolves the bearer token to a user ID before calling
// the wrapped handler.
func (s *Server) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}

		session, err := s.deps.Users.GetSession(r.Context(), token)
		if err != nil {
			if shared.IsNotFound(err) {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "invalid session")
				return
			}
			writeDomainError(w, err)
			return
		}

		if session.Expired(time.Now().UTC()) {
			if err := s.deps.Users.DeleteSession(r.Context(), token); err != nil {
				s.logger.Warn("failed to delete expired session", logger.Err(err))
			}
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "session expired")
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUserID, session.UserID)
		next(w, r.WithContext(ctx))
	}
}

// currentUserID returns the authenticated user's ID from context.
func currentUserID(ctx context.Context) string {
	if id, ok := ctx.Value(contextKeyUserID).(string); ok {
		return id
	}
	return ""
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return auth[len(prefix):]
	}
	return ""
}
