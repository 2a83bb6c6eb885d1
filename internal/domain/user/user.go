// Package user holds the account and session types backing the HTTP
// authentication layer. Application ownership references users by ID.
package user

import (
	"context"
	"strings"
	"time"

	"github.com/scholar-hub/scholar-application-hub/internal/domain/shared"
)

// User is a registered account.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is an opaque bearer token bound to a user.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// NormalizeEmail lowercases and trims an email address for lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail performs a minimal shape check.
func ValidateEmail(email string) error {
	email = NormalizeEmail(email)
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return shared.NewDomainError("user", "ValidateEmail", shared.ErrInvalidFormat,
			"invalid email address")
	}
	return nil
}

// Store persists users and sessions.
type Store interface {
	// CreateUser persists a new account.
	// Returns shared.ErrAlreadyExists (wrapped) on a duplicate email.
	CreateUser(ctx context.Context, u *User) error

	// GetUserByEmail returns the account for a normalized email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// GetUserByID returns the account by ID.
	GetUserByID(ctx context.Context, id string) (*User, error)

	// CreateSession persists a new session token.
	CreateSession(ctx context.Context, s *Session) error

	// GetSession returns a session by token.
	GetSession(ctx context.Context, token string) (*Session, error)

	// DeleteSession removes a session token. Missing tokens are not an error.
	DeleteSession(ctx context.Context, token string) error

	// DeleteExpiredSessions removes sessions past their expiry.
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}
