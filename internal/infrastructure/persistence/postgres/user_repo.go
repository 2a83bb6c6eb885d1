package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/scholar-hub/scholar-application-hub/internal/domain/shared"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/user"
)

// UserRepository implements user.Store for PostgreSQL.
type UserRepository struct {
	conn *Connection
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{conn: conn}
}

// CreateUser persists a new account.
func (r *UserRepository) CreateUser(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, display_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.conn.Exec(ctx, query,
		u.ID, user.NormalizeEmail(u.Email), u.PasswordHash, u.DisplayName,
		u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrDuplicateUser
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByEmail returns the account for a normalized email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `
		SELECT id, email, password_hash, display_name, created_at, updated_at
		FROM users WHERE LOWER(email) = $1
	`
	return r.scanUser(r.conn.QueryRow(ctx, query, user.NormalizeEmail(email)))
}

// GetUserByID returns the account by ID.
func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*user.User, error) {
	query := `
		SELECT id, email, password_hash, display_name, created_at, updated_at
		FROM users WHERE id = $1
	`
	return r.scanUser(r.conn.QueryRow(ctx, query, id))
}

// CreateSession persists a new session token.
func (r *UserRepository) CreateSession(ctx context.Context, s *user.Session) error {
	query := `
		INSERT INTO sessions (token, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.conn.Exec(ctx, query, s.Token, s.UserID, s.ExpiresAt, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession returns a session by token.
func (r *UserRepository) GetSession(ctx context.Context, token string) (*user.Session, error) {
	query := `SELECT token, user_id, expires_at, created_at FROM sessions WHERE token = $1`

	s := &user.Session{}
	err := r.conn.QueryRow(ctx, query, token).Scan(
		&s.Token, &s.UserID, &s.ExpiresAt, &s.CreatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return s, nil
}

// DeleteSession removes a session token.
func (r *UserRepository) DeleteSession(ctx context.Context, token string) error {
	_, err := r.conn.Exec(ctx, "DELETE FROM sessions WHERE token = $1", token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions past their expiry.
func (r *UserRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.conn.Exec(ctx, "DELETE FROM sessions WHERE expires_at <= $1", now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected(), nil
}

func (r *UserRepository) scanUser(row rowScanner) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return u, nil
}
