package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/scholar-hub/scholar-application-hub/internal/domain/scholarship"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/shared"
)

const scholarshipColumns = `
	id, name, provider, amount, deadline, award_notification, template,
	applications, created_at, updated_at`

// ScholarshipRepository implements scholarship.Catalog for PostgreSQL.
type ScholarshipRepository struct {
	conn *Connection
}

// NewScholarshipRepository creates a new ScholarshipRepository.
func NewScholarshipRepository(conn *Connection) *ScholarshipRepository {
	return &ScholarshipRepository{conn: conn}
}

// Create persists a new catalog entry.
func (r *ScholarshipRepository) Create(ctx context.Context, s *scholarship.Scholarship) error {
	query := `
		INSERT INTO scholarships (
			id, name, provider, amount, deadline, award_notification,
			template, applications, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	template, err := json.Marshal(s.Template)
	if err != nil {
		return fmt.Errorf("failed to marshal scholarship template: %w", err)
	}

	_, err = r.conn.Exec(ctx, query,
		s.ID, s.Name, s.Provider, s.Amount, s.Deadline, s.AwardNotification,
		template, s.Applications, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("scholarship", "Create", shared.ErrAlreadyExists,
				"scholarship already exists")
		}
		return fmt.Errorf("failed to create scholarship: %w", err)
	}
	return nil
}

// List returns catalog entries ordered by deadline.
func (r *ScholarshipRepository) List(ctx context.Context, onlyUpcoming bool) ([]*scholarship.Scholarship, error) {
	query := `SELECT` + scholarshipColumns + ` FROM scholarships`
	args := []interface{}{}
	if onlyUpcoming {
		query += ` WHERE deadline >= $1`
		args = append(args, time.Now().UTC())
	}
	query += ` ORDER BY deadline ASC`

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scholarships: %w", err)
	}
	defer rows.Close()

	var result []*scholarship.Scholarship
	for rows.Next() {
		s, err := scanScholarship(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// GetByID returns a scholarship by ID.
func (r *ScholarshipRepository) GetByID(ctx context.Context, id string) (*scholarship.Scholarship, error) {
	query := `SELECT` + scholarshipColumns + ` FROM scholarships WHERE id = $1`

	s, err := scanScholarship(r.conn.QueryRow(ctx, query, id))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrScholarshipNotFound
		}
		return nil, err
	}
	return s, nil
}

// GetByIDs returns scholarships for a list of IDs. Missing IDs are skipped.
func (r *ScholarshipRepository) GetByIDs(ctx context.Context, ids []string) ([]*scholarship.Scholarship, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT` + scholarshipColumns + ` FROM scholarships WHERE id = ANY($1)`

	rows, err := r.conn.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load scholarships: %w", err)
	}
	defer rows.Close()

	var result []*scholarship.Scholarship
	for rows.Next() {
		s, err := scanScholarship(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// IncrementApplications bumps the started-applications counter.
func (r *ScholarshipRepository) IncrementApplications(ctx context.Context, id string) error {
	_, err := r.conn.Exec(ctx,
		"UPDATE scholarships SET applications = applications + 1, updated_at = $2 WHERE id = $1",
		id, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to increment applications counter: %w", err)
	}
	return nil
}

func scanScholarship(row rowScanner) (*scholarship.Scholarship, error) {
	s := &scholarship.Scholarship{}
	var template []byte

	err := row.Scan(
		&s.ID, &s.Name, &s.Provider, &s.Amount, &s.Deadline,
		&s.AwardNotification, &template, &s.Applications,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan scholarship: %w", err)
	}

	if err := json.Unmarshal(template, &s.Template); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scholarship template: %w", err)
	}
	return s, nil
}
