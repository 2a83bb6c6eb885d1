package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/scholar-hub/scholar-application-hub/internal/domain/application"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/shared"
)

// applicationColumns is the column list shared by every SELECT.
const applicationColumns = `
	id, owner_id, scholarship_id, status, progress, requirements, essay,
	documents, submitted_at, confirmation_number, decision_date,
	decision_expected_by, award_details, won_at, rejected_at, feedback,
	next_steps, notes, reminders, timeline, last_activity_at, version,
	created_at, updated_at`

// ApplicationRepository implements application.Repository for PostgreSQL.
type ApplicationRepository struct {
	conn *Connection
}

// NewApplicationRepository creates a new ApplicationRepository.
func NewApplicationRepository(conn *Connection) *ApplicationRepository {
	return &ApplicationRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Create persists a new application.
func (r *ApplicationRepository) Create(ctx context.Context, app *application.Application) error {
	query := `
		INSERT INTO applications (
			id, owner_id, scholarship_id, status, progress, requirements, essay,
			documents, submitted_at, confirmation_number, decision_date,
			decision_expected_by, award_details, won_at, rejected_at, feedback,
			next_steps, notes, reminders, timeline, last_activity_at, version,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
	`

	cols, err := marshalOwnedCollections(app)
	if err != nil {
		return err
	}

	_, err = r.conn.Exec(ctx, query,
		app.ID,
		app.OwnerID,
		app.ScholarshipID,
		string(app.Status),
		app.Progress,
		cols.requirements,
		cols.essay,
		cols.documents,
		app.SubmittedAt,
		app.ConfirmationNumber,
		app.DecisionDate,
		app.DecisionExpectedBy,
		cols.awardDetails,
		app.WonAt,
		app.RejectedAt,
		app.Feedback,
		cols.nextSteps,
		app.Notes,
		cols.reminders,
		cols.timeline,
		app.LastActivityAt,
		app.Version,
		app.CreatedAt,
		app.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrDuplicateApplication
		}
		return fmt.Errorf("failed to create application: %w", err)
	}

	return nil
}

// GetByID returns an application by ID.
func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*application.Application, error) {
	query := `SELECT` + applicationColumns + ` FROM applications WHERE id = $1`
	return r.scanApplication(r.conn.QueryRow(ctx, query, id))
}

// GetByOwnerAndScholarship returns the unique application for the pair.
func (r *ApplicationRepository) GetByOwnerAndScholarship(ctx context.Context, ownerID, scholarshipID string) (*application.Application, error) {
	query := `SELECT` + applicationColumns + ` FROM applications WHERE owner_id = $1 AND scholarship_id = $2`
	return r.scanApplication(r.conn.QueryRow(ctx, query, ownerID, scholarshipID))
}

// Update persists the aggregate with a compare-and-swap on version.
func (r *ApplicationRepository) Update(ctx context.Context, app *application.Application) error {
	query := `
		UPDATE applications SET
			status = $1,
			progress = $2,
			requirements = $3,
			essay = $4,
			documents = $5,
			submitted_at = $6,
			confirmation_number = $7,
			decision_date = $8,
			decision_expected_by = $9,
			award_details = $10,
			won_at = $11,
			rejected_at = $12,
			feedback = $13,
			next_steps = $14,
			notes = $15,
			reminders = $16,
			timeline = $17,
			last_activity_at = $18,
			version = $19,
			updated_at = $20
		WHERE id = $21 AND version = $22
	`

	cols, err := marshalOwnedCollections(app)
	if err != nil {
		return err
	}

	result, err := r.conn.Exec(ctx, query,
		string(app.Status),
		app.Progress,
		cols.requirements,
		cols.essay,
		cols.documents,
		app.SubmittedAt,
		app.ConfirmationNumber,
		app.DecisionDate,
		app.DecisionExpectedBy,
		cols.awardDetails,
		app.WonAt,
		app.RejectedAt,
		app.Feedback,
		cols.nextSteps,
		app.Notes,
		cols.reminders,
		cols.timeline,
		app.LastActivityAt,
		app.Version+1,
		time.Now().UTC(),
		app.ID,
		app.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Either the row is gone or someone else persisted first.
		var exists bool
		err := r.conn.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM applications WHERE id = $1)",
			app.ID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check application existence: %w", err)
		}
		if exists {
			return shared.WrapError("application", "Update", shared.ErrConcurrentModification,
				"application was modified concurrently", nil)
		}
		return shared.ErrApplicationNotFound
	}

	app.Version++
	return nil
}

// Delete hard-deletes an application.
func (r *ApplicationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.conn.Exec(ctx, "DELETE FROM applications WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrApplicationNotFound
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Listing & Stats
// ─────────────────────────────────────────────────────────────────────────────

// sortColumns whitelists the sortable columns.
var sortColumns = map[string]string{
	"last_activity_at": "a.last_activity_at",
	"created_at":       "a.created_at",
	"progress":         "a.progress",
	"status":           "a.status",
	"deadline":         "s.deadline",
}

// List returns an owner's applications with filtering and paging.
func (r *ApplicationRepository) List(ctx context.Context, ownerID string, filter application.Filter, opts application.ListOptions) ([]*application.Application, int, error) {
	where := []string{"a.owner_id = $1"}
	args := []interface{}{ownerID}

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("a.status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		where = append(where, fmt.Sprintf("LOWER(s.name) LIKE $%d", len(args)))
	}

	from := ` FROM applications a JOIN scholarships s ON s.id = a.scholarship_id WHERE ` +
		strings.Join(where, " AND ")

	var total int
	if err := r.conn.QueryRow(ctx, "SELECT COUNT(*)"+from, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	column, ok := sortColumns[opts.SortBy]
	if !ok {
		column = "a.last_activity_at"
	}
	direction := "ASC"
	if opts.SortDesc {
		direction = "DESC"
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = application.DefaultListOptions().Limit
	}
	args = append(args, limit, opts.Offset())

	query := fmt.Sprintf(
		"SELECT%s%s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		prefixColumns("a"), from, column, direction, len(args)-1, len(args),
	)

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	apps, err := r.scanApplications(rows)
	if err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

// Stats returns per-status counts and the total won amount.
func (r *ApplicationRepository) Stats(ctx context.Context, ownerID string) (*application.Stats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'in_progress'),
			COUNT(*) FILTER (WHERE status = 'submitted'),
			COUNT(*) FILTER (WHERE status = 'won'),
			COUNT(*) FILTER (WHERE status = 'rejected'),
			COUNT(*) FILTER (WHERE status = 'withdrawn'),
			COALESCE(SUM((award_details->>'amount')::numeric) FILTER (WHERE status = 'won'), 0)
		FROM applications
		WHERE owner_id = $1
	`

	stats := &application.Stats{}
	err := r.conn.QueryRow(ctx, query, ownerID).Scan(
		&stats.Total,
		&stats.InProgress,
		&stats.Submitted,
		&stats.Won,
		&stats.Rejected,
		&stats.Withdrawn,
		&stats.WonAmount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load application stats: %w", err)
	}
	return stats, nil
}

// FindUrgent returns in-progress applications whose scholarship deadline
// falls within the window starting now.
func (r *ApplicationRepository) FindUrgent(ctx context.Context, ownerID string, within time.Duration) ([]*application.UrgentApplication, error) {
	now := time.Now().UTC()
	return r.queryWithDeadline(ctx, `
		SELECT`+prefixColumns("a")+`, s.name, s.deadline
		FROM applications a
		JOIN scholarships s ON s.id = a.scholarship_id
		WHERE a.owner_id = $1
		  AND a.status = 'in_progress'
		  AND s.deadline >= $2 AND s.deadline <= $3
		ORDER BY s.deadline ASC
	`, ownerID, now, now.Add(within))
}

// FindForCalendar returns applications whose scholarship deadline falls
// inside [from, to].
func (r *ApplicationRepository) FindForCalendar(ctx context.Context, ownerID string, from, to time.Time) ([]*application.UrgentApplication, error) {
	return r.queryWithDeadline(ctx, `
		SELECT`+prefixColumns("a")+`, s.name, s.deadline
		FROM applications a
		JOIN scholarships s ON s.id = a.scholarship_id
		WHERE a.owner_id = $1
		  AND s.deadline >= $2 AND s.deadline <= $3
		ORDER BY s.deadline ASC
	`, ownerID, from, to)
}

func (r *ApplicationRepository) queryWithDeadline(ctx context.Context, query string, args ...interface{}) ([]*application.UrgentApplication, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications by deadline: %w", err)
	}
	defer rows.Close()

	var result []*application.UrgentApplication
	for rows.Next() {
		entry := &application.UrgentApplication{}
		app, err := r.scanApplicationFrom(rows, &entry.ScholarshipName, &entry.Deadline)
		if err != nil {
			return nil, err
		}
		entry.Application = app
		result = append(result, entry)
	}
	return result, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Row scanning
// ─────────────────────────────────────────────────────────────────────────────

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// ownedCollections holds the JSONB payloads for one aggregate row.
type ownedCollections struct {
	requirements []byte
	essay        []byte
	documents    []byte
	awardDetails []byte
	nextSteps    []byte
	reminders    []byte
	timeline     []byte
}

func marshalOwnedCollections(app *application.Application) (*ownedCollections, error) {
	cols := &ownedCollections{}
	var err error

	if cols.requirements, err = json.Marshal(app.Requirements); err != nil {
		return nil, fmt.Errorf("failed to marshal requirements: %w", err)
	}
	if cols.essay, err = json.Marshal(app.Essay); err != nil {
		return nil, fmt.Errorf("failed to marshal essay: %w", err)
	}
	if cols.documents, err = json.Marshal(app.Documents); err != nil {
		return nil, fmt.Errorf("failed to marshal documents: %w", err)
	}
	if app.AwardDetails != nil {
		if cols.awardDetails, err = json.Marshal(app.AwardDetails); err != nil {
			return nil, fmt.Errorf("failed to marshal award details: %w", err)
		}
	}
	if cols.nextSteps, err = json.Marshal(app.NextSteps); err != nil {
		return nil, fmt.Errorf("failed to marshal next steps: %w", err)
	}
	if cols.reminders, err = json.Marshal(app.Reminders); err != nil {
		return nil, fmt.Errorf("failed to marshal reminders: %w", err)
	}
	if cols.timeline, err = json.Marshal(app.Timeline); err != nil {
		return nil, fmt.Errorf("failed to marshal timeline: %w", err)
	}

	return cols, nil
}

// scanApplication scans a single-row query, mapping no-rows to the
// domain not-found error.
func (r *ApplicationRepository) scanApplication(row rowScanner) (*application.Application, error) {
	app, err := r.scanApplicationFrom(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrApplicationNotFound
		}
		return nil, err
	}
	return app, nil
}

// scanApplicationFrom scans the application columns plus any extra
// trailing destinations (used by the deadline queries).
func (r *ApplicationRepository) scanApplicationFrom(row rowScanner, extra ...interface{}) (*application.Application, error) {
	app := &application.Application{}
	var (
		status       string
		requirements []byte
		essay        []byte
		documents    []byte
		awardDetails []byte
		nextSteps    []byte
		reminders    []byte
		timeline     []byte
	)

	dest := []interface{}{
		&app.ID,
		&app.OwnerID,
		&app.ScholarshipID,
		&status,
		&app.Progress,
		&requirements,
		&essay,
		&documents,
		&app.SubmittedAt,
		&app.ConfirmationNumber,
		&app.DecisionDate,
		&app.DecisionExpectedBy,
		&awardDetails,
		&app.WonAt,
		&app.RejectedAt,
		&app.Feedback,
		&nextSteps,
		&app.Notes,
		&reminders,
		&timeline,
		&app.LastActivityAt,
		&app.Version,
		&app.CreatedAt,
		&app.UpdatedAt,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		if IsNoRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan application: %w", err)
	}

	app.Status = application.Status(status)

	if err := json.Unmarshal(requirements, &app.Requirements); err != nil {
		return nil, fmt.Errorf("failed to unmarshal requirements: %w", err)
	}
	if err := json.Unmarshal(essay, &app.Essay); err != nil {
		return nil, fmt.Errorf("failed to unmarshal essay: %w", err)
	}
	if err := json.Unmarshal(documents, &app.Documents); err != nil {
		return nil, fmt.Errorf("failed to unmarshal documents: %w", err)
	}
	if len(awardDetails) > 0 {
		app.AwardDetails = &application.AwardDetails{}
		if err := json.Unmarshal(awardDetails, app.AwardDetails); err != nil {
			return nil, fmt.Errorf("failed to unmarshal award details: %w", err)
		}
	}
	if err := json.Unmarshal(nextSteps, &app.NextSteps); err != nil {
		return nil, fmt.Errorf("failed to unmarshal next steps: %w", err)
	}
	if err := json.Unmarshal(reminders, &app.Reminders); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reminders: %w", err)
	}
	if err := json.Unmarshal(timeline, &app.Timeline); err != nil {
		return nil, fmt.Errorf("failed to unmarshal timeline: %w", err)
	}

	return app, nil
}

func (r *ApplicationRepository) scanApplications(rows interface {
	rowScanner
	Next() bool
	Err() error
}) ([]*application.Application, error) {
	var apps []*application.Application
	for rows.Next() {
		app, err := r.scanApplicationFrom(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

// prefixColumns qualifies the shared column list with a table alias.
func prefixColumns(alias string) string {
	parts := strings.Split(applicationColumns, ",")
	for i, p := range parts {
		parts[i] = " " + alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ",")
}
