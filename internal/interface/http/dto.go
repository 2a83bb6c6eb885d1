package http

import (
	"time"

	"github.com/scholar-hub/scholar-application-hub/internal/application/query"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/application"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/scholarship"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE DTOs
// The sub-entities (requirements, essay, documents, timeline) carry
// their own JSON shape; only the aggregate root and catalog entries
// need explicit views.
// ══════════════════════════════════════════════════════════════════════════════

type applicationDTO struct {
	ID                 string                      `json:"id"`
	ScholarshipID      string                      `json:"scholarship_id"`
	ScholarshipName    string                      `json:"scholarship_name,omitempty"`
	Status             application.Status          `json:"status"`
	Progress           int                         `json:"progress"`
	Requirements       []application.Requirement   `json:"requirements"`
	Essay              application.Essay           `json:"essay"`
	Documents          []application.Document      `json:"documents"`
	SubmittedAt        *time.Time                  `json:"submitted_at,omitempty"`
	ConfirmationNumber string                      `json:"confirmation_number,omitempty"`
	DecisionDate       *time.Time                  `json:"decision_date,omitempty"`
	DecisionExpectedBy *time.Time                  `json:"decision_expected_by,omitempty"`
	AwardDetails       *application.AwardDetails   `json:"award_details,omitempty"`
	WonAt              *time.Time                  `json:"won_at,omitempty"`
	RejectedAt         *time.Time                  `json:"rejected_at,omitempty"`
	Feedback           string                      `json:"feedback,omitempty"`
	NextSteps          []application.NextStep      `json:"next_steps"`
	Notes              string                      `json:"notes,omitempty"`
	Reminders          application.Reminders       `json:"reminders"`
	Timeline           []application.TimelineEntry `json:"timeline"`
	LastActivityAt     time.Time                   `json:"last_activity_at"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
}

func toApplicationDTO(app *application.Application, scholarshipName string) applicationDTO {
	return applicationDTO{
		ID:                 app.ID,
		ScholarshipID:      app.ScholarshipID,
		ScholarshipName:    scholarshipName,
		Status:             app.Status,
		Progress:           app.Progress,
		Requirements:       app.Requirements,
		Essay:              app.Essay,
		Documents:          app.Documents,
		SubmittedAt:        app.SubmittedAt,
		ConfirmationNumber: app.ConfirmationNumber,
		DecisionDate:       app.DecisionDate,
		DecisionExpectedBy: app.DecisionExpectedBy,
		AwardDetails:       app.AwardDetails,
		WonAt:              app.WonAt,
		RejectedAt:         app.RejectedAt,
		Feedback:           app.Feedback,
		NextSteps:          app.NextSteps,
		Notes:              app.Notes,
		Reminders:          app.Reminders,
		Timeline:           app.Timeline,
		LastActivityAt:     app.LastActivityAt,
		CreatedAt:          app.CreatedAt,
		UpdatedAt:          app.UpdatedAt,
	}
}

type applicationListItemDTO struct {
	ID                string             `json:"id"`
	ScholarshipID     string             `json:"scholarship_id"`
	ScholarshipName   string             `json:"scholarship_name"`
	Status            application.Status `json:"status"`
	Progress          int                `json:"progress"`
	Deadline          *time.Time         `json:"deadline,omitempty"`
	DaysUntilDeadline int                `json:"days_until_deadline"`
	LastActivityAt    time.Time          `json:"last_activity_at"`
}

func toApplicationListItemDTO(item query.ApplicationListItem) applicationListItemDTO {
	dto := applicationListItemDTO{
		ID:                item.Application.ID,
		ScholarshipID:     item.Application.ScholarshipID,
		ScholarshipName:   item.ScholarshipName,
		Status:            item.Application.Status,
		Progress:          item.Application.Progress,
		DaysUntilDeadline: item.DaysUntilDeadline,
		LastActivityAt:    item.Application.LastActivityAt,
	}
	if !item.Deadline.IsZero() {
		d := item.Deadline
		dto.Deadline = &d
	}
	return dto
}

type scholarshipDTO struct {
	ID                string               `json:"id"`
	Name              string               `json:"name"`
	Provider          string               `json:"provider"`
	Amount            float64              `json:"amount"`
	Deadline          time.Time            `json:"deadline"`
	AwardNotification time.Time            `json:"award_notification"`
	Template          scholarship.Template `json:"template"`
	Applications      int                  `json:"applications"`
	DaysUntilDeadline int                  `json:"days_until_deadline"`
}

func toScholarshipDTO(s *scholarship.Scholarship, daysLeft int) scholarshipDTO {
	return scholarshipDTO{
		ID:                s.ID,
		Name:              s.Name,
		Provider:          s.Provider,
		Amount:            s.Amount,
		Deadline:          s.Deadline,
		AwardNotification: s.AwardNotification,
		Template:          s.Template,
		Applications:      s.Applications,
		DaysUntilDeadline: daysLeft,
	}
}

type urgentItemDTO struct {
	ID              string             `json:"id"`
	ScholarshipName string             `json:"scholarship_name"`
	Status          application.Status `json:"status"`
	Progress        int                `json:"progress"`
	Deadline        time.Time          `json:"deadline"`
	DaysLeft        int                `json:"days_left"`
}
