package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/scholar-hub/scholar-application-hub/internal/application/command"
	"github.com/scholar-hub/scholar-application-hub/internal/application/query"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/application"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/scholarship"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleHealth reports overall service health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if s.deps.Database != nil {
		if err := s.deps.Database.Ping(ctx); err != nil {
			checks["database"] = "down: " + err.Error()
			healthy = false
		} else {
			checks["database"] = "up"
		}
	}
	if s.deps.Cache != nil {
		if err := s.deps.Cache.Ping(ctx); err != nil {
			checks["cache"] = "down: " + err.Error()
			healthy = false
		} else {
			checks["cache"] = "up"
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]interface{}{
		"healthy": healthy,
		"checks":  checks,
	})
}

// handleReady reports readiness to serve traffic.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.IsRunning() {
		writeJSONError(w, http.StatusServiceUnavailable, "not_ready", "server is not running")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

// handleLive is the liveness probe.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"alive": true})
}

// ══════════════════════════════════════════════════════════════════════════════
// SCHOLARSHIP HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type createScholarshipRequest struct {
	Name              string               `json:"name"`
	Provider          string               `json:"provider"`
	Amount            float64              `json:"amount"`
	Deadline          time.Time            `json:"deadline"`
	AwardNotification time.Time            `json:"award_notification"`
	Template          scholarship.Template `json:"template"`
}

func (s *Server) handleCreateScholarship(w http.ResponseWriter, r *http.Request) {
	var req createScholarshipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	result, err := s.deps.CreateScholarship.Handle(r.Context(), command.CreateScholarshipCommand{
		Name:              req.Name,
		Provider:          req.Provider,
		Amount:            req.Amount,
		Deadline:          req.Deadline,
		AwardNotification: req.AwardNotification,
		Template:          req.Template,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toScholarshipDTO(result.Scholarship, 0))
}

func (s *Server) handleListScholarships(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.ListScholarships.Handle(r.Context(), query.ListScholarshipsQuery{
		OnlyUpcoming: getQueryParamBool(r, "upcoming"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]scholarshipDTO, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, toScholarshipDTO(item.Scholarship, item.DaysUntilDeadline))
	}
	writeJSON(w, http.StatusOK, items)
}

// ══════════════════════════════════════════════════════════════════════════════
// APPLICATION LIFECYCLE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type startApplicationRequest struct {
	ScholarshipID string `json:"scholarship_id"`
}

func (s *Server) handleStartApplication(w http.ResponseWriter, r *http.Request) {
	var req startApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	result, err := s.deps.StartApplication.Handle(r.Context(), command.StartApplicationCommand{
		OwnerID:       currentUserID(r.Context()),
		ScholarshipID: req.ScholarshipID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toApplicationDTO(result.Application, result.ScholarshipName))
}

func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetApplication.Handle(r.Context(), query.GetApplicationQuery{
		ApplicationID: r.PathValue("id"),
		OwnerID:       currentUserID(r.Context()),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	name := ""
	if result.Scholarship != nil {
		name = result.Scholarship.Name
	}
	writeJSON(w, http.StatusOK, toApplicationDTO(result.Application, name))
}

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	q := query.ListApplicationsQuery{
		OwnerID:  currentUserID(r.Context()),
		Status:   application.Status(getQueryParam(r, "status", "")),
		Search:   getQueryParam(r, "search", ""),
		Page:     getQueryParamInt(r, "page", 1),
		Limit:    getQueryParamInt(r, "limit", 20),
		SortBy:   getQueryParam(r, "sort_by", ""),
		SortDesc: getQueryParamBool(r, "desc"),
	}

	result, err := s.deps.ListApplications.Handle(r.Context(), q)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]applicationListItemDTO, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, toApplicationListItemDTO(item))
	}

	writeJSONWithMeta(w, http.StatusOK, items, &ResponseMeta{
		TotalCount: result.Total,
		Page:       result.Page,
		PageSize:   result.Limit,
	})
}

type updateDetailsRequest struct {
	Notes              *string                `json:"notes"`
	Reminders          *application.Reminders `json:"reminders"`
	DecisionExpectedBy *time.Time             `json:"decision_expected_by"`
}

func (s *Server) handleUpdateDetails(w http.ResponseWriter, r *http.Request) {
	var req updateDetailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	result, err := s.deps.Details.HandleUpdate(r.Context(), command.UpdateDetailsCommand{
		ApplicationID:      r.PathValue("id"),
		OwnerID:            currentUserID(r.Context()),
		Notes:              req.Notes,
		Reminders:          req.Reminders,
		DecisionExpectedBy: req.DecisionExpectedBy,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toApplicationDTO(result.Application, ""))
}

type duplicateApplicationRequest struct {
	NewScholarshipID string `json:"new_scholarship_id"`
}

func (s *Server) handleDuplicateApplication(w http.ResponseWriter, r *http.Request) {
	var req duplicateApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	result, err := s.deps.Duplicate.Handle(r.Context(), command.DuplicateApplicationCommand{
		ApplicationID:    r.PathValue("id"),
		OwnerID:          currentUserID(r.Context()),
		NewScholarshipID: req.NewScholarshipID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toApplicationDTO(result.Application, result.ScholarshipName))
}

func (s *Server) handleDeleteApplication(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.DeleteApplication.Handle(r.Context(), command.DeleteApplicationCommand{
		ApplicationID: r.PathValue("id"),
		OwnerID:       currentUserID(r.Context()),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"deleted":           true,
		"documents_cleaned": result.DocumentsScheduled,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// CHECKLIST HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type addRequirementRequest struct {
	Label   string     `json:"label"`
	Details string     `json:"details"`
	DueDate *time.Time `json:"due_date"`
}

func (s *Server) handleAddRequirement(w http.ResponseWriter, r *http.Request) {
	var req addRequirementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	result, err := s.deps.Checklist.HandleAdd(r.Context(), command.AddRequirementCommand{
		ApplicationID: r.PathValue("id"),
		OwnerID:       currentUserID(r.Context()),
		Label:         req.Label,
		Details:       req.Details,
		DueDate:       req.DueDate,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toApplicationDTO(result.Application, ""))
}

type updateRequirementRequest struct {
	Status  application.RequirementStatus `json:"status"`
	Details *string                       `json:"details"`
}

func (s *Server) handleUpdateRequirement(w http.ResponseWriter, r *http.Request) {
	var req updateRequirementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	result, err := s.deps.Checklist.HandleUpdate(r.Context(), command.UpdateRequirementCommand{
		ApplicationID: r.PathValue("id"),
		OwnerID:       currentUserID(r.Context()),
		RequirementID: r.PathValue("reqID"),
		Status:        req.Status,
		Details:       req.Details,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toApplicationDTO(result.Application, ""))
}

func (s *Server) handleRemoveRequirement(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.Checklist.HandleRemove(r.Context(), command.RemoveRequirementCommand{
		ApplicationID: r.PathValue("id"),
		OwnerID:       currentUserID(r.Context()),
		RequirementID: r.PathValue("reqID"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toApplicationDTO(result.Application, ""))
}

// ══════════════════════════════════════════════════════════════════════════════
// ESSAY AND DOCUMENT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type saveEssayDraftRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleSaveEssayDraft(w http.ResponseWriter, r *http.Request) {
	var req saveEssayDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	result, err := s.deps.SaveEssayDraft.Handle(r.Context(), command.SaveEssayDraftCommand{
		ApplicationID: r.PathValue("id"),
		OwnerID:       currentUserID(r.Context()),
		Content:       req.Content,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"draft":        result.Draft,
		"within_limit": result.WithinLimit,
		"progress":     result.Application.Progress,
	})
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_upload", "expected a multipart form with a file field")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_upload", "file field is required")
		return
	}
	defer file.Close()

	result, err := s.deps.Documents.HandleUpload(r.Context(), command.UploadDocumentCommand{
		ApplicationID: r.PathValue("id"),
		OwnerID:       currentUserID(r.Context()),
		Name:          header.Filename,
		Type:          r.FormValue("type"),
		ContentType:   header.Header.Get("Content-Type"),
		Data:          file,
		Size:          header.Size,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result.Document)
}

func (s *Server) handleRemoveDocument(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.Documents.HandleRemove(r.Context(), command.RemoveDocumentCommand{
		ApplicationID: r.PathValue("id"),
		OwnerID:       currentUserID(r.Context()),
		DocumentID:    r.PathValue("docID"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toApplicationDTO(result.Application, ""))
}

// ══════════════════════════════════════════════════════════════════════════════
// TRANSITION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type submitApplicationRequest struct {
	ConfirmationNumber string `json:"confirmation_number"`
}

func (s *Server) handleSubmitApplication(w http.ResponseWriter, r *http.Request) {
	var req submitApplicationRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
			return
		}
	}

	result, err := s.deps.Submit.Handle(r.Context(), command.SubmitApplicationCommand{
		ApplicationID:      r.PathValue("id"),
		OwnerID:            currentUserID(r.Context()),
		ConfirmationNumber: req.ConfirmationNumber,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toApplicationDTO(result.Application, ""))
}

type recordWinRequest struct {
	Award *application.AwardDetails `json:"award"`
}

func (s *Server) handleRecordWin(w http.ResponseWriter, r *http.Request) {
	var req recordWinRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
			return
		}
	}

	result, err := s.deps.Decisions.HandleWin(r.Context(), command.RecordWinCommand{
		ApplicationID: r.PathValue("id"),
		OwnerID:       currentUserID(r.Context()),
		Award:         req.Award,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toApplicationDTO(result.Application, ""))
}

type recordRejectionRequest struct {
	Feedback string `json:"feedback"`
}

func (s *Server) handleRecordRejection(w http.ResponseWriter, r *http.Request) {
	var req recordRejectionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
			return
		}
	}

	result, err := s.deps.Decisions.HandleRejection(r.Context(), command.RecordRejectionCommand{
		ApplicationID: r.PathValue("id"),
		OwnerID:       currentUserID(r.Context()),
		Feedback:      req.Feedback,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toApplicationDTO(result.Application, ""))
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.Decisions.HandleWithdraw(r.Context(), command.WithdrawCommand{
		ApplicationID: r.PathValue("id"),
		OwnerID:       currentUserID(r.Context()),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toApplicationDTO(result.Application, ""))
}

// ══════════════════════════════════════════════════════════════════════════════
// REMINDERS AND NEXT STEPS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleUpdateReminders(w http.ResponseWriter, r *http.Request) {
	var reminders application.Reminders
	if err := json.NewDecoder(r.Body).Decode(&reminders); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	result, err := s.deps.Details.HandleUpdateReminders(r.Context(), command.UpdateRemindersCommand{
		ApplicationID: r.PathValue("id"),
		OwnerID:       currentUserID(r.Context()),
		Reminders:     reminders,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result.Application.Reminders)
}

type addNextStepRequest struct {
	Step    string     `json:"step"`
	DueDate *time.Time `json:"due_date"`
}

func (s *Server) handleAddNextStep(w http.ResponseWriter, r *http.Request) {
	var req addNextStepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	result, err := s.deps.Details.HandleAddNextStep(r.Context(), command.AddNextStepCommand{
		ApplicationID: r.PathValue("id"),
		OwnerID:       currentUserID(r.Context()),
		Step:          req.Step,
		DueDate:       req.DueDate,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result.Application.NextSteps)
}

func (s *Server) handleCompleteNextStep(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_index", "next step index must be an integer")
		return
	}

	result, err := s.deps.Details.HandleCompleteNextStep(r.Context(), command.CompleteNextStepCommand{
		ApplicationID: r.PathValue("id"),
		OwnerID:       currentUserID(r.Context()),
		Index:         index,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result.Application.NextSteps)
}

// ══════════════════════════════════════════════════════════════════════════════
// DASHBOARD HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetStats.Handle(r.Context(), query.GetStatsQuery{
		OwnerID: currentUserID(r.Context()),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result.Stats)
}

func (s *Server) handleGetUrgent(w http.ResponseWriter, r *http.Request) {
	q := query.GetUrgentQuery{OwnerID: currentUserID(r.Context())}
	if days := getQueryParamInt(r, "days", 0); days > 0 {
		q.Within = time.Duration(days) * 24 * time.Hour
	}

	result, err := s.deps.GetUrgent.Handle(r.Context(), q)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]urgentItemDTO, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, urgentItemDTO{
			ID:              item.Application.ID,
			ScholarshipName: item.ScholarshipName,
			Status:          item.Application.Status,
			Progress:        item.Application.Progress,
			Deadline:        item.Deadline,
			DaysLeft:        item.DaysLeft,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetCalendar(w http.ResponseWriter, r *http.Request) {
	from, err := time.Parse("2006-01-02", getQueryParam(r, "from", ""))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_range", "from must be a YYYY-MM-DD date")
		return
	}
	to, err := time.Parse("2006-01-02", getQueryParam(r, "to", ""))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_range", "to must be a YYYY-MM-DD date")
		return
	}

	result, err := s.deps.GetCalendar.Handle(r.Context(), query.GetCalendarQuery{
		OwnerID: currentUserID(r.Context()),
		From:    from,
		To:      to,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"from":    result.From,
		"to":      result.To,
		"entries": result.Entries,
	})
}
