package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/scholar-hub/scholar-application-hub/internal/domain/application"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/shared"
)

// writeDomainError maps a domain error to an HTTP status and envelope.
func writeDomainError(w http.ResponseWriter, err error) {
	var missing *application.MissingRequirementsError
	if errors.As(err, &missing) {
		writeJSONErrorWithDetails(w, http.StatusConflict, "missing_requirements",
			"application has unmet requirements",
			strings.Join(missing.Labels, "; "))
		return
	}

	status, code := classify(err)

	message := err.Error()
	var de *shared.DomainError
	if errors.As(err, &de) {
		message = de.Message
	}

	writeJSONError(w, status, code, message)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, shared.ErrConcurrentModification):
		return http.StatusConflict, "concurrent_modification"
	case shared.IsNotFound(err):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, shared.ErrAlreadyExists):
		return http.StatusConflict, "already_exists"
	case errors.Is(err, shared.ErrStateTransition):
		return http.StatusConflict, "illegal_transition"
	case errors.Is(err, shared.ErrLocked), errors.Is(err, shared.ErrConflict):
		return http.StatusConflict, "conflict"
	case shared.IsUnauthorized(err):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, shared.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case shared.IsValidation(err),
		errors.Is(err, shared.ErrInvalidInput),
		errors.Is(err, shared.ErrInvalidID),
		errors.Is(err, shared.ErrEmptyValue),
		errors.Is(err, shared.ErrValueOutOfRange),
		errors.Is(err, shared.ErrInvalidFormat),
		errors.Is(err, shared.ErrInvalidState):
		return http.StatusBadRequest, "validation_failed"
	case errors.Is(err, shared.ErrServiceUnavailable), errors.Is(err, shared.ErrTimeout):
		return http.StatusServiceUnavailable, "service_unavailable"
	case errors.Is(err, shared.ErrExternalService):
		return http.StatusBadGateway, "external_service_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeJSONErrorWithDetails writes an error JSON response with details.
func writeJSONErrorWithDetails(w http.ResponseWriter, status int, code, message, details string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	response := JSONResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Meta: &ResponseMeta{
			Timestamp: time.Now().UTC(),
		},
	}

	_ = json.NewEncoder(w).Encode(response)
}
