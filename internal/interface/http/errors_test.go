package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholar-hub/scholar-application-hub/internal/domain/application"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/shared"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", shared.ErrApplicationNotFound, http.StatusNotFound, "not_found"},
		{"duplicate", shared.ErrDuplicateApplication, http.StatusConflict, "already_exists"},
		{"locked", shared.ErrApplicationLocked, http.StatusConflict, "conflict"},
		{"illegal transition", shared.ErrIllegalTransition, http.StatusConflict, "illegal_transition"},
		{"concurrent modification", shared.ErrConcurrentModification, http.StatusConflict, "concurrent_modification"},
		{"not owner", shared.ErrNotOwner, http.StatusUnauthorized, "unauthorized"},
		{"invalid credentials", shared.ErrInvalidCredentials, http.StatusUnauthorized, "unauthorized"},
		{"validation", shared.ErrUnknownRequirement, http.StatusBadRequest, "validation_failed"},
		{"storage down", shared.ErrStorageUnavailable, http.StatusServiceUnavailable, "service_unavailable"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := classify(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestWriteDomainError_MissingRequirements(t *testing.T) {
	rec := httptest.NewRecorder()
	writeDomainError(rec, &application.MissingRequirementsError{
		Labels: []string{"Essay", "Official Transcript"},
	})

	assert.Equal(t, http.StatusConflict, rec.Code)

	var response JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.False(t, response.Success)
	require.NotNil(t, response.Error)
	assert.Equal(t, "missing_requirements", response.Error.Code)
	assert.Equal(t, "Essay; Official Transcript", response.Error.Details)
}

func TestWriteDomainError_UsesDomainMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	writeDomainError(rec, shared.ErrApplicationNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var response JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.NotNil(t, response.Error)
	assert.Equal(t, "application not found", response.Error.Message)
}
