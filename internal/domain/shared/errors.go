// Package shared contains common domain types and errors that are used
// across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState    = errors.New("invalid state")
	ErrStateTransition = errors.New("invalid state transition")
	ErrConflict        = errors.New("conflict")
	ErrLocked          = errors.New("entity is locked for this mutation")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Concurrency errors
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "application", "scholarship", "storage"
	Op      string // Operation that failed, e.g., "Submit", "Create"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Application domain errors
var (
	ErrApplicationNotFound  = NewDomainError("application", "Find", ErrNotFound, "application not found")
	ErrDuplicateApplication = NewDomainError("application", "Create", ErrAlreadyExists, "an application already exists for this scholarship")
	ErrNotOwner             = NewDomainError("application", "Authorize", ErrUnauthorized, "application belongs to another user")
	ErrApplicationLocked    = NewDomainError("application", "Update", ErrLocked, "application can no longer be edited in its current status")
	ErrIllegalTransition    = NewDomainError("application", "Transition", ErrStateTransition, "illegal application status transition")
	ErrUnknownRequirement   = NewDomainError("application", "UpdateRequirement", ErrValidation, "unknown requirement")
	ErrBadRequirementStatus = NewDomainError("application", "UpdateRequirement", ErrValidation, "unrecognized requirement status")
	ErrNoSuchNextStep       = NewDomainError("application", "CompleteNextStep", ErrValidation, "next step index out of range")
	ErrDocumentNotFound     = NewDomainError("application", "RemoveDocument", ErrNotFound, "document not found")
)

// Scholarship domain errors
var (
	ErrScholarshipNotFound = NewDomainError("scholarship", "Find", ErrNotFound, "scholarship not found")
)

// User and session errors
var (
	ErrUserNotFound       = NewDomainError("user", "Find", ErrNotFound, "user not found")
	ErrDuplicateUser      = NewDomainError("user", "Create", ErrAlreadyExists, "an account with this email already exists")
	ErrSessionNotFound    = NewDomainError("user", "FindSession", ErrNotFound, "session not found")
	ErrInvalidCredentials = NewDomainError("user", "Authenticate", ErrUnauthorized, "invalid email or password")
)

// External storage errors
var (
	ErrStorageUnavailable = NewDomainError("storage", "Request", ErrServiceUnavailable, "file storage is unavailable")
	ErrStorageRejected    = NewDomainError("storage", "Upload", ErrExternalService, "file storage rejected the request")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict checks if the error belongs to the conflict family:
// duplicates, illegal state transitions, and locked-status mutations.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrStateTransition) ||
		errors.Is(err, ErrLocked)
}

// IsUnauthorized checks if the error is an ownership/authorization error.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout)
}
