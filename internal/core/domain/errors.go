package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors
var (
	ErrNotFound       = errors.New("not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrDuplicateEntry = errors.New("already exists")
)

// Error codes returned to API clients
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeVersionConflict  = "VERSION_CONFLICT"
	CodeNotFound         = "DATA_NOT_FOUND"
	CodeConflict         = "DATA_CONFLICT"
	CodeAuthentication   = "AUTHENTICATION_ERROR"
	CodeAuthorization    = "AUTHORIZATION_ERROR"
	CodeInternal         = "INTERNAL_ERROR"
	CodeInvalidDateRange = "INVALID_DATE_RANGE"
	CodeRequired         = "REQUIRED"
	CodeInvalidChoice    = "INVALID_CHOICE"
	CodeOutOfRange       = "OUT_OF_RANGE"
	CodeInvalidFormat    = "INVALID_FORMAT"
	CodeDuplicate        = "DUPLICATE_VALUE"
	CodeInvalidReference = "INVALID_REFERENCE"
	CodeDuplicateActive  = "DUPLICATE_ACTIVE_RESOURCE"
)

// IsClientError reports whether err is a domain error whose message is safe to return to callers.
func IsClientError(err error) bool {
	var validationErr *ValidationError
	var conflictErr *VersionConflictError
	var allocationErr *AllocationConflictError
	switch {
	case errors.As(err, &validationErr), errors.As(err, &conflictErr), errors.As(err, &allocationErr):
		return true
	}
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrDuplicateEntry) || errors.Is(err, ErrUnauthorized)
}

// FieldError describes a single invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError collects every field problem found in one pass.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return e.Message + ": " + strings.Join(msgs, "; ")
}

// Add appends a field error.
func (e *ValidationError) Add(field, code, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Code: code, Message: message})
}

// HasErrors reports whether any field error was collected.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// OrNil returns the error only when it carries field errors.
func (e *ValidationError) OrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

// NewValidationError creates an empty validation error with a summary message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// VersionConflictError is returned when a caller writes with a stale version.
type VersionConflictError struct {
	ResourceID      string
	CurrentVersion  int
	ProvidedVersion int
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("version conflict on %s: current version is %d, provided %d",
		e.ResourceID, e.CurrentVersion, e.ProvidedVersion)
}

// AllocationConflict is one reason a date range cannot be booked.
type AllocationConflict struct {
	Type                string  `json:"type"`
	Message             string  `json:"message"`
	ExistingStart       *string `json:"existingStart,omitempty"`
	ExistingEnd         *string `json:"existingEnd,omitempty"`
	AllocationReference string  `json:"allocationReference,omitempty"`
}

// AllocationConflictError is returned when an allocation overlaps existing commitments.
type AllocationConflictError struct {
	Reason    string
	Conflicts []AllocationConflict
}

func (e *AllocationConflictError) Error() string {
	if e.Reason != "" {
		return "resource not available: " + e.Reason
	}
	return fmt.Sprintf("resource not available: %d conflict(s)", len(e.Conflicts))
}
