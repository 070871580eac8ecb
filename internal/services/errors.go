package services

import (
	"errors"
	"fmt"
	"strings"
)

// Resolution and record-lookup sentinels. Handlers map these to stable
// machine-readable response codes.
var (
	// ErrTenantRequired means no tenant could be determined for the request.
	ErrTenantRequired = errors.New("no tenant could be determined for this request")

	// ErrTenantNotFound means a candidate tenant id was found but no matching
	// active tenant exists.
	ErrTenantNotFound = errors.New("tenant not found or inactive")

	// ErrMembershipForbidden means the authenticated caller has no active
	// membership in the resolved tenant.
	ErrMembershipForbidden = errors.New("user is not an active member of this tenant")

	// ErrRecordNotFound is the service-level not-found for tenant-owned rows.
	ErrRecordNotFound = errors.New("record not found")
)

// PermissionDeniedError carries the permissions the caller was missing.
type PermissionDeniedError struct {
	Required []string `json:"required"`
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied: requires %s", strings.Join(e.Required, ", "))
}

// IsPermissionDenied checks if an error is a PermissionDeniedError
func IsPermissionDenied(err error) (*PermissionDeniedError, bool) {
	var denied *PermissionDeniedError
	if errors.As(err, &denied) {
		return denied, true
	}
	return nil, false
}

// ValidationError represents a validation failure on service input
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) (*ValidationError, bool) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr, true
	}
	return nil, false
}

// ConflictError represents a resource conflict (e.g. already exists)
type ConflictError struct {
	Resource string `json:"resource"`
	Message  string `json:"message"`
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Resource, e.Message)
}

// NewConflictError creates a new conflict error
func NewConflictError(resource, message string) *ConflictError {
	return &ConflictError{Resource: resource, Message: message}
}

// IsConflictError checks if an error is a ConflictError
func IsConflictError(err error) (*ConflictError, bool) {
	var conflictErr *ConflictError
	if errors.As(err, &conflictErr) {
		return conflictErr, true
	}
	return nil, false
}
