package authz

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of an authorization error
type ErrorType string

const (
	ErrorTypePermissionDenied    ErrorType = "permission_denied"
	ErrorTypePrerequisiteMissing ErrorType = "prerequisite_missing"
	ErrorTypeDependentRoleActive ErrorType = "dependent_role_active"
	ErrorTypeDataUnavailable     ErrorType = "data_unavailable"
	ErrorTypeUnknownRole         ErrorType = "unknown_role"
	ErrorTypeInternal            ErrorType = "internal"
)

// Error codes for authorization operations
const (
	ErrorCodePermissionDenied    = "AUTHZ_001"
	ErrorCodePrerequisiteMissing = "AUTHZ_002"
	ErrorCodeDependentRoleActive = "AUTHZ_003"
	ErrorCodeDataUnavailable     = "AUTHZ_004"
	ErrorCodeUnknownRole         = "AUTHZ_005"
	ErrorCodeInternal            = "AUTHZ_006"
)

// AuthzError represents an authorization error with structured context
type AuthzError struct {
	Type    ErrorType `json:"type"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	UserID  string    `json:"user_id,omitempty"`
	Role    string    `json:"role,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *AuthzError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (caused by: %v)", e.Code, e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Type, e.Message)
}

// Unwrap returns the underlying cause of the error
func (e *AuthzError) Unwrap() error {
	return e.Cause
}

// Is matches errors by type, so sentinel comparisons survive WithContext copies
func (e *AuthzError) Is(target error) bool {
	var authzErr *AuthzError
	if !errors.As(target, &authzErr) {
		return false
	}
	return e.Type == authzErr.Type
}

// WithContext returns a copy of the error annotated with the subject user
func (e *AuthzError) WithContext(userID string) *AuthzError {
	clone := *e
	clone.UserID = userID
	return &clone
}

// WithRole returns a copy of the error annotated with the role involved
func (e *AuthzError) WithRole(role string) *AuthzError {
	clone := *e
	clone.Role = role
	return &clone
}

// WithCause returns a copy of the error wrapping an underlying cause
func (e *AuthzError) WithCause(cause error) *AuthzError {
	clone := *e
	clone.Cause = cause
	return &clone
}

// NewAuthzError creates a new authorization error
func NewAuthzError(errorType ErrorType, code, message string) *AuthzError {
	return &AuthzError{
		Type:    errorType,
		Code:    code,
		Message: message,
	}
}

// Predefined authorization errors
var (
	ErrPermissionDenied = NewAuthzError(
		ErrorTypePermissionDenied,
		ErrorCodePermissionDenied,
		"Actor does not have the administrative right to perform this operation",
	)

	ErrPrerequisiteMissing = NewAuthzError(
		ErrorTypePrerequisiteMissing,
		ErrorCodePrerequisiteMissing,
		"Role requires a prerequisite role that the user does not actively hold",
	)

	ErrDependentRoleActive = NewAuthzError(
		ErrorTypeDependentRoleActive,
		ErrorCodeDependentRoleActive,
		"Role cannot be removed while a dependent role remains active",
	)

	ErrDataUnavailable = NewAuthzError(
		ErrorTypeDataUnavailable,
		ErrorCodeDataUnavailable,
		"Required data store is unreachable; refusing to produce a partial result",
	)

	ErrUnknownRole = NewAuthzError(
		ErrorTypeUnknownRole,
		ErrorCodeUnknownRole,
		"Role is not part of the deployment vocabulary",
	)
)

// IsAuthzError checks if an error is an authorization error
func IsAuthzError(err error) bool {
	var authzErr *AuthzError
	return errors.As(err, &authzErr)
}

// GetAuthzError extracts an authorization error from a generic error
func GetAuthzError(err error) (*AuthzError, bool) {
	var authzErr *AuthzError
	ok := errors.As(err, &authzErr)
	return authzErr, ok
}
