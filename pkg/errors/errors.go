package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation indicates a validation error
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeConflict indicates a conflict with existing data
	ErrorTypeConflict ErrorType = "CONFLICT"

	// ErrorTypeUnauthorized indicates unauthorized access
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"

	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "INTERNAL"

	// ErrorTypeExternal indicates an error from external service
	ErrorTypeExternal ErrorType = "EXTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// NewExternalError creates a new external service error
func NewExternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeExternal,
		Message: message,
		Err:     err,
	}
}

// ValidationError reports malformed input. It always names the offending
// field so clients can surface the problem next to the right form control.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrorTypeValidation, e.Field, e.Message)
}

// NewValidationError creates a new validation error for a field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IllegalTransitionError reports a booking status change that the state
// machine does not allow. When AttemptedTo equals From the caller retried an
// already-applied transition and may treat this as "no change".
type IllegalTransitionError struct {
	BookingID   string
	From        string
	AttemptedTo string
}

// Error implements the error interface
func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("%s: booking %s cannot move from %s to %s",
		ErrorTypeConflict, e.BookingID, e.From, e.AttemptedTo)
}

// NewIllegalTransitionError creates a new illegal transition error
func NewIllegalTransitionError(bookingID, from, attemptedTo string) *IllegalTransitionError {
	return &IllegalTransitionError{
		BookingID:   bookingID,
		From:        from,
		AttemptedTo: attemptedTo,
	}
}

// UnauthorizedRoleError reports a caller whose role is unknown or whose
// identity is not permitted to see a record or perform a transition. The
// message never mentions out-of-scope record contents.
type UnauthorizedRoleError struct {
	Role    string
	Message string
}

// Error implements the error interface
func (e *UnauthorizedRoleError) Error() string {
	return fmt.Sprintf("%s: role %q: %s", ErrorTypeUnauthorized, e.Role, e.Message)
}

// NewUnauthorizedRoleError creates a new unauthorized role error
func NewUnauthorizedRoleError(role, message string) *UnauthorizedRoleError {
	return &UnauthorizedRoleError{
		Role:    role,
		Message: message,
	}
}

// StorageError reports a persistence collaborator failure. It is eligible
// for caller-side retry; the domain layer never retries internally so that
// transitions keep at-most-once semantics.
type StorageError struct {
	Op  string
	Err error
}

// Error implements the error interface
func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrorTypeInternal, e.Op, e.Err)
}

// Unwrap implements the unwrap interface
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the caller may retry the failed operation
func (e *StorageError) Retryable() bool {
	return true
}

// NewStorageError creates a new storage error
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{
		Op:  op,
		Err: err,
	}
}

// IsNotFound reports whether err is a not-found AppError
func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ErrorTypeNotFound
}

// IsConflict reports whether err is a conflict AppError
func IsConflict(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ErrorTypeConflict
}
