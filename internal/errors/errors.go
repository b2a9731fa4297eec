package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError reports malformed or out-of-policy input. It is always
// surfaced to the caller synchronously and never retried.
type ValidationError struct {
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(rule, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Rule: rule, Message: fmt.Sprintf(format, args...)}
}

// ConflictError reports an admission denied because of an overlapping
// booking or a concurrent race lost at the atomic-insert layer. Callers
// should treat it as actionable by the user, not as a transient fault.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports that a referenced slot, facility or booking does
// not exist in the store.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

// HTTPStatus maps an error to the status code handlers should respond with.
func HTTPStatus(err error) int {
	switch {
	case IsValidation(err):
		return http.StatusBadRequest
	case IsConflict(err):
		return http.StatusConflict
	case IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
