package common

import (
	"errors"
	"net/http"
)

// Error codes shared across the API surface.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeCapacity     = "CAPACITY_EXCEEDED"
	CodePrecondition = "PRECONDITION_FAILED"
	CodeNotFound     = "NOT_FOUND"
	CodePersistence  = "PERSISTENCE_ERROR"
	CodeInternal     = "INTERNAL"
)

// AppError represents an error with an attached code and HTTP status.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// ValidationError reports a field-level constraint violation. The record
// stays editable and the caller may retry with corrected input.
func ValidationError(message string, details any) *AppError {
	return &AppError{Code: CodeValidation, Message: message, HTTPStatus: http.StatusUnprocessableEntity, Details: details}
}

// CapacityError reports that a sample mutation would push the quantity sum
// past the batch's declared sample count.
func CapacityError(message string, details any) *AppError {
	return &AppError{Code: CodeCapacity, Message: message, HTTPStatus: http.StatusUnprocessableEntity, Details: details}
}

// PreconditionError reports that a calculation cannot leave the draft
// state, listing the offending batches in details.
func PreconditionError(message string, details any) *AppError {
	return &AppError{Code: CodePrecondition, Message: message, HTTPStatus: http.StatusConflict, Details: details}
}

// NotFoundError reports a lookup of an unknown calculation id.
func NotFoundError(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message, HTTPStatus: http.StatusNotFound}
}

// PersistenceError wraps a failed store operation. The record remains in
// draft state; there is no automatic retry.
func PersistenceError(message string, err error) *AppError {
	return &AppError{Code: CodePersistence, Message: message, HTTPStatus: http.StatusInternalServerError, Err: err}
}

// IsAppError checks whether the error is an AppError.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}

// CodeOf extracts the application error code, defaulting to INTERNAL.
func CodeOf(err error) string {
	var target *AppError
	if errors.As(err, &target) && target.Code != "" {
		return target.Code
	}
	return CodeInternal
}
