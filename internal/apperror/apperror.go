// Package apperror defines the typed errors shared by every layer.
//
// Each AppError wraps one sentinel so callers can branch with errors.Is
// while still carrying a human-readable message for the API response:
//
//	repository returns: apperror.AlreadyExists("favorite", "u1/r1")
//	service wraps:      fmt.Errorf("adding favorite: %w", err)
//	handler checks:     errors.Is(err, apperror.ErrAlreadyExists) → 409
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("Validation Error")
	ErrConflict      = errors.New("conflict")
	ErrForbidden     = errors.New("forbidden")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrAlreadyExists = errors.New("already exists")
	ErrSelfReference = errors.New("self reference")
	ErrIntegrity     = errors.New("integrity violation")
)

type AppError struct {
	Err     error  // sentinel
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized is returned when an operation needs an identified user
// and the caller is anonymous or presented bad credentials.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// AlreadyExists reports a toggle-add on a relation pair that is already stored.
func AlreadyExists(relation, key string) *AppError {
	return &AppError{
		Err:     ErrAlreadyExists,
		Message: fmt.Sprintf("%s already exists for %s", relation, key),
	}
}

// SelfReference reports a relation whose two sides are the same entity,
// e.g. a user subscribing to themselves.
func SelfReference(field, message string) *AppError {
	return &AppError{
		Err:     ErrSelfReference,
		Message: message,
		Field:   field,
	}
}

// IntegrityViolation marks stored data that references rows which no longer
// exist. It is never the caller's fault and surfaces as an internal error.
func IntegrityViolation(format string, args ...any) *AppError {
	return &AppError{
		Err:     ErrIntegrity,
		Message: fmt.Sprintf(format, args...),
	}
}
