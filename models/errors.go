package models

import "errors"

// ErrorKind is the stable error taxonomy surfaced to clients. Handlers map
// each kind to an HTTP status; services never pick status codes themselves.
type ErrorKind string

const (
	ErrValidation       ErrorKind = "ValidationError"
	ErrDuplicateName    ErrorKind = "DuplicateName"
	ErrAlreadyMember    ErrorKind = "AlreadyMember"
	ErrNotFound         ErrorKind = "NotFound"
	ErrForbidden        ErrorKind = "Forbidden"
	ErrInvalidOperation ErrorKind = "InvalidOperation"
	ErrInternal         ErrorKind = "InternalError"
)

type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// InternalError wraps an unexpected failure. The cause is kept for logging
// but the message is what clients see.
func InternalError(message string, err error) *AppError {
	return &AppError{Kind: ErrInternal, Message: message, Err: err}
}

// AsAppError extracts an *AppError from err, falling back to a generic
// internal error so handlers always have a kind to map.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return InternalError("Server error", err)
}
