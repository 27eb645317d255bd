package types

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	ERR_NOT_FOUND    ErrorKind = "not_found"
	ERR_CONFLICT     ErrorKind = "conflict"
	ERR_VALIDATION   ErrorKind = "validation"
	ERR_UNAUTHORIZED ErrorKind = "unauthorized"
	ERR_UPSTREAM     ErrorKind = "upstream"
	ERR_INTERNAL     ErrorKind = "internal"
)

// AppError is the only error shape that leaves a service.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) Status() int {
	switch e.Kind {
	case ERR_NOT_FOUND:
		return http.StatusNotFound
	case ERR_CONFLICT:
		return http.StatusConflict
	case ERR_VALIDATION:
		return http.StatusBadRequest
	case ERR_UNAUTHORIZED:
		return http.StatusUnauthorized
	case ERR_UPSTREAM:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func NewNotFound(format string, args ...any) *AppError {
	return &AppError{Kind: ERR_NOT_FOUND, Message: fmt.Sprintf(format, args...)}
}

func NewConflict(format string, args ...any) *AppError {
	return &AppError{Kind: ERR_CONFLICT, Message: fmt.Sprintf(format, args...)}
}

func NewValidation(format string, args ...any) *AppError {
	return &AppError{Kind: ERR_VALIDATION, Message: fmt.Sprintf(format, args...)}
}

func NewUnauthorized(format string, args ...any) *AppError {
	return &AppError{Kind: ERR_UNAUTHORIZED, Message: fmt.Sprintf(format, args...)}
}

func NewUpstream(err error, format string, args ...any) *AppError {
	return &AppError{Kind: ERR_UPSTREAM, Message: fmt.Sprintf(format, args...), Err: err}
}

func NewInternal(err error, format string, args ...any) *AppError {
	return &AppError{Kind: ERR_INTERNAL, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf reports the kind of err, or ERR_INTERNAL when err is not an AppError.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ERR_INTERNAL
}

// StatusOf maps err to an HTTP status code.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status()
	}
	return http.StatusInternalServerError
}

// PublicMessage hides internal details from API responses.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Kind != ERR_INTERNAL {
		return appErr.Message
	}
	return "something went wrong"
}
