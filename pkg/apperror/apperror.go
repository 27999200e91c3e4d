package apperror

import (
	"errors"
	"net/http"
)

// Kind is a stable error classification shared by all usecases
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindForbidden         Kind = "forbidden"
	KindInvalidTransition Kind = "invalid_transition"
	KindConflict          Kind = "conflict"
	KindValidation        Kind = "validation"
	KindUnauthorized      Kind = "unauthorized"
	KindInternal          Kind = "internal"
)

// Error is a classified domain error. Values are compared by identity, so
// sentinels declared with New work with errors.Is.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func NotFound(message string) *Error          { return New(KindNotFound, message) }
func Forbidden(message string) *Error         { return New(KindForbidden, message) }
func InvalidTransition(message string) *Error { return New(KindInvalidTransition, message) }
func Conflict(message string) *Error          { return New(KindConflict, message) }
func Validation(message string) *Error        { return New(KindValidation, message) }
func Unauthorized(message string) *Error      { return New(KindUnauthorized, message) }

// KindOf returns the kind of the first classified error in err's chain,
// or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err is classified as kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a kind to the response status code
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindValidation, KindInvalidTransition, KindConflict:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
