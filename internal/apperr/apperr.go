// Package apperr classifies errors surfaced to API callers.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

// Error is an operational error whose message is safe to return to the caller.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func Validation(message string) error   { return &Error{Kind: KindValidation, Message: message} }
func Unauthorized(message string) error { return &Error{Kind: KindUnauthorized, Message: message} }
func Forbidden(message string) error    { return &Error{Kind: KindForbidden, Message: message} }
func NotFound(message string) error     { return &Error{Kind: KindNotFound, Message: message} }
func Conflict(message string) error     { return &Error{Kind: KindConflict, Message: message} }

// Wrap attaches a cause to an operational error without changing what the caller sees.
func Wrap(kind Kind, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns KindInternal for anything that is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsOperational reports whether err carries a caller-safe message.
func IsOperational(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind != KindInternal
}

// Message returns the caller-safe message of an operational error.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}

// HTTPStatus maps a kind to its response code. Conflicts answer 400 like other
// rejected requests.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
