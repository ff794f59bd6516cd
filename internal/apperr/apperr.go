// Package apperr defines the error taxonomy shared by the services and the
// transport layers. Services return *Error values; the request boundary maps
// Kind to a status code.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindValidation
	KindConflict
	KindInvalidTransition
	KindExternalFailure
	KindUnauthorized
)

var kindNames = map[Kind]string{
	KindInternal:          "internal",
	KindNotFound:          "not_found",
	KindForbidden:         "forbidden",
	KindValidation:        "validation_error",
	KindConflict:          "conflict",
	KindInvalidTransition: "invalid_transition",
	KindExternalFailure:   "external_failure",
	KindUnauthorized:      "unauthorized",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "internal"
}

// Error carries a Kind and a message that is safe to show to the caller.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports a match when the target is an *Error of the same Kind with
// either an empty message or the same message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func NotFound(format string, args ...any) *Error { return New(KindNotFound, format, args...) }

func Forbidden(format string, args ...any) *Error { return New(KindForbidden, format, args...) }

func Validation(format string, args ...any) *Error { return New(KindValidation, format, args...) }

func Conflict(format string, args ...any) *Error { return New(KindConflict, format, args...) }

func InvalidTransition(format string, args ...any) *Error {
	return New(KindInvalidTransition, format, args...)
}

func ExternalFailure(err error, format string, args ...any) *Error {
	return Wrap(KindExternalFailure, err, format, args...)
}

func Unauthorized(format string, args ...any) *Error { return New(KindUnauthorized, format, args...) }

func Internal(err error, format string, args ...any) *Error {
	return Wrap(KindInternal, err, format, args...)
}

// Sentinels for errors.Is checks against a kind only.
var (
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrForbidden         = &Error{Kind: KindForbidden}
	ErrValidation        = &Error{Kind: KindValidation}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
	ErrExternalFailure   = &Error{Kind: KindExternalFailure}
	ErrUnauthorized      = &Error{Kind: KindUnauthorized}
)

// KindOf returns the Kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-facing message of err.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}
