// Package apperrors classifies failures so the HTTP boundary can translate
// them without inspecting storage or crypto errors.
package apperrors

import (
	"github.com/pkg/errors"
)

// Kind is the category of an application error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuthentication
	KindTokenExpired
	KindNotFound
)

// String returns the stable code exposed to clients.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindConflict:
		return "CONFLICT"
	case KindAuthentication:
		return "AUTHENTICATION_FAILED"
	case KindTokenExpired:
		return "TOKEN_EXPIRED"
	case KindNotFound:
		return "NOT_FOUND"
	default:
		return "INTERNAL_ERROR"
	}
}

// Error is a classified error. Message is safe to show to clients; Err, when
// set, is the underlying cause and is only logged.
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

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind and message, so predefined
// values work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// WithCause returns a copy of e that wraps err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Err: err}
}

func Validation(msg string) *Error     { return &Error{Kind: KindValidation, Message: msg} }
func Conflict(msg string) *Error       { return &Error{Kind: KindConflict, Message: msg} }
func Authentication(msg string) *Error { return &Error{Kind: KindAuthentication, Message: msg} }
func NotFound(msg string) *Error       { return &Error{Kind: KindNotFound, Message: msg} }

// Internal wraps an unexpected failure. The cause never reaches clients.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "An internal error occurred.", Err: err}
}

var (
	ErrUsernameTaken      = Conflict("Username already taken")
	ErrInvalidCredentials = Authentication("Invalid credentials")
	ErrMissingToken       = Authentication("Token is missing")
	ErrInvalidToken       = Authentication("Token is invalid")
	ErrTokenExpired       = &Error{Kind: KindTokenExpired, Message: "Token has expired. Please log in again."}
	ErrTaskNotFound       = NotFound("Task not found")
	ErrUserNotFound       = NotFound("User not found")
)

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal if there is none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// From returns the *Error in err's chain, wrapping unclassified errors as
// Internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
