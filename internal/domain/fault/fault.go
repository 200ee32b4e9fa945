// Package fault defines the error taxonomy shared by the domain packages.
//
// Domain operations return *Error values carrying a Kind and a machine-readable
// code. The HTTP layer maps the Kind to a status code in one place, so
// components never reason about transport concerns.
package fault

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindForbidden  Kind = "forbidden"
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindInvariant  Kind = "invariant"
	KindInternal   Kind = "internal"
)

// Error is a classified domain failure.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error with the same Kind and Code, so sentinel values
// declared with New can be used with errors.Is.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind && e.Code == other.Code
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Wrap(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

func NotFound(code, message string) *Error {
	return New(KindNotFound, code, message)
}

func Forbidden(code, message string) *Error {
	return New(KindForbidden, code, message)
}

func Validation(code, message string) *Error {
	return New(KindValidation, code, message)
}

func Conflict(code, message string) *Error {
	return New(KindConflict, code, message)
}

func Invariant(code, message string) *Error {
	return New(KindInvariant, code, message)
}

// Internal wraps an infrastructure failure. The message is for logs only.
func Internal(code string, err error) *Error {
	return Wrap(KindInternal, code, "internal error", err)
}

// KindOf reports the Kind of err. Unclassified errors are KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindInternal
}

// CodeOf reports the machine code of err, or "internal_error" for
// unclassified errors.
func CodeOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) && fe.Code != "" {
		return fe.Code
	}
	return "internal_error"
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
