package domain

import (
	"errors"
	"fmt"

	crerrors "github.com/cockroachdb/errors"
)

// ErrorKind classifies a domain error. Transports map kinds to their own status codes.
type ErrorKind string

const (
	KindInvalidArgument ErrorKind = "INVALID_ARGUMENT"
	KindForbidden       ErrorKind = "FORBIDDEN"
	KindNotFound        ErrorKind = "NOT_FOUND"
	KindConflict        ErrorKind = "CONFLICT"
	KindInternal        ErrorKind = "INTERNAL"
)

// Error is a tagged error carrying a kind and a short, stable message.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap exposes the underlying cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// NewValidationError reports malformed or out-of-range input.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindInvalidArgument, Message: message}
}

// NewForbiddenError reports an actor acting on a resource they do not control.
func NewForbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NewNotFoundError reports a missing entity. The identifier is kept in the
// cause for logs and left out of the message.
func NewNotFoundError(entity string, id any) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: entity + " not found",
		cause:   fmt.Errorf("%s %v", entity, id),
	}
}

// NewConflictError reports a request that contradicts current state.
func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NewInvalidStateError reports a disallowed state transition.
func NewInvalidStateError(from, to string) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf("cannot transition from %s to %s", from, to)}
}

// NewInternalError wraps an unexpected failure with a stack trace.
func NewInternalError(err error, message string) *Error {
	return &Error{Kind: KindInternal, Message: message, cause: crerrors.Wrap(err, message)}
}

// KindOf returns the kind of the first domain error in err's chain.
// Errors that carry no kind are internal.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == kind
}

// PublicMessage returns the message safe to show to a client.
func PublicMessage(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Kind != KindInternal {
		return de.Message
	}
	return "internal server error"
}
