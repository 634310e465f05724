// Package apperr defines the service-level error taxonomy and its mapping to
// HTTP responses. Handlers never inspect storage errors directly; services
// return one of these kinds and the boundary maps it.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a service error for the HTTP boundary.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindConflict
	KindAuthentication
	KindNotFound
	KindStorage
)

// Error is a classified service error. Cause is kept for server-side logging;
// Message is what the client may see.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Validation reports malformed or missing client input.
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Conflict reports a uniqueness violation.
func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

// Authentication reports bad credentials. The message deliberately does not
// distinguish unknown user from wrong password.
func Authentication(msg string) error {
	return &Error{Kind: KindAuthentication, Message: msg}
}

// NotFound reports a missing resource. Not-owned collapses into the same kind
// so existence of other users' rows is not leaked.
func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Storage wraps an underlying store failure. The client only ever sees the
// generic message.
func Storage(cause error) error {
	return &Error{Kind: KindStorage, Message: "Server error", Cause: cause}
}

// KindOf extracts the kind of err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// HTTPStatus maps an error kind to its response status. Authentication
// failures return 400, matching the existing API contract.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindConflict, KindAuthentication:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ClientMessage returns the message safe to serialize to the client.
func ClientMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == KindStorage || e.Kind == KindUnknown {
			return "Server error"
		}
		return e.Message
	}
	return "Server error"
}
