// Package apperr defines the service-wide failure taxonomy.
//
// Policy and ledger denials are expected outcomes and travel as typed errors
// with their specific code. Anything unanticipated is wrapped as Internal at
// the boundary so collaborator internals never leak to callers.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a failure for callers.
type Code string

const (
	// Unauthenticated means the credential was absent, malformed, expired,
	// or failed signature validation.
	Unauthenticated Code = "UNAUTHENTICATED"
	// Forbidden means an ownership mismatch or an out-of-scope path.
	Forbidden Code = "FORBIDDEN"
	// EmailUnverified means a verified-email policy failed.
	EmailUnverified Code = "EMAIL_UNVERIFIED"
	// QuotaExceeded means the ledger denied a metered operation.
	QuotaExceeded Code = "QUOTA_EXCEEDED"
	// NotFound means a referenced resource is absent.
	NotFound Code = "NOT_FOUND"
	// Unavailable means a transactional conflict or a collaborator timeout.
	Unavailable Code = "UNAVAILABLE"
	// Internal means an unexpected collaborator failure.
	Internal Code = "INTERNAL"
)

// Error is a coded error. Message is safe to show to callers; the wrapped
// cause is for logs only.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New creates a coded error without a cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a coded error around a cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// CodeOf extracts the code from err. Uncoded errors classify as Internal;
// context deadline or cancellation classifies as Unavailable, not Internal.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Unavailable
	}
	return Internal
}

// MessageOf returns the caller-safe message for err. Uncoded errors get a
// generic message so internals never leak.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal error"
}

// HTTPStatus maps a code to its transport status.
func HTTPStatus(code Code) int {
	switch code {
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden, EmailUnverified:
		return http.StatusForbidden
	case QuotaExceeded:
		return http.StatusTooManyRequests
	case NotFound:
		return http.StatusNotFound
	case Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
