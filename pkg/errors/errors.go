package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a console error carrying the stable code and HTTP status reported to clients.
// Backend failures are wrapped so the cause stays reachable through Unwrap.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New declares a sentinel error.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap keeps err as the cause behind a client-facing code and message.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Sentinels shared by the handlers. Callers Clone them to override the message.
var (
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "timetable resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "schedule conflict detected")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "snapshot not cached")
	ErrUpstream           = New("UPSTREAM_ERROR", http.StatusBadGateway, "timetable backend request failed")
	ErrUpstreamTimeout    = New("UPSTREAM_TIMEOUT", http.StatusGatewayTimeout, "timetable backend timed out")
	ErrIdentityUnresolved = New("IDENTITY_UNRESOLVED", http.StatusUnprocessableEntity, "viewer identity could not be resolved")
	ErrFeatureDisabled    = New("FEATURE_DISABLED", http.StatusServiceUnavailable, "feature disabled")
)

// FromError maps any error to an *Error, treating unknown errors as internal.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone copies a sentinel, replacing its message when one is given.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
