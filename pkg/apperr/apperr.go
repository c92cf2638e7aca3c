package apperr

import (
	"errors"
	"net/http"
)

// Error is a typed operation failure carrying the HTTP status it should map to.
// Services return these instead of raising free-form errors so that handlers can
// translate them mechanically; anything else collapses to Internal at the boundary.
type Error struct {
	Status  int      `json:"status"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func (e *Error) Error() string { return e.Message }

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// ValidationFailed carries the full ordered violation list so a client can fix
// every problem from one response.
func ValidationFailed(details []string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: "validation failed", Details: details}
}

func Conflict(message string) *Error {
	return New(http.StatusConflict, message)
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

func RateLimited(message string) *Error {
	return New(http.StatusTooManyRequests, message)
}

func Internal() *Error {
	return New(http.StatusInternalServerError, "internal server error")
}

// From returns err as an *Error, or a generic Internal for anything untyped.
// Raw driver errors never reach the caller; full detail belongs in the log.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal()
}
