package api

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	KindUnauthorized  ErrorKind = "unauthorized"
	KindForbidden     ErrorKind = "forbidden"
	KindNotFound      ErrorKind = "not_found"
	KindRateLimited   ErrorKind = "rate_limited"
	KindServerError   ErrorKind = "server_error"
	KindNetworkError  ErrorKind = "network_error"
	KindRequestFailed ErrorKind = "request_failed"
)

// Error is the single structured failure the backend client produces.
// StatusCode is 0 when the request never reached the backend.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("backend request failed (%s): %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("backend request failed (%s, status %d): %s", e.Kind, e.StatusCode, e.Message)
}

// Retryable reports whether the failure is transient: the request never got a
// status, the backend errored, or we were rate limited.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindNetworkError, KindServerError, KindRateLimited:
		return true
	}
	return false
}

// kindForStatus classifies a non-2xx HTTP status.
func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= 500:
		return KindServerError
	default:
		return KindRequestFailed
	}
}

func statusError(status int, message, fallback string) *Error {
	if message == "" {
		message = fallback
	}
	return &Error{Kind: kindForStatus(status), StatusCode: status, Message: message}
}

func networkError(err error) *Error {
	return &Error{Kind: KindNetworkError, Message: err.Error()}
}

// AsError unwraps err into the client's structured error, if it is one.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsRetryable reports whether err is a transient backend failure.
func IsRetryable(err error) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Retryable()
}
