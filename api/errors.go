package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized     = errors.New("api: unauthorized")
	ErrForbidden        = errors.New("api: forbidden")
	ErrNotFound         = errors.New("api: not found")
	ErrValidation       = errors.New("api: validation failed")
	ErrRateLimited      = errors.New("api: rate limited")
	ErrServer           = errors.New("api: server error")
	ErrUnexpectedStatus = errors.New("api: unexpected status")
	// ErrNetwork wraps transport failures: no response was received.
	ErrNetwork = errors.New("api: network error")
	// ErrDecode is returned when a 2xx body cannot be decoded.
	ErrDecode = errors.New("api: malformed response")
)

// Login failures.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrAccountNotFound    = errors.New("account not found")
	// ErrLoginRejected is a 2xx login response without success or token.
	ErrLoginRejected = errors.New("login rejected")
	// ErrNoAccount is a successful login response carrying no account object.
	ErrNoAccount = errors.New("login succeeded but no account data received")
)

// Error is a non-2xx response.
type Error struct {
	Op      string
	Status  int
	Message string
	Details []string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %d %s: %s", e.Op, e.Status, http.StatusText(e.Status), e.Message)
	}
	return fmt.Sprintf("%s: %d %s", e.Op, e.Status, http.StatusText(e.Status))
}

// Unwrap maps the status to its sentinel.
func (e *Error) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Status == http.StatusForbidden:
		return ErrForbidden
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity:
		return ErrValidation
	case e.Status == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.Status >= 500:
		return ErrServer
	default:
		return ErrUnexpectedStatus
	}
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// MessageOf returns the server-provided message carried by err, or "".
func MessageOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
