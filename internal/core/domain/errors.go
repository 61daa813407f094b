package domain

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies a platform or provider failure. Every failure
// that reaches a caller is one of these kinds; raw provider errors are
// converted at the call site and never propagated as-is.
type ErrorKind string

const (
	ErrPermissionDenied    ErrorKind = "permission_denied"
	ErrPositionUnavailable ErrorKind = "position_unavailable"
	ErrTimeout             ErrorKind = "timeout"
	ErrNetwork             ErrorKind = "network_error"
	ErrSettings            ErrorKind = "settings_error"
	ErrUnknown             ErrorKind = "unknown"
)

// LocationError is the single error shape exposed to callers. Code
// carries an optional platform-specific error code when the provider
// supplied one.
type LocationError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Code    string    `json:"code,omitempty"`
}

// Error implements the error interface.
func (e *LocationError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (code=%s)", e.Kind, e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewLocationError builds a LocationError of the given kind.
func NewLocationError(kind ErrorKind, format string, args ...interface{}) *LocationError {
	return &LocationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// AsLocationError converts an arbitrary error into a LocationError.
// Errors that already are one (directly or wrapped) pass through with
// their kind intact; context deadlines map to timeout; everything else
// falls back to the supplied default kind.
func AsLocationError(err error, fallback ErrorKind) *LocationError {
	if err == nil {
		return nil
	}
	var le *LocationError
	if errors.As(err, &le) {
		return le
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &LocationError{Kind: ErrTimeout, Message: err.Error()}
	}
	return &LocationError{Kind: fallback, Message: err.Error()}
}
