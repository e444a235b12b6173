// Package apperr defines the error kinds every carehub operation reports.
//
// Domain packages wrap one of the sentinel kinds with %w so that callers can
// branch with errors.Is regardless of which store produced the failure.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Validation returns an ErrValidation carrying a formatted reason.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound returns an ErrNotFound naming the missing entity.
func NotFound(entity, id string) error {
	return fmt.Errorf("%s %q: %w", entity, id, ErrNotFound)
}

// PermissionDenied returns an ErrPermissionDenied carrying a formatted reason.
func PermissionDenied(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPermissionDenied, fmt.Sprintf(format, args...))
}

// InvalidTransition reports a disallowed from -> to edge.
func InvalidTransition(from, to string) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// Code returns a stable snake_case identifier for err's kind, or "" when err
// is not one of the carehub kinds.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	default:
		return ""
	}
}
