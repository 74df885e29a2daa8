package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrInvalidSession     = errors.New("invalid or expired token")

	ErrCollectionNotFound = errors.New("collection not found")
	ErrRequestNotFound    = errors.New("request not found")
	ErrForbidden          = errors.New("unauthorized access")
	ErrInvalidID          = errors.New("invalid id")

	// ErrValidation is matched by every *ValidationError via errors.Is.
	ErrValidation = errors.New("validation failed")
)

// ValidationError reports malformed or missing input. Message is safe to show to clients.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid builds a ValidationError from a format string.
func Invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NetworkError means the proxied target never produced an HTTP response.
type NetworkError struct {
	Code string
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error (%s): %v", e.Code, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
