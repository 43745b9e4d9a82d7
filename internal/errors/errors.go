package errors

import (
	"errors"
	"fmt"
)

// Common error types for the Open Cluster Claw admin client
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLoginRequired      = errors.New("login required")
	ErrOTPRequired        = errors.New("one-time password required")
	ErrInvalidOTPCode     = errors.New("one-time password code must be 6 digits")

	// Token errors
	ErrNoAccessToken  = errors.New("no access token")
	ErrNoRefreshToken = errors.New("no refresh token")
	ErrRefreshFailed  = errors.New("token refresh failed")
	ErrSessionExpired = errors.New("session expired")

	// Session state machine errors
	ErrWrongPhase       = errors.New("operation not valid in current login phase")
	ErrMalformedPayload = errors.New("malformed response payload")

	// Credential store errors
	ErrCorruptCredentials = errors.New("corrupt credential entry")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrUnsupported = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
