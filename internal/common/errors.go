// Package common defines shared constants and sentinel errors used across
// the service layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound            = errors.New("not found")
	ErrorDuplicateUsername   = errors.New("username already exists")
	ErrorDuplicateEmail      = errors.New("email already registered")
	ErrorForeignKeyViolation = errors.New("referenced row does not exist")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Intake validation failures wrap this sentinel so transports can
	// classify them without knowing individual field rules.
	ErrorValidation = errors.New("validation error")
)
