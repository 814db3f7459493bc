// Package common defines shared constants and sentinel errors used across
// messagely components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorDuplicateUser = errors.New("duplicate user")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorBadRequest   = errors.New("bad request")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
