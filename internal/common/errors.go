// Package common defines shared constants and sentinel errors used across
// the bienesraices server layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Account lifecycle errors. All of these are expected, recoverable and
	// user-facing; the HTTP layer translates them into form messages.
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrUnknownEmail        = errors.New("unknown email")
	ErrUnknownUser         = errors.New("unknown user")
	ErrAccountNotConfirmed = errors.New("account not confirmed")
	ErrInvalidPassword     = errors.New("invalid password")
	ErrInvalidToken        = errors.New("invalid token")
	ErrSessionTokenExpired = errors.New("session token expired")

	// ErrInvalidInput marks a validation failure; wrap it with the field
	// detail and match it with errors.Is.
	ErrInvalidInput = errors.New("invalid input")

	// Listing-specific errors.
	ErrPropertyNotPublished = errors.New("property not published")
	ErrMissingImage         = errors.New("property has no image")
	ErrOwnMessage           = errors.New("cannot message own property")
	ErrMessageTooShort      = errors.New("message too short")
)
