// Package common defines shared constants and sentinel errors used across
// client and server layers of DocVault. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal         = errors.New("internal error")
	ErrorUnauthorized     = errors.New("unauthorized")
	ErrorPermissionDenied = errors.New("permission denied")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Upload pipeline errors.
	ErrSessionNotFound   = errors.New("upload session not found")
	ErrPartListInvalid   = errors.New("part list is not contiguous or incomplete")
	ErrCredentialExpired = errors.New("signed url expired")

	// Tree mutation errors.
	ErrMoveCycle = errors.New("folder cannot be moved into itself or its descendants")
)
