// Package common defines shared constants and sentinel errors used across
// the gophauth server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal = errors.New("internal error")

	// Credential errors. Unknown identifiers and wrong passwords both map to
	// ErrInvalidCredentials.
	ErrInvalidCredentials = errors.New("invalid username and/or password")
	ErrPolicyRejected     = errors.New("password rejected by policy")
	ErrPasswordMismatch   = errors.New("new password and confirmation do not match")
	ErrEmptyPassword      = errors.New("password cannot be empty")

	// Token errors. ErrInvalidToken covers bad signatures, corrupt structure
	// and missing claims.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
