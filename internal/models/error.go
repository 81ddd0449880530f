package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Login failures
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account is temporarily locked")
	ErrTwoFactorRequired  = errors.New("two-factor code required")
	ErrInvalidTwoFactor   = errors.New("invalid two-factor code")

	// Refresh failures
	ErrMissingRefreshToken   = errors.New("missing refresh token")
	ErrMalformedRefreshToken = errors.New("malformed refresh token")
	ErrInvalidRefreshToken   = errors.New("invalid refresh token")
	ErrRefreshRejected       = errors.New("refresh token rejected")
	ErrAdminNotActive        = errors.New("admin is not active")

	// Token codec failures
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token signature or format invalid")

	// Recovery and 2FA management failures. Recovery token misses reuse
	// ErrTokenInvalid so both flows surface the same client-facing error.
	ErrNoSetupInProgress = errors.New("no two-factor setup in progress")
	ErrInvalidCode       = errors.New("invalid verification code")
	ErrCodeRequired      = errors.New("verification code required")
)
