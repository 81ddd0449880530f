package models

import "time"

// RefreshToken is the server-side record of an issued refresh token. Only a
// bcrypt hash of the opaque secret is stored; the raw value travels in the
// cookie and nowhere else. Revoked and expired rows are kept for audit.
type RefreshToken struct {
	ID        string
	AdminID   string
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	IP        string
	UserAgent string
	CreatedAt time.Time
}

// Refresh token validation reasons. Reported in logs only, never to clients.
const (
	RefreshReasonNotFound = "NOT_FOUND"
	RefreshReasonRevoked  = "REVOKED"
	RefreshReasonExpired  = "EXPIRED"
	RefreshReasonMismatch = "MISMATCH"
)

// RefreshValidation is the outcome of checking an opaque secret against a
// stored record. OK is true only when the record exists, is neither revoked
// nor expired, and the secret hash matches.
type RefreshValidation struct {
	OK     bool
	Reason string
	Token  *RefreshToken
}
