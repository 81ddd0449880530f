package models

import "time"

// ResetToken is a single-use, time-boxed recovery token record, used for both
// the password-reset and 2FA-reset ledgers. The stored hash is SHA-256 of the
// raw token; the raw value carries 256 bits of entropy and is only ever sent
// in the recovery email.
type ResetToken struct {
	ID        string
	AdminID   string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Usable reports whether the token can still be redeemed.
func (t *ResetToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && t.ExpiresAt.After(now)
}
