package models

import (
	"time"
)

// TwoFactorState describes which secret, if any, drives TOTP verification.
type TwoFactorState int

const (
	TwoFactorDisabled TwoFactorState = iota
	TwoFactorPending                 // setup started, secret awaiting verification
	TwoFactorEnabled
)

type Admin struct {
	ID           string
	Email        string // stored lowercase
	PasswordHash string
	Name         string
	Role         string // e.g. "ADMIN", "SUPERADMIN"
	IsActive     bool

	FailedLogins int
	LockedUntil  *time.Time
	LastLoginAt  *time.Time

	TwoFactorEnabled bool
	TwoFactorSecret  string // committed secret, set only while enabled
	TwoFactorTemp    string // enrollment secret, set only while pending

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TwoFactorStatus collapses the two secret slots into the effective state.
// Enabled wins over an abandoned pending enrollment.
func (a *Admin) TwoFactorStatus() TwoFactorState {
	switch {
	case a.TwoFactorEnabled && a.TwoFactorSecret != "":
		return TwoFactorEnabled
	case a.TwoFactorTemp != "":
		return TwoFactorPending
	default:
		return TwoFactorDisabled
	}
}

// Locked reports whether a lockout window is currently in force.
func (a *Admin) Locked(now time.Time) bool {
	return a.LockedUntil != nil && a.LockedUntil.After(now)
}

// AdminProfile is the sanitized shape returned to clients. It never carries
// the password hash or either 2FA secret.
type AdminProfile struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	Role             string `json:"role"`
	TwoFactorEnabled bool   `json:"twoFactorEnabled"`
}

func (a *Admin) Profile() *AdminProfile {
	return &AdminProfile{
		ID:               a.ID,
		Email:            a.Email,
		Name:             a.Name,
		Role:             a.Role,
		TwoFactorEnabled: a.TwoFactorEnabled,
	}
}
