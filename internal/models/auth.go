package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims is the signed payload of a short-lived access token.
// Subject carries the admin id.
type AccessClaims struct {
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// RefreshClaims is the signed half of a composite refresh token. TokenID
// references the refresh_tokens row holding the hash of the opaque half.
type RefreshClaims struct {
	TokenID string `json:"tid"`
	jwt.RegisteredClaims
}
