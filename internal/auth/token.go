package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/models"
)

// OpaqueSecretBytes is the entropy of the random half of a refresh token.
// RecoveryTokenBytes is the entropy of emailed recovery tokens.
const (
	OpaqueSecretBytes  = 40
	RecoveryTokenBytes = 32
)

// TokenCodec signs and verifies access and refresh tokens. The two token
// kinds use distinct secrets so a leaked refresh secret cannot mint access
// tokens and vice versa.
type TokenCodec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewTokenCodec(accessSecret, refreshSecret string, accessExpiry, refreshExpiry time.Duration) *TokenCodec {
	return &TokenCodec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// RefreshExpiry exposes the configured refresh lifetime, used to size ledger
// rows and cookie MaxAge consistently.
func (tc *TokenCodec) RefreshExpiry() time.Duration {
	return tc.refreshExpiry
}

// SignAccess creates a short-lived access token for the admin.
func (tc *TokenCodec) SignAccess(admin *models.Admin) (string, error) {
	now := time.Now()
	claims := &models.AccessClaims{
		Role:  admin.Role,
		Email: admin.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(tc.accessExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tc.accessSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// SignRefresh creates the signed half of a composite refresh token. tokenID
// is the id of the ledger record holding the opaque secret's hash.
func (tc *TokenCodec) SignRefresh(adminID, tokenID string) (string, error) {
	now := time.Now()
	claims := &models.RefreshClaims{
		TokenID: tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminID,
			ExpiresAt: jwt.NewNumericDate(now.Add(tc.refreshExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tc.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return signed, nil
}

// VerifyAccess parses and verifies an access token.
func (tc *TokenCodec) VerifyAccess(tokenString string) (*models.AccessClaims, error) {
	claims := &models.AccessClaims{}
	if err := tc.verify(tokenString, claims, tc.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefresh parses and verifies the signed half of a refresh token.
func (tc *TokenCodec) VerifyRefresh(tokenString string) (*models.RefreshClaims, error) {
	claims := &models.RefreshClaims{}
	if err := tc.verify(tokenString, claims, tc.refreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (tc *TokenCodec) verify(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.ErrTokenExpired
		}
		return models.ErrTokenInvalid
	}
	if !token.Valid {
		return models.ErrTokenInvalid
	}
	return nil
}

// NewOpaqueSecret returns a cryptographically random hex string used as the
// non-JWT half of a refresh token.
func NewOpaqueSecret() (string, error) {
	buf := make([]byte, OpaqueSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate opaque secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// NewRecoveryToken returns a random hex token mailed to the admin during
// password or 2FA recovery. Only its SHA-256 hash is ever stored.
func NewRecoveryToken() (string, error) {
	buf := make([]byte, RecoveryTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate recovery token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// JoinComposite builds the refresh cookie value from the signed claims and
// the raw opaque secret.
func JoinComposite(refreshJWT, rawSecret string) string {
	return refreshJWT + "." + rawSecret
}

// SplitComposite splits a refresh cookie value at its LAST dot. The opaque
// half is hex and never contains a dot, and the JWT compact form has exactly
// two internal dots, so the last dot is an unambiguous separator.
func SplitComposite(cookieValue string) (refreshJWT, rawSecret string, err error) {
	idx := strings.LastIndex(cookieValue, ".")
	if idx <= 0 || idx == len(cookieValue)-1 {
		return "", "", models.ErrMalformedRefreshToken
	}
	return cookieValue[:idx], cookieValue[idx+1:], nil
}
