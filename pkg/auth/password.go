package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is used for both password hashes and refresh-secret hashes.
	// Refresh secrets are long-lived, high-value credentials, so their ledger
	// is treated as a second password store.
	BcryptCost = 12

	MinPasswordLen = 8
	MaxPasswordLen = 128
)

func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

func ComparePassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// HashRefreshSecret hashes the opaque half of a refresh token for storage.
func HashRefreshSecret(rawSecret string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(rawSecret), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash refresh secret: %w", err)
	}
	return string(hashedBytes), nil
}

func CompareRefreshSecret(hash, rawSecret string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(rawSecret))
}

// HashRecoveryToken returns the hex SHA-256 of a raw recovery token. The raw
// token already carries 256 bits of entropy, so a fast deterministic hash is
// enough for lookup while still preventing replay from a leaked ledger.
func HashRecoveryToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}

// ValidatePassword enforces the minimum requirements for new passwords.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLen)
	}
	if len(password) > MaxPasswordLen {
		return fmt.Errorf("password must be at most %d characters", MaxPasswordLen)
	}
	return nil
}
