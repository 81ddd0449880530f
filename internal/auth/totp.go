package auth

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
)

// TOTPManager generates enrollment secrets and validates time-based codes.
type TOTPManager struct {
	issuer string
}

func NewTOTPManager(issuer string) *TOTPManager {
	return &TOTPManager{issuer: issuer}
}

// TOTPEnrollment is the material returned to a client starting 2FA setup.
type TOTPEnrollment struct {
	SecretBase32    string
	ProvisioningURI string
	QRDataURL       string // PNG data URL of the provisioning URI
}

// GenerateEnrollment creates a fresh 160-bit shared secret labeled with the
// admin's email, plus a scannable QR encoding of the provisioning URI.
func (tm *TOTPManager) GenerateEnrollment(email string) (*TOTPEnrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      tm.issuer,
		AccountName: email,
		SecretSize:  20, // 160 bits
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	qr, err := qrcode.New(key.URL(), qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	png, err := qr.PNG(200)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}

	return &TOTPEnrollment{
		SecretBase32:    key.Secret(),
		ProvisioningURI: key.URL(),
		QRDataURL:       "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	}, nil
}

// ValidateCode checks a six-digit code against a base32 secret, accepting the
// current 30s step and one adjacent step in either direction for clock drift.
func (tm *TOTPManager) ValidateCode(secretBase32, code string) bool {
	return tm.ValidateCodeAt(secretBase32, code, time.Now())
}

// ValidateCodeAt is ValidateCode with an explicit reference time, for tests.
func (tm *TOTPManager) ValidateCodeAt(secretBase32, code string, at time.Time) bool {
	valid, err := totp.ValidateCustom(code, secretBase32, at, totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return false
	}
	return valid
}
