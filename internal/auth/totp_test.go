package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTOTPManager_GenerateEnrollment(t *testing.T) {
	tm := NewTOTPManager("ShoqataDituria")

	enrollment, err := tm.GenerateEnrollment("admin@example.com")
	require.NoError(t, err)

	assert.NotEmpty(t, enrollment.SecretBase32)
	assert.Contains(t, enrollment.ProvisioningURI, "otpauth://totp/")
	assert.Contains(t, enrollment.ProvisioningURI, "ShoqataDituria")
	assert.Contains(t, enrollment.ProvisioningURI, "admin%40example.com")
	assert.True(t, strings.HasPrefix(enrollment.QRDataURL, "data:image/png;base64,"))
}

func TestTOTPManager_GenerateEnrollment_UniqueSecrets(t *testing.T) {
	tm := NewTOTPManager("ShoqataDituria")

	first, err := tm.GenerateEnrollment("admin@example.com")
	require.NoError(t, err)
	second, err := tm.GenerateEnrollment("admin@example.com")
	require.NoError(t, err)

	assert.NotEqual(t, first.SecretBase32, second.SecretBase32)
}

func TestTOTPManager_ValidateCode_Current(t *testing.T) {
	tm := NewTOTPManager("ShoqataDituria")

	enrollment, err := tm.GenerateEnrollment("admin@example.com")
	require.NoError(t, err)

	code, err := totp.GenerateCode(enrollment.SecretBase32, time.Now())
	require.NoError(t, err)

	assert.True(t, tm.ValidateCode(enrollment.SecretBase32, code))
}

func TestTOTPManager_ValidateCode_AdjacentStep(t *testing.T) {
	tm := NewTOTPManager("ShoqataDituria")

	enrollment, err := tm.GenerateEnrollment("admin@example.com")
	require.NoError(t, err)

	now := time.Now()

	// One step behind and one ahead are inside the skew window.
	behind, err := totp.GenerateCode(enrollment.SecretBase32, now.Add(-30*time.Second))
	require.NoError(t, err)
	assert.True(t, tm.ValidateCodeAt(enrollment.SecretBase32, behind, now))

	ahead, err := totp.GenerateCode(enrollment.SecretBase32, now.Add(30*time.Second))
	require.NoError(t, err)
	assert.True(t, tm.ValidateCodeAt(enrollment.SecretBase32, ahead, now))
}

func TestTOTPManager_ValidateCode_StaleCode(t *testing.T) {
	tm := NewTOTPManager("ShoqataDituria")

	enrollment, err := tm.GenerateEnrollment("admin@example.com")
	require.NoError(t, err)

	now := time.Now()
	stale, err := totp.GenerateCode(enrollment.SecretBase32, now.Add(-2*time.Minute))
	require.NoError(t, err)

	assert.False(t, tm.ValidateCodeAt(enrollment.SecretBase32, stale, now))
}

func TestTOTPManager_ValidateCode_BadInput(t *testing.T) {
	tm := NewTOTPManager("ShoqataDituria")

	enrollment, err := tm.GenerateEnrollment("admin@example.com")
	require.NoError(t, err)

	assert.False(t, tm.ValidateCode(enrollment.SecretBase32, "12345"))
	assert.False(t, tm.ValidateCode(enrollment.SecretBase32, ""))
	assert.False(t, tm.ValidateCode("not-base32!!", "123456"))
}
