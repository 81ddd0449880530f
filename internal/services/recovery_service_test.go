package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/auth"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/database"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/models"
	pkgauth "github.com/suhejbmusliu/Full-Stack-Blog-Post/pkg/auth"
)

type recoveryServiceDeps struct {
	admins          *MockAdminRepository
	passwordResets  *MockResetTokenRepository
	twoFactorResets *MockResetTokenRepository
	refreshTokens   *MockRefreshTokenRepository
	email           *MockEmailService
}

func newTestRecoveryService(deps recoveryServiceDeps) *RecoveryService {
	if deps.admins == nil {
		deps.admins = &MockAdminRepository{}
	}
	if deps.passwordResets == nil {
		deps.passwordResets = &MockResetTokenRepository{}
	}
	if deps.twoFactorResets == nil {
		deps.twoFactorResets = &MockResetTokenRepository{}
	}
	if deps.refreshTokens == nil {
		deps.refreshTokens = &MockRefreshTokenRepository{}
	}
	if deps.email == nil {
		deps.email = &MockEmailService{}
	}
	return NewRecoveryService(
		deps.admins,
		deps.passwordResets,
		deps.twoFactorResets,
		deps.refreshTokens,
		&MockTransactor{},
		deps.email,
		auth.NewTimingDelay(0, 0),
		30*time.Minute,
		testLogger(),
		testAuditLogger(),
	)
}

func TestRecoveryService_RequestPasswordReset_SendsHashedToken(t *testing.T) {
	admin := testAdmin(t)
	var storedHash string
	var mailedToken string

	svc := newTestRecoveryService(recoveryServiceDeps{
		admins: &MockAdminRepository{
			GetByEmailFunc: func(ctx context.Context, email string) (*models.Admin, error) {
				return admin, nil
			},
		},
		passwordResets: &MockResetTokenRepository{
			CreateFunc: func(ctx context.Context, q database.Querier, adminID, tokenHash string, expiresAt time.Time) (*models.ResetToken, error) {
				storedHash = tokenHash
				assert.WithinDuration(t, time.Now().Add(30*time.Minute), expiresAt, 5*time.Second)
				return &models.ResetToken{ID: "rt-1", AdminID: adminID, TokenHash: tokenHash, ExpiresAt: expiresAt}, nil
			},
		},
		email: &MockEmailService{
			SendPasswordResetFunc: func(ctx context.Context, email, rawToken string) error {
				mailedToken = rawToken
				return nil
			},
		},
	})

	require.NoError(t, svc.RequestPasswordReset(context.Background(), admin.Email, "1.2.3.4"))

	// The mail carries the raw token; the store only ever sees its hash.
	require.NotEmpty(t, mailedToken)
	assert.NotEqual(t, mailedToken, storedHash)
	assert.Equal(t, pkgauth.HashRecoveryToken(mailedToken), storedHash)
	assert.Len(t, mailedToken, auth.RecoveryTokenBytes*2)
}

func TestRecoveryService_RequestPasswordReset_UnknownEmailSilent(t *testing.T) {
	sent := false
	svc := newTestRecoveryService(recoveryServiceDeps{
		email: &MockEmailService{
			SendPasswordResetFunc: func(ctx context.Context, email, rawToken string) error {
				sent = true
				return nil
			},
		},
	})

	// Indistinguishable from success: nil error, nothing dispatched.
	require.NoError(t, svc.RequestPasswordReset(context.Background(), "nobody@example.com", ""))
	assert.False(t, sent)
}

func TestRecoveryService_RequestPasswordReset_EmailFailureKeepsToken(t *testing.T) {
	admin := testAdmin(t)
	created := false

	svc := newTestRecoveryService(recoveryServiceDeps{
		admins: &MockAdminRepository{
			GetByEmailFunc: func(ctx context.Context, email string) (*models.Admin, error) {
				return admin, nil
			},
		},
		passwordResets: &MockResetTokenRepository{
			CreateFunc: func(ctx context.Context, q database.Querier, adminID, tokenHash string, expiresAt time.Time) (*models.ResetToken, error) {
				created = true
				return &models.ResetToken{ID: "rt-1"}, nil
			},
		},
		email: &MockEmailService{
			SendPasswordResetFunc: func(ctx context.Context, email, rawToken string) error {
				return assert.AnError
			},
		},
	})

	err := svc.RequestPasswordReset(context.Background(), admin.Email, "")

	// Dispatch failure is a server error; the persisted token stays valid so
	// the admin can retry.
	assert.ErrorIs(t, err, models.ErrInternalServer)
	assert.True(t, created)
}

func TestRecoveryService_ConfirmPasswordReset_Success(t *testing.T) {
	admin := testAdmin(t)
	rawToken := "a1b2c3d4"
	record := &models.ResetToken{
		ID:        "rt-1",
		AdminID:   admin.ID,
		TokenHash: pkgauth.HashRecoveryToken(rawToken),
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}

	var newHash string
	markedUsed := false
	svc := newTestRecoveryService(recoveryServiceDeps{
		admins: &MockAdminRepository{
			GetByEmailFunc: func(ctx context.Context, email string) (*models.Admin, error) {
				return admin, nil
			},
			UpdatePasswordFunc: func(ctx context.Context, q database.Querier, id, passwordHash string) error {
				newHash = passwordHash
				return nil
			},
		},
		passwordResets: &MockResetTokenRepository{
			FindLatestUnusedFunc: func(ctx context.Context, adminID, tokenHash string) (*models.ResetToken, error) {
				assert.Equal(t, record.TokenHash, tokenHash)
				return record, nil
			},
			MarkUsedFunc: func(ctx context.Context, q database.Querier, id string) error {
				markedUsed = true
				return nil
			},
		},
	})

	require.NoError(t, svc.ConfirmPasswordReset(context.Background(), admin.Email, rawToken, "brand-new-password"))
	assert.True(t, markedUsed)
	assert.NoError(t, pkgauth.ComparePassword(newHash, "brand-new-password"))
}

func TestRecoveryService_ConfirmPasswordReset_ExpiredToken(t *testing.T) {
	admin := testAdmin(t)
	rawToken := "a1b2c3d4"
	record := &models.ResetToken{
		ID:        "rt-1",
		AdminID:   admin.ID,
		TokenHash: pkgauth.HashRecoveryToken(rawToken),
		ExpiresAt: time.Now().Add(-1 * time.Minute),
	}

	svc := newTestRecoveryService(recoveryServiceDeps{
		admins: &MockAdminRepository{
			GetByEmailFunc: func(ctx context.Context, email string) (*models.Admin, error) {
				return admin, nil
			},
		},
		passwordResets: &MockResetTokenRepository{
			FindLatestUnusedFunc: func(ctx context.Context, adminID, tokenHash string) (*models.ResetToken, error) {
				return record, nil
			},
		},
	})

	err := svc.ConfirmPasswordReset(context.Background(), admin.Email, rawToken, "brand-new-password")
	assert.ErrorIs(t, err, models.ErrTokenInvalid)
}

func TestRecoveryService_ConfirmPasswordReset_UnknownToken(t *testing.T) {
	admin := testAdmin(t)

	svc := newTestRecoveryService(recoveryServiceDeps{
		admins: &MockAdminRepository{
			GetByEmailFunc: func(ctx context.Context, email string) (*models.Admin, error) {
				return admin, nil
			},
		},
	})

	err := svc.ConfirmPasswordReset(context.Background(), admin.Email, "wrong-token", "brand-new-password")
	assert.ErrorIs(t, err, models.ErrTokenInvalid)
}

func TestRecoveryService_ConfirmPasswordReset_WeakPassword(t *testing.T) {
	svc := newTestRecoveryService(recoveryServiceDeps{})

	err := svc.ConfirmPasswordReset(context.Background(), "admin@example.com", "token", "short")
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestRecoveryService_ConfirmTwoFactorReset_ClearsStateAndRevokesSessions(t *testing.T) {
	admin := testAdmin(t)
	rawToken := "a1b2c3d4"
	record := &models.ResetToken{
		ID:        "rt-1",
		AdminID:   admin.ID,
		TokenHash: pkgauth.HashRecoveryToken(rawToken),
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}

	cleared := false
	revokedAll := false
	markedUsed := false
	svc := newTestRecoveryService(recoveryServiceDeps{
		admins: &MockAdminRepository{
			GetByEmailFunc: func(ctx context.Context, email string) (*models.Admin, error) {
				return admin, nil
			},
			ResetTwoFactorRecoveryFunc: func(ctx context.Context, q database.Querier, id string) error {
				cleared = true
				return nil
			},
		},
		twoFactorResets: &MockResetTokenRepository{
			FindLatestUnusedFunc: func(ctx context.Context, adminID, tokenHash string) (*models.ResetToken, error) {
				return record, nil
			},
			MarkUsedFunc: func(ctx context.Context, q database.Querier, id string) error {
				markedUsed = true
				return nil
			},
		},
		refreshTokens: &MockRefreshTokenRepository{
			RevokeAllForAdminFunc: func(ctx context.Context, q database.Querier, adminID string) (int64, error) {
				revokedAll = true
				return 2, nil
			},
		},
	})

	require.NoError(t, svc.ConfirmTwoFactorReset(context.Background(), admin.Email, rawToken))
	assert.True(t, cleared)
	assert.True(t, revokedAll)
	assert.True(t, markedUsed)
}

func TestRecoveryService_ConfirmTwoFactorReset_UnknownEmail(t *testing.T) {
	svc := newTestRecoveryService(recoveryServiceDeps{})

	err := svc.ConfirmTwoFactorReset(context.Background(), "nobody@example.com", "token")
	assert.ErrorIs(t, err, models.ErrTokenInvalid)
}
