package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/auth"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/database"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/models"
	pkgauth "github.com/suhejbmusliu/Full-Stack-Blog-Post/pkg/auth"
	pkglogger "github.com/suhejbmusliu/Full-Stack-Blog-Post/pkg/logger"
)

// ResetTokenRepository defines a recovery token ledger. The service keeps two
// instances, one for password resets and one for 2FA resets.
type ResetTokenRepository interface {
	Create(ctx context.Context, q database.Querier, adminID, tokenHash string, expiresAt time.Time) (*models.ResetToken, error)
	FindLatestUnused(ctx context.Context, adminID, tokenHash string) (*models.ResetToken, error)
	MarkUsed(ctx context.Context, q database.Querier, id string) error
}

// RecoveryService drives the emailed password-reset and 2FA-reset flows.
type RecoveryService struct {
	admins          AdminRepository
	passwordResets  ResetTokenRepository
	twoFactorResets ResetTokenRepository
	refreshTokens   RefreshTokenRepository
	db              Transactor
	email           EmailService
	timing          *auth.TimingDelay
	tokenExpiry     time.Duration
	logger          *slog.Logger
	auditLogger     *pkglogger.AuditLogger
}

func NewRecoveryService(
	admins AdminRepository,
	passwordResets ResetTokenRepository,
	twoFactorResets ResetTokenRepository,
	refreshTokens RefreshTokenRepository,
	db Transactor,
	email EmailService,
	timing *auth.TimingDelay,
	tokenExpiry time.Duration,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *RecoveryService {
	return &RecoveryService{
		admins:          admins,
		passwordResets:  passwordResets,
		twoFactorResets: twoFactorResets,
		refreshTokens:   refreshTokens,
		db:              db,
		email:           email,
		timing:          timing,
		tokenExpiry:     tokenExpiry,
		logger:          logger,
		auditLogger:     auditLogger,
	}
}

// RequestPasswordReset always reports success to the caller. Unknown emails
// take the same response shape and comparable time as known ones.
func (s *RecoveryService) RequestPasswordReset(ctx context.Context, email, ip string) error {
	return s.requestRecovery(ctx, email, ip, s.passwordResets, "password_reset_requested", s.email.SendPasswordReset)
}

// RequestTwoFactorReset behaves like RequestPasswordReset for the 2FA-reset
// ledger. Creating the new token invalidates any prior unused ones.
func (s *RecoveryService) RequestTwoFactorReset(ctx context.Context, email, ip string) error {
	return s.requestRecovery(ctx, email, ip, s.twoFactorResets, "2fa_reset_requested", s.email.SendTwoFactorReset)
}

func (s *RecoveryService) requestRecovery(
	ctx context.Context,
	email, ip string,
	ledger ResetTokenRepository,
	auditAction string,
	send func(ctx context.Context, email, rawToken string) error,
) error {
	start := time.Now()
	email = strings.ToLower(strings.TrimSpace(email))

	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.timing.WaitFrom(start)
			return nil
		}
		s.logger.Error("failed to look up admin for recovery", slog.Any("error", err))
		return models.ErrInternalServer
	}

	rawToken, err := auth.NewRecoveryToken()
	if err != nil {
		s.logger.Error("failed to generate recovery token", slog.Any("error", err))
		return models.ErrInternalServer
	}
	tokenHash := pkgauth.HashRecoveryToken(rawToken)

	err = s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := ledger.Create(ctx, tx, admin.ID, tokenHash, time.Now().Add(s.tokenExpiry))
		return err
	})
	if err != nil {
		s.logger.Error("failed to persist recovery token", slog.Any("error", err))
		return models.ErrInternalServer
	}

	// A dispatch failure surfaces as a server error but leaves the token
	// valid, so the admin can simply retry the request.
	if err := send(ctx, admin.Email, rawToken); err != nil {
		s.logger.Error("failed to send recovery email",
			slog.String("email", pkglogger.SanitizedEmail(admin.Email)),
			slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogAccountAction(auditAction, admin.ID, ip, nil)
	return nil
}

// ConfirmPasswordReset replaces the password and consumes the reset token in
// one transaction.
func (s *RecoveryService) ConfirmPasswordReset(ctx context.Context, email, rawToken, newPassword string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := pkgauth.ValidatePassword(newPassword); err != nil {
		return models.ErrBadRequest
	}

	admin, record, err := s.findUsableToken(ctx, email, rawToken, s.passwordResets)
	if err != nil {
		return err
	}

	passwordHash, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash new password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	err = s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.admins.UpdatePassword(ctx, tx, admin.ID, passwordHash); err != nil {
			return err
		}
		return s.passwordResets.MarkUsed(ctx, tx, record.ID)
	})
	if err != nil {
		s.logger.Error("password reset transaction failed", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogAccountAction("password_reset_completed", admin.ID, "", nil)
	return nil
}

// ConfirmTwoFactorReset clears the admin's 2FA state entirely, lifts any
// lockout and revokes all refresh tokens, consuming the recovery token in the
// same transaction. Possession of the emailed token is the only gate.
func (s *RecoveryService) ConfirmTwoFactorReset(ctx context.Context, email, rawToken string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	admin, record, err := s.findUsableToken(ctx, email, rawToken, s.twoFactorResets)
	if err != nil {
		return err
	}

	err = s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.admins.ResetTwoFactorRecovery(ctx, tx, admin.ID); err != nil {
			return err
		}
		if _, err := s.refreshTokens.RevokeAllForAdmin(ctx, tx, admin.ID); err != nil {
			return err
		}
		return s.twoFactorResets.MarkUsed(ctx, tx, record.ID)
	})
	if err != nil {
		s.logger.Error("2fa reset transaction failed", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogAccountAction("2fa_reset_completed", admin.ID, "", nil)
	return nil
}

// findUsableToken maps every miss (unknown email, no matching record,
// expired record) to the same client-facing error.
func (s *RecoveryService) findUsableToken(ctx context.Context, email, rawToken string, ledger ResetTokenRepository) (*models.Admin, *models.ResetToken, error) {
	if email == "" || rawToken == "" {
		return nil, nil, models.ErrTokenInvalid
	}

	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil, models.ErrTokenInvalid
		}
		s.logger.Error("failed to look up admin for recovery confirm", slog.Any("error", err))
		return nil, nil, models.ErrInternalServer
	}

	record, err := ledger.FindLatestUnused(ctx, admin.ID, pkgauth.HashRecoveryToken(rawToken))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil, models.ErrTokenInvalid
		}
		s.logger.Error("failed to look up recovery token", slog.Any("error", err))
		return nil, nil, models.ErrInternalServer
	}
	if !record.Usable(time.Now()) {
		return nil, nil, models.ErrTokenInvalid
	}

	return admin, record, nil
}
