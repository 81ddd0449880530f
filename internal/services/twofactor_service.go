package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/auth"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/models"
	pkglogger "github.com/suhejbmusliu/Full-Stack-Blog-Post/pkg/logger"
)

// Transactor runs a function inside a database transaction. Implemented by
// *database.DB.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(pgx.Tx) error) error
}

// TwoFactorService handles in-session TOTP enrollment and teardown.
type TwoFactorService struct {
	admins      AdminRepository
	totp        *auth.TOTPManager
	db          Transactor
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

func NewTwoFactorService(admins AdminRepository, totp *auth.TOTPManager, db Transactor, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *TwoFactorService {
	return &TwoFactorService{
		admins:      admins,
		totp:        totp,
		db:          db,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// Setup generates a fresh secret into the pending slot and returns the
// enrollment material. The committed secret and the enabled flag are left
// untouched until Enable verifies a code.
func (s *TwoFactorService) Setup(ctx context.Context, adminID string) (*auth.TOTPEnrollment, error) {
	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to load admin for 2fa setup", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	enrollment, err := s.totp.GenerateEnrollment(admin.Email)
	if err != nil {
		s.logger.Error("failed to generate totp enrollment", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := s.admins.SetTwoFactorPending(ctx, admin.ID, enrollment.SecretBase32); err != nil {
		s.logger.Error("failed to store pending 2fa secret", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogAccountAction("2fa_setup_started", admin.ID, "", nil)
	return enrollment, nil
}

// Enable verifies a code against the pending secret and promotes it to the
// committed slot.
func (s *TwoFactorService) Enable(ctx context.Context, adminID, code string) error {
	if code == "" {
		return models.ErrInvalidCode
	}

	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrUnauthorized
		}
		s.logger.Error("failed to load admin for 2fa enable", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if admin.TwoFactorTemp == "" {
		return models.ErrNoSetupInProgress
	}
	if !s.totp.ValidateCode(admin.TwoFactorTemp, code) {
		return models.ErrInvalidCode
	}

	if err := s.admins.PromoteTwoFactor(ctx, admin.ID); err != nil {
		if errors.Is(err, models.ErrNoSetupInProgress) {
			return err
		}
		s.logger.Error("failed to promote 2fa secret", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogAccountAction("2fa_enabled", admin.ID, "", nil)
	return nil
}

// Disable clears both secret slots after verifying a code against the
// committed secret. Disabling an already-disabled account succeeds without
// requiring a code.
func (s *TwoFactorService) Disable(ctx context.Context, adminID, code string) error {
	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrUnauthorized
		}
		s.logger.Error("failed to load admin for 2fa disable", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if admin.TwoFactorStatus() != models.TwoFactorEnabled {
		return nil
	}
	if code == "" {
		return models.ErrCodeRequired
	}
	if !s.totp.ValidateCode(admin.TwoFactorSecret, code) {
		return models.ErrInvalidTwoFactor
	}

	err = s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		return s.admins.DisableTwoFactor(ctx, tx, admin.ID)
	})
	if err != nil {
		s.logger.Error("failed to disable 2fa", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogAccountAction("2fa_disabled", admin.ID, "", nil)
	return nil
}
