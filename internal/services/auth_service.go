package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/auth"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/config"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/database"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/models"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/repositories"
	pkgauth "github.com/suhejbmusliu/Full-Stack-Blog-Post/pkg/auth"
	pkglogger "github.com/suhejbmusliu/Full-Stack-Blog-Post/pkg/logger"
)

// AdminRepository defines the credential store operations services need.
type AdminRepository interface {
	GetByID(ctx context.Context, id string) (*models.Admin, error)
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	RecordLoginFailure(ctx context.Context, id string, failedLogins int, lockedUntil *time.Time) error
	RecordLoginSuccess(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, q database.Querier, id, passwordHash string) error
	SetTwoFactorPending(ctx context.Context, id, tempSecret string) error
	PromoteTwoFactor(ctx context.Context, id string) error
	DisableTwoFactor(ctx context.Context, q database.Querier, id string) error
	ResetTwoFactorRecovery(ctx context.Context, q database.Querier, id string) error
}

// RefreshTokenRepository defines the refresh token ledger operations.
type RefreshTokenRepository interface {
	Create(ctx context.Context, params repositories.CreateRefreshTokenParams) (*models.RefreshToken, error)
	Validate(ctx context.Context, tokenID, rawSecret string) (*models.RefreshValidation, error)
	Revoke(ctx context.Context, tokenID string) error
	RevokeAllForAdmin(ctx context.Context, q database.Querier, adminID string) (int64, error)
}

// AuthService drives login, refresh rotation and logout.
type AuthService struct {
	admins        AdminRepository
	refreshTokens RefreshTokenRepository
	tokens        *auth.TokenCodec
	totp          *auth.TOTPManager
	timing        *auth.TimingDelay
	cfg           *config.AuthConfig
	logger        *slog.Logger
	auditLogger   *pkglogger.AuditLogger
}

func NewAuthService(
	admins AdminRepository,
	refreshTokens RefreshTokenRepository,
	tokens *auth.TokenCodec,
	totp *auth.TOTPManager,
	timing *auth.TimingDelay,
	cfg *config.AuthConfig,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *AuthService {
	return &AuthService{
		admins:        admins,
		refreshTokens: refreshTokens,
		tokens:        tokens,
		totp:          totp,
		timing:        timing,
		cfg:           cfg,
		logger:        logger,
		auditLogger:   auditLogger,
	}
}

// SessionResult carries everything a successful login or refresh produces.
// RefreshCookie is the composite cookie value, never stored server-side.
type SessionResult struct {
	AccessToken   string
	RefreshCookie string
	Admin         *models.AdminProfile
}

// Login authenticates an admin. The same InvalidCredentials error covers an
// unknown email, an inactive account and a wrong password so responses do not
// reveal which accounts exist.
func (s *AuthService) Login(ctx context.Context, email, password, twoFactorCode, ip, userAgent string) (*SessionResult, error) {
	start := time.Now()
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, models.ErrInvalidCredentials
	}

	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Burn comparable time to the password-compare path.
			s.timing.WaitFrom(start)
			s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
				EventType:     "login_failed",
				IPAddress:     ip,
				UserAgent:     userAgent,
				FailureReason: "unknown_email",
			})
			return nil, models.ErrInvalidCredentials
		}
		s.logger.Error("failed to look up admin by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !admin.IsActive {
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			AdminID:       admin.ID,
			IPAddress:     ip,
			FailureReason: "account_inactive",
		})
		return nil, models.ErrInvalidCredentials
	}

	// Lockout is checked before the password so the response timing does not
	// reveal whether the password would have matched.
	if admin.Locked(time.Now()) {
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			AdminID:       admin.ID,
			IPAddress:     ip,
			FailureReason: "account_locked",
		})
		return nil, models.ErrAccountLocked
	}

	if err := pkgauth.ComparePassword(admin.PasswordHash, password); err != nil {
		return nil, s.recordFailedPassword(ctx, admin, ip, userAgent)
	}

	if admin.TwoFactorStatus() == models.TwoFactorEnabled {
		if twoFactorCode == "" {
			return nil, models.ErrTwoFactorRequired
		}
		if !s.totp.ValidateCode(admin.TwoFactorSecret, twoFactorCode) {
			s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
				EventType:     "login_failed",
				AdminID:       admin.ID,
				IPAddress:     ip,
				FailureReason: "invalid_totp",
			})
			return nil, models.ErrInvalidTwoFactor
		}
	}

	if err := s.admins.RecordLoginSuccess(ctx, admin.ID); err != nil {
		s.logger.Error("failed to record login success", slog.String("admin_id", admin.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	result, err := s.issueSession(ctx, admin, ip, userAgent)
	if err != nil {
		return nil, err
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login",
		AdminID:   admin.ID,
		IPAddress: ip,
		UserAgent: userAgent,
		Success:   true,
	})
	return result, nil
}

// recordFailedPassword persists the failure counter before responding so a
// concurrent attempt sees the updated count. Lockout starts once the counter
// reaches the threshold; this attempt still reports InvalidCredentials and
// the lock takes effect on the next one.
func (s *AuthService) recordFailedPassword(ctx context.Context, admin *models.Admin, ip, userAgent string) error {
	failures := admin.FailedLogins + 1

	var lockedUntil *time.Time
	if failures >= s.cfg.LockoutThreshold {
		t := time.Now().Add(s.cfg.LockoutDuration)
		lockedUntil = &t
	}

	if err := s.admins.RecordLoginFailure(ctx, admin.ID, failures, lockedUntil); err != nil {
		s.logger.Error("failed to record login failure", slog.String("admin_id", admin.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     "login_failed",
		AdminID:       admin.ID,
		IPAddress:     ip,
		UserAgent:     userAgent,
		FailureReason: "wrong_password",
	})
	return models.ErrInvalidCredentials
}

// Refresh rotates a refresh token: the presented record is revoked before a
// replacement is issued, so a replayed cookie fails on its second use.
func (s *AuthService) Refresh(ctx context.Context, cookieValue, ip, userAgent string) (*SessionResult, error) {
	if cookieValue == "" {
		return nil, models.ErrMissingRefreshToken
	}

	refreshJWT, rawSecret, err := auth.SplitComposite(cookieValue)
	if err != nil {
		return nil, models.ErrMalformedRefreshToken
	}

	claims, err := s.tokens.VerifyRefresh(refreshJWT)
	if err != nil {
		return nil, models.ErrInvalidRefreshToken
	}

	validation, err := s.refreshTokens.Validate(ctx, claims.TokenID, rawSecret)
	if err != nil {
		s.logger.Error("refresh token validation failed", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if !validation.OK || validation.Token.AdminID != claims.Subject {
		reason := validation.Reason
		if validation.OK {
			reason = "SUBJECT_MISMATCH"
		}
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "refresh_rejected",
			AdminID:       claims.Subject,
			IPAddress:     ip,
			FailureReason: reason,
		})
		return nil, models.ErrRefreshRejected
	}

	// Rotation: the old record must be dead before a new one exists.
	if err := s.refreshTokens.Revoke(ctx, claims.TokenID); err != nil {
		s.logger.Error("failed to revoke rotated refresh token", slog.String("token_id", claims.TokenID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	admin, err := s.admins.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrAdminNotActive
		}
		s.logger.Error("failed to load admin during refresh", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if !admin.IsActive {
		return nil, models.ErrAdminNotActive
	}

	result, err := s.issueSession(ctx, admin, ip, userAgent)
	if err != nil {
		return nil, err
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "refresh",
		AdminID:   admin.ID,
		IPAddress: ip,
		Success:   true,
	})
	return result, nil
}

// Logout revokes the presented refresh record when the cookie parses and
// verifies. It never fails: an absent or garbage cookie still logs out.
func (s *AuthService) Logout(ctx context.Context, cookieValue, ip string) {
	if cookieValue == "" {
		return
	}

	refreshJWT, _, err := auth.SplitComposite(cookieValue)
	if err != nil {
		return
	}
	claims, err := s.tokens.VerifyRefresh(refreshJWT)
	if err != nil {
		return
	}

	if err := s.refreshTokens.Revoke(ctx, claims.TokenID); err != nil {
		s.logger.Warn("logout revocation failed", slog.String("token_id", claims.TokenID), slog.Any("error", err))
		return
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "logout",
		AdminID:   claims.Subject,
		IPAddress: ip,
		Success:   true,
	})
}

// Me returns the caller's sanitized profile, including the 2FA flag.
func (s *AuthService) Me(ctx context.Context, adminID string) (*models.AdminProfile, error) {
	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to load admin profile", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return admin.Profile(), nil
}

func (s *AuthService) issueSession(ctx context.Context, admin *models.Admin, ip, userAgent string) (*SessionResult, error) {
	rawSecret, err := auth.NewOpaqueSecret()
	if err != nil {
		s.logger.Error("failed to generate refresh secret", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	record, err := s.refreshTokens.Create(ctx, repositories.CreateRefreshTokenParams{
		AdminID:   admin.ID,
		RawSecret: rawSecret,
		ExpiresAt: time.Now().Add(s.cfg.RefreshTokenExpiry),
		IP:        ip,
		UserAgent: userAgent,
	})
	if err != nil {
		s.logger.Error("failed to persist refresh token", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	refreshJWT, err := s.tokens.SignRefresh(admin.ID, record.ID)
	if err != nil {
		s.logger.Error("failed to sign refresh token", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	accessToken, err := s.tokens.SignAccess(admin)
	if err != nil {
		s.logger.Error("failed to sign access token", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &SessionResult{
		AccessToken:   accessToken,
		RefreshCookie: auth.JoinComposite(refreshJWT, rawSecret),
		Admin:         admin.Profile(),
	}, nil
}
