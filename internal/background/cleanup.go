package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/repositories"
)

// Retention for audit log rows. Expired token rows are useless immediately,
// but logs keep a trail for a while.
const logRetention = 180 * 24 * time.Hour

// CleanupManager periodically removes expired token rows and stale audit logs.
type CleanupManager struct {
	refreshTokens   *repositories.RefreshTokenRepository
	passwordResets  *repositories.ResetTokenRepository
	twoFactorResets *repositories.ResetTokenRepository
	adminLogs       *repositories.AdminLogRepository
	logger          *slog.Logger
	interval        time.Duration
	stopCh          chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(
	refreshTokens *repositories.RefreshTokenRepository,
	passwordResets *repositories.ResetTokenRepository,
	twoFactorResets *repositories.ResetTokenRepository,
	adminLogs *repositories.AdminLogRepository,
	logger *slog.Logger,
	interval time.Duration,
) *CleanupManager {
	return &CleanupManager{
		refreshTokens:   refreshTokens,
		passwordResets:  passwordResets,
		twoFactorResets: twoFactorResets,
		adminLogs:       adminLogs,
		logger:          logger,
		interval:        interval,
		stopCh:          make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	now := time.Now()

	cm.purge(cleanupCtx, "refresh_tokens", func() (int64, error) {
		return cm.refreshTokens.DeleteExpiredBefore(cleanupCtx, now)
	})
	cm.purge(cleanupCtx, "password_reset_tokens", func() (int64, error) {
		return cm.passwordResets.DeleteExpiredBefore(cleanupCtx, now)
	})
	cm.purge(cleanupCtx, "two_factor_reset_tokens", func() (int64, error) {
		return cm.twoFactorResets.DeleteExpiredBefore(cleanupCtx, now)
	})
	cm.purge(cleanupCtx, "admin_logs", func() (int64, error) {
		return cm.adminLogs.DeleteBefore(cleanupCtx, now.Add(-logRetention))
	})
}

func (cm *CleanupManager) purge(ctx context.Context, table string, fn func() (int64, error)) {
	rowsDeleted, err := fn()
	if err != nil {
		cm.logger.Error("cleanup failed",
			slog.String("table", table),
			slog.Any("error", err))
		return
	}
	if rowsDeleted > 0 {
		cm.logger.Info("cleanup completed",
			slog.String("table", table),
			slog.Int64("rows_deleted", rowsDeleted))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
