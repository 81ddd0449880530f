package services

import (
	"context"
	"log/slog"

	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/models"
)

// AdminLogRepository defines the persistent audit trail operations.
type AdminLogRepository interface {
	Insert(ctx context.Context, log *models.AdminLog) error
	List(ctx context.Context, action string, limit int) ([]*models.AdminLog, error)
}

// AuditService writes the admin action trail. Record is fire-and-forget: an
// insert failure is logged and never propagated, so auditing can never fail
// the operation being audited.
type AuditService struct {
	logs   AdminLogRepository
	logger *slog.Logger
}

func NewAuditService(logs AdminLogRepository, logger *slog.Logger) *AuditService {
	return &AuditService{logs: logs, logger: logger}
}

func (s *AuditService) Record(ctx context.Context, entry *models.AdminLog) {
	if err := s.logs.Insert(ctx, entry); err != nil {
		s.logger.Error("failed to write admin log",
			slog.String("action", entry.Action),
			slog.Any("error", err))
	}
}

func (s *AuditService) List(ctx context.Context, action string, limit int) ([]*models.AdminLog, error) {
	entries, err := s.logs.List(ctx, action, limit)
	if err != nil {
		s.logger.Error("failed to list admin logs", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return entries, nil
}
