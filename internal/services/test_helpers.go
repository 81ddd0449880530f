package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/database"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/models"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/repositories"
	pkglogger "github.com/suhejbmusliu/Full-Stack-Blog-Post/pkg/logger"
)

// MockAdminRepository implements AdminRepository for testing
type MockAdminRepository struct {
	GetByIDFunc                func(ctx context.Context, id string) (*models.Admin, error)
	GetByEmailFunc             func(ctx context.Context, email string) (*models.Admin, error)
	RecordLoginFailureFunc     func(ctx context.Context, id string, failedLogins int, lockedUntil *time.Time) error
	RecordLoginSuccessFunc     func(ctx context.Context, id string) error
	UpdatePasswordFunc         func(ctx context.Context, q database.Querier, id, passwordHash string) error
	SetTwoFactorPendingFunc    func(ctx context.Context, id, tempSecret string) error
	PromoteTwoFactorFunc       func(ctx context.Context, id string) error
	DisableTwoFactorFunc       func(ctx context.Context, q database.Querier, id string) error
	ResetTwoFactorRecoveryFunc func(ctx context.Context, q database.Querier, id string) error
}

func (m *MockAdminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockAdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockAdminRepository) RecordLoginFailure(ctx context.Context, id string, failedLogins int, lockedUntil *time.Time) error {
	if m.RecordLoginFailureFunc != nil {
		return m.RecordLoginFailureFunc(ctx, id, failedLogins, lockedUntil)
	}
	return nil
}

func (m *MockAdminRepository) RecordLoginSuccess(ctx context.Context, id string) error {
	if m.RecordLoginSuccessFunc != nil {
		return m.RecordLoginSuccessFunc(ctx, id)
	}
	return nil
}

func (m *MockAdminRepository) UpdatePassword(ctx context.Context, q database.Querier, id, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, q, id, passwordHash)
	}
	return nil
}

func (m *MockAdminRepository) SetTwoFactorPending(ctx context.Context, id, tempSecret string) error {
	if m.SetTwoFactorPendingFunc != nil {
		return m.SetTwoFactorPendingFunc(ctx, id, tempSecret)
	}
	return nil
}

func (m *MockAdminRepository) PromoteTwoFactor(ctx context.Context, id string) error {
	if m.PromoteTwoFactorFunc != nil {
		return m.PromoteTwoFactorFunc(ctx, id)
	}
	return nil
}

func (m *MockAdminRepository) DisableTwoFactor(ctx context.Context, q database.Querier, id string) error {
	if m.DisableTwoFactorFunc != nil {
		return m.DisableTwoFactorFunc(ctx, q, id)
	}
	return nil
}

func (m *MockAdminRepository) ResetTwoFactorRecovery(ctx context.Context, q database.Querier, id string) error {
	if m.ResetTwoFactorRecoveryFunc != nil {
		return m.ResetTwoFactorRecoveryFunc(ctx, q, id)
	}
	return nil
}

// MockRefreshTokenRepository implements RefreshTokenRepository for testing
type MockRefreshTokenRepository struct {
	CreateFunc            func(ctx context.Context, params repositories.CreateRefreshTokenParams) (*models.RefreshToken, error)
	ValidateFunc          func(ctx context.Context, tokenID, rawSecret string) (*models.RefreshValidation, error)
	RevokeFunc            func(ctx context.Context, tokenID string) error
	RevokeAllForAdminFunc func(ctx context.Context, q database.Querier, adminID string) (int64, error)
}

func (m *MockRefreshTokenRepository) Create(ctx context.Context, params repositories.CreateRefreshTokenParams) (*models.RefreshToken, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return &models.RefreshToken{
		ID:        "refresh-token-id",
		AdminID:   params.AdminID,
		ExpiresAt: params.ExpiresAt,
		CreatedAt: time.Now(),
	}, nil
}

func (m *MockRefreshTokenRepository) Validate(ctx context.Context, tokenID, rawSecret string) (*models.RefreshValidation, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, tokenID, rawSecret)
	}
	return &models.RefreshValidation{OK: false, Reason: models.RefreshReasonNotFound}, nil
}

func (m *MockRefreshTokenRepository) Revoke(ctx context.Context, tokenID string) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, tokenID)
	}
	return nil
}

func (m *MockRefreshTokenRepository) RevokeAllForAdmin(ctx context.Context, q database.Querier, adminID string) (int64, error) {
	if m.RevokeAllForAdminFunc != nil {
		return m.RevokeAllForAdminFunc(ctx, q, adminID)
	}
	return 0, nil
}

// MockResetTokenRepository implements ResetTokenRepository for testing
type MockResetTokenRepository struct {
	CreateFunc           func(ctx context.Context, q database.Querier, adminID, tokenHash string, expiresAt time.Time) (*models.ResetToken, error)
	FindLatestUnusedFunc func(ctx context.Context, adminID, tokenHash string) (*models.ResetToken, error)
	MarkUsedFunc         func(ctx context.Context, q database.Querier, id string) error
}

func (m *MockResetTokenRepository) Create(ctx context.Context, q database.Querier, adminID, tokenHash string, expiresAt time.Time) (*models.ResetToken, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, q, adminID, tokenHash, expiresAt)
	}
	return &models.ResetToken{
		ID:        "reset-token-id",
		AdminID:   adminID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}, nil
}

func (m *MockResetTokenRepository) FindLatestUnused(ctx context.Context, adminID, tokenHash string) (*models.ResetToken, error) {
	if m.FindLatestUnusedFunc != nil {
		return m.FindLatestUnusedFunc(ctx, adminID, tokenHash)
	}
	return nil, models.ErrNotFound
}

func (m *MockResetTokenRepository) MarkUsed(ctx context.Context, q database.Querier, id string) error {
	if m.MarkUsedFunc != nil {
		return m.MarkUsedFunc(ctx, q, id)
	}
	return nil
}

// MockTransactor implements Transactor without a database. The pgx.Tx handed
// to fn is nil; mocked repositories ignore it.
type MockTransactor struct {
	WithTransactionFunc func(ctx context.Context, fn func(pgx.Tx) error) error
}

func (m *MockTransactor) WithTransaction(ctx context.Context, fn func(pgx.Tx) error) error {
	if m.WithTransactionFunc != nil {
		return m.WithTransactionFunc(ctx, fn)
	}
	return fn(nil)
}

// MockEmailService implements EmailService for testing
type MockEmailService struct {
	SendPasswordResetFunc  func(ctx context.Context, email, rawToken string) error
	SendTwoFactorResetFunc func(ctx context.Context, email, rawToken string) error
	SendContactMessageFunc func(ctx context.Context, fromName, fromEmail, subject, body string) error
}

func (m *MockEmailService) SendPasswordReset(ctx context.Context, email, rawToken string) error {
	if m.SendPasswordResetFunc != nil {
		return m.SendPasswordResetFunc(ctx, email, rawToken)
	}
	return nil
}

func (m *MockEmailService) SendTwoFactorReset(ctx context.Context, email, rawToken string) error {
	if m.SendTwoFactorResetFunc != nil {
		return m.SendTwoFactorResetFunc(ctx, email, rawToken)
	}
	return nil
}

func (m *MockEmailService) SendContactMessage(ctx context.Context, fromName, fromEmail, subject, body string) error {
	if m.SendContactMessageFunc != nil {
		return m.SendContactMessageFunc(ctx, fromName, fromEmail, subject, body)
	}
	return nil
}

// MockPostRepository implements PostRepository for testing
type MockPostRepository struct {
	ListFunc              func(ctx context.Context, filter repositories.PostListFilter) ([]*models.Post, int64, error)
	GetByIDFunc           func(ctx context.Context, id string) (*models.Post, error)
	GetBySlugFunc         func(ctx context.Context, slug string) (*models.Post, error)
	SlugInUseFunc         func(ctx context.Context, slug, excludeID string) (bool, error)
	CreateFunc            func(ctx context.Context, q database.Querier, params repositories.CreatePostParams) (*models.Post, error)
	UpdateFunc            func(ctx context.Context, q database.Querier, id string, params repositories.UpdatePostParams) (*models.Post, error)
	SetStatusFunc         func(ctx context.Context, id, status string) error
	DeleteFunc            func(ctx context.Context, id string) error
	EnsureTermsFunc       func(ctx context.Context, q database.Querier, kind string, names, slugs []string) ([]string, error)
	SetPostCategoriesFunc func(ctx context.Context, q database.Querier, postID string, categoryIDs []string) error
	SetPostTagsFunc       func(ctx context.Context, q database.Querier, postID string, tagIDs []string) error
	ListTermsFunc         func(ctx context.Context, kind string) ([]models.Term, error)
}

func (m *MockPostRepository) List(ctx context.Context, filter repositories.PostListFilter) ([]*models.Post, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return []*models.Post{}, 0, nil
}

func (m *MockPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockPostRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	if m.GetBySlugFunc != nil {
		return m.GetBySlugFunc(ctx, slug)
	}
	return nil, models.ErrNotFound
}

func (m *MockPostRepository) SlugInUse(ctx context.Context, slug, excludeID string) (bool, error) {
	if m.SlugInUseFunc != nil {
		return m.SlugInUseFunc(ctx, slug, excludeID)
	}
	return false, nil
}

func (m *MockPostRepository) Create(ctx context.Context, q database.Querier, params repositories.CreatePostParams) (*models.Post, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, q, params)
	}
	return &models.Post{
		ID:       "post-id",
		Title:    params.Title,
		Slug:     params.Slug,
		Content:  params.Content,
		Status:   params.Status,
		AuthorID: params.AuthorID,
	}, nil
}

func (m *MockPostRepository) Update(ctx context.Context, q database.Querier, id string, params repositories.UpdatePostParams) (*models.Post, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, q, id, params)
	}
	return &models.Post{ID: id, Title: params.Title, Slug: params.Slug, Status: params.Status}, nil
}

func (m *MockPostRepository) SetStatus(ctx context.Context, id, status string) error {
	if m.SetStatusFunc != nil {
		return m.SetStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *MockPostRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockPostRepository) EnsureTerms(ctx context.Context, q database.Querier, kind string, names, slugs []string) ([]string, error) {
	if m.EnsureTermsFunc != nil {
		return m.EnsureTermsFunc(ctx, q, kind, names, slugs)
	}
	ids := make([]string, len(names))
	for i := range names {
		ids[i] = kind + "-" + slugs[i]
	}
	return ids, nil
}

func (m *MockPostRepository) SetPostCategories(ctx context.Context, q database.Querier, postID string, categoryIDs []string) error {
	if m.SetPostCategoriesFunc != nil {
		return m.SetPostCategoriesFunc(ctx, q, postID, categoryIDs)
	}
	return nil
}

func (m *MockPostRepository) SetPostTags(ctx context.Context, q database.Querier, postID string, tagIDs []string) error {
	if m.SetPostTagsFunc != nil {
		return m.SetPostTagsFunc(ctx, q, postID, tagIDs)
	}
	return nil
}

func (m *MockPostRepository) ListTerms(ctx context.Context, kind string) ([]models.Term, error) {
	if m.ListTermsFunc != nil {
		return m.ListTermsFunc(ctx, kind)
	}
	return []models.Term{}, nil
}

// MockAdminLogRepository implements AdminLogRepository for testing
type MockAdminLogRepository struct {
	InsertFunc func(ctx context.Context, log *models.AdminLog) error
	ListFunc   func(ctx context.Context, action string, limit int) ([]*models.AdminLog, error)
}

func (m *MockAdminLogRepository) Insert(ctx context.Context, log *models.AdminLog) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, log)
	}
	return nil
}

func (m *MockAdminLogRepository) List(ctx context.Context, action string, limit int) ([]*models.AdminLog, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, action, limit)
	}
	return []*models.AdminLog{}, nil
}

// testLogger returns a logger that discards output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAuditLogger() *pkglogger.AuditLogger {
	return pkglogger.NewAuditLogger(testLogger())
}
