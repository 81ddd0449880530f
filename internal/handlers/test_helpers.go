package handlers

import (
	"context"
	"io"
	"log/slog"

	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/auth"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/models"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/repositories"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/services"
)

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc   func(ctx context.Context, email, password, twoFactorCode, ip, userAgent string) (*services.SessionResult, error)
	RefreshFunc func(ctx context.Context, cookieValue, ip, userAgent string) (*services.SessionResult, error)
	LogoutFunc  func(ctx context.Context, cookieValue, ip string)
	MeFunc      func(ctx context.Context, adminID string) (*models.AdminProfile, error)
}

func (m *MockAuthService) Login(ctx context.Context, email, password, twoFactorCode, ip, userAgent string) (*services.SessionResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password, twoFactorCode, ip, userAgent)
	}
	return nil, models.ErrInvalidCredentials
}

func (m *MockAuthService) Refresh(ctx context.Context, cookieValue, ip, userAgent string) (*services.SessionResult, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, cookieValue, ip, userAgent)
	}
	return nil, models.ErrRefreshRejected
}

func (m *MockAuthService) Logout(ctx context.Context, cookieValue, ip string) {
	if m.LogoutFunc != nil {
		m.LogoutFunc(ctx, cookieValue, ip)
	}
}

func (m *MockAuthService) Me(ctx context.Context, adminID string) (*models.AdminProfile, error) {
	if m.MeFunc != nil {
		return m.MeFunc(ctx, adminID)
	}
	return nil, models.ErrUnauthorized
}

// MockTwoFactorService implements TwoFactorServiceInterface for testing
type MockTwoFactorService struct {
	SetupFunc   func(ctx context.Context, adminID string) (*auth.TOTPEnrollment, error)
	EnableFunc  func(ctx context.Context, adminID, code string) error
	DisableFunc func(ctx context.Context, adminID, code string) error
}

func (m *MockTwoFactorService) Setup(ctx context.Context, adminID string) (*auth.TOTPEnrollment, error) {
	if m.SetupFunc != nil {
		return m.SetupFunc(ctx, adminID)
	}
	return &auth.TOTPEnrollment{
		SecretBase32:    "JBSWY3DPEHPK3PXP",
		ProvisioningURI: "otpauth://totp/Test:admin@example.com",
		QRDataURL:       "data:image/png;base64,AAAA",
	}, nil
}

func (m *MockTwoFactorService) Enable(ctx context.Context, adminID, code string) error {
	if m.EnableFunc != nil {
		return m.EnableFunc(ctx, adminID, code)
	}
	return nil
}

func (m *MockTwoFactorService) Disable(ctx context.Context, adminID, code string) error {
	if m.DisableFunc != nil {
		return m.DisableFunc(ctx, adminID, code)
	}
	return nil
}

// MockRecoveryService implements RecoveryServiceInterface for testing
type MockRecoveryService struct {
	RequestPasswordResetFunc  func(ctx context.Context, email, ip string) error
	ConfirmPasswordResetFunc  func(ctx context.Context, email, rawToken, newPassword string) error
	RequestTwoFactorResetFunc func(ctx context.Context, email, ip string) error
	ConfirmTwoFactorResetFunc func(ctx context.Context, email, rawToken string) error
}

func (m *MockRecoveryService) RequestPasswordReset(ctx context.Context, email, ip string) error {
	if m.RequestPasswordResetFunc != nil {
		return m.RequestPasswordResetFunc(ctx, email, ip)
	}
	return nil
}

func (m *MockRecoveryService) ConfirmPasswordReset(ctx context.Context, email, rawToken, newPassword string) error {
	if m.ConfirmPasswordResetFunc != nil {
		return m.ConfirmPasswordResetFunc(ctx, email, rawToken, newPassword)
	}
	return nil
}

func (m *MockRecoveryService) RequestTwoFactorReset(ctx context.Context, email, ip string) error {
	if m.RequestTwoFactorResetFunc != nil {
		return m.RequestTwoFactorResetFunc(ctx, email, ip)
	}
	return nil
}

func (m *MockRecoveryService) ConfirmTwoFactorReset(ctx context.Context, email, rawToken string) error {
	if m.ConfirmTwoFactorResetFunc != nil {
		return m.ConfirmTwoFactorResetFunc(ctx, email, rawToken)
	}
	return nil
}

// MockPostService implements PostServiceInterface for testing
type MockPostService struct {
	ListPublishedFunc      func(ctx context.Context, filter repositories.PostListFilter) ([]*models.Post, int64, error)
	ListAllFunc            func(ctx context.Context, filter repositories.PostListFilter) ([]*models.Post, int64, error)
	GetPublishedBySlugFunc func(ctx context.Context, slug string) (*models.Post, error)
	GetByIDFunc            func(ctx context.Context, id string) (*models.Post, error)
	CreateFunc             func(ctx context.Context, authorID string, input services.PostInput) (*models.Post, error)
	UpdateFunc             func(ctx context.Context, id string, input services.PostInput) (*models.Post, error)
	SetStatusFunc          func(ctx context.Context, id, status string) error
	DeleteFunc             func(ctx context.Context, id string) error
	ListCategoriesFunc     func(ctx context.Context) ([]models.Term, error)
	ListTagsFunc           func(ctx context.Context) ([]models.Term, error)
}

func (m *MockPostService) ListPublished(ctx context.Context, filter repositories.PostListFilter) ([]*models.Post, int64, error) {
	if m.ListPublishedFunc != nil {
		return m.ListPublishedFunc(ctx, filter)
	}
	return []*models.Post{}, 0, nil
}

func (m *MockPostService) ListAll(ctx context.Context, filter repositories.PostListFilter) ([]*models.Post, int64, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx, filter)
	}
	return []*models.Post{}, 0, nil
}

func (m *MockPostService) GetPublishedBySlug(ctx context.Context, slug string) (*models.Post, error) {
	if m.GetPublishedBySlugFunc != nil {
		return m.GetPublishedBySlugFunc(ctx, slug)
	}
	return nil, models.ErrNotFound
}

func (m *MockPostService) GetByID(ctx context.Context, id string) (*models.Post, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockPostService) Create(ctx context.Context, authorID string, input services.PostInput) (*models.Post, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, authorID, input)
	}
	return &models.Post{ID: "post-id", Title: input.Title, AuthorID: authorID}, nil
}

func (m *MockPostService) Update(ctx context.Context, id string, input services.PostInput) (*models.Post, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, input)
	}
	return &models.Post{ID: id, Title: input.Title}, nil
}

func (m *MockPostService) SetStatus(ctx context.Context, id, status string) error {
	if m.SetStatusFunc != nil {
		return m.SetStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *MockPostService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockPostService) ListCategories(ctx context.Context) ([]models.Term, error) {
	if m.ListCategoriesFunc != nil {
		return m.ListCategoriesFunc(ctx)
	}
	return []models.Term{}, nil
}

func (m *MockPostService) ListTags(ctx context.Context) ([]models.Term, error) {
	if m.ListTagsFunc != nil {
		return m.ListTagsFunc(ctx)
	}
	return []models.Term{}, nil
}

// MockAuditRecorder implements AuditRecorder for testing
type MockAuditRecorder struct {
	Entries []*models.AdminLog
}

func (m *MockAuditRecorder) Record(ctx context.Context, entry *models.AdminLog) {
	m.Entries = append(m.Entries, entry)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
