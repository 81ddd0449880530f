package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/auth"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/config"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/database"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/handlers"
	middlewareCustom "github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/middleware"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/repositories"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/routes"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/services"
	pkglogger "github.com/suhejbmusliu/Full-Stack-Blog-Post/pkg/logger"
)

// SentEmail represents a captured email message
type SentEmail struct {
	To    string
	Kind  string // "password_reset", "2fa_reset", "contact"
	Token string
}

// CapturingEmailService records outbound mail for test assertions
type CapturingEmailService struct {
	SentEmails []SentEmail
	mu         sync.Mutex
}

func (m *CapturingEmailService) SendPasswordReset(ctx context.Context, email, rawToken string) error {
	m.record(SentEmail{To: email, Kind: "password_reset", Token: rawToken})
	return nil
}

func (m *CapturingEmailService) SendTwoFactorReset(ctx context.Context, email, rawToken string) error {
	m.record(SentEmail{To: email, Kind: "2fa_reset", Token: rawToken})
	return nil
}

func (m *CapturingEmailService) SendContactMessage(ctx context.Context, fromName, fromEmail, subject, body string) error {
	m.record(SentEmail{To: "contact-inbox", Kind: "contact"})
	return nil
}

func (m *CapturingEmailService) record(email SentEmail) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SentEmails = append(m.SentEmails, email)
}

// EmailsOfKind returns all captured emails of the given kind, oldest first.
func (m *CapturingEmailService) EmailsOfKind(kind string) []SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []SentEmail
	for _, e := range m.SentEmails {
		if e.Kind == kind {
			matched = append(matched, e)
		}
	}
	return matched
}

// GetLastEmail returns the most recent email sent
func (m *CapturingEmailService) GetLastEmail() *SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.SentEmails) == 0 {
		return nil
	}
	return &m.SentEmails[len(m.SentEmails)-1]
}

// TestServer wraps httptest.Server with database and all dependencies
type TestServer struct {
	Server       *httptest.Server
	DB           *database.DB
	EmailService *CapturingEmailService
	Config       *config.Config
	Tokens       *auth.TokenCodec
}

// NewTestServer initializes a complete HTTP server with real database and captured email
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg := &config.Config{
		Auth: config.AuthConfig{
			AccessSecret:       "test-access-secret-32-chars-long!",
			RefreshSecret:      "test-refresh-secret-32-chars-lng!",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: 14 * 24 * time.Hour,
			LockoutThreshold:   8,
			LockoutDuration:    15 * time.Minute,
			ResetTokenExpiry:   30 * time.Minute,
			CookieSecure:       false,
			TOTPIssuer:         "ShoqataDituriaTest",
			CleanupInterval:    1 * time.Hour,
		},
		Server: config.ServerConfig{
			Port:           "0",
			Env:            "test",
			AllowedOrigins: []string{},
		},
	}

	adminRepo := repositories.NewAdminRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	passwordResetRepo := repositories.NewPasswordResetTokenRepository(db)
	twoFactorResetRepo := repositories.NewTwoFactorResetTokenRepository(db)
	postRepo := repositories.NewPostRepository(db)
	adminLogRepo := repositories.NewAdminLogRepository(db)

	tokenCodec := auth.NewTokenCodec(
		cfg.Auth.AccessSecret,
		cfg.Auth.RefreshSecret,
		cfg.Auth.AccessTokenExpiry,
		cfg.Auth.RefreshTokenExpiry,
	)
	totpManager := auth.NewTOTPManager(cfg.Auth.TOTPIssuer)
	timingDelay := auth.NewTimingDelay(0, 0)
	auditLogger := pkglogger.NewAuditLogger(logger)

	capturedEmail := &CapturingEmailService{}

	authService := services.NewAuthService(adminRepo, refreshTokenRepo, tokenCodec, totpManager, timingDelay, &cfg.Auth, logger, auditLogger)
	twoFactorService := services.NewTwoFactorService(adminRepo, totpManager, db, logger, auditLogger)
	recoveryService := services.NewRecoveryService(adminRepo, passwordResetRepo, twoFactorResetRepo, refreshTokenRepo, db, capturedEmail, timingDelay, cfg.Auth.ResetTokenExpiry, logger, auditLogger)
	postService := services.NewPostService(postRepo, db, logger)
	auditService := services.NewAuditService(adminLogRepo, logger)

	cookieConfig := auth.CookieConfig{
		Secure: cfg.Auth.CookieSecure,
		MaxAge: cfg.Auth.RefreshTokenExpiry,
	}

	authHandler := handlers.NewAuthHandler(authService, cookieConfig)
	twoFactorHandler := handlers.NewTwoFactorHandler(twoFactorService)
	recoveryHandler := handlers.NewRecoveryHandler(recoveryService)
	postHandler := handlers.NewPostHandler(postService, auditService)
	logHandler := handlers.NewLogHandler(auditService)
	contactHandler := handlers.NewContactHandler(capturedEmail, logger)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(r, authHandler, twoFactorHandler, recoveryHandler, postHandler, logHandler, contactHandler, tokenCodec)

	server := httptest.NewServer(r)

	return &TestServer{
		Server:       server,
		DB:           db,
		EmailService: capturedEmail,
		Config:       cfg,
		Tokens:       tokenCodec,
	}
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	if ts.Server != nil {
		ts.Server.Close()
	}
}

// PostJSON sends a JSON POST to the test server and decodes the JSON response
func (ts *TestServer) PostJSON(path string, payload any, cookies ...*http.Cookie) (*http.Response, map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+path, bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	return ts.do(req)
}

// postJSONAuth sends a JSON POST with a bearer token
func (ts *TestServer) postJSONAuth(path, accessToken string, payload any) (*http.Response, map[string]any, error) {
	return ts.jsonWithAuth(http.MethodPost, path, accessToken, payload)
}

// patchJSONAuth sends a JSON PATCH with a bearer token
func (ts *TestServer) patchJSONAuth(path, accessToken string, payload any) (*http.Response, map[string]any, error) {
	return ts.jsonWithAuth(http.MethodPatch, path, accessToken, payload)
}

func (ts *TestServer) jsonWithAuth(method, path, accessToken string, payload any) (*http.Response, map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	return ts.do(req)
}

// GetJSON sends a GET with an optional bearer token
func (ts *TestServer) GetJSON(path, accessToken string) (*http.Response, map[string]any, error) {
	req, err := http.NewRequest(http.MethodGet, ts.Server.URL+path, nil)
	if err != nil {
		return nil, nil, err
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	return ts.do(req)
}

func (ts *TestServer) do(req *http.Request) (*http.Response, map[string]any, error) {
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, err
	}

	var decoded map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return resp, nil, fmt.Errorf("invalid JSON response %q: %w", raw, err)
		}
	}
	return resp, decoded, nil
}

// RefreshCookie extracts the refresh cookie from a login response
func RefreshCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == auth.RefreshCookieName {
			return c
		}
	}
	return nil
}
