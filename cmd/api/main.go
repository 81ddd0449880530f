package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/auth"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/background"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/config"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/database"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/handlers"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/middleware"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/models"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/repositories"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/routes"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/services"
	pkgauth "github.com/suhejbmusliu/Full-Stack-Blog-Post/pkg/auth"
	pkglogger "github.com/suhejbmusliu/Full-Stack-Blog-Post/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	if err := db.Migrate(migrateCtx, cfg.Server.MigrationsDir); err != nil {
		migrateCancel()
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	migrateCancel()

	// Repositories
	adminRepo := repositories.NewAdminRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	passwordResetRepo := repositories.NewPasswordResetTokenRepository(db)
	twoFactorResetRepo := repositories.NewTwoFactorResetTokenRepository(db)
	postRepo := repositories.NewPostRepository(db)
	adminLogRepo := repositories.NewAdminLogRepository(db)

	cleanupManager := background.NewCleanupManager(
		refreshTokenRepo, passwordResetRepo, twoFactorResetRepo, adminLogRepo,
		logger, cfg.Auth.CleanupInterval)

	tokenCodec := auth.NewTokenCodec(
		cfg.Auth.AccessSecret,
		cfg.Auth.RefreshSecret,
		cfg.Auth.AccessTokenExpiry,
		cfg.Auth.RefreshTokenExpiry,
	)
	totpManager := auth.NewTOTPManager(cfg.Auth.TOTPIssuer)
	timingDelay := auth.NewTimingDelay(80*time.Millisecond, 40*time.Millisecond)
	auditLogger := pkglogger.NewAuditLogger(logger)

	emailService, err := services.NewAWSSESEmailService(
		cfg.Email.AWSRegion,
		cfg.Email.FromAddress,
		cfg.Email.ContactTo,
		cfg.Email.FrontendURL,
		logger,
	)
	if err != nil {
		logger.Error("failed to initialize email service", slog.Any("error", err))
		os.Exit(1)
	}

	// Services
	authService := services.NewAuthService(adminRepo, refreshTokenRepo, tokenCodec, totpManager, timingDelay, &cfg.Auth, logger, auditLogger)
	twoFactorService := services.NewTwoFactorService(adminRepo, totpManager, db, logger, auditLogger)
	recoveryService := services.NewRecoveryService(adminRepo, passwordResetRepo, twoFactorResetRepo, refreshTokenRepo, db, emailService, timingDelay, cfg.Auth.ResetTokenExpiry, logger, auditLogger)
	postService := services.NewPostService(postRepo, db, logger)
	auditService := services.NewAuditService(adminLogRepo, logger)

	cookieConfig := auth.CookieConfig{
		Secure: cfg.Auth.CookieSecure,
		MaxAge: cfg.Auth.RefreshTokenExpiry,
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, cookieConfig)
	twoFactorHandler := handlers.NewTwoFactorHandler(twoFactorService)
	recoveryHandler := handlers.NewRecoveryHandler(recoveryService)
	postHandler := handlers.NewPostHandler(postService, auditService)
	logHandler := handlers.NewLogHandler(auditService)
	contactHandler := handlers.NewContactHandler(emailService, logger)

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureSuperAdmin(bootCtx, adminRepo, logger); err != nil {
		logger.Error("failed to ensure super admin", slog.Any("error", err))
	}
	bootCancel()

	corsConfig := middleware.DefaultCORSConfig(cfg.Server.AllowedOrigins)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.SecurityHeaders(middleware.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middleware.CORS(corsConfig))
	router.Use(middleware.SecureLogger(logger))
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(router, authHandler, twoFactorHandler, recoveryHandler, postHandler, logHandler, contactHandler, tokenCodec)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := db.HealthCheck(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// adminSeedStore is the slice of the admin repository that bootstrap
// seeding needs.
type adminSeedStore interface {
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	Create(ctx context.Context, admin *models.Admin) (*models.Admin, error)
}

// ensureSuperAdmin creates the first admin account if ADMIN_EMAIL and
// ADMIN_PASSWORD are set and no account with that email exists yet.
func ensureSuperAdmin(ctx context.Context, admins adminSeedStore, logger *slog.Logger) error {
	// Stored emails are lowercase; normalize so login's lookup finds the
	// seeded account regardless of how the env value was cased.
	adminEmail := strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL")))
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		logger.Info("no ADMIN_EMAIL or ADMIN_PASSWORD set, skipping super admin creation")
		return nil
	}

	_, err := admins.GetByEmail(ctx, adminEmail)
	if err == nil {
		logger.Info("super admin already exists")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check if super admin exists: %w", err)
	}

	hashedPassword, err := pkgauth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash super admin password: %w", err)
	}

	admin := &models.Admin{
		Email:        adminEmail,
		PasswordHash: hashedPassword,
		Name:         "Admin",
		Role:         "SUPERADMIN",
		IsActive:     true,
	}

	if _, err := admins.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create super admin: %w", err)
	}

	logger.Info("super admin created successfully")
	return nil
}
