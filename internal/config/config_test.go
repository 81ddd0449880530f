package config

import (
	"os"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	os.Setenv("JWT_ACCESS_SECRET", "test-access-secret-32-chars-long!")
	os.Setenv("JWT_REFRESH_SECRET", "test-refresh-secret-32-chars-lng!")
	os.Setenv("DB_PASSWORD", "test")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	tests := []struct {
		name     string
		actual   time.Duration
		expected time.Duration
	}{
		{"AccessTokenExpiry", cfg.Auth.AccessTokenExpiry, 15 * time.Minute},
		{"RefreshTokenExpiry", cfg.Auth.RefreshTokenExpiry, 14 * 24 * time.Hour},
		{"LockoutDuration", cfg.Auth.LockoutDuration, 15 * time.Minute},
		{"ResetTokenExpiry", cfg.Auth.ResetTokenExpiry, 30 * time.Minute},
		{"CleanupInterval", cfg.Auth.CleanupInterval, 1 * time.Hour},
	}

	for _, tt := range tests {
		if tt.actual != tt.expected {
			t.Errorf("%s: got %v, want %v", tt.name, tt.actual, tt.expected)
		}
	}

	if cfg.Auth.LockoutThreshold != 8 {
		t.Errorf("LockoutThreshold: got %d, want 8", cfg.Auth.LockoutThreshold)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Port: got %s, want 8080", cfg.Server.Port)
	}
	if cfg.Auth.CookieSecure {
		t.Error("CookieSecure should default to false outside production")
	}
}

func TestLoad_MissingSecrets(t *testing.T) {
	os.Clearenv()
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Error("expected error when JWT secrets are missing")
	}
}

func TestLoad_IdenticalSecretsRejected(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_ACCESS_SECRET", "same-secret-32-characters-long!!")
	os.Setenv("JWT_REFRESH_SECRET", "same-secret-32-characters-long!!")
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Error("expected error when access and refresh secrets match")
	}
}

func TestLoad_MissingDBPassword(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_ACCESS_SECRET", "test-access-secret-32-chars-long!")
	os.Setenv("JWT_REFRESH_SECRET", "test-refresh-secret-32-chars-lng!")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Error("expected error when DB_PASSWORD is missing")
	}
}

func TestLoad_ShortSecretRejectedInProduction(t *testing.T) {
	os.Clearenv()
	os.Setenv("ENV", "production")
	os.Setenv("JWT_ACCESS_SECRET", "short-but-over-16ch")
	os.Setenv("JWT_REFRESH_SECRET", "also-short-over-16c")
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Error("expected error for short secrets in production")
	}
}

func TestLoad_CustomDurations(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("ACCESS_TOKEN_EXPIRY", "5m")
	os.Setenv("REFRESH_TOKEN_EXPIRY_DAYS", "7")
	os.Setenv("LOCKOUT_THRESHOLD", "5")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Auth.AccessTokenExpiry != 5*time.Minute {
		t.Errorf("AccessTokenExpiry: got %v, want 5m", cfg.Auth.AccessTokenExpiry)
	}
	if cfg.Auth.RefreshTokenExpiry != 7*24*time.Hour {
		t.Errorf("RefreshTokenExpiry: got %v, want 168h", cfg.Auth.RefreshTokenExpiry)
	}
	if cfg.Auth.LockoutThreshold != 5 {
		t.Errorf("LockoutThreshold: got %d, want 5", cfg.Auth.LockoutThreshold)
	}
}

func TestParseAllowedOrigins_Production(t *testing.T) {
	os.Clearenv()
	os.Setenv("ALLOWED_ORIGINS", "https://shoqata-dituria.de, https://www.shoqata-dituria.de")
	defer os.Clearenv()

	origins := parseAllowedOrigins("production")
	if len(origins) != 2 {
		t.Fatalf("expected 2 origins, got %d", len(origins))
	}
	if origins[0] != "https://shoqata-dituria.de" {
		t.Errorf("origins[0]: got %q", origins[0])
	}
	if origins[1] != "https://www.shoqata-dituria.de" {
		t.Errorf("origins[1] should be trimmed, got %q", origins[1])
	}
}

func TestParseAllowedOrigins_Development(t *testing.T) {
	os.Clearenv()

	origins := parseAllowedOrigins("development")
	if len(origins) == 0 {
		t.Fatal("development should allow localhost origins")
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "pw",
		Name:     "blogcms",
		SSLMode:  "disable",
	}

	want := "host=localhost port=5432 user=postgres password=pw dbname=blogcms sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
