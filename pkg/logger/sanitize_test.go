package logger

import "testing"

func TestSanitizedEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{"typical address", "user@example.com", "u***@*******.com"},
		{"single char user", "u@example.com", "u@*******.com"},
		{"subdomain", "admin@mail.example.org", "a****@****.*******.org"},
		{"not an email", "no-at-sign", "[invalid-email]"},
		{"two at signs", "a@b@c", "[invalid-email]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizedEmail(tt.email); got != tt.want {
				t.Errorf("SanitizedEmail(%q) = %q, want %q", tt.email, got, tt.want)
			}
		})
	}
}

func TestSanitizeQueryString(t *testing.T) {
	tests := []struct {
		name     string
		rawQuery string
		want     bool
	}{
		{"reset token", "token=deadbeef&email=user%40example.com", true},
		{"password param", "password=hunter2", true},
		{"totp code", "code=123456", true},
		{"mixed case", "Token=abc", true},
		{"plain pagination", "page=2&perPage=10", false},
		{"category filter", "category=aktivitete&search=vera", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeQueryString(tt.rawQuery); got != tt.want {
				t.Errorf("SanitizeQueryString(%q) = %v, want %v", tt.rawQuery, got, tt.want)
			}
		})
	}
}
