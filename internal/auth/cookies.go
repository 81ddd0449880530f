package auth

import (
	"net/http"
	"time"
)

// RefreshCookieName is the composite refresh token cookie.
const RefreshCookieName = "refreshToken"

// RefreshCookiePath scopes the cookie to the auth endpoint group so other
// routes never see the refresh token.
const RefreshCookiePath = "/api/auth"

// CookieConfig holds refresh cookie settings
type CookieConfig struct {
	Secure bool          // HTTPS only, driven by deployment config
	MaxAge time.Duration // matches the refresh token lifetime
}

// SetRefreshCookie sets the composite refresh token in an httpOnly,
// SameSite=Lax cookie scoped to the auth routes.
func SetRefreshCookie(w http.ResponseWriter, value string, config CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    value,
		Path:     RefreshCookiePath,
		Expires:  time.Now().Add(config.MaxAge),
		MaxAge:   int(config.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearRefreshCookie removes the refresh token cookie.
func ClearRefreshCookie(w http.ResponseWriter, config CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     RefreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// GetRefreshCookie retrieves the refresh token cookie value.
func GetRefreshCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(RefreshCookieName)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}
