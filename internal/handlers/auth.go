package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/auth"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/models"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/services"
	pkghttp "github.com/suhejbmusliu/Full-Stack-Blog-Post/pkg/http"
)

// AuthServiceInterface defines the auth business logic the handler needs.
type AuthServiceInterface interface {
	Login(ctx context.Context, email, password, twoFactorCode, ip, userAgent string) (*services.SessionResult, error)
	Refresh(ctx context.Context, cookieValue, ip, userAgent string) (*services.SessionResult, error)
	Logout(ctx context.Context, cookieValue, ip string)
	Me(ctx context.Context, adminID string) (*models.AdminProfile, error)
}

// AuthHandler handles login, refresh, logout and profile requests.
type AuthHandler struct {
	service AuthServiceInterface
	cookies auth.CookieConfig
}

func NewAuthHandler(service AuthServiceInterface, cookies auth.CookieConfig) *AuthHandler {
	return &AuthHandler{service: service, cookies: cookies}
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required"`
	TwoFactorCode string `json:"twoFactorCode" validate:"omitempty,len=6,numeric"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password, req.TwoFactorCode,
		pkghttp.ClientIP(r), pkghttp.UserAgent(r))
	if err != nil {
		writeAuthError(w, err)
		return
	}

	auth.SetRefreshCookie(w, result.RefreshCookie, h.cookies)
	pkghttp.WriteOK(w, map[string]any{
		"accessToken": result.AccessToken,
		"admin":       result.Admin,
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookieValue, err := auth.GetRefreshCookie(r)
	if err != nil {
		pkghttp.WriteUnauthorized(w, "Missing refresh token")
		return
	}

	result, err := h.service.Refresh(r.Context(), cookieValue, pkghttp.ClientIP(r), pkghttp.UserAgent(r))
	if err != nil {
		// A rejected or stale token is gone for good; drop the cookie so the
		// client falls back to a clean login.
		auth.ClearRefreshCookie(w, h.cookies)
		writeAuthError(w, err)
		return
	}

	auth.SetRefreshCookie(w, result.RefreshCookie, h.cookies)
	pkghttp.WriteOK(w, map[string]any{"accessToken": result.AccessToken})
}

// Logout always succeeds. The server-side revocation is best-effort; the
// cookie is cleared no matter what was presented.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookieValue, err := auth.GetRefreshCookie(r); err == nil {
		h.service.Logout(r.Context(), cookieValue, pkghttp.ClientIP(r))
	}

	auth.ClearRefreshCookie(w, h.cookies)
	pkghttp.WriteOK(w, nil)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromRequest(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Missing token")
		return
	}

	profile, err := h.service.Me(r.Context(), claims.Subject)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	pkghttp.WriteOK(w, map[string]any{"admin": profile})
}

// writeAuthError maps service errors to the wire codes clients match on.
// 2FA_REQUIRED and INVALID_2FA are machine-readable markers, not prose.
func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidCredentials):
		pkghttp.WriteUnauthorized(w, "Invalid credentials")
	case errors.Is(err, models.ErrAccountLocked):
		pkghttp.WriteTooManyRequests(w, "Account locked. Try later.")
	case errors.Is(err, models.ErrTwoFactorRequired):
		pkghttp.WriteUnauthorized(w, "2FA_REQUIRED")
	case errors.Is(err, models.ErrInvalidTwoFactor):
		pkghttp.WriteUnauthorized(w, "INVALID_2FA")
	case errors.Is(err, models.ErrMissingRefreshToken):
		pkghttp.WriteUnauthorized(w, "Missing refresh token")
	case errors.Is(err, models.ErrMalformedRefreshToken):
		pkghttp.WriteUnauthorized(w, "Invalid refresh format")
	case errors.Is(err, models.ErrInvalidRefreshToken):
		pkghttp.WriteUnauthorized(w, "Invalid refresh token")
	case errors.Is(err, models.ErrRefreshRejected):
		pkghttp.WriteUnauthorized(w, "Refresh rejected")
	case errors.Is(err, models.ErrAdminNotActive):
		pkghttp.WriteUnauthorized(w, "Admin not active")
	case errors.Is(err, models.ErrUnauthorized):
		pkghttp.WriteUnauthorized(w, "Unauthorized")
	case errors.Is(err, models.ErrTokenInvalid):
		pkghttp.WriteBadRequest(w, "Token expired/invalid")
	case errors.Is(err, models.ErrNoSetupInProgress):
		pkghttp.WriteBadRequest(w, "No setup in progress")
	case errors.Is(err, models.ErrInvalidCode):
		pkghttp.WriteBadRequest(w, "Invalid code")
	case errors.Is(err, models.ErrCodeRequired):
		pkghttp.WriteBadRequest(w, "CODE_REQUIRED")
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, "Invalid request")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}
