package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/auth"
	pkghttp "github.com/suhejbmusliu/Full-Stack-Blog-Post/pkg/http"
)

// TwoFactorServiceInterface defines TOTP enrollment business logic.
type TwoFactorServiceInterface interface {
	Setup(ctx context.Context, adminID string) (*auth.TOTPEnrollment, error)
	Enable(ctx context.Context, adminID, code string) error
	Disable(ctx context.Context, adminID, code string) error
}

// TwoFactorHandler handles 2FA setup, enable and disable requests. All three
// routes sit behind the bearer-token middleware.
type TwoFactorHandler struct {
	service TwoFactorServiceInterface
}

func NewTwoFactorHandler(service TwoFactorServiceInterface) *TwoFactorHandler {
	return &TwoFactorHandler{service: service}
}

// TwoFactorCodeRequest carries the six-digit code for enable and disable.
// Disable tolerates an empty code (the service decides whether one is
// needed), so required is not enforced here.
type TwoFactorCodeRequest struct {
	Code string `json:"code" validate:"omitempty,len=6,numeric"`
}

func (h *TwoFactorHandler) Setup(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromRequest(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Missing token")
		return
	}

	enrollment, err := h.service.Setup(r.Context(), claims.Subject)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	pkghttp.WriteOK(w, map[string]any{
		"qr":           enrollment.QRDataURL,
		"secretBase32": enrollment.SecretBase32,
	})
}

func (h *TwoFactorHandler) Enable(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromRequest(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Missing token")
		return
	}

	var req TwoFactorCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.Enable(r.Context(), claims.Subject, req.Code); err != nil {
		writeAuthError(w, err)
		return
	}
	pkghttp.WriteOK(w, nil)
}

func (h *TwoFactorHandler) Disable(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromRequest(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Missing token")
		return
	}

	// An empty body is fine: disabling when already disabled needs no code.
	var req TwoFactorCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.Disable(r.Context(), claims.Subject, req.Code); err != nil {
		writeAuthError(w, err)
		return
	}
	pkghttp.WriteOK(w, nil)
}
