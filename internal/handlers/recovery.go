package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	pkghttp "github.com/suhejbmusliu/Full-Stack-Blog-Post/pkg/http"
)

// RecoveryServiceInterface defines the emailed recovery flows.
type RecoveryServiceInterface interface {
	RequestPasswordReset(ctx context.Context, email, ip string) error
	ConfirmPasswordReset(ctx context.Context, email, rawToken, newPassword string) error
	RequestTwoFactorReset(ctx context.Context, email, ip string) error
	ConfirmTwoFactorReset(ctx context.Context, email, rawToken string) error
}

// RecoveryHandler handles the public password-reset and 2FA-reset endpoints.
type RecoveryHandler struct {
	service RecoveryServiceInterface
}

func NewRecoveryHandler(service RecoveryServiceInterface) *RecoveryHandler {
	return &RecoveryHandler{service: service}
}

// RecoveryRequestRequest represents the body of both recovery request routes
type RecoveryRequestRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest represents the body of the password reset confirmation
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=128"`
}

// TwoFactorResetConfirmRequest represents the body of the 2FA reset confirmation
type TwoFactorResetConfirmRequest struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required"`
}

func (h *RecoveryHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req RecoveryRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Email, pkghttp.ClientIP(r)); err != nil {
		writeAuthError(w, err)
		return
	}
	pkghttp.WriteOK(w, nil)
}

func (h *RecoveryHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.ConfirmPasswordReset(r.Context(), req.Email, req.Token, req.NewPassword); err != nil {
		writeAuthError(w, err)
		return
	}
	pkghttp.WriteOK(w, nil)
}

func (h *RecoveryHandler) RequestTwoFactorReset(w http.ResponseWriter, r *http.Request) {
	var req RecoveryRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.RequestTwoFactorReset(r.Context(), req.Email, pkghttp.ClientIP(r)); err != nil {
		writeAuthError(w, err)
		return
	}
	pkghttp.WriteOK(w, nil)
}

func (h *RecoveryHandler) ConfirmTwoFactorReset(w http.ResponseWriter, r *http.Request) {
	var req TwoFactorResetConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.ConfirmTwoFactorReset(r.Context(), req.Email, req.Token); err != nil {
		writeAuthError(w, err)
		return
	}
	pkghttp.WriteOK(w, nil)
}
