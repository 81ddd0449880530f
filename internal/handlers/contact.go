package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/services"
	pkghttp "github.com/suhejbmusliu/Full-Stack-Blog-Post/pkg/http"
)

// ContactHandler relays public contact-form submissions to the site inbox.
type ContactHandler struct {
	email  services.EmailService
	logger *slog.Logger
}

func NewContactHandler(email services.EmailService, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{email: email, logger: logger}
}

// ContactRequest represents a contact form submission
type ContactRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,min=1,max=200"`
	Message string `json:"message" validate:"required,min=1,max=5000"`
}

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.email.SendContactMessage(r.Context(), req.Name, req.Email, req.Subject, req.Message); err != nil {
		h.logger.Error("contact relay failed", slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}
	pkghttp.WriteOK(w, nil)
}
