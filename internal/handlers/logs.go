package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/models"
	pkghttp "github.com/suhejbmusliu/Full-Stack-Blog-Post/pkg/http"
)

// AuditListerInterface reads the persistent admin action trail.
type AuditListerInterface interface {
	List(ctx context.Context, action string, limit int) ([]*models.AdminLog, error)
}

// LogHandler serves the admin action log to the dashboard.
type LogHandler struct {
	service AuditListerInterface
}

func NewLogHandler(service AuditListerInterface) *LogHandler {
	return &LogHandler{service: service}
}

func (h *LogHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	logs, err := h.service.List(r.Context(), r.URL.Query().Get("action"), limit)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	pkghttp.WriteOK(w, map[string]any{"logs": logs})
}
