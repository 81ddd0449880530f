package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/auth"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/models"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/repositories"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/services"
	pkghttp "github.com/suhejbmusliu/Full-Stack-Blog-Post/pkg/http"
)

// PostServiceInterface defines post business logic.
type PostServiceInterface interface {
	ListPublished(ctx context.Context, filter repositories.PostListFilter) ([]*models.Post, int64, error)
	ListAll(ctx context.Context, filter repositories.PostListFilter) ([]*models.Post, int64, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Create(ctx context.Context, authorID string, input services.PostInput) (*models.Post, error)
	Update(ctx context.Context, id string, input services.PostInput) (*models.Post, error)
	SetStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]models.Term, error)
	ListTags(ctx context.Context) ([]models.Term, error)
}

// AuditRecorder writes the persistent admin action trail.
type AuditRecorder interface {
	Record(ctx context.Context, entry *models.AdminLog)
}

// PostHandler handles public reads and authenticated post management.
type PostHandler struct {
	service PostServiceInterface
	audit   AuditRecorder
}

func NewPostHandler(service PostServiceInterface, audit AuditRecorder) *PostHandler {
	return &PostHandler{service: service, audit: audit}
}

// PostRequest represents the write body for create and update
type PostRequest struct {
	Title        string   `json:"title" validate:"required,min=1,max=200"`
	Content      string   `json:"content" validate:"required"`
	Excerpt      string   `json:"excerpt" validate:"max=500"`
	Status       string   `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
	ActivityDate *string  `json:"activityDate"`
	CoverURL     string   `json:"coverUrl" validate:"omitempty,url"`
	Categories   []string `json:"categories" validate:"max=10,dive,min=1,max=60"`
	Tags         []string `json:"tags" validate:"max=20,dive,min=1,max=60"`
}

// PostStatusRequest represents the status change body
type PostStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=DRAFT PUBLISHED ARCHIVED"`
}

func (req *PostRequest) toInput() (services.PostInput, error) {
	input := services.PostInput{
		Title:      req.Title,
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		Status:     req.Status,
		CoverURL:   req.CoverURL,
		Categories: req.Categories,
		Tags:       req.Tags,
	}
	if req.ActivityDate != nil && *req.ActivityDate != "" {
		parsed, err := time.Parse(time.RFC3339, *req.ActivityDate)
		if err != nil {
			return input, err
		}
		input.ActivityDate = &parsed
	}
	return input, nil
}

func listFilterFromQuery(r *http.Request) repositories.PostListFilter {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("perPage"))
	return repositories.PostListFilter{
		Status:   q.Get("status"),
		Category: q.Get("category"),
		Tag:      q.Get("tag"),
		Search:   q.Get("search"),
		Page:     page,
		PerPage:  perPage,
	}
}

// ListPublic serves the public feed: published posts only.
func (h *PostHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	filter := listFilterFromQuery(r)
	posts, total, err := h.service.ListPublished(r.Context(), filter)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	writePostPage(w, posts, total, filter)
}

func (h *PostHandler) GetPublicBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetPublishedBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Post not found")
			return
		}
		writeAuthError(w, err)
		return
	}
	pkghttp.WriteOK(w, map[string]any{"post": post})
}

// ListAdmin serves the dashboard listing across all statuses.
func (h *PostHandler) ListAdmin(w http.ResponseWriter, r *http.Request) {
	filter := listFilterFromQuery(r)
	posts, total, err := h.service.ListAll(r.Context(), filter)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	writePostPage(w, posts, total, filter)
}

func (h *PostHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Post not found")
			return
		}
		writeAuthError(w, err)
		return
	}
	pkghttp.WriteOK(w, map[string]any{"post": post})
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromRequest(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Missing token")
		return
	}

	var req PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	input, err := req.toInput()
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid activityDate, expected RFC 3339")
		return
	}

	post, err := h.service.Create(r.Context(), claims.Subject, input)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	h.audit.Record(r.Context(), &models.AdminLog{
		AdminID:   claims.Subject,
		Action:    "post_created",
		Entity:    "post",
		EntityID:  post.ID,
		IP:        pkghttp.ClientIP(r),
		UserAgent: pkghttp.UserAgent(r),
	})
	pkghttp.WriteJSON(w, http.StatusCreated, map[string]any{"ok": true, "post": post})
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromRequest(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Missing token")
		return
	}

	var req PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	input, err := req.toInput()
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid activityDate, expected RFC 3339")
		return
	}

	id := chi.URLParam(r, "id")
	post, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Post not found")
			return
		}
		writeAuthError(w, err)
		return
	}

	h.audit.Record(r.Context(), &models.AdminLog{
		AdminID:  claims.Subject,
		Action:   "post_updated",
		Entity:   "post",
		EntityID: id,
		IP:       pkghttp.ClientIP(r),
	})
	pkghttp.WriteOK(w, map[string]any{"post": post})
}

func (h *PostHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromRequest(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Missing token")
		return
	}

	var req PostStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.SetStatus(r.Context(), id, req.Status); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Post not found")
			return
		}
		writeAuthError(w, err)
		return
	}

	h.audit.Record(r.Context(), &models.AdminLog{
		AdminID:  claims.Subject,
		Action:   "post_status_changed",
		Entity:   "post",
		EntityID: id,
		Meta:     map[string]string{"status": req.Status},
		IP:       pkghttp.ClientIP(r),
	})
	pkghttp.WriteOK(w, nil)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromRequest(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Missing token")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Post not found")
			return
		}
		writeAuthError(w, err)
		return
	}

	h.audit.Record(r.Context(), &models.AdminLog{
		AdminID:  claims.Subject,
		Action:   "post_deleted",
		Entity:   "post",
		EntityID: id,
		IP:       pkghttp.ClientIP(r),
	})
	pkghttp.WriteOK(w, nil)
}

func (h *PostHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	terms, err := h.service.ListCategories(r.Context())
	if err != nil {
		writeAuthError(w, err)
		return
	}
	pkghttp.WriteOK(w, map[string]any{"categories": terms})
}

func (h *PostHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	terms, err := h.service.ListTags(r.Context())
	if err != nil {
		writeAuthError(w, err)
		return
	}
	pkghttp.WriteOK(w, map[string]any{"tags": terms})
}

func writePostPage(w http.ResponseWriter, posts []*models.Post, total int64, filter repositories.PostListFilter) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pkghttp.WriteOK(w, map[string]any{
		"posts": posts,
		"total": total,
		"page":  page,
	})
}
