package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/database"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/models"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/repositories"
	pkgslug "github.com/suhejbmusliu/Full-Stack-Blog-Post/pkg/slug"
)

// PostRepository defines the post storage operations the service needs.
type PostRepository interface {
	List(ctx context.Context, filter repositories.PostListFilter) ([]*models.Post, int64, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	SlugInUse(ctx context.Context, slug, excludeID string) (bool, error)
	Create(ctx context.Context, q database.Querier, params repositories.CreatePostParams) (*models.Post, error)
	Update(ctx context.Context, q database.Querier, id string, params repositories.UpdatePostParams) (*models.Post, error)
	SetStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	EnsureTerms(ctx context.Context, q database.Querier, kind string, names, slugs []string) ([]string, error)
	SetPostCategories(ctx context.Context, q database.Querier, postID string, categoryIDs []string) error
	SetPostTags(ctx context.Context, q database.Querier, postID string, tagIDs []string) error
	ListTerms(ctx context.Context, kind string) ([]models.Term, error)
}

// PostService handles blog post business logic.
type PostService struct {
	posts  PostRepository
	db     Transactor
	logger *slog.Logger
}

func NewPostService(posts PostRepository, db Transactor, logger *slog.Logger) *PostService {
	return &PostService{posts: posts, db: db, logger: logger}
}

// PostInput is the write shape shared by create and update.
type PostInput struct {
	Title        string
	Content      string
	Excerpt      string
	Status       string
	ActivityDate *time.Time
	CoverURL     string
	Categories   []string
	Tags         []string
}

// ListPublished serves the public feed. Only published posts are visible
// regardless of the requested filter.
func (s *PostService) ListPublished(ctx context.Context, filter repositories.PostListFilter) ([]*models.Post, int64, error) {
	filter.Status = models.PostStatusPublished
	posts, total, err := s.posts.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list published posts", slog.Any("error", err))
		return nil, 0, models.ErrInternalServer
	}
	return posts, total, nil
}

// ListAll serves the admin dashboard and honors the status filter as given.
func (s *PostService) ListAll(ctx context.Context, filter repositories.PostListFilter) ([]*models.Post, int64, error) {
	if filter.Status != "" && !models.ValidPostStatus(filter.Status) {
		return nil, 0, models.ErrBadRequest
	}
	posts, total, err := s.posts.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list posts", slog.Any("error", err))
		return nil, 0, models.ErrInternalServer
	}
	return posts, total, nil
}

// GetPublishedBySlug returns a published post or NotFound. Drafts and
// archived posts are invisible through the public path.
func (s *PostService) GetPublishedBySlug(ctx context.Context, slug string) (*models.Post, error) {
	post, err := s.posts.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to load post by slug", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if post.Status != models.PostStatusPublished {
		return nil, models.ErrNotFound
	}
	return post, nil
}

func (s *PostService) GetByID(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to load post", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return post, nil
}

// Create inserts a post with its terms in one transaction. The slug comes
// from the title; on a collision a unique suffix is appended. Uniqueness is
// resolved before the transaction opens, because a unique-violation inside
// the transaction aborts it and no retry on the same connection can succeed.
func (s *PostService) Create(ctx context.Context, authorID string, input PostInput) (*models.Post, error) {
	status := input.Status
	if status == "" {
		status = models.PostStatusDraft
	}
	if !models.ValidPostStatus(status) {
		return nil, models.ErrBadRequest
	}

	slug, err := s.resolveSlug(ctx, pkgslug.Make(input.Title), "")
	if err != nil {
		return nil, err
	}

	var created *models.Post
	err = s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		params := repositories.CreatePostParams{
			Title:        input.Title,
			Slug:         slug,
			Content:      input.Content,
			Excerpt:      input.Excerpt,
			Status:       status,
			ActivityDate: input.ActivityDate,
			CoverURL:     input.CoverURL,
			AuthorID:     authorID,
		}

		post, err := s.posts.Create(ctx, tx, params)
		if err != nil {
			return err
		}

		if err := s.applyTerms(ctx, tx, post.ID, input); err != nil {
			return err
		}
		created = post
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) || errors.Is(err, models.ErrBadRequest) {
			return nil, err
		}
		s.logger.Error("failed to create post", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return s.GetByID(ctx, created.ID)
}

// Update rewrites the post and replaces its term links in one transaction.
func (s *PostService) Update(ctx context.Context, id string, input PostInput) (*models.Post, error) {
	if input.Status != "" && !models.ValidPostStatus(input.Status) {
		return nil, models.ErrBadRequest
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = existing.Status
	}
	slug := existing.Slug
	if input.Title != existing.Title {
		slug, err = s.resolveSlug(ctx, pkgslug.Make(input.Title), id)
		if err != nil {
			return nil, err
		}
	}

	err = s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		params := repositories.UpdatePostParams{
			Title:        input.Title,
			Slug:         slug,
			Content:      input.Content,
			Excerpt:      input.Excerpt,
			Status:       status,
			ActivityDate: input.ActivityDate,
			CoverURL:     input.CoverURL,
		}

		if _, err := s.posts.Update(ctx, tx, id, params); err != nil {
			return err
		}
		return s.applyTerms(ctx, tx, id, input)
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrBadRequest) || errors.Is(err, models.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to update post", slog.String("post_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return s.GetByID(ctx, id)
}

func (s *PostService) SetStatus(ctx context.Context, id, status string) error {
	if !models.ValidPostStatus(status) {
		return models.ErrBadRequest
	}
	if err := s.posts.SetStatus(ctx, id, status); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to set post status", slog.String("post_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}

func (s *PostService) Delete(ctx context.Context, id string) error {
	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete post", slog.String("post_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}

func (s *PostService) ListCategories(ctx context.Context) ([]models.Term, error) {
	terms, err := s.posts.ListTerms(ctx, "categories")
	if err != nil {
		s.logger.Error("failed to list categories", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return terms, nil
}

func (s *PostService) ListTags(ctx context.Context) ([]models.Term, error) {
	terms, err := s.posts.ListTerms(ctx, "tags")
	if err != nil {
		s.logger.Error("failed to list tags", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return terms, nil
}

func (s *PostService) applyTerms(ctx context.Context, tx pgx.Tx, postID string, input PostInput) error {
	categoryIDs, err := s.posts.EnsureTerms(ctx, tx, "categories", input.Categories, slugsFor(input.Categories))
	if err != nil {
		return err
	}
	if err := s.posts.SetPostCategories(ctx, tx, postID, categoryIDs); err != nil {
		return err
	}

	tagIDs, err := s.posts.EnsureTerms(ctx, tx, "tags", input.Tags, slugsFor(input.Tags))
	if err != nil {
		return err
	}
	return s.posts.SetPostTags(ctx, tx, postID, tagIDs)
}

// resolveSlug returns base unchanged when it is free, or with a unique
// suffix appended when another post holds it. A concurrent insert between
// the check and the write still surfaces as a conflict.
func (s *PostService) resolveSlug(ctx context.Context, base, excludeID string) (string, error) {
	inUse, err := s.posts.SlugInUse(ctx, base, excludeID)
	if err != nil {
		s.logger.Error("failed to check slug", slog.String("slug", base), slog.Any("error", err))
		return "", models.ErrInternalServer
	}
	if inUse {
		return base + "-" + uniqueSlugSuffix(), nil
	}
	return base, nil
}

// uniqueSlugSuffix disambiguates a colliding slug.
func uniqueSlugSuffix() string {
	return uuid.New().String()[:8]
}

func slugsFor(names []string) []string {
	slugs := make([]string, len(names))
	for i, name := range names {
		slugs[i] = pkgslug.Make(name)
	}
	return slugs
}
