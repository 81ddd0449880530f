package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/database"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/models"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/repositories"
)

func newTestPostService(posts *MockPostRepository) *PostService {
	return NewPostService(posts, &MockTransactor{}, testLogger())
}

func TestPostService_ListPublished_ForcesStatusFilter(t *testing.T) {
	var seenFilter repositories.PostListFilter
	posts := &MockPostRepository{
		ListFunc: func(ctx context.Context, filter repositories.PostListFilter) ([]*models.Post, int64, error) {
			seenFilter = filter
			return []*models.Post{{ID: "p1", Status: models.PostStatusPublished}}, 1, nil
		},
	}
	svc := newTestPostService(posts)

	result, total, err := svc.ListPublished(context.Background(), repositories.PostListFilter{Status: models.PostStatusDraft})

	require.NoError(t, err)
	assert.Equal(t, models.PostStatusPublished, seenFilter.Status)
	assert.Equal(t, int64(1), total)
	assert.Len(t, result, 1)
}

func TestPostService_GetPublishedBySlug_HidesDrafts(t *testing.T) {
	posts := &MockPostRepository{
		GetBySlugFunc: func(ctx context.Context, slug string) (*models.Post, error) {
			return &models.Post{ID: "p1", Slug: slug, Status: models.PostStatusDraft}, nil
		},
	}
	svc := newTestPostService(posts)

	_, err := svc.GetPublishedBySlug(context.Background(), "hidden-draft")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPostService_Create_SlugsTitleAndAttachesTerms(t *testing.T) {
	var createdParams repositories.CreatePostParams
	var categoryNames []string
	var linkedCategories []string

	posts := &MockPostRepository{
		CreateFunc: func(ctx context.Context, q database.Querier, params repositories.CreatePostParams) (*models.Post, error) {
			createdParams = params
			return &models.Post{ID: "p1", Slug: params.Slug, Status: params.Status}, nil
		},
		EnsureTermsFunc: func(ctx context.Context, q database.Querier, kind string, names, slugs []string) ([]string, error) {
			if kind == "categories" {
				categoryNames = names
			}
			ids := make([]string, len(names))
			for i := range names {
				ids[i] = kind + "-" + slugs[i]
			}
			return ids, nil
		},
		SetPostCategoriesFunc: func(ctx context.Context, q database.Querier, postID string, categoryIDs []string) error {
			linkedCategories = categoryIDs
			return nil
		},
		GetByIDFunc: func(ctx context.Context, id string) (*models.Post, error) {
			return &models.Post{ID: id, Status: models.PostStatusDraft}, nil
		},
	}
	svc := newTestPostService(posts)

	post, err := svc.Create(context.Background(), "admin-1", PostInput{
		Title:      "Vera Shkollore 2026",
		Content:    "body",
		Categories: []string{"Aktivitete"},
	})

	require.NoError(t, err)
	assert.Equal(t, "p1", post.ID)
	assert.Equal(t, "vera-shkollore-2026", createdParams.Slug)
	assert.Equal(t, models.PostStatusDraft, createdParams.Status, "default status is draft")
	assert.Equal(t, []string{"Aktivitete"}, categoryNames)
	assert.Equal(t, []string{"categories-aktivitete"}, linkedCategories)
}

func TestPostService_Create_SuffixesSlugWhenTaken(t *testing.T) {
	var checkedSlug string
	var createdSlug string
	attempts := 0

	posts := &MockPostRepository{
		SlugInUseFunc: func(ctx context.Context, slug, excludeID string) (bool, error) {
			checkedSlug = slug
			assert.Empty(t, excludeID)
			return true, nil
		},
		CreateFunc: func(ctx context.Context, q database.Querier, params repositories.CreatePostParams) (*models.Post, error) {
			attempts++
			createdSlug = params.Slug
			return &models.Post{ID: "p1", Slug: params.Slug}, nil
		},
		GetByIDFunc: func(ctx context.Context, id string) (*models.Post, error) {
			return &models.Post{ID: id}, nil
		},
	}
	svc := newTestPostService(posts)

	_, err := svc.Create(context.Background(), "admin-1", PostInput{Title: "Duplicate Title", Content: "body"})

	require.NoError(t, err)
	assert.Equal(t, "duplicate-title", checkedSlug)
	assert.Contains(t, createdSlug, "duplicate-title-")
	assert.NotEqual(t, "duplicate-title", createdSlug)

	// The suffixed slug is resolved before the transaction, so the insert
	// runs exactly once. A conflict inside the transaction aborts it and a
	// retry on the same connection cannot succeed.
	assert.Equal(t, 1, attempts)
}

func TestPostService_Create_ConflictFromConcurrentInsert(t *testing.T) {
	attempts := 0

	posts := &MockPostRepository{
		SlugInUseFunc: func(ctx context.Context, slug, excludeID string) (bool, error) {
			return false, nil
		},
		CreateFunc: func(ctx context.Context, q database.Querier, params repositories.CreatePostParams) (*models.Post, error) {
			attempts++
			return nil, models.ErrConflict
		},
	}
	svc := newTestPostService(posts)

	_, err := svc.Create(context.Background(), "admin-1", PostInput{Title: "Racy Title", Content: "body"})

	assert.ErrorIs(t, err, models.ErrConflict)
	assert.Equal(t, 1, attempts, "no in-transaction retry after the insert fails")
}

func TestPostService_Update_ResolvesSlugExcludingSelf(t *testing.T) {
	var excluded string
	var updatedSlug string

	posts := &MockPostRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Post, error) {
			return &models.Post{ID: id, Title: "Old Title", Slug: "old-title", Status: models.PostStatusDraft}, nil
		},
		SlugInUseFunc: func(ctx context.Context, slug, excludeID string) (bool, error) {
			excluded = excludeID
			return true, nil
		},
		UpdateFunc: func(ctx context.Context, q database.Querier, id string, params repositories.UpdatePostParams) (*models.Post, error) {
			updatedSlug = params.Slug
			return &models.Post{ID: id, Slug: params.Slug}, nil
		},
	}
	svc := newTestPostService(posts)

	_, err := svc.Update(context.Background(), "p1", PostInput{Title: "Taken Title", Content: "body"})

	require.NoError(t, err)
	assert.Equal(t, "p1", excluded)
	assert.Contains(t, updatedSlug, "taken-title-")
}

func TestPostService_Create_RejectsUnknownStatus(t *testing.T) {
	svc := newTestPostService(&MockPostRepository{})

	_, err := svc.Create(context.Background(), "admin-1", PostInput{Title: "t", Content: "c", Status: "LIVE"})
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestPostService_SetStatus_Validates(t *testing.T) {
	svc := newTestPostService(&MockPostRepository{})

	assert.ErrorIs(t, svc.SetStatus(context.Background(), "p1", "NOPE"), models.ErrBadRequest)
	assert.NoError(t, svc.SetStatus(context.Background(), "p1", models.PostStatusArchived))
}

func TestPostService_Delete_NotFound(t *testing.T) {
	posts := &MockPostRepository{
		DeleteFunc: func(ctx context.Context, id string) error {
			return models.ErrNotFound
		},
	}
	svc := newTestPostService(posts)

	assert.ErrorIs(t, svc.Delete(context.Background(), "missing"), models.ErrNotFound)
}
