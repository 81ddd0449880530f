package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/database"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/models"
)

type PostRepository struct {
	pool database.Querier
}

func NewPostRepository(db *database.DB) *PostRepository {
	return &PostRepository{pool: db.Pool}
}

const postColumns = `p.id, p.title, p.slug, p.content, p.excerpt, p.status,
	p.activity_date, p.cover_url, p.author_id, p.created_at, p.updated_at`

// postColumns without the SELECT alias, for INSERT/UPDATE ... RETURNING.
var postReturning = strings.ReplaceAll(postColumns, "p.", "")

func scanPostRow(scanner rowScanner) (*models.Post, error) {
	var post models.Post
	var excerpt, coverURL *string
	var activityDate *time.Time

	err := scanner.Scan(
		&post.ID, &post.Title, &post.Slug, &post.Content, &excerpt, &post.Status,
		&activityDate, &coverURL, &post.AuthorID, &post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if excerpt != nil {
		post.Excerpt = *excerpt
	}
	if coverURL != nil {
		post.CoverURL = *coverURL
	}
	post.ActivityDate = activityDate
	return &post, nil
}

// PostListFilter narrows List results. Zero values mean no constraint.
type PostListFilter struct {
	Status   string
	Category string // category slug
	Tag      string // tag slug
	Search   string // matches title or excerpt, case-insensitive
	Page     int
	PerPage  int
}

// List returns a page of posts newest-first plus the total count for the
// same filter, so handlers can report pagination metadata.
func (r *PostRepository) List(ctx context.Context, filter PostListFilter) ([]*models.Post, int64, error) {
	where := []string{}
	args := []any{}

	addArg := func(clause string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if filter.Status != "" {
		addArg("p.status = $%d", filter.Status)
	}
	if filter.Category != "" {
		addArg(`p.id IN (
			SELECT pc.post_id FROM post_categories pc
			JOIN categories c ON c.id = pc.category_id
			WHERE c.slug = $%d)`, filter.Category)
	}
	if filter.Tag != "" {
		addArg(`p.id IN (
			SELECT pt.post_id FROM post_tags pt
			JOIN tags t ON t.id = pt.tag_id
			WHERE t.slug = $%d)`, filter.Tag)
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("(p.title ILIKE $%d OR p.excerpt ILIKE $%d)", len(args), len(args)))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM posts p ` + whereClause
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, database.MapPostgresError(err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}
	args = append(args, perPage, (page-1)*perPage)

	query := fmt.Sprintf(`
		SELECT `+postColumns+`
		FROM posts p
		%s
		ORDER BY COALESCE(p.activity_date, p.created_at) DESC
		LIMIT $%d OFFSET $%d`, whereClause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, database.MapPostgresError(err)
	}
	defer rows.Close()

	posts := []*models.Post{}
	for rows.Next() {
		post, err := scanPostRow(rows)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, database.MapPostgresError(err)
	}

	if err := r.loadRelations(ctx, posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p WHERE p.id = $1`
	post, err := scanPostRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadRelations(ctx, []*models.Post{post}); err != nil {
		return nil, err
	}
	return post, nil
}

func (r *PostRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p WHERE p.slug = $1`
	post, err := scanPostRow(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		return nil, err
	}
	if err := r.loadRelations(ctx, []*models.Post{post}); err != nil {
		return nil, err
	}
	return post, nil
}

// SlugInUse reports whether another post already holds the slug. excludeID
// skips the post being updated; pass "" when creating.
func (r *PostRepository) SlugInUse(ctx context.Context, slug, excludeID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM posts WHERE slug = $1 AND ($2 = '' OR id::text <> $2))`
	var inUse bool
	if err := r.pool.QueryRow(ctx, query, slug, excludeID).Scan(&inUse); err != nil {
		return false, database.MapPostgresError(err)
	}
	return inUse, nil
}

type CreatePostParams struct {
	Title        string
	Slug         string
	Content      string
	Excerpt      string
	Status       string
	ActivityDate *time.Time
	CoverURL     string
	AuthorID     string
}

func (r *PostRepository) Create(ctx context.Context, q database.Querier, params CreatePostParams) (*models.Post, error) {
	query := `
		INSERT INTO posts (id, title, slug, content, excerpt, status, activity_date, cover_url, author_id)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, NULLIF($8, ''), $9)
		RETURNING ` + postReturning

	return scanPostRow(q.QueryRow(ctx, query,
		uuid.New().String(), params.Title, params.Slug, params.Content,
		params.Excerpt, params.Status, params.ActivityDate, params.CoverURL, params.AuthorID,
	))
}

type UpdatePostParams struct {
	Title        string
	Slug         string
	Content      string
	Excerpt      string
	Status       string
	ActivityDate *time.Time
	CoverURL     string
}

func (r *PostRepository) Update(ctx context.Context, q database.Querier, id string, params UpdatePostParams) (*models.Post, error) {
	query := `
		UPDATE posts SET
			title = $2, slug = $3, content = $4, excerpt = NULLIF($5, ''),
			status = $6, activity_date = $7, cover_url = NULLIF($8, ''), updated_at = NOW()
		WHERE id = $1
		RETURNING ` + postReturning

	return scanPostRow(q.QueryRow(ctx, query,
		id, params.Title, params.Slug, params.Content, params.Excerpt,
		params.Status, params.ActivityDate, params.CoverURL,
	))
}

func (r *PostRepository) SetStatus(ctx context.Context, id, status string) error {
	query := `UPDATE posts SET status = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// EnsureTerms upserts categories or tags by slug and returns their ids in
// input order. kind must be "categories" or "tags".
func (r *PostRepository) EnsureTerms(ctx context.Context, q database.Querier, kind string, names, slugs []string) ([]string, error) {
	if kind != "categories" && kind != "tags" {
		return nil, models.ErrBadRequest
	}

	ids := make([]string, 0, len(names))
	for i := range names {
		query := `
			INSERT INTO ` + kind + ` (id, name, slug)
			VALUES ($1, $2, $3)
			ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`

		var id string
		if err := q.QueryRow(ctx, query, uuid.New().String(), names[i], slugs[i]).Scan(&id); err != nil {
			return nil, database.MapPostgresError(err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// SetPostCategories replaces the post's category links.
func (r *PostRepository) SetPostCategories(ctx context.Context, q database.Querier, postID string, categoryIDs []string) error {
	return r.setJoinRows(ctx, q, "post_categories", "category_id", postID, categoryIDs)
}

// SetPostTags replaces the post's tag links.
func (r *PostRepository) SetPostTags(ctx context.Context, q database.Querier, postID string, tagIDs []string) error {
	return r.setJoinRows(ctx, q, "post_tags", "tag_id", postID, tagIDs)
}

func (r *PostRepository) setJoinRows(ctx context.Context, q database.Querier, table, column, postID string, ids []string) error {
	if _, err := q.Exec(ctx, `DELETE FROM `+table+` WHERE post_id = $1`, postID); err != nil {
		return database.MapPostgresError(err)
	}
	for _, id := range ids {
		query := `INSERT INTO ` + table + ` (post_id, ` + column + `) VALUES ($1, $2) ON CONFLICT DO NOTHING`
		if _, err := q.Exec(ctx, query, postID, id); err != nil {
			return database.MapPostgresError(err)
		}
	}
	return nil
}

// ListTerms returns all categories or tags ordered by name.
func (r *PostRepository) ListTerms(ctx context.Context, kind string) ([]models.Term, error) {
	if kind != "categories" && kind != "tags" {
		return nil, models.ErrBadRequest
	}

	rows, err := r.pool.Query(ctx, `SELECT id, name, slug, created_at FROM `+kind+` ORDER BY name`)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	defer rows.Close()

	terms := []models.Term{}
	for rows.Next() {
		var t models.Term
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return nil, database.MapPostgresError(err)
		}
		terms = append(terms, t)
	}
	return terms, database.MapPostgresError(rows.Err())
}

// loadRelations fills Author, Categories and Tags for a batch of posts.
func (r *PostRepository) loadRelations(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	byID := make(map[string]*models.Post, len(posts))
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	authorQuery := `
		SELECT p.id, a.id, a.email, COALESCE(a.name, ''), a.role
		FROM posts p
		JOIN admins a ON a.id = p.author_id
		WHERE p.id = ANY($1)`
	rows, err := r.pool.Query(ctx, authorQuery, ids)
	if err != nil {
		return database.MapPostgresError(err)
	}
	for rows.Next() {
		var postID string
		var author models.PostAuthor
		if err := rows.Scan(&postID, &author.ID, &author.Email, &author.Name, &author.Role); err != nil {
			rows.Close()
			return database.MapPostgresError(err)
		}
		if p, ok := byID[postID]; ok {
			p.Author = &author
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return database.MapPostgresError(err)
	}

	if err := r.loadTerms(ctx, byID, ids, "categories", "post_categories", "category_id"); err != nil {
		return err
	}
	return r.loadTerms(ctx, byID, ids, "tags", "post_tags", "tag_id")
}

func (r *PostRepository) loadTerms(ctx context.Context, byID map[string]*models.Post, ids []string, table, joinTable, joinColumn string) error {
	query := `
		SELECT j.post_id, t.id, t.name, t.slug, t.created_at
		FROM ` + joinTable + ` j
		JOIN ` + table + ` t ON t.id = j.` + joinColumn + `
		WHERE j.post_id = ANY($1)
		ORDER BY t.name`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return database.MapPostgresError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var postID string
		var term models.Term
		if err := rows.Scan(&postID, &term.ID, &term.Name, &term.Slug, &term.CreatedAt); err != nil {
			return database.MapPostgresError(err)
		}
		post, ok := byID[postID]
		if !ok {
			continue
		}
		if table == "categories" {
			post.Categories = append(post.Categories, term)
		} else {
			post.Tags = append(post.Tags, term)
		}
	}
	return database.MapPostgresError(rows.Err())
}
