package models

import "time"

// Post publication workflow states.
const (
	PostStatusDraft     = "DRAFT"
	PostStatusPublished = "PUBLISHED"
	PostStatusArchived  = "ARCHIVED"
)

// ValidPostStatus reports whether s is a known workflow state.
func ValidPostStatus(s string) bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusArchived:
		return true
	}
	return false
}

type Post struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Content      string     `json:"content"`
	Excerpt      string     `json:"excerpt,omitempty"`
	Status       string     `json:"status"`
	ActivityDate *time.Time `json:"activityDate,omitempty"`
	CoverURL     string     `json:"coverUrl,omitempty"`
	AuthorID     string     `json:"authorId"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	Author     *PostAuthor `json:"author,omitempty"`
	Categories []Term      `json:"categories,omitempty"`
	Tags       []Term      `json:"tags,omitempty"`
}

// PostAuthor is the byline shape embedded in post responses. It carries no
// account-security fields.
type PostAuthor struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Term is a category or tag. Both share the same shape and slug rules.
type Term struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
}
