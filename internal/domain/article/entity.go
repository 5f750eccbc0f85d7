// Package article содержит доменную модель статьи.
package article

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/devask/devask-hub/internal/domain/shared"
)

// MaxTitleLength - максимальная длина заголовка статьи.
const MaxTitleLength = 255

// Article - сущность статьи.
type Article struct {
	ID            string
	Title         string
	Slug          string
	Content       string
	IsPublished   bool
	AuthorID      string
	TechnologyIDs []string
	LikesCount    int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewArticleParams - параметры для создания статьи.
type NewArticleParams struct {
	Title         string
	Content       string
	AuthorID      string
	TechnologyIDs []string
	Unpublished   bool
}

// NewArticle создаёт новую статью. Slug строится из заголовка и короткого
// суффикса ID, поэтому одинаковые заголовки не конфликтуют.
func NewArticle(params NewArticleParams) (*Article, error) {
	title, content, err := validate(params.Title, params.Content)
	if err != nil {
		return nil, err
	}
	if params.AuthorID == "" {
		return nil, shared.Invalid("article", "Create", "author is required")
	}

	id := shared.NewID()
	now := time.Now().UTC()
	return &Article{
		ID:            id,
		Title:         title,
		Slug:          makeSlug(title, id),
		Content:       content,
		IsPublished:   !params.Unpublished,
		AuthorID:      params.AuthorID,
		TechnologyIDs: params.TechnologyIDs,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// OwnerID возвращает автора статьи.
func (a *Article) OwnerID() string {
	return a.AuthorID
}

// UpdateParams - изменяемые автором поля. nil означает "не менять".
type UpdateParams struct {
	Title         *string
	Content       *string
	IsPublished   *bool
	TechnologyIDs *[]string
}

// Update применяет частичное обновление. Смена заголовка меняет slug.
func (a *Article) Update(params UpdateParams) error {
	title, content := a.Title, a.Content
	if params.Title != nil {
		title = *params.Title
	}
	if params.Content != nil {
		content = *params.Content
	}
	title, content, err := validate(title, content)
	if err != nil {
		return err
	}
	if title != a.Title {
		a.Slug = makeSlug(title, a.ID)
	}
	a.Title, a.Content = title, content
	if params.IsPublished != nil {
		a.IsPublished = *params.IsPublished
	}
	if params.TechnologyIDs != nil {
		a.TechnologyIDs = *params.TechnologyIDs
	}
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func validate(title, content string) (string, string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", "", shared.ErrEmptyTitle
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", "", shared.ErrTitleTooLong
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", "", shared.ErrEmptyContent
	}
	return title, content, nil
}

func makeSlug(title, id string) string {
	suffix := id
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	base := shared.Slugify(title)
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}

// Filter - параметры выборки статей, новые первыми.
type Filter struct {
	AuthorID string
	// IncludeDrafts включает неопубликованные статьи автора AuthorID.
	IncludeDrafts bool
	Page          shared.Page
}

// IsDefault проверяет, что запрошена первая страница всех опубликованных
// статей. Только такой список кешируется.
func (f Filter) IsDefault() bool {
	return f.AuthorID == "" && !f.IncludeDrafts && f.Page.IsFirst()
}
