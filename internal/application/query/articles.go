package query

import (
	"context"

	"github.com/devask/devask-hub/internal/application/cache"
	"github.com/devask/devask-hub/internal/domain/access"
	"github.com/devask/devask-hub/internal/domain/article"
	"github.com/devask/devask-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET ARTICLE QUERY
// Черновик виден только автору; для остальных его нет.
// ══════════════════════════════════════════════════════════════════════════════

// GetArticleQuery содержит ID статьи и того, кто спрашивает.
type GetArticleQuery struct {
	Caller    access.Caller
	ArticleID string
}

// GetArticleHandler обрабатывает GetArticleQuery.
type GetArticleHandler struct {
	deps Deps
}

// NewGetArticleHandler создаёт обработчик.
func NewGetArticleHandler(deps Deps) *GetArticleHandler {
	return &GetArticleHandler{deps: deps.withDefaults()}
}

// Handle выполняет запрос.
func (h *GetArticleHandler) Handle(ctx context.Context, q GetArticleQuery) (*ArticleDTO, error) {
	dto, err := cached(ctx, h.deps, cache.ArticleDetailKey(q.ArticleID), func(ctx context.Context) (ArticleDTO, error) {
		found, err := h.deps.Articles.GetByID(ctx, q.ArticleID)
		if err != nil {
			return ArticleDTO{}, err
		}
		dtos, err := newAssembler(h.deps).articles(ctx, []*article.Article{found})
		if err != nil {
			return ArticleDTO{}, err
		}
		return dtos[0], nil
	})
	if err != nil {
		return nil, err
	}

	if !dto.IsPublished && (dto.Author == nil || dto.Author.ID != q.Caller.ProfileID) {
		return nil, shared.ErrArticleNotFound
	}
	return &dto, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LIST ARTICLES QUERY
// ══════════════════════════════════════════════════════════════════════════════

// ListArticlesQuery содержит фильтры списка статей.
type ListArticlesQuery struct {
	Caller access.Caller
	// AuthorID - только статьи этого автора (пусто - все).
	AuthorID string
	// IncludeDrafts учитывается, только если автор запрашивает свои статьи.
	IncludeDrafts bool
	Page          shared.Page
}

// Validate нормализует параметры запроса.
func (q *ListArticlesQuery) Validate() error {
	if q.Page.Offset < 0 {
		return shared.Invalid("article", "List", "offset cannot be negative")
	}
	q.Page = q.Page.Normalize()
	if q.AuthorID == "" || q.AuthorID != q.Caller.ProfileID {
		q.IncludeDrafts = false
	}
	return nil
}

// ListArticlesHandler обрабатывает ListArticlesQuery.
type ListArticlesHandler struct {
	deps Deps
}

// NewListArticlesHandler создаёт обработчик.
func NewListArticlesHandler(deps Deps) *ListArticlesHandler {
	return &ListArticlesHandler{deps: deps.withDefaults()}
}

// Handle выполняет запрос.
func (h *ListArticlesHandler) Handle(ctx context.Context, q ListArticlesQuery) ([]ArticleDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	f := article.Filter{AuthorID: q.AuthorID, IncludeDrafts: q.IncludeDrafts, Page: q.Page}
	load := func(ctx context.Context) ([]ArticleDTO, error) {
		list, err := h.deps.Articles.List(ctx, f)
		if err != nil {
			return nil, err
		}
		return newAssembler(h.deps).articles(ctx, list)
	}

	if f.IsDefault() {
		return cached(ctx, h.deps, cache.ArticleListKey, load)
	}
	return load(ctx)
}
