package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/devask/devask-hub/internal/domain/article"
	"github.com/devask/devask-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ARTICLE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const articleColumns = `
	r.id, r.title, r.slug, r.content, r.is_published, r.author_id,
	ARRAY(
		SELECT rt.technology_id::text FROM article_technologies rt
		JOIN technologies t ON t.id = rt.technology_id
		WHERE rt.article_id = r.id ORDER BY t.name
	),
	(SELECT COUNT(*) FROM article_likes rl WHERE rl.article_id = r.id),
	r.created_at, r.updated_at`

// ArticleRepository implements article.Repository for PostgreSQL.
type ArticleRepository struct {
	conn *Connection
}

var _ article.Repository = (*ArticleRepository)(nil)

// NewArticleRepository creates a new ArticleRepository.
func NewArticleRepository(conn *Connection) *ArticleRepository {
	return &ArticleRepository{conn: conn}
}

// Create creates an article with its technologies.
func (r *ArticleRepository) Create(ctx context.Context, a *article.Article) error {
	return r.conn.WithinTx(ctx, func(ctx context.Context) error {
		query := `
			INSERT INTO articles (id, title, slug, content, is_published, author_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`

		_, err := r.conn.q(ctx).Exec(ctx, query,
			a.ID,
			a.Title,
			a.Slug,
			a.Content,
			a.IsPublished,
			a.AuthorID,
			a.CreatedAt,
			a.UpdatedAt,
		)
		if err != nil {
			if IsForeignKeyViolation(err) {
				return shared.ErrProfileNotFound
			}
			return fmt.Errorf("failed to create article: %w", err)
		}

		return r.conn.replaceTechnologies(ctx, articleTechnologies, a.ID, a.TechnologyIDs)
	})
}

// GetByID returns an article by ID.
func (r *ArticleRepository) GetByID(ctx context.Context, id string) (*article.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles r WHERE r.id = $1`
	return scanArticle(r.conn.q(ctx).QueryRow(ctx, query, id))
}

// Update updates an article and its technologies.
func (r *ArticleRepository) Update(ctx context.Context, a *article.Article) error {
	return r.conn.WithinTx(ctx, func(ctx context.Context) error {
		query := `
			UPDATE articles SET
				title = $1,
				slug = $2,
				content = $3,
				is_published = $4,
				updated_at = $5
			WHERE id = $6
		`

		result, err := r.conn.q(ctx).Exec(ctx, query,
			a.Title,
			a.Slug,
			a.Content,
			a.IsPublished,
			time.Now().UTC(),
			a.ID,
		)
		if err != nil {
			return notFoundOr(err, shared.ErrArticleNotFound, "update article")
		}
		if result.RowsAffected() == 0 {
			return shared.ErrArticleNotFound
		}

		return r.conn.replaceTechnologies(ctx, articleTechnologies, a.ID, a.TechnologyIDs)
	})
}

// Delete removes an article.
func (r *ArticleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.conn.q(ctx).Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return notFoundOr(err, shared.ErrArticleNotFound, "delete article")
	}
	if result.RowsAffected() == 0 {
		return shared.ErrArticleNotFound
	}

	return nil
}

// List returns articles matching the filter, newest first.
func (r *ArticleRepository) List(ctx context.Context, f article.Filter) ([]*article.Article, error) {
	var w whereBuilder
	if !f.IncludeDrafts {
		w.add("r.is_published")
	}
	if f.AuthorID != "" {
		w.add("r.author_id::text = ?", f.AuthorID)
	}

	page := f.Page.Normalize()
	query := `SELECT ` + articleColumns + ` FROM articles r` +
		w.sql() +
		` ORDER BY r.created_at DESC, r.id LIMIT ` + w.next(page.Limit) + ` OFFSET ` + w.next(page.Offset)

	rows, err := r.conn.q(ctx).Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	articles := []*article.Article{}
	for rows.Next() {
		var a article.Article
		if err := rows.Scan(articleDest(&a)...); err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return articles, nil
}

// ToggleLike adds or removes the like of a profile.
func (r *ArticleRepository) ToggleLike(ctx context.Context, id, profileID string) (bool, int, error) {
	return r.conn.toggle(ctx, articleLikes, "articles", id, profileID, shared.ErrArticleNotFound)
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPER METHODS
// ══════════════════════════════════════════════════════════════════════════════

func articleDest(a *article.Article) []interface{} {
	return []interface{}{
		&a.ID,
		&a.Title,
		&a.Slug,
		&a.Content,
		&a.IsPublished,
		&a.AuthorID,
		&a.TechnologyIDs,
		&a.LikesCount,
		&a.CreatedAt,
		&a.UpdatedAt,
	}
}

func scanArticle(row pgx.Row) (*article.Article, error) {
	var a article.Article
	if err := row.Scan(articleDest(&a)...); err != nil {
		return nil, notFoundOr(err, shared.ErrArticleNotFound, "scan article")
	}
	return &a, nil
}
