package article

import (
	"context"
)

// Repository определяет операции хранения статей.
type Repository interface {
	// Create сохраняет новую статью вместе с технологиями.
	Create(ctx context.Context, a *Article) error

	// GetByID возвращает статью по ID.
	// Возвращает ErrArticleNotFound, если статья не найдена.
	GetByID(ctx context.Context, id string) (*Article, error)

	// Update сохраняет изменения статьи.
	Update(ctx context.Context, a *Article) error

	// Delete удаляет статью.
	Delete(ctx context.Context, id string) error

	// List возвращает статьи по фильтру.
	List(ctx context.Context, f Filter) ([]*Article, error)

	// ToggleLike добавляет или снимает лайк профиля.
	ToggleLike(ctx context.Context, id, profileID string) (liked bool, count int, err error)
}
