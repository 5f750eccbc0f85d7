package question

import (
	"context"
)

// Repository определяет операции хранения вопросов.
type Repository interface {
	// Create сохраняет новый вопрос вместе с технологиями.
	Create(ctx context.Context, q *Question) error

	// GetByID возвращает вопрос по ID независимо от публикации.
	// Возвращает ErrQuestionNotFound, если вопрос не найден.
	GetByID(ctx context.Context, id string) (*Question, error)

	// Update сохраняет заголовок, текст, публикацию и технологии.
	Update(ctx context.Context, q *Question) error

	// SetSolutioned меняет только флаг решённости.
	SetSolutioned(ctx context.Context, id string, solutioned bool) error

	// Delete удаляет вопрос и каскадно все его ответы.
	Delete(ctx context.Context, id string) error

	// ListByOwner возвращает все вопросы профиля, включая неопубликованные.
	// Используется при удалении профиля.
	ListByOwner(ctx context.Context, ownerID string) ([]*Question, error)

	// ListPublished возвращает опубликованные вопросы по фильтру.
	ListPublished(ctx context.Context, f Filter) ([]*Question, error)

	// ToggleLike добавляет или снимает лайк профиля.
	// Возвращает новое состояние и количество лайков.
	ToggleLike(ctx context.Context, id, profileID string) (liked bool, count int, err error)
}
