package answer

import (
	"context"
)

// Repository определяет операции хранения ответов.
type Repository interface {
	// Create сохраняет новый ответ.
	Create(ctx context.Context, a *Answer) error

	// GetByID возвращает ответ по ID.
	// Возвращает ErrAnswerNotFound, если ответ не найден.
	GetByID(ctx context.Context, id string) (*Answer, error)

	// GetForUpdate возвращает ответ и блокирует его строку до конца
	// транзакции, чтобы флаг принятия не изменился параллельно.
	GetForUpdate(ctx context.Context, id string) (*Answer, error)

	// Update сохраняет текст ответа.
	Update(ctx context.Context, a *Answer) error

	// SetAccepted меняет флаг принятия.
	// Возвращает ErrAnotherAnswerAccepted, если хранилище обнаружило второй
	// принятый ответ у того же вопроса.
	SetAccepted(ctx context.Context, id string, accepted bool) error

	// Delete удаляет ответ.
	Delete(ctx context.Context, id string) error

	// ListByQuestion возвращает ответы вопроса: принятый первым, затем по дате.
	ListByQuestion(ctx context.Context, questionID string) ([]*Answer, error)

	// FindAccepted возвращает принятый ответ вопроса или nil, если его нет.
	FindAccepted(ctx context.Context, questionID string) (*Answer, error)

	// ListByAuthor возвращает все ответы автора в порядке создания.
	// Используется при удалении профиля.
	ListByAuthor(ctx context.Context, authorID string) ([]*Answer, error)

	// ToggleUpvote добавляет или снимает голос профиля.
	ToggleUpvote(ctx context.Context, id, profileID string) (upvoted bool, count int, err error)
}
