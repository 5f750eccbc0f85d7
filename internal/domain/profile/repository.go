package profile

import (
	"context"

	"github.com/devask/devask-hub/internal/domain/reputation"
	"github.com/devask/devask-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Реализации находятся в infrastructure/persistence (postgres и memory).
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции хранения профилей.
type Repository interface {
	// Create сохраняет новый профиль.
	// Возвращает ErrUsernameTaken, если логин занят.
	Create(ctx context.Context, p *Profile) error

	// GetByID возвращает профиль по ID.
	// Возвращает ErrProfileNotFound, если профиль не найден.
	GetByID(ctx context.Context, id string) (*Profile, error)

	// GetForUpdate возвращает профиль и блокирует его строку до конца
	// транзакции. Вызывается перед изменением репутации.
	GetForUpdate(ctx context.Context, id string) (*Profile, error)

	// GetByUsername возвращает профиль по логину (для аутентификации).
	GetByUsername(ctx context.Context, username string) (*Profile, error)

	// GetByIDs возвращает профили по списку ID. Отсутствующие пропускаются.
	GetByIDs(ctx context.Context, ids []string) ([]*Profile, error)

	// List возвращает профили, отсортированные по репутации.
	List(ctx context.Context, page shared.Page) ([]*Profile, error)

	// Update сохраняет изменения публичных полей профиля.
	Update(ctx context.Context, p *Profile) error

	// UpdateStanding сохраняет производные поля репутации.
	UpdateStanding(ctx context.Context, id string, s reputation.Standing) error

	// Delete удаляет профиль вместе со всем его контентом.
	Delete(ctx context.Context, id string) error

	// Stats считает опубликованные статьи и принятые ответы профиля.
	Stats(ctx context.Context, id string) (Stats, error)
}
