package credential

import (
	"context"
)

// Repository определяет операции хранения записей об опыте.
type Repository interface {
	// Create сохраняет новую запись.
	// Возвращает ErrCredentialDuplicate при совпадении (профиль, роль, организация).
	Create(ctx context.Context, c *Credential) error

	// GetByID возвращает запись по ID.
	// Возвращает ErrCredentialNotFound, если запись не найдена.
	GetByID(ctx context.Context, id string) (*Credential, error)

	// Update сохраняет поля записи и статус подтверждения.
	Update(ctx context.Context, c *Credential) error

	// Delete удаляет запись.
	Delete(ctx context.Context, id string) error

	// ListByProfile возвращает записи профиля, новые первыми.
	ListByProfile(ctx context.Context, profileID string) ([]*Credential, error)

	// CountVerifiedRecognized считает подтверждённые записи профиля
	// с признанным уровнем опыта. Основа флага is_professional.
	CountVerifiedRecognized(ctx context.Context, profileID string) (int, error)
}
