// Package technology содержит справочник технологий (тегов), которыми
// помечаются вопросы и статьи. Управляет справочником только администратор.
package technology

import (
	"context"
	"strings"

	"github.com/devask/devask-hub/internal/domain/shared"
)

// DefaultColor - цвет тега по умолчанию.
const DefaultColor = "#5e6e7d"

// Technology - тег технологии. Name и Slug уникальны.
type Technology struct {
	ID        string
	Name      string
	Slug      string
	Color     string
	LogoURL   string
	PrismLang string
}

// Fields - редактируемые поля тега.
type Fields struct {
	Name      string
	Color     string
	LogoURL   string
	PrismLang string
}

// NewTechnology создаёт тег. Slug выводится из имени.
func NewTechnology(f Fields) (*Technology, error) {
	t := &Technology{ID: shared.NewID()}
	if err := t.Apply(f); err != nil {
		return nil, err
	}
	return t, nil
}

// Apply заменяет поля тега.
func (t *Technology) Apply(f Fields) error {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return shared.Invalid("technology", "Validate", "name is required")
	}
	slug := shared.Slugify(name)
	if slug == "" {
		return shared.Invalid("technology", "Validate", "name must contain letters or digits")
	}
	color := strings.TrimSpace(f.Color)
	if color == "" {
		color = DefaultColor
	}
	if !shared.IsValidColor(color) {
		return shared.ErrInvalidColor
	}

	t.Name = name
	t.Slug = slug
	t.Color = strings.ToLower(color)
	t.LogoURL = strings.TrimSpace(f.LogoURL)
	t.PrismLang = strings.TrimSpace(f.PrismLang)
	return nil
}

// Repository определяет операции хранения тегов.
type Repository interface {
	// Create сохраняет тег. Возвращает ErrTechnologyExists при дубликате.
	Create(ctx context.Context, t *Technology) error

	// GetByID возвращает тег по ID.
	GetByID(ctx context.Context, id string) (*Technology, error)

	// GetByIDs возвращает теги по списку ID. Отсутствующие пропускаются.
	GetByIDs(ctx context.Context, ids []string) ([]*Technology, error)

	// List возвращает все теги по имени.
	List(ctx context.Context) ([]*Technology, error)

	// Update сохраняет изменения тега.
	Update(ctx context.Context, t *Technology) error

	// Delete удаляет тег и его связи с вопросами и статьями.
	Delete(ctx context.Context, id string) error
}
