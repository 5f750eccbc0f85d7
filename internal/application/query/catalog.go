package query

import (
	"context"

	"github.com/devask/devask-hub/internal/application/cache"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREDENTIALS
// ══════════════════════════════════════════════════════════════════════════════

// GetCredentialQuery содержит ID записи.
type GetCredentialQuery struct {
	CredentialID string
}

// GetCredentialHandler обрабатывает GetCredentialQuery.
type GetCredentialHandler struct {
	deps Deps
}

// NewGetCredentialHandler создаёт обработчик.
func NewGetCredentialHandler(deps Deps) *GetCredentialHandler {
	return &GetCredentialHandler{deps: deps.withDefaults()}
}

// Handle выполняет запрос.
func (h *GetCredentialHandler) Handle(ctx context.Context, q GetCredentialQuery) (*CredentialDTO, error) {
	dto, err := cached(ctx, h.deps, cache.CredentialKey(q.CredentialID), func(ctx context.Context) (CredentialDTO, error) {
		c, err := h.deps.Credentials.GetByID(ctx, q.CredentialID)
		if err != nil {
			return CredentialDTO{}, err
		}
		return toCredentialDTO(c), nil
	})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// TECHNOLOGIES
// Справочник маленький и читается напрямую.
// ══════════════════════════════════════════════════════════════════════════════

// ListTechnologiesHandler возвращает все теги по имени.
type ListTechnologiesHandler struct {
	deps Deps
}

// NewListTechnologiesHandler создаёт обработчик.
func NewListTechnologiesHandler(deps Deps) *ListTechnologiesHandler {
	return &ListTechnologiesHandler{deps: deps.withDefaults()}
}

// Handle выполняет запрос.
func (h *ListTechnologiesHandler) Handle(ctx context.Context) ([]TechnologyDTO, error) {
	list, err := h.deps.Technologies.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TechnologyDTO, 0, len(list))
	for _, t := range list {
		out = append(out, toTechnologyDTO(t))
	}
	return out, nil
}

// GetTechnologyQuery содержит ID тега.
type GetTechnologyQuery struct {
	TechnologyID string
}

// GetTechnologyHandler обрабатывает GetTechnologyQuery.
type GetTechnologyHandler struct {
	deps Deps
}

// NewGetTechnologyHandler создаёт обработчик.
func NewGetTechnologyHandler(deps Deps) *GetTechnologyHandler {
	return &GetTechnologyHandler{deps: deps.withDefaults()}
}

// Handle выполняет запрос.
func (h *GetTechnologyHandler) Handle(ctx context.Context, q GetTechnologyQuery) (*TechnologyDTO, error) {
	t, err := h.deps.Technologies.GetByID(ctx, q.TechnologyID)
	if err != nil {
		return nil, err
	}
	dto := toTechnologyDTO(t)
	return &dto, nil
}
