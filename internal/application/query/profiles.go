package query

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/devask/devask-hub/internal/application/cache"
	"github.com/devask/devask-hub/internal/domain/access"
	"github.com/devask/devask-hub/internal/domain/credential"
	"github.com/devask/devask-hub/internal/domain/profile"
	"github.com/devask/devask-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROFILE QUERY
// Карточка профиля со счётчиками активности и списком опыта.
// Профиль, счётчики и опыт читаются параллельно.
// ══════════════════════════════════════════════════════════════════════════════

// GetProfileQuery содержит ID профиля и того, кто спрашивает.
type GetProfileQuery struct {
	Caller    access.Caller
	ProfileID string
}

// GetProfileHandler обрабатывает GetProfileQuery.
type GetProfileHandler struct {
	deps Deps
}

// NewGetProfileHandler создаёт обработчик.
func NewGetProfileHandler(deps Deps) *GetProfileHandler {
	return &GetProfileHandler{deps: deps.withDefaults()}
}

// Handle выполняет запрос.
func (h *GetProfileHandler) Handle(ctx context.Context, q GetProfileQuery) (*ProfileDTO, error) {
	dto, err := cached(ctx, h.deps, cache.ProfileDetailKey(q.ProfileID), h.load(q.ProfileID))
	if err != nil {
		return nil, err
	}

	// В кеше лежит полная карточка; почту видит только владелец.
	if q.Caller.ProfileID != dto.ID {
		dto.Email = ""
	}
	return &dto, nil
}

func (h *GetProfileHandler) load(id string) func(context.Context) (ProfileDTO, error) {
	return func(ctx context.Context) (ProfileDTO, error) {
		var (
			p           *profile.Profile
			stats       profile.Stats
			credentials []*credential.Credential
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			p, err = h.deps.Profiles.GetByID(gctx, id)
			return err
		})
		g.Go(func() error {
			var err error
			stats, err = h.deps.Profiles.Stats(gctx, id)
			if err != nil {
				return fmt.Errorf("failed to count activity: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			var err error
			credentials, err = h.deps.Credentials.ListByProfile(gctx, id)
			if err != nil {
				return fmt.Errorf("failed to list credentials: %w", err)
			}
			return nil
		})
		if err := g.Wait(); err != nil {
			return ProfileDTO{}, err
		}

		dto := toProfileDTO(p)
		dto.ArticlesWritten = stats.ArticlesWritten
		dto.AnswersAccepted = stats.AnswersAccepted
		dto.Credentials = make([]CredentialDTO, 0, len(credentials))
		for _, c := range credentials {
			dto.Credentials = append(dto.Credentials, toCredentialDTO(c))
		}
		return dto, nil
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// LIST PROFILES QUERY
// Сортировка по репутации, лучшие первыми. Без счётчиков и опыта.
// ══════════════════════════════════════════════════════════════════════════════

// ListProfilesQuery содержит параметры страницы.
type ListProfilesQuery struct {
	Page shared.Page
}

// ListProfilesHandler обрабатывает ListProfilesQuery.
type ListProfilesHandler struct {
	deps Deps
}

// NewListProfilesHandler создаёт обработчик.
func NewListProfilesHandler(deps Deps) *ListProfilesHandler {
	return &ListProfilesHandler{deps: deps.withDefaults()}
}

// Handle выполняет запрос.
func (h *ListProfilesHandler) Handle(ctx context.Context, q ListProfilesQuery) ([]ProfileDTO, error) {
	if q.Page.Offset < 0 {
		return nil, shared.Invalid("profile", "List", "offset cannot be negative")
	}
	list, err := h.deps.Profiles.List(ctx, q.Page.Normalize())
	if err != nil {
		return nil, err
	}

	out := make([]ProfileDTO, 0, len(list))
	for _, p := range list {
		dto := toProfileDTO(p)
		dto.Email = ""
		out = append(out, dto)
	}
	return out, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// GET REPUTATION HISTORY QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetReputationHistoryQuery содержит ID профиля и страницу.
type GetReputationHistoryQuery struct {
	ProfileID string
	Page      shared.Page
}

// GetReputationHistoryHandler обрабатывает GetReputationHistoryQuery.
type GetReputationHistoryHandler struct {
	deps Deps
}

// NewGetReputationHistoryHandler создаёт обработчик.
func NewGetReputationHistoryHandler(deps Deps) *GetReputationHistoryHandler {
	return &GetReputationHistoryHandler{deps: deps.withDefaults()}
}

// Handle возвращает записи истории, новые первыми.
func (h *GetReputationHistoryHandler) Handle(ctx context.Context, q GetReputationHistoryQuery) ([]LedgerEntryDTO, error) {
	if q.Page.Offset < 0 {
		return nil, shared.Invalid("reputation", "History", "offset cannot be negative")
	}
	// Несуществующий профиль - 404, а не пустая история.
	if _, err := h.deps.Profiles.GetByID(ctx, q.ProfileID); err != nil {
		return nil, err
	}

	page := q.Page.Normalize()
	entries, err := h.deps.Ledger.ListByProfile(ctx, q.ProfileID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]LedgerEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, toLedgerEntryDTO(e))
	}
	return out, nil
}
