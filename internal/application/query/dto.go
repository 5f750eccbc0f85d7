package query

import (
	"context"
	"fmt"
	"time"

	"github.com/devask/devask-hub/internal/domain/answer"
	"github.com/devask/devask-hub/internal/domain/article"
	"github.com/devask/devask-hub/internal/domain/credential"
	"github.com/devask/devask-hub/internal/domain/profile"
	"github.com/devask/devask-hub/internal/domain/question"
	"github.com/devask/devask-hub/internal/domain/reputation"
	"github.com/devask/devask-hub/internal/domain/technology"
	"github.com/devask/devask-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// DTO
// ══════════════════════════════════════════════════════════════════════════════

// TechnologyDTO - тег в ответах API.
type TechnologyDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Color     string `json:"color"`
	LogoURL   string `json:"logo_url,omitempty"`
	PrismLang string `json:"prism_lang,omitempty"`
}

// AuthorDTO - краткая карточка профиля, встроенная в контент.
type AuthorDTO struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	FullName        string `json:"full_name,omitempty"`
	AvatarURL       string `json:"avatar_url,omitempty"`
	ReputationScore int    `json:"reputation_score"`
	Level           string `json:"level"`
	IsProfessional  bool   `json:"is_professional"`
}

// QuestionDTO - вопрос с автором и тегами.
type QuestionDTO struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Content      string          `json:"content"`
	IsPublished  bool            `json:"is_published"`
	IsSolutioned bool            `json:"is_solutioned"`
	Owner        *AuthorDTO      `json:"owner"`
	Technologies []TechnologyDTO `json:"technologies"`
	LikesCount   int             `json:"likes_count"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// AnswerDTO - ответ с автором.
type AnswerDTO struct {
	ID           string     `json:"id"`
	QuestionID   string     `json:"question_id"`
	Content      string     `json:"content"`
	IsAccepted   bool       `json:"is_accepted"`
	Author       *AuthorDTO `json:"author"`
	UpvotesCount int        `json:"upvotes_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ArticleDTO - статья с автором и тегами.
type ArticleDTO struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Slug         string          `json:"slug"`
	Content      string          `json:"content"`
	IsPublished  bool            `json:"is_published"`
	Author       *AuthorDTO      `json:"author"`
	Technologies []TechnologyDTO `json:"technologies"`
	LikesCount   int             `json:"likes_count"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CredentialDTO - запись об опыте.
type CredentialDTO struct {
	ID          string     `json:"id"`
	ProfileID   string     `json:"profile_id"`
	Role        string     `json:"role"`
	Type        string     `json:"type"`
	Experience  string     `json:"experience"`
	Institution string     `json:"institution"`
	StartDate   string     `json:"start_date"`
	EndDate     *string    `json:"end_date,omitempty"`
	IsVerified  bool       `json:"is_verified"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// ProfileDTO - детальная карточка профиля.
type ProfileDTO struct {
	// ─────────────────────────────────────────────────────────────────────────
	// Идентификация
	// ─────────────────────────────────────────────────────────────────────────

	ID       string `json:"id"`
	Username string `json:"username"`
	// Email виден только владельцу профиля.
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Expertise string `json:"expertise,omitempty"`

	// ─────────────────────────────────────────────────────────────────────────
	// Репутация
	// ─────────────────────────────────────────────────────────────────────────

	ReputationScore int    `json:"reputation_score"`
	Level           string `json:"level"`
	IsProfessional  bool   `json:"is_professional"`

	// ─────────────────────────────────────────────────────────────────────────
	// Активность (только в детальной карточке)
	// ─────────────────────────────────────────────────────────────────────────

	ArticlesWritten int             `json:"articles_written"`
	AnswersAccepted int             `json:"answers_accepted"`
	Credentials     []CredentialDTO `json:"credentials,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// LedgerEntryDTO - строка истории репутации.
type LedgerEntryDTO struct {
	ID         string    `json:"id"`
	Delta      int       `json:"delta"`
	Reason     string    `json:"reason"`
	SubjectID  string    `json:"subject_id"`
	ScoreAfter int       `json:"score_after"`
	CreatedAt  time.Time `json:"created_at"`
}

// ══════════════════════════════════════════════════════════════════════════════
// MAPPERS
// ══════════════════════════════════════════════════════════════════════════════

func toTechnologyDTO(t *technology.Technology) TechnologyDTO {
	return TechnologyDTO{
		ID:        t.ID,
		Name:      t.Name,
		Slug:      t.Slug,
		Color:     t.Color,
		LogoURL:   t.LogoURL,
		PrismLang: t.PrismLang,
	}
}

func toAuthorDTO(p *profile.Profile) *AuthorDTO {
	if p == nil {
		return nil
	}
	return &AuthorDTO{
		ID:              p.ID,
		Username:        p.Username,
		FirstName:       p.FirstName,
		LastName:        p.LastName,
		FullName:        p.FullName(),
		AvatarURL:       p.AvatarURL,
		ReputationScore: p.ReputationScore,
		Level:           p.Level.String(),
		IsProfessional:  p.IsProfessional,
	}
}

func toProfileDTO(p *profile.Profile) ProfileDTO {
	return ProfileDTO{
		ID:              p.ID,
		Username:        p.Username,
		Email:           p.Email,
		FirstName:       p.FirstName,
		LastName:        p.LastName,
		Bio:             p.Bio,
		AvatarURL:       p.AvatarURL,
		Expertise:       p.Expertise,
		ReputationScore: p.ReputationScore,
		Level:           p.Level.String(),
		IsProfessional:  p.IsProfessional,
		CreatedAt:       p.CreatedAt,
	}
}

func toCredentialDTO(c *credential.Credential) CredentialDTO {
	dto := CredentialDTO{
		ID:          c.ID,
		ProfileID:   c.ProfileID,
		Role:        c.Role,
		Type:        string(c.Type),
		Experience:  string(c.Experience),
		Institution: c.Institution,
		StartDate:   timeutil.FormatDateStr(c.StartDate),
		IsVerified:  c.IsVerified,
		CreatedAt:   c.CreatedAt,
	}
	if c.EndDate != nil {
		end := timeutil.FormatDateStr(*c.EndDate)
		dto.EndDate = &end
	}
	if !c.UpdatedAt.IsZero() {
		updated := c.UpdatedAt
		dto.UpdatedAt = &updated
	}
	return dto
}

func toLedgerEntryDTO(e *reputation.Entry) LedgerEntryDTO {
	return LedgerEntryDTO{
		ID:         e.ID,
		Delta:      e.Delta,
		Reason:     string(e.Reason),
		SubjectID:  e.SubjectID,
		ScoreAfter: e.ScoreAfter,
		CreatedAt:  e.CreatedAt,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ASSEMBLER
// Собирает DTO пачкой: авторы и теги читаются одним запросом на список.
// ══════════════════════════════════════════════════════════════════════════════

type assembler struct {
	deps    Deps
	authors map[string]*profile.Profile
	techs   map[string]*technology.Technology
}

func newAssembler(deps Deps) *assembler {
	return &assembler{
		deps:    deps,
		authors: make(map[string]*profile.Profile),
		techs:   make(map[string]*technology.Technology),
	}
}

func (a *assembler) loadAuthors(ctx context.Context, ids []string) error {
	var missing []string
	for _, id := range ids {
		if _, ok := a.authors[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	profiles, err := a.deps.Profiles.GetByIDs(ctx, missing)
	if err != nil {
		return fmt.Errorf("failed to load authors: %w", err)
	}
	for _, p := range profiles {
		a.authors[p.ID] = p
	}
	return nil
}

func (a *assembler) loadTechnologies(ctx context.Context, ids []string) error {
	var missing []string
	for _, id := range ids {
		if _, ok := a.techs[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	techs, err := a.deps.Technologies.GetByIDs(ctx, missing)
	if err != nil {
		return fmt.Errorf("failed to load technologies: %w", err)
	}
	for _, t := range techs {
		a.techs[t.ID] = t
	}
	return nil
}

// technologies сохраняет порядок ID, заданный репозиторием (по имени).
func (a *assembler) technologies(ids []string) []TechnologyDTO {
	out := make([]TechnologyDTO, 0, len(ids))
	for _, id := range ids {
		if t, ok := a.techs[id]; ok {
			out = append(out, toTechnologyDTO(t))
		}
	}
	return out
}

func (a *assembler) questions(ctx context.Context, qs []*question.Question) ([]QuestionDTO, error) {
	var owners, techIDs []string
	for _, q := range qs {
		owners = append(owners, q.ProfileID)
		techIDs = append(techIDs, q.TechnologyIDs...)
	}
	if err := a.loadAuthors(ctx, owners); err != nil {
		return nil, err
	}
	if err := a.loadTechnologies(ctx, techIDs); err != nil {
		return nil, err
	}

	out := make([]QuestionDTO, 0, len(qs))
	for _, q := range qs {
		out = append(out, QuestionDTO{
			ID:           q.ID,
			Title:        q.Title,
			Content:      q.Content,
			IsPublished:  q.IsPublished,
			IsSolutioned: q.IsSolutioned,
			Owner:        toAuthorDTO(a.authors[q.ProfileID]),
			Technologies: a.technologies(q.TechnologyIDs),
			LikesCount:   q.LikesCount,
			CreatedAt:    q.CreatedAt,
			UpdatedAt:    q.UpdatedAt,
		})
	}
	return out, nil
}

func (a *assembler) answers(ctx context.Context, as []*answer.Answer) ([]AnswerDTO, error) {
	var authors []string
	for _, an := range as {
		authors = append(authors, an.AuthorID)
	}
	if err := a.loadAuthors(ctx, authors); err != nil {
		return nil, err
	}

	out := make([]AnswerDTO, 0, len(as))
	for _, an := range as {
		out = append(out, AnswerDTO{
			ID:           an.ID,
			QuestionID:   an.QuestionID,
			Content:      an.Content,
			IsAccepted:   an.IsAccepted,
			Author:       toAuthorDTO(a.authors[an.AuthorID]),
			UpvotesCount: an.UpvotesCount,
			CreatedAt:    an.CreatedAt,
			UpdatedAt:    an.UpdatedAt,
		})
	}
	return out, nil
}

func (a *assembler) articles(ctx context.Context, as []*article.Article) ([]ArticleDTO, error) {
	var authors, techIDs []string
	for _, ar := range as {
		authors = append(authors, ar.AuthorID)
		techIDs = append(techIDs, ar.TechnologyIDs...)
	}
	if err := a.loadAuthors(ctx, authors); err != nil {
		return nil, err
	}
	if err := a.loadTechnologies(ctx, techIDs); err != nil {
		return nil, err
	}

	out := make([]ArticleDTO, 0, len(as))
	for _, ar := range as {
		out = append(out, ArticleDTO{
			ID:           ar.ID,
			Title:        ar.Title,
			Slug:         ar.Slug,
			Content:      ar.Content,
			IsPublished:  ar.IsPublished,
			Author:       toAuthorDTO(a.authors[ar.AuthorID]),
			Technologies: a.technologies(ar.TechnologyIDs),
			LikesCount:   ar.LikesCount,
			CreatedAt:    ar.CreatedAt,
			UpdatedAt:    ar.UpdatedAt,
		})
	}
	return out, nil
}
