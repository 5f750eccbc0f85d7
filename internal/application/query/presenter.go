package query

import (
	"context"

	"github.com/devask/devask-hub/internal/domain/answer"
	"github.com/devask/devask-hub/internal/domain/article"
	"github.com/devask/devask-hub/internal/domain/credential"
	"github.com/devask/devask-hub/internal/domain/profile"
	"github.com/devask/devask-hub/internal/domain/question"
	"github.com/devask/devask-hub/internal/domain/technology"
)

// ══════════════════════════════════════════════════════════════════════════════
// PRESENTER
// Превращает результаты команд в те же DTO, что отдают запросы.
// Кеш не используется: после записи нужен свежий снимок.
// ══════════════════════════════════════════════════════════════════════════════

// Presenter собирает DTO для сущностей, только что изменённых командой.
type Presenter struct {
	deps Deps
}

// NewPresenter создаёт Presenter.
func NewPresenter(deps Deps) *Presenter {
	return &Presenter{deps: deps.withDefaults()}
}

// Question возвращает вопрос с автором и тегами.
func (p *Presenter) Question(ctx context.Context, q *question.Question) (*QuestionDTO, error) {
	out, err := newAssembler(p.deps).questions(ctx, []*question.Question{q})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// Answer возвращает ответ с автором.
func (p *Presenter) Answer(ctx context.Context, a *answer.Answer) (*AnswerDTO, error) {
	out, err := newAssembler(p.deps).answers(ctx, []*answer.Answer{a})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// Article возвращает статью с автором и тегами.
func (p *Presenter) Article(ctx context.Context, a *article.Article) (*ArticleDTO, error) {
	out, err := newAssembler(p.deps).articles(ctx, []*article.Article{a})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// Profile возвращает карточку без счётчиков: её видит только владелец.
func (p *Presenter) Profile(pr *profile.Profile) *ProfileDTO {
	dto := toProfileDTO(pr)
	return &dto
}

// Credential возвращает запись об опыте.
func (p *Presenter) Credential(c *credential.Credential) *CredentialDTO {
	dto := toCredentialDTO(c)
	return &dto
}

// Technology возвращает тег.
func (p *Presenter) Technology(t *technology.Technology) *TechnologyDTO {
	dto := toTechnologyDTO(t)
	return &dto
}
