package query

import (
	"context"

	"github.com/devask/devask-hub/internal/application/cache"
	"github.com/devask/devask-hub/internal/domain/answer"
	"github.com/devask/devask-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST ANSWERS QUERY
// Принятый ответ первым, остальные по дате создания.
// ══════════════════════════════════════════════════════════════════════════════

// ListAnswersQuery содержит ID вопроса.
type ListAnswersQuery struct {
	QuestionID string
}

// ListAnswersHandler обрабатывает ListAnswersQuery.
type ListAnswersHandler struct {
	deps Deps
}

// NewListAnswersHandler создаёт обработчик.
func NewListAnswersHandler(deps Deps) *ListAnswersHandler {
	return &ListAnswersHandler{deps: deps.withDefaults()}
}

// Handle выполняет запрос.
func (h *ListAnswersHandler) Handle(ctx context.Context, q ListAnswersQuery) ([]AnswerDTO, error) {
	return cached(ctx, h.deps, cache.QuestionAnswersKey(q.QuestionID), func(ctx context.Context) ([]AnswerDTO, error) {
		parent, err := h.deps.Questions.GetByID(ctx, q.QuestionID)
		if err != nil {
			return nil, err
		}
		if !parent.IsPublished {
			return nil, shared.ErrQuestionNotFound
		}
		list, err := h.deps.Answers.ListByQuestion(ctx, parent.ID)
		if err != nil {
			return nil, err
		}
		return newAssembler(h.deps).answers(ctx, list)
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// GET ANSWER QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetAnswerQuery содержит ID ответа.
type GetAnswerQuery struct {
	AnswerID string
}

// GetAnswerHandler обрабатывает GetAnswerQuery.
type GetAnswerHandler struct {
	deps Deps
}

// NewGetAnswerHandler создаёт обработчик.
func NewGetAnswerHandler(deps Deps) *GetAnswerHandler {
	return &GetAnswerHandler{deps: deps.withDefaults()}
}

// Handle выполняет запрос.
func (h *GetAnswerHandler) Handle(ctx context.Context, q GetAnswerQuery) (*AnswerDTO, error) {
	found, err := h.deps.Answers.GetByID(ctx, q.AnswerID)
	if err != nil {
		return nil, err
	}
	dtos, err := newAssembler(h.deps).answers(ctx, []*answer.Answer{found})
	if err != nil {
		return nil, err
	}
	return &dtos[0], nil
}
