package query

import (
	"context"
	"strings"

	"github.com/devask/devask-hub/internal/application/cache"
	"github.com/devask/devask-hub/internal/domain/question"
	"github.com/devask/devask-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET QUESTION QUERY
// Неопубликованный вопрос не отличим от отсутствующего.
// ══════════════════════════════════════════════════════════════════════════════

// GetQuestionQuery содержит ID вопроса.
type GetQuestionQuery struct {
	QuestionID string
}

// GetQuestionHandler обрабатывает GetQuestionQuery.
type GetQuestionHandler struct {
	deps Deps
}

// NewGetQuestionHandler создаёт обработчик.
func NewGetQuestionHandler(deps Deps) *GetQuestionHandler {
	return &GetQuestionHandler{deps: deps.withDefaults()}
}

// Handle выполняет запрос.
func (h *GetQuestionHandler) Handle(ctx context.Context, q GetQuestionQuery) (*QuestionDTO, error) {
	dto, err := cached(ctx, h.deps, cache.QuestionDetailKey(q.QuestionID), func(ctx context.Context) (QuestionDTO, error) {
		found, err := h.deps.Questions.GetByID(ctx, q.QuestionID)
		if err != nil {
			return QuestionDTO{}, err
		}
		if !found.IsPublished {
			return QuestionDTO{}, shared.ErrQuestionNotFound
		}
		dtos, err := newAssembler(h.deps).questions(ctx, []*question.Question{found})
		if err != nil {
			return QuestionDTO{}, err
		}
		return dtos[0], nil
	})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LIST QUESTIONS QUERY
// Кешируется только первая страница без фильтров.
// ══════════════════════════════════════════════════════════════════════════════

// ListQuestionsQuery содержит фильтры списка.
type ListQuestionsQuery struct {
	Filter question.Filter
}

// Validate нормализует параметры запроса.
func (q *ListQuestionsQuery) Validate() error {
	if q.Filter.Year < 0 {
		return shared.Invalid("question", "List", "year cannot be negative")
	}
	if q.Filter.Page.Offset < 0 {
		return shared.Invalid("question", "List", "offset cannot be negative")
	}
	q.Filter.FirstName = strings.TrimSpace(q.Filter.FirstName)
	q.Filter.LastName = strings.TrimSpace(q.Filter.LastName)
	q.Filter.Technology = strings.TrimSpace(q.Filter.Technology)
	q.Filter.Search = strings.TrimSpace(q.Filter.Search)
	q.Filter.Page = q.Filter.Page.Normalize()
	return nil
}

// ListQuestionsHandler обрабатывает ListQuestionsQuery.
type ListQuestionsHandler struct {
	deps Deps
}

// NewListQuestionsHandler создаёт обработчик.
func NewListQuestionsHandler(deps Deps) *ListQuestionsHandler {
	return &ListQuestionsHandler{deps: deps.withDefaults()}
}

// Handle выполняет запрос.
func (h *ListQuestionsHandler) Handle(ctx context.Context, q ListQuestionsQuery) ([]QuestionDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	load := func(ctx context.Context) ([]QuestionDTO, error) {
		list, err := h.deps.Questions.ListPublished(ctx, q.Filter)
		if err != nil {
			return nil, err
		}
		return newAssembler(h.deps).questions(ctx, list)
	}

	if q.Filter.IsDefault() {
		return cached(ctx, h.deps, cache.PublishedQuestionsKey, load)
	}
	return load(ctx)
}
