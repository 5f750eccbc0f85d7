// Package question содержит доменную модель вопроса.
// Вопрос принадлежит профилю, помечается технологиями и становится
// "решённым", когда владелец принимает один из ответов.
package question

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/devask/devask-hub/internal/domain/shared"
)

// MaxTitleLength - максимальная длина заголовка.
const MaxTitleLength = 255

// ══════════════════════════════════════════════════════════════════════════════
// QUESTION AGGREGATE
// ══════════════════════════════════════════════════════════════════════════════

// Question - агрегат вопроса.
// IsSolutioned истинно тогда и только тогда, когда ровно один ответ принят;
// поле меняет только движок репутации.
type Question struct {
	ID            string
	Title         string
	Content       string
	IsPublished   bool
	IsSolutioned  bool
	ProfileID     string
	TechnologyIDs []string
	LikesCount    int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewQuestionParams - параметры для создания вопроса.
type NewQuestionParams struct {
	Title         string
	Content       string
	ProfileID     string
	TechnologyIDs []string
	// Unpublished создаёт черновик. По умолчанию вопрос опубликован.
	Unpublished bool
}

// NewQuestion создаёт новый опубликованный и нерешённый вопрос.
func NewQuestion(params NewQuestionParams) (*Question, error) {
	title, err := validateTitle(params.Title)
	if err != nil {
		return nil, err
	}
	content, err := validateContent(params.Content)
	if err != nil {
		return nil, err
	}
	if params.ProfileID == "" {
		return nil, shared.Invalid("question", "Create", "owner is required")
	}

	now := time.Now().UTC()
	return &Question{
		ID:            shared.NewID(),
		Title:         title,
		Content:       content,
		IsPublished:   !params.Unpublished,
		IsSolutioned:  false,
		ProfileID:     params.ProfileID,
		TechnologyIDs: dedupe(params.TechnologyIDs),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// OwnerID возвращает профиль, задавший вопрос.
func (q *Question) OwnerID() string {
	return q.ProfileID
}

// UpdateParams - изменяемые владельцем поля. nil означает "не менять".
type UpdateParams struct {
	Title         *string
	Content       *string
	IsPublished   *bool
	TechnologyIDs *[]string
}

// Update применяет частичное обновление.
func (q *Question) Update(params UpdateParams) error {
	if params.Title != nil {
		title, err := validateTitle(*params.Title)
		if err != nil {
			return err
		}
		q.Title = title
	}
	if params.Content != nil {
		content, err := validateContent(*params.Content)
		if err != nil {
			return err
		}
		q.Content = content
	}
	if params.IsPublished != nil {
		q.IsPublished = *params.IsPublished
	}
	if params.TechnologyIDs != nil {
		q.TechnologyIDs = dedupe(*params.TechnologyIDs)
	}
	q.UpdatedAt = time.Now().UTC()
	return nil
}

// SetSolutioned выставляет флаг решённости.
func (q *Question) SetSolutioned(v bool) {
	q.IsSolutioned = v
	q.UpdatedAt = time.Now().UTC()
}

// ══════════════════════════════════════════════════════════════════════════════
// LIST FILTER
// ══════════════════════════════════════════════════════════════════════════════

// Filter - параметры выборки опубликованных вопросов.
// Сортировка всегда по дате создания, новые первыми.
type Filter struct {
	// Year - год создания (0 - любой).
	Year int
	// FirstName, LastName - подстрока имени владельца без учёта регистра.
	FirstName string
	LastName  string
	// Solutioned - фильтр по решённости (nil - любые).
	Solutioned *bool
	// Technology - точное имя технологии без учёта регистра.
	Technology string
	// Search - подстрока заголовка или текста без учёта регистра.
	Search string
	// OwnerID - только вопросы этого профиля.
	OwnerID string

	Page shared.Page
}

// IsDefault проверяет, что фильтр запрашивает первую страницу без условий.
// Только такой список кешируется.
func (f Filter) IsDefault() bool {
	return f.Year == 0 &&
		f.FirstName == "" &&
		f.LastName == "" &&
		f.Solutioned == nil &&
		f.Technology == "" &&
		f.Search == "" &&
		f.OwnerID == "" &&
		f.Page.IsFirst()
}

// ══════════════════════════════════════════════════════════════════════════════
// VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", shared.ErrEmptyTitle
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", shared.ErrTitleTooLong
	}
	return title, nil
}

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", shared.ErrEmptyContent
	}
	return content, nil
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
