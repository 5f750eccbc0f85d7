// Package answer содержит доменную модель ответа на вопрос.
// Принимает ответ только владелец вопроса, и у вопроса может быть не больше
// одного принятого ответа.
package answer

import (
	"strings"
	"time"

	"github.com/devask/devask-hub/internal/domain/shared"
)

// Answer - сущность ответа.
type Answer struct {
	ID           string
	Content      string
	IsAccepted   bool
	AuthorID     string
	QuestionID   string
	UpvotesCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewAnswerParams - параметры для создания ответа.
type NewAnswerParams struct {
	Content    string
	AuthorID   string
	QuestionID string
}

// NewAnswer создаёт новый непринятый ответ.
func NewAnswer(params NewAnswerParams) (*Answer, error) {
	content := strings.TrimSpace(params.Content)
	if content == "" {
		return nil, shared.ErrEmptyContent
	}
	if params.AuthorID == "" || params.QuestionID == "" {
		return nil, shared.Invalid("answer", "Create", "author and question are required")
	}

	now := time.Now().UTC()
	return &Answer{
		ID:         shared.NewID(),
		Content:    content,
		IsAccepted: false,
		AuthorID:   params.AuthorID,
		QuestionID: params.QuestionID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// OwnerID возвращает автора ответа.
func (a *Answer) OwnerID() string {
	return a.AuthorID
}

// Edit меняет текст ответа.
func (a *Answer) Edit(content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return shared.ErrEmptyContent
	}
	a.Content = content
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// SetAccepted выставляет флаг принятия и сообщает, изменился ли он.
func (a *Answer) SetAccepted(v bool) bool {
	if a.IsAccepted == v {
		return false
	}
	a.IsAccepted = v
	a.UpdatedAt = time.Now().UTC()
	return true
}
