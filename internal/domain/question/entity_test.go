package question

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devask/devask-hub/internal/domain/shared"
)

func TestNewQuestion(t *testing.T) {
	q, err := NewQuestion(NewQuestionParams{
		Title:         "  How do I close a channel twice?  ",
		Content:       "It panics.",
		ProfileID:     "p1",
		TechnologyIDs: []string{"go", "go", ""},
	})
	require.NoError(t, err)

	assert.Equal(t, "How do I close a channel twice?", q.Title)
	assert.True(t, q.IsPublished)
	assert.False(t, q.IsSolutioned)
	assert.Equal(t, []string{"go"}, q.TechnologyIDs)
	assert.Equal(t, "p1", q.OwnerID())
}

func TestNewQuestion_Validation(t *testing.T) {
	_, err := NewQuestion(NewQuestionParams{Title: " ", Content: "x", ProfileID: "p1"})
	assert.ErrorIs(t, err, shared.ErrEmptyTitle)

	_, err = NewQuestion(NewQuestionParams{Title: strings.Repeat("a", 256), Content: "x", ProfileID: "p1"})
	assert.ErrorIs(t, err, shared.ErrTitleTooLong)

	_, err = NewQuestion(NewQuestionParams{Title: "t", Content: "", ProfileID: "p1"})
	assert.ErrorIs(t, err, shared.ErrEmptyContent)
}

func TestQuestionUpdate(t *testing.T) {
	q, err := NewQuestion(NewQuestionParams{Title: "t", Content: "c", ProfileID: "p1"})
	require.NoError(t, err)

	unpublish := false
	require.NoError(t, q.Update(UpdateParams{IsPublished: &unpublish}))
	assert.False(t, q.IsPublished)
	assert.Equal(t, "t", q.Title)

	empty := ""
	assert.Error(t, q.Update(UpdateParams{Title: &empty}))
}

func TestFilterIsDefault(t *testing.T) {
	assert.True(t, Filter{}.IsDefault())

	solved := true
	assert.False(t, Filter{Solutioned: &solved}.IsDefault())
	assert.False(t, Filter{Search: "chan"}.IsDefault())
	assert.False(t, Filter{Page: shared.Page{Offset: 20}}.IsDefault())
}
