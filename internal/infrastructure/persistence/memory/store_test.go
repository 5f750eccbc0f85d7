package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devask/devask-hub/internal/domain/answer"
	"github.com/devask/devask-hub/internal/domain/article"
	"github.com/devask/devask-hub/internal/domain/credential"
	"github.com/devask/devask-hub/internal/domain/profile"
	"github.com/devask/devask-hub/internal/domain/question"
	"github.com/devask/devask-hub/internal/domain/reputation"
	"github.com/devask/devask-hub/internal/domain/shared"
	"github.com/devask/devask-hub/internal/domain/technology"
)

func newProfile(t *testing.T, s *Store, username string) *profile.Profile {
	t.Helper()
	p, err := profile.NewProfile(profile.NewProfileParams{
		Username:     username,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	require.NoError(t, s.Profiles().Create(context.Background(), p))
	return p
}

func newQuestion(t *testing.T, s *Store, ownerID string, techIDs ...string) *question.Question {
	t.Helper()
	q, err := question.NewQuestion(question.NewQuestionParams{
		Title:         "How do channels work?",
		Content:       "Details",
		ProfileID:     ownerID,
		TechnologyIDs: techIDs,
	})
	require.NoError(t, err)
	require.NoError(t, s.Questions().Create(context.Background(), q))
	return q
}

func newAnswer(t *testing.T, s *Store, questionID, authorID string) *answer.Answer {
	t.Helper()
	a, err := answer.NewAnswer(answer.NewAnswerParams{Content: "Use select", AuthorID: authorID, QuestionID: questionID})
	require.NoError(t, err)
	require.NoError(t, s.Answers().Create(context.Background(), a))
	return a
}

func newTechnology(t *testing.T, s *Store, name string) *technology.Technology {
	t.Helper()
	tech, err := technology.NewTechnology(technology.Fields{Name: name})
	require.NoError(t, err)
	require.NoError(t, s.Technologies().Create(context.Background(), tech))
	return tech
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	p := newProfile(t, s, "alice")

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context) error {
		require.NoError(t, s.Profiles().UpdateStanding(ctx, p.ID, reputation.NewStanding(700, 0)))
		newQuestionCtx(t, ctx, s, p.ID)
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Profiles().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.ReputationScore)

	list, err := s.Questions().ListPublished(ctx, question.Filter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func newQuestionCtx(t *testing.T, ctx context.Context, s *Store, ownerID string) {
	t.Helper()
	q, err := question.NewQuestion(question.NewQuestionParams{Title: "t", Content: "c", ProfileID: ownerID})
	require.NoError(t, err)
	require.NoError(t, s.Questions().Create(ctx, q))
}

func TestWithinTx_NestedCallsJoin(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	p := newProfile(t, s, "alice")

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		inner := s.WithinTx(ctx, func(ctx context.Context) error {
			return s.Profiles().UpdateStanding(ctx, p.ID, reputation.NewStanding(20, 0))
		})
		require.NoError(t, inner)
		return errors.New("outer fails")
	})
	require.Error(t, err)

	got, err := s.Profiles().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.ReputationScore)
}

func TestWithinTx_RollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	p := newProfile(t, s, "alice")

	assert.Panics(t, func() {
		_ = s.WithinTx(ctx, func(ctx context.Context) error {
			_ = s.Profiles().UpdateStanding(ctx, p.ID, reputation.NewStanding(20, 0))
			panic("boom")
		})
	})

	got, err := s.Profiles().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.ReputationScore)
}

func TestProfiles_UsernameIsUnique(t *testing.T) {
	s := NewStore()
	newProfile(t, s, "alice")

	dup, err := profile.NewProfile(profile.NewProfileParams{Username: "alice", PasswordHash: "h"})
	require.NoError(t, err)
	err = s.Profiles().Create(context.Background(), dup)
	assert.ErrorIs(t, err, shared.ErrUsernameTaken)
}

func TestProfiles_ListOrdersByReputation(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	low := newProfile(t, s, "low")
	high := newProfile(t, s, "high")
	require.NoError(t, s.Profiles().UpdateStanding(ctx, high.ID, reputation.NewStanding(600, 0)))

	list, err := s.Profiles().List(ctx, shared.Page{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, high.ID, list[0].ID)
	assert.Equal(t, reputation.LevelIntermediate, list[0].Level)
	assert.Equal(t, low.ID, list[1].ID)
}

func TestProfiles_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	owner := newProfile(t, s, "owner")
	other := newProfile(t, s, "other")

	q := newQuestion(t, s, owner.ID)
	a := newAnswer(t, s, q.ID, other.ID)
	otherQ := newQuestion(t, s, other.ID)
	_, _, err := s.Questions().ToggleLike(ctx, otherQ.ID, owner.ID)
	require.NoError(t, err)

	require.NoError(t, s.Profiles().Delete(ctx, owner.ID))

	_, err = s.Questions().GetByID(ctx, q.ID)
	assert.ErrorIs(t, err, shared.ErrQuestionNotFound)
	_, err = s.Answers().GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, shared.ErrAnswerNotFound)

	got, err := s.Questions().GetByID(ctx, otherQ.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.LikesCount)
}

func TestQuestions_ListPublishedFilters(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	owner := newProfile(t, s, "owner")
	goTag := newTechnology(t, s, "Go")

	tagged := newQuestion(t, s, owner.ID, goTag.ID)
	plain := newQuestion(t, s, owner.ID)
	require.NoError(t, s.Questions().SetSolutioned(ctx, plain.ID, true))

	draft, err := question.NewQuestion(question.NewQuestionParams{
		Title: "Draft", Content: "c", ProfileID: owner.ID, Unpublished: true,
	})
	require.NoError(t, err)
	require.NoError(t, s.Questions().Create(ctx, draft))

	all, err := s.Questions().ListPublished(ctx, question.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, plain.ID, all[0].ID, "newest first")

	byTech, err := s.Questions().ListPublished(ctx, question.Filter{Technology: "go"})
	require.NoError(t, err)
	require.Len(t, byTech, 1)
	assert.Equal(t, tagged.ID, byTech[0].ID)

	solved := true
	bySolution, err := s.Questions().ListPublished(ctx, question.Filter{Solutioned: &solved})
	require.NoError(t, err)
	require.Len(t, bySolution, 1)
	assert.Equal(t, plain.ID, bySolution[0].ID)

	byName, err := s.Questions().ListPublished(ctx, question.Filter{FirstName: "ADA"})
	require.NoError(t, err)
	assert.Len(t, byName, 2)

	byYear, err := s.Questions().ListPublished(ctx, question.Filter{Year: time.Now().UTC().Year() - 1})
	require.NoError(t, err)
	assert.Empty(t, byYear)

	bySearch, err := s.Questions().ListPublished(ctx, question.Filter{Search: "CHANNELS"})
	require.NoError(t, err)
	assert.Len(t, bySearch, 2)
}

func TestQuestions_UnknownTechnology(t *testing.T) {
	s := NewStore()
	owner := newProfile(t, s, "owner")
	q, err := question.NewQuestion(question.NewQuestionParams{
		Title: "t", Content: "c", ProfileID: owner.ID, TechnologyIDs: []string{shared.NewID()},
	})
	require.NoError(t, err)
	assert.ErrorIs(t, s.Questions().Create(context.Background(), q), shared.ErrTechnologyNotFound)
}

func TestQuestions_TechnologiesSortedByName(t *testing.T) {
	s := NewStore()
	owner := newProfile(t, s, "owner")
	rust := newTechnology(t, s, "Rust")
	goTag := newTechnology(t, s, "Go")
	q := newQuestion(t, s, owner.ID, rust.ID, goTag.ID)

	got, err := s.Questions().GetByID(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{goTag.ID, rust.ID}, got.TechnologyIDs)
}

func TestQuestions_ToggleLike(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	owner := newProfile(t, s, "owner")
	fan := newProfile(t, s, "fan")
	q := newQuestion(t, s, owner.ID)

	liked, count, err := s.Questions().ToggleLike(ctx, q.ID, fan.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, count)

	liked, count, err = s.Questions().ToggleLike(ctx, q.ID, fan.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 0, count)

	_, _, err = s.Questions().ToggleLike(ctx, "missing", fan.ID)
	assert.ErrorIs(t, err, shared.ErrQuestionNotFound)
}

func TestAnswers_SingleAccepted(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	owner := newProfile(t, s, "owner")
	q := newQuestion(t, s, owner.ID)
	first := newAnswer(t, s, q.ID, owner.ID)
	second := newAnswer(t, s, q.ID, owner.ID)

	require.NoError(t, s.Answers().SetAccepted(ctx, second.ID, true))
	assert.ErrorIs(t, s.Answers().SetAccepted(ctx, first.ID, true), shared.ErrAnotherAnswerAccepted)

	accepted, err := s.Answers().FindAccepted(ctx, q.ID)
	require.NoError(t, err)
	require.NotNil(t, accepted)
	assert.Equal(t, second.ID, accepted.ID)

	list, err := s.Answers().ListByQuestion(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "accepted answer comes first")

	require.NoError(t, s.Answers().SetAccepted(ctx, second.ID, false))
	accepted, err = s.Answers().FindAccepted(ctx, q.ID)
	require.NoError(t, err)
	assert.Nil(t, accepted)
}

func TestArticles_ListHidesDrafts(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	author := newProfile(t, s, "author")

	published, err := article.NewArticle(article.NewArticleParams{Title: "Go tips", Content: "c", AuthorID: author.ID})
	require.NoError(t, err)
	require.NoError(t, s.Articles().Create(ctx, published))
	draft, err := article.NewArticle(article.NewArticleParams{Title: "Draft", Content: "c", AuthorID: author.ID, Unpublished: true})
	require.NoError(t, err)
	require.NoError(t, s.Articles().Create(ctx, draft))

	list, err := s.Articles().List(ctx, article.Filter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, published.ID, list[0].ID)

	list, err = s.Articles().List(ctx, article.Filter{AuthorID: author.ID, IncludeDrafts: true})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	stats, err := s.Profiles().Stats(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ArticlesWritten)
}

func TestCredentials_DuplicateAndCount(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	p := newProfile(t, s, "alice")
	today := time.Now().UTC()

	fields := credential.Fields{
		Role:        "Backend Engineer",
		Type:        credential.TypeProfessional,
		Experience:  reputation.TierSenior,
		Institution: "Acme",
		StartDate:   today.AddDate(-2, 0, 0),
	}
	c, err := credential.NewCredential(p.ID, fields, today)
	require.NoError(t, err)
	require.NoError(t, s.Credentials().Create(ctx, c))

	dup, err := credential.NewCredential(p.ID, fields, today)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Credentials().Create(ctx, dup), shared.ErrCredentialDuplicate)

	n, err := s.Credentials().CountVerifiedRecognized(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	c.SetVerified(true)
	require.NoError(t, s.Credentials().Update(ctx, c))
	n, err = s.Credentials().CountVerifiedRecognized(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTechnologies_DeleteUnlinks(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	owner := newProfile(t, s, "owner")
	goTag := newTechnology(t, s, "Go")
	q := newQuestion(t, s, owner.ID, goTag.ID)

	dup, err := technology.NewTechnology(technology.Fields{Name: "Go"})
	require.NoError(t, err)
	assert.ErrorIs(t, s.Technologies().Create(ctx, dup), shared.ErrTechnologyExists)

	require.NoError(t, s.Technologies().Delete(ctx, goTag.ID))
	got, err := s.Questions().GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Empty(t, got.TechnologyIDs)
}

func TestLedger_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	for i := 1; i <= 3; i++ {
		require.NoError(t, s.Ledger().Append(ctx, &reputation.Entry{
			ID: shared.NewID(), ProfileID: "p1", Delta: i, Reason: reputation.ReasonArticleCreated,
		}))
	}
	require.NoError(t, s.Ledger().Append(ctx, &reputation.Entry{ID: shared.NewID(), ProfileID: "p2", Delta: 9}))

	entries, err := s.Ledger().ListByProfile(ctx, "p1", 2, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 3, entries[0].Delta)
	assert.Equal(t, 2, entries[1].Delta)
}
