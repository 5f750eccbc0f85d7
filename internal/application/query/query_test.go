package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devask/devask-hub/internal/application/cache"
	"github.com/devask/devask-hub/internal/domain/access"
	"github.com/devask/devask-hub/internal/domain/answer"
	"github.com/devask/devask-hub/internal/domain/article"
	"github.com/devask/devask-hub/internal/domain/credential"
	"github.com/devask/devask-hub/internal/domain/profile"
	"github.com/devask/devask-hub/internal/domain/question"
	"github.com/devask/devask-hub/internal/domain/reputation"
	"github.com/devask/devask-hub/internal/domain/shared"
	"github.com/devask/devask-hub/internal/domain/technology"
	"github.com/devask/devask-hub/internal/infrastructure/persistence/memory"
	"github.com/devask/devask-hub/pkg/logger"
)

type fixture struct {
	store *memory.Store
	cache *memory.Cache
	deps  Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	c := memory.NewCache()
	log := logger.Nop()
	return &fixture{
		store: store,
		cache: c,
		deps: Deps{
			Profiles:     store.Profiles(),
			Questions:    store.Questions(),
			Answers:      store.Answers(),
			Articles:     store.Articles(),
			Credentials:  store.Credentials(),
			Technologies: store.Technologies(),
			Ledger:       store.Ledger(),
			Cache:        cache.NewReader(c, time.Minute, log),
			Logger:       log,
		},
	}
}

func (f *fixture) profile(t *testing.T, username string) *profile.Profile {
	t.Helper()
	p, err := profile.NewProfile(profile.NewProfileParams{
		Username:     username,
		Email:        username + "@example.com",
		FirstName:    "Grace",
		LastName:     "Hopper",
		PasswordHash: "x",
	})
	require.NoError(t, err)
	require.NoError(t, f.store.Profiles().Create(context.Background(), p))
	return p
}

func (f *fixture) technology(t *testing.T, name string) *technology.Technology {
	t.Helper()
	tech, err := technology.NewTechnology(technology.Fields{Name: name})
	require.NoError(t, err)
	require.NoError(t, f.store.Technologies().Create(context.Background(), tech))
	return tech
}

func (f *fixture) question(t *testing.T, ownerID string, unpublished bool, techIDs ...string) *question.Question {
	t.Helper()
	q, err := question.NewQuestion(question.NewQuestionParams{
		Title:         "How to profile a Go service?",
		Content:       "pprof maybe",
		ProfileID:     ownerID,
		TechnologyIDs: techIDs,
		Unpublished:   unpublished,
	})
	require.NoError(t, err)
	require.NoError(t, f.store.Questions().Create(context.Background(), q))
	return q
}

func (f *fixture) article(t *testing.T, authorID string, unpublished bool) *article.Article {
	t.Helper()
	a, err := article.NewArticle(article.NewArticleParams{
		Title:       "Profiling",
		Content:     "Use pprof.",
		AuthorID:    authorID,
		Unpublished: unpublished,
	})
	require.NoError(t, err)
	require.NoError(t, f.store.Articles().Create(context.Background(), a))
	return a
}

func (f *fixture) cachedKey(t *testing.T, key string) bool {
	t.Helper()
	ok, err := f.cache.Exists(context.Background(), key)
	require.NoError(t, err)
	return ok
}

// ══════════════════════════════════════════════════════════════════════════════
// QUESTIONS
// ══════════════════════════════════════════════════════════════════════════════

func TestGetQuestion_FillsOwnerAndTechnologies(t *testing.T) {
	f := newFixture(t)
	owner := f.profile(t, "owner")
	goTech := f.technology(t, "Go")
	pg := f.technology(t, "Postgres")
	q := f.question(t, owner.ID, false, pg.ID, goTech.ID)

	dto, err := NewGetQuestionHandler(f.deps).Handle(context.Background(), GetQuestionQuery{QuestionID: q.ID})
	require.NoError(t, err)

	require.NotNil(t, dto.Owner)
	assert.Equal(t, "owner", dto.Owner.Username)
	require.Len(t, dto.Technologies, 2)
	assert.Equal(t, "Go", dto.Technologies[0].Name)
	assert.Equal(t, "Postgres", dto.Technologies[1].Name)
	assert.True(t, f.cachedKey(t, cache.QuestionDetailKey(q.ID)))
}

func TestGetQuestion_UnpublishedIsNotFound(t *testing.T) {
	f := newFixture(t)
	owner := f.profile(t, "owner")
	q := f.question(t, owner.ID, true)

	_, err := NewGetQuestionHandler(f.deps).Handle(context.Background(), GetQuestionQuery{QuestionID: q.ID})
	assert.ErrorIs(t, err, shared.ErrQuestionNotFound)
	assert.False(t, f.cachedKey(t, cache.QuestionDetailKey(q.ID)))

	_, err = NewListAnswersHandler(f.deps).Handle(context.Background(), ListAnswersQuery{QuestionID: q.ID})
	assert.ErrorIs(t, err, shared.ErrQuestionNotFound)
}

func TestListQuestions_OnlyDefaultPageCached(t *testing.T) {
	f := newFixture(t)
	owner := f.profile(t, "owner")
	f.question(t, owner.ID, false)
	f.question(t, owner.ID, true)
	h := NewListQuestionsHandler(f.deps)

	list, err := h.Handle(context.Background(), ListQuestionsQuery{Filter: question.Filter{Search: "pprof"}})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.False(t, f.cachedKey(t, cache.PublishedQuestionsKey))

	list, err = h.Handle(context.Background(), ListQuestionsQuery{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.True(t, f.cachedKey(t, cache.PublishedQuestionsKey))
}

func TestListQuestions_RejectsNegativeYear(t *testing.T) {
	f := newFixture(t)
	_, err := NewListQuestionsHandler(f.deps).Handle(context.Background(), ListQuestionsQuery{Filter: question.Filter{Year: -1}})
	assert.True(t, shared.IsValidation(err))
}

func TestListAnswers_AcceptedFirst(t *testing.T) {
	f := newFixture(t)
	owner := f.profile(t, "owner")
	author := f.profile(t, "author")
	q := f.question(t, owner.ID, false)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 2; i++ {
		a, err := answer.NewAnswer(answer.NewAnswerParams{Content: "try this", AuthorID: author.ID, QuestionID: q.ID})
		require.NoError(t, err)
		require.NoError(t, f.store.Answers().Create(ctx, a))
		ids = append(ids, a.ID)
	}
	require.NoError(t, f.store.Answers().SetAccepted(ctx, ids[1], true))

	list, err := NewListAnswersHandler(f.deps).Handle(ctx, ListAnswersQuery{QuestionID: q.ID})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ids[1], list[0].ID)
	assert.True(t, list[0].IsAccepted)
	assert.Equal(t, "author", list[0].Author.Username)

	single, err := NewGetAnswerHandler(f.deps).Handle(ctx, GetAnswerQuery{AnswerID: ids[0]})
	require.NoError(t, err)
	assert.Equal(t, q.ID, single.QuestionID)
}

// ══════════════════════════════════════════════════════════════════════════════
// ARTICLES
// ══════════════════════════════════════════════════════════════════════════════

func TestGetArticle_DraftVisibleToAuthorOnly(t *testing.T) {
	f := newFixture(t)
	author := f.profile(t, "author")
	other := f.profile(t, "other")
	draft := f.article(t, author.ID, true)
	h := NewGetArticleHandler(f.deps)

	dto, err := h.Handle(context.Background(), GetArticleQuery{Caller: access.Caller{ProfileID: author.ID}, ArticleID: draft.ID})
	require.NoError(t, err)
	assert.False(t, dto.IsPublished)

	// The draft is cached by now; the check still applies.
	_, err = h.Handle(context.Background(), GetArticleQuery{Caller: access.Caller{ProfileID: other.ID}, ArticleID: draft.ID})
	assert.ErrorIs(t, err, shared.ErrArticleNotFound)

	_, err = h.Handle(context.Background(), GetArticleQuery{ArticleID: draft.ID})
	assert.ErrorIs(t, err, shared.ErrArticleNotFound)
}

func TestListArticles_DraftsOnlyForAuthor(t *testing.T) {
	f := newFixture(t)
	author := f.profile(t, "author")
	other := f.profile(t, "other")
	f.article(t, author.ID, false)
	f.article(t, author.ID, true)
	h := NewListArticlesHandler(f.deps)
	ctx := context.Background()

	own, err := h.Handle(ctx, ListArticlesQuery{Caller: access.Caller{ProfileID: author.ID}, AuthorID: author.ID, IncludeDrafts: true})
	require.NoError(t, err)
	assert.Len(t, own, 2)

	foreign, err := h.Handle(ctx, ListArticlesQuery{Caller: access.Caller{ProfileID: other.ID}, AuthorID: author.ID, IncludeDrafts: true})
	require.NoError(t, err)
	assert.Len(t, foreign, 1)

	all, err := h.Handle(ctx, ListArticlesQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.True(t, f.cachedKey(t, cache.ArticleListKey))
}

// ══════════════════════════════════════════════════════════════════════════════
// PROFILES
// ══════════════════════════════════════════════════════════════════════════════

func TestGetProfile_StatsCredentialsAndEmailPrivacy(t *testing.T) {
	f := newFixture(t)
	p := f.profile(t, "dev")
	viewer := f.profile(t, "viewer")
	ctx := context.Background()

	f.article(t, p.ID, false)
	f.article(t, p.ID, true)
	c, err := credential.NewCredential(p.ID, credential.Fields{
		Role:        "Engineer",
		Type:        credential.TypeProfessional,
		Experience:  reputation.TierJunior,
		Institution: "Acme",
		StartDate:   time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC),
	}, time.Now())
	require.NoError(t, err)
	require.NoError(t, f.store.Credentials().Create(ctx, c))

	h := NewGetProfileHandler(f.deps)

	own, err := h.Handle(ctx, GetProfileQuery{Caller: access.Caller{ProfileID: p.ID}, ProfileID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, "dev@example.com", own.Email)
	assert.Equal(t, 1, own.ArticlesWritten)
	assert.Equal(t, 0, own.AnswersAccepted)
	require.Len(t, own.Credentials, 1)
	assert.Equal(t, "2020-01-15", own.Credentials[0].StartDate)
	assert.True(t, f.cachedKey(t, cache.ProfileDetailKey(p.ID)))

	public, err := h.Handle(ctx, GetProfileQuery{Caller: access.Caller{ProfileID: viewer.ID}, ProfileID: p.ID})
	require.NoError(t, err)
	assert.Empty(t, public.Email)
	assert.Equal(t, own.ArticlesWritten, public.ArticlesWritten)

	_, err = h.Handle(ctx, GetProfileQuery{ProfileID: "missing"})
	assert.True(t, shared.IsNotFound(err))
}

func TestGetReputationHistory(t *testing.T) {
	f := newFixture(t)
	p := f.profile(t, "dev")
	ctx := context.Background()

	for i, delta := range []int{20, -20, 300} {
		require.NoError(t, f.store.Ledger().Append(ctx, &reputation.Entry{
			ID:         shared.NewID(),
			ProfileID:  p.ID,
			Delta:      delta,
			Reason:     reputation.ReasonArticleCreated,
			ScoreAfter: i,
			CreatedAt:  time.Now(),
		}))
	}

	h := NewGetReputationHistoryHandler(f.deps)
	entries, err := h.Handle(ctx, GetReputationHistoryQuery{ProfileID: p.ID})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, 300, entries[0].Delta)

	page, err := h.Handle(ctx, GetReputationHistoryQuery{ProfileID: p.ID, Page: shared.Page{Limit: 1, Offset: 1}})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, -20, page[0].Delta)

	_, err = h.Handle(ctx, GetReputationHistoryQuery{ProfileID: "missing"})
	assert.ErrorIs(t, err, shared.ErrProfileNotFound)
}

func TestListTechnologies_SortedByName(t *testing.T) {
	f := newFixture(t)
	f.technology(t, "Rust")
	goTech := f.technology(t, "Go")

	list, err := NewListTechnologiesHandler(f.deps).Handle(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Go", list[0].Name)

	one, err := NewGetTechnologyHandler(f.deps).Handle(context.Background(), GetTechnologyQuery{TechnologyID: goTech.ID})
	require.NoError(t, err)
	assert.Equal(t, "go", one.Slug)
}
