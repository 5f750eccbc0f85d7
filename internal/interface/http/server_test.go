package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/crypto/bcrypt"

	"github.com/devask/devask-hub/internal/application/auth"
	"github.com/devask/devask-hub/internal/application/cache"
	"github.com/devask/devask-hub/internal/application/command"
	"github.com/devask/devask-hub/internal/application/query"
	"github.com/devask/devask-hub/internal/domain/profile"
	"github.com/devask/devask-hub/internal/infrastructure/persistence/memory"
	"github.com/devask/devask-hub/internal/infrastructure/security"
	"github.com/devask/devask-hub/internal/interface/http/handlers"
	"github.com/devask/devask-hub/pkg/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// ══════════════════════════════════════════════════════════════════════════════
// FIXTURES
// ══════════════════════════════════════════════════════════════════════════════

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *ResponseMeta   `json:"meta"`
}

type apiFixture struct {
	t       *testing.T
	srv     *Server
	handler http.Handler
	store   *memory.Store
	hasher  *security.PasswordHasher
	authSvc *auth.Service
}

func newAPI(t *testing.T, configure ...func(*Config, *Dependencies)) *apiFixture {
	t.Helper()
	store := memory.NewStore()
	c := memory.NewCache()
	log := logger.Nop()
	hasher := security.NewPasswordHasher(bcrypt.MinCost)

	tokenCfg := security.DefaultTokenConfig()
	tokenCfg.Secret = "http-test-secret"
	issuer, err := security.NewTokenIssuer(tokenCfg)
	require.NoError(t, err)
	authSvc := auth.NewService(store.Profiles(), issuer, hasher, c, log)

	cfg := DefaultConfig()
	deps := Dependencies{
		Commands: command.Deps{
			Tx:           store,
			Profiles:     store.Profiles(),
			Questions:    store.Questions(),
			Answers:      store.Answers(),
			Articles:     store.Articles(),
			Credentials:  store.Credentials(),
			Technologies: store.Technologies(),
			Ledger:       store.Ledger(),
			Invalidator:  cache.NewInvalidator(c, log),
			Logger:       log,
		},
		Queries: query.Deps{
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
		Hasher: hasher,
		Auth:   authSvc,
		Logger: log,
	}
	for _, fn := range configure {
		fn(&cfg, &deps)
	}

	srv := NewServer(cfg, deps)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	return &apiFixture{t: t, srv: srv, handler: srv.Handler(), store: store, hasher: hasher, authSvc: authSvc}
}

func (f *apiFixture) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	f.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(f.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(f.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

// signup registers a profile and returns its id and an access token.
func (f *apiFixture) signup(username string) (string, string) {
	f.t.Helper()
	rec, env := f.do(http.MethodPost, "/api/v1/profiles", "", map[string]string{
		"username":   username,
		"password":   "correct horse",
		"email":      username + "@example.com",
		"first_name": "Test",
		"last_name":  "User",
	})
	require.Equal(f.t, http.StatusCreated, rec.Code, rec.Body.String())
	p := decodeData[query.ProfileDTO](f.t, env)

	return p.ID, f.login(username, "correct horse").Access
}

func (f *apiFixture) login(username, password string) auth.TokenPair {
	f.t.Helper()
	rec, env := f.do(http.MethodPost, "/api/v1/authentication/token", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(f.t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeData[auth.TokenPair](f.t, env)
}

func (f *apiFixture) adminToken() string {
	f.t.Helper()
	hash, err := f.hasher.Hash("admin-password")
	require.NoError(f.t, err)
	p, err := profile.NewProfile(profile.NewProfileParams{Username: "admin", PasswordHash: hash, IsAdmin: true})
	require.NoError(f.t, err)
	require.NoError(f.t, f.store.Profiles().Create(context.Background(), p))
	return f.login("admin", "admin-password").Access
}

func (f *apiFixture) createQuestion(token string) query.QuestionDTO {
	f.t.Helper()
	rec, env := f.do(http.MethodPost, "/api/v1/questions", token, map[string]any{
		"title":   "How do I cancel a context?",
		"content": "The goroutine keeps running.",
	})
	require.Equal(f.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeData[query.QuestionDTO](f.t, env)
}

// ══════════════════════════════════════════════════════════════════════════════
// AUTHENTICATION
// ══════════════════════════════════════════════════════════════════════════════

func TestAuthenticationFlow(t *testing.T) {
	f := newAPI(t)
	id, _ := f.signup("alice")
	pair := f.login("alice", "correct horse")

	rec, env := f.do(http.MethodPost, "/api/v1/authentication/token/verify", "", map[string]string{"token": pair.Access})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	rec, env = f.do(http.MethodPost, "/api/v1/authentication/token/refresh", "", map[string]string{"refresh": pair.Refresh})
	require.Equal(t, http.StatusOK, rec.Code)
	refreshed := decodeData[map[string]string](t, env)
	assert.NotEmpty(t, refreshed["access"])

	// The owner sees their email.
	_, env = f.do(http.MethodGet, "/api/v1/profiles/"+id, pair.Access, nil)
	assert.Equal(t, "alice@example.com", decodeData[query.ProfileDTO](t, env).Email)

	rec, _ = f.do(http.MethodPost, "/api/v1/authentication/logout", "", map[string]string{
		"refresh": pair.Refresh,
		"access":  pair.Access,
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, env = f.do(http.MethodPost, "/api/v1/authentication/token/refresh", "", map[string]string{"refresh": pair.Refresh})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", env.Error.Code)

	// A revoked access token is rejected even on public routes.
	rec, _ = f.do(http.MethodGet, "/api/v1/questions", pair.Access, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newAPI(t)
	f.signup("alice")

	rec, env := f.do(http.MethodPost, "/api/v1/authentication/token", "", map[string]string{
		"username": "alice",
		"password": "nope-nope",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.Success)

	rec, _ = f.do(http.MethodPost, "/api/v1/authentication/token", "", map[string]string{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMalformedAuthorizationHeader(t *testing.T) {
	f := newAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/questions", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegistrationDisabled(t *testing.T) {
	f := newAPI(t, func(c *Config, _ *Dependencies) { c.AllowRegistration = false })
	rec, env := f.do(http.MethodPost, "/api/v1/profiles", "", map[string]string{
		"username": "alice",
		"password": "correct horse",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "registration is disabled", env.Error.Message)
}

// ══════════════════════════════════════════════════════════════════════════════
// QUESTIONS AND ANSWERS
// ══════════════════════════════════════════════════════════════════════════════

func TestQuestionAnswerLifecycle(t *testing.T) {
	f := newAPI(t)
	_, ownerToken := f.signup("owner")
	helperID, helperToken := f.signup("helper")

	rec, _ := f.do(http.MethodPost, "/api/v1/questions", "", map[string]string{"title": "t", "content": "c"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	q := f.createQuestion(ownerToken)
	require.NotNil(t, q.Owner)
	assert.Equal(t, "owner", q.Owner.Username)

	// Trailing slashes reach the same route.
	rec, env := f.do(http.MethodGet, "/api/v1/questions/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeData[[]query.QuestionDTO](t, env), 1)
	require.NotNil(t, env.Meta.Count)
	assert.Equal(t, 1, *env.Meta.Count)

	rec, env = f.do(http.MethodPost, "/api/v1/answers", helperToken, map[string]string{
		"question_id": q.ID,
		"content":     "Call cancel().",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	a := decodeData[query.AnswerDTO](t, env)

	// Only the question owner accepts.
	rec, _ = f.do(http.MethodPatch, "/api/v1/answers/"+a.ID+"/accept", helperToken, map[string]bool{"is_accepted": true})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = f.do(http.MethodPatch, "/api/v1/answers/"+a.ID+"/accept", ownerToken, map[string]bool{"is_accepted": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decodeData[query.AnswerDTO](t, env).IsAccepted)

	_, env = f.do(http.MethodGet, "/api/v1/questions/"+q.ID, "", nil)
	assert.True(t, decodeData[query.QuestionDTO](t, env).IsSolutioned)

	_, env = f.do(http.MethodGet, "/api/v1/profiles/"+helperID, "", nil)
	helper := decodeData[query.ProfileDTO](t, env)
	assert.Equal(t, 20, helper.ReputationScore)
	assert.Equal(t, 1, helper.AnswersAccepted)
	assert.Empty(t, helper.Email)

	_, env = f.do(http.MethodGet, "/api/v1/profiles/"+helperID+"/reputation", "", nil)
	history := decodeData[[]query.LedgerEntryDTO](t, env)
	require.Len(t, history, 1)
	assert.Equal(t, 20, history[0].Delta)

	// A solutioned question takes no more answers.
	rec, env = f.do(http.MethodPost, "/api/v1/answers", helperToken, map[string]string{
		"question_id": q.ID,
		"content":     "Another idea.",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", env.Error.Code)

	// Revoking takes the points back.
	rec, _ = f.do(http.MethodPatch, "/api/v1/answers/"+a.ID+"/accept", ownerToken, map[string]bool{"is_accepted": false})
	require.Equal(t, http.StatusOK, rec.Code)
	_, env = f.do(http.MethodGet, "/api/v1/profiles/"+helperID, "", nil)
	assert.Equal(t, 0, decodeData[query.ProfileDTO](t, env).ReputationScore)

	_, env = f.do(http.MethodGet, "/api/v1/questions/"+q.ID+"/answers", "", nil)
	assert.Len(t, decodeData[[]query.AnswerDTO](t, env), 1)

	rec, _ = f.do(http.MethodDelete, "/api/v1/answers/"+a.ID, ownerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = f.do(http.MethodDelete, "/api/v1/answers/"+a.ID, helperToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec, _ = f.do(http.MethodGet, "/api/v1/answers/"+a.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestToggles(t *testing.T) {
	f := newAPI(t)
	_, ownerToken := f.signup("owner")
	_, fanToken := f.signup("fan")
	q := f.createQuestion(ownerToken)

	_, env := f.do(http.MethodPost, "/api/v1/questions/"+q.ID+"/likes", fanToken, nil)
	assert.Equal(t, likeResponse{Liked: true, LikesCount: 1}, decodeData[likeResponse](t, env))
	_, env = f.do(http.MethodPost, "/api/v1/questions/"+q.ID+"/likes", fanToken, nil)
	assert.Equal(t, likeResponse{Liked: false, LikesCount: 0}, decodeData[likeResponse](t, env))

	rec, env := f.do(http.MethodPost, "/api/v1/answers", fanToken, map[string]string{"question_id": q.ID, "content": "Use select."})
	require.Equal(t, http.StatusCreated, rec.Code)
	a := decodeData[query.AnswerDTO](t, env)

	_, env = f.do(http.MethodPost, "/api/v1/answers/"+a.ID+"/upvote", ownerToken, nil)
	assert.Equal(t, upvoteResponse{Upvoted: true, UpvotesCount: 1}, decodeData[upvoteResponse](t, env))

	rec, _ = f.do(http.MethodPost, "/api/v1/questions/"+q.ID+"/likes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateAndDeleteQuestion(t *testing.T) {
	f := newAPI(t)
	_, ownerToken := f.signup("owner")
	_, otherToken := f.signup("other")
	q := f.createQuestion(ownerToken)

	rec, _ := f.do(http.MethodPatch, "/api/v1/questions/"+q.ID, otherToken, map[string]string{"title": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env := f.do(http.MethodPatch, "/api/v1/questions/"+q.ID, ownerToken, map[string]any{"title": "Renamed", "is_published": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeData[query.QuestionDTO](t, env)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, q.Content, updated.Content)

	// Unpublished questions are hidden.
	rec, _ = f.do(http.MethodGet, "/api/v1/questions/"+q.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = f.do(http.MethodDelete, "/api/v1/questions/"+q.ID, ownerToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestListQuestions_Filters(t *testing.T) {
	f := newAPI(t)
	_, token := f.signup("owner")
	f.createQuestion(token)

	_, env := f.do(http.MethodGet, "/api/v1/questions?search=CANCEL&is_solutioned=false", "", nil)
	assert.Len(t, decodeData[[]query.QuestionDTO](t, env), 1)

	_, env = f.do(http.MethodGet, "/api/v1/questions?search=mutex", "", nil)
	assert.Empty(t, decodeData[[]query.QuestionDTO](t, env))

	rec, env := f.do(http.MethodGet, "/api/v1/questions?year=last", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_input", env.Error.Code)

	rec, _ = f.do(http.MethodGet, "/api/v1/questions?is_solutioned=maybe", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.do(http.MethodGet, "/api/v1/questions?offset=-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ══════════════════════════════════════════════════════════════════════════════
// ARTICLES
// ══════════════════════════════════════════════════════════════════════════════

func TestArticles(t *testing.T) {
	f := newAPI(t)
	authorID, authorToken := f.signup("writer")

	rec, env := f.do(http.MethodPost, "/api/v1/articles", authorToken, map[string]any{
		"title":        "Context in depth",
		"content":      "Cancellation propagates down.",
		"is_published": false,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	draft := decodeData[query.ArticleDTO](t, env)
	assert.False(t, draft.IsPublished)

	rec, _ = f.do(http.MethodGet, "/api/v1/articles/"+draft.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = f.do(http.MethodGet, "/api/v1/articles/"+draft.ID, authorToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	_, env = f.do(http.MethodGet, "/api/v1/articles?author="+authorID+"&include_drafts=true", authorToken, nil)
	assert.Len(t, decodeData[[]query.ArticleDTO](t, env), 1)
	_, env = f.do(http.MethodGet, "/api/v1/articles?author="+authorID+"&include_drafts=true", "", nil)
	assert.Empty(t, decodeData[[]query.ArticleDTO](t, env))

	_, env = f.do(http.MethodGet, "/api/v1/profiles/"+authorID, "", nil)
	assert.Equal(t, 20, decodeData[query.ProfileDTO](t, env).ReputationScore)

	rec, _ = f.do(http.MethodDelete, "/api/v1/articles/"+draft.ID, authorToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, env = f.do(http.MethodGet, "/api/v1/profiles/"+authorID, "", nil)
	assert.Equal(t, 0, decodeData[query.ProfileDTO](t, env).ReputationScore)
}

// ══════════════════════════════════════════════════════════════════════════════
// CREDENTIALS AND TAGS
// ══════════════════════════════════════════════════════════════════════════════

func TestCredentials(t *testing.T) {
	f := newAPI(t)
	ownerID, ownerToken := f.signup("engineer")
	_, otherToken := f.signup("other")
	adminToken := f.adminToken()

	body := map[string]any{
		"role":        "Backend Engineer",
		"type":        "PRO",
		"experience":  "PL",
		"institution": "Acme",
		"start_date":  "2020-01-15",
	}

	rec, _ := f.do(http.MethodPost, "/api/v1/credentials", ownerToken, map[string]any{
		"role": "x", "type": "PRO", "experience": "PL", "institution": "Acme", "start_date": "15/01/2020",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env := f.do(http.MethodPost, "/api/v1/credentials", ownerToken, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cred := decodeData[query.CredentialDTO](t, env)
	assert.Equal(t, "2020-01-15", cred.StartDate)
	assert.Nil(t, cred.EndDate)

	rec, _ = f.do(http.MethodPost, "/api/v1/credentials", ownerToken, body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// PATCH keeps the fields it does not name.
	rec, env = f.do(http.MethodPatch, "/api/v1/credentials/"+cred.ID, ownerToken, map[string]string{"role": "Staff Engineer"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	edited := decodeData[query.CredentialDTO](t, env)
	assert.Equal(t, "Staff Engineer", edited.Role)
	assert.Equal(t, "Acme", edited.Institution)

	rec, _ = f.do(http.MethodPatch, "/api/v1/credentials/"+cred.ID, otherToken, map[string]string{"role": "Intern"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = f.do(http.MethodPatch, "/api/v1/credentials/"+cred.ID+"/validate", ownerToken, map[string]bool{"is_verified": true})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = f.do(http.MethodPatch, "/api/v1/credentials/"+cred.ID+"/validate", adminToken, map[string]bool{"is_verified": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decodeData[query.CredentialDTO](t, env).IsVerified)

	_, env = f.do(http.MethodGet, "/api/v1/profiles/"+ownerID, "", nil)
	owner := decodeData[query.ProfileDTO](t, env)
	assert.Equal(t, 300, owner.ReputationScore)
	assert.True(t, owner.IsProfessional)

	rec, _ = f.do(http.MethodPatch, "/api/v1/credentials/"+cred.ID, ownerToken, map[string]string{"role": "CTO"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = f.do(http.MethodDelete, "/api/v1/credentials/"+cred.ID, ownerToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, env = f.do(http.MethodGet, "/api/v1/profiles/"+ownerID, "", nil)
	assert.Equal(t, 0, decodeData[query.ProfileDTO](t, env).ReputationScore)
}

func TestTags(t *testing.T) {
	f := newAPI(t)
	_, userToken := f.signup("user")
	adminToken := f.adminToken()

	rec, _ := f.do(http.MethodPost, "/api/v1/tags", userToken, map[string]string{"name": "Golang"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env := f.do(http.MethodPost, "/api/v1/tags", adminToken, map[string]string{"name": "Golang"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tag := decodeData[query.TechnologyDTO](t, env)
	assert.Equal(t, "golang", tag.Slug)

	rec, _ = f.do(http.MethodPost, "/api/v1/tags", adminToken, map[string]string{"name": "Golang"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, env = f.do(http.MethodPut, "/api/v1/tags/"+tag.ID, adminToken, map[string]string{"name": "Golang", "color": "#00ADD8"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "#00add8", decodeData[query.TechnologyDTO](t, env).Color)

	_, env = f.do(http.MethodGet, "/api/v1/tags", "", nil)
	assert.Len(t, decodeData[[]query.TechnologyDTO](t, env), 1)

	rec, _ = f.do(http.MethodDelete, "/api/v1/tags/"+tag.ID, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec, _ = f.do(http.MethodGet, "/api/v1/tags/"+tag.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS, HEALTH AND MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

func TestErrorEnvelope(t *testing.T) {
	f := newAPI(t)
	_, token := f.signup("alice")

	rec, env := f.do(http.MethodPost, "/api/v1/questions", token, "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "malformed JSON body", env.Error.Message)

	rec, env = f.do(http.MethodGet, "/api/v1/questions/does-not-exist", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "not_found", env.Error.Code)
	assert.NotEmpty(t, env.Meta.RequestID)

	rec, env = f.do(http.MethodGet, "/api/v1/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", env.Error.Code)

	rec, _ = f.do(http.MethodPut, "/api/v1/questions", token, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStatusFor(t *testing.T) {
	status, code := statusFor(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal_error", code)
}

func TestHealthEndpoints(t *testing.T) {
	checker := handlers.NewCompositeHealthChecker("test")
	down := false
	checker.AddCheck("database", func(context.Context) error {
		if down {
			return errors.New("connection refused")
		}
		return nil
	})
	f := newAPI(t, func(_ *Config, d *Dependencies) { d.HealthChecker = checker })

	rec, _ := f.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = f.do(http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	down = true
	rec, env := f.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unhealthy", env.Error.Code)
	rec, _ = f.do(http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec, _ = f.do(http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit(t *testing.T) {
	f := newAPI(t, func(c *Config, _ *Dependencies) { c.RateLimitPerMinute = 2 })

	for i := 0; i < 2; i++ {
		rec, _ := f.do(http.MethodGet, "/health/live", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec, env := f.do(http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate_limit_exceeded", env.Error.Code)
	// Two per minute refill one token every 30 seconds.
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
}

func TestCORSPreflight(t *testing.T) {
	f := newAPI(t, func(c *Config, _ *Dependencies) { c.AllowedOrigins = []string{"https://devask.example"} })

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/questions", nil)
	req.Header.Set("Origin", "https://devask.example")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://devask.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDPropagation(t *testing.T) {
	f := newAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "req-123", env.Meta.RequestID)
}

func TestRecoveryMiddleware(t *testing.T) {
	f := newAPI(t)
	h := f.srv.recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
