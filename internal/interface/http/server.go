// Package http implements the REST API of DevAsk Hub.
//
// One route set lives under /api/v1. Handlers decode the request, resolve
// the caller from the bearer token, call the command or query handler and
// write the response envelope.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/devask/devask-hub/internal/application/command"
	"github.com/devask/devask-hub/internal/application/query"
	"github.com/devask/devask-hub/internal/interface/http/handlers"
	"github.com/devask/devask-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains HTTP server configuration.
type Config struct {
	// Addr - address to listen on (default: ":8080").
	Addr string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// MaxHeaderBytes - maximum size of request headers.
	MaxHeaderBytes int

	// MaxBodyBytes - maximum size of request bodies.
	MaxBodyBytes int64

	// AllowedOrigins - allowed origins for CORS. Empty disables CORS headers.
	AllowedOrigins []string

	// RateLimitPerMinute - requests per minute per IP (0 = disabled).
	RateLimitPerMinute int

	// AllowRegistration - anonymous sign-up through POST /profiles.
	AllowRegistration bool

	// Version is reported by the health endpoints.
	Version string
}

// DefaultConfig returns default server configuration.
func DefaultConfig() Config {
	return Config{
		Addr:              ":8080",
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
		MaxBodyBytes:      1 << 20,
		AllowedOrigins:    []string{"*"},
		AllowRegistration: true,
		Version:           "v1",
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// Dependencies contains everything the HTTP handlers are built from.
type Dependencies struct {
	// Commands and Queries are the ports of the write and read side.
	Commands command.Deps
	Queries  query.Deps

	// Hasher hashes passwords on registration.
	Hasher command.PasswordHasher

	// Auth issues and checks tokens.
	Auth Authenticator

	// HealthChecker backs /health and /health/ready. Nil reports healthy.
	HealthChecker handlers.HealthChecker

	Logger *logger.Logger
}

// handlerSet holds one instance of every command and query handler.
type handlerSet struct {
	// Profiles
	registerProfile *command.RegisterProfileHandler
	updateProfile   *command.UpdateProfileHandler
	deleteProfile   *command.DeleteProfileHandler
	getProfile      *query.GetProfileHandler
	listProfiles    *query.ListProfilesHandler
	reputation      *query.GetReputationHistoryHandler

	// Questions
	createQuestion *command.CreateQuestionHandler
	updateQuestion *command.UpdateQuestionHandler
	deleteQuestion *command.DeleteQuestionHandler
	likeQuestion   *command.ToggleQuestionLikeHandler
	getQuestion    *query.GetQuestionHandler
	listQuestions  *query.ListQuestionsHandler

	// Answers
	submitAnswer  *command.SubmitAnswerHandler
	editAnswer    *command.EditAnswerHandler
	deleteAnswer  *command.DeleteAnswerHandler
	acceptAnswer  *command.SetAnswerAcceptanceHandler
	upvoteAnswer  *command.ToggleAnswerUpvoteHandler
	getAnswer     *query.GetAnswerHandler
	listAnswers   *query.ListAnswersHandler

	// Articles
	createArticle *command.CreateArticleHandler
	updateArticle *command.UpdateArticleHandler
	deleteArticle *command.DeleteArticleHandler
	likeArticle   *command.ToggleArticleLikeHandler
	getArticle    *query.GetArticleHandler
	listArticles  *query.ListArticlesHandler

	// Credentials
	createCredential *command.CreateCredentialHandler
	editCredential   *command.EditCredentialHandler
	deleteCredential *command.DeleteCredentialHandler
	verifyCredential *command.SetCredentialVerificationHandler
	getCredential    *query.GetCredentialHandler

	// Technologies
	createTechnology *command.CreateTechnologyHandler
	updateTechnology *command.UpdateTechnologyHandler
	deleteTechnology *command.DeleteTechnologyHandler
	getTechnology    *query.GetTechnologyHandler
	listTechnologies *query.ListTechnologiesHandler

	present *query.Presenter
}

func newHandlerSet(deps Dependencies) handlerSet {
	c, q := deps.Commands, deps.Queries
	return handlerSet{
		registerProfile: command.NewRegisterProfileHandler(c, deps.Hasher),
		updateProfile:   command.NewUpdateProfileHandler(c),
		deleteProfile:   command.NewDeleteProfileHandler(c),
		getProfile:      query.NewGetProfileHandler(q),
		listProfiles:    query.NewListProfilesHandler(q),
		reputation:      query.NewGetReputationHistoryHandler(q),

		createQuestion: command.NewCreateQuestionHandler(c),
		updateQuestion: command.NewUpdateQuestionHandler(c),
		deleteQuestion: command.NewDeleteQuestionHandler(c),
		likeQuestion:   command.NewToggleQuestionLikeHandler(c),
		getQuestion:    query.NewGetQuestionHandler(q),
		listQuestions:  query.NewListQuestionsHandler(q),

		submitAnswer: command.NewSubmitAnswerHandler(c),
		editAnswer:   command.NewEditAnswerHandler(c),
		deleteAnswer: command.NewDeleteAnswerHandler(c),
		acceptAnswer: command.NewSetAnswerAcceptanceHandler(c),
		upvoteAnswer: command.NewToggleAnswerUpvoteHandler(c),
		getAnswer:    query.NewGetAnswerHandler(q),
		listAnswers:  query.NewListAnswersHandler(q),

		createArticle: command.NewCreateArticleHandler(c),
		updateArticle: command.NewUpdateArticleHandler(c),
		deleteArticle: command.NewDeleteArticleHandler(c),
		likeArticle:   command.NewToggleArticleLikeHandler(c),
		getArticle:    query.NewGetArticleHandler(q),
		listArticles:  query.NewListArticlesHandler(q),

		createCredential: command.NewCreateCredentialHandler(c),
		editCredential:   command.NewEditCredentialHandler(c),
		deleteCredential: command.NewDeleteCredentialHandler(c),
		verifyCredential: command.NewSetCredentialVerificationHandler(c),
		getCredential:    query.NewGetCredentialHandler(q),

		createTechnology: command.NewCreateTechnologyHandler(c),
		updateTechnology: command.NewUpdateTechnologyHandler(c),
		deleteTechnology: command.NewDeleteTechnologyHandler(c),
		getTechnology:    query.NewGetTechnologyHandler(q),
		listTechnologies: query.NewListTechnologiesHandler(q),

		present: query.NewPresenter(q),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// Server represents the HTTP server.
type Server struct {
	config     Config
	deps       Dependencies
	h          handlerSet
	httpServer *http.Server
	router     *mux.Router
	logger     *logger.Logger

	rateLimiter *rateLimiter

	mu        sync.RWMutex
	running   bool
	startedAt time.Time
}

// NewServer creates a new HTTP server with the given configuration and dependencies.
func NewServer(config Config, deps Dependencies) *Server {
	s := &Server{
		config: config,
		deps:   deps,
		h:      newHandlerSet(deps),
		router: mux.NewRouter(),
		logger: deps.Logger,
	}

	if s.logger == nil {
		s.logger = logger.Default()
	}
	s.logger = s.logger.With(logger.Component("http"))

	if config.RateLimitPerMinute > 0 {
		s.rateLimiter = newRateLimiter(config.RateLimitPerMinute, time.Minute)
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:           config.Addr,
		Handler:        s.Handler(),
		ReadTimeout:    config.ReadTimeout,
		WriteTimeout:   config.WriteTimeout,
		IdleTimeout:    config.IdleTimeout,
		MaxHeaderBytes: config.MaxHeaderBytes,
	}

	return s
}

// Handler returns the router wrapped with the middleware chain.
func (s *Server) Handler() http.Handler {
	chain := []handlers.MiddlewareFunc{
		s.recoveryMiddleware,
		s.requestIDMiddleware,
		s.loggingMiddleware,
		handlers.SecurityHeadersMiddleware,
	}
	if len(s.config.AllowedOrigins) > 0 {
		chain = append(chain, s.corsMiddleware)
	}
	if s.rateLimiter != nil {
		chain = append(chain, s.rateLimitMiddleware)
	}
	if s.config.MaxBodyBytes > 0 {
		chain = append(chain, handlers.RequestSizeLimitMiddleware(s.config.MaxBodyBytes))
	}
	chain = append(chain, handlers.TrimTrailingSlash)

	return handlers.ChainHandler(s.router, chain...)
}

// ══════════════════════════════════════════════════════════════════════════════
// ROUTING
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) setupRoutes() {
	s.router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
	s.router.MethodNotAllowedHandler = http.HandlerFunc(s.handleMethodNotAllowed)

	// ─────────────────────────────────────────────────────────────────────────
	// Health & Status Endpoints
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/health/ready", s.handleReady).Methods(http.MethodGet)
	s.router.HandleFunc("/health/live", s.handleLive).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.Use(s.tracingMiddleware, s.authMiddleware)

	// ─────────────────────────────────────────────────────────────────────────
	// Authentication
	// ─────────────────────────────────────────────────────────────────────────
	api.HandleFunc("/authentication/token", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/authentication/token/refresh", s.handleRefresh).Methods(http.MethodPost)
	api.HandleFunc("/authentication/token/verify", s.handleVerify).Methods(http.MethodPost)
	api.HandleFunc("/authentication/logout", s.handleLogout).Methods(http.MethodPost)

	// ─────────────────────────────────────────────────────────────────────────
	// Profiles
	// ─────────────────────────────────────────────────────────────────────────
	api.HandleFunc("/profiles", s.handleListProfiles).Methods(http.MethodGet)
	api.HandleFunc("/profiles", s.handleRegisterProfile).Methods(http.MethodPost)
	api.HandleFunc("/profiles/{id}", s.handleGetProfile).Methods(http.MethodGet)
	api.HandleFunc("/profiles/{id}", s.handleUpdateProfile).Methods(http.MethodPatch)
	api.HandleFunc("/profiles/{id}", s.handleDeleteProfile).Methods(http.MethodDelete)
	api.HandleFunc("/profiles/{id}/reputation", s.handleReputationHistory).Methods(http.MethodGet)

	// ─────────────────────────────────────────────────────────────────────────
	// Questions
	// ─────────────────────────────────────────────────────────────────────────
	api.HandleFunc("/questions", s.handleListQuestions).Methods(http.MethodGet)
	api.HandleFunc("/questions", s.handleCreateQuestion).Methods(http.MethodPost)
	api.HandleFunc("/questions/{id}", s.handleGetQuestion).Methods(http.MethodGet)
	api.HandleFunc("/questions/{id}", s.handleUpdateQuestion).Methods(http.MethodPatch)
	api.HandleFunc("/questions/{id}", s.handleDeleteQuestion).Methods(http.MethodDelete)
	api.HandleFunc("/questions/{id}/likes", s.handleLikeQuestion).Methods(http.MethodPost)
	api.HandleFunc("/questions/{id}/answers", s.handleListAnswers).Methods(http.MethodGet)

	// ─────────────────────────────────────────────────────────────────────────
	// Answers
	// ─────────────────────────────────────────────────────────────────────────
	api.HandleFunc("/answers", s.handleSubmitAnswer).Methods(http.MethodPost)
	api.HandleFunc("/answers/{id}", s.handleGetAnswer).Methods(http.MethodGet)
	api.HandleFunc("/answers/{id}", s.handleEditAnswer).Methods(http.MethodPatch)
	api.HandleFunc("/answers/{id}", s.handleDeleteAnswer).Methods(http.MethodDelete)
	api.HandleFunc("/answers/{id}/accept", s.handleAcceptAnswer).Methods(http.MethodPatch)
	api.HandleFunc("/answers/{id}/upvote", s.handleUpvoteAnswer).Methods(http.MethodPost)

	// ─────────────────────────────────────────────────────────────────────────
	// Articles
	// ─────────────────────────────────────────────────────────────────────────
	api.HandleFunc("/articles", s.handleListArticles).Methods(http.MethodGet)
	api.HandleFunc("/articles", s.handleCreateArticle).Methods(http.MethodPost)
	api.HandleFunc("/articles/{id}", s.handleGetArticle).Methods(http.MethodGet)
	api.HandleFunc("/articles/{id}", s.handleUpdateArticle).Methods(http.MethodPatch)
	api.HandleFunc("/articles/{id}", s.handleDeleteArticle).Methods(http.MethodDelete)
	api.HandleFunc("/articles/{id}/like", s.handleLikeArticle).Methods(http.MethodPost)

	// ─────────────────────────────────────────────────────────────────────────
	// Credentials
	// ─────────────────────────────────────────────────────────────────────────
	api.HandleFunc("/credentials", s.handleCreateCredential).Methods(http.MethodPost)
	api.HandleFunc("/credentials/{id}", s.handleGetCredential).Methods(http.MethodGet)
	api.HandleFunc("/credentials/{id}", s.handleEditCredential).Methods(http.MethodPatch)
	api.HandleFunc("/credentials/{id}", s.handleDeleteCredential).Methods(http.MethodDelete)
	api.HandleFunc("/credentials/{id}/validate", s.handleVerifyCredential).Methods(http.MethodPatch)

	// ─────────────────────────────────────────────────────────────────────────
	// Technologies
	// ─────────────────────────────────────────────────────────────────────────
	api.HandleFunc("/tags", s.handleListTechnologies).Methods(http.MethodGet)
	api.HandleFunc("/tags", s.handleCreateTechnology).Methods(http.MethodPost)
	api.HandleFunc("/tags/{id}", s.handleGetTechnology).Methods(http.MethodGet)
	api.HandleFunc("/tags/{id}", s.handleUpdateTechnology).Methods(http.MethodPut)
	api.HandleFunc("/tags/{id}", s.handleDeleteTechnology).Methods(http.MethodDelete)
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.running = true
	s.startedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("starting HTTP server", logger.String("address", s.config.Addr))

	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server and stops background work.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Uptime returns the server uptime.
func (s *Server) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return 0
	}
	return time.Since(s.startedAt)
}
