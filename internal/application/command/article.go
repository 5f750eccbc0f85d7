package command

import (
	"context"

	"github.com/devask/devask-hub/internal/application/cache"
	"github.com/devask/devask-hub/internal/domain/access"
	"github.com/devask/devask-hub/internal/domain/article"
	"github.com/devask/devask-hub/internal/domain/reputation"
	"github.com/devask/devask-hub/internal/domain/shared"
	"github.com/devask/devask-hub/pkg/logger"
)

// ArticleResult carries the article a command produced.
type ArticleResult struct {
	Article *article.Article
}

// ══════════════════════════════════════════════════════════════════════════════
// CREATE ARTICLE
// ══════════════════════════════════════════════════════════════════════════════

// CreateArticleCommand publishes an article. The author earns points.
type CreateArticleCommand struct {
	Caller        access.Caller
	Title         string
	Content       string
	TechnologyIDs []string
	Unpublished   bool
}

// CreateArticleHandler handles CreateArticleCommand.
type CreateArticleHandler struct {
	deps Deps
}

// NewCreateArticleHandler creates a new CreateArticleHandler.
func NewCreateArticleHandler(deps Deps) *CreateArticleHandler {
	return &CreateArticleHandler{deps: deps.withDefaults()}
}

// Handle executes the command.
func (h *CreateArticleHandler) Handle(ctx context.Context, cmd CreateArticleCommand) (*ArticleResult, error) {
	if err := access.RequireAuthenticated(cmd.Caller); err != nil {
		return nil, err
	}

	a, err := article.NewArticle(article.NewArticleParams{
		Title:         cmd.Title,
		Content:       cmd.Content,
		AuthorID:      cmd.Caller.ProfileID,
		TechnologyIDs: cmd.TechnologyIDs,
		Unpublished:   cmd.Unpublished,
	})
	if err != nil {
		return nil, err
	}

	fx := effects{
		mutations: []cache.Mutation{cache.ArticleMutation(a.ID, a.AuthorID)},
		events:    []shared.Event{shared.NewContentEvent(shared.EventArticleCreated, a.ID, a.AuthorID, "")},
	}
	err = h.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := h.deps.Articles.Create(ctx, a); err != nil {
			return err
		}
		applied, err := h.deps.applyTransition(ctx, reputation.ArticleCreated{ArticleID: a.ID, AuthorID: a.AuthorID})
		fx.add(applied)
		return err
	})

	h.deps.finish(ctx, err, fx.mutations, fx.events)
	if err != nil {
		return nil, err
	}

	h.deps.Logger.Info("article created",
		logger.ArticleID(a.ID),
		logger.ProfileID(a.AuthorID),
	)
	return &ArticleResult{Article: a}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE ARTICLE
// ══════════════════════════════════════════════════════════════════════════════

// UpdateArticleCommand edits an article. Only the author may do it.
type UpdateArticleCommand struct {
	Caller    access.Caller
	ArticleID string
	Params    article.UpdateParams
}

// UpdateArticleHandler handles UpdateArticleCommand.
type UpdateArticleHandler struct {
	deps Deps
}

// NewUpdateArticleHandler creates a new UpdateArticleHandler.
func NewUpdateArticleHandler(deps Deps) *UpdateArticleHandler {
	return &UpdateArticleHandler{deps: deps.withDefaults()}
}

// Handle executes the command.
func (h *UpdateArticleHandler) Handle(ctx context.Context, cmd UpdateArticleCommand) (*ArticleResult, error) {
	if err := access.RequireAuthenticated(cmd.Caller); err != nil {
		return nil, err
	}

	a, err := h.deps.Articles.GetByID(ctx, cmd.ArticleID)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(cmd.Caller, access.Owned{Entity: a}); err != nil {
		return nil, err
	}
	if err := a.Update(cmd.Params); err != nil {
		return nil, err
	}

	err = h.deps.Articles.Update(ctx, a)
	h.deps.finish(ctx, err,
		[]cache.Mutation{cache.ArticleMutation(a.ID, a.AuthorID)},
		[]shared.Event{shared.NewContentEvent(shared.EventArticleUpdated, a.ID, a.AuthorID, "")},
	)
	if err != nil {
		return nil, err
	}
	if fresh, err := h.deps.Articles.GetByID(ctx, a.ID); err == nil {
		a = fresh
	}
	return &ArticleResult{Article: a}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DELETE ARTICLE
// ══════════════════════════════════════════════════════════════════════════════

// DeleteArticleCommand deletes an article and takes its points back.
type DeleteArticleCommand struct {
	Caller    access.Caller
	ArticleID string
}

// DeleteArticleHandler handles DeleteArticleCommand.
type DeleteArticleHandler struct {
	deps Deps
}

// NewDeleteArticleHandler creates a new DeleteArticleHandler.
func NewDeleteArticleHandler(deps Deps) *DeleteArticleHandler {
	return &DeleteArticleHandler{deps: deps.withDefaults()}
}

// Handle executes the command.
func (h *DeleteArticleHandler) Handle(ctx context.Context, cmd DeleteArticleCommand) error {
	if err := access.RequireAuthenticated(cmd.Caller); err != nil {
		return err
	}

	a, err := h.deps.Articles.GetByID(ctx, cmd.ArticleID)
	if err != nil {
		return err
	}
	if err := access.Authorize(cmd.Caller, access.Owned{Entity: a}); err != nil {
		return err
	}

	fx := effects{
		mutations: []cache.Mutation{cache.ArticleMutation(a.ID, a.AuthorID)},
		events:    []shared.Event{shared.NewContentEvent(shared.EventArticleDeleted, a.ID, a.AuthorID, "")},
	}
	err = h.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := h.deps.Articles.Delete(ctx, a.ID); err != nil {
			return err
		}
		applied, err := h.deps.applyTransition(ctx, reputation.ArticleDeleted{ArticleID: a.ID, AuthorID: a.AuthorID})
		fx.add(applied)
		return err
	})

	h.deps.finish(ctx, err, fx.mutations, fx.events)
	return err
}

// ══════════════════════════════════════════════════════════════════════════════
// TOGGLE ARTICLE LIKE
// ══════════════════════════════════════════════════════════════════════════════

// ToggleArticleLikeCommand likes an article or takes the like back.
type ToggleArticleLikeCommand struct {
	Caller    access.Caller
	ArticleID string
}

// ToggleArticleLikeHandler handles ToggleArticleLikeCommand.
type ToggleArticleLikeHandler struct {
	deps Deps
}

// NewToggleArticleLikeHandler creates a new ToggleArticleLikeHandler.
func NewToggleArticleLikeHandler(deps Deps) *ToggleArticleLikeHandler {
	return &ToggleArticleLikeHandler{deps: deps.withDefaults()}
}

// Handle executes the command.
func (h *ToggleArticleLikeHandler) Handle(ctx context.Context, cmd ToggleArticleLikeCommand) (*ToggleResult, error) {
	if err := access.RequireAuthenticated(cmd.Caller); err != nil {
		return nil, err
	}

	a, err := h.deps.Articles.GetByID(ctx, cmd.ArticleID)
	if err != nil {
		return nil, err
	}
	if !a.IsPublished && a.AuthorID != cmd.Caller.ProfileID {
		return nil, shared.ErrArticleNotFound
	}

	liked, count, err := h.deps.Articles.ToggleLike(ctx, a.ID, cmd.Caller.ProfileID)
	h.deps.finish(ctx, err, []cache.Mutation{cache.ArticleMutation(a.ID, a.AuthorID)}, nil)
	if err != nil {
		return nil, err
	}
	return &ToggleResult{Active: liked, Count: count}, nil
}
