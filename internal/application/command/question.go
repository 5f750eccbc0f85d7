package command

import (
	"context"
	"fmt"

	"github.com/devask/devask-hub/internal/application/cache"
	"github.com/devask/devask-hub/internal/domain/access"
	"github.com/devask/devask-hub/internal/domain/question"
	"github.com/devask/devask-hub/internal/domain/reputation"
	"github.com/devask/devask-hub/internal/domain/shared"
	"github.com/devask/devask-hub/pkg/logger"
)

// QuestionResult carries the question a command produced.
type QuestionResult struct {
	Question *question.Question
}

// ToggleResult is returned by like and upvote toggles.
type ToggleResult struct {
	// Active is true when the caller's like or upvote is now present.
	Active bool
	Count  int
}

// ══════════════════════════════════════════════════════════════════════════════
// CREATE QUESTION
// ══════════════════════════════════════════════════════════════════════════════

// CreateQuestionCommand posts a new question owned by the caller.
type CreateQuestionCommand struct {
	Caller        access.Caller
	Title         string
	Content       string
	TechnologyIDs []string
	Unpublished   bool
}

// CreateQuestionHandler handles CreateQuestionCommand.
type CreateQuestionHandler struct {
	deps Deps
}

// NewCreateQuestionHandler creates a new CreateQuestionHandler.
func NewCreateQuestionHandler(deps Deps) *CreateQuestionHandler {
	return &CreateQuestionHandler{deps: deps.withDefaults()}
}

// Handle executes the command.
func (h *CreateQuestionHandler) Handle(ctx context.Context, cmd CreateQuestionCommand) (*QuestionResult, error) {
	if err := access.RequireAuthenticated(cmd.Caller); err != nil {
		return nil, err
	}

	q, err := question.NewQuestion(question.NewQuestionParams{
		Title:         cmd.Title,
		Content:       cmd.Content,
		ProfileID:     cmd.Caller.ProfileID,
		TechnologyIDs: cmd.TechnologyIDs,
		Unpublished:   cmd.Unpublished,
	})
	if err != nil {
		return nil, err
	}

	err = h.deps.Questions.Create(ctx, q)
	h.deps.finish(ctx, err,
		[]cache.Mutation{cache.QuestionMutation(q.ID, q.ProfileID)},
		[]shared.Event{shared.NewContentEvent(shared.EventQuestionCreated, q.ID, q.ProfileID, "")},
	)
	if err != nil {
		return nil, err
	}
	return &QuestionResult{Question: q}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE QUESTION
// ══════════════════════════════════════════════════════════════════════════════

// UpdateQuestionCommand edits a question. Only the owner may do it.
type UpdateQuestionCommand struct {
	Caller     access.Caller
	QuestionID string
	Params     question.UpdateParams
}

// UpdateQuestionHandler handles UpdateQuestionCommand.
type UpdateQuestionHandler struct {
	deps Deps
}

// NewUpdateQuestionHandler creates a new UpdateQuestionHandler.
func NewUpdateQuestionHandler(deps Deps) *UpdateQuestionHandler {
	return &UpdateQuestionHandler{deps: deps.withDefaults()}
}

// Handle executes the command.
func (h *UpdateQuestionHandler) Handle(ctx context.Context, cmd UpdateQuestionCommand) (*QuestionResult, error) {
	if err := access.RequireAuthenticated(cmd.Caller); err != nil {
		return nil, err
	}

	q, err := h.deps.Questions.GetByID(ctx, cmd.QuestionID)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(cmd.Caller, access.Owned{Entity: q}); err != nil {
		return nil, err
	}
	if err := q.Update(cmd.Params); err != nil {
		return nil, err
	}

	err = h.deps.Questions.Update(ctx, q)
	h.deps.finish(ctx, err,
		[]cache.Mutation{cache.QuestionMutation(q.ID, q.ProfileID)},
		[]shared.Event{shared.NewContentEvent(shared.EventQuestionUpdated, q.ID, q.ProfileID, "")},
	)
	if err != nil {
		return nil, err
	}

	// Reload for the like count and the name ordering of technologies.
	return h.reload(ctx, q)
}

func (h *UpdateQuestionHandler) reload(ctx context.Context, q *question.Question) (*QuestionResult, error) {
	fresh, err := h.deps.Questions.GetByID(ctx, q.ID)
	if err != nil {
		return &QuestionResult{Question: q}, nil
	}
	return &QuestionResult{Question: fresh}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DELETE QUESTION
// Cascades to the answers. An accepted answer loses its award first.
// ══════════════════════════════════════════════════════════════════════════════

// DeleteQuestionCommand deletes a question.
type DeleteQuestionCommand struct {
	Caller     access.Caller
	QuestionID string
}

// DeleteQuestionHandler handles DeleteQuestionCommand.
type DeleteQuestionHandler struct {
	deps Deps
}

// NewDeleteQuestionHandler creates a new DeleteQuestionHandler.
func NewDeleteQuestionHandler(deps Deps) *DeleteQuestionHandler {
	return &DeleteQuestionHandler{deps: deps.withDefaults()}
}

// Handle executes the command.
func (h *DeleteQuestionHandler) Handle(ctx context.Context, cmd DeleteQuestionCommand) error {
	if err := access.RequireAuthenticated(cmd.Caller); err != nil {
		return err
	}

	q, err := h.deps.Questions.GetByID(ctx, cmd.QuestionID)
	if err != nil {
		return err
	}
	if err := access.Authorize(cmd.Caller, access.Owned{Entity: q}); err != nil {
		return err
	}

	fx := effects{
		mutations: []cache.Mutation{cache.QuestionMutation(q.ID, q.ProfileID)},
		events:    []shared.Event{shared.NewContentEvent(shared.EventQuestionDeleted, q.ID, q.ProfileID, "")},
	}
	err = h.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		accepted, err := h.deps.Answers.FindAccepted(ctx, q.ID)
		if err != nil {
			return err
		}
		if accepted != nil {
			applied, err := h.deps.applyTransition(ctx, reputation.AnswerDeleted{
				AnswerID:    accepted.ID,
				QuestionID:  q.ID,
				AuthorID:    accepted.AuthorID,
				WasAccepted: true,
			})
			if err != nil {
				return err
			}
			fx.add(applied)
		}
		return h.deps.Questions.Delete(ctx, q.ID)
	})

	h.deps.finish(ctx, err, fx.mutations, fx.events)
	if err != nil {
		return fmt.Errorf("delete_question: %w", err)
	}
	h.deps.Logger.Info("question deleted", logger.QuestionID(q.ID))
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// TOGGLE QUESTION LIKE
// ══════════════════════════════════════════════════════════════════════════════

// ToggleQuestionLikeCommand likes a question or takes the like back.
type ToggleQuestionLikeCommand struct {
	Caller     access.Caller
	QuestionID string
}

// ToggleQuestionLikeHandler handles ToggleQuestionLikeCommand.
type ToggleQuestionLikeHandler struct {
	deps Deps
}

// NewToggleQuestionLikeHandler creates a new ToggleQuestionLikeHandler.
func NewToggleQuestionLikeHandler(deps Deps) *ToggleQuestionLikeHandler {
	return &ToggleQuestionLikeHandler{deps: deps.withDefaults()}
}

// Handle executes the command.
func (h *ToggleQuestionLikeHandler) Handle(ctx context.Context, cmd ToggleQuestionLikeCommand) (*ToggleResult, error) {
	if err := access.RequireAuthenticated(cmd.Caller); err != nil {
		return nil, err
	}

	q, err := h.deps.Questions.GetByID(ctx, cmd.QuestionID)
	if err != nil {
		return nil, err
	}
	if !q.IsPublished {
		return nil, shared.ErrQuestionUnpublished
	}

	liked, count, err := h.deps.Questions.ToggleLike(ctx, q.ID, cmd.Caller.ProfileID)
	h.deps.finish(ctx, err, []cache.Mutation{cache.QuestionMutation(q.ID, q.ProfileID)}, nil)
	if err != nil {
		return nil, err
	}
	return &ToggleResult{Active: liked, Count: count}, nil
}
