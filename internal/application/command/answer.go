package command

import (
	"context"

	"github.com/devask/devask-hub/internal/application/cache"
	"github.com/devask/devask-hub/internal/domain/access"
	"github.com/devask/devask-hub/internal/domain/answer"
	"github.com/devask/devask-hub/internal/domain/reputation"
	"github.com/devask/devask-hub/internal/domain/shared"
	"github.com/devask/devask-hub/pkg/logger"
)

// AnswerResult carries the answer a command produced.
type AnswerResult struct {
	Answer *answer.Answer
	// Changed is false when an acceptance command found the answer already
	// in the requested state.
	Changed bool
}

func answerMutation(a *answer.Answer) cache.Mutation {
	return cache.AnswerMutation(a.ID, a.QuestionID, a.AuthorID)
}

// ══════════════════════════════════════════════════════════════════════════════
// SUBMIT ANSWER
// ══════════════════════════════════════════════════════════════════════════════

// SubmitAnswerCommand answers a published, unsolved question.
type SubmitAnswerCommand struct {
	Caller     access.Caller
	QuestionID string
	Content    string
}

// SubmitAnswerHandler handles SubmitAnswerCommand.
type SubmitAnswerHandler struct {
	deps Deps
}

// NewSubmitAnswerHandler creates a new SubmitAnswerHandler.
func NewSubmitAnswerHandler(deps Deps) *SubmitAnswerHandler {
	return &SubmitAnswerHandler{deps: deps.withDefaults()}
}

// Handle executes the command.
func (h *SubmitAnswerHandler) Handle(ctx context.Context, cmd SubmitAnswerCommand) (*AnswerResult, error) {
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
	if err := reputation.CheckSubmission(q.IsSolutioned); err != nil {
		return nil, err
	}

	a, err := answer.NewAnswer(answer.NewAnswerParams{
		Content:    cmd.Content,
		AuthorID:   cmd.Caller.ProfileID,
		QuestionID: q.ID,
	})
	if err != nil {
		return nil, err
	}

	var fx effects
	err = h.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := h.deps.Answers.Create(ctx, a); err != nil {
			return err
		}
		applied, err := h.deps.applyTransition(ctx, reputation.AnswerCreated{
			AnswerID:   a.ID,
			QuestionID: q.ID,
			AuthorID:   a.AuthorID,
		})
		fx.add(applied)
		return err
	})

	fx.mutations = append(fx.mutations, answerMutation(a))
	fx.events = append(fx.events, shared.NewContentEvent(shared.EventAnswerSubmitted, a.ID, a.AuthorID, q.ID))
	h.deps.finish(ctx, err, fx.mutations, fx.events)
	if err != nil {
		return nil, err
	}
	return &AnswerResult{Answer: a, Changed: true}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// EDIT ANSWER
// ══════════════════════════════════════════════════════════════════════════════

// EditAnswerCommand replaces the content of an answer.
type EditAnswerCommand struct {
	Caller   access.Caller
	AnswerID string
	Content  string
}

// EditAnswerHandler handles EditAnswerCommand.
type EditAnswerHandler struct {
	deps Deps
}

// NewEditAnswerHandler creates a new EditAnswerHandler.
func NewEditAnswerHandler(deps Deps) *EditAnswerHandler {
	return &EditAnswerHandler{deps: deps.withDefaults()}
}

// Handle executes the command.
func (h *EditAnswerHandler) Handle(ctx context.Context, cmd EditAnswerCommand) (*AnswerResult, error) {
	if err := access.RequireAuthenticated(cmd.Caller); err != nil {
		return nil, err
	}

	a, err := h.deps.Answers.GetByID(ctx, cmd.AnswerID)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(cmd.Caller, access.Owned{Entity: a}); err != nil {
		return nil, err
	}
	if err := a.Edit(cmd.Content); err != nil {
		return nil, err
	}

	err = h.deps.Answers.Update(ctx, a)
	h.deps.finish(ctx, err,
		[]cache.Mutation{answerMutation(a)},
		[]shared.Event{shared.NewContentEvent(shared.EventAnswerUpdated, a.ID, a.AuthorID, a.QuestionID)},
	)
	if err != nil {
		return nil, err
	}
	return &AnswerResult{Answer: a, Changed: true}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DELETE ANSWER
// ══════════════════════════════════════════════════════════════════════════════

// DeleteAnswerCommand deletes an answer. An accepted answer takes its award
// back and reopens the question.
type DeleteAnswerCommand struct {
	Caller   access.Caller
	AnswerID string
}

// DeleteAnswerHandler handles DeleteAnswerCommand.
type DeleteAnswerHandler struct {
	deps Deps
}

// NewDeleteAnswerHandler creates a new DeleteAnswerHandler.
func NewDeleteAnswerHandler(deps Deps) *DeleteAnswerHandler {
	return &DeleteAnswerHandler{deps: deps.withDefaults()}
}

// Handle executes the command.
func (h *DeleteAnswerHandler) Handle(ctx context.Context, cmd DeleteAnswerCommand) error {
	if err := access.RequireAuthenticated(cmd.Caller); err != nil {
		return err
	}

	a, err := h.deps.Answers.GetByID(ctx, cmd.AnswerID)
	if err != nil {
		return err
	}
	if err := access.Authorize(cmd.Caller, access.Owned{Entity: a}); err != nil {
		return err
	}

	fx := effects{
		mutations: []cache.Mutation{answerMutation(a)},
		events:    []shared.Event{shared.NewContentEvent(shared.EventAnswerDeleted, a.ID, a.AuthorID, a.QuestionID)},
	}
	err = h.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		// The answer may have been accepted or revoked since the ownership check.
		current, err := h.deps.Answers.GetForUpdate(ctx, a.ID)
		if err != nil {
			return err
		}

		applied, err := h.deps.applyTransition(ctx, reputation.AnswerDeleted{
			AnswerID:    current.ID,
			QuestionID:  current.QuestionID,
			AuthorID:    current.AuthorID,
			WasAccepted: current.IsAccepted,
		})
		if err != nil {
			return err
		}
		fx.add(applied)
		return h.deps.Answers.Delete(ctx, a.ID)
	})

	h.deps.finish(ctx, err, fx.mutations, fx.events)
	return err
}

// ══════════════════════════════════════════════════════════════════════════════
// SET ANSWER ACCEPTANCE
// Only the owner of the question may accept or revoke. A question holds at
// most one accepted answer.
// ══════════════════════════════════════════════════════════════════════════════

// SetAnswerAcceptanceCommand accepts (Accepted=true) or revokes an answer.
type SetAnswerAcceptanceCommand struct {
	Caller   access.Caller
	AnswerID string
	Accepted bool
}

// SetAnswerAcceptanceHandler handles SetAnswerAcceptanceCommand.
type SetAnswerAcceptanceHandler struct {
	deps Deps
}

// NewSetAnswerAcceptanceHandler creates a new SetAnswerAcceptanceHandler.
func NewSetAnswerAcceptanceHandler(deps Deps) *SetAnswerAcceptanceHandler {
	return &SetAnswerAcceptanceHandler{deps: deps.withDefaults()}
}

// Handle executes the command.
func (h *SetAnswerAcceptanceHandler) Handle(ctx context.Context, cmd SetAnswerAcceptanceCommand) (*AnswerResult, error) {
	if err := access.RequireAuthenticated(cmd.Caller); err != nil {
		return nil, err
	}

	a, err := h.deps.Answers.GetByID(ctx, cmd.AnswerID)
	if err != nil {
		return nil, err
	}
	q, err := h.deps.Questions.GetByID(ctx, a.QuestionID)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(cmd.Caller, access.QuestionOwned{Question: q}); err != nil {
		return nil, err
	}

	var (
		fx      effects
		changed bool
	)
	err = h.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		// The answer may have changed since the ownership check.
		current, err := h.deps.Answers.GetForUpdate(ctx, a.ID)
		if err != nil {
			return err
		}
		a = current

		var t reputation.Transition
		if cmd.Accepted {
			accepted, err := h.deps.Answers.FindAccepted(ctx, a.QuestionID)
			if err != nil {
				return err
			}
			acceptedID := ""
			if accepted != nil {
				acceptedID = accepted.ID
			}
			if err := reputation.CheckAcceptance(a.ID, acceptedID); err != nil {
				return err
			}
			t = reputation.AnswerAccepted{AnswerID: a.ID, QuestionID: a.QuestionID, AuthorID: a.AuthorID}
		} else {
			t = reputation.AnswerRevoked{AnswerID: a.ID, QuestionID: a.QuestionID, AuthorID: a.AuthorID, WasAccepted: a.IsAccepted}
		}

		if !a.SetAccepted(cmd.Accepted) {
			return nil
		}
		changed = true

		if err := h.deps.Answers.SetAccepted(ctx, a.ID, cmd.Accepted); err != nil {
			return err
		}
		applied, err := h.deps.applyTransition(ctx, t)
		if err != nil {
			return err
		}
		fx.add(applied)
		return nil
	})

	fx.mutations = append(fx.mutations, answerMutation(a))
	if changed {
		fx.events = append(fx.events, shared.NewAnswerAcceptanceEvent(cmd.Accepted, a.ID, a.QuestionID, a.AuthorID, cmd.Caller.ProfileID))
	}
	h.deps.finish(ctx, err, fx.mutations, fx.events)
	if err != nil {
		return nil, err
	}

	if changed {
		h.deps.Logger.Info("answer acceptance changed",
			logger.AnswerID(a.ID),
			logger.QuestionID(a.QuestionID),
			logger.Bool("accepted", cmd.Accepted),
		)
	}
	return &AnswerResult{Answer: a, Changed: changed}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// TOGGLE ANSWER UPVOTE
// ══════════════════════════════════════════════════════════════════════════════

// ToggleAnswerUpvoteCommand upvotes an answer or takes the upvote back.
type ToggleAnswerUpvoteCommand struct {
	Caller   access.Caller
	AnswerID string
}

// ToggleAnswerUpvoteHandler handles ToggleAnswerUpvoteCommand.
type ToggleAnswerUpvoteHandler struct {
	deps Deps
}

// NewToggleAnswerUpvoteHandler creates a new ToggleAnswerUpvoteHandler.
func NewToggleAnswerUpvoteHandler(deps Deps) *ToggleAnswerUpvoteHandler {
	return &ToggleAnswerUpvoteHandler{deps: deps.withDefaults()}
}

// Handle executes the command.
func (h *ToggleAnswerUpvoteHandler) Handle(ctx context.Context, cmd ToggleAnswerUpvoteCommand) (*ToggleResult, error) {
	if err := access.RequireAuthenticated(cmd.Caller); err != nil {
		return nil, err
	}

	a, err := h.deps.Answers.GetByID(ctx, cmd.AnswerID)
	if err != nil {
		return nil, err
	}

	upvoted, count, err := h.deps.Answers.ToggleUpvote(ctx, a.ID, cmd.Caller.ProfileID)
	h.deps.finish(ctx, err, []cache.Mutation{answerMutation(a)}, nil)
	if err != nil {
		return nil, err
	}
	return &ToggleResult{Active: upvoted, Count: count}, nil
}
