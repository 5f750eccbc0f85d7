package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/devask/devask-hub/internal/application/cache"
	"github.com/devask/devask-hub/internal/domain/access"
	"github.com/devask/devask-hub/internal/domain/article"
	"github.com/devask/devask-hub/internal/domain/profile"
	"github.com/devask/devask-hub/internal/domain/reputation"
	"github.com/devask/devask-hub/internal/domain/shared"
	"github.com/devask/devask-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER PROFILE
// ══════════════════════════════════════════════════════════════════════════════

// RegisterProfileCommand creates an account. Anyone may call it.
type RegisterProfileCommand struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
}

// Validate validates the command.
func (c RegisterProfileCommand) Validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return shared.ErrInvalidUsername
	}
	if len(c.Password) < profile.MinPasswordLength {
		return shared.ErrWeakPassword
	}
	return nil
}

// ProfileResult carries the profile a command produced.
type ProfileResult struct {
	Profile *profile.Profile
}

// RegisterProfileHandler handles RegisterProfileCommand.
type RegisterProfileHandler struct {
	deps   Deps
	hasher PasswordHasher
}

// NewRegisterProfileHandler creates a new RegisterProfileHandler.
func NewRegisterProfileHandler(deps Deps, hasher PasswordHasher) *RegisterProfileHandler {
	return &RegisterProfileHandler{deps: deps.withDefaults(), hasher: hasher}
}

// Handle executes the command.
func (h *RegisterProfileHandler) Handle(ctx context.Context, cmd RegisterProfileCommand) (*ProfileResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	hash, err := h.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("register_profile: %w", err)
	}

	p, err := profile.NewProfile(profile.NewProfileParams{
		Username:     cmd.Username,
		Email:        cmd.Email,
		FirstName:    cmd.FirstName,
		LastName:     cmd.LastName,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}

	if err := h.deps.Profiles.Create(ctx, p); err != nil {
		return nil, err
	}

	h.deps.Logger.Info("profile registered", logger.ProfileID(p.ID))
	h.deps.finish(ctx, nil,
		[]cache.Mutation{cache.ProfileMutation(p.ID)},
		[]shared.Event{shared.NewContentEvent(shared.EventProfileRegistered, p.ID, p.ID, "")},
	)
	return &ProfileResult{Profile: p}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE PROFILE
// ══════════════════════════════════════════════════════════════════════════════

// UpdateProfileCommand changes the public fields of a profile.
type UpdateProfileCommand struct {
	Caller    access.Caller
	ProfileID string
	Params    profile.UpdateParams
}

// UpdateProfileHandler handles UpdateProfileCommand.
type UpdateProfileHandler struct {
	deps Deps
}

// NewUpdateProfileHandler creates a new UpdateProfileHandler.
func NewUpdateProfileHandler(deps Deps) *UpdateProfileHandler {
	return &UpdateProfileHandler{deps: deps.withDefaults()}
}

// Handle executes the command.
func (h *UpdateProfileHandler) Handle(ctx context.Context, cmd UpdateProfileCommand) (*ProfileResult, error) {
	if err := access.RequireAuthenticated(cmd.Caller); err != nil {
		return nil, err
	}

	p, err := h.deps.Profiles.GetByID(ctx, cmd.ProfileID)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(cmd.Caller, access.Owned{Entity: p}); err != nil {
		return nil, err
	}
	if err := p.Update(cmd.Params); err != nil {
		return nil, err
	}

	err = h.deps.Profiles.Update(ctx, p)
	h.deps.finish(ctx, err,
		[]cache.Mutation{cache.ProfileMutation(p.ID)},
		[]shared.Event{shared.NewContentEvent(shared.EventProfileUpdated, p.ID, p.ID, "")},
	)
	if err != nil {
		return nil, err
	}
	return &ProfileResult{Profile: p}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DELETE PROFILE
// Removes the account and everything it owns. Answers of other profiles go
// with the deleted questions, so an accepted one among them loses its award
// first. Questions that were solutioned by one of the profile's answers
// become unsolutioned again.
// ══════════════════════════════════════════════════════════════════════════════

// DeleteProfileCommand deletes a profile.
type DeleteProfileCommand struct {
	Caller    access.Caller
	ProfileID string
}

// DeleteProfileHandler handles DeleteProfileCommand.
type DeleteProfileHandler struct {
	deps Deps
}

// NewDeleteProfileHandler creates a new DeleteProfileHandler.
func NewDeleteProfileHandler(deps Deps) *DeleteProfileHandler {
	return &DeleteProfileHandler{deps: deps.withDefaults()}
}

// Handle executes the command.
func (h *DeleteProfileHandler) Handle(ctx context.Context, cmd DeleteProfileCommand) error {
	if err := access.RequireAuthenticated(cmd.Caller); err != nil {
		return err
	}

	p, err := h.deps.Profiles.GetByID(ctx, cmd.ProfileID)
	if err != nil {
		return err
	}
	if err := access.Authorize(cmd.Caller, access.Owned{Entity: p}); err != nil {
		return err
	}

	fx := effects{
		mutations: []cache.Mutation{cache.ProfileMutation(p.ID)},
		events:    []shared.Event{shared.NewContentEvent(shared.EventProfileDeleted, p.ID, p.ID, "")},
	}
	err = h.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		questions, err := h.deps.Questions.ListByOwner(ctx, p.ID)
		if err != nil {
			return err
		}
		for _, q := range questions {
			fx.mutations = append(fx.mutations, cache.QuestionMutation(q.ID, p.ID))
			applied, err := h.reverseAccepted(ctx, q.ID, p.ID)
			if err != nil {
				return err
			}
			fx.add(applied)
		}

		owned, err := h.ownedMutations(ctx, p.ID)
		if err != nil {
			return err
		}
		fx.mutations = append(fx.mutations, owned...)

		answers, err := h.deps.Answers.ListByAuthor(ctx, p.ID)
		if err != nil {
			return err
		}
		for _, a := range answers {
			fx.mutations = append(fx.mutations, cache.AnswerMutation(a.ID, a.QuestionID, a.AuthorID))
			if !a.IsAccepted {
				continue
			}
			if err := h.deps.Questions.SetSolutioned(ctx, a.QuestionID, false); err != nil && !shared.IsNotFound(err) {
				return fmt.Errorf("failed to reopen question %s: %w", a.QuestionID, err)
			}
		}

		return h.deps.Profiles.Delete(ctx, p.ID)
	})

	h.deps.finish(ctx, err, fx.mutations, fx.events)
	if err != nil {
		return err
	}
	h.deps.Logger.Info("profile deleted", logger.ProfileID(p.ID))
	return nil
}

// reverseAccepted takes back the award of an accepted answer that another
// profile wrote on a question about to be removed with its owner.
func (h *DeleteProfileHandler) reverseAccepted(ctx context.Context, questionID, ownerID string) (effects, error) {
	accepted, err := h.deps.Answers.FindAccepted(ctx, questionID)
	if err != nil || accepted == nil || accepted.AuthorID == ownerID {
		return effects{}, err
	}

	applied, err := h.deps.applyTransition(ctx, reputation.AnswerDeleted{
		AnswerID:    accepted.ID,
		QuestionID:  questionID,
		AuthorID:    accepted.AuthorID,
		WasAccepted: true,
	})
	if err != nil {
		return effects{}, err
	}
	applied.mutations = append(applied.mutations, cache.AnswerMutation(accepted.ID, questionID, accepted.AuthorID))
	return applied, nil
}

// ownedMutations lists the cached articles and credentials that go away with
// the profile.
func (h *DeleteProfileHandler) ownedMutations(ctx context.Context, profileID string) ([]cache.Mutation, error) {
	var out []cache.Mutation

	for page := (shared.Page{Limit: shared.MaxPageSize}); ; page.Offset += page.Limit {
		articles, err := h.deps.Articles.List(ctx, article.Filter{AuthorID: profileID, IncludeDrafts: true, Page: page})
		if err != nil {
			return nil, err
		}
		for _, a := range articles {
			out = append(out, cache.ArticleMutation(a.ID, profileID))
		}
		if len(articles) < page.Limit {
			break
		}
	}

	credentials, err := h.deps.Credentials.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	for _, c := range credentials {
		out = append(out, cache.CredentialMutation(c.ID, profileID))
	}
	return out, nil
}
