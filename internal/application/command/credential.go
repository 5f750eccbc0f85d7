package command

import (
	"context"

	"github.com/devask/devask-hub/internal/application/cache"
	"github.com/devask/devask-hub/internal/domain/access"
	"github.com/devask/devask-hub/internal/domain/credential"
	"github.com/devask/devask-hub/internal/domain/reputation"
	"github.com/devask/devask-hub/internal/domain/shared"
	"github.com/devask/devask-hub/pkg/logger"
)

// CredentialResult carries the credential a command produced.
type CredentialResult struct {
	Credential *credential.Credential
	// Changed is false when verification found the credential already in
	// the requested state.
	Changed bool
}

func credentialMutation(c *credential.Credential) cache.Mutation {
	return cache.CredentialMutation(c.ID, c.ProfileID)
}

// ══════════════════════════════════════════════════════════════════════════════
// CREATE CREDENTIAL
// ══════════════════════════════════════════════════════════════════════════════

// CreateCredentialCommand registers an unverified credential for the caller.
type CreateCredentialCommand struct {
	Caller access.Caller
	Fields credential.Fields
}

// CreateCredentialHandler handles CreateCredentialCommand.
type CreateCredentialHandler struct {
	deps Deps
}

// NewCreateCredentialHandler creates a new CreateCredentialHandler.
func NewCreateCredentialHandler(deps Deps) *CreateCredentialHandler {
	return &CreateCredentialHandler{deps: deps.withDefaults()}
}

// Handle executes the command.
func (h *CreateCredentialHandler) Handle(ctx context.Context, cmd CreateCredentialCommand) (*CredentialResult, error) {
	if err := access.RequireAuthenticated(cmd.Caller); err != nil {
		return nil, err
	}

	c, err := credential.NewCredential(cmd.Caller.ProfileID, cmd.Fields, h.deps.Now())
	if err != nil {
		return nil, err
	}

	err = h.deps.Credentials.Create(ctx, c)
	h.deps.finish(ctx, err,
		[]cache.Mutation{credentialMutation(c)},
		[]shared.Event{shared.NewContentEvent(shared.EventCredentialCreated, c.ID, c.ProfileID, "")},
	)
	if err != nil {
		return nil, err
	}
	return &CredentialResult{Credential: c, Changed: true}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// EDIT CREDENTIAL
// ══════════════════════════════════════════════════════════════════════════════

// EditCredentialCommand replaces the fields of an unverified credential.
type EditCredentialCommand struct {
	Caller       access.Caller
	CredentialID string
	Fields       credential.Fields
}

// EditCredentialHandler handles EditCredentialCommand.
type EditCredentialHandler struct {
	deps Deps
}

// NewEditCredentialHandler creates a new EditCredentialHandler.
func NewEditCredentialHandler(deps Deps) *EditCredentialHandler {
	return &EditCredentialHandler{deps: deps.withDefaults()}
}

// Handle executes the command.
func (h *EditCredentialHandler) Handle(ctx context.Context, cmd EditCredentialCommand) (*CredentialResult, error) {
	if err := access.RequireAuthenticated(cmd.Caller); err != nil {
		return nil, err
	}

	c, err := h.deps.Credentials.GetByID(ctx, cmd.CredentialID)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(cmd.Caller, access.Owned{Entity: c}); err != nil {
		return nil, err
	}
	if err := c.Edit(cmd.Fields, h.deps.Now()); err != nil {
		return nil, err
	}

	err = h.deps.Credentials.Update(ctx, c)
	h.deps.finish(ctx, err,
		[]cache.Mutation{credentialMutation(c)},
		[]shared.Event{shared.NewContentEvent(shared.EventCredentialUpdated, c.ID, c.ProfileID, "")},
	)
	if err != nil {
		return nil, err
	}
	return &CredentialResult{Credential: c, Changed: true}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DELETE CREDENTIAL
// ══════════════════════════════════════════════════════════════════════════════

// DeleteCredentialCommand deletes a credential. A verified one takes its
// tier points back.
type DeleteCredentialCommand struct {
	Caller       access.Caller
	CredentialID string
}

// DeleteCredentialHandler handles DeleteCredentialCommand.
type DeleteCredentialHandler struct {
	deps Deps
}

// NewDeleteCredentialHandler creates a new DeleteCredentialHandler.
func NewDeleteCredentialHandler(deps Deps) *DeleteCredentialHandler {
	return &DeleteCredentialHandler{deps: deps.withDefaults()}
}

// Handle executes the command.
func (h *DeleteCredentialHandler) Handle(ctx context.Context, cmd DeleteCredentialCommand) error {
	if err := access.RequireAuthenticated(cmd.Caller); err != nil {
		return err
	}

	c, err := h.deps.Credentials.GetByID(ctx, cmd.CredentialID)
	if err != nil {
		return err
	}
	if err := access.Authorize(cmd.Caller, access.Owned{Entity: c}); err != nil {
		return err
	}

	fx := effects{
		mutations: []cache.Mutation{credentialMutation(c)},
		events:    []shared.Event{shared.NewContentEvent(shared.EventCredentialDeleted, c.ID, c.ProfileID, "")},
	}
	err = h.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		// Delete first so the professional recount no longer sees it.
		if err := h.deps.Credentials.Delete(ctx, c.ID); err != nil {
			return err
		}
		applied, err := h.deps.applyTransition(ctx, reputation.CredentialDeleted{
			CredentialID: c.ID,
			ProfileID:    c.ProfileID,
			Tier:         c.Experience,
			WasVerified:  c.IsVerified,
		})
		fx.add(applied)
		return err
	})

	h.deps.finish(ctx, err, fx.mutations, fx.events)
	return err
}

// ══════════════════════════════════════════════════════════════════════════════
// SET CREDENTIAL VERIFICATION
// Admin only. Verifying awards tier points, revoking takes them back.
// Requesting the current state changes nothing.
// ══════════════════════════════════════════════════════════════════════════════

// SetCredentialVerificationCommand verifies (Verified=true) or revokes.
type SetCredentialVerificationCommand struct {
	Caller       access.Caller
	CredentialID string
	Verified     bool
}

// SetCredentialVerificationHandler handles SetCredentialVerificationCommand.
type SetCredentialVerificationHandler struct {
	deps Deps
}

// NewSetCredentialVerificationHandler creates a new SetCredentialVerificationHandler.
func NewSetCredentialVerificationHandler(deps Deps) *SetCredentialVerificationHandler {
	return &SetCredentialVerificationHandler{deps: deps.withDefaults()}
}

// Handle executes the command.
func (h *SetCredentialVerificationHandler) Handle(ctx context.Context, cmd SetCredentialVerificationCommand) (*CredentialResult, error) {
	if err := access.Authorize(cmd.Caller, access.AdminOnly{}); err != nil {
		return nil, err
	}

	var (
		c       *credential.Credential
		fx      effects
		changed bool
	)
	err := h.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		c, err = h.deps.Credentials.GetByID(ctx, cmd.CredentialID)
		if err != nil {
			return err
		}
		if !c.SetVerified(cmd.Verified) {
			return nil
		}
		changed = true

		if err := h.deps.Credentials.Update(ctx, c); err != nil {
			return err
		}

		var t reputation.Transition = reputation.CredentialRevoked{CredentialID: c.ID, ProfileID: c.ProfileID, Tier: c.Experience}
		if cmd.Verified {
			t = reputation.CredentialVerified{CredentialID: c.ID, ProfileID: c.ProfileID, Tier: c.Experience}
		}
		applied, err := h.deps.applyTransition(ctx, t)
		fx.add(applied)
		return err
	})

	if c != nil {
		fx.mutations = append(fx.mutations, credentialMutation(c))
		if changed {
			fx.events = append(fx.events, shared.NewCredentialVerificationEvent(
				cmd.Verified, c.ID, c.ProfileID, string(c.Experience), cmd.Caller.ProfileID,
			))
		}
	}
	h.deps.finish(ctx, err, fx.mutations, fx.events)
	if err != nil {
		return nil, err
	}

	if changed {
		h.deps.Logger.Info("credential verification changed",
			logger.CredentialID(c.ID),
			logger.ProfileID(c.ProfileID),
			logger.Bool("verified", cmd.Verified),
		)
	}
	return &CredentialResult{Credential: c, Changed: changed}, nil
}
