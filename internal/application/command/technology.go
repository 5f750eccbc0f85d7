package command

import (
	"context"

	"github.com/devask/devask-hub/internal/application/cache"
	"github.com/devask/devask-hub/internal/domain/access"
	"github.com/devask/devask-hub/internal/domain/shared"
	"github.com/devask/devask-hub/internal/domain/technology"
)

// ══════════════════════════════════════════════════════════════════════════════
// TECHNOLOGIES
// Tag management is reserved for administrators. The slug always follows
// the name.
// ══════════════════════════════════════════════════════════════════════════════

// TechnologyResult carries the technology a command produced.
type TechnologyResult struct {
	Technology *technology.Technology
}

func technologyEvent(id string, caller access.Caller) shared.Event {
	return shared.NewContentEvent(shared.EventTechnologyChanged, id, caller.ProfileID, "")
}

// CreateTechnologyCommand adds a tag.
type CreateTechnologyCommand struct {
	Caller access.Caller
	Fields technology.Fields
}

// CreateTechnologyHandler handles CreateTechnologyCommand.
type CreateTechnologyHandler struct {
	deps Deps
}

// NewCreateTechnologyHandler creates a new CreateTechnologyHandler.
func NewCreateTechnologyHandler(deps Deps) *CreateTechnologyHandler {
	return &CreateTechnologyHandler{deps: deps.withDefaults()}
}

// Handle executes the command.
func (h *CreateTechnologyHandler) Handle(ctx context.Context, cmd CreateTechnologyCommand) (*TechnologyResult, error) {
	if err := access.Authorize(cmd.Caller, access.AdminOnly{}); err != nil {
		return nil, err
	}

	t, err := technology.NewTechnology(cmd.Fields)
	if err != nil {
		return nil, err
	}

	err = h.deps.Technologies.Create(ctx, t)
	h.deps.finish(ctx, err,
		[]cache.Mutation{cache.TechnologyMutation(t.ID)},
		[]shared.Event{technologyEvent(t.ID, cmd.Caller)},
	)
	if err != nil {
		return nil, err
	}
	return &TechnologyResult{Technology: t}, nil
}

// UpdateTechnologyCommand replaces the fields of a tag.
type UpdateTechnologyCommand struct {
	Caller       access.Caller
	TechnologyID string
	Fields       technology.Fields
}

// UpdateTechnologyHandler handles UpdateTechnologyCommand.
type UpdateTechnologyHandler struct {
	deps Deps
}

// NewUpdateTechnologyHandler creates a new UpdateTechnologyHandler.
func NewUpdateTechnologyHandler(deps Deps) *UpdateTechnologyHandler {
	return &UpdateTechnologyHandler{deps: deps.withDefaults()}
}

// Handle executes the command.
func (h *UpdateTechnologyHandler) Handle(ctx context.Context, cmd UpdateTechnologyCommand) (*TechnologyResult, error) {
	if err := access.Authorize(cmd.Caller, access.AdminOnly{}); err != nil {
		return nil, err
	}

	t, err := h.deps.Technologies.GetByID(ctx, cmd.TechnologyID)
	if err != nil {
		return nil, err
	}
	if err := t.Apply(cmd.Fields); err != nil {
		return nil, err
	}

	err = h.deps.Technologies.Update(ctx, t)
	h.deps.finish(ctx, err,
		[]cache.Mutation{cache.TechnologyMutation(t.ID)},
		[]shared.Event{technologyEvent(t.ID, cmd.Caller)},
	)
	if err != nil {
		return nil, err
	}
	return &TechnologyResult{Technology: t}, nil
}

// DeleteTechnologyCommand removes a tag from the catalogue and from every
// question and article.
type DeleteTechnologyCommand struct {
	Caller       access.Caller
	TechnologyID string
}

// DeleteTechnologyHandler handles DeleteTechnologyCommand.
type DeleteTechnologyHandler struct {
	deps Deps
}

// NewDeleteTechnologyHandler creates a new DeleteTechnologyHandler.
func NewDeleteTechnologyHandler(deps Deps) *DeleteTechnologyHandler {
	return &DeleteTechnologyHandler{deps: deps.withDefaults()}
}

// Handle executes the command.
func (h *DeleteTechnologyHandler) Handle(ctx context.Context, cmd DeleteTechnologyCommand) error {
	if err := access.Authorize(cmd.Caller, access.AdminOnly{}); err != nil {
		return err
	}

	err := h.deps.Technologies.Delete(ctx, cmd.TechnologyID)
	h.deps.finish(ctx, err,
		[]cache.Mutation{cache.TechnologyMutation(cmd.TechnologyID)},
		[]shared.Event{technologyEvent(cmd.TechnologyID, cmd.Caller)},
	)
	return err
}
