package command

import (
	"context"
	"fmt"

	"github.com/devask/devask-hub/internal/application/cache"
	"github.com/devask/devask-hub/internal/domain/reputation"
	"github.com/devask/devask-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPUTATION OUTCOME
// Applies what the rule engine decided: the question flag, the profile
// standing and the ledger entry. Must run inside the caller's transaction.
// ══════════════════════════════════════════════════════════════════════════════

// effects collects what an applied outcome touched.
type effects struct {
	mutations []cache.Mutation
	events    []shared.Event
}

func (e *effects) add(other effects) {
	e.mutations = append(e.mutations, other.mutations...)
	e.events = append(e.events, other.events...)
}

func (d Deps) applyTransition(ctx context.Context, t reputation.Transition) (effects, error) {
	return d.applyOutcome(ctx, reputation.Evaluate(t))
}

func (d Deps) applyOutcome(ctx context.Context, out reputation.Outcome) (effects, error) {
	var fx effects
	if out.IsNoop() {
		return fx, nil
	}

	if out.Solutioned != nil && out.QuestionID != "" {
		q, err := d.Questions.GetByID(ctx, out.QuestionID)
		if err != nil {
			return fx, fmt.Errorf("failed to load question %s: %w", out.QuestionID, err)
		}
		if q.IsSolutioned != *out.Solutioned {
			if err := d.Questions.SetSolutioned(ctx, q.ID, *out.Solutioned); err != nil {
				return fx, fmt.Errorf("failed to set solutioned: %w", err)
			}
		}
		fx.mutations = append(fx.mutations, cache.QuestionMutation(q.ID, q.ProfileID))
	}

	if out.ProfileID == "" || (out.Delta == 0 && !out.RecountProfessional) {
		return fx, nil
	}

	// The row lock keeps concurrent awards from overwriting each other.
	p, err := d.Profiles.GetForUpdate(ctx, out.ProfileID)
	if err != nil {
		return fx, fmt.Errorf("failed to load profile %s: %w", out.ProfileID, err)
	}

	before := p.Standing()
	after := before.WithDelta(out.Delta)
	if out.RecountProfessional {
		n, err := d.Credentials.CountVerifiedRecognized(ctx, p.ID)
		if err != nil {
			return fx, fmt.Errorf("failed to count credentials: %w", err)
		}
		after = after.WithProfessionalCount(n)
	}

	if after != before {
		if err := d.Profiles.UpdateStanding(ctx, p.ID, after); err != nil {
			return fx, fmt.Errorf("failed to update standing: %w", err)
		}
		fx.mutations = append(fx.mutations, cache.ProfileMutation(p.ID))
	}

	// The ledger records the applied delta, so its sum equals the score.
	applied := after.Score - before.Score
	if out.Delta != 0 {
		entry := &reputation.Entry{
			ID:         shared.NewID(),
			ProfileID:  p.ID,
			Delta:      applied,
			Reason:     out.Reason,
			SubjectID:  out.SubjectID,
			ScoreAfter: after.Score,
			CreatedAt:  d.Now().UTC(),
		}
		if err := d.Ledger.Append(ctx, entry); err != nil {
			return fx, fmt.Errorf("failed to append ledger entry: %w", err)
		}
	}

	if applied != 0 {
		fx.events = append(fx.events, shared.NewReputationChangedEvent(p.ID, applied, after.Score, string(out.Reason), out.SubjectID))
	}
	if after.Level != before.Level {
		fx.events = append(fx.events, shared.NewLevelChangedEvent(p.ID, before.Level.String(), after.Level.String()))
	}
	if after.IsProfessional != before.IsProfessional {
		fx.events = append(fx.events, shared.NewProfessionalChangedEvent(p.ID, after.IsProfessional))
	}
	return fx, nil
}
