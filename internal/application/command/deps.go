// Package command contains write operations (CQRS - Commands).
//
// Every handler authorizes the caller, runs its store mutations in one
// transaction together with the reputation standing update and ledger
// append, then evicts the affected cache keys and publishes domain events.
package command

import (
	"context"
	"time"

	"github.com/devask/devask-hub/internal/application/cache"
	"github.com/devask/devask-hub/internal/domain/answer"
	"github.com/devask/devask-hub/internal/domain/article"
	"github.com/devask/devask-hub/internal/domain/credential"
	"github.com/devask/devask-hub/internal/domain/profile"
	"github.com/devask/devask-hub/internal/domain/question"
	"github.com/devask/devask-hub/internal/domain/reputation"
	"github.com/devask/devask-hub/internal/domain/shared"
	"github.com/devask/devask-hub/internal/domain/technology"
	"github.com/devask/devask-hub/pkg/logger"
)

// Transactor runs fn atomically. Repositories called with the ctx passed to
// fn take part in the transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PasswordHasher hashes new passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// Deps groups the ports shared by every handler.
type Deps struct {
	Tx           Transactor
	Profiles     profile.Repository
	Questions    question.Repository
	Answers      answer.Repository
	Articles     article.Repository
	Credentials  credential.Repository
	Technologies technology.Repository
	Ledger       reputation.Ledger
	Invalidator  *cache.Invalidator
	Events       shared.EventPublisher
	Logger       *logger.Logger

	// Now defaults to time.Now. Credential date checks use it.
	Now func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = logger.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// finish evicts cache keys and, when the command succeeded, publishes its
// events. Both run after the transaction finished.
func (d Deps) finish(ctx context.Context, err error, mutations []cache.Mutation, events []shared.Event) {
	if d.Invalidator != nil && len(mutations) > 0 {
		d.Invalidator.Invalidate(ctx, mutations...)
	}
	if err != nil || d.Events == nil {
		return
	}
	for _, e := range events {
		if perr := d.Events.Publish(e); perr != nil {
			d.Logger.Warn("failed to publish event",
				logger.EventType(string(e.EventType())),
				logger.Err(perr),
			)
		}
	}
}
