package cache

import (
	"context"
	"time"

	"github.com/devask/devask-hub/pkg/logger"
	"github.com/devask/devask-hub/pkg/retry"
)

// evictTimeout bounds how long a request waits for evictions.
const evictTimeout = 2 * time.Second

// Invalidator evicts the keys of mutated records. Failures are logged and
// never returned: the write already committed and the caller must see its
// result.
type Invalidator struct {
	store   Store
	retrier *retry.Retrier
	logger  *logger.Logger
}

// NewInvalidator creates a new Invalidator over store.
func NewInvalidator(store Store, log *logger.Logger) *Invalidator {
	if log == nil {
		log = logger.Default()
	}
	return &Invalidator{
		store:   store,
		retrier: retry.CacheRetrier(),
		logger:  log.With(logger.Component("cache_invalidator")),
	}
}

// Invalidate evicts every key KeysFor returns for the mutations. It runs
// even when the request context is already cancelled.
func (i *Invalidator) Invalidate(ctx context.Context, mutations ...Mutation) {
	keys := KeysFor(mutations...)
	if len(keys) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), evictTimeout)
	defer cancel()

	err := i.retrier.Do(ctx, func(ctx context.Context) error {
		return i.store.Delete(ctx, keys...)
	})
	if err != nil {
		i.logger.Warn("cache eviction failed, entries stay stale until TTL",
			logger.CacheKeys(keys),
			logger.Err(err),
		)
		return
	}
	i.logger.Debug("cache evicted", logger.CacheKeys(keys))
}
