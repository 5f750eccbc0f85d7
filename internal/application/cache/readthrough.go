package cache

import (
	"context"
	"errors"
	"time"

	"github.com/devask/devask-hub/pkg/logger"
)

// Reader serves query handlers with cache-aside reads.
type Reader struct {
	store  Store
	ttl    time.Duration
	logger *logger.Logger
}

// NewReader creates a Reader that stores entries for ttl.
func NewReader(store Store, ttl time.Duration, log *logger.Logger) *Reader {
	if log == nil {
		log = logger.Default()
	}
	return &Reader{
		store:  store,
		ttl:    ttl,
		logger: log.With(logger.Component("cache_reader")),
	}
}

// ReadThrough returns the value at key, loading and storing it on a miss.
// Cache failures are logged and fall through to load; load errors are
// returned unchanged and nothing is cached.
func ReadThrough[T any](ctx context.Context, r *Reader, key string, load func(context.Context) (T, error)) (T, error) {
	var cached T
	err := r.store.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrMiss) {
		r.logger.Warn("cache read failed", logger.String("key", key), logger.Err(err))
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	if err := r.store.Set(ctx, key, value, r.ttl); err != nil {
		r.logger.Warn("cache write failed", logger.String("key", key), logger.Err(err))
	}
	return value, nil
}
