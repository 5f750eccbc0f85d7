// Package cache holds the cache port used by the application layer, the
// key scheme, the invalidation policy and the cache-aside helper for reads.
//
// The cache is best-effort. It is never transactionally consistent with the
// store; a crash between commit and eviction leaves entries stale until
// their TTL expires.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Store.Get when the key is absent.
var ErrMiss = errors.New("cache miss")

// Store is the keyed cache the application depends on. Implementations live
// in infrastructure/persistence (Redis and in-memory).
type Store interface {
	// Get decodes the value stored at key into dest.
	// Returns ErrMiss when the key is absent.
	Get(ctx context.Context, key string, dest interface{}) error

	// Set stores value at key with the given TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes the keys. Absent keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)
}
