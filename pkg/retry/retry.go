// Package retry wraps cenkalti/backoff with the two retry schedules the
// service uses: the database connection at startup and best-effort cache
// evictions.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Config holds a retry schedule.
type Config struct {
	// MaxAttempts counts the first attempt too.
	MaxAttempts  uint
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	// JitterFactor is the randomization factor, 0 disables it.
	JitterFactor float64

	// RetryIf decides whether an error is worth another attempt. Nil
	// retries every error.
	RetryIf func(error) bool

	// OnRetry is called before sleeping. attempt is the attempt that
	// just failed, starting at 1.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Retrier runs operations under a Config.
type Retrier struct {
	config Config
}

// New creates a Retrier.
func New(cfg Config) *Retrier {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = 1
	}
	return &Retrier{config: cfg}
}

// Do runs operation until it succeeds, the error is not retryable, the
// attempts run out or ctx is done. The last operation error is returned
// unwrapped.
func (r *Retrier) Do(ctx context.Context, operation func(ctx context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.config.InitialDelay
	b.MaxInterval = r.config.MaxDelay
	b.Multiplier = r.config.Multiplier
	b.RandomizationFactor = r.config.JitterFactor

	attempt := 0
	opts := []backoff.RetryOption{
		backoff.WithBackOff(b),
		backoff.WithMaxTries(r.config.MaxAttempts),
	}
	if r.config.OnRetry != nil {
		opts = append(opts, backoff.WithNotify(func(err error, delay time.Duration) {
			r.config.OnRetry(attempt, err, delay)
		}))
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		err := operation(ctx)
		if err != nil && r.config.RetryIf != nil && !r.config.RetryIf(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}, opts...)

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return permanent.Unwrap()
	}
	return err
}

// ══════════════════════════════════════════════════════════════════════════════
// PRESETS
// ══════════════════════════════════════════════════════════════════════════════

// DatabaseRetrier returns a Retrier for establishing the database pool.
// Postgres often comes up after the API container, so attempts are spaced
// out over roughly half a minute.
func DatabaseRetrier(onRetry func(attempt int, err error, delay time.Duration)) *Retrier {
	return New(Config{
		MaxAttempts:  6,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2,
		JitterFactor: 0.1,
		OnRetry:      onRetry,
	})
}

// CacheRetrier returns a Retrier for cache evictions. Evictions run after
// the store has committed, so they retry quickly and give up early.
func CacheRetrier() *Retrier {
	return New(Config{
		MaxAttempts:  3,
		InitialDelay: 20 * time.Millisecond,
		MaxDelay:     200 * time.Millisecond,
		Multiplier:   2,
		JitterFactor: 0.1,
		RetryIf:      func(err error) bool { return !errors.Is(err, context.Canceled) },
	})
}
