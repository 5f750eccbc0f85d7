package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fast(cfg Config) *Retrier {
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = 2 * time.Millisecond
	cfg.Multiplier = 2
	return New(cfg)
}

func TestRetrier_SucceedsAfterFailures(t *testing.T) {
	var attempts []int
	r := fast(Config{
		MaxAttempts: 5,
		OnRetry:     func(attempt int, _ error, _ time.Duration) { attempts = append(attempts, attempt) },
	})

	calls := 0
	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestRetrier_GivesUpAfterMaxAttempts(t *testing.T) {
	boom := errors.New("boom")
	r := fast(Config{MaxAttempts: 3})

	calls := 0
	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestRetrier_StopsOnNonRetryable(t *testing.T) {
	boom := errors.New("boom")
	r := fast(Config{
		MaxAttempts: 5,
		RetryIf:     func(err error) bool { return !errors.Is(err, boom) },
	})

	calls := 0
	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		return boom
	})

	assert.Equal(t, boom, err)
	assert.Equal(t, 1, calls)
}

func TestRetrier_StopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := New(Config{MaxAttempts: 10, InitialDelay: time.Hour, MaxDelay: time.Hour, Multiplier: 2})

	calls := 0
	err := r.Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return errors.New("down")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestCacheRetrier_DoesNotRetryCancellation(t *testing.T) {
	calls := 0
	err := CacheRetrier().Do(context.Background(), func(context.Context) error {
		calls++
		return context.Canceled
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
