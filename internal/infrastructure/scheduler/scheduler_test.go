package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/devask/devask-hub/pkg/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestScheduler() *Scheduler {
	return New(Config{Logger: logger.Nop(), Tick: 5 * time.Millisecond})
}

func TestScheduler_RunsJobsPeriodically(t *testing.T) {
	s := newTestScheduler()

	var runs atomic.Int32
	require.NoError(t, s.Every(10*time.Millisecond, JobFunc{JobName: "count", Fn: func(context.Context) error {
		runs.Add(1)
		return nil
	}}))

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())

	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	assert.GreaterOrEqual(t, jobs[0].RunCount, int64(3))
	assert.Zero(t, jobs[0].FailCount)
}

func TestScheduler_JobDoesNotOverlap(t *testing.T) {
	s := newTestScheduler()

	var active, maxActive atomic.Int32
	release := make(chan struct{})
	require.NoError(t, s.Every(time.Millisecond, JobFunc{JobName: "slow", Fn: func(ctx context.Context) error {
		n := active.Add(1)
		if n > maxActive.Load() {
			maxActive.Store(n)
		}
		defer active.Add(-1)
		select {
		case <-release:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	}}))

	require.NoError(t, s.Start(context.Background()))
	require.Eventually(t, func() bool { return active.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	close(release)
	require.NoError(t, s.Stop())

	assert.Equal(t, int32(1), maxActive.Load())
}

func TestScheduler_StopCancelsRunningJobs(t *testing.T) {
	s := newTestScheduler()

	started := make(chan struct{})
	var once atomic.Bool
	require.NoError(t, s.Every(time.Millisecond, JobFunc{JobName: "blocking", Fn: func(ctx context.Context) error {
		if once.CompareAndSwap(false, true) {
			close(started)
		}
		<-ctx.Done()
		return ctx.Err()
	}}))

	require.NoError(t, s.Start(context.Background()))
	<-started
	require.NoError(t, s.Stop())
}

func TestScheduler_ReportsFailures(t *testing.T) {
	s := newTestScheduler()
	boom := errors.New("boom")

	results := make(chan JobResult, 10)
	s.OnJobComplete(func(r JobResult) {
		select {
		case results <- r:
		default:
		}
	})
	require.NoError(t, s.Every(5*time.Millisecond, JobFunc{JobName: "failing", Fn: func(context.Context) error { return boom }}))

	require.NoError(t, s.Start(context.Background()))
	r := <-results
	require.NoError(t, s.Stop())

	assert.Equal(t, "failing", r.JobName)
	assert.False(t, r.Success())
	assert.ErrorIs(t, r.Error, boom)
	assert.GreaterOrEqual(t, s.Jobs()[0].FailCount, int64(1))
}

func TestScheduler_Registration(t *testing.T) {
	s := newTestScheduler()
	job := JobFunc{JobName: "j", Fn: func(context.Context) error { return nil }}

	assert.ErrorIs(t, s.Every(time.Second, nil), ErrNilJob)
	assert.ErrorIs(t, s.Every(0, job), ErrInvalidInterval)
	require.NoError(t, s.Every(time.Second, job))
	assert.ErrorIs(t, s.Every(time.Second, job), ErrJobAlreadyExists)
}

func TestScheduler_Lifecycle(t *testing.T) {
	s := newTestScheduler()

	assert.ErrorIs(t, s.Stop(), ErrSchedulerNotRunning)
	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), ErrSchedulerAlreadyRunning)
	require.NoError(t, s.Stop())
}

func TestScheduler_RunNow(t *testing.T) {
	s := newTestScheduler()

	var runs atomic.Int32
	require.NoError(t, s.Every(time.Hour, JobFunc{JobName: "manual", Fn: func(context.Context) error {
		runs.Add(1)
		return nil
	}}))

	result, err := s.RunNow(context.Background(), "manual")
	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.Equal(t, int32(1), runs.Load())

	_, err = s.RunNow(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}
