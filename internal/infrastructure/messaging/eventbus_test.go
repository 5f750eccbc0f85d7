package messaging

import (
	"bytes"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/devask/devask-hub/internal/domain/shared"
	"github.com/devask/devask-hub/pkg/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func syncBus() *InMemoryEventBus {
	return NewInMemoryEventBus(InMemoryEventBusConfig{Logger: logger.Nop(), EnableMetrics: true})
}

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	var typed, all []shared.EventType
	require.NoError(t, bus.Subscribe(shared.EventAnswerAccepted, func(e shared.Event) error {
		typed = append(typed, e.EventType())
		return nil
	}))
	require.NoError(t, bus.SubscribeAll(func(e shared.Event) error {
		all = append(all, e.EventType())
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewAnswerAcceptanceEvent(true, "a1", "q1", "p2", "p1")))
	require.NoError(t, bus.Publish(shared.NewContentEvent(shared.EventQuestionCreated, "q1", "p1", "")))

	assert.Equal(t, []shared.EventType{shared.EventAnswerAccepted}, typed)
	assert.Equal(t, []shared.EventType{shared.EventAnswerAccepted, shared.EventQuestionCreated}, all)

	snap := bus.Metrics().Snapshot()
	assert.Equal(t, int64(2), snap.TotalPublished)
	assert.Equal(t, int64(3), snap.TotalHandlerExecs)
	assert.Equal(t, 1.0, snap.HandlerSuccessRate)
}

func TestInMemoryEventBus_HandlerFailuresAreContained(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	calls := 0
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error { return errors.New("boom") }))
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error { panic("worse") }))
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error { calls++; return nil }))

	assert.NoError(t, bus.Publish(shared.NewContentEvent(shared.EventArticleCreated, "r1", "p1", "")))
	assert.Equal(t, 1, calls)
	assert.InDelta(t, 1.0/3.0, bus.Metrics().Snapshot().HandlerSuccessRate, 0.001)
}

func TestInMemoryEventBus_AsyncDeliversBeforeClose(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{AsyncMode: true, WorkerPoolSize: 2, Logger: logger.Nop()})

	var delivered atomic.Int32
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		delivered.Add(1)
		return nil
	}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = bus.Publish(shared.NewContentEvent(shared.EventQuestionUpdated, "q1", "p1", ""))
		}()
	}
	wg.Wait()

	require.NoError(t, bus.Close())
	assert.Equal(t, int32(20), delivered.Load())

	assert.ErrorIs(t, bus.Publish(shared.NewContentEvent(shared.EventQuestionUpdated, "q1", "p1", "")), ErrEventBusClosed)
	assert.ErrorIs(t, bus.SubscribeAll(func(shared.Event) error { return nil }), ErrEventBusClosed)
}

func TestInMemoryEventBus_RejectsNil(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	assert.Error(t, bus.Publish(nil))
	assert.Error(t, bus.Subscribe(shared.EventAnswerAccepted, nil))
	assert.Nil(t, NewInMemoryEventBus(InMemoryEventBusConfig{Logger: logger.Nop()}).Metrics())
}

func TestAuditLog_WritesEveryEvent(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Output: &buf, Level: logger.LevelInfo, Format: logger.FormatJSON})

	bus := syncBus()
	defer bus.Close()
	require.NoError(t, NewAuditLog(log).Register(bus))

	require.NoError(t, bus.Publish(shared.NewReputationChangedEvent("p1", 20, 20, "answer_accepted", "a1")))

	out := buf.String()
	assert.Contains(t, out, `"msg":"domain event"`)
	assert.Contains(t, out, `"event_type":"reputation.changed"`)
	assert.Contains(t, out, `"payload.delta":20`)
	assert.Contains(t, out, `"component":"audit"`)
}
