package messaging

import (
	"sort"

	"github.com/devask/devask-hub/internal/domain/shared"
	"github.com/devask/devask-hub/pkg/logger"
)

// AuditLog writes every published event to the structured log.
type AuditLog struct {
	log *logger.Logger
}

// NewAuditLog creates an AuditLog.
func NewAuditLog(log *logger.Logger) *AuditLog {
	return &AuditLog{log: log.With(logger.Component("audit"))}
}

// Register subscribes the audit log to all events on the bus.
func (a *AuditLog) Register(bus shared.EventSubscriber) error {
	return bus.SubscribeAll(a.Handle)
}

// Handle logs one event. Payload keys are sorted for stable output.
func (a *AuditLog) Handle(event shared.Event) error {
	payload := event.Payload()
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := []logger.Field{
		logger.EventType(string(event.EventType())),
		logger.String("aggregate_id", event.AggregateID()),
		logger.Any("occurred_at", event.OccurredAt()),
	}
	for _, k := range keys {
		fields = append(fields, logger.Any("payload."+k, payload[k]))
	}
	a.log.Info("domain event", fields...)
	return nil
}
