package notification

import (
	"context"
	"time"

	"github.com/frahmantamala/collection-management/internal/core/events"
	"github.com/google/uuid"
)

// EventBusSink republishes notifications on the in-process event bus so
// other components (e.g. a future websocket layer) can subscribe without a
// broker. Used in development when no AMQP DSN is configured.
type EventBusSink struct {
	bus *events.EventBus
}

const EventNotification = "notification.created"

func NewEventBusSink(bus *events.EventBus) *EventBusSink {
	return &EventBusSink{bus: bus}
}

func (s *EventBusSink) Notify(ctx context.Context, msg Message) error {
	return s.bus.Publish(ctx, events.BaseEvent{
		ID:        uuid.New().String(),
		Type:      EventNotification,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"target":  msg.TargetEmployeeCode,
			"type":    msg.Type,
			"message": msg.Message,
			"payload": msg.Payload,
		},
	})
}
