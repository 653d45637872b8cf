package service

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"restaurant-pos/internal/entity"
)

const (
	EventTableOpened      = "table-opened"
	EventOrderAdded       = "order-added"
	EventOrderLineRemoved = "order-line-removed"
	EventOrderRemoved     = "order-removed"
	EventTableUpdated     = "table-updated"
	EventTableClosed      = "table-closed"
	EventTableDeleted     = "table-deleted"
	EventPaymentRecorded  = "payment-recorded"
	EventKitchenCompleted = "kitchen-order-completed"
)

// EventHeader carries the event type on every published message.
const EventHeader = "event"

// MessageWriter is the part of *kafka.Writer the services use.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type eventPublisher struct {
	writer MessageWriter
}

// publish sends event keyed by serving table so one table's events stay in
// order. It runs after commit, so failures are logged and never returned.
func (p eventPublisher) publish(ctx context.Context, event entity.ServingTableEvent) {
	if p.writer == nil {
		return
	}
	value, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msgf("Error marshalling %s event", event.Type)
		return
	}

	msg := kafka.Message{
		Key:     []byte(event.ServingTableID),
		Value:   value,
		Headers: []kafka.Header{{Key: EventHeader, Value: []byte(event.Type)}},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logger.Error().Err(err).Msgf("Error publishing %s event for serving table %s", event.Type, event.ServingTableID)
	}
}

func tableEvent(eventType string, table *entity.ServingTable) entity.ServingTableEvent {
	return entity.ServingTableEvent{
		Type:             eventType,
		ServingTableID:   table.ID,
		WaiterID:         table.WaiterID,
		Status:           table.Status,
		TotalPrice:       table.TotalPrice,
		AmountPaid:       table.AmountPaid,
		RemainingBalance: table.RemainingBalance,
	}
}
