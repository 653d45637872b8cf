package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"restaurant-pos/internal/entity"
	"restaurant-pos/internal/service"
)

// MessageReader is the part of *kafka.Reader the feed needs.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KitchenFeed follows the serving table topic and logs what the floor and
// the kitchen did.
type KitchenFeed struct {
	reader MessageReader
}

func NewKitchenFeed(reader MessageReader) *KitchenFeed {
	return &KitchenFeed{reader: reader}
}

// Run reads until ctx is cancelled or the reader is closed.
func (f *KitchenFeed) Run(ctx context.Context) {
	for {
		msg, err := f.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				log.Info().Msg("Kitchen feed stopped")
				return
			}
			log.Error().Msgf("Error reading message: %v", err)
			continue
		}

		if err := f.processMessage(msg); err != nil {
			log.Error().Err(err).Msgf("Skipping message at offset %d", msg.Offset)
		}
	}
}

func (f *KitchenFeed) Close() error {
	return f.reader.Close()
}

// processMessage decodes one serving table event and logs it.
func (f *KitchenFeed) processMessage(msg kafka.Message) error {
	var event entity.ServingTableEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	eventType := eventTypeOf(msg)
	if eventType == "" {
		eventType = event.Type
	}
	tableID := string(msg.Key)

	switch eventType {
	case service.EventTableOpened, service.EventOrderAdded:
		log.Info().Str("serving_table_id", tableID).Str("order_id", event.OrderID).
			Str("kitchen_order_id", event.KitchenOrderID).Int64("total_price", event.TotalPrice).
			Msgf("New order for the kitchen (%s)", eventType)
	case service.EventKitchenCompleted:
		log.Info().Str("serving_table_id", tableID).Str("kitchen_order_id", event.KitchenOrderID).
			Msg("Kitchen order is ready")
	case service.EventPaymentRecorded:
		log.Info().Str("serving_table_id", tableID).Int64("amount", event.Amount).
			Int64("remaining_balance", event.RemainingBalance).Str("status", string(event.Status)).
			Msg("Payment recorded")
	case service.EventOrderLineRemoved, service.EventOrderRemoved, service.EventTableUpdated,
		service.EventTableClosed, service.EventTableDeleted:
		log.Info().Str("serving_table_id", tableID).Int64("remaining_balance", event.RemainingBalance).
			Msgf("Serving table changed (%s)", eventType)
	default:
		return fmt.Errorf("unknown event type: %q", eventType)
	}
	return nil
}

func eventTypeOf(msg kafka.Message) string {
	for _, h := range msg.Headers {
		if h.Key == service.EventHeader {
			return string(h.Value)
		}
	}
	return ""
}
