package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
	"github.com/Apurer/fulfillment-api/internal/domains/orders/ports"
)

// DefaultExchange is the topic exchange order events are published to.
const DefaultExchange = "orders.events"

var _ ports.EventPublisher = (*Publisher)(nil)

// Envelope wraps an event on the wire. Payload holds the event as JSON.
type Envelope struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

// Decode unmarshals the payload into the event type matching Type.
func (e Envelope) Decode() (domain.Event, error) {
	switch e.Type {
	case domain.OrderPlaced{}.EventName():
		var event domain.OrderPlaced
		if err := json.Unmarshal(e.Payload, &event); err != nil {
			return nil, err
		}
		return event, nil
	case domain.OrderStatusChanged{}.EventName():
		var event domain.OrderStatusChanged
		if err := json.Unmarshal(e.Payload, &event); err != nil {
			return nil, err
		}
		return event, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
}

// Encode builds the wire envelope for an event.
func Encode(event domain.Event) ([]byte, error) {
	if event == nil {
		return nil, errors.New("event is nil")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return json.Marshal(Envelope{Type: event.EventName(), OccurredAt: event.OccurredAt().UTC(), Payload: payload})
}

// Publisher publishes domain events with the event name as routing key.
type Publisher struct {
	conn     Connection
	exchange string
}

func NewPublisher(conn Connection, exchange string) *Publisher {
	if exchange == "" {
		exchange = DefaultExchange
	}
	return &Publisher{conn: conn, exchange: exchange}
}

func (p *Publisher) Publish(ctx context.Context, event domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := Encode(event)
	if err != nil {
		return err
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	err = ch.Publish(p.exchange, event.EventName(), false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    event.OccurredAt().UTC(),
		Type:         event.EventName(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}
