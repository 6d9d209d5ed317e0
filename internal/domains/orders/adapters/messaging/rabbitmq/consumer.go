package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
)

// Handler processes one decoded event. A failed first delivery is requeued once.
type Handler func(ctx context.Context, event domain.Event) error

// Consumer binds a durable queue to the events exchange and feeds a Handler.
type Consumer struct {
	conn       Connection
	exchange   string
	queue      string
	bindingKey string
	prefetch   int
	backoff    time.Duration
	logger     *slog.Logger
}

// ConsumerOption customises a Consumer.
type ConsumerOption func(*Consumer)

// WithBindingKey narrows the topic binding (default "orders.#").
func WithBindingKey(key string) ConsumerOption {
	return func(c *Consumer) {
		if key != "" {
			c.bindingKey = key
		}
	}
}

// WithPrefetch sets the channel QoS prefetch count.
func WithPrefetch(n int) ConsumerOption {
	return func(c *Consumer) {
		if n > 0 {
			c.prefetch = n
		}
	}
}

// WithReconnectBackoff sets the pause between reconnect attempts.
func WithReconnectBackoff(d time.Duration) ConsumerOption {
	return func(c *Consumer) {
		if d > 0 {
			c.backoff = d
		}
	}
}

func WithConsumerLogger(logger *slog.Logger) ConsumerOption {
	return func(c *Consumer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewConsumer(conn Connection, exchange, queue string, opts ...ConsumerOption) *Consumer {
	if exchange == "" {
		exchange = DefaultExchange
	}
	c := &Consumer{
		conn:       conn,
		exchange:   exchange,
		queue:      queue,
		bindingKey: "orders.#",
		prefetch:   10,
		backoff:    5 * time.Second,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run consumes until ctx is cancelled, reconnecting after channel failures.
func (c *Consumer) Run(ctx context.Context, handler Handler) error {
	for {
		err := c.consume(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			return nil
		}

		c.logger.Warn("events consumer disconnected, reconnecting",
			slog.String("queue", c.queue),
			slog.Duration("backoff", c.backoff),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.backoff):
		}
	}
}

func (c *Consumer) consume(ctx context.Context, handler Handler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	closeChan := ch.NotifyClose()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}
	if err := ch.ExchangeDeclare(c.exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	q, err := ch.QueueDeclare(c.queue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, c.bindingKey, c.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	msgs, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-closeChan:
			if err != nil {
				return fmt.Errorf("channel closed: %w", err)
			}
			return errors.New("channel closed gracefully")

		case msg, ok := <-msgs:
			if !ok {
				return errors.New("messages channel closed")
			}
			c.deliver(ctx, msg, handler)
		}
	}
}

func (c *Consumer) deliver(ctx context.Context, msg amqp.Delivery, handler Handler) {
	var envelope Envelope
	if err := json.Unmarshal(msg.Body, &envelope); err != nil {
		c.logger.Error("dropping undecodable message", slog.String("error", err.Error()))
		_ = msg.Nack(false, false)
		return
	}
	event, err := envelope.Decode()
	if err != nil {
		c.logger.Error("dropping unknown event", slog.String("type", envelope.Type), slog.String("error", err.Error()))
		_ = msg.Nack(false, false)
		return
	}
	if err := handler(ctx, event); err != nil {
		c.logger.Warn("event handler failed, requeueing",
			slog.String("type", envelope.Type),
			slog.String("error", err.Error()))
		_ = msg.Nack(false, !msg.Redelivered)
		return
	}
	_ = msg.Ack(false)
}
