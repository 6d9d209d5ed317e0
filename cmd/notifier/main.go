package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Apurer/fulfillment-api/internal/app/api"
	"github.com/Apurer/fulfillment-api/internal/domains/orders/adapters/messaging/rabbitmq"
	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
	platformobservability "github.com/Apurer/fulfillment-api/internal/platform/observability"
)

// queueName is durable so status changes published while the notifier is down are kept.
const queueName = "orders.notifier"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if cfg.RabbitURL == "" {
		log.Fatal("RABBITMQ_URL is required")
	}
	instruments, shutdown, err := platformobservability.Init(ctx, "fulfillment-notifier")
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(shutdownCtx)
	}()
	logger := instruments.Logger

	conn, err := rabbitmq.Dial(cfg.RabbitURL)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer conn.Close()

	consumer := rabbitmq.NewConsumer(conn, cfg.RabbitExchange, queueName, rabbitmq.WithConsumerLogger(logger))
	logger.Info("notifier consuming order events", slog.String("exchange", cfg.RabbitExchange), slog.String("queue", queueName))
	if err := consumer.Run(ctx, notify(logger)); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("notifier stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("notifier stopped")
}

// notify logs the customer-facing notification for each event.
func notify(logger *slog.Logger) rabbitmq.Handler {
	return func(ctx context.Context, event domain.Event) error {
		switch e := event.(type) {
		case domain.OrderPlaced:
			logger.InfoContext(ctx, "order received",
				slog.String("order.id", e.OrderID),
				slog.String("order.number", e.Number),
				slog.String("customer.id", e.CustomerID))
		case domain.OrderStatusChanged:
			logger.InfoContext(ctx, "order status changed",
				slog.String("order.id", e.OrderID),
				slog.String("from", string(e.FromStatus)),
				slog.String("to", string(e.ToStatus)),
				slog.String("driver.id", e.DriverID))
		default:
			logger.InfoContext(ctx, "order event", slog.String("event", event.EventName()))
		}
		return nil
	}
}
