package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	rd "github.com/redis/go-redis/v9"

	rediscache "github.com/Apurer/fulfillment-api/internal/domains/orders/adapters/cache/redis"
	"github.com/Apurer/fulfillment-api/internal/domains/orders/adapters/memory"
	"github.com/Apurer/fulfillment-api/internal/domains/orders/adapters/messaging/rabbitmq"
	ordersobs "github.com/Apurer/fulfillment-api/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/Apurer/fulfillment-api/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/Apurer/fulfillment-api/internal/domains/orders/application"
	orderports "github.com/Apurer/fulfillment-api/internal/domains/orders/ports"
	"github.com/Apurer/fulfillment-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/fulfillment-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/fulfillment-api/internal/platform/postgres"
)

// Components is the orders stack shared by the API and the worker.
type Components struct {
	// Service is the instrumented orders service.
	Service orderports.Service
	Drivers orderports.DriverDirectory
	cleanup []func()
}

// Close releases connections in reverse order of acquisition.
func (c *Components) Close() {
	for i := len(c.cleanup) - 1; i >= 0; i-- {
		c.cleanup[i]()
	}
	c.cleanup = nil
}

// BuildComponents wires stores, cache, publisher and the observability decorator.
// Optional backends that cannot be reached are logged and skipped; a store that
// connects but fails to migrate is an error.
func BuildComponents(ctx context.Context, cfg Config, instruments *platformobservability.Instruments) (*Components, error) {
	logger := instruments.LoggerOrDefault()
	components := &Components{}

	repo, tracking, drivers, err := components.buildStores(ctx, cfg, logger)
	if err != nil {
		components.Close()
		return nil, err
	}
	components.Drivers = drivers

	opts := []ordersapp.Option{ordersapp.WithLogger(logger)}
	if cache := components.buildCache(ctx, cfg, logger); cache != nil {
		opts = append(opts, ordersapp.WithSnapshotCache(cache))
	}
	if publisher := components.buildPublisher(cfg, logger); publisher != nil {
		opts = append(opts, ordersapp.WithPublisher(publisher))
	}
	core := ordersapp.NewService(repo, tracking, drivers, opts...)
	components.Service = ordersobs.New(
		core,
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	return components, nil
}

func (c *Components) buildStores(ctx context.Context, cfg Config, logger *slog.Logger) (orderports.Repository, orderports.TrackingLog, orderports.DriverDirectory, error) {
	if cfg.StoreDriver != StoreMemory {
		db, cleanup := platformpostgres.ConnectWith(ctx, cfg.StoreDriver, cfg.StoreDSN(), logger)
		if db != nil {
			c.cleanup = append(c.cleanup, cleanup)
			if err := migrations.Run(db); err != nil {
				return nil, nil, nil, fmt.Errorf("migrate %s store: %w", cfg.StoreDriver, err)
			}
			repo := orderspostgres.NewRepository(db)
			logger.Info("orders store configured", slog.String("driver", cfg.StoreDriver))
			return repo, repo, orderspostgres.NewDriverDirectory(db), nil
		}
	}
	logger.Info("orders store configured", slog.String("driver", StoreMemory))
	repo := memory.NewRepository()
	return repo, repo, memory.NewDriverDirectory(), nil
}

func (c *Components) buildCache(ctx context.Context, cfg Config, logger *slog.Logger) orderports.SnapshotCache {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := rd.NewClient(&rd.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, serving poll views from the store", slog.String("addr", cfg.RedisAddr), slog.String("error", err.Error()))
		_ = client.Close()
		return nil
	}
	c.cleanup = append(c.cleanup, func() { _ = client.Close() })
	logger.Info("snapshot cache enabled", slog.String("addr", cfg.RedisAddr), slog.Duration("ttl", cfg.RedisTTL))
	return rediscache.NewSnapshotCache(client, cfg.RedisTTL)
}

func (c *Components) buildPublisher(cfg Config, logger *slog.Logger) orderports.EventPublisher {
	if cfg.RabbitURL == "" {
		return nil
	}
	conn, err := rabbitmq.Dial(cfg.RabbitURL)
	if err != nil {
		logger.Warn("rabbitmq unavailable, order events will not be published", slog.String("error", err.Error()))
		return nil
	}
	c.cleanup = append(c.cleanup, func() { _ = conn.Close() })
	logger.Info("order events publishing enabled", slog.String("exchange", cfg.RabbitExchange))
	return rabbitmq.NewPublisher(conn, cfg.RabbitExchange)
}
