package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	fulfillmentclient "github.com/Apurer/fulfillment-api/internal/clients/http/fulfillment"
	"github.com/Apurer/fulfillment-api/internal/domains/orders/reconcile"
	platformobservability "github.com/Apurer/fulfillment-api/internal/platform/observability"
)

func main() {
	var (
		apiURL   = flag.String("api", envOrDefault("FULFILLMENT_API_URL", fulfillmentclient.DefaultServerURL), "fulfillment API base URL including /v1")
		orderID  = flag.String("order", "", "order id to track")
		interval = flag.Duration("interval", reconcile.DefaultPollInterval, "poll interval")
		window   = flag.Duration("window", reconcile.DefaultFallbackWindow, "fallback completion window")
		strict   = flag.Bool("strict-ready", false, "stop the fallback countdown once the order is dispatched")
	)
	flag.Parse()
	if *orderID == "" {
		log.Fatal("-order is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	instruments, shutdown, err := platformobservability.Init(ctx, "fulfillment-tracker")
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(shutdownCtx)
	}()
	logger := instruments.Logger

	var clientOpts []fulfillmentclient.ClientOption
	if token := os.Getenv("FULFILLMENT_TOKEN"); token != "" {
		clientOpts = append(clientOpts, fulfillmentclient.WithBearerToken(token))
	}
	client, err := fulfillmentclient.NewClient(*apiURL, clientOpts...)
	if err != nil {
		log.Fatalf("invalid API URL: %v", err)
	}

	trackerOpts := []reconcile.TrackerOption{reconcile.WithWindow(*window)}
	if *strict {
		trackerOpts = append(trackerOpts, reconcile.WithStrictReadyWindow())
	}
	watcher := reconcile.NewWatcher(client, *orderID,
		reconcile.WithPollInterval(*interval),
		reconcile.WithTrackerOptions(trackerOpts...),
		reconcile.WithLogger(logger),
		reconcile.WithOnChange(func(v reconcile.View) {
			logger.Info("order progress",
				slog.String("order.id", v.OrderID),
				slog.String("status", string(v.Status)),
				slog.String("stage", v.Stage.Label),
				slog.Int("progress", v.Stage.Progress))
		}),
	)

	view, err := watcher.Run(ctx)
	if err != nil {
		logger.Warn("tracking stopped before completion", slog.String("order.id", *orderID), slog.String("error", err.Error()))
		os.Exit(1)
	}
	switch {
	case view.Cancelled:
		logger.Info("order cancelled", slog.String("order.id", *orderID))
	default:
		logger.Info("order completed", slog.String("order.id", *orderID), slog.String("completion", string(view.Completion)))
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
