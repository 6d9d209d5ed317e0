package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	fulfillmentserver "github.com/Apurer/fulfillment-api/go"

	ordersworkflows "github.com/Apurer/fulfillment-api/internal/domains/orders/adapters/workflows"
	orderports "github.com/Apurer/fulfillment-api/internal/domains/orders/ports"
	"github.com/Apurer/fulfillment-api/internal/platform/auth"
	platformobservability "github.com/Apurer/fulfillment-api/internal/platform/observability"
)

const serviceName = "fulfillment-api"

// Run boots the fulfillment HTTP API and blocks until ctx is cancelled or the server fails.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		return fmt.Errorf("JWT_SECRET: %w", err)
	}
	components, err := BuildComponents(ctx, cfg, instruments)
	if err != nil {
		return err
	}
	defer components.Close()

	var assignment orderports.AssignmentOrchestrator = ordersworkflows.NewInlineAssignment(components.Service)
	if temporalClient, err := ConnectTemporal(cfg, instruments, "temporal-client"); err != nil {
		logger.Warn("Temporal workflows unavailable, assigning drivers inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		assignment = ordersworkflows.NewTemporalAssignment(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	router := fulfillmentserver.NewRouter(fulfillmentserver.ApiHandleFunctions{
		OrderAPI:  fulfillmentserver.NewOrderAPI(components.Service, assignment),
		DriverAPI: fulfillmentserver.NewDriverAPI(components.Service),
		Verifier:  tokens,
	})
	router.Use(otelgin.Middleware(serviceName))

	server := &http.Server{Addr: ":" + cfg.Port, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("fulfillment API listening", slog.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("fulfillment API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}
	logger.Info("fulfillment API shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
