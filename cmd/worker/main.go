package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/fulfillment-api/internal/app/api"
	platformobservability "github.com/Apurer/fulfillment-api/internal/platform/observability"
	orderactivities "github.com/Apurer/fulfillment-api/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/fulfillment-api/internal/platform/temporal/workflows/orders"
)

func main() {
	ctx := context.Background()
	const serviceName = "fulfillment-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	components, err := api.BuildComponents(ctx, cfg, instruments)
	if err != nil {
		logger.Error("failed to build orders components", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer components.Close()
	activities := orderactivities.NewActivities(components.Service, components.Drivers)

	temporalClient, err := api.ConnectTemporal(cfg, instruments, "temporal-worker")
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.DriverAssignmentTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.DriverAssignmentWorkflow, workflow.RegisterOptions{Name: orderworkflows.DriverAssignmentWorkflowName})
	w.RegisterActivityWithOptions(activities.VerifyDriver, activity.RegisterOptions{Name: orderactivities.VerifyDriverActivityName})
	w.RegisterActivityWithOptions(activities.AssignDriver, activity.RegisterOptions{Name: orderactivities.AssignDriverActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.DriverAssignmentTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
