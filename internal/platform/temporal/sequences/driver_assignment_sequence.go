package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	ordertypes "github.com/Apurer/fulfillment-api/internal/domains/orders/application/types"
	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
	orderactivities "github.com/Apurer/fulfillment-api/internal/platform/temporal/activities/orders"
)

// RunDriverAssignmentSequence verifies the driver and then dispatches the order.
func RunDriverAssignmentSequence(ctx workflow.Context, input ordertypes.AssignDriverInput) (*ordertypes.OrderProjection, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("driver assignment sequence started", "orderId", input.OrderID, "driverId", input.DriverID)
	verifyOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 15 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    5 * time.Second,
			MaximumAttempts:    3,
		},
	}
	assignOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}

	var driver domain.Driver
	verifyInput := orderactivities.VerifyDriverInput{DriverID: input.DriverID}
	if err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, verifyOptions), orderactivities.VerifyDriverActivityName, verifyInput).Get(ctx, &driver); err != nil {
		logger.Error("driver assignment sequence verification failed", "orderId", input.OrderID, "error", err)
		return nil, err
	}

	var projection ordertypes.OrderProjection
	if err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, assignOptions), orderactivities.AssignDriverActivityName, input).Get(ctx, &projection); err != nil {
		logger.Error("driver assignment sequence dispatch failed", "orderId", input.OrderID, "error", err)
		return nil, err
	}
	logger.Info("driver assignment sequence completed", "orderId", input.OrderID, "driverId", driver.ID)
	return &projection, nil
}
