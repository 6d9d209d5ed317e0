package orders

import (
	"go.temporal.io/sdk/workflow"

	ordertypes "github.com/Apurer/fulfillment-api/internal/domains/orders/application/types"
	"github.com/Apurer/fulfillment-api/internal/platform/temporal/sequences"
)

const (
	// DriverAssignmentWorkflowName is the public identifier for registering the workflow.
	DriverAssignmentWorkflowName = "orders.workflows.DriverAssignment"
	// DriverAssignmentTaskQueue is the queue consumed by the worker processing order workflows.
	DriverAssignmentTaskQueue = "ORDER_DRIVER_ASSIGNMENT"
)

// DriverAssignmentWorkflowInput captures the assignment command plus the caller's trace.
type DriverAssignmentWorkflowInput struct {
	Command ordertypes.AssignDriverInput
	TraceID string
}

// DriverAssignmentWorkflow dispatches a READY order to a verified driver.
func DriverAssignmentWorkflow(ctx workflow.Context, input DriverAssignmentWorkflowInput) (*ordertypes.OrderProjection, error) {
	logger := workflow.GetLogger(ctx)
	orderID := input.Command.OrderID
	logger.Info("DriverAssignmentWorkflow started", withTraceID(input.TraceID, "orderId", orderID)...)
	projection, err := sequences.RunDriverAssignmentSequence(ctx, input.Command)
	if err != nil {
		logger.Error("DriverAssignmentWorkflow failed", withTraceID(input.TraceID, "orderId", orderID, "error", err)...)
		return nil, err
	}
	logger.Info("DriverAssignmentWorkflow completed", withTraceID(input.TraceID, "orderId", orderID)...)
	return projection, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
