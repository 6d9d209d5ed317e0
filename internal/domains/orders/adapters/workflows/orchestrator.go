package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/fulfillment-api/internal/domains/orders/application"
	ordertypes "github.com/Apurer/fulfillment-api/internal/domains/orders/application/types"
	"github.com/Apurer/fulfillment-api/internal/domains/orders/ports"
	orderworkflows "github.com/Apurer/fulfillment-api/internal/platform/temporal/workflows/orders"
)

var (
	_ ports.AssignmentOrchestrator = (*TemporalAssignment)(nil)
	_ ports.AssignmentOrchestrator = (*InlineAssignment)(nil)
)

// TemporalAssignment starts driver assignment workflows on a Temporal cluster.
type TemporalAssignment struct {
	client    client.Client
	taskQueue string
}

// NewTemporalAssignment wires a Temporal client into the orchestrator.
func NewTemporalAssignment(c client.Client) *TemporalAssignment {
	return &TemporalAssignment{client: c, taskQueue: orderworkflows.DriverAssignmentTaskQueue}
}

// AssignDriver runs the assignment workflow and waits for its result. A request
// replayed under the same trace attaches to the run already in flight.
func (o *TemporalAssignment) AssignDriver(ctx context.Context, input ordertypes.AssignDriverInput) (*ordertypes.OrderProjection, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal assignment not configured")
	}
	workflowID := fmt.Sprintf("order-driver-assignment-%s-%s", input.OrderID, workflowTraceComponent(ctx))
	options := client.StartWorkflowOptions{
		ID:                                       workflowID,
		TaskQueue:                                o.taskQueue,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		orderworkflows.DriverAssignmentWorkflow,
		orderworkflows.DriverAssignmentWorkflowInput{Command: input, TraceID: workflowTraceID(ctx)},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) {
			return nil, err
		}
		run = o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
	}
	var projection ordertypes.OrderProjection
	if err := run.Get(ctx, &projection); err != nil {
		return nil, serviceError(err)
	}
	return &projection, nil
}

// InlineAssignment executes the service directly without Temporal, useful for tests or dev fallbacks.
type InlineAssignment struct {
	service ports.Service
}

// NewInlineAssignment wraps the orders service for synchronous execution.
func NewInlineAssignment(service ports.Service) *InlineAssignment {
	return &InlineAssignment{service: service}
}

func (o *InlineAssignment) AssignDriver(ctx context.Context, input ordertypes.AssignDriverInput) (*ordertypes.OrderProjection, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline assignment not configured")
	}
	return o.service.AssignDriver(ctx, input)
}

// serviceError rebuilds the service error carried as an application error type.
func serviceError(err error) error {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		if kind := application.ErrorKind(appErr.Type()); kind != application.KindInternal && kind != "" {
			return application.FromKind(kind, appErr.Message())
		}
	}
	return err
}

func workflowTraceComponent(ctx context.Context) string {
	if traceID := workflowTraceID(ctx); traceID != "" {
		return traceID
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
