package orders

import (
	"context"
	"errors"
	"strings"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/fulfillment-api/internal/domains/orders/application"
	ordertypes "github.com/Apurer/fulfillment-api/internal/domains/orders/application/types"
	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/fulfillment-api/internal/domains/orders/ports"
)

const (
	// VerifyDriverActivityName checks that a driver exists and is active.
	VerifyDriverActivityName = "orders.activities.VerifyDriver"
	// AssignDriverActivityName binds the driver and dispatches the order.
	AssignDriverActivityName = "orders.activities.AssignDriver"
)

// VerifyDriverInput names the driver to check.
type VerifyDriverInput struct {
	DriverID string
}

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	service orderports.Service
	drivers orderports.DriverDirectory
}

// NewActivities wires the orders collaborators into the Temporal activities bundle.
func NewActivities(service orderports.Service, drivers orderports.DriverDirectory) *Activities {
	return &Activities{service: service, drivers: drivers}
}

// VerifyDriver fails non-retryably when the driver is unknown or inactive.
// Directory outages surface as plain errors so the retry policy applies.
func (a *Activities) VerifyDriver(ctx context.Context, input VerifyDriverInput) (*domain.Driver, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.drivers == nil {
		logger.Error("verify driver activity not initialized", "driverId", input.DriverID)
		return nil, errors.New("verify driver activity not initialized")
	}
	if strings.TrimSpace(input.DriverID) == "" {
		return nil, nonRetryable(application.FromKind(application.KindInvalidInput, "driver id is required"))
	}
	logger.Info("VerifyDriver activity started", "driverId", input.DriverID)
	driver, err := a.drivers.GetByID(ctx, input.DriverID)
	if errors.Is(err, orderports.ErrDriverNotFound) {
		logger.Info("VerifyDriver rejected unknown driver", "driverId", input.DriverID)
		return nil, nonRetryable(application.FromKind(application.KindNotFound, err.Error()))
	}
	if err != nil {
		logger.Error("VerifyDriver activity failed", "driverId", input.DriverID, "error", err)
		return nil, err
	}
	if err := driver.EnsureActive(); err != nil {
		logger.Info("VerifyDriver rejected inactive driver", "driverId", input.DriverID)
		return nil, nonRetryable(application.FromKind(application.KindConflict, err.Error()))
	}
	logger.Info("VerifyDriver activity completed", "driverId", input.DriverID)
	return driver, nil
}

// AssignDriver performs the READY -> OUT_FOR_DELIVERY transition. Every service
// error is reported non-retryable; mutations are never replayed.
func (a *Activities) AssignDriver(ctx context.Context, input ordertypes.AssignDriverInput) (*ordertypes.OrderProjection, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("assign driver activity not initialized", "orderId", input.OrderID)
		return nil, errors.New("assign driver activity not initialized")
	}
	logger.Info("AssignDriver activity started", "orderId", input.OrderID, "driverId", input.DriverID)
	projection, err := a.service.AssignDriver(ctx, input)
	if err != nil {
		logger.Error("AssignDriver activity failed", "orderId", input.OrderID, "error", err)
		return nil, nonRetryable(err)
	}
	logger.Info("AssignDriver activity completed", "orderId", input.OrderID)
	return projection, nil
}

// nonRetryable carries the error kind as the application error type so callers
// can rebuild the service error on the other side of the workflow.
func nonRetryable(err error) error {
	return temporal.NewNonRetryableApplicationError(err.Error(), string(application.KindOf(err)), err)
}
