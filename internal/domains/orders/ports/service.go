package ports

import (
	"context"

	ordertypes "github.com/Apurer/fulfillment-api/internal/domains/orders/application/types"
	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
)

// Service defines the orders use cases exposed to adapters (inbound/driving port).
type Service interface {
	PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*ordertypes.OrderProjection, error)
	UpdateStatus(ctx context.Context, input ordertypes.UpdateStatusInput) (*ordertypes.OrderProjection, error)
	AssignDriver(ctx context.Context, input ordertypes.AssignDriverInput) (*ordertypes.OrderProjection, error)
	GetOrder(ctx context.Context, input ordertypes.OrderIdentifier) (*ordertypes.OrderDetails, error)
	ListTrackingHistory(ctx context.Context, input ordertypes.TrackingQuery) ([]domain.TrackingEntry, error)
	PollStatus(ctx context.Context, input ordertypes.OrderIdentifier) (*domain.StatusSnapshot, error)
	RegisterDriver(ctx context.Context, input ordertypes.RegisterDriverInput) (*domain.Driver, error)
	ListDrivers(ctx context.Context) ([]*domain.Driver, error)
}
