package types

import (
	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
	"github.com/Apurer/fulfillment-api/internal/shared/projection"
)

// OrderProjection transports the aggregate together with its persistence metadata.
type OrderProjection = projection.Projection[*domain.Order]

// OrderDetails is an order with its tracking history, newest first.
type OrderDetails struct {
	Order    *OrderProjection
	Tracking []domain.TrackingEntry
}
