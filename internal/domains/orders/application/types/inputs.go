package types

import "github.com/Apurer/fulfillment-api/internal/domains/orders/domain"

// PlaceOrderInput carries the ordering flow payload that creates a PENDING order.
type PlaceOrderInput struct {
	CustomerID      string
	Items           []domain.LineItem
	Total           int64
	DeliveryAddress string
}

// UpdateStatusInput is the generic status mutation request.
type UpdateStatusInput struct {
	OrderID   string
	Status    string
	Actor     domain.Actor
	Notes     string
	DriverID  string
	Latitude  *float64
	Longitude *float64
}

// AssignDriverInput binds a driver and dispatches a READY order.
type AssignDriverInput struct {
	OrderID  string
	DriverID string
	Actor    domain.Actor
	Notes    string
}

// OrderIdentifier addresses a single order.
type OrderIdentifier struct {
	ID string
}

// TrackingQuery reads the tracking log in the requested direction.
type TrackingQuery struct {
	OrderID string
	Order   domain.SortOrder
}

// RegisterDriverInput adds or replaces a driver in the directory.
type RegisterDriverInput struct {
	ID     string
	Name   string
	Phone  string
	Active bool
	Actor  domain.Actor
}
