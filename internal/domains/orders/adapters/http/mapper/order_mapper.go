package mapper

import (
	"time"

	ordertypes "github.com/Apurer/fulfillment-api/internal/domains/orders/application/types"
	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
)

// LineItem is the HTTP representation of an order line.
type LineItem struct {
	Name      string `json:"name"`
	Quantity  int32  `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
}

// PlaceOrderRequest is the inbound payload of POST /orders.
type PlaceOrderRequest struct {
	CustomerID      string     `json:"customerId"`
	Items           []LineItem `json:"items"`
	Total           int64      `json:"total"`
	DeliveryAddress string     `json:"deliveryAddress,omitempty"`
}

// UpdateStatusRequest is the inbound payload of PATCH /orders/:orderId/status.
type UpdateStatusRequest struct {
	Status    string   `json:"status"`
	Notes     string   `json:"notes,omitempty"`
	DriverID  string   `json:"driverId,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// AssignDriverRequest is the inbound payload of POST /orders/:orderId/driver.
type AssignDriverRequest struct {
	DriverID string `json:"driverId"`
	Notes    string `json:"notes,omitempty"`
}

// RegisterDriverRequest is the inbound payload of POST /drivers.
type RegisterDriverRequest struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Phone  string `json:"phone,omitempty"`
	Active *bool  `json:"active,omitempty"`
}

// Order is the HTTP representation of the order aggregate.
type Order struct {
	ID              string     `json:"id"`
	Number          string     `json:"number"`
	CustomerID      string     `json:"customerId"`
	DriverID        string     `json:"driverId,omitempty"`
	Status          string     `json:"status"`
	Items           []LineItem `json:"items"`
	Total           int64      `json:"total"`
	DeliveryAddress string     `json:"deliveryAddress,omitempty"`
	PlacedAt        time.Time  `json:"placedAt"`
	PreparingAt     *time.Time `json:"preparingAt,omitempty"`
	ReadyAt         *time.Time `json:"readyAt,omitempty"`
	PickedUpAt      *time.Time `json:"pickedUpAt,omitempty"`
	DeliveredAt     *time.Time `json:"deliveredAt,omitempty"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// TrackingEntry is the HTTP representation of one tracking log row.
type TrackingEntry struct {
	ID        string    `json:"id"`
	Sequence  int64     `json:"sequence"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderDetails is the GET /orders/:orderId response.
type OrderDetails struct {
	Order
	Tracking []TrackingEntry `json:"tracking"`
}

// Status is the poll response consumed by reconcilers.
type Status struct {
	OrderID     string     `json:"orderId"`
	Status      string     `json:"status"`
	ReadyAt     *time.Time `json:"readyAt,omitempty"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Driver is the HTTP representation of a driver.
type Driver struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Phone  string `json:"phone,omitempty"`
	Active bool   `json:"active"`
}

// ToPlaceOrderInput maps the inbound payload to the use case input.
func ToPlaceOrderInput(req PlaceOrderRequest) ordertypes.PlaceOrderInput {
	items := make([]domain.LineItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.LineItem{Name: item.Name, Quantity: item.Quantity, UnitPrice: item.UnitPrice})
	}
	return ordertypes.PlaceOrderInput{
		CustomerID:      req.CustomerID,
		Items:           items,
		Total:           req.Total,
		DeliveryAddress: req.DeliveryAddress,
	}
}

// ToUpdateStatusInput maps the inbound payload for the given order and actor.
func ToUpdateStatusInput(orderID string, actor domain.Actor, req UpdateStatusRequest) ordertypes.UpdateStatusInput {
	return ordertypes.UpdateStatusInput{
		OrderID:   orderID,
		Status:    req.Status,
		Actor:     actor,
		Notes:     req.Notes,
		DriverID:  req.DriverID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
}

// ToRegisterDriverInput defaults Active to true when omitted.
func ToRegisterDriverInput(actor domain.Actor, req RegisterDriverRequest) ordertypes.RegisterDriverInput {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return ordertypes.RegisterDriverInput{ID: req.ID, Name: req.Name, Phone: req.Phone, Active: active, Actor: actor}
}

// FromProjection maps an order projection to its HTTP shape.
func FromProjection(projection *ordertypes.OrderProjection) Order {
	if projection == nil || projection.Entity == nil {
		return Order{}
	}
	o := projection.Entity
	items := make([]LineItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, LineItem{Name: item.Name, Quantity: item.Quantity, UnitPrice: item.UnitPrice})
	}
	return Order{
		ID:              o.ID,
		Number:          o.Number,
		CustomerID:      o.CustomerID,
		DriverID:        o.DriverID,
		Status:          o.Status.String(),
		Items:           items,
		Total:           o.Total,
		DeliveryAddress: o.DeliveryAddress,
		PlacedAt:        o.Milestones.CreatedAt,
		PreparingAt:     o.Milestones.PreparingAt,
		ReadyAt:         o.Milestones.ReadyAt,
		PickedUpAt:      o.Milestones.PickedUpAt,
		DeliveredAt:     o.Milestones.DeliveredAt,
		UpdatedAt:       projection.Metadata.UpdatedAt,
	}
}

// FromDetails maps an order together with its tracking log.
func FromDetails(details *ordertypes.OrderDetails) OrderDetails {
	if details == nil {
		return OrderDetails{}
	}
	return OrderDetails{Order: FromProjection(details.Order), Tracking: FromTrackingEntries(details.Tracking)}
}

// FromTrackingEntries always returns a non-nil slice so the JSON is an array.
func FromTrackingEntries(entries []domain.TrackingEntry) []TrackingEntry {
	out := make([]TrackingEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, TrackingEntry{
			ID:        e.ID,
			Sequence:  e.Sequence,
			Status:    e.Status.String(),
			Notes:     e.Notes,
			Latitude:  e.Latitude,
			Longitude: e.Longitude,
			Timestamp: e.Timestamp,
		})
	}
	return out
}

// FromSnapshot maps a poll snapshot to its HTTP shape.
func FromSnapshot(snapshot *domain.StatusSnapshot) Status {
	if snapshot == nil {
		return Status{}
	}
	return Status{
		OrderID:     snapshot.OrderID,
		Status:      snapshot.Status.String(),
		ReadyAt:     snapshot.ReadyAt,
		DeliveredAt: snapshot.DeliveredAt,
		UpdatedAt:   snapshot.UpdatedAt,
	}
}

// ToSnapshot maps a poll response back into the domain read model.
func ToSnapshot(status Status) (*domain.StatusSnapshot, error) {
	parsed, err := domain.ParseStatus(status.Status)
	if err != nil {
		return nil, err
	}
	return &domain.StatusSnapshot{
		OrderID:     status.OrderID,
		Status:      parsed,
		ReadyAt:     status.ReadyAt,
		DeliveredAt: status.DeliveredAt,
		UpdatedAt:   status.UpdatedAt,
	}, nil
}

// FromDriver maps a driver to its HTTP shape.
func FromDriver(driver *domain.Driver) Driver {
	if driver == nil {
		return Driver{}
	}
	return Driver{ID: driver.ID, Name: driver.Name, Phone: driver.Phone, Active: driver.Active}
}

// FromDrivers maps a driver list.
func FromDrivers(drivers []*domain.Driver) []Driver {
	out := make([]Driver, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, FromDriver(d))
	}
	return out
}
