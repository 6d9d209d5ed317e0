package domain

import "time"

// Event is the base interface for all domain events.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent provides common event metadata.
type BaseEvent struct {
	Timestamp time.Time `json:"occurredAt"`
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// OrderPlaced is raised when an order enters the system in PENDING.
type OrderPlaced struct {
	BaseEvent
	OrderID    string `json:"orderId"`
	Number     string `json:"number"`
	CustomerID string `json:"customerId"`
	Total      int64  `json:"total"`
}

// EventName returns the event type identifier.
func (e OrderPlaced) EventName() string {
	return "orders.order.placed"
}

// OrderStatusChanged is raised after a transition has been applied.
type OrderStatusChanged struct {
	BaseEvent
	OrderID    string `json:"orderId"`
	Number     string `json:"number"`
	CustomerID string `json:"customerId"`
	DriverID   string `json:"driverId,omitempty"`
	FromStatus Status `json:"fromStatus"`
	ToStatus   Status `json:"toStatus"`
	ActorID    string `json:"actorId,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// EventName returns the event type identifier.
func (e OrderStatusChanged) EventName() string {
	return "orders.order.status_changed"
}

// StatusSnapshot is the read model served to pollers.
type StatusSnapshot struct {
	OrderID     string     `json:"orderId"`
	Status      Status     `json:"status"`
	ReadyAt     *time.Time `json:"readyAt,omitempty"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Snapshot derives the poll view of the order.
func (o *Order) Snapshot(updatedAt time.Time) StatusSnapshot {
	return StatusSnapshot{
		OrderID:     o.ID,
		Status:      o.Status,
		ReadyAt:     copyTime(o.Milestones.ReadyAt),
		DeliveredAt: copyTime(o.Milestones.DeliveredAt),
		UpdatedAt:   updatedAt.UTC(),
	}
}

// Supersedes reports whether s may replace prev in a read model. The later
// UpdatedAt wins; on a tie the status further along the lifecycle wins.
func (s StatusSnapshot) Supersedes(prev StatusSnapshot) bool {
	if !s.UpdatedAt.Equal(prev.UpdatedAt) {
		return s.UpdatedAt.After(prev.UpdatedAt)
	}
	return s.Status.Rank() >= prev.Status.Rank()
}
