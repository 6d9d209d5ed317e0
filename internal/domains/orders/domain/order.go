package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyOrderID     = errors.New("order id is required")
	ErrEmptyCustomer    = errors.New("customer id is required")
	ErrEmptyItems       = errors.New("at least one line item is required")
	ErrInvalidLineItem  = errors.New("line items need a name, a positive quantity and a non-negative price")
	ErrInvalidTotal     = errors.New("order total must not be negative")
	ErrMissingDriver    = errors.New("driver id is required")
	ErrMilestoneRewrite = errors.New("milestone timestamp is already set")
)

// LineItem is carried through transitions without interpretation.
type LineItem struct {
	Name      string `json:"name"`
	Quantity  int32  `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
}

// Milestones records when the order first reached each stage.
type Milestones struct {
	CreatedAt   time.Time
	PreparingAt *time.Time
	ReadyAt     *time.Time
	PickedUpAt  *time.Time
	DeliveredAt *time.Time
}

// Order is the aggregate owned by the orders bounded context.
type Order struct {
	ID              string
	Number          string
	CustomerID      string
	DriverID        string
	Status          Status
	Items           []LineItem
	Total           int64
	DeliveryAddress string
	Milestones      Milestones
}

// NewOrder builds a PENDING order with a fresh identity and order number.
func NewOrder(customerID string, items []LineItem, total int64, address string, now time.Time) (*Order, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, ErrEmptyCustomer
	}
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}
	for _, item := range items {
		if strings.TrimSpace(item.Name) == "" || item.Quantity <= 0 || item.UnitPrice < 0 {
			return nil, ErrInvalidLineItem
		}
	}
	if total < 0 {
		return nil, ErrInvalidTotal
	}
	id := uuid.New()
	now = now.UTC()
	return &Order{
		ID:              id.String(),
		Number:          OrderNumber(now, id),
		CustomerID:      strings.TrimSpace(customerID),
		Status:          StatusPending,
		Items:           append([]LineItem{}, items...),
		Total:           total,
		DeliveryAddress: strings.TrimSpace(address),
		Milestones:      Milestones{CreatedAt: now},
	}, nil
}

// OrderNumber renders the human readable number, e.g. ORD-20240612-1A2B3C4D.
func OrderNumber(at time.Time, id uuid.UUID) string {
	suffix := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))[:8]
	return fmt.Sprintf("ORD-%s-%s", at.UTC().Format("20060102"), suffix)
}

// Apply moves the order to the target status and stamps the matching milestone.
// Legality is decided by Authorize; Apply only enforces field level invariants.
func (o *Order) Apply(to Status, driverID string, at time.Time) error {
	if !to.Valid() {
		return ErrUnknownStatus
	}
	at = at.UTC()
	switch to {
	case StatusPreparing:
		if o.Milestones.PreparingAt == nil {
			o.Milestones.PreparingAt = timePtr(at)
		}
	case StatusReady:
		if o.Milestones.ReadyAt == nil {
			o.Milestones.ReadyAt = timePtr(at)
		}
	case StatusOutForDelivery:
		if strings.TrimSpace(driverID) == "" {
			return ErrMissingDriver
		}
		if o.Milestones.PickedUpAt != nil {
			return ErrMilestoneRewrite
		}
		o.DriverID = strings.TrimSpace(driverID)
		o.Milestones.PickedUpAt = timePtr(at)
	case StatusDelivered:
		if o.Milestones.DeliveredAt == nil {
			o.Milestones.DeliveredAt = timePtr(at)
		}
	}
	o.Status = to
	return nil
}

// Clone returns a deep copy safe to hand to callers.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = append([]LineItem{}, o.Items...)
	clone.Milestones.PreparingAt = copyTime(o.Milestones.PreparingAt)
	clone.Milestones.ReadyAt = copyTime(o.Milestones.ReadyAt)
	clone.Milestones.PickedUpAt = copyTime(o.Milestones.PickedUpAt)
	clone.Milestones.DeliveredAt = copyTime(o.Milestones.DeliveredAt)
	return &clone
}

func timePtr(t time.Time) *time.Time { return &t }

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
