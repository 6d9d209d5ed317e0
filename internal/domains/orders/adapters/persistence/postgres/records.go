package postgres

import (
	"time"

	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
	"github.com/Apurer/fulfillment-api/internal/shared/projection"
)

// Models lists the tables owned by this adapter, in migration order.
func Models() []any {
	return []any{&orderRecord{}, &trackingEntryRecord{}, &driverRecord{}}
}

// orderRecord maps the order aggregate to a relational table.
type orderRecord struct {
	ID              string            `gorm:"primaryKey;column:id;size:36"`
	Number          string            `gorm:"column:number;size:32;uniqueIndex"`
	CustomerID      string            `gorm:"column:customer_id;size:64;index"`
	DriverID        string            `gorm:"column:driver_id;size:64;index"`
	Status          string            `gorm:"column:status;type:varchar(32);index"`
	Items           []domain.LineItem `gorm:"column:items;serializer:json"`
	Total           int64             `gorm:"column:total"`
	DeliveryAddress string            `gorm:"column:delivery_address"`
	PlacedAt        time.Time         `gorm:"column:placed_at"`
	PreparingAt     *time.Time        `gorm:"column:preparing_at"`
	ReadyAt         *time.Time        `gorm:"column:ready_at"`
	PickedUpAt      *time.Time        `gorm:"column:picked_up_at"`
	DeliveredAt     *time.Time        `gorm:"column:delivered_at"`
	CreatedAt       time.Time         `gorm:"column:created_at;index"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;index"`
}

func (orderRecord) TableName() string { return "orders" }

// trackingEntryRecord is one row of the append-only tracking log.
type trackingEntryRecord struct {
	ID        string    `gorm:"primaryKey;column:id;size:36"`
	OrderID   string    `gorm:"column:order_id;size:36;uniqueIndex:idx_tracking_order_sequence"`
	Sequence  int64     `gorm:"column:sequence;uniqueIndex:idx_tracking_order_sequence"`
	Status    string    `gorm:"column:status;type:varchar(32)"`
	Notes     string    `gorm:"column:notes"`
	Latitude  *float64  `gorm:"column:latitude"`
	Longitude *float64  `gorm:"column:longitude"`
	Timestamp time.Time `gorm:"column:recorded_at;index"`
}

func (trackingEntryRecord) TableName() string { return "order_tracking_entries" }

// driverRecord backs the driver directory.
type driverRecord struct {
	ID        string    `gorm:"primaryKey;column:id;size:64"`
	Name      string    `gorm:"column:name"`
	Phone     string    `gorm:"column:phone"`
	Active    bool      `gorm:"column:active;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (driverRecord) TableName() string { return "drivers" }

func toOrderRecord(order *domain.Order) orderRecord {
	return orderRecord{
		ID:              order.ID,
		Number:          order.Number,
		CustomerID:      order.CustomerID,
		DriverID:        order.DriverID,
		Status:          string(order.Status),
		Items:           append([]domain.LineItem{}, order.Items...),
		Total:           order.Total,
		DeliveryAddress: order.DeliveryAddress,
		PlacedAt:        order.Milestones.CreatedAt,
		PreparingAt:     order.Milestones.PreparingAt,
		ReadyAt:         order.Milestones.ReadyAt,
		PickedUpAt:      order.Milestones.PickedUpAt,
		DeliveredAt:     order.Milestones.DeliveredAt,
	}
}

func (r orderRecord) toDomain() *domain.Order {
	return &domain.Order{
		ID:              r.ID,
		Number:          r.Number,
		CustomerID:      r.CustomerID,
		DriverID:        r.DriverID,
		Status:          domain.Status(r.Status),
		Items:           append([]domain.LineItem{}, r.Items...),
		Total:           r.Total,
		DeliveryAddress: r.DeliveryAddress,
		Milestones: domain.Milestones{
			CreatedAt:   r.PlacedAt.UTC(),
			PreparingAt: utcPtr(r.PreparingAt),
			ReadyAt:     utcPtr(r.ReadyAt),
			PickedUpAt:  utcPtr(r.PickedUpAt),
			DeliveredAt: utcPtr(r.DeliveredAt),
		},
	}
}

func (r orderRecord) projection() *projection.Projection[*domain.Order] {
	return projection.New(r.toDomain(), r.CreatedAt, r.UpdatedAt)
}

func toTrackingRecord(entry domain.TrackingEntry) trackingEntryRecord {
	return trackingEntryRecord{
		ID:        entry.ID,
		OrderID:   entry.OrderID,
		Sequence:  entry.Sequence,
		Status:    string(entry.Status),
		Notes:     entry.Notes,
		Latitude:  entry.Latitude,
		Longitude: entry.Longitude,
		Timestamp: entry.Timestamp.UTC(),
	}
}

func (r trackingEntryRecord) toDomain() domain.TrackingEntry {
	return domain.TrackingEntry{
		ID:        r.ID,
		OrderID:   r.OrderID,
		Sequence:  r.Sequence,
		Status:    domain.Status(r.Status),
		Notes:     r.Notes,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Timestamp: r.Timestamp.UTC(),
	}
}

func toDriverRecord(driver *domain.Driver) driverRecord {
	return driverRecord{ID: driver.ID, Name: driver.Name, Phone: driver.Phone, Active: driver.Active}
}

func (r driverRecord) toDomain() *domain.Driver {
	return &domain.Driver{ID: r.ID, Name: r.Name, Phone: r.Phone, Active: r.Active}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
