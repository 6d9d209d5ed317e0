package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
	"github.com/Apurer/fulfillment-api/internal/domains/orders/ports"
)

var (
	_ ports.Repository  = (*Repository)(nil)
	_ ports.TrackingLog = (*Repository)(nil)
)

// Repository persists orders and their tracking logs using GORM.
// Schema is owned by the migrations package; see Models.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository wires a GORM-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// WithClock overrides the metadata time source.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	if now != nil {
		r.now = now
	}
	return r
}

// Create inserts the order and its first tracking entry in one transaction.
func (r *Repository) Create(ctx context.Context, order *domain.Order, initial domain.TrackingEntry) (*ports.OrderProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record := toOrderRecord(order)
	now := r.now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	initial.OrderID = order.ID
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		_, err := appendEntry(tx, initial)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record.projection(), nil
}

// GetByID fetches an order by identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*ports.OrderProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.projection(), nil
}

// Mutate locks the order row for the duration of fn and persists its outcome.
func (r *Repository) Mutate(ctx context.Context, id string, fn ports.MutateFunc) (*ports.OrderProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var result *ports.OrderProjection
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := lockOrder(tx, id)
		if err != nil {
			return err
		}
		order := record.toDomain()
		entry, err := fn(order)
		if err != nil {
			return err
		}
		if entry == nil {
			result = record.projection()
			return nil
		}
		updated := toOrderRecord(order)
		updated.CreatedAt = record.CreatedAt
		updated.UpdatedAt = r.now().UTC()
		if updated.UpdatedAt.Before(record.UpdatedAt) {
			updated.UpdatedAt = record.UpdatedAt
		}
		if err := tx.Model(&orderRecord{}).Where("id = ?", id).Updates(map[string]any{
			"driver_id":    updated.DriverID,
			"status":       updated.Status,
			"preparing_at": updated.PreparingAt,
			"ready_at":     updated.ReadyAt,
			"picked_up_at": updated.PickedUpAt,
			"delivered_at": updated.DeliveredAt,
			"updated_at":   updated.UpdatedAt,
		}).Error; err != nil {
			return err
		}
		entry.OrderID = id
		if _, err := appendEntry(tx, *entry); err != nil {
			return err
		}
		result = updated.projection()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Append records a tracking entry for an existing order.
func (r *Repository) Append(ctx context.Context, entry domain.TrackingEntry) (*domain.TrackingEntry, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var stored domain.TrackingEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockOrder(tx, entry.OrderID); err != nil {
			return err
		}
		var err error
		stored, err = appendEntry(tx, entry)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// ListFor reads the tracking log of an order.
func (r *Repository) ListFor(ctx context.Context, orderID string, order domain.SortOrder) ([]domain.TrackingEntry, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	db := r.db.WithContext(ctx)
	var count int64
	if err := db.Model(&orderRecord{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ports.ErrNotFound
	}
	direction := "ASC"
	if order != domain.SortAscending {
		direction = "DESC"
	}
	var records []trackingEntryRecord
	if err := db.Where("order_id = ?", orderID).
		Order("recorded_at " + direction).
		Order("sequence " + direction).
		Find(&records).Error; err != nil {
		return nil, err
	}
	entries := make([]domain.TrackingEntry, 0, len(records))
	for i := range records {
		entries = append(entries, records[i].toDomain())
	}
	return entries, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func lockOrder(tx *gorm.DB, id string) (orderRecord, error) {
	var record orderRecord
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return record, ports.ErrNotFound
	}
	return record, err
}

// appendEntry must run with the order row locked.
func appendEntry(tx *gorm.DB, entry domain.TrackingEntry) (domain.TrackingEntry, error) {
	var last []trackingEntryRecord
	if err := tx.Where("order_id = ?", entry.OrderID).Order("sequence DESC").Limit(1).Find(&last).Error; err != nil {
		return entry, err
	}
	entry.Sequence = 1
	entry.Timestamp = entry.Timestamp.UTC()
	if len(last) > 0 {
		entry.Sequence = last[0].Sequence + 1
		if prev := last[0].Timestamp.UTC(); entry.Timestamp.Before(prev) {
			entry.Timestamp = prev
		}
	}
	record := toTrackingRecord(entry)
	if err := tx.Create(&record).Error; err != nil {
		return entry, err
	}
	return entry, nil
}
