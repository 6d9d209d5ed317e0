package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
	"github.com/Apurer/fulfillment-api/internal/domains/orders/ports"
)

var _ ports.DriverDirectory = (*DriverDirectory)(nil)

// DriverDirectory stores drivers using GORM.
type DriverDirectory struct {
	db *gorm.DB
}

func NewDriverDirectory(db *gorm.DB) *DriverDirectory {
	return &DriverDirectory{db: db}
}

// Save inserts or updates a driver.
func (d *DriverDirectory) Save(ctx context.Context, driver *domain.Driver) (*domain.Driver, error) {
	if err := d.ensureDB(); err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, errors.New("driver is nil")
	}
	record := toDriverRecord(driver)
	if err := d.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "phone", "active", "updated_at"}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return d.GetByID(ctx, record.ID)
}

func (d *DriverDirectory) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	if err := d.ensureDB(); err != nil {
		return nil, err
	}
	var record driverRecord
	if err := d.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrDriverNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (d *DriverDirectory) List(ctx context.Context) ([]*domain.Driver, error) {
	if err := d.ensureDB(); err != nil {
		return nil, err
	}
	var records []driverRecord
	if err := d.db.WithContext(ctx).Order("name").Find(&records).Error; err != nil {
		return nil, err
	}
	drivers := make([]*domain.Driver, 0, len(records))
	for i := range records {
		drivers = append(drivers, records[i].toDomain())
	}
	return drivers, nil
}

func (d *DriverDirectory) ensureDB() error {
	if d == nil || d.db == nil {
		return errors.New("postgres driver directory not configured")
	}
	return nil
}
