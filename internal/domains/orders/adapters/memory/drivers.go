package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
	"github.com/Apurer/fulfillment-api/internal/domains/orders/ports"
)

var _ ports.DriverDirectory = (*DriverDirectory)(nil)

// DriverDirectory is an in-memory driver registry.
type DriverDirectory struct {
	mu      sync.RWMutex
	drivers map[string]domain.Driver
}

func NewDriverDirectory() *DriverDirectory {
	return &DriverDirectory{drivers: map[string]domain.Driver{}}
}

func (d *DriverDirectory) Save(_ context.Context, driver *domain.Driver) (*domain.Driver, error) {
	if driver == nil {
		return nil, errors.New("driver is nil")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.drivers[driver.ID] = *driver
	clone := *driver
	return &clone, nil
}

func (d *DriverDirectory) GetByID(_ context.Context, id string) (*domain.Driver, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	driver, ok := d.drivers[id]
	if !ok {
		return nil, ports.ErrDriverNotFound
	}
	return &driver, nil
}

func (d *DriverDirectory) List(_ context.Context) ([]*domain.Driver, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	list := make([]*domain.Driver, 0, len(d.drivers))
	for _, driver := range d.drivers {
		clone := driver
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}
