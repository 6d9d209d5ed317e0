package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrEmptyDriverName = errors.New("driver name is required")
	ErrDriverInactive  = errors.New("driver is not active")
)

// Driver is a delivery driver an order can be bound to.
type Driver struct {
	ID     string
	Name   string
	Phone  string
	Active bool
}

// NewDriver validates the driver, generating an id when none is given.
func NewDriver(id, name, phone string, active bool) (*Driver, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyDriverName
	}
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}
	return &Driver{ID: id, Name: strings.TrimSpace(name), Phone: strings.TrimSpace(phone), Active: active}, nil
}

// EnsureActive fails for drivers that may not take orders.
func (d *Driver) EnsureActive() error {
	if !d.Active {
		return ErrDriverInactive
	}
	return nil
}
