package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPartialCoordinates = errors.New("latitude and longitude must be supplied together")
	ErrLatitudeRange      = errors.New("latitude must be between -90 and 90")
	ErrLongitudeRange     = errors.New("longitude must be between -180 and 180")
)

// SortOrder selects the direction a tracking log is read in.
type SortOrder string

const (
	SortAscending  SortOrder = "asc"
	SortDescending SortOrder = "desc"
)

// ParseSortOrder defaults to newest-first.
func ParseSortOrder(raw string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(raw), string(SortAscending)) {
		return SortAscending
	}
	return SortDescending
}

// Coordinates is an optional location attached to a tracking entry.
type Coordinates struct {
	Latitude  *float64
	Longitude *float64
}

// Validate requires both or neither value and checks their ranges.
func (c Coordinates) Validate() error {
	if (c.Latitude == nil) != (c.Longitude == nil) {
		return ErrPartialCoordinates
	}
	if c.Latitude == nil {
		return nil
	}
	if *c.Latitude < -90 || *c.Latitude > 90 {
		return ErrLatitudeRange
	}
	if *c.Longitude < -180 || *c.Longitude > 180 {
		return ErrLongitudeRange
	}
	return nil
}

// TrackingEntry is one immutable audit record of a status change.
type TrackingEntry struct {
	ID        string
	OrderID   string
	Sequence  int64
	Status    Status
	Notes     string
	Latitude  *float64
	Longitude *float64
	Timestamp time.Time
}

// NewTrackingEntry builds an entry for the order. Sequence is assigned on append.
func NewTrackingEntry(orderID string, status Status, notes string, coords Coordinates, at time.Time) TrackingEntry {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		notes = DefaultNote(status)
	}
	return TrackingEntry{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		Status:    status,
		Notes:     notes,
		Latitude:  copyFloat(coords.Latitude),
		Longitude: copyFloat(coords.Longitude),
		Timestamp: at.UTC(),
	}
}

// DefaultNote is the note recorded when the caller supplies none.
func DefaultNote(status Status) string {
	switch status {
	case StatusPending:
		return "Order placed"
	case StatusConfirmed:
		return "Order confirmed"
	case StatusPreparing:
		return "Kitchen started preparing the order"
	case StatusReady:
		return "Order is ready for pickup"
	case StatusOutForDelivery:
		return "Order picked up by driver"
	case StatusDelivered:
		return "Order delivered"
	case StatusCancelled:
		return "Order cancelled"
	default:
		return "Status changed to " + string(status)
	}
}

// Before orders entries by timestamp, then sequence.
func (e TrackingEntry) Before(other TrackingEntry) bool {
	if !e.Timestamp.Equal(other.Timestamp) {
		return e.Timestamp.Before(other.Timestamp)
	}
	return e.Sequence < other.Sequence
}

// Clone returns a copy that does not share coordinate pointers.
func (e TrackingEntry) Clone() TrackingEntry {
	e.Latitude = copyFloat(e.Latitude)
	e.Longitude = copyFloat(e.Longitude)
	return e
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
