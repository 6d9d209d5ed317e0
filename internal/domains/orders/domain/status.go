package domain

import (
	"errors"
	"strings"
)

// Status represents the fulfillment lifecycle state of an order.
type Status string

const (
	StatusPending        Status = "PENDING"
	StatusConfirmed      Status = "CONFIRMED"
	StatusPreparing      Status = "PREPARING"
	StatusReady          Status = "READY"
	StatusOutForDelivery Status = "OUT_FOR_DELIVERY"
	StatusDelivered      Status = "DELIVERED"
	StatusCancelled      Status = "CANCELLED"
)

var (
	ErrMissingStatus = errors.New("status is required")
	ErrUnknownStatus = errors.New("status is not recognised")
)

// Statuses lists every status in lifecycle order.
func Statuses() []Status {
	return []Status{
		StatusPending,
		StatusConfirmed,
		StatusPreparing,
		StatusReady,
		StatusOutForDelivery,
		StatusDelivered,
		StatusCancelled,
	}
}

// ParseStatus normalises raw input into a known status.
func ParseStatus(raw string) (Status, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	if value == "" {
		return "", ErrMissingStatus
	}
	status := Status(value)
	if !status.Valid() {
		return "", ErrUnknownStatus
	}
	return status, nil
}

// Valid reports whether the status is one of the known values.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusReady,
		StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transitions leave the status.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Rank orders statuses along the lifecycle. Every edge leads to a higher rank
// and both terminal statuses share the top one. Unknown statuses rank -1.
func (s Status) Rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusConfirmed:
		return 1
	case StatusPreparing:
		return 2
	case StatusReady:
		return 3
	case StatusOutForDelivery:
		return 4
	case StatusDelivered, StatusCancelled:
		return 5
	default:
		return -1
	}
}

func (s Status) String() string { return string(s) }
