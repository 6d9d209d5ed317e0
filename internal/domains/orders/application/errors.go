package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
	"github.com/Apurer/fulfillment-api/internal/domains/orders/ports"
)

var (
	// ErrInvalidInput signals a malformed request.
	ErrInvalidInput = errors.New("invalid order request")
	// ErrNotFound signals an unknown order or driver.
	ErrNotFound = errors.New("not found")
	// ErrForbidden signals the caller's roles do not permit the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict signals the operation is not possible from the current state.
	ErrConflict = errors.New("conflict")
)

// ErrorKind names the caller-facing error classes so they can cross process boundaries.
type ErrorKind string

const (
	KindInvalidInput ErrorKind = "invalid_input"
	KindNotFound     ErrorKind = "not_found"
	KindForbidden    ErrorKind = "forbidden"
	KindConflict     ErrorKind = "conflict"
	KindInternal     ErrorKind = "internal"
)

// KindOf classifies an error returned by the service.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrConflict):
		return KindConflict
	default:
		return KindInternal
	}
}

// FromKind rebuilds a service error from its kind and message.
func FromKind(kind ErrorKind, message string) error {
	var sentinel error
	switch kind {
	case KindInvalidInput:
		sentinel = ErrInvalidInput
	case KindNotFound:
		sentinel = ErrNotFound
	case KindForbidden:
		sentinel = ErrForbidden
	case KindConflict:
		sentinel = ErrConflict
	default:
		return errors.New(message)
	}
	return fmt.Errorf("%w: %s", sentinel, message)
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrConflict) {
		return err
	}
	if errors.Is(err, domain.ErrEmptyOrderID) ||
		errors.Is(err, domain.ErrEmptyCustomer) ||
		errors.Is(err, domain.ErrEmptyItems) ||
		errors.Is(err, domain.ErrInvalidLineItem) ||
		errors.Is(err, domain.ErrInvalidTotal) ||
		errors.Is(err, domain.ErrMissingDriver) ||
		errors.Is(err, domain.ErrMissingStatus) ||
		errors.Is(err, domain.ErrUnknownStatus) ||
		errors.Is(err, domain.ErrPartialCoordinates) ||
		errors.Is(err, domain.ErrLatitudeRange) ||
		errors.Is(err, domain.ErrLongitudeRange) ||
		errors.Is(err, domain.ErrEmptyDriverName) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if errors.Is(err, ports.ErrNotFound) || errors.Is(err, ports.ErrDriverNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if errors.Is(err, domain.ErrRoleNotPermitted) || errors.Is(err, domain.ErrNotAssignedDriver) {
		return fmt.Errorf("%w: %w", ErrForbidden, err)
	}
	if errors.Is(err, domain.ErrIllegalTransition) ||
		errors.Is(err, domain.ErrDriverInactive) ||
		errors.Is(err, domain.ErrMilestoneRewrite) {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}
