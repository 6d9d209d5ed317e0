package memory

import (
	"context"
	"sync"

	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
	"github.com/Apurer/fulfillment-api/internal/domains/orders/ports"
)

var _ ports.EventPublisher = (*EventLog)(nil)

// EventLog records published events in order, for local runs and tests.
type EventLog struct {
	mu     sync.Mutex
	events []domain.Event
}

func NewEventLog() *EventLog {
	return &EventLog{}
}

func (l *EventLog) Publish(_ context.Context, event domain.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	return nil
}

// Events returns a copy of everything published so far.
func (l *EventLog) Events() []domain.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.Event(nil), l.events...)
}
