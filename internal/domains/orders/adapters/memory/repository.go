package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
	"github.com/Apurer/fulfillment-api/internal/domains/orders/ports"
	"github.com/Apurer/fulfillment-api/internal/shared/projection"
)

var (
	_ ports.Repository  = (*Repository)(nil)
	_ ports.TrackingLog = (*Repository)(nil)
)

// Repository keeps orders and their tracking logs in process memory.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]*orderState
	locks  map[string]*sync.Mutex
	now    func() time.Time
}

type orderState struct {
	order     *domain.Order
	entries   []domain.TrackingEntry
	nextSeq   int64
	createdAt time.Time
	updatedAt time.Time
}

func NewRepository() *Repository {
	return &Repository{
		orders: map[string]*orderState{},
		locks:  map[string]*sync.Mutex{},
		now:    time.Now,
	}
}

// WithClock overrides the metadata time source.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	if now != nil {
		r.now = now
	}
	return r
}

func (r *Repository) Create(_ context.Context, order *domain.Order, initial domain.TrackingEntry) (*ports.OrderProjection, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.orders[order.ID]; exists {
		return nil, errors.New("order already exists")
	}
	now := r.now().UTC()
	state := &orderState{order: order.Clone(), createdAt: now, updatedAt: now}
	initial.OrderID = order.ID
	state.append(initial)
	r.orders[order.ID] = state
	r.locks[order.ID] = &sync.Mutex{}
	return state.projection(), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*ports.OrderProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return state.projection(), nil
}

// Mutate holds the order's lock for the whole read-modify-write cycle.
func (r *Repository) Mutate(_ context.Context, id string, fn ports.MutateFunc) (*ports.OrderProjection, error) {
	r.mu.RLock()
	lock, ok := r.locks[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ports.ErrNotFound
	}
	lock.Lock()
	defer lock.Unlock()

	r.mu.RLock()
	working := r.orders[id].order.Clone()
	r.mu.RUnlock()

	entry, err := fn(working)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	state := r.orders[id]
	if entry == nil {
		return state.projection(), nil
	}
	state.order = working.Clone()
	entry.OrderID = id
	state.append(*entry)
	if now := r.now().UTC(); now.After(state.updatedAt) {
		state.updatedAt = now
	}
	return state.projection(), nil
}

func (r *Repository) Append(_ context.Context, entry domain.TrackingEntry) (*domain.TrackingEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.orders[entry.OrderID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	stored := state.append(entry)
	return &stored, nil
}

func (r *Repository) ListFor(_ context.Context, orderID string, order domain.SortOrder) ([]domain.TrackingEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.orders[orderID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	entries := make([]domain.TrackingEntry, 0, len(state.entries))
	for _, e := range state.entries {
		entries = append(entries, e.Clone())
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if order == domain.SortAscending {
			return entries[i].Before(entries[j])
		}
		return entries[j].Before(entries[i])
	})
	return entries, nil
}

// append assigns the next sequence and keeps timestamps from going backwards.
func (s *orderState) append(entry domain.TrackingEntry) domain.TrackingEntry {
	s.nextSeq++
	entry.Sequence = s.nextSeq
	entry.Timestamp = entry.Timestamp.UTC()
	if n := len(s.entries); n > 0 && entry.Timestamp.Before(s.entries[n-1].Timestamp) {
		entry.Timestamp = s.entries[n-1].Timestamp
	}
	s.entries = append(s.entries, entry.Clone())
	return entry
}

func (s *orderState) projection() *ports.OrderProjection {
	return projection.New(s.order.Clone(), s.createdAt, s.updatedAt)
}
