package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	ordertypes "github.com/Apurer/fulfillment-api/internal/domains/orders/application/types"
	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
	"github.com/Apurer/fulfillment-api/internal/domains/orders/ports"
)

// Service is the transition authority of the orders bounded context.
type Service struct {
	orders    ports.Repository
	tracking  ports.TrackingLog
	drivers   ports.DriverDirectory
	publisher ports.EventPublisher
	cache     ports.SnapshotCache
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures optional collaborators.
type Option func(*Service)

// WithPublisher announces placed orders and applied transitions.
func WithPublisher(publisher ports.EventPublisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

// WithSnapshotCache serves PollStatus from a cache kept fresh by transitions.
func WithSnapshotCache(cache ports.SnapshotCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithLogger reports failures of best-effort side effects.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for milestones and tracking entries.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the orders service with its dependencies.
func NewService(orders ports.Repository, tracking ports.TrackingLog, drivers ports.DriverDirectory, opts ...Option) *Service {
	s := &Service{
		orders:   orders,
		tracking: tracking,
		drivers:  drivers,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// PlaceOrder creates a PENDING order with its initial tracking entry.
func (s *Service) PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*ordertypes.OrderProjection, error) {
	now := s.clock()
	order, err := domain.NewOrder(input.CustomerID, input.Items, input.Total, input.DeliveryAddress, now)
	if err != nil {
		return nil, mapError(err)
	}
	initial := domain.NewTrackingEntry(order.ID, domain.StatusPending, "", domain.Coordinates{}, now)
	created, err := s.orders.Create(ctx, order, initial)
	if err != nil {
		return nil, mapError(err)
	}
	s.refreshSnapshot(ctx, created)
	s.publish(ctx, domain.OrderPlaced{
		BaseEvent:  domain.BaseEvent{Timestamp: now},
		OrderID:    created.Entity.ID,
		Number:     created.Entity.Number,
		CustomerID: created.Entity.CustomerID,
		Total:      created.Entity.Total,
	})
	return created, nil
}

// UpdateStatus moves an order along the transition table on behalf of the actor.
func (s *Service) UpdateStatus(ctx context.Context, input ordertypes.UpdateStatusInput) (*ordertypes.OrderProjection, error) {
	orderID := strings.TrimSpace(input.OrderID)
	if orderID == "" {
		return nil, mapError(domain.ErrEmptyOrderID)
	}
	status, err := domain.ParseStatus(input.Status)
	if err != nil {
		return nil, mapError(err)
	}
	driverID := strings.TrimSpace(input.DriverID)
	if status == domain.StatusOutForDelivery && driverID == "" {
		return nil, mapError(domain.ErrMissingDriver)
	}
	coords := domain.Coordinates{Latitude: input.Latitude, Longitude: input.Longitude}
	if err := coords.Validate(); err != nil {
		return nil, mapError(err)
	}
	if !input.Actor.CanMutate() {
		return nil, fmt.Errorf("%w: caller holds no role that may change order status", ErrForbidden)
	}
	cmd := transitionCommand{
		orderID:  orderID,
		status:   status,
		actor:    input.Actor,
		notes:    input.Notes,
		driverID: driverID,
		coords:   coords,
	}
	if status == domain.StatusOutForDelivery {
		driver, err := s.drivers.GetByID(ctx, driverID)
		switch {
		case errors.Is(err, ports.ErrDriverNotFound):
			cmd.driverErr = err
		case err != nil:
			return nil, mapError(err)
		default:
			cmd.driverErr = driver.EnsureActive()
		}
	}
	return s.transition(ctx, cmd)
}

// AssignDriver binds an active driver and dispatches a READY order.
func (s *Service) AssignDriver(ctx context.Context, input ordertypes.AssignDriverInput) (*ordertypes.OrderProjection, error) {
	orderID := strings.TrimSpace(input.OrderID)
	if orderID == "" {
		return nil, mapError(domain.ErrEmptyOrderID)
	}
	driverID := strings.TrimSpace(input.DriverID)
	if driverID == "" {
		return nil, mapError(domain.ErrMissingDriver)
	}
	if !input.Actor.CanMutate() {
		return nil, fmt.Errorf("%w: caller holds no role that may assign drivers", ErrForbidden)
	}
	driver, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		return nil, mapError(err)
	}
	if err := driver.EnsureActive(); err != nil {
		return nil, mapError(err)
	}
	return s.transition(ctx, transitionCommand{
		orderID:  orderID,
		status:   domain.StatusOutForDelivery,
		actor:    input.Actor,
		notes:    input.Notes,
		driverID: driver.ID,
	})
}

// GetOrder loads an order with its tracking history newest first.
func (s *Service) GetOrder(ctx context.Context, input ordertypes.OrderIdentifier) (*ordertypes.OrderDetails, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, mapError(domain.ErrEmptyOrderID)
	}
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	entries, err := s.tracking.ListFor(ctx, id, domain.SortDescending)
	if err != nil {
		return nil, mapError(err)
	}
	return &ordertypes.OrderDetails{Order: order, Tracking: entries}, nil
}

// ListTrackingHistory returns the raw tracking log in the requested direction.
func (s *Service) ListTrackingHistory(ctx context.Context, input ordertypes.TrackingQuery) ([]domain.TrackingEntry, error) {
	id := strings.TrimSpace(input.OrderID)
	if id == "" {
		return nil, mapError(domain.ErrEmptyOrderID)
	}
	order := input.Order
	if order != domain.SortAscending {
		order = domain.SortDescending
	}
	entries, err := s.tracking.ListFor(ctx, id, order)
	if err != nil {
		return nil, mapError(err)
	}
	return entries, nil
}

// PollStatus serves the side-effect free status view consumed by reconcilers.
func (s *Service) PollStatus(ctx context.Context, input ordertypes.OrderIdentifier) (*domain.StatusSnapshot, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, mapError(domain.ErrEmptyOrderID)
	}
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.WarnContext(ctx, "snapshot cache read failed", slog.String("order.id", id), slog.String("error", err.Error()))
		} else if ok {
			return cached, nil
		}
	}
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	snapshot := s.refreshSnapshot(ctx, order)
	return &snapshot, nil
}

// RegisterDriver adds or replaces a driver. Only admins manage the directory.
func (s *Service) RegisterDriver(ctx context.Context, input ordertypes.RegisterDriverInput) (*domain.Driver, error) {
	if !input.Actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins may register drivers", ErrForbidden)
	}
	driver, err := domain.NewDriver(input.ID, input.Name, input.Phone, input.Active)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.drivers.Save(ctx, driver)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// ListDrivers returns the driver directory.
func (s *Service) ListDrivers(ctx context.Context) ([]*domain.Driver, error) {
	drivers, err := s.drivers.List(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return drivers, nil
}

type transitionCommand struct {
	orderID  string
	status   domain.Status
	actor    domain.Actor
	notes    string
	driverID string
	coords   domain.Coordinates
	// driverErr is reported only once the edge itself has been authorised.
	driverErr error
}

func (s *Service) transition(ctx context.Context, cmd transitionCommand) (*ordertypes.OrderProjection, error) {
	var (
		previous domain.Status
		entry    *domain.TrackingEntry
	)
	result, err := s.orders.Mutate(ctx, cmd.orderID, func(order *domain.Order) (*domain.TrackingEntry, error) {
		if order.Status == cmd.status {
			if !domain.CanEnter(order, cmd.status, cmd.actor) {
				return nil, domain.ErrRoleNotPermitted
			}
			return nil, nil
		}
		if err := domain.Authorize(order, cmd.status, cmd.actor); err != nil {
			return nil, err
		}
		if cmd.driverErr != nil {
			return nil, cmd.driverErr
		}
		now := s.clock()
		previous = order.Status
		if err := order.Apply(cmd.status, cmd.driverID, now); err != nil {
			return nil, err
		}
		next := domain.NewTrackingEntry(order.ID, cmd.status, cmd.notes, cmd.coords, now)
		entry = &next
		return entry, nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	if entry == nil {
		return result, nil
	}
	s.refreshSnapshot(ctx, result)
	s.publish(ctx, domain.OrderStatusChanged{
		BaseEvent:  domain.BaseEvent{Timestamp: entry.Timestamp},
		OrderID:    result.Entity.ID,
		Number:     result.Entity.Number,
		CustomerID: result.Entity.CustomerID,
		DriverID:   result.Entity.DriverID,
		FromStatus: previous,
		ToStatus:   result.Entity.Status,
		ActorID:    cmd.actor.ID,
		Notes:      entry.Notes,
	})
	return result, nil
}

func (s *Service) refreshSnapshot(ctx context.Context, order *ordertypes.OrderProjection) domain.StatusSnapshot {
	snapshot := order.Entity.Snapshot(order.Metadata.UpdatedAt)
	if s.cache == nil {
		return snapshot
	}
	if err := s.cache.Set(ctx, snapshot); err != nil {
		s.logger.WarnContext(ctx, "snapshot cache write failed", slog.String("order.id", snapshot.OrderID), slog.String("error", err.Error()))
		if err := s.cache.Invalidate(ctx, snapshot.OrderID); err != nil {
			s.logger.WarnContext(ctx, "snapshot cache invalidation failed", slog.String("order.id", snapshot.OrderID), slog.String("error", err.Error()))
		}
	}
	return snapshot
}

func (s *Service) publish(ctx context.Context, event domain.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish order event", slog.String("event", event.EventName()), slog.String("error", err.Error()))
	}
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

var _ ports.Service = (*Service)(nil)
