package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	orderapp "github.com/Apurer/fulfillment-api/internal/domains/orders/application"
	ordertypes "github.com/Apurer/fulfillment-api/internal/domains/orders/application/types"
	orderdomain "github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/fulfillment-api/internal/domains/orders/ports"
)

const tracerName = "github.com/Apurer/fulfillment-api/internal/domains/orders/adapters/observability/service"

// Service decorates the orders service with tracing, logging, and metrics.
type Service struct {
	inner   orderports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core orders service.
func New(inner orderports.Service, opts ...Option) orderports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*ordertypes.OrderProjection, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.PlaceOrder",
		trace.WithAttributes(attribute.String("order.customer_id", input.CustomerID), attribute.Int("order.items", len(input.Items))))
	defer span.End()

	s.logInfo(ctx, "placing order", slog.String("order.customer_id", input.CustomerID))
	result, err := s.inner.PlaceOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to place order", slog.String("order.customer_id", input.CustomerID))
	}
	span.SetAttributes(attribute.String("order.id", result.Entity.ID))
	s.metrics.recordPlaced(ctx)
	s.logInfo(ctx, "order placed", slog.String("order.id", result.Entity.ID), slog.String("order.number", result.Entity.Number))
	return result, nil
}

func (s *Service) UpdateStatus(ctx context.Context, input ordertypes.UpdateStatusInput) (*ordertypes.OrderProjection, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateStatus",
		trace.WithAttributes(
			attribute.String("order.id", input.OrderID),
			attribute.String("order.requested_status", input.Status),
			attribute.StringSlice("actor.roles", input.Actor.Roles.Strings()),
		))
	defer span.End()

	s.logInfo(ctx, "updating order status",
		slog.String("order.id", input.OrderID),
		slog.String("status", input.Status),
		slog.String("actor.id", input.Actor.ID))
	result, err := s.inner.UpdateStatus(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, input.Status, err)
		return nil, s.handleError(ctx, span, err, "order status update rejected",
			slog.String("order.id", input.OrderID), slog.String("status", input.Status))
	}
	s.metrics.recordTransition(ctx, result.Entity.Status)
	s.logInfo(ctx, "order status updated", slog.String("order.id", result.Entity.ID), slog.String("status", string(result.Entity.Status)))
	return result, nil
}

func (s *Service) AssignDriver(ctx context.Context, input ordertypes.AssignDriverInput) (*ordertypes.OrderProjection, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.AssignDriver",
		trace.WithAttributes(attribute.String("order.id", input.OrderID), attribute.String("driver.id", input.DriverID)))
	defer span.End()

	s.logInfo(ctx, "assigning driver", slog.String("order.id", input.OrderID), slog.String("driver.id", input.DriverID))
	result, err := s.inner.AssignDriver(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, string(orderdomain.StatusOutForDelivery), err)
		return nil, s.handleError(ctx, span, err, "driver assignment rejected",
			slog.String("order.id", input.OrderID), slog.String("driver.id", input.DriverID))
	}
	s.metrics.recordTransition(ctx, result.Entity.Status)
	s.logInfo(ctx, "driver assigned", slog.String("order.id", result.Entity.ID), slog.String("driver.id", result.Entity.DriverID))
	return result, nil
}

func (s *Service) GetOrder(ctx context.Context, input ordertypes.OrderIdentifier) (*ordertypes.OrderDetails, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrder", trace.WithAttributes(attribute.String("order.id", input.ID)))
	defer span.End()

	result, err := s.inner.GetOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.String("order.id", input.ID))
	}
	span.SetAttributes(attribute.Int("order.tracking.count", len(result.Tracking)))
	return result, nil
}

func (s *Service) ListTrackingHistory(ctx context.Context, input ordertypes.TrackingQuery) ([]orderdomain.TrackingEntry, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListTrackingHistory",
		trace.WithAttributes(attribute.String("order.id", input.OrderID), attribute.String("tracking.order", string(input.Order))))
	defer span.End()

	result, err := s.inner.ListTrackingHistory(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list tracking history", slog.String("order.id", input.OrderID))
	}
	span.SetAttributes(attribute.Int("order.tracking.count", len(result)))
	return result, nil
}

// PollStatus is called at high frequency, so it only traces.
func (s *Service) PollStatus(ctx context.Context, input ordertypes.OrderIdentifier) (*orderdomain.StatusSnapshot, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.PollStatus", trace.WithAttributes(attribute.String("order.id", input.ID)))
	defer span.End()

	result, err := s.inner.PollStatus(ctx, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("order.status", string(result.Status)))
	return result, nil
}

func (s *Service) RegisterDriver(ctx context.Context, input ordertypes.RegisterDriverInput) (*orderdomain.Driver, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.RegisterDriver", trace.WithAttributes(attribute.String("driver.name", input.Name)))
	defer span.End()

	s.logInfo(ctx, "registering driver", slog.String("driver.name", input.Name))
	result, err := s.inner.RegisterDriver(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to register driver", slog.String("driver.name", input.Name))
	}
	s.logInfo(ctx, "driver registered", slog.String("driver.id", result.ID), slog.Bool("driver.active", result.Active))
	return result, nil
}

func (s *Service) ListDrivers(ctx context.Context) ([]*orderdomain.Driver, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListDrivers")
	defer span.End()

	result, err := s.inner.ListDrivers(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list drivers")
	}
	span.SetAttributes(attribute.Int("driver.count", len(result)))
	return result, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	level := slog.LevelError
	if kind := orderapp.KindOf(err); kind != orderapp.KindInternal {
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("error.kind", string(kind)))
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, level, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	transitions metric.Int64Counter
	rejected    metric.Int64Counter
	placed      metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	transitions, _ := m.Int64Counter("orders.service.transitions", metric.WithDescription("Number of applied order status transitions"))
	rejected, _ := m.Int64Counter("orders.service.transitions_rejected", metric.WithDescription("Number of rejected order status transitions"))
	placed, _ := m.Int64Counter("orders.service.orders_placed", metric.WithDescription("Number of orders placed"))
	return serviceMetrics{transitions: transitions, rejected: rejected, placed: placed}
}

func (m serviceMetrics) recordTransition(ctx context.Context, status orderdomain.Status) {
	if m.transitions != nil {
		m.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("order.status", string(status))))
	}
}

func (m serviceMetrics) recordRejected(ctx context.Context, requested string, err error) {
	if m.rejected != nil {
		m.rejected.Add(ctx, 1, metric.WithAttributes(
			attribute.String("order.requested_status", requested),
			attribute.String("error.kind", string(orderapp.KindOf(err))),
		))
	}
}

func (m serviceMetrics) recordPlaced(ctx context.Context) {
	if m.placed != nil {
		m.placed.Add(ctx, 1)
	}
}

var _ orderports.Service = (*Service)(nil)
