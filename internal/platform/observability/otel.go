// Package observability configures slog and OpenTelemetry for the fulfillment processes.
package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Instruments bundles the runtime-wide observability dependencies.
type Instruments struct {
	Logger         *slog.Logger
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	// MetricReader collects the order counters on demand.
	MetricReader *sdkmetric.ManualReader
}

type settings struct {
	logWriter     io.Writer
	traceExporter string
	setGlobals    bool
}

// Option tweaks Init.
type Option func(*settings)

// WithLogWriter sends log records to w instead of stdout.
func WithLogWriter(w io.Writer) Option {
	return func(s *settings) { s.logWriter = w }
}

// WithTraceExporter selects otlp, stdout or none. It overrides OTEL_TRACES_EXPORTER.
func WithTraceExporter(name string) Option {
	return func(s *settings) { s.traceExporter = name }
}

// WithoutGlobals leaves the otel and slog globals untouched.
func WithoutGlobals() Option {
	return func(s *settings) { s.setGlobals = false }
}

// Init configures slog, OpenTelemetry tracing, and meters for the process.
// The returned shutdown flushes pending spans and must be called on exit.
func Init(ctx context.Context, serviceName string, opts ...Option) (*Instruments, func(context.Context) error, error) {
	cfg := settings{
		logWriter:     os.Stdout,
		traceExporter: strings.ToLower(envOrDefault("OTEL_TRACES_EXPORTER", "otlp")),
		setGlobals:    true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := newLogger(cfg.logWriter, serviceName)

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("deployment.environment", envOrDefault("ENVIRONMENT", "local")),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	tracerOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	spanExporter, err := newSpanExporter(ctx, cfg.traceExporter, logger)
	if err != nil {
		return nil, nil, err
	}
	if spanExporter != nil {
		tracerOpts = append(tracerOpts, sdktrace.WithBatcher(spanExporter))
	}
	tracerProvider := sdktrace.NewTracerProvider(tracerOpts...)

	reader := sdkmetric.NewManualReader()
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)

	if cfg.setGlobals {
		slog.SetDefault(logger)
		otel.SetTracerProvider(tracerProvider)
		otel.SetMeterProvider(meterProvider)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
	}

	instruments := &Instruments{
		Logger:         logger,
		TracerProvider: tracerProvider,
		MeterProvider:  meterProvider,
		MetricReader:   reader,
	}
	shutdown := func(ctx context.Context) error {
		return errors.Join(meterProvider.Shutdown(ctx), tracerProvider.Shutdown(ctx))
	}
	return instruments, shutdown, nil
}

// Tracer returns a named tracer from the configured provider.
func (i *Instruments) Tracer(name string) trace.Tracer {
	if i == nil || i.TracerProvider == nil {
		return otel.Tracer(name)
	}
	return i.TracerProvider.Tracer(name)
}

// Meter returns a named meter from the configured provider.
func (i *Instruments) Meter(name string) metric.Meter {
	if i == nil || i.MeterProvider == nil {
		return metricnoop.NewMeterProvider().Meter(name)
	}
	return i.MeterProvider.Meter(name)
}

// LoggerOrDefault returns the configured logger or a stdout text logger.
func (i *Instruments) LoggerOrDefault() *slog.Logger {
	if i != nil && i.Logger != nil {
		return i.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// newLogger honours LOG_LEVEL (debug|info|warn|error) and LOG_FORMAT (json|text).
func newLogger(w io.Writer, serviceName string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(os.Getenv("LOG_LEVEL")), AddSource: true}
	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(os.Getenv("LOG_FORMAT")), "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler).With(slog.String("service", serviceName))
}

func parseLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// newSpanExporter returns nil for "none". An OTLP exporter that cannot be built falls back to stdout.
func newSpanExporter(ctx context.Context, kind string, logger *slog.Logger) (sdktrace.SpanExporter, error) {
	switch kind {
	case "none":
		return nil, nil
	case "stdout":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	opts := []otlptracehttp.Option{}
	if endpoint := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")); endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(endpoint))
	}
	if os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") != "0" {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err == nil {
		return exporter, nil
	}
	logger.Warn("failed to initialize OTLP trace exporter, falling back to stdout", slog.String("error", err.Error()))
	return stdouttrace.New(stdouttrace.WithPrettyPrint())
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
