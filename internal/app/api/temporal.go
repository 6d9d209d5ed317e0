package api

import (
	"errors"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	platformobservability "github.com/Apurer/fulfillment-api/internal/platform/observability"
)

// ErrTemporalDisabled is returned by ConnectTemporal when TEMPORAL_DISABLED is set.
var ErrTemporalDisabled = errors.New("temporal disabled via TEMPORAL_DISABLED")

// ConnectTemporal dials Temporal with tracing and structured logging attached.
func ConnectTemporal(cfg Config, instruments *platformobservability.Instruments, component string) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, ErrTemporalDisabled
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: instruments.Tracer(component),
	})
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(instruments.LoggerOrDefault()),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}
