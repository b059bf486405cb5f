package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexp "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/instrumentation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

const (
	serviceName    = "sss-engine"
	serviceVersion = "0.1.0"
	// metric names exported by Prometheus get the prefix "sss_"
	metricsNamespace = "sss"
)

// Observability gives the engine components their meter and logger.
type Observability struct {
	mp       metric.MeterProvider
	log      *slog.Logger
	registry *prometheus.Registry // nil unless metrics are exported to Prometheus
	shutdown func(context.Context) error
}

/*
New creates observability implementation with given metrics exporter
("" for no metrics, "stdout" or "prometheus") and logger.
*/
func New(metrics string, log *slog.Logger) (*Observability, error) {
	if log == nil {
		return nil, errors.New("logger is nil")
	}
	o := &Observability{mp: noop.NewMeterProvider(), log: log}
	if metrics == "" {
		return o, nil
	}

	reader, err := o.metricReader(metrics)
	if err != nil {
		return nil, fmt.Errorf("initialize meter provider: %w", err)
	}
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(serviceVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("creating OTEL resource: %w", err)
	}

	μs := time.Microsecond.Seconds()
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
		sdkmetric.WithView(
			histogramView("txsystem", "command.duration", 50*μs, 100*μs, 200*μs, 400*μs, 800*μs, 0.0016, 0.003, 0.01, 0.05),
			histogramView("rest_api", "duration", 100*μs, 200*μs, 400*μs, 800*μs, 0.0016, 0.01, 0.05, 0.1),
		),
	)
	o.mp, o.shutdown = mp, mp.Shutdown
	return o, nil
}

func (o *Observability) metricReader(exporter string) (sdkmetric.Reader, error) {
	switch exporter {
	case "stdout":
		exp, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("creating stdout exporter: %w", err)
		}
		return sdkmetric.NewPeriodicReader(exp), nil
	case "prometheus":
		o.registry = prometheus.NewRegistry()
		exp, err := promexp.New(promexp.WithRegisterer(o.registry), promexp.WithNamespace(metricsNamespace))
		if err != nil {
			return nil, fmt.Errorf("creating Prometheus exporter: %w", err)
		}
		return exp, nil
	default:
		return nil, fmt.Errorf("unsupported exporter %q", exporter)
	}
}

// histogramView sets the bucket boundaries (in seconds) of a duration histogram.
func histogramView(scope, name string, boundaries ...float64) sdkmetric.View {
	return sdkmetric.NewView(
		sdkmetric.Instrument{Name: name, Scope: instrumentation.Scope{Name: scope}},
		sdkmetric.Stream{Aggregation: sdkmetric.AggregationExplicitBucketHistogram{Boundaries: boundaries}},
	)
}

// Shutdown flushes the metrics, waits up to 5s for the exporter.
func (o *Observability) Shutdown() error {
	if o.shutdown == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.shutdown(ctx); err != nil {
		return fmt.Errorf("observability shutdown: %w", err)
	}
	return nil
}

func (o *Observability) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	return o.mp.Meter(name, opts...)
}

func (o *Observability) Logger() *slog.Logger {
	return o.log
}

// MetricsHandler returns handler for the Prometheus scrape endpoint, nil when
// Prometheus exporter is not in use.
func (o *Observability) MetricsHandler() http.Handler {
	if o.registry == nil {
		return nil
	}
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{MaxRequestsInFlight: 1})
}
