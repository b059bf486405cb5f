package observability

import (
	"log/slog"
	"net/http"
	"testing"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	testlogr "github.com/sss-org/sss-engine/internal/testutils/logger"
)

/*
NOPObservability creates observability implementation where everything is no-op.
Use it for tests for which it absolutely doesn't make sense to create any logs or metrics.
*/
func NOPObservability() *Observability {
	return &Observability{
		mp:  noop.NewMeterProvider(),
		log: testlogr.NOP(),
	}
}

/*
Default creates observability which logs into test t output and doesn't
collect metrics.
*/
func Default(t testing.TB) *Observability {
	return &Observability{
		mp:  noop.NewMeterProvider(),
		log: testlogr.New(t),
	}
}

/*
WithMetrics creates observability which logs into test t output and collects
metrics into returned manual reader so that test can inspect them.
*/
func WithMetrics(t testing.TB) (*Observability, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	return &Observability{
		mp:  sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
		log: testlogr.New(t),
	}, reader
}

type Observability struct {
	mp  metric.MeterProvider
	log *slog.Logger
}

func (o *Observability) Logger() *slog.Logger { return o.log }

func (o *Observability) Meter(name string, options ...metric.MeterOption) metric.Meter {
	return o.mp.Meter(name, options...)
}

func (o *Observability) MetricsHandler() http.Handler { return nil }

func (o *Observability) Shutdown() error { return nil }
