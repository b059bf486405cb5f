package rpc

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/sss-org/sss-engine/logger"
	"github.com/sss-org/sss-engine/observability"
	"github.com/sss-org/sss-engine/types"
)

type httpMetrics struct {
	calls    metric.Int64Counter
	duration metric.Float64Histogram
	log      *slog.Logger
}

/*
instrumentHTTP returns middleware counting the calls of the endpoints and
recording how long serving them took. Both metrics have the route template,
response status code and, for the rejected requests, the error kind as
attributes. When the instruments can't be created requests are served
without instrumentation.
*/
func instrumentHTTP(mtr metric.Meter, log *slog.Logger) mux.MiddlewareFunc {
	m, err := newHTTPMetrics(mtr, log)
	if err != nil {
		log.Error("creating REST API metrics", logger.Error(err))
		return func(next http.Handler) http.Handler { return next }
	}
	return m.middleware
}

func newHTTPMetrics(mtr metric.Meter, log *slog.Logger) (m *httpMetrics, err error) {
	m = &httpMetrics{log: log}
	if m.calls, err = mtr.Int64Counter("calls", metric.WithDescription("How many times the endpoint has been called")); err != nil {
		return nil, err
	}
	m.duration, err = mtr.Float64Histogram("duration",
		metric.WithDescription("How long it took to serve the request"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(100e-6, 200e-6, 400e-6, 800e-6, 0.0016, 0.01, 0.05, 0.1))
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *httpMetrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, req)

		attr := append(m.routeAttr(req), semconv.HTTPResponseStatusCode(rw.status))
		if rw.kind != "" {
			attr = append(attr, observability.KindKey.String(string(rw.kind)))
		}
		set := metric.WithAttributeSet(attribute.NewSet(attr...))
		m.calls.Add(req.Context(), 1, set)
		m.duration.Record(req.Context(), time.Since(start).Seconds(), set)
	})
}

func (m *httpMetrics) routeAttr(req *http.Request) []attribute.KeyValue {
	route := mux.CurrentRoute(req)
	if route == nil {
		return nil
	}
	path, err := route.GetPathTemplate()
	if err != nil {
		m.log.WarnContext(req.Context(), "reading route path", logger.Error(err))
		return nil
	}
	return []attribute.KeyValue{semconv.HTTPRoute(path)}
}

// statusRecorder remembers the status code of the response and the error kind of the rejected request.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	kind        types.ErrorKind
	wroteHeader bool
}

func (rw *statusRecorder) WriteHeader(status int) {
	if !rw.wroteHeader {
		rw.status, rw.wroteHeader = status, true
	}
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

func (rw *statusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func (rw *statusRecorder) setErrorKind(kind types.ErrorKind) {
	rw.kind = kind
}
