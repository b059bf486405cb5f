package rpc

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/otel/metric"

	"github.com/sss-org/sss-engine/types"
)

const (
	headerContentType = "Content-Type"
	applicationJson   = "application/json"

	metricsScopeRESTAPI = "rest_api"

	apiPathPrefix = "/api/v1"

	DefaultMaxBodyBytes int64 = 1 << 20
)

var (
	allowedCORSHeaders = []string{"Accept", "Accept-Language", "Content-Language", "Origin", headerContentType}
	allowedCORSMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
)

type (
	// Registrar registers new HTTP handlers for given router.
	Registrar interface {
		Register(r *mux.Router)
	}

	// RegistrarFunc type is an adapter to allow the use of ordinary function as Registrar.
	RegistrarFunc func(r *mux.Router)

	Observability interface {
		Meter(name string, opts ...metric.MeterOption) metric.Meter
		Logger() *slog.Logger
	}
)

/*
NewRESTServer returns HTTP server serving the endpoints of the registrars
under "/api/v1" path prefix. Request body is limited to "maxBodySize"
bytes, DefaultMaxBodyBytes when not positive.

The OpenAPI definition of the endpoints is served at "/api/v1/swagger/doc.json"
together with the Swagger UI.

Requests to unknown paths or with unsupported method get ErrorResponse
with kind InvalidInstruction.
*/
func NewRESTServer(addr string, maxBodySize int64, obs Observability, registrars ...Registrar) *http.Server {
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodyBytes
	}
	log := obs.Logger()

	r := mux.NewRouter()
	r.NotFoundHandler = routeError(http.StatusNotFound, log)
	r.MethodNotAllowedHandler = routeError(http.StatusMethodNotAllowed, log)

	api := r.PathPrefix(apiPathPrefix).Subrouter()
	api.Use(
		handlers.CORS(handlers.AllowedHeaders(allowedCORSHeaders), handlers.AllowedMethods(allowedCORSMethods)),
		instrumentHTTP(obs.Meter(metricsScopeRESTAPI), log),
	)
	for _, registrar := range registrars {
		registrar.Register(api)
	}
	api.PathPrefix(swaggerPath).Handler(httpSwagger.Handler(
		httpSwagger.URL(apiPathPrefix+swaggerPath+"doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	)).Methods(http.MethodGet)

	return &http.Server{
		Addr:              addr,
		ReadTimeout:       3 * time.Second,
		ReadHeaderTimeout: time.Second,
		WriteTimeout:      5 * time.Second,
		IdleTimeout:       30 * time.Second,
		Handler:           http.MaxBytesHandler(r, maxBodySize),
	}
}

func routeError(status int, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, status, &ErrorResponse{
			Kind:    types.ErrInvalidInstruction,
			Message: fmt.Sprintf("%s %s: %s", r.Method, r.URL.Path, http.StatusText(status)),
		}, log)
	})
}

func (f RegistrarFunc) Register(r *mux.Router) {
	f(r)
}
