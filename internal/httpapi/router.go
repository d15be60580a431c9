// Package httpapi exposes the expression service over HTTP.
//
//	POST /api/solve       {"equation": "...", "variable": "x"}
//	POST /api/derivative  {"expression": "...", "variable": "x"}
//	POST /api/integrate   {"expression": "...", "variable": "x"}
//	GET  /healthz
//	GET  /metrics
//
// Success is 200 {"result": "..."}; every failure is 400 {"error": "..."}.
package httpapi

import (
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/njchilds90/symcalc/internal/metrics"
	"github.com/njchilds90/symcalc/internal/middleware"
	"github.com/njchilds90/symcalc/internal/service"
)

// DefaultMaxBodyBytes caps request bodies when Deps leaves it unset.
const DefaultMaxBodyBytes = 1 << 20 // 1 MiB

// Deps is everything the router needs. Service is required; the rest is
// optional.
type Deps struct {
	Service      *service.Service
	Logger       *logrus.Logger
	Metrics      *metrics.Metrics
	RateLimiter  *middleware.RateLimiter
	CORSOrigins  []string
	MaxBodyBytes int64
	Started      time.Time
}

// NewRouter builds the routing table and middleware chain.
func NewRouter(d Deps) *mux.Router {
	if d.Logger == nil {
		d.Logger = logrus.New()
		d.Logger.SetOutput(io.Discard)
	}
	if d.MaxBodyBytes <= 0 {
		d.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if d.Started.IsZero() {
		d.Started = time.Now()
	}
	h := &handlers{
		svc:          d.Service,
		logger:       d.Logger,
		maxBodyBytes: d.MaxBodyBytes,
		started:      d.Started,
	}

	// Preflight requests only reach a route when CORS is on to answer them.
	methods := []string{http.MethodPost}
	if len(d.CORSOrigins) > 0 {
		methods = append(methods, http.MethodOptions)
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/solve", h.solve).Methods(methods...)
	api.HandleFunc("/derivative", h.derivative).Methods(methods...)
	api.HandleFunc("/integrate", h.integrate).Methods(methods...)
	if d.RateLimiter != nil {
		api.Use(d.RateLimiter.Handler)
	}

	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics.Handler()).Methods(http.MethodGet)
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Use(middleware.Recovery(d.Logger), middleware.Tracing(d.Logger))
	if d.Metrics != nil {
		r.Use(middleware.Metrics(d.Metrics))
	}
	if len(d.CORSOrigins) > 0 {
		r.Use(middleware.CORS(d.CORSOrigins))
	}
	return r
}
