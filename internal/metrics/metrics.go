package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const unmatchedRoute = "unmatched"

// NewRegistry returns a registry carrying the Go runtime and process collectors
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler exposes reg in the Prometheus text format
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// HTTPMetrics counts and times requests per chi route pattern
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"endpoint", "method", "http_status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint", "method"}),
	}
	reg.MustRegister(m.requests, m.latency)
	return m
}

// Middleware labels by route pattern rather than raw path so dish IDs do
// not explode label cardinality.
func (m *HTTPMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		endpoint := unmatchedRoute
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				endpoint = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.latency.WithLabelValues(endpoint, r.Method).Observe(time.Since(start).Seconds())
		m.requests.WithLabelValues(endpoint, r.Method, strconv.Itoa(status)).Inc()
	})
}

// DishMetrics instruments the dish service
type DishMetrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewDishMetrics(reg prometheus.Registerer) *DishMetrics {
	m := &DishMetrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dish_service_requests_total",
			Help: "Dish service calls by method.",
		}, []string{"method"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dish_service_request_duration_seconds",
			Help:    "Dish service call latency by method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
	reg.MustRegister(m.calls, m.duration)
	return m
}

func (m *DishMetrics) ObserveCall(method string, elapsed time.Duration) {
	m.calls.WithLabelValues(method).Inc()
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// GuardMetrics counts login attempts by outcome
type GuardMetrics struct {
	attempts *prometheus.CounterVec
	swept    prometheus.Counter
}

func NewGuardMetrics(reg prometheus.Registerer) *GuardMetrics {
	m := &GuardMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "login_guard_attempts_total",
			Help: "Authentication attempts by outcome.",
		}, []string{"outcome"}),
		swept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "login_guard_swept_records_total",
			Help: "Expired lockout records removed by the background sweeper.",
		}),
	}
	reg.MustRegister(m.attempts, m.swept)
	return m
}

func (m *GuardMetrics) ObserveLogin(outcome string) {
	m.attempts.WithLabelValues(outcome).Inc()
}

func (m *GuardMetrics) ObserveSweep(removed int64) {
	m.swept.Add(float64(removed))
}
