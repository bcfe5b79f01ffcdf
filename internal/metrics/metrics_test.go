package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetrics_LabelsByRoutePattern(t *testing.T) {
	reg := NewRegistry()
	m := NewHTTPMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/dishes/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/dishes", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("[]"))
	})

	for _, path := range []string{"/dishes/a", "/dishes/b", "/dishes", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/dishes/{id}", "GET", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/dishes", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(unmatchedRoute, "GET", "404")))
}

func TestDishMetrics_ObserveCall(t *testing.T) {
	reg := NewRegistry()
	m := NewDishMetrics(reg)

	m.ObserveCall("get_dish", 5*time.Millisecond)
	m.ObserveCall("get_dish", 5*time.Millisecond)
	m.ObserveCall("list_dishes", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.calls.WithLabelValues("get_dish")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.calls.WithLabelValues("list_dishes")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestGuardMetrics(t *testing.T) {
	reg := NewRegistry()
	m := NewGuardMetrics(reg)

	m.ObserveLogin("success")
	m.ObserveLogin("locked")
	m.ObserveLogin("locked")
	m.ObserveSweep(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.attempts.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.attempts.WithLabelValues("locked")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.swept))
}

func TestHandler_ExposesRegistry(t *testing.T) {
	reg := NewRegistry()
	NewGuardMetrics(reg).ObserveLogin("success")

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `login_guard_attempts_total{outcome="success"} 1`))
	assert.Contains(t, body, "go_goroutines")
}
