package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr_portal/internal/storage"
)

func newTestMetrics() *Metrics {
	cfg := DefaultMetricsConfig("test")
	cfg.Registry = NewRegistry()
	return NewMetrics(cfg)
}

func TestMetrics_ShellEvents(t *testing.T) {
	m := newTestMetrics()

	m.SidebarToggled(true)
	m.SidebarToggled(true)
	m.SidebarToggled(false)
	m.LoggedOut(nil)
	m.LoggedOut(errors.New("boom"))
	m.LoggedOut(&storage.StoreError{Op: "delete", Err: storage.ErrClosed})
	m.UnmatchedRoute("/nowhere")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.sidebarToggles.WithLabelValues("collapsed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sidebarToggles.WithLabelValues("expanded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.logouts.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.logouts.WithLabelValues("store_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.logouts.WithLabelValues("store_closed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.unmatchedRoutes))
}

func TestMetrics_MiddlewareUsesRoutePattern(t *testing.T) {
	m := newTestMetrics()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := m.Middleware(mux)

	for _, p := range []string{"/items/1", "/items/2", "/metrics"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "GET /items/{id}", "418")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.requestsTotal), "skipped paths are not recorded")
}

func TestMetrics_Handler(t *testing.T) {
	m := newTestMetrics()
	m.UnmatchedRoute("/x")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_shell_unmatched_routes_total 1")
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]HealthCheck
		wantCode   int
		wantStatus HealthStatus
	}{
		{
			name:       "no checks",
			wantCode:   http.StatusOK,
			wantStatus: StatusHealthy,
		},
		{
			name: "degraded dependency",
			checks: map[string]HealthCheck{
				"redis": PingCheck(func(context.Context) error { return errors.New("down") }, StatusDegraded),
			},
			wantCode:   http.StatusOK,
			wantStatus: StatusDegraded,
		},
		{
			name: "failed dependency",
			checks: map[string]HealthCheck{
				"redis":    PingCheck(func(context.Context) error { return nil }, StatusDegraded),
				"database": PingCheck(func(context.Context) error { return errors.New("down") }, StatusUnhealthy),
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewChecker()
			for name, c := range tt.checks {
				checker.Register(name, c)
			}
			h := ReadinessHandler(&HealthConfig{Checks: checker, Version: "test"})

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			require.Equal(t, tt.wantCode, rec.Code)
			var body struct {
				Status HealthStatus           `json:"status"`
				Checks map[string]CheckResult `json:"checks"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Len(t, body.Checks, len(tt.checks))
		})
	}
}

func TestRunHealthCheck_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	res := runHealthCheck(ctx, func(ctx context.Context) (HealthStatus, string, error) {
		time.Sleep(200 * time.Millisecond)
		return StatusHealthy, "late", nil
	})
	assert.Equal(t, StatusUnhealthy, res.Status)
}

func TestLiveness(t *testing.T) {
	rec := httptest.NewRecorder()
	LivenessHandler(&HealthConfig{Version: "1.2.3"}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"version":"1.2.3"`))
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "given")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "given", seen)
}
