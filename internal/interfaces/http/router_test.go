package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complyops/deadline-engine/internal/domain/calendar"
	"github.com/complyops/deadline-engine/internal/infrastructure/monitoring/logging"
	"github.com/complyops/deadline-engine/internal/infrastructure/monitoring/prometheus"
	"github.com/complyops/deadline-engine/internal/interfaces/http/handlers"
	"github.com/complyops/deadline-engine/internal/interfaces/http/middleware"
)

func newTestRouter(t *testing.T, checkers ...handlers.HealthChecker) http.Handler {
	t.Helper()

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace: "deadline_engine",
	}, logging.NewNopLogger())
	require.NoError(t, err)

	engine := prometheus.NewEngineMetrics(collector)
	engine.RecordCalculation(150 * time.Millisecond)

	builder, err := calendar.NewBuilder([]int{1, 2, 3, 4, 5})
	require.NoError(t, err)
	cache := calendar.NewCache(builder, logging.NewNopLogger())
	cache.Calendar(calendar.JurisdictionEU, 2024)

	return NewRouter(RouterConfig{
		HealthHandler:    handlers.NewHealthHandler("test", checkers...),
		StatsHandler:     handlers.NewStatsHandler(engine, cache),
		Logger:           logging.NewNopLogger(),
		LoggingConfig:    middleware.DefaultLoggingConfig(),
		MetricsCollector: collector,
	})
}

func TestLivenessAlwaysOK(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body handlers.LivenessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "alive", body.Status)
	assert.Equal(t, "test", body.Version)
}

func TestReadinessHealthy(t *testing.T) {
	router := newTestRouter(t, handlers.CheckerFunc{
		ComponentName: "postgres",
		CheckFunc:     func(context.Context) error { return nil },
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body handlers.ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body.Status)
	assert.Equal(t, "healthy", body.Components["postgres"].Status)
}

func TestReadinessFailingDependency(t *testing.T) {
	router := newTestRouter(t,
		handlers.CheckerFunc{
			ComponentName: "postgres",
			CheckFunc:     func(context.Context) error { return nil },
		},
		handlers.CheckerFunc{
			ComponentName: "redis",
			CheckFunc:     func(context.Context) error { return errors.New("connection refused") },
		},
	)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body handlers.ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_ready", body.Status)
	assert.Equal(t, "unhealthy", body.Components["redis"].Status)
	assert.Equal(t, "healthy", body.Components["postgres"].Status)
}

func TestMetricsEndpointServesPrometheusText(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "deadline_engine_deadlines_calculated_total")
}

func TestStatsEndpointSnapshot(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body handlers.StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.Engine.DeadlinesCalculated)
	assert.InDelta(t, 150.0, body.Engine.AvgCalculationMillis, 0.01)
	assert.Equal(t, 1, body.Calendar.Entries)
	assert.Equal(t, int64(1), body.Calendar.Misses)
}
