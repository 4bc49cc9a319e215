package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/stock-ledger/internal/handlers"
	"github.com/ammerola/stock-ledger/internal/pkg/config"
	"github.com/ammerola/stock-ledger/internal/pkg/metrics"
	"github.com/ammerola/stock-ledger/test/helpers"
)

type fakeDB struct{ err error }

func (f fakeDB) Ping(context.Context) error { return f.err }

func (f fakeDB) Health(context.Context) map[string]interface{} {
	return map[string]interface{}{"total_conns": 4}
}

type fakeInspector struct {
	servers []*asynq.ServerInfo
	err     error
}

func (f fakeInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	if queue == "default" {
		return nil, errors.New("queue not found")
	}
	return &asynq.QueueInfo{Queue: queue, Size: 2, Pending: 2}, nil
}

func (f fakeInspector) Servers() ([]*asynq.ServerInfo, error) {
	return f.servers, f.err
}

func healthMux(t *testing.T, db handlers.DatabaseChecker, withRedis bool) (*http.ServeMux, *helpers.TestRedis) {
	t.Helper()
	cfg := helpers.LoadTestConfig()

	var tr *helpers.TestRedis
	h := handlers.NewHealthHandler(db, nil, nil, cfg, helpers.TestLogger())
	if withRedis {
		tr = helpers.SetupTestRedis(t)
		h = handlers.NewHealthHandler(db, tr.Client, nil, cfg, helpers.TestLogger())
	}

	mux := http.NewServeMux()
	(&handlers.Router{Health: h, Metrics: metrics.New().Handler()}).Register(mux, config.ServerConfig{
		EnableHealthCheck: true,
		EnableMetrics:     true,
	})
	return mux, tr
}

func TestHealthHandler_Health(t *testing.T) {
	tests := []struct {
		name           string
		db             handlers.DatabaseChecker
		withRedis      bool
		expectedStatus int
		expectedState  string
		services       []string
	}{
		{name: "memory_store_only", expectedStatus: http.StatusOK, expectedState: "healthy"},
		{
			name: "postgres_and_redis", db: fakeDB{}, withRedis: true,
			expectedStatus: http.StatusOK, expectedState: "healthy", services: []string{"database", "redis"},
		},
		{
			name: "database_down", db: fakeDB{err: errors.New("connection refused")},
			expectedStatus: http.StatusServiceUnavailable, expectedState: "unhealthy", services: []string{"database"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux, _ := healthMux(t, tt.db, tt.withRedis)

			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			require.Equal(t, tt.expectedStatus, w.Code)

			var got handlers.HealthStatus
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, tt.expectedState, got.Status)
			assert.Equal(t, "memory", got.Store)
			assert.Len(t, got.Services, len(tt.services))
			for _, s := range tt.services {
				assert.Contains(t, got.Services, s)
			}
		})
	}
}

func TestHealthHandler_DegradedDependencies(t *testing.T) {
	t.Run("cache_outage", func(t *testing.T) {
		mux, tr := healthMux(t, fakeDB{}, true)
		tr.Server.Close()

		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var got handlers.HealthStatus
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "degraded", got.Status)
		assert.Equal(t, "unhealthy", got.Services["redis"].Status)
		assert.Equal(t, "healthy", got.Services["database"].Status)
	})

	tests := []struct {
		name      string
		sweepMode string
		inspector fakeInspector
		wantState string
		wantMsg   string
	}{
		{
			name:      "worker_running",
			sweepMode: "worker",
			inspector: fakeInspector{servers: []*asynq.ServerInfo{{ActiveWorkers: []*asynq.WorkerInfo{{}, {}}}}},
			wantState: "healthy",
		},
		{
			name:      "no_worker_stalls_expiry",
			sweepMode: "worker",
			wantState: "degraded",
			wantMsg:   "reservation expiry is stalled",
		},
		{
			name:      "no_worker_with_inprocess_sweep",
			sweepMode: "inprocess",
			wantState: "healthy",
		},
		{
			name:      "broker_unreachable",
			sweepMode: "worker",
			inspector: fakeInspector{err: errors.New("dial tcp: connection refused")},
			wantState: "degraded",
			wantMsg:   "failed to list workers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := helpers.LoadTestConfig()
			cfg.Ledger.SweepMode = tt.sweepMode
			cfg.Asynq.Queues = map[string]int{"critical": 6, "default": 3}
			h := handlers.NewHealthHandler(nil, nil, tt.inspector, cfg, helpers.TestLogger())

			w := httptest.NewRecorder()
			h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			require.Equal(t, http.StatusOK, w.Code)

			var got handlers.HealthStatus
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, tt.wantState, got.Status)
			assert.Contains(t, got.Services["asynq"].Message, tt.wantMsg)
			if tt.inspector.err == nil {
				queues, ok := got.Services["asynq"].Details["queues"].(map[string]interface{})
				require.True(t, ok)
				assert.Len(t, queues, 2)
			}
		})
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	t.Run("redis_outage_does_not_block_readiness", func(t *testing.T) {
		mux, tr := healthMux(t, fakeDB{}, true)
		tr.Server.Close()

		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"redis":"unavailable"`)
	})

	t.Run("database_down", func(t *testing.T) {
		mux, _ := healthMux(t, fakeDB{err: errors.New("timeout")}, false)

		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestRouter_Metrics(t *testing.T) {
	mux, _ := healthMux(t, nil, false)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
