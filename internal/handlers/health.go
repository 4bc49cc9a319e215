// internal/handlers/health.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/stock-ledger/internal/pkg/config"
)

// DatabaseChecker is the part of the database the probes use
type DatabaseChecker interface {
	Ping(ctx context.Context) error
	Health(ctx context.Context) map[string]interface{}
}

// QueueInspector is the part of the asynq inspector the probes use
type QueueInspector interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
	Servers() ([]*asynq.ServerInfo, error)
}

// Overall states. Only the ledger store is critical; the cache and the
// broker degrade the service without taking it down.
const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

// HealthHandler handles health check endpoints. A nil database means the
// ledger runs on the in-memory store; a nil redis or inspector is skipped.
type HealthHandler struct {
	db        DatabaseChecker
	redis     redis.UniversalClient
	asynq     QueueInspector
	config    *config.Config
	logger    *slog.Logger
	startTime time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(
	database DatabaseChecker,
	redisClient redis.UniversalClient,
	asynqInspector QueueInspector,
	cfg *config.Config,
	logger *slog.Logger,
) *HealthHandler {
	return &HealthHandler{
		db:        database,
		redis:     redisClient,
		asynq:     asynqInspector,
		config:    cfg,
		logger:    logger.With(slog.String("handler", "health")),
		startTime: time.Now(),
	}
}

// HealthStatus represents the health status of the application
type HealthStatus struct {
	Status      string                 `json:"status"`
	Version     string                 `json:"version"`
	Environment string                 `json:"environment"`
	Store       string                 `json:"store"`
	Uptime      string                 `json:"uptime"`
	Timestamp   time.Time              `json:"timestamp"`
	Services    map[string]ServiceInfo `json:"services"`
	System      SystemInfo             `json:"system"`
}

// ServiceInfo represents the status of a service dependency
type ServiceInfo struct {
	Status       string                 `json:"status"`
	Message      string                 `json:"message,omitempty"`
	ResponseTime string                 `json:"response_time,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// SystemInfo represents system-level information
type SystemInfo struct {
	GoVersion      string `json:"go_version"`
	NumGoroutines  int    `json:"num_goroutines"`
	NumCPU         int    `json:"num_cpu"`
	MemoryAllocMB  uint64 `json:"memory_alloc_mb"`
	MemorySysMB    uint64 `json:"memory_sys_mb"`
	GCPauseTotalMs uint64 `json:"gc_pause_total_ms"`
	NumGC          uint32 `json:"num_gc"`
}

// Health handles the /health endpoint. A failing store answers 503; a
// failing cache or broker reports degraded with 200.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := HealthStatus{
		Status:      statusHealthy,
		Version:     h.config.App.Version,
		Environment: h.config.App.Environment,
		Store:       h.config.Ledger.Store,
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Timestamp:   time.Now(),
		Services:    make(map[string]ServiceInfo),
		System:      h.getSystemInfo(),
	}

	if h.db != nil {
		info := h.probe(ctx, "database", h.checkDatabase)
		health.Services["database"] = info
		if info.Status != statusHealthy {
			health.Status = statusUnhealthy
		}
	}
	if h.redis != nil {
		health.Services["redis"] = h.probe(ctx, "redis", h.checkRedis)
	}
	if h.asynq != nil {
		health.Services["asynq"] = h.probe(ctx, "asynq", h.checkAsynq)
	}

	if health.Status == statusHealthy {
		for _, info := range health.Services {
			if info.Status != statusHealthy {
				health.Status = statusDegraded
				break
			}
		}
	}

	statusCode := http.StatusOK
	if health.Status == statusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	h.writeJSON(ctx, w, statusCode, health)
}

// Readiness handles the /ready endpoint. Only the store gates readiness.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ready := true
	details := map[string]string{"store": h.config.Ledger.Store}

	if h.db != nil {
		details["database"] = "ready"
		if err := h.db.Ping(ctx); err != nil {
			ready = false
			details["database"] = "not ready"
		}
	}
	if h.redis != nil {
		details["redis"] = "ready"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			details["redis"] = "unavailable"
		}
	}

	statusCode := http.StatusOK
	if !ready {
		statusCode = http.StatusServiceUnavailable
	}
	h.writeJSON(ctx, w, statusCode, map[string]interface{}{
		"ready":   ready,
		"details": details,
	})
}

func (h *HealthHandler) writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.ErrorContext(ctx, "failed to encode health response",
			slog.String("error", err.Error()))
	}
}

// probe times one dependency check and logs failures
func (h *HealthHandler) probe(ctx context.Context, name string, check func(context.Context) (map[string]interface{}, error)) ServiceInfo {
	start := time.Now()
	details, err := check(ctx)
	info := ServiceInfo{
		Status:       statusHealthy,
		ResponseTime: time.Since(start).String(),
		Details:      details,
	}
	if err != nil {
		info.Status = statusUnhealthy
		info.Message = err.Error()
		h.logger.WarnContext(ctx, name+" health check failed", slog.String("error", err.Error()))
	}
	return info
}

func (h *HealthHandler) checkDatabase(ctx context.Context) (map[string]interface{}, error) {
	if err := h.db.Ping(ctx); err != nil {
		return nil, err
	}
	return h.db.Health(ctx), nil
}

func (h *HealthHandler) checkRedis(ctx context.Context) (map[string]interface{}, error) {
	if err := h.redis.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	stats := h.redis.PoolStats()
	return map[string]interface{}{
		"total_conns": stats.TotalConns,
		"idle_conns":  stats.IdleConns,
		"timeouts":    stats.Timeouts,
	}, nil
}

// checkAsynq reports the ledger queues and whether a worker is consuming
// them. With the sweep owned by the worker, no worker means held
// reservations stop expiring.
func (h *HealthHandler) checkAsynq(_ context.Context) (map[string]interface{}, error) {
	servers, err := h.asynq.Servers()
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}

	queues := make(map[string]interface{}, len(h.config.Asynq.Queues))
	for name := range h.config.Asynq.Queues {
		q, err := h.asynq.GetQueueInfo(name)
		if err != nil {
			// asynq creates queues lazily on first enqueue
			queues[name] = map[string]interface{}{"size": 0}
			continue
		}
		queues[name] = map[string]interface{}{
			"size":     q.Size,
			"pending":  q.Pending,
			"active":   q.Active,
			"retry":    q.Retry,
			"archived": q.Archived,
			"paused":   q.Paused,
		}
	}

	active := 0
	for _, s := range servers {
		active += len(s.ActiveWorkers)
	}
	details := map[string]interface{}{
		"queues":         queues,
		"servers":        len(servers),
		"active_workers": active,
		"sweep_mode":     h.config.Ledger.SweepMode,
	}

	if len(servers) == 0 && h.config.Ledger.SweepMode == "worker" {
		return details, fmt.Errorf("no worker is consuming tasks; reservation expiry is stalled")
	}
	return details, nil
}

// getSystemInfo returns system-level information
func (h *HealthHandler) getSystemInfo() SystemInfo {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return SystemInfo{
		GoVersion:      runtime.Version(),
		NumGoroutines:  runtime.NumGoroutine(),
		NumCPU:         runtime.NumCPU(),
		MemoryAllocMB:  memStats.Alloc / 1024 / 1024,
		MemorySysMB:    memStats.Sys / 1024 / 1024,
		GCPauseTotalMs: memStats.PauseTotalNs / 1000 / 1000,
		NumGC:          memStats.NumGC,
	}
}
