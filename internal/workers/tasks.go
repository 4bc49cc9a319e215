// internal/workers/tasks.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/ammerola/stock-ledger/internal/core/ports"
	"github.com/ammerola/stock-ledger/internal/pkg/logger"
)

const (
	TypeReservationExpire = "reservation:expire"
	TypeStockSnapshot     = "stock:snapshot"
	TypeReservationsPurge = "reservations:purge"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// SnapshotPayload selects the warehouse to archive. A nil WarehouseID
// archives every active warehouse.
type SnapshotPayload struct {
	WarehouseID *uuid.UUID `json:"warehouse_id,omitempty"`
}

// SnapshotResult is written to the task result on completion
type SnapshotResult struct {
	WarehouseID    string `json:"warehouse_id,omitempty"`
	Location       string `json:"location,omitempty"`
	Archived       int    `json:"archived"`
	ProcessingTime string `json:"processing_time"`
}

// PurgePayload overrides the configured retention when set
type PurgePayload struct {
	RetentionSeconds int64 `json:"retention_seconds,omitempty"`
}

// NewSweepTask builds the expiry task. It is not retried since the next
// tick covers a failed one, and Unique keeps ticks from piling up.
func NewSweepTask(interval time.Duration) *asynq.Task {
	return asynq.NewTask(TypeReservationExpire, nil,
		asynq.Queue(QueueCritical),
		asynq.MaxRetry(0),
		asynq.Timeout(interval),
		asynq.Unique(interval))
}

// NewSnapshotTask builds a snapshot task for one warehouse, or for all of
// them when warehouseID is nil
func NewSnapshotTask(warehouseID *uuid.UUID, maxRetry int) (*asynq.Task, error) {
	payload, err := json.Marshal(SnapshotPayload{WarehouseID: warehouseID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot payload: %w", err)
	}
	return asynq.NewTask(TypeStockSnapshot, payload,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(maxRetry),
		asynq.Timeout(10*time.Minute)), nil
}

// NewPurgeTask builds the retention task
func NewPurgeTask(retention time.Duration) (*asynq.Task, error) {
	payload, err := json.Marshal(PurgePayload{RetentionSeconds: int64(retention / time.Second)})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal purge payload: %w", err)
	}
	return asynq.NewTask(TypeReservationsPurge, payload,
		asynq.Queue(QueueLow),
		asynq.MaxRetry(1),
		asynq.Timeout(30*time.Minute)), nil
}

// Enqueuer is the part of *asynq.Client the task client needs
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// TaskClient queues ledger tasks from the API process
type TaskClient struct {
	client   Enqueuer
	maxRetry int
	logger   *slog.Logger
}

var _ ports.SnapshotScheduler = (*TaskClient)(nil)

// NewTaskClient creates a task client
func NewTaskClient(client Enqueuer, maxRetry int, logger *slog.Logger) *TaskClient {
	return &TaskClient{
		client:   client,
		maxRetry: maxRetry,
		logger:   logger.With(slog.String("component", "task_client")),
	}
}

// EnqueueSnapshot queues an archive of one warehouse and returns the task id
func (c *TaskClient) EnqueueSnapshot(ctx context.Context, warehouseID uuid.UUID) (string, error) {
	task, err := NewSnapshotTask(&warehouseID, c.maxRetry)
	if err != nil {
		return "", err
	}

	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue snapshot: %w", err)
	}

	c.logger.InfoContext(ctx, "snapshot queued",
		slog.String("task_id", info.ID),
		slog.String("queue", info.Queue),
		slog.String("warehouse_id", warehouseID.String()))

	return info.ID, nil
}

// taskContext tags ctx with the asynq task id for log correlation
func taskContext(ctx context.Context) context.Context {
	if id, ok := asynq.GetTaskID(ctx); ok {
		return logger.WithValue(ctx, logger.ContextKeyTaskID, id)
	}
	return ctx
}
