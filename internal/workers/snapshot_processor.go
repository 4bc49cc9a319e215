// internal/workers/snapshot_processor.go
package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/ammerola/stock-ledger/internal/core/domain"
	"github.com/ammerola/stock-ledger/internal/pkg/logger"
	"github.com/ammerola/stock-ledger/internal/pkg/metrics"
)

// Snapshotter archives stock workbooks
type Snapshotter interface {
	Snapshot(ctx context.Context, warehouseID uuid.UUID) (string, error)
	SnapshotAll(ctx context.Context) (int, error)
}

// SnapshotProcessor handles stock snapshot tasks
type SnapshotProcessor struct {
	snapshots Snapshotter
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewSnapshotProcessor creates a new snapshot processor
func NewSnapshotProcessor(snapshots Snapshotter, m *metrics.Metrics, logger *slog.Logger) *SnapshotProcessor {
	return &SnapshotProcessor{
		snapshots: snapshots,
		metrics:   m,
		logger:    logger.With(slog.String("processor", "snapshot")),
	}
}

// ProcessSnapshot archives one warehouse or every active one
func (p *SnapshotProcessor) ProcessSnapshot(ctx context.Context, t *asynq.Task) (err error) {
	ctx = taskContext(ctx)
	start := time.Now()
	defer func() { p.metrics.ObserveTask(TypeStockSnapshot, err) }()

	var payload SnapshotPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	var result SnapshotResult
	if payload.WarehouseID != nil {
		ctx = logger.WithValue(ctx, logger.ContextKeyWarehouseID, payload.WarehouseID.String())
		location, err := p.snapshots.Snapshot(ctx, *payload.WarehouseID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("snapshot of %s: %v: %w", payload.WarehouseID, err, asynq.SkipRetry)
			}
			return fmt.Errorf("snapshot of %s: %w", payload.WarehouseID, err)
		}
		result = SnapshotResult{WarehouseID: payload.WarehouseID.String(), Location: location, Archived: 1}
	} else {
		n, err := p.snapshots.SnapshotAll(ctx)
		result.Archived = n
		if err != nil {
			p.logger.ErrorContext(ctx, "snapshot run incomplete",
				slog.Int("archived", n),
				slog.String("error", err.Error()))
			return fmt.Errorf("snapshot run archived %d warehouses: %w", n, err)
		}
	}
	result.ProcessingTime = time.Since(start).String()

	if w := t.ResultWriter(); w != nil {
		data, _ := json.Marshal(result)
		if _, err := w.Write(data); err != nil {
			p.logger.WarnContext(ctx, "failed to write task result", slog.String("error", err.Error()))
		}
	}

	p.logger.InfoContext(ctx, "snapshot task completed",
		slog.Int("archived", result.Archived),
		slog.String("processing_time", result.ProcessingTime))

	return nil
}
