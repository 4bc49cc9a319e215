// internal/workers/cleanup_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/stock-ledger/internal/pkg/metrics"
)

// ReservationPurger deletes settled reservations past retention
type ReservationPurger interface {
	Purge(ctx context.Context, retention time.Duration) (int64, error)
}

// CleanupProcessor handles retention tasks
type CleanupProcessor struct {
	purger    ReservationPurger
	retention time.Duration
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewCleanupProcessor creates a new cleanup processor
func NewCleanupProcessor(purger ReservationPurger, retention time.Duration, m *metrics.Metrics, logger *slog.Logger) *CleanupProcessor {
	return &CleanupProcessor{
		purger:    purger,
		retention: retention,
		metrics:   m,
		logger:    logger.With(slog.String("processor", "cleanup")),
	}
}

// PurgeReservations removes settled reservations older than the retention.
// Stock lines and the movement journal are never touched.
func (p *CleanupProcessor) PurgeReservations(ctx context.Context, t *asynq.Task) (err error) {
	ctx = taskContext(ctx)
	defer func() { p.metrics.ObserveTask(TypeReservationsPurge, err) }()

	retention := p.retention
	if len(t.Payload()) > 0 {
		var payload PurgePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
		}
		if payload.RetentionSeconds > 0 {
			retention = time.Duration(payload.RetentionSeconds) * time.Second
		}
	}
	if retention <= 0 {
		p.logger.InfoContext(ctx, "reservation retention disabled, nothing to purge")
		return nil
	}

	p.logger.InfoContext(ctx, "purging settled reservations", slog.Duration("retention", retention))

	n, err := p.purger.Purge(ctx, retention)
	if err != nil {
		return fmt.Errorf("failed to purge reservations after %d rows: %w", n, err)
	}

	p.logger.InfoContext(ctx, "settled reservations purged", slog.Int64("rows_deleted", n))
	return nil
}
