// internal/workers/sweep_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/stock-ledger/internal/core/ports"
	"github.com/ammerola/stock-ledger/internal/pkg/metrics"
)

// SweepProcessor runs the reservation expiry sweep
type SweepProcessor struct {
	sweeper ports.ReservationSweeper
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewSweepProcessor creates a new sweep processor
func NewSweepProcessor(sweeper ports.ReservationSweeper, m *metrics.Metrics, logger *slog.Logger) *SweepProcessor {
	return &SweepProcessor{
		sweeper: sweeper,
		metrics: m,
		logger:  logger.With(slog.String("processor", "sweep")),
	}
}

// ExpireReservations returns overdue holds to available stock
func (p *SweepProcessor) ExpireReservations(ctx context.Context, _ *asynq.Task) (err error) {
	ctx = taskContext(ctx)
	start := time.Now()
	defer func() { p.metrics.ObserveTask(TypeReservationExpire, err) }()

	n, err := p.sweeper.Sweep(ctx)
	if err != nil {
		return fmt.Errorf("reservation sweep failed after %d expiries: %w", n, err)
	}

	p.logger.DebugContext(ctx, "sweep completed",
		slog.Int("expired", n),
		slog.Duration("duration", time.Since(start)))

	return nil
}
