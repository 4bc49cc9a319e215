// internal/workers/schedule.go
package workers

import (
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"

	"github.com/ammerola/stock-ledger/internal/pkg/config"
)

// purgeSchedule runs retention once a day, off the snapshot hour
const purgeSchedule = "30 3 * * *"

// Registrar is the part of *asynq.Scheduler used to declare periodic tasks
type Registrar interface {
	Register(cronspec string, task *asynq.Task, opts ...asynq.Option) (string, error)
}

// NewServeMux routes every ledger task type to its processor
func NewServeMux(sweep *SweepProcessor, snapshots *SnapshotProcessor, cleanup *CleanupProcessor) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeReservationExpire, sweep.ExpireReservations)
	mux.HandleFunc(TypeStockSnapshot, snapshots.ProcessSnapshot)
	mux.HandleFunc(TypeReservationsPurge, cleanup.PurgeReservations)
	return mux
}

// RegisterSchedules declares the periodic ledger tasks and returns their
// entry ids. The sweep is only scheduled when the worker owns it.
func RegisterSchedules(r Registrar, cfg config.LedgerConfig, maxRetry int, logger *slog.Logger) ([]string, error) {
	var ids []string

	register := func(spec string, task *asynq.Task) error {
		id, err := r.Register(spec, task)
		if err != nil {
			return fmt.Errorf("failed to schedule %s: %w", task.Type(), err)
		}
		logger.Info("periodic task registered",
			slog.String("task_type", task.Type()),
			slog.String("schedule", spec),
			slog.String("entry_id", id))
		ids = append(ids, id)
		return nil
	}

	if cfg.SweepMode == "worker" {
		if err := register(fmt.Sprintf("@every %s", cfg.SweepInterval), NewSweepTask(cfg.SweepInterval)); err != nil {
			return ids, err
		}
	}

	if cfg.SnapshotSchedule != "" {
		if _, err := cron.ParseStandard(cfg.SnapshotSchedule); err != nil {
			return ids, fmt.Errorf("invalid snapshot schedule %q: %w", cfg.SnapshotSchedule, err)
		}
		task, err := NewSnapshotTask(nil, maxRetry)
		if err != nil {
			return ids, err
		}
		if err := register(cfg.SnapshotSchedule, task); err != nil {
			return ids, err
		}
	}

	if cfg.ReservationRetention > 0 {
		task, err := NewPurgeTask(cfg.ReservationRetention)
		if err != nil {
			return ids, err
		}
		if err := register(purgeSchedule, task); err != nil {
			return ids, err
		}
	}

	return ids, nil
}
