// internal/core/services/sweeper.go
package services

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/stock-ledger/internal/core/domain"
	"github.com/ammerola/stock-ledger/internal/core/ports"
	"github.com/ammerola/stock-ledger/internal/pkg/metrics"
)

// maxSweepBatches bounds the work of one sweep cycle
const maxSweepBatches = 20

const sweepLockKey = "lock:reservation-sweep"

// Sweeper returns overdue holds to available stock and purges old
// settled reservations. Failures are logged and left to the next cycle.
type Sweeper struct {
	ledger    ports.LedgerRepository
	cache     ports.StockCache
	lock      ports.CacheRepository
	batchSize int
	now       func() time.Time
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

var _ ports.ReservationSweeper = (*Sweeper)(nil)

// NewSweeper creates a sweeper. lock may be nil; when set, concurrent
// in-process sweepers on different nodes take turns through it.
func NewSweeper(ledger ports.LedgerRepository, cache ports.StockCache, lock ports.CacheRepository,
	batchSize int, opts LedgerOptions, m *metrics.Metrics, logger *slog.Logger) *Sweeper {
	opts = opts.withDefaults()
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Sweeper{
		ledger:    ledger,
		cache:     stockCacheOrNoop(cache),
		lock:      lock,
		batchSize: batchSize,
		now:       opts.Now,
		metrics:   m,
		logger:    logger.With(slog.String("service", "sweeper")),
	}
}

// Sweep expires every held reservation whose expiry is at or before now
// and returns how many were expired.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	now := s.now()
	total := 0

	for batch := 0; batch < maxSweepBatches; batch++ {
		expired, err := s.ledger.ExpireReservations(ctx, now, s.batchSize)
		if err != nil {
			s.metrics.AddExpired(total)
			s.metrics.IncSweepFailure()
			s.logger.ErrorContext(ctx, "reservation sweep failed",
				slog.Int("expired_before_failure", total),
				slog.String("error", err.Error()))
			return total, err
		}

		total += len(expired)
		s.invalidate(ctx, expired)

		if len(expired) < s.batchSize {
			break
		}
	}

	s.metrics.AddExpired(total)
	if total > 0 {
		s.logger.InfoContext(ctx, "reservations expired", slog.Int("count", total))
	}
	return total, nil
}

// Run sweeps every interval until ctx is done
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.InfoContext(ctx, "reservation sweeper started", slog.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "reservation sweeper stopped")
			return
		case <-ticker.C:
			if !s.acquire(ctx, interval) {
				continue
			}
			_, _ = s.Sweep(ctx)
		}
	}
}

// Purge deletes settled reservations older than retention and returns how
// many were deleted. Stock lines and the movement journal are kept.
func (s *Sweeper) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.now().Add(-retention)
	var total int64

	for batch := 0; batch < maxSweepBatches; batch++ {
		n, err := s.ledger.PurgeReservations(ctx, cutoff, s.batchSize)
		if err != nil {
			return total, err
		}
		total += n
		if n < int64(s.batchSize) {
			break
		}
	}

	s.logger.InfoContext(ctx, "settled reservations purged",
		slog.Int64("count", total),
		slog.Time("cutoff", cutoff))

	return total, nil
}

// acquire takes the cluster-wide sweep turn. Without a lock every node
// sweeps; expiry claims rows with SKIP LOCKED.
func (s *Sweeper) acquire(ctx context.Context, interval time.Duration) bool {
	if s.lock == nil {
		return true
	}
	host, _ := os.Hostname()
	ok, err := s.lock.SetNX(ctx, sweepLockKey, host, interval)
	if err != nil {
		s.logger.WarnContext(ctx, "sweep lock unavailable, sweeping anyway",
			slog.String("error", err.Error()))
		return true
	}
	return ok
}

func (s *Sweeper) invalidate(ctx context.Context, expired []domain.ExpiredReservation) {
	refs := make(map[uuid.UUID][]domain.ItemRef)
	for _, e := range expired {
		refs[e.WarehouseID] = append(refs[e.WarehouseID], domain.ItemRef{ItemID: e.ItemID, ItemKind: e.ItemKind})
	}
	for wid, r := range refs {
		_ = s.cache.InvalidateStock(ctx, wid, r)
	}
}
