// internal/core/services/movement.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/stock-ledger/internal/core/domain"
	"github.com/ammerola/stock-ledger/internal/core/ports"
	"github.com/ammerola/stock-ledger/internal/pkg/metrics"
)

// MovementService applies income, outcome and reservation transitions.
// Each call maps to exactly one atomic ledger step; contention on that step
// is retried with backoff before a ConcurrencyError is surfaced.
type MovementService struct {
	ledger     ports.LedgerRepository
	warehouses ports.WarehouseRepository
	catalog    ports.Catalog
	cache      ports.StockCache
	retry      retrier
	opts       LedgerOptions
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

var _ ports.MovementService = (*MovementService)(nil)

// NewMovementService creates a new movement service
func NewMovementService(
	ledger ports.LedgerRepository,
	warehouses ports.WarehouseRepository,
	catalog ports.Catalog,
	cache ports.StockCache,
	opts LedgerOptions,
	m *metrics.Metrics,
	logger *slog.Logger,
) *MovementService {
	opts = opts.withDefaults()
	logger = logger.With(slog.String("service", "movement"))
	return &MovementService{
		ledger:     ledger,
		warehouses: warehouses,
		catalog:    catalog,
		cache:      stockCacheOrNoop(cache),
		retry:      newRetrier(opts, m, logger),
		opts:       opts,
		metrics:    m,
		logger:     logger,
	}
}

// Income adds a batch of quantities to the warehouse, all or nothing
func (s *MovementService) Income(ctx context.Context, warehouseID uuid.UUID, items []domain.MovementItem) (w *domain.Warehouse, err error) {
	defer s.observe(ctx, "income", time.Now(), &err)

	items, err = s.prepareBatch(ctx, warehouseID, items)
	if err != nil {
		return nil, err
	}

	err = s.retry.do(ctx, "income", func() error {
		var applyErr error
		w, applyErr = s.ledger.ApplyIncome(ctx, warehouseID, items, s.opts.Now())
		return applyErr
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.InvalidateStock(ctx, warehouseID, domain.RefsOf(items))

	s.logger.InfoContext(ctx, "income recorded",
		slog.String("warehouse_id", warehouseID.String()),
		slog.Int("lines", len(items)))

	return w, nil
}

// Outcome removes a batch of quantities, bounded by each line's available
// quantity. One short line rejects the whole batch.
func (s *MovementService) Outcome(ctx context.Context, warehouseID uuid.UUID, items []domain.MovementItem) (w *domain.Warehouse, err error) {
	defer s.observe(ctx, "outcome", time.Now(), &err)

	items, err = s.prepareBatch(ctx, warehouseID, items)
	if err != nil {
		return nil, err
	}

	err = s.retry.do(ctx, "outcome", func() error {
		var applyErr error
		w, applyErr = s.ledger.ApplyOutcome(ctx, warehouseID, items, s.opts.Now())
		return applyErr
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.InvalidateStock(ctx, warehouseID, domain.RefsOf(items))

	s.logger.InfoContext(ctx, "outcome recorded",
		slog.String("warehouse_id", warehouseID.String()),
		slog.Int("lines", len(items)))

	return w, nil
}

// Reserve holds quantity of one item under a caller supplied reservation id
func (s *MovementService) Reserve(ctx context.Context, req domain.ReserveRequest) (res *domain.Reservation, err error) {
	defer s.observe(ctx, "reserve", time.Now(), &err)

	if err = req.Validate(); err != nil {
		return nil, err
	}
	if err = s.requireActive(ctx, req.WarehouseID); err != nil {
		return nil, err
	}
	ref := domain.ItemRef{ItemID: req.ItemID, ItemKind: req.ItemKind}
	if err = s.requireCatalogItems(ctx, []domain.ItemRef{ref}); err != nil {
		return nil, err
	}

	err = s.retry.do(ctx, "reserve", func() error {
		now := s.opts.Now()
		attempt := req
		if attempt.ExpiresAt == nil && s.opts.DefaultReservationTTL > 0 {
			expires := now.Add(s.opts.DefaultReservationTTL)
			attempt.ExpiresAt = &expires
		}
		res = attempt.NewReservation(now)
		return s.ledger.Reserve(ctx, res)
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.InvalidateStock(ctx, req.WarehouseID, []domain.ItemRef{ref})

	s.logger.InfoContext(ctx, "stock reserved",
		slog.String("warehouse_id", req.WarehouseID.String()),
		slog.String("reservation_id", res.ID),
		slog.String("item_id", res.ItemID),
		slog.Int64("quantity", res.Quantity))

	return res, nil
}

// Release returns a held reservation's quantity to available stock.
// A reservation that is unknown or no longer held yields UnknownReservation.
func (s *MovementService) Release(ctx context.Context, warehouseID uuid.UUID, reservationID string) (res *domain.Reservation, err error) {
	defer s.observe(ctx, "release", time.Now(), &err)
	return s.settle(ctx, "release", warehouseID, reservationID, s.ledger.Release)
}

// Consume turns a held reservation into a permanent outcome
func (s *MovementService) Consume(ctx context.Context, warehouseID uuid.UUID, reservationID string) (res *domain.Reservation, err error) {
	defer s.observe(ctx, "consume", time.Now(), &err)
	return s.settle(ctx, "consume", warehouseID, reservationID, s.ledger.Consume)
}

func (s *MovementService) settle(
	ctx context.Context,
	op string,
	warehouseID uuid.UUID,
	reservationID string,
	apply func(context.Context, uuid.UUID, string, time.Time) (*domain.Reservation, error),
) (*domain.Reservation, error) {
	reservationID = strings.TrimSpace(reservationID)
	if reservationID == "" {
		return nil, domain.NewValidationError("reservation_id", "is required")
	}
	if _, err := s.warehouses.FindByID(ctx, warehouseID); err != nil {
		return nil, err
	}

	var res *domain.Reservation
	err := s.retry.do(ctx, op, func() error {
		var applyErr error
		res, applyErr = apply(ctx, warehouseID, reservationID, s.opts.Now())
		return applyErr
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.InvalidateStock(ctx, warehouseID, []domain.ItemRef{{ItemID: res.ItemID, ItemKind: res.ItemKind}})

	s.logger.InfoContext(ctx, "reservation settled",
		slog.String("warehouse_id", warehouseID.String()),
		slog.String("reservation_id", res.ID),
		slog.String("status", string(res.Status)),
		slog.Int64("quantity", res.Quantity))

	return res, nil
}

// prepareBatch validates a batch and checks the warehouse and catalog
// before any line is touched.
func (s *MovementService) prepareBatch(ctx context.Context, warehouseID uuid.UUID, items []domain.MovementItem) ([]domain.MovementItem, error) {
	items, err := domain.NormalizeItems(items)
	if err != nil {
		return nil, err
	}
	if err := s.requireActive(ctx, warehouseID); err != nil {
		return nil, err
	}
	if err := s.requireCatalogItems(ctx, domain.RefsOf(items)); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *MovementService) requireActive(ctx context.Context, warehouseID uuid.UUID) error {
	w, err := s.warehouses.FindByID(ctx, warehouseID)
	if err != nil {
		return err
	}
	if !w.IsActive {
		return domain.NewConflictError(domain.ErrWarehouseInactive, warehouseID.String())
	}
	return nil
}

func (s *MovementService) requireCatalogItems(ctx context.Context, refs []domain.ItemRef) error {
	missing, err := s.catalog.MissingItems(ctx, refs)
	if err != nil {
		return fmt.Errorf("failed to verify catalog items: %w", err)
	}
	if len(missing) > 0 {
		first := missing[0]
		return domain.NewNotFoundError(domain.ErrItemNotFound, string(first.ItemKind), first.ItemID)
	}
	return nil
}

func (s *MovementService) observe(ctx context.Context, op string, started time.Time, err *error) {
	s.metrics.ObserveOperation(op, *err, time.Since(started))
	if *err != nil {
		s.logger.DebugContext(ctx, "ledger operation rejected",
			slog.String("operation", op),
			slog.String("code", domain.ErrorCode(*err)),
			slog.String("error", (*err).Error()))
	}
}
