// internal/core/services/query.go
package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/ammerola/stock-ledger/internal/core/domain"
	"github.com/ammerola/stock-ledger/internal/core/ports"
)

// maxAvailabilityBranches bounds one availability query
const maxAvailabilityBranches = 200

// QueryService serves the advisory read models. Results may lag behind
// concurrent writers and must not be used to decide a later write.
type QueryService struct {
	ledger     ports.LedgerRepository
	warehouses ports.WarehouseRepository
	cache      ports.StockCache
	logger     *slog.Logger
}

var _ ports.QueryService = (*QueryService)(nil)

// NewQueryService creates a new query service
func NewQueryService(ledger ports.LedgerRepository, warehouses ports.WarehouseRepository, cache ports.StockCache, logger *slog.Logger) *QueryService {
	return &QueryService{
		ledger:     ledger,
		warehouses: warehouses,
		cache:      stockCacheOrNoop(cache),
		logger:     logger.With(slog.String("service", "query")),
	}
}

// GetStock lists every stock line of a warehouse
func (s *QueryService) GetStock(ctx context.Context, warehouseID uuid.UUID) ([]domain.StockLevel, error) {
	if _, err := s.warehouses.FindByID(ctx, warehouseID); err != nil {
		return nil, err
	}

	return s.cache.Stock(ctx, warehouseID, func() ([]domain.StockLevel, error) {
		lines, err := s.ledger.GetStock(ctx, warehouseID)
		if err != nil {
			return nil, err
		}
		levels := make([]domain.StockLevel, 0, len(lines))
		for _, l := range lines {
			levels = append(levels, domain.LevelOf(l))
		}
		return levels, nil
	})
}

// GetAvailability reports one item's available quantity per branch, in the
// order the branches were given. Branches without a warehouse, or with an
// inactive one, report zero.
func (s *QueryService) GetAvailability(ctx context.Context, itemID string, kind domain.ItemKind, branchIDs []string) ([]domain.BranchAvailability, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return nil, domain.NewValidationError("item_id", "is required")
	}
	if kind == "" {
		kind = domain.ItemKindProduct
	}
	if !kind.IsValid() {
		return nil, domain.NewValidationError("item_kind", "must be product or material")
	}

	branches := uniqueBranches(branchIDs)
	if len(branches) == 0 {
		return nil, domain.NewValidationError("branch_id", "at least one branch is required")
	}
	if len(branches) > maxAvailabilityBranches {
		return nil, domain.NewValidationError("branch_id", "too many branches")
	}

	return s.cache.Availability(ctx, itemID, kind, branches, func() ([]domain.BranchAvailability, error) {
		return s.loadAvailability(ctx, itemID, kind, branches)
	})
}

func (s *QueryService) loadAvailability(ctx context.Context, itemID string, kind domain.ItemKind, branches []string) ([]domain.BranchAvailability, error) {
	byBranch, err := s.warehouses.FindByBranches(ctx, branches)
	if err != nil {
		return nil, err
	}

	active := make([]uuid.UUID, 0, len(byBranch))
	for _, w := range byBranch {
		if w.IsActive {
			active = append(active, w.ID)
		}
	}

	lines, err := s.ledger.GetLines(ctx, active, itemID, kind)
	if err != nil {
		return nil, err
	}

	out := make([]domain.BranchAvailability, 0, len(branches))
	for _, b := range branches {
		entry := domain.BranchAvailability{BranchID: b, ItemID: itemID, ItemKind: kind}
		if w, ok := byBranch[b]; ok {
			id := w.ID
			entry.WarehouseID = &id
			entry.HasWarehouse = true
			entry.WarehouseActive = w.IsActive
			if w.IsActive {
				if l, ok := lines[w.ID]; ok {
					entry.Available = l.Available()
				}
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

// GetReservation retrieves one reservation in any status
func (s *QueryService) GetReservation(ctx context.Context, warehouseID uuid.UUID, reservationID string) (*domain.Reservation, error) {
	reservationID = strings.TrimSpace(reservationID)
	if reservationID == "" {
		return nil, domain.NewValidationError("reservation_id", "is required")
	}
	return s.ledger.FindReservation(ctx, warehouseID, reservationID)
}

// ListReservations pages through a warehouse's reservations
func (s *QueryService) ListReservations(ctx context.Context, warehouseID uuid.UUID, filter domain.ReservationFilter) (*ports.ListResult[*domain.Reservation], error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, domain.NewValidationError("status", "must be held, released, consumed or expired")
	}
	if _, err := s.warehouses.FindByID(ctx, warehouseID); err != nil {
		return nil, err
	}
	filter.Normalize()

	list, total, err := s.ledger.ListReservations(ctx, warehouseID, filter)
	if err != nil {
		return nil, err
	}
	return ports.NewListResult(list, filter.Page, filter.PageSize, total), nil
}

// ListMovements pages through a warehouse's movement journal
func (s *QueryService) ListMovements(ctx context.Context, warehouseID uuid.UUID, filter domain.MovementFilter) (*ports.ListResult[domain.Movement], error) {
	if filter.Type != "" && !filter.Type.IsValid() {
		return nil, domain.NewValidationError("type", "is not a movement type")
	}
	if filter.Since != nil && filter.Until != nil && !filter.Since.Before(*filter.Until) {
		return nil, domain.NewValidationError("since", "must be before until")
	}
	if _, err := s.warehouses.FindByID(ctx, warehouseID); err != nil {
		return nil, err
	}
	filter.Normalize()

	list, total, err := s.ledger.ListMovements(ctx, warehouseID, filter)
	if err != nil {
		return nil, err
	}
	return ports.NewListResult(list, filter.Page, filter.PageSize, total), nil
}

func uniqueBranches(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		for _, part := range strings.Split(id, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if _, dup := seen[part]; dup {
				continue
			}
			seen[part] = struct{}{}
			out = append(out, part)
		}
	}
	return out
}
