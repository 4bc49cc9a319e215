// internal/core/services/warehouse.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/stock-ledger/internal/core/domain"
	"github.com/ammerola/stock-ledger/internal/core/ports"
)

// WarehouseService manages the one-warehouse-per-branch registry
type WarehouseService struct {
	repo     ports.WarehouseRepository
	branches ports.BranchDirectory
	cache    ports.StockCache
	now      func() time.Time
	logger   *slog.Logger
}

var _ ports.WarehouseService = (*WarehouseService)(nil)

// NewWarehouseService creates a new warehouse service
func NewWarehouseService(repo ports.WarehouseRepository, branches ports.BranchDirectory, cache ports.StockCache,
	opts LedgerOptions, logger *slog.Logger) *WarehouseService {
	opts = opts.withDefaults()
	return &WarehouseService{
		repo:     repo,
		branches: branches,
		cache:    stockCacheOrNoop(cache),
		now:      opts.Now,
		logger:   logger.With(slog.String("service", "warehouse")),
	}
}

// CreateWarehouse registers the warehouse of a branch. The branch must be
// known to the branch directory and must not already own a warehouse.
func (s *WarehouseService) CreateWarehouse(ctx context.Context, req ports.CreateWarehouseRequest) (*domain.Warehouse, error) {
	w := &domain.Warehouse{
		BranchID:  req.BranchID,
		ManagerID: req.ManagerID,
		Address:   req.Address,
		IsActive:  true,
	}
	w.PrepareForStorage(s.now())

	if err := w.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.branches.BranchExists(ctx, w.BranchID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify branch: %w", err)
	}
	if !exists {
		return nil, domain.NewNotFoundError(domain.ErrBranchNotFound, "branch", w.BranchID)
	}

	if err := s.repo.Create(ctx, w); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "warehouse created",
		slog.String("warehouse_id", w.ID.String()),
		slog.String("branch_id", w.BranchID),
		slog.String("manager_id", w.ManagerID))

	return w, nil
}

// GetWarehouse retrieves a warehouse by id
func (s *WarehouseService) GetWarehouse(ctx context.Context, id uuid.UUID) (*domain.Warehouse, error) {
	return s.repo.FindByID(ctx, id)
}

// GetByBranch retrieves the warehouse of a branch
func (s *WarehouseService) GetByBranch(ctx context.Context, branchID string) (*domain.Warehouse, error) {
	if branchID == "" {
		return nil, domain.NewValidationError("branch_id", "is required")
	}
	return s.repo.FindByBranch(ctx, branchID)
}

// ListWarehouses pages through the registry
func (s *WarehouseService) ListWarehouses(ctx context.Context, filter domain.WarehouseFilter) (*ports.ListResult[*domain.Warehouse], error) {
	filter.Normalize()

	list, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ports.NewListResult(list, filter.Page, filter.PageSize, total), nil
}

// Activate re-enables movements on a warehouse
func (s *WarehouseService) Activate(ctx context.Context, id uuid.UUID) (*domain.Warehouse, error) {
	return s.setActive(ctx, id, true)
}

// Deactivate stops new movements on a warehouse. Stock lines and held
// reservations are kept; held reservations can still be settled.
func (s *WarehouseService) Deactivate(ctx context.Context, id uuid.UUID) (*domain.Warehouse, error) {
	return s.setActive(ctx, id, false)
}

func (s *WarehouseService) setActive(ctx context.Context, id uuid.UUID, active bool) (*domain.Warehouse, error) {
	w, err := s.repo.SetActive(ctx, id, active, s.now())
	if err != nil {
		return nil, err
	}

	_ = s.cache.InvalidateWarehouse(ctx, id)

	s.logger.InfoContext(ctx, "warehouse activity changed",
		slog.String("warehouse_id", id.String()),
		slog.Bool("is_active", active))

	return w, nil
}
