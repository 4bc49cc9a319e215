// internal/core/ports/services.go
package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/ammerola/stock-ledger/internal/core/domain"
)

// CreateWarehouseRequest is the input of warehouse registration
type CreateWarehouseRequest struct {
	BranchID  string         `json:"branch_id"`
	ManagerID string         `json:"manager_id"`
	Address   domain.Address `json:"address"`
}

// WarehouseService manages the warehouse registry.
type WarehouseService interface {
	CreateWarehouse(ctx context.Context, req CreateWarehouseRequest) (*domain.Warehouse, error)
	GetWarehouse(ctx context.Context, id uuid.UUID) (*domain.Warehouse, error)
	GetByBranch(ctx context.Context, branchID string) (*domain.Warehouse, error)
	ListWarehouses(ctx context.Context, filter domain.WarehouseFilter) (*ListResult[*domain.Warehouse], error)
	Activate(ctx context.Context, id uuid.UUID) (*domain.Warehouse, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*domain.Warehouse, error)
}

// MovementService applies stock movements and reservation transitions.
type MovementService interface {
	Income(ctx context.Context, warehouseID uuid.UUID, items []domain.MovementItem) (*domain.Warehouse, error)
	Outcome(ctx context.Context, warehouseID uuid.UUID, items []domain.MovementItem) (*domain.Warehouse, error)
	Reserve(ctx context.Context, req domain.ReserveRequest) (*domain.Reservation, error)
	Release(ctx context.Context, warehouseID uuid.UUID, reservationID string) (*domain.Reservation, error)
	Consume(ctx context.Context, warehouseID uuid.UUID, reservationID string) (*domain.Reservation, error)
}

// QueryService serves advisory read models.
type QueryService interface {
	GetStock(ctx context.Context, warehouseID uuid.UUID) ([]domain.StockLevel, error)
	GetAvailability(ctx context.Context, itemID string, kind domain.ItemKind, branchIDs []string) ([]domain.BranchAvailability, error)
	GetReservation(ctx context.Context, warehouseID uuid.UUID, reservationID string) (*domain.Reservation, error)
	ListReservations(ctx context.Context, warehouseID uuid.UUID, filter domain.ReservationFilter) (*ListResult[*domain.Reservation], error)
	ListMovements(ctx context.Context, warehouseID uuid.UUID, filter domain.MovementFilter) (*ListResult[domain.Movement], error)
}

// ReservationSweeper expires overdue reservations.
type ReservationSweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// StockExporter renders the stock workbook of a warehouse.
type StockExporter interface {
	Workbook(ctx context.Context, warehouseID uuid.UUID) ([]byte, *domain.Warehouse, error)
}

// ListResult holds one page of a listing
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalCount int64 `json:"total_count"`
	TotalPages int   `json:"total_pages"`
}

// NewListResult computes the page count for a listing
func NewListResult[T any](items []T, page, pageSize int, total int64) *ListResult[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if pageSize > 0 {
		pages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return &ListResult[T]{Items: items, Page: page, PageSize: pageSize, TotalCount: total, TotalPages: pages}
}
