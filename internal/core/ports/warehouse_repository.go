// internal/core/ports/warehouse_repository.go
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/stock-ledger/internal/core/domain"
)

// WarehouseRepository defines the persistence port for the warehouse registry.
type WarehouseRepository interface {
	// Create stores a new warehouse. A second warehouse for the same branch
	// yields a ConflictError wrapping domain.ErrDuplicateWarehouse.
	Create(ctx context.Context, w *domain.Warehouse) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Warehouse, error)
	FindByBranch(ctx context.Context, branchID string) (*domain.Warehouse, error)
	// FindByBranches returns the warehouses of the given branches keyed by branch id.
	// Branches without a warehouse are absent from the map.
	FindByBranches(ctx context.Context, branchIDs []string) (map[string]*domain.Warehouse, error)
	List(ctx context.Context, filter domain.WarehouseFilter) ([]*domain.Warehouse, int64, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool, at time.Time) (*domain.Warehouse, error)
}
