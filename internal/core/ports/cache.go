// internal/core/ports/cache.go
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/stock-ledger/internal/core/domain"
)

// CacheRepository defines the interface for cache operations
type CacheRepository interface {
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error

	// AddToIndex records keys in a set so they can be dropped together later.
	AddToIndex(ctx context.Context, index string, ttl time.Duration, keys ...string) error
	// DeleteIndexed deletes the keys recorded in index.
	DeleteIndexed(ctx context.Context, index string) error

	// GetOrSet loads key into dest, calling fetch and storing its result on a miss.
	GetOrSet(ctx context.Context, key string, dest interface{},
		fetch func() (interface{}, error), ttl time.Duration) error

	// SetNX stores value only when key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)

	Ping(ctx context.Context) error
}

// StockCache caches the advisory stock read models and drops them after
// ledger mutations. Loads fall through to fetch when the cache is unavailable.
type StockCache interface {
	Stock(ctx context.Context, warehouseID uuid.UUID,
		fetch func() ([]domain.StockLevel, error)) ([]domain.StockLevel, error)
	Availability(ctx context.Context, itemID string, kind domain.ItemKind, branchIDs []string,
		fetch func() ([]domain.BranchAvailability, error)) ([]domain.BranchAvailability, error)

	// InvalidateStock drops the warehouse's stock view and the availability
	// views of the given items.
	InvalidateStock(ctx context.Context, warehouseID uuid.UUID, refs []domain.ItemRef) error
	// InvalidateWarehouse drops every view a warehouse contributes to.
	InvalidateWarehouse(ctx context.Context, warehouseID uuid.UUID) error
}
