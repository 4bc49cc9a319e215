// internal/adapters/redis_adapter/stock_cache.go
package redis_a

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/stock-ledger/internal/core/domain"
	"github.com/ammerola/stock-ledger/internal/core/ports"
)

// CacheManager caches stock and availability read models
type CacheManager struct {
	cache  ports.CacheRepository
	ttl    time.Duration
	logger *slog.Logger
}

var _ ports.StockCache = (*CacheManager)(nil)

// NewCacheManager creates a new cache manager
func NewCacheManager(cache ports.CacheRepository, ttl time.Duration, logger *slog.Logger) *CacheManager {
	return &CacheManager{
		cache:  cache,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "stock_cache")),
	}
}

// StockKey is the key of a warehouse's stock view
func StockKey(warehouseID uuid.UUID) string {
	return BuildKey(PrefixStock, warehouseID.String())
}

// AvailabilityKey is the key of one availability query. Results follow the
// branch order, so the order is part of the key.
func AvailabilityKey(itemID string, kind domain.ItemKind, branchIDs []string) string {
	return BuildKey(PrefixAvailability, string(kind), itemID, strings.Join(branchIDs, ","))
}

// Stock serves a warehouse's stock view from cache
func (m *CacheManager) Stock(ctx context.Context, warehouseID uuid.UUID,
	fetch func() ([]domain.StockLevel, error)) ([]domain.StockLevel, error) {

	var levels []domain.StockLevel
	err := m.cache.GetOrSet(ctx, StockKey(warehouseID), &levels, func() (interface{}, error) {
		return fetch()
	}, m.ttl)
	if err != nil {
		return nil, err
	}
	return levels, nil
}

// AvailabilityIndexKey is the set listing the cached availability views of one item
func AvailabilityIndexKey(itemID string, kind domain.ItemKind) string {
	return BuildKey(PrefixAvailIndex, string(kind), itemID)
}

// Availability serves an availability query from cache. A freshly loaded
// view is indexed under its item so invalidation never scans the keyspace.
func (m *CacheManager) Availability(ctx context.Context, itemID string, kind domain.ItemKind, branchIDs []string,
	fetch func() ([]domain.BranchAvailability, error)) ([]domain.BranchAvailability, error) {

	key := AvailabilityKey(itemID, kind, branchIDs)
	var out []domain.BranchAvailability
	err := m.cache.GetOrSet(ctx, key, &out, func() (interface{}, error) {
		view, err := fetch()
		if err != nil {
			return nil, err
		}
		if err := m.cache.AddToIndex(ctx, AvailabilityIndexKey(itemID, kind), m.ttl, key); err != nil {
			m.logger.WarnContext(ctx, "failed to index availability view",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
		return view, nil
	}, m.ttl)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// InvalidateStock drops the warehouse's stock view and the availability views of refs
func (m *CacheManager) InvalidateStock(ctx context.Context, warehouseID uuid.UUID, refs []domain.ItemRef) error {
	var errs []error
	if err := m.cache.Delete(ctx, StockKey(warehouseID)); err != nil {
		errs = append(errs, err)
	}
	for _, ref := range refs {
		if err := m.cache.DeleteIndexed(ctx, AvailabilityIndexKey(ref.ItemID, ref.ItemKind)); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		m.logger.WarnContext(ctx, "failed to invalidate stock cache",
			slog.String("warehouse_id", warehouseID.String()),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}

// InvalidateWarehouse drops the stock view and every availability view.
// It scans the keyspace, so it only runs on activation changes.
func (m *CacheManager) InvalidateWarehouse(ctx context.Context, warehouseID uuid.UUID) error {
	err := errors.Join(
		m.cache.Delete(ctx, StockKey(warehouseID)),
		m.cache.DeletePattern(ctx, BuildKey(PrefixAvailability, "*")),
		m.cache.DeletePattern(ctx, BuildKey(PrefixAvailIndex, "*")),
	)
	if err != nil {
		m.logger.WarnContext(ctx, "failed to invalidate warehouse cache",
			slog.String("warehouse_id", warehouseID.String()),
			slog.String("error", err.Error()))
	}
	return err
}
