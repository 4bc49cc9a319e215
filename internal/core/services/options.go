// internal/core/services/options.go
package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/stock-ledger/internal/core/domain"
	"github.com/ammerola/stock-ledger/internal/core/ports"
)

// LedgerOptions tunes the ledger services
type LedgerOptions struct {
	RetryAttempts         int
	RetryInitialInterval  time.Duration
	RetryMaxInterval      time.Duration
	DefaultReservationTTL time.Duration

	// Now is the clock used to stamp movements. Defaults to time.Now in UTC.
	Now func() time.Time
}

func (o LedgerOptions) withDefaults() LedgerOptions {
	if o.RetryAttempts < 1 {
		o.RetryAttempts = 1
	}
	if o.RetryInitialInterval <= 0 {
		o.RetryInitialInterval = 10 * time.Millisecond
	}
	if o.RetryMaxInterval < o.RetryInitialInterval {
		o.RetryMaxInterval = o.RetryInitialInterval
	}
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	return o
}

// uncached passes every load straight through
type uncached struct{}

func (uncached) Stock(_ context.Context, _ uuid.UUID, fetch func() ([]domain.StockLevel, error)) ([]domain.StockLevel, error) {
	return fetch()
}

func (uncached) Availability(_ context.Context, _ string, _ domain.ItemKind, _ []string,
	fetch func() ([]domain.BranchAvailability, error)) ([]domain.BranchAvailability, error) {
	return fetch()
}

func (uncached) InvalidateStock(context.Context, uuid.UUID, []domain.ItemRef) error { return nil }

func (uncached) InvalidateWarehouse(context.Context, uuid.UUID) error { return nil }

func stockCacheOrNoop(c ports.StockCache) ports.StockCache {
	if c == nil {
		return uncached{}
	}
	return c
}
