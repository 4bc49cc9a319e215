package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ammerola/stock-ledger/internal/adapters/directory"
	"github.com/ammerola/stock-ledger/internal/adapters/memory"
	"github.com/ammerola/stock-ledger/internal/core/domain"
	"github.com/ammerola/stock-ledger/internal/core/ports"
	"github.com/ammerola/stock-ledger/internal/core/services"
	"github.com/ammerola/stock-ledger/internal/pkg/metrics"
	"github.com/ammerola/stock-ledger/test/helpers"
)

// clock is a settable time source
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// ledgerEnv wires the services over the in-memory store
type ledgerEnv struct {
	store      *memory.Store
	clock      *clock
	warehouses *services.WarehouseService
	movements  *services.MovementService
	queries    *services.QueryService
	sweeper    *services.Sweeper
}

func newLedgerEnv(t *testing.T) *ledgerEnv {
	t.Helper()

	logger := helpers.TestLogger()
	store := memory.NewStore(logger)
	clk := newClock()
	opts := services.LedgerOptions{
		RetryAttempts:        3,
		RetryInitialInterval: time.Millisecond,
		RetryMaxInterval:     2 * time.Millisecond,
		Now:                  clk.Now,
	}

	return &ledgerEnv{
		store:      store,
		clock:      clk,
		warehouses: services.NewWarehouseService(store, directory.AllowAll{}, nil, opts, logger),
		movements:  services.NewMovementService(store, store, directory.AllowAll{}, nil, opts, nil, logger),
		queries:    services.NewQueryService(store, store, nil, logger),
		sweeper:    services.NewSweeper(store, nil, nil, 2, opts, nil, logger),
	}
}

func (e *ledgerEnv) createWarehouse(t *testing.T, branchID string) *domain.Warehouse {
	t.Helper()
	w, err := e.warehouses.CreateWarehouse(context.Background(), ports.CreateWarehouseRequest{
		BranchID:  branchID,
		ManagerID: "manager-1",
		Address:   helpers.CreateTestWarehouse().Address,
	})
	require.NoError(t, err)
	return w
}

func (e *ledgerEnv) level(t *testing.T, w *domain.Warehouse, itemID string) domain.StockLevel {
	t.Helper()
	levels, err := e.queries.GetStock(context.Background(), w.ID)
	require.NoError(t, err)
	l, _ := helpers.FindLevel(levels, itemID)
	return l
}

// metricValue sums every counter sample of a metric family, 0 when absent
func metricValue(t *testing.T, m *metrics.Metrics, name string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)

	var total float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, metric := range f.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
	}
	return total
}
