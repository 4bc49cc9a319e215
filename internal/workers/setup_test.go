package workers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ammerola/stock-ledger/internal/adapters/memory"
	"github.com/ammerola/stock-ledger/internal/adapters/storage"
	"github.com/ammerola/stock-ledger/internal/core/domain"
	"github.com/ammerola/stock-ledger/internal/core/services"
	"github.com/ammerola/stock-ledger/internal/pkg/metrics"
	"github.com/ammerola/stock-ledger/test/helpers"
)

// ledger wires the real services over the in-memory store with a fixed clock
type ledger struct {
	store     *memory.Store
	now       time.Time
	sweeper   *services.Sweeper
	snapshots *services.SnapshotService
	dir       string
	metrics   *metrics.Metrics
}

func newLedger(t *testing.T) *ledger {
	t.Helper()
	log := helpers.TestLogger()

	l := &ledger{
		store:   memory.NewStore(log),
		now:     time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		dir:     t.TempDir(),
		metrics: metrics.New(),
	}
	opts := services.LedgerOptions{Now: func() time.Time { return l.now }}

	l.sweeper = services.NewSweeper(l.store, nil, nil, 10, opts, l.metrics, log)
	l.snapshots = services.NewSnapshotService(l.store, l.store, storage.NewLocalStorage(l.dir, log), opts, log)
	return l
}

// warehouse registers an active warehouse holding items
func (l *ledger) warehouse(t *testing.T, items ...any) *domain.Warehouse {
	t.Helper()
	ctx := context.Background()

	w := helpers.CreateTestWarehouse()
	require.NoError(t, l.store.Create(ctx, w))
	if len(items) > 0 {
		_, err := l.store.ApplyIncome(ctx, w.ID, helpers.Items(items...), l.now.Add(-2*time.Hour))
		require.NoError(t, err)
	}
	return w
}

func (l *ledger) hold(t *testing.T, w *domain.Warehouse, id, item string, qty int64, expiresAt time.Time) {
	t.Helper()
	require.NoError(t, l.store.Reserve(context.Background(), &domain.Reservation{
		ID:          id,
		WarehouseID: w.ID,
		ItemID:      item,
		ItemKind:    domain.ItemKindProduct,
		Quantity:    qty,
		CreatedAt:   l.now.Add(-time.Hour),
		ExpiresAt:   &expiresAt,
	}))
}

func (l *ledger) level(t *testing.T, w *domain.Warehouse, item string) domain.StockLevel {
	t.Helper()
	lines, err := l.store.GetStock(context.Background(), w.ID)
	require.NoError(t, err)
	for _, line := range lines {
		if line.ItemID == item {
			return domain.LevelOf(line)
		}
	}
	t.Fatalf("no stock line for %s", item)
	return domain.StockLevel{}
}

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}
