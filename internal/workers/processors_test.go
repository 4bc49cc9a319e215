package workers_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/stock-ledger/internal/core/domain"
	"github.com/ammerola/stock-ledger/internal/pkg/metrics"
	"github.com/ammerola/stock-ledger/internal/workers"
	"github.com/ammerola/stock-ledger/test/helpers"
	"github.com/ammerola/stock-ledger/test/mocks"
)

func TestSweepProcessor_ExpireReservations(t *testing.T) {
	l := newLedger(t)
	w := l.warehouse(t, "P1", 10)
	l.hold(t, w, "cart-due", "P1", 4, l.now.Add(-time.Minute))
	l.hold(t, w, "cart-edge", "P1", 1, l.now)
	l.hold(t, w, "cart-live", "P1", 2, l.now.Add(time.Hour))

	p := workers.NewSweepProcessor(l.sweeper, l.metrics, helpers.TestLogger())
	require.NoError(t, p.ExpireReservations(context.Background(), asynq.NewTask(workers.TypeReservationExpire, nil)))

	level := l.level(t, w, "P1")
	assert.EqualValues(t, 10, level.Total)
	assert.EqualValues(t, 2, level.Reserved)
	assert.EqualValues(t, 8, level.Available)

	res, err := l.store.FindReservation(context.Background(), w.ID, "cart-edge")
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationExpired, res.Status)

	body := scrape(t, l.metrics)
	assert.Contains(t, body, "stock_ledger_reservations_expired_total 2")
	assert.Contains(t, body, `stock_ledger_tasks_total{outcome="success",type="reservation:expire"} 1`)
}

func TestSweepProcessor_Failure(t *testing.T) {
	ctrl := gomock.NewController(t)
	sweeper := mocks.NewMockReservationSweeper(ctrl)
	sweeper.EXPECT().Sweep(gomock.Any()).Return(3, errors.New("connection reset"))

	m := metrics.New()
	p := workers.NewSweepProcessor(sweeper, m, helpers.TestLogger())

	err := p.ExpireReservations(context.Background(), asynq.NewTask(workers.TypeReservationExpire, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 expiries")
	assert.Contains(t, scrape(t, m), `stock_ledger_tasks_total{outcome="failure",type="reservation:expire"} 1`)
}

func TestSnapshotProcessor_ProcessSnapshot(t *testing.T) {
	t.Run("single_warehouse", func(t *testing.T) {
		l := newLedger(t)
		w := l.warehouse(t, "P1", 3, "P2", 7)

		task, err := workers.NewSnapshotTask(&w.ID, 3)
		require.NoError(t, err)

		p := workers.NewSnapshotProcessor(l.snapshots, l.metrics, helpers.TestLogger())
		require.NoError(t, p.ProcessSnapshot(context.Background(), task))

		entries := countFiles(t, l.dir)
		assert.Equal(t, 1, entries)
	})

	t.Run("all_active_warehouses", func(t *testing.T) {
		l := newLedger(t)
		l.warehouse(t, "P1", 1)
		l.warehouse(t, "P1", 2)
		inactive := l.warehouse(t)
		_, err := l.store.SetActive(context.Background(), inactive.ID, false, l.now)
		require.NoError(t, err)

		task, err := workers.NewSnapshotTask(nil, 3)
		require.NoError(t, err)

		p := workers.NewSnapshotProcessor(l.snapshots, l.metrics, helpers.TestLogger())
		require.NoError(t, p.ProcessSnapshot(context.Background(), task))
		assert.Equal(t, 2, countFiles(t, l.dir))
	})

	t.Run("unknown_warehouse_is_not_retried", func(t *testing.T) {
		l := newLedger(t)
		id := uuid.New()
		task, err := workers.NewSnapshotTask(&id, 3)
		require.NoError(t, err)

		p := workers.NewSnapshotProcessor(l.snapshots, l.metrics, helpers.TestLogger())
		err = p.ProcessSnapshot(context.Background(), task)
		require.Error(t, err)
		assert.ErrorIs(t, err, asynq.SkipRetry)
		assert.Contains(t, scrape(t, l.metrics), `stock_ledger_tasks_total{outcome="failure",type="stock:snapshot"} 1`)
	})

	t.Run("malformed_payload", func(t *testing.T) {
		l := newLedger(t)
		p := workers.NewSnapshotProcessor(l.snapshots, nil, helpers.TestLogger())
		err := p.ProcessSnapshot(context.Background(), asynq.NewTask(workers.TypeStockSnapshot, []byte("{")))
		assert.ErrorIs(t, err, asynq.SkipRetry)
	})
}

func TestCleanupProcessor_PurgeReservations(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*ledger, *domain.Warehouse) {
		l := newLedger(t)
		w := l.warehouse(t, "P1", 10)
		l.hold(t, w, "old", "P1", 1, l.now.Add(time.Hour))
		l.hold(t, w, "recent", "P1", 1, l.now.Add(time.Hour))
		l.hold(t, w, "open", "P1", 1, l.now.Add(time.Hour))

		_, err := l.store.Release(ctx, w.ID, "old", l.now.Add(-40*24*time.Hour))
		require.NoError(t, err)
		_, err = l.store.Consume(ctx, w.ID, "recent", l.now.Add(-2*24*time.Hour))
		require.NoError(t, err)
		return l, w
	}

	t.Run("configured_retention", func(t *testing.T) {
		l, w := setup(t)
		p := workers.NewCleanupProcessor(l.sweeper, 30*24*time.Hour, l.metrics, helpers.TestLogger())
		require.NoError(t, p.PurgeReservations(ctx, asynq.NewTask(workers.TypeReservationsPurge, nil)))

		_, err := l.store.FindReservation(ctx, w.ID, "old")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = l.store.FindReservation(ctx, w.ID, "recent")
		assert.NoError(t, err)
		_, err = l.store.FindReservation(ctx, w.ID, "open")
		assert.NoError(t, err)

		level := l.level(t, w, "P1")
		assert.EqualValues(t, 9, level.Total)
		assert.EqualValues(t, 1, level.Reserved)
	})

	t.Run("payload_overrides_retention", func(t *testing.T) {
		l, w := setup(t)
		task, err := workers.NewPurgeTask(24 * time.Hour)
		require.NoError(t, err)

		p := workers.NewCleanupProcessor(l.sweeper, 30*24*time.Hour, l.metrics, helpers.TestLogger())
		require.NoError(t, p.PurgeReservations(ctx, task))

		_, err = l.store.FindReservation(ctx, w.ID, "recent")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = l.store.FindReservation(ctx, w.ID, "open")
		assert.NoError(t, err)
	})

	t.Run("disabled", func(t *testing.T) {
		l, w := setup(t)
		p := workers.NewCleanupProcessor(l.sweeper, 0, l.metrics, helpers.TestLogger())
		require.NoError(t, p.PurgeReservations(ctx, asynq.NewTask(workers.TypeReservationsPurge, nil)))

		_, err := l.store.FindReservation(ctx, w.ID, "old")
		assert.NoError(t, err)
	})
}

func TestTaskPayloads(t *testing.T) {
	id := uuid.New()
	task, err := workers.NewSnapshotTask(&id, 5)
	require.NoError(t, err)
	assert.Equal(t, workers.TypeStockSnapshot, task.Type())

	var payload workers.SnapshotPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.NotNil(t, payload.WarehouseID)
	assert.Equal(t, id, *payload.WarehouseID)

	all, err := workers.NewSnapshotTask(nil, 5)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(all.Payload()))
}

func countFiles(t *testing.T, root string) int {
	t.Helper()
	n := 0
	var walk func(dir string)
	walk = func(dir string) {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			if e.IsDir() {
				walk(dir + "/" + e.Name())
				continue
			}
			n++
		}
	}
	walk(root)
	return n
}
