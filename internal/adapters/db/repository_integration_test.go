//go:build integration

package db_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/ammerola/stock-ledger/internal/adapters/db"
	"github.com/ammerola/stock-ledger/internal/core/domain"
	"github.com/ammerola/stock-ledger/internal/core/ports"
	"github.com/ammerola/stock-ledger/test/helpers"
)

type RepositoryIntegrationSuite struct {
	suite.Suite
	testDB     *helpers.TestDB
	warehouses ports.WarehouseRepository
	ledger     ports.LedgerRepository
	ctx        context.Context
	now        time.Time
}

func TestRepositoryIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(RepositoryIntegrationSuite))
}

func (s *RepositoryIntegrationSuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.warehouses = db.NewWarehouseRepository(s.testDB.Database, helpers.TestLogger())
	s.ledger = db.NewLedgerRepository(s.testDB.Database, helpers.TestLogger())
	s.ctx = context.Background()
}

func (s *RepositoryIntegrationSuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
	s.now = time.Now().UTC().Truncate(time.Microsecond)
}

func (s *RepositoryIntegrationSuite) createWarehouse(overrides ...func(*domain.Warehouse)) *domain.Warehouse {
	w := helpers.CreateTestWarehouse(overrides...)
	s.Require().NoError(s.warehouses.Create(s.ctx, w))
	return w
}

func (s *RepositoryIntegrationSuite) reserve(w *domain.Warehouse, id, item string, qty int64, expiresAt *time.Time) error {
	return s.ledger.Reserve(s.ctx, &domain.Reservation{
		ID:          id,
		WarehouseID: w.ID,
		ItemID:      item,
		ItemKind:    domain.ItemKindProduct,
		Quantity:    qty,
		Status:      domain.ReservationHeld,
		CreatedAt:   s.now,
		ExpiresAt:   expiresAt,
	})
}

func (s *RepositoryIntegrationSuite) level(w *domain.Warehouse, item string) domain.StockLine {
	lines, err := s.ledger.GetStock(s.ctx, w.ID)
	s.Require().NoError(err)
	for _, l := range lines {
		if l.ItemID == item {
			return l
		}
	}
	s.FailNow("no stock line for " + item)
	return domain.StockLine{}
}

func (s *RepositoryIntegrationSuite) TestWarehouseRegistry() {
	w := s.createWarehouse(func(w *domain.Warehouse) { w.BranchID = "branch-leeds" })

	found, err := s.warehouses.FindByID(s.ctx, w.ID)
	s.Require().NoError(err)
	s.Equal(w.BranchID, found.BranchID)
	s.Equal(w.Address, found.Address)
	s.True(found.IsActive)

	byBranch, err := s.warehouses.FindByBranch(s.ctx, "branch-leeds")
	s.Require().NoError(err)
	s.Equal(w.ID, byBranch.ID)

	dup := helpers.CreateTestWarehouse(func(d *domain.Warehouse) { d.BranchID = "branch-leeds" })
	err = s.warehouses.Create(s.ctx, dup)
	s.ErrorIs(err, domain.ErrConflict)
	s.ErrorIs(err, domain.ErrDuplicateWarehouse)

	_, err = s.warehouses.FindByID(s.ctx, uuid.New())
	s.ErrorIs(err, domain.ErrWarehouseNotFound)

	updated, err := s.warehouses.SetActive(s.ctx, w.ID, false, s.now.Add(time.Minute))
	s.Require().NoError(err)
	s.False(updated.IsActive)

	other := s.createWarehouse()
	inactive := false
	list, total, err := s.warehouses.List(s.ctx, domain.WarehouseFilter{Active: &inactive, Page: 1, PageSize: 10})
	s.Require().NoError(err)
	s.EqualValues(1, total)
	s.Require().Len(list, 1)
	s.Equal(w.ID, list[0].ID)

	byBranches, err := s.warehouses.FindByBranches(s.ctx, []string{"branch-leeds", other.BranchID, "branch-missing"})
	s.Require().NoError(err)
	s.Len(byBranches, 2)
	s.NotContains(byBranches, "branch-missing")
}

func (s *RepositoryIntegrationSuite) TestIncomeAndOutcome() {
	w := s.createWarehouse()

	updated, err := s.ledger.ApplyIncome(s.ctx, w.ID, helpers.Items("P1", 5, "P2", 2), s.now)
	s.Require().NoError(err)
	s.Require().NotNil(updated.LastIncomeAt)
	s.WithinDuration(s.now, *updated.LastIncomeAt, time.Millisecond)

	_, err = s.ledger.ApplyIncome(s.ctx, w.ID, helpers.Items("P1", 3), s.now)
	s.Require().NoError(err)
	s.EqualValues(8, s.level(w, "P1").TotalQuantity)

	_, err = s.ledger.ApplyOutcome(s.ctx, w.ID, helpers.Items("P1", 2, "P2", 3), s.now)
	s.ErrorIs(err, domain.ErrInsufficientStock)
	s.EqualValues(8, s.level(w, "P1").TotalQuantity, "short batch must not apply partially")

	updated, err = s.ledger.ApplyOutcome(s.ctx, w.ID, helpers.Items("P1", 8, "P2", 2), s.now)
	s.Require().NoError(err)
	s.NotNil(updated.LastOutcomeAt)

	// Zero lines stay listed
	lines, err := s.ledger.GetStock(s.ctx, w.ID)
	s.Require().NoError(err)
	s.Len(lines, 2)
	for _, l := range lines {
		s.Zero(l.TotalQuantity)
	}

	_, err = s.ledger.ApplyIncome(s.ctx, uuid.New(), helpers.Items("P1", 1), s.now)
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *RepositoryIntegrationSuite) TestReservationLifecycle() {
	w := s.createWarehouse()
	_, err := s.ledger.ApplyIncome(s.ctx, w.ID, helpers.Items("P1", 10), s.now)
	s.Require().NoError(err)

	s.Require().NoError(s.reserve(w, "cart-1", "P1", 4, nil))
	s.Require().NoError(s.reserve(w, "cart-2", "P1", 3, nil))
	s.ErrorIs(s.reserve(w, "cart-1", "P1", 1, nil), domain.ErrDuplicateReservation)
	s.ErrorIs(s.reserve(w, "cart-3", "P1", 4, nil), domain.ErrInsufficientStock)

	line := s.level(w, "P1")
	s.EqualValues(10, line.TotalQuantity)
	s.EqualValues(7, line.ReservedQuantity)

	_, err = s.ledger.ApplyOutcome(s.ctx, w.ID, helpers.Items("P1", 4), s.now)
	s.ErrorIs(err, domain.ErrInsufficientStock)

	released, err := s.ledger.Release(s.ctx, w.ID, "cart-1", s.now)
	s.Require().NoError(err)
	s.Equal(domain.ReservationReleased, released.Status)

	consumed, err := s.ledger.Consume(s.ctx, w.ID, "cart-2", s.now)
	s.Require().NoError(err)
	s.Equal(domain.ReservationConsumed, consumed.Status)

	line = s.level(w, "P1")
	s.EqualValues(7, line.TotalQuantity)
	s.EqualValues(0, line.ReservedQuantity)

	_, err = s.ledger.Release(s.ctx, w.ID, "cart-2", s.now)
	s.ErrorIs(err, domain.ErrUnknownReservation)

	_, err = s.ledger.Consume(s.ctx, w.ID, "cart-404", s.now)
	s.ErrorIs(err, domain.ErrUnknownReservation)

	movements, total, err := s.ledger.ListMovements(s.ctx, w.ID, domain.MovementFilter{ItemID: "P1", Page: 1, PageSize: 50})
	s.Require().NoError(err)
	s.EqualValues(5, total)
	s.Len(movements, 5)

	held, _, err := s.ledger.ListReservations(s.ctx, w.ID, domain.ReservationFilter{Status: domain.ReservationHeld, Page: 1, PageSize: 10})
	s.Require().NoError(err)
	s.Empty(held)
}

func (s *RepositoryIntegrationSuite) TestExpireAndPurge() {
	w := s.createWarehouse()
	_, err := s.ledger.ApplyIncome(s.ctx, w.ID, helpers.Items("P1", 10), s.now)
	s.Require().NoError(err)

	past := s.now.Add(-time.Minute)
	future := s.now.Add(time.Hour)
	s.Require().NoError(s.reserve(w, "due", "P1", 2, &past))
	s.Require().NoError(s.reserve(w, "edge", "P1", 1, &s.now))
	s.Require().NoError(s.reserve(w, "live", "P1", 3, &future))
	s.Require().NoError(s.reserve(w, "open", "P1", 1, nil))

	expired, err := s.ledger.ExpireReservations(s.ctx, s.now, 100)
	s.Require().NoError(err)
	s.Len(expired, 2)

	line := s.level(w, "P1")
	s.EqualValues(10, line.TotalQuantity)
	s.EqualValues(4, line.ReservedQuantity)

	res, err := s.ledger.FindReservation(s.ctx, w.ID, "edge")
	s.Require().NoError(err)
	s.Equal(domain.ReservationExpired, res.Status)

	again, err := s.ledger.ExpireReservations(s.ctx, s.now, 100)
	s.Require().NoError(err)
	s.Empty(again)

	purged, err := s.ledger.PurgeReservations(s.ctx, s.now.Add(time.Second), 100)
	s.Require().NoError(err)
	s.EqualValues(2, purged)

	_, err = s.ledger.FindReservation(s.ctx, w.ID, "due")
	s.ErrorIs(err, domain.ErrNotFound)
	_, err = s.ledger.FindReservation(s.ctx, w.ID, "live")
	s.NoError(err)
}

func (s *RepositoryIntegrationSuite) TestAvailabilityLines() {
	a := s.createWarehouse()
	b := s.createWarehouse()
	_, err := s.ledger.ApplyIncome(s.ctx, a.ID, helpers.Items("P1", 4), s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.reserve(a, "cart", "P1", 1, nil))

	lines, err := s.ledger.GetLines(s.ctx, []uuid.UUID{a.ID, b.ID}, "P1", domain.ItemKindProduct)
	s.Require().NoError(err)
	s.Len(lines, 1)
	s.EqualValues(3, lines[a.ID].Available())
}

func (s *RepositoryIntegrationSuite) TestConcurrentReservationsNeverOversell() {
	w := s.createWarehouse()
	_, err := s.ledger.ApplyIncome(s.ctx, w.ID, helpers.Items("P1", 10), s.now)
	s.Require().NoError(err)

	const workers = 25
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		held    int
		refused int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.reserve(w, fmt.Sprintf("cart-%02d", i), "P1", 1, nil)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				held++
			case errors.Is(err, domain.ErrInsufficientStock):
				refused++
			}
		}(i)
	}
	wg.Wait()

	s.Equal(10, held)
	s.Equal(workers-10, refused)

	line := s.level(w, "P1")
	s.True(line.Consistent())
	s.EqualValues(10, line.ReservedQuantity)
}

func (s *RepositoryIntegrationSuite) TestConcurrentOutcomesAndIncomes() {
	w := s.createWarehouse()
	_, err := s.ledger.ApplyIncome(s.ctx, w.ID, helpers.Items("P1", 50, "P2", 50), s.now)
	s.Require().NoError(err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = s.ledger.ApplyOutcome(s.ctx, w.ID, helpers.Items("P2", 1, "P1", 1), s.now)
		}()
		go func() {
			defer wg.Done()
			_, _ = s.ledger.ApplyIncome(s.ctx, w.ID, helpers.Items("P1", 1, "P2", 1), s.now)
		}()
	}
	wg.Wait()

	p1, p2 := s.level(w, "P1"), s.level(w, "P2")
	s.Equal(p1.TotalQuantity, p2.TotalQuantity, "batches apply atomically")
	s.True(p1.Consistent())
}

func (s *RepositoryIntegrationSuite) TestIncomeRejectsLineOverflow() {
	w := s.createWarehouse()
	_, err := s.ledger.ApplyIncome(s.ctx, w.ID, helpers.Items("P1", 5, "P2", 1), s.now)
	s.Require().NoError(err)

	batch := []domain.MovementItem{
		{ItemID: "P1", ItemKind: domain.ItemKindProduct, Quantity: domain.MaxQuantity},
		{ItemID: "P2", ItemKind: domain.ItemKindProduct, Quantity: 1},
	}
	_, err = s.ledger.ApplyIncome(s.ctx, w.ID, batch, s.now)
	s.ErrorIs(err, domain.ErrValidation)
	s.NotErrorIs(err, domain.ErrInsufficientStock)

	s.EqualValues(5, s.level(w, "P1").TotalQuantity)
	s.EqualValues(1, s.level(w, "P2").TotalQuantity, "no line of a rejected batch changes")

	_, total, err := s.ledger.ListMovements(s.ctx, w.ID, domain.MovementFilter{Type: domain.MovementIncome, Page: 1, PageSize: 10})
	s.Require().NoError(err)
	s.EqualValues(2, total)
}

func (s *RepositoryIntegrationSuite) TestReserveRejectsInactiveWarehouse() {
	w := s.createWarehouse()
	_, err := s.ledger.ApplyIncome(s.ctx, w.ID, helpers.Items("P1", 5), s.now)
	s.Require().NoError(err)
	_, err = s.warehouses.SetActive(s.ctx, w.ID, false, s.now)
	s.Require().NoError(err)

	err = s.reserve(w, "cart-1", "P1", 1, nil)
	s.ErrorIs(err, domain.ErrWarehouseInactive)
	s.EqualValues(0, s.level(w, "P1").ReservedQuantity)

	_, err = s.ledger.FindReservation(s.ctx, w.ID, "cart-1")
	s.ErrorIs(err, domain.ErrUnknownReservation)

	s.ErrorIs(s.reserve(&domain.Warehouse{ID: uuid.New()}, "cart-2", "P1", 1, nil), domain.ErrWarehouseNotFound)
}
