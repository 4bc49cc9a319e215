package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/stock-ledger/internal/core/domain"
	"github.com/ammerola/stock-ledger/internal/core/services"
	"github.com/ammerola/stock-ledger/test/helpers"
	"github.com/ammerola/stock-ledger/test/mocks"
)

func TestQueryService_GetAvailability(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()

	north := env.createWarehouse(t, "north")
	south := env.createWarehouse(t, "south")
	closed := env.createWarehouse(t, "closed")

	_, err := env.movements.Income(ctx, north.ID, helpers.Items("P1", 8))
	require.NoError(t, err)
	_, err = env.movements.Income(ctx, closed.ID, helpers.Items("P1", 50))
	require.NoError(t, err)
	_, err = env.movements.Reserve(ctx, domain.ReserveRequest{
		WarehouseID: north.ID, ItemID: "P1", Quantity: 3, ReservationID: "r-1",
	})
	require.NoError(t, err)
	_, err = env.warehouses.Deactivate(ctx, closed.ID)
	require.NoError(t, err)

	got, err := env.queries.GetAvailability(ctx, "P1", "", []string{"south,north", "nowhere", "closed", "north"})
	require.NoError(t, err)
	require.Len(t, got, 4, "duplicates collapse, order is kept")

	assert.Equal(t, "south", got[0].BranchID)
	assert.True(t, got[0].HasWarehouse)
	assert.Equal(t, south.ID, *got[0].WarehouseID)
	assert.EqualValues(t, 0, got[0].Available, "no line means nothing available")

	assert.Equal(t, "north", got[1].BranchID)
	assert.EqualValues(t, 5, got[1].Available)
	assert.Equal(t, domain.ItemKindProduct, got[1].ItemKind)

	assert.Equal(t, "nowhere", got[2].BranchID)
	assert.False(t, got[2].HasWarehouse)
	assert.Nil(t, got[2].WarehouseID)
	assert.EqualValues(t, 0, got[2].Available)

	assert.Equal(t, "closed", got[3].BranchID)
	assert.True(t, got[3].HasWarehouse)
	assert.False(t, got[3].WarehouseActive)
	assert.EqualValues(t, 0, got[3].Available, "inactive warehouses offer nothing")
}

func TestQueryService_GetAvailabilityValidation(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()

	tooMany := make([]string, 201)
	for i := range tooMany {
		tooMany[i] = uuid.NewString()
	}

	tests := []struct {
		name     string
		itemID   string
		kind     domain.ItemKind
		branches []string
	}{
		{name: "missing_item", itemID: " ", branches: []string{"b"}},
		{name: "bad_kind", itemID: "P1", kind: "service", branches: []string{"b"}},
		{name: "no_branches", itemID: "P1", branches: []string{" , "}},
		{name: "too_many_branches", itemID: "P1", branches: tooMany},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.queries.GetAvailability(ctx, tt.itemID, tt.kind, tt.branches)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestQueryService_UsesStockCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockLedgerRepository(ctrl)
	warehouses := mocks.NewMockWarehouseRepository(ctrl)
	cache := mocks.NewMockStockCache(ctrl)

	w := helpers.CreateTestWarehouse()
	cached := []domain.StockLevel{{ItemID: "P1", ItemKind: domain.ItemKindProduct, Total: 4, Available: 4}}

	warehouses.EXPECT().FindByID(gomock.Any(), w.ID).Return(w, nil)
	cache.EXPECT().Stock(gomock.Any(), w.ID, gomock.Any()).Return(cached, nil)

	svc := services.NewQueryService(ledger, warehouses, cache, helpers.TestLogger())
	got, err := svc.GetStock(context.Background(), w.ID)
	require.NoError(t, err)
	assert.Equal(t, cached, got)
}

func TestQueryService_GetStockUnknownWarehouse(t *testing.T) {
	env := newLedgerEnv(t)
	_, err := env.queries.GetStock(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrWarehouseNotFound)
}

func TestQueryService_Listings(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()
	w := env.createWarehouse(t, "branch-1")

	_, err := env.movements.Income(ctx, w.ID, helpers.Items("P1", 10, "P2", 2))
	require.NoError(t, err)
	for _, id := range []string{"a", "b", "c"} {
		env.clock.Advance(time.Second)
		_, err = env.movements.Reserve(ctx, domain.ReserveRequest{
			WarehouseID: w.ID, ItemID: "P1", Quantity: 1, ReservationID: id,
		})
		require.NoError(t, err)
	}
	_, err = env.movements.Release(ctx, w.ID, "b")
	require.NoError(t, err)

	res, err := env.queries.GetReservation(ctx, w.ID, "b")
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationReleased, res.Status)

	_, err = env.queries.GetReservation(ctx, w.ID, "zzz")
	assert.ErrorIs(t, err, domain.ErrUnknownReservation)

	held, err := env.queries.ListReservations(ctx, w.ID, domain.ReservationFilter{Status: domain.ReservationHeld})
	require.NoError(t, err)
	assert.EqualValues(t, 2, held.TotalCount)
	assert.Equal(t, "c", held.Items[0].ID, "newest first")

	_, err = env.queries.ListReservations(ctx, w.ID, domain.ReservationFilter{Status: "lost"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = env.queries.ListReservations(ctx, uuid.New(), domain.ReservationFilter{})
	assert.ErrorIs(t, err, domain.ErrWarehouseNotFound)

	journal, err := env.queries.ListMovements(ctx, w.ID, domain.MovementFilter{PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 6, journal.TotalCount, "two income lines, three reserves, one release")
	assert.Equal(t, 3, journal.TotalPages)
	assert.Len(t, journal.Items, 2)
	assert.Equal(t, domain.MovementRelease, journal.Items[0].Type)

	reserves, err := env.queries.ListMovements(ctx, w.ID, domain.MovementFilter{Type: domain.MovementReserve})
	require.NoError(t, err)
	assert.EqualValues(t, 3, reserves.TotalCount)

	since, until := env.clock.Now(), env.clock.Now().Add(-time.Hour)
	_, err = env.queries.ListMovements(ctx, w.ID, domain.MovementFilter{Since: &since, Until: &until})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = env.queries.ListMovements(ctx, w.ID, domain.MovementFilter{Type: "teleport"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestQueryService_RepositoryErrorsPassThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockLedgerRepository(ctrl)
	warehouses := mocks.NewMockWarehouseRepository(ctrl)

	warehouses.EXPECT().FindByBranches(gomock.Any(), []string{"b1"}).Return(nil, errors.New("pool closed"))

	svc := services.NewQueryService(ledger, warehouses, nil, helpers.TestLogger())
	_, err := svc.GetAvailability(context.Background(), "P1", domain.ItemKindMaterial, []string{"b1"})
	assert.ErrorContains(t, err, "pool closed")
}
