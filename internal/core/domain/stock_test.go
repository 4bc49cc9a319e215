package domain_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/stock-ledger/internal/core/domain"
)

func TestNormalizeItems(t *testing.T) {
	tests := []struct {
		name      string
		items     []domain.MovementItem
		want      []domain.MovementItem
		wantField string
	}{
		{
			name:      "empty_batch",
			items:     nil,
			wantField: "items",
		},
		{
			name: "merges_duplicates_and_sorts",
			items: []domain.MovementItem{
				{ItemID: "P2", ItemKind: domain.ItemKindProduct, Quantity: 1},
				{ItemID: "M1", ItemKind: domain.ItemKindMaterial, Quantity: 4},
				{ItemID: "P1", ItemKind: domain.ItemKindProduct, Quantity: 2},
				{ItemID: " P2 ", ItemKind: domain.ItemKindProduct, Quantity: 3},
			},
			want: []domain.MovementItem{
				{ItemID: "M1", ItemKind: domain.ItemKindMaterial, Quantity: 4},
				{ItemID: "P1", ItemKind: domain.ItemKindProduct, Quantity: 2},
				{ItemID: "P2", ItemKind: domain.ItemKindProduct, Quantity: 4},
			},
		},
		{
			name:  "defaults_kind_to_product",
			items: []domain.MovementItem{{ItemID: "P1", Quantity: 5}},
			want:  []domain.MovementItem{{ItemID: "P1", ItemKind: domain.ItemKindProduct, Quantity: 5}},
		},
		{
			name:      "zero_quantity",
			items:     []domain.MovementItem{{ItemID: "P1", ItemKind: domain.ItemKindProduct}},
			wantField: "quantity",
		},
		{
			name:      "negative_quantity",
			items:     []domain.MovementItem{{ItemID: "P1", ItemKind: domain.ItemKindProduct, Quantity: -1}},
			wantField: "quantity",
		},
		{
			name:      "above_max_quantity",
			items:     []domain.MovementItem{{ItemID: "P1", ItemKind: domain.ItemKindProduct, Quantity: domain.MaxQuantity + 1}},
			wantField: "quantity",
		},
		{
			name: "merged_total_above_max",
			items: []domain.MovementItem{
				{ItemID: "P1", ItemKind: domain.ItemKindProduct, Quantity: domain.MaxQuantity},
				{ItemID: "P1", ItemKind: domain.ItemKindProduct, Quantity: 2},
			},
			wantField: "quantity",
		},
		{
			name: "merged_total_would_wrap",
			items: []domain.MovementItem{
				{ItemID: "P1", ItemKind: domain.ItemKindProduct, Quantity: math.MaxInt64},
				{ItemID: "P1", ItemKind: domain.ItemKindProduct, Quantity: 2},
			},
			wantField: "quantity",
		},
		{
			name: "merged_total_at_max",
			items: []domain.MovementItem{
				{ItemID: "P1", ItemKind: domain.ItemKindProduct, Quantity: domain.MaxQuantity - 1},
				{ItemID: "P1", ItemKind: domain.ItemKindProduct, Quantity: 1},
			},
			want: []domain.MovementItem{{ItemID: "P1", ItemKind: domain.ItemKindProduct, Quantity: domain.MaxQuantity}},
		},
		{
			name:      "unknown_kind",
			items:     []domain.MovementItem{{ItemID: "P1", ItemKind: "service", Quantity: 1}},
			wantField: "item_kind",
		},
		{
			name:      "blank_item",
			items:     []domain.MovementItem{{ItemID: "  ", Quantity: 1}},
			wantField: "item_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.NormalizeItems(tt.items)
			if tt.wantField != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrValidation)
				var vErr *domain.ValidationError
				require.True(t, errors.As(err, &vErr))
				assert.Equal(t, tt.wantField, vErr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStockLine_Available(t *testing.T) {
	line := domain.StockLine{TotalQuantity: 10, ReservedQuantity: 6}
	assert.Equal(t, int64(4), line.Available())
	assert.True(t, line.Consistent())

	level := domain.LevelOf(line)
	assert.Equal(t, int64(10), level.Total)
	assert.Equal(t, int64(6), level.Reserved)
	assert.Equal(t, int64(4), level.Available)

	assert.False(t, domain.StockLine{TotalQuantity: 1, ReservedQuantity: 2}.Consistent())
	assert.False(t, domain.StockLine{TotalQuantity: 1, ReservedQuantity: -1}.Consistent())
}

func TestExceedsMax(t *testing.T) {
	assert.False(t, domain.ExceedsMax(0, domain.MaxQuantity))
	assert.False(t, domain.ExceedsMax(5, domain.MaxQuantity-5))
	assert.True(t, domain.ExceedsMax(5, domain.MaxQuantity-4))
	assert.True(t, domain.ExceedsMax(domain.MaxQuantity, 1))
}

func TestParseItemKind(t *testing.T) {
	k, err := domain.ParseItemKind("")
	require.NoError(t, err)
	assert.Equal(t, domain.ItemKindProduct, k)

	k, err = domain.ParseItemKind("Material")
	require.NoError(t, err)
	assert.Equal(t, domain.ItemKindMaterial, k)

	_, err = domain.ParseItemKind("gadget")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReserveRequest_Validate(t *testing.T) {
	valid := func() domain.ReserveRequest {
		return domain.ReserveRequest{
			WarehouseID:   uuid.New(),
			ItemID:        "P1",
			Quantity:      3,
			ReservationID: "r1",
		}
	}

	req := valid()
	require.NoError(t, req.Validate())
	assert.Equal(t, domain.ItemKindProduct, req.ItemKind)

	tests := []struct {
		name   string
		mutate func(*domain.ReserveRequest)
		field  string
	}{
		{"missing_warehouse", func(r *domain.ReserveRequest) { r.WarehouseID = uuid.Nil }, "warehouse_id"},
		{"missing_item", func(r *domain.ReserveRequest) { r.ItemID = "" }, "item_id"},
		{"zero_quantity", func(r *domain.ReserveRequest) { r.Quantity = 0 }, "quantity"},
		{"quantity_above_max", func(r *domain.ReserveRequest) { r.Quantity = domain.MaxQuantity + 1 }, "quantity"},
		{"missing_reservation_id", func(r *domain.ReserveRequest) { r.ReservationID = " " }, "reservation_id"},
		{"bad_kind", func(r *domain.ReserveRequest) { r.ItemKind = "x" }, "item_kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(&r)
			err := r.Validate()
			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestReservation_IsExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.True(t, (&domain.Reservation{Status: domain.ReservationHeld, ExpiresAt: &past}).IsExpired(now))
	assert.True(t, (&domain.Reservation{Status: domain.ReservationHeld, ExpiresAt: &now}).IsExpired(now))
	assert.False(t, (&domain.Reservation{Status: domain.ReservationHeld, ExpiresAt: &future}).IsExpired(now))
	assert.False(t, (&domain.Reservation{Status: domain.ReservationHeld}).IsExpired(now))
	assert.False(t, (&domain.Reservation{Status: domain.ReservationReleased, ExpiresAt: &past}).IsExpired(now))
}
