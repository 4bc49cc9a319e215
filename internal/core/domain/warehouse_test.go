package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/stock-ledger/internal/core/domain"
)

func validWarehouse() *domain.Warehouse {
	return &domain.Warehouse{
		BranchID:  "branch-1",
		ManagerID: "manager-1",
		Address: domain.Address{
			Line1:      "1 Market St",
			City:       "Springfield",
			PostalCode: "12345",
			Country:    "US",
		},
	}
}

func TestWarehouse_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*domain.Warehouse)
		errorMsg string
	}{
		{name: "valid", mutate: func(*domain.Warehouse) {}},
		{name: "missing_branch", mutate: func(w *domain.Warehouse) { w.BranchID = " " }, errorMsg: "branch_id is required"},
		{name: "missing_manager", mutate: func(w *domain.Warehouse) { w.ManagerID = "" }, errorMsg: "manager_id is required"},
		{name: "missing_line1", mutate: func(w *domain.Warehouse) { w.Address.Line1 = "" }, errorMsg: "address.line1 is required"},
		{name: "missing_postal_code", mutate: func(w *domain.Warehouse) { w.Address.PostalCode = "" }, errorMsg: "address.postal_code is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := validWarehouse()
			tt.mutate(w)
			err := w.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestWarehouse_PrepareForStorage(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	w := validWarehouse()
	w.BranchID = "  branch-1  "
	w.PrepareForStorage(now)

	assert.NotEqual(t, uuid.Nil, w.ID)
	assert.Equal(t, "branch-1", w.BranchID)
	assert.Equal(t, now, w.CreatedAt)
	assert.Equal(t, now, w.UpdatedAt)
	assert.Nil(t, w.LastIncomeAt)
	assert.Nil(t, w.LastOutcomeAt)

	id := w.ID
	w.PrepareForStorage(now.Add(time.Hour))
	assert.Equal(t, id, w.ID)
	assert.Equal(t, now, w.CreatedAt)
}

func TestWarehouseFilter_Normalize(t *testing.T) {
	f := domain.WarehouseFilter{Page: 0, PageSize: 10000}
	f.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 500, f.PageSize)

	f = domain.WarehouseFilter{}
	f.Normalize()
	assert.Equal(t, 50, f.PageSize)
}
