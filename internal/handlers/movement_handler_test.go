package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/stock-ledger/internal/core/domain"
	"github.com/ammerola/stock-ledger/internal/handlers"
	"github.com/ammerola/stock-ledger/test/helpers"
)

func TestMovementHandler_IncomeOutcome(t *testing.T) {
	warehouse := helpers.CreateTestWarehouse()
	items := helpers.Items("P1", 5, "P2", 1)
	base := "/api/v1/warehouses/" + warehouse.ID.String()

	tests := []struct {
		name           string
		path           string
		setupMocks     func(a *api)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "income_applied",
			path: "/income",
			setupMocks: func(a *api) {
				a.movements.EXPECT().Income(gomock.Any(), warehouse.ID, items).Return(warehouse, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "outcome_applied",
			path: "/outcome",
			setupMocks: func(a *api) {
				a.movements.EXPECT().Outcome(gomock.Any(), warehouse.ID, items).Return(warehouse, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "outcome_short",
			path: "/outcome",
			setupMocks: func(a *api) {
				a.movements.EXPECT().Outcome(gomock.Any(), warehouse.ID, items).
					Return(nil, &domain.InsufficientStockError{ItemID: "P1", ItemKind: domain.ItemKindProduct, Requested: 5, Available: 2})
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "insufficient_stock",
		},
		{
			name: "inactive_warehouse",
			path: "/income",
			setupMocks: func(a *api) {
				a.movements.EXPECT().Income(gomock.Any(), warehouse.ID, items).
					Return(nil, domain.NewConflictError(domain.ErrWarehouseInactive, warehouse.ID.String()))
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "warehouse_inactive",
		},
		{
			name: "contention_exhausted",
			path: "/income",
			setupMocks: func(a *api) {
				a.movements.EXPECT().Income(gomock.Any(), warehouse.ID, items).
					Return(nil, &domain.ConcurrencyError{Op: "income", Attempts: 3})
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "concurrency_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAPI(t)
			tt.setupMocks(a)

			w := a.do(t, http.MethodPost, base+tt.path, handlers.MovementRequest{Items: items})
			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, w).Code)
			}
			if tt.expectedCode == "concurrency_error" {
				assert.Equal(t, "1", w.Header().Get("Retry-After"))
			}
		})
	}
}

func TestMovementHandler_Reserve(t *testing.T) {
	warehouseID := uuid.New()
	target := "/api/v1/warehouses/" + warehouseID.String() + "/reservations"
	expiresAt := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	ttl := int64(900)
	hugeTTL := int64(9223372037)

	tests := []struct {
		name           string
		body           handlers.ReserveRequest
		check          func(t *testing.T, req domain.ReserveRequest)
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "explicit_expiry",
			body: handlers.ReserveRequest{ReservationID: "cart-1", ItemID: "P1", Quantity: 2, ExpiresAt: &expiresAt},
			check: func(t *testing.T, req domain.ReserveRequest) {
				assert.Equal(t, warehouseID, req.WarehouseID)
				assert.Equal(t, "cart-1", req.ReservationID)
				require.NotNil(t, req.ExpiresAt)
				assert.True(t, expiresAt.Equal(*req.ExpiresAt))
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "ttl_becomes_expiry",
			body: handlers.ReserveRequest{ReservationID: "cart-2", ItemID: "M1", ItemKind: domain.ItemKindMaterial, Quantity: 1, TTLSeconds: &ttl},
			check: func(t *testing.T, req domain.ReserveRequest) {
				require.NotNil(t, req.ExpiresAt)
				assert.WithinDuration(t, time.Now().Add(15*time.Minute), *req.ExpiresAt, 5*time.Second)
				assert.Equal(t, domain.ItemKindMaterial, req.ItemKind)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "no_expiry_left_to_service",
			body: handlers.ReserveRequest{ReservationID: "cart-3", ItemID: "P1", Quantity: 1},
			check: func(t *testing.T, req domain.ReserveRequest) {
				assert.Nil(t, req.ExpiresAt)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "duplicate_reservation",
			body:           handlers.ReserveRequest{ReservationID: "cart-1", ItemID: "P1", Quantity: 1},
			err:            domain.NewConflictError(domain.ErrDuplicateReservation, "cart-1"),
			expectedStatus: http.StatusConflict,
			expectedCode:   "duplicate_reservation",
		},
		{
			name:           "insufficient_stock",
			body:           handlers.ReserveRequest{ReservationID: "cart-4", ItemID: "P1", Quantity: 99},
			err:            &domain.InsufficientStockError{ItemID: "P1", ItemKind: domain.ItemKindProduct, Requested: 99, Available: 3},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "insufficient_stock",
		},
		{
			name:           "ttl_too_large",
			body:           handlers.ReserveRequest{ReservationID: "cart-6", ItemID: "P1", Quantity: 1, TTLSeconds: &hugeTTL},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "validation_error",
		},
		{
			name:           "ttl_and_expiry_conflict",
			body:           handlers.ReserveRequest{ReservationID: "cart-5", ItemID: "P1", Quantity: 1, ExpiresAt: &expiresAt, TTLSeconds: &ttl},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "validation_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAPI(t)
			if tt.expectedStatus != http.StatusBadRequest {
				a.movements.EXPECT().Reserve(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ any, req domain.ReserveRequest) (*domain.Reservation, error) {
						if tt.err != nil {
							return nil, tt.err
						}
						tt.check(t, req)
						return &domain.Reservation{
							ID: req.ReservationID, WarehouseID: req.WarehouseID, ItemID: req.ItemID,
							ItemKind: domain.ItemKindProduct, Quantity: req.Quantity,
							Status: domain.ReservationHeld, ExpiresAt: req.ExpiresAt,
						}, nil
					})
			}

			w := a.do(t, http.MethodPost, target, tt.body)
			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())

			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, w).Code)
				return
			}
			assert.Equal(t, target+"/"+tt.body.ReservationID, w.Header().Get("Location"))
			var res domain.Reservation
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
			assert.Equal(t, domain.ReservationHeld, res.Status)
		})
	}
}

func TestReserveRequest_ToDomainExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	yearTTL := int64(366 * 24 * 60 * 60)
	overTTL := yearTTL + 1
	past := now.Add(-time.Hour)

	req := handlers.ReserveRequest{ReservationID: "cart-1", ItemID: "P1", Quantity: 1, TTLSeconds: &yearTTL}
	out, err := req.ToDomain(now)
	require.NoError(t, err)
	require.NotNil(t, out.ExpiresAt)
	assert.True(t, out.ExpiresAt.After(now))
	assert.Equal(t, now.Add(366*24*time.Hour), *out.ExpiresAt)

	req.TTLSeconds = &overTTL
	_, err = req.ToDomain(now)
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "ttl_seconds", vErr.Field)

	// A past expiry is kept for the next sweep to collect
	req = handlers.ReserveRequest{ReservationID: "cart-2", ItemID: "P1", Quantity: 1, ExpiresAt: &past}
	out, err = req.ToDomain(now)
	require.NoError(t, err)
	assert.Equal(t, past, *out.ExpiresAt)
}

func TestMovementHandler_ReserveRejectsNonPositiveTTL(t *testing.T) {
	a := newAPI(t)
	w := a.do(t, http.MethodPost, "/api/v1/warehouses/"+uuid.NewString()+"/reservations",
		`{"reservation_id":"r","item_id":"P1","quantity":1,"ttl_seconds":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMovementHandler_Settle(t *testing.T) {
	warehouseID := uuid.New()
	base := "/api/v1/warehouses/" + warehouseID.String() + "/reservations/order-7"

	t.Run("release", func(t *testing.T) {
		a := newAPI(t)
		a.movements.EXPECT().Release(gomock.Any(), warehouseID, "order-7").
			Return(&domain.Reservation{ID: "order-7", Status: domain.ReservationReleased}, nil)

		w := a.do(t, http.MethodPost, base+"/release", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"released"`)
	})

	t.Run("consume", func(t *testing.T) {
		a := newAPI(t)
		a.movements.EXPECT().Consume(gomock.Any(), warehouseID, "order-7").
			Return(&domain.Reservation{ID: "order-7", Status: domain.ReservationConsumed}, nil)

		w := a.do(t, http.MethodPost, base+"/consume", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"consumed"`)
	})

	t.Run("already_settled", func(t *testing.T) {
		a := newAPI(t)
		a.movements.EXPECT().Consume(gomock.Any(), warehouseID, "order-7").
			Return(nil, domain.NewNotFoundError(domain.ErrUnknownReservation, "reservation", "order-7"))

		w := a.do(t, http.MethodPost, base+"/consume", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "unknown_reservation", decodeError(t, w).Code)
	})
}
