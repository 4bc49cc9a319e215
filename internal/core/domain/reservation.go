// internal/core/domain/reservation.go
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReservationStatus is the lifecycle state of a reservation
type ReservationStatus string

const (
	ReservationHeld     ReservationStatus = "held"
	ReservationReleased ReservationStatus = "released"
	ReservationConsumed ReservationStatus = "consumed"
	ReservationExpired  ReservationStatus = "expired"
)

// IsValid reports whether s is a known status
func (s ReservationStatus) IsValid() bool {
	switch s {
	case ReservationHeld, ReservationReleased, ReservationConsumed, ReservationExpired:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationReleased || s == ReservationConsumed || s == ReservationExpired
}

// Reservation is a hold of quantity on one stock line.
// Only Held reservations count towards the line's reserved quantity.
type Reservation struct {
	ID          string            `json:"id"`
	WarehouseID uuid.UUID         `json:"warehouse_id"`
	ItemID      string            `json:"item_id"`
	ItemKind    ItemKind          `json:"item_kind"`
	Quantity    int64             `json:"quantity"`
	Status      ReservationStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	ExpiresAt   *time.Time        `json:"expires_at,omitempty"`
	SettledAt   *time.Time        `json:"settled_at,omitempty"`
}

// Key returns the stock line the reservation holds
func (r *Reservation) Key() StockKey {
	return StockKey{WarehouseID: r.WarehouseID, ItemID: r.ItemID, ItemKind: r.ItemKind}
}

// IsExpired reports whether a held reservation has passed its expiry at now
func (r *Reservation) IsExpired(now time.Time) bool {
	return r.Status == ReservationHeld && r.ExpiresAt != nil && !r.ExpiresAt.After(now)
}

// ReserveRequest is the input of a reserve operation
type ReserveRequest struct {
	WarehouseID   uuid.UUID
	ItemID        string
	ItemKind      ItemKind
	Quantity      int64
	ReservationID string
	ExpiresAt     *time.Time
}

// Validate checks the request and defaults the item kind
func (r *ReserveRequest) Validate() error {
	r.ItemID = strings.TrimSpace(r.ItemID)
	r.ReservationID = strings.TrimSpace(r.ReservationID)
	if r.WarehouseID == uuid.Nil {
		return NewValidationError("warehouse_id", "is required")
	}
	if r.ItemID == "" {
		return NewValidationError("item_id", "is required")
	}
	if r.ItemKind == "" {
		r.ItemKind = ItemKindProduct
	}
	if !r.ItemKind.IsValid() {
		return NewValidationError("item_kind", "must be product or material")
	}
	if err := validateQuantity(r.Quantity); err != nil {
		return err
	}
	if r.ReservationID == "" {
		return NewValidationError("reservation_id", "is required")
	}
	if len(r.ReservationID) > 128 {
		return NewValidationError("reservation_id", "must be at most 128 characters")
	}
	return nil
}

// NewReservation builds the held reservation a valid request produces
func (r *ReserveRequest) NewReservation(now time.Time) *Reservation {
	return &Reservation{
		ID:          r.ReservationID,
		WarehouseID: r.WarehouseID,
		ItemID:      r.ItemID,
		ItemKind:    r.ItemKind,
		Quantity:    r.Quantity,
		Status:      ReservationHeld,
		CreatedAt:   now,
		ExpiresAt:   r.ExpiresAt,
	}
}

// ReservationFilter narrows reservation listings
type ReservationFilter struct {
	Status   ReservationStatus
	ItemID   string
	Page     int
	PageSize int
}

// Normalize clamps paging to sane bounds
func (f *ReservationFilter) Normalize() {
	f.Page, f.PageSize = normalizePage(f.Page, f.PageSize)
}

// ExpiredReservation summarizes one reservation moved to Expired by a sweep
type ExpiredReservation struct {
	ID          string    `json:"id"`
	WarehouseID uuid.UUID `json:"warehouse_id"`
	ItemID      string    `json:"item_id"`
	ItemKind    ItemKind  `json:"item_kind"`
	Quantity    int64     `json:"quantity"`
}
