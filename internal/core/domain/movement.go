// internal/core/domain/movement.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// MovementType classifies journal entries
type MovementType string

const (
	MovementIncome  MovementType = "income"
	MovementOutcome MovementType = "outcome"
	MovementReserve MovementType = "reserve"
	MovementRelease MovementType = "release"
	MovementConsume MovementType = "consume"
	MovementExpire  MovementType = "expire"
)

// IsValid reports whether t is a known movement type
func (t MovementType) IsValid() bool {
	switch t {
	case MovementIncome, MovementOutcome, MovementReserve, MovementRelease, MovementConsume, MovementExpire:
		return true
	}
	return false
}

// Movement is an immutable journal entry written with every ledger mutation.
// Quantity is always positive; the type gives the direction.
type Movement struct {
	ID            uuid.UUID    `json:"id"`
	WarehouseID   uuid.UUID    `json:"warehouse_id"`
	ItemID        string       `json:"item_id"`
	ItemKind      ItemKind     `json:"item_kind"`
	Type          MovementType `json:"type"`
	Quantity      int64        `json:"quantity"`
	ReservationID string       `json:"reservation_id,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

// NewMovement creates a journal entry for a line
func NewMovement(key StockKey, t MovementType, qty int64, reservationID string, at time.Time) Movement {
	return Movement{
		ID:            uuid.New(),
		WarehouseID:   key.WarehouseID,
		ItemID:        key.ItemID,
		ItemKind:      key.ItemKind,
		Type:          t,
		Quantity:      qty,
		ReservationID: reservationID,
		CreatedAt:     at,
	}
}

// MovementFilter narrows the journal
type MovementFilter struct {
	ItemID   string
	Type     MovementType
	Since    *time.Time
	Until    *time.Time
	Page     int
	PageSize int
}

// Normalize clamps paging to sane bounds
func (f *MovementFilter) Normalize() {
	f.Page, f.PageSize = normalizePage(f.Page, f.PageSize)
}
