// internal/core/ports/ledger_repository.go
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/stock-ledger/internal/core/domain"
)

// LedgerRepository is the transactional store of stock lines, reservations
// and the movement journal. Every mutating method is atomic: either all of
// its line updates commit or none do.
//
// Contention the store cannot resolve on its own is reported as a
// *domain.ConcurrencyError so callers may retry.
type LedgerRepository interface {
	// ApplyIncome adds the quantities, creating missing lines, and stamps
	// the warehouse's last income time.
	ApplyIncome(ctx context.Context, warehouseID uuid.UUID, items []domain.MovementItem, at time.Time) (*domain.Warehouse, error)
	// ApplyOutcome removes the quantities if every line has enough available
	// stock and stamps the warehouse's last outcome time.
	ApplyOutcome(ctx context.Context, warehouseID uuid.UUID, items []domain.MovementItem, at time.Time) (*domain.Warehouse, error)

	Reserve(ctx context.Context, r *domain.Reservation) error
	Release(ctx context.Context, warehouseID uuid.UUID, reservationID string, at time.Time) (*domain.Reservation, error)
	Consume(ctx context.Context, warehouseID uuid.UUID, reservationID string, at time.Time) (*domain.Reservation, error)
	// ExpireReservations moves up to limit held reservations whose expiry is
	// at or before now to Expired and returns them.
	ExpireReservations(ctx context.Context, now time.Time, limit int) ([]domain.ExpiredReservation, error)
	// PurgeReservations deletes up to limit terminal reservations settled before the cutoff.
	PurgeReservations(ctx context.Context, before time.Time, limit int) (int64, error)

	GetStock(ctx context.Context, warehouseID uuid.UUID) ([]domain.StockLine, error)
	// GetLines returns the line of one item in each of the given warehouses.
	GetLines(ctx context.Context, warehouseIDs []uuid.UUID, itemID string, kind domain.ItemKind) (map[uuid.UUID]domain.StockLine, error)
	FindReservation(ctx context.Context, warehouseID uuid.UUID, reservationID string) (*domain.Reservation, error)
	ListReservations(ctx context.Context, warehouseID uuid.UUID, filter domain.ReservationFilter) ([]*domain.Reservation, int64, error)
	ListMovements(ctx context.Context, warehouseID uuid.UUID, filter domain.MovementFilter) ([]domain.Movement, int64, error)
}
