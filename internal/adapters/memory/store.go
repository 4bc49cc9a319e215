// internal/adapters/memory/store.go
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/stock-ledger/internal/core/domain"
	"github.com/ammerola/stock-ledger/internal/core/ports"
)

var (
	_ ports.WarehouseRepository = (*Store)(nil)
	_ ports.LedgerRepository    = (*Store)(nil)
)

type reservationKey struct {
	warehouseID uuid.UUID
	id          string
}

// Store is a process-local ledger. A single mutex serializes every
// operation, so each one is atomic and linearizable.
type Store struct {
	mu sync.Mutex

	warehouses   map[uuid.UUID]*domain.Warehouse
	byBranch     map[string]uuid.UUID
	lines        map[domain.StockKey]*domain.StockLine
	reservations map[reservationKey]*domain.Reservation
	movements    []domain.Movement

	logger *slog.Logger
}

// NewStore creates an empty store
func NewStore(logger *slog.Logger) *Store {
	return &Store{
		warehouses:   make(map[uuid.UUID]*domain.Warehouse),
		byBranch:     make(map[string]uuid.UUID),
		lines:        make(map[domain.StockKey]*domain.StockLine),
		reservations: make(map[reservationKey]*domain.Reservation),
		logger:       logger.With(slog.String("repository", "memory")),
	}
}

// Create registers a warehouse
func (s *Store) Create(_ context.Context, w *domain.Warehouse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byBranch[w.BranchID]; ok {
		return domain.NewConflictError(domain.ErrDuplicateWarehouse, w.BranchID)
	}
	if _, ok := s.warehouses[w.ID]; ok {
		return fmt.Errorf("warehouse id %s already in use", w.ID)
	}

	stored := copyWarehouse(w)
	s.warehouses[w.ID] = stored
	s.byBranch[w.BranchID] = w.ID
	return nil
}

// FindByID retrieves a warehouse by id
func (s *Store) FindByID(_ context.Context, id uuid.UUID) (*domain.Warehouse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.warehouses[id]
	if !ok {
		return nil, domain.NewNotFoundError(domain.ErrWarehouseNotFound, "warehouse", id.String())
	}
	return copyWarehouse(w), nil
}

// FindByBranch retrieves the warehouse owned by a branch
func (s *Store) FindByBranch(_ context.Context, branchID string) (*domain.Warehouse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byBranch[branchID]
	if !ok {
		return nil, domain.NewNotFoundError(domain.ErrWarehouseNotFound, "branch", branchID)
	}
	return copyWarehouse(s.warehouses[id]), nil
}

// FindByBranches resolves many branches at once
func (s *Store) FindByBranches(_ context.Context, branchIDs []string) (map[string]*domain.Warehouse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]*domain.Warehouse, len(branchIDs))
	for _, b := range branchIDs {
		if id, ok := s.byBranch[b]; ok {
			out[b] = copyWarehouse(s.warehouses[id])
		}
	}
	return out, nil
}

// List pages through warehouses in creation order
func (s *Store) List(_ context.Context, filter domain.WarehouseFilter) ([]*domain.Warehouse, int64, error) {
	filter.Normalize()

	s.mu.Lock()
	all := make([]*domain.Warehouse, 0, len(s.warehouses))
	for _, w := range s.warehouses {
		if filter.Active != nil && w.IsActive != *filter.Active {
			continue
		}
		all = append(all, copyWarehouse(w))
	}
	s.mu.Unlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID.String() < all[j].ID.String()
	})

	return paginate(all, filter.Page, filter.PageSize), int64(len(all)), nil
}

// SetActive flips the active flag; stock lines are untouched
func (s *Store) SetActive(_ context.Context, id uuid.UUID, active bool, at time.Time) (*domain.Warehouse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.warehouses[id]
	if !ok {
		return nil, domain.NewNotFoundError(domain.ErrWarehouseNotFound, "warehouse", id.String())
	}
	w.IsActive = active
	w.UpdatedAt = at
	return copyWarehouse(w), nil
}

// ApplyIncome adds every quantity of the batch, creating missing lines.
// A line that would pass domain.MaxQuantity rejects the whole batch.
func (s *Store) ApplyIncome(ctx context.Context, warehouseID uuid.UUID, items []domain.MovementItem, at time.Time) (*domain.Warehouse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.activeWarehouse(warehouseID)
	if err != nil {
		return nil, err
	}

	for _, it := range items {
		key := domain.StockKey{WarehouseID: warehouseID, ItemID: it.ItemID, ItemKind: it.ItemKind}
		if l, ok := s.lines[key]; ok && domain.ExceedsMax(l.TotalQuantity, it.Quantity) {
			return nil, domain.LineOverflow(it.ItemID, it.ItemKind)
		}
	}

	for _, it := range items {
		key := domain.StockKey{WarehouseID: warehouseID, ItemID: it.ItemID, ItemKind: it.ItemKind}
		line := s.line(key)
		line.TotalQuantity += it.Quantity
		line.UpdatedAt = at
		s.journal(key, domain.MovementIncome, it.Quantity, "", at)
	}

	w.LastIncomeAt = timePtr(at)
	w.UpdatedAt = at

	s.logger.DebugContext(ctx, "income applied",
		slog.String("warehouse_id", warehouseID.String()),
		slog.Int("lines", len(items)))

	return copyWarehouse(w), nil
}

// ApplyOutcome checks every line before touching any of them
func (s *Store) ApplyOutcome(ctx context.Context, warehouseID uuid.UUID, items []domain.MovementItem, at time.Time) (*domain.Warehouse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.activeWarehouse(warehouseID)
	if err != nil {
		return nil, err
	}

	for _, it := range items {
		key := domain.StockKey{WarehouseID: warehouseID, ItemID: it.ItemID, ItemKind: it.ItemKind}
		if avail := s.available(key); avail < it.Quantity {
			return nil, insufficient(key, it.Quantity, avail)
		}
	}

	for _, it := range items {
		key := domain.StockKey{WarehouseID: warehouseID, ItemID: it.ItemID, ItemKind: it.ItemKind}
		line := s.lines[key]
		line.TotalQuantity -= it.Quantity
		line.UpdatedAt = at
		s.journal(key, domain.MovementOutcome, it.Quantity, "", at)
	}

	w.LastOutcomeAt = timePtr(at)
	w.UpdatedAt = at

	s.logger.DebugContext(ctx, "outcome applied",
		slog.String("warehouse_id", warehouseID.String()),
		slog.Int("lines", len(items)))

	return copyWarehouse(w), nil
}

// Reserve records a held reservation and raises the line's reserved quantity
func (s *Store) Reserve(_ context.Context, res *domain.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.activeWarehouse(res.WarehouseID); err != nil {
		return err
	}

	rk := reservationKey{warehouseID: res.WarehouseID, id: res.ID}
	if _, ok := s.reservations[rk]; ok {
		return domain.NewConflictError(domain.ErrDuplicateReservation, res.ID)
	}

	key := res.Key()
	if avail := s.available(key); avail < res.Quantity {
		return insufficient(key, res.Quantity, avail)
	}

	line := s.lines[key]
	line.ReservedQuantity += res.Quantity
	line.UpdatedAt = res.CreatedAt

	stored := copyReservation(res)
	stored.Status = domain.ReservationHeld
	s.reservations[rk] = stored
	s.journal(key, domain.MovementReserve, res.Quantity, res.ID, res.CreatedAt)
	return nil
}

// Release returns a held reservation's quantity to available stock
func (s *Store) Release(ctx context.Context, warehouseID uuid.UUID, reservationID string, at time.Time) (*domain.Reservation, error) {
	return s.settle(ctx, warehouseID, reservationID, at, domain.ReservationReleased)
}

// Consume turns a held reservation into an outcome of the reserved quantity
func (s *Store) Consume(ctx context.Context, warehouseID uuid.UUID, reservationID string, at time.Time) (*domain.Reservation, error) {
	return s.settle(ctx, warehouseID, reservationID, at, domain.ReservationConsumed)
}

func (s *Store) settle(ctx context.Context, warehouseID uuid.UUID, reservationID string, at time.Time, status domain.ReservationStatus) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, ok := s.reservations[reservationKey{warehouseID: warehouseID, id: reservationID}]
	if !ok || res.Status != domain.ReservationHeld {
		return nil, domain.NewNotFoundError(domain.ErrUnknownReservation, "reservation", reservationID)
	}

	key := res.Key()
	line, ok := s.lines[key]
	if !ok || line.ReservedQuantity < res.Quantity {
		return nil, fmt.Errorf("stock line %s/%s/%s does not cover reservation %s", key.WarehouseID, key.ItemKind, key.ItemID, res.ID)
	}

	line.ReservedQuantity -= res.Quantity
	mt := domain.MovementRelease
	if status == domain.ReservationConsumed {
		line.TotalQuantity -= res.Quantity
		mt = domain.MovementConsume
		if w, ok := s.warehouses[warehouseID]; ok {
			w.LastOutcomeAt = timePtr(at)
			w.UpdatedAt = at
		}
	}
	line.UpdatedAt = at

	res.Status = status
	res.SettledAt = timePtr(at)
	s.journal(key, mt, res.Quantity, res.ID, at)

	s.logger.DebugContext(ctx, "reservation settled",
		slog.String("reservation_id", reservationID),
		slog.String("status", string(status)))

	return copyReservation(res), nil
}

// ExpireReservations moves due held reservations to Expired, oldest expiry first
func (s *Store) ExpireReservations(_ context.Context, now time.Time, limit int) ([]domain.ExpiredReservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	due := make([]*domain.Reservation, 0)
	for _, res := range s.reservations {
		if res.IsExpired(now) {
			due = append(due, res)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ExpiresAt.Before(*due[j].ExpiresAt) })
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	expired := make([]domain.ExpiredReservation, 0, len(due))
	for _, res := range due {
		key := res.Key()
		line := s.lines[key]
		line.ReservedQuantity -= res.Quantity
		line.UpdatedAt = now

		res.Status = domain.ReservationExpired
		res.SettledAt = timePtr(now)
		s.journal(key, domain.MovementExpire, res.Quantity, res.ID, now)

		expired = append(expired, domain.ExpiredReservation{
			ID:          res.ID,
			WarehouseID: res.WarehouseID,
			ItemID:      res.ItemID,
			ItemKind:    res.ItemKind,
			Quantity:    res.Quantity,
		})
	}
	return expired, nil
}

// PurgeReservations deletes settled reservations older than before
func (s *Store) PurgeReservations(_ context.Context, before time.Time, limit int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var purged int64
	for k, res := range s.reservations {
		if limit > 0 && purged >= int64(limit) {
			break
		}
		if res.Status.IsTerminal() && res.SettledAt != nil && res.SettledAt.Before(before) {
			delete(s.reservations, k)
			purged++
		}
	}
	return purged, nil
}

// GetStock lists every line of a warehouse, zero lines included
func (s *Store) GetStock(_ context.Context, warehouseID uuid.UUID) ([]domain.StockLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.StockLine, 0)
	for k, l := range s.lines {
		if k.WarehouseID == warehouseID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key().Less(out[j].Key()) })
	return out, nil
}

// GetLines fetches one item's line across warehouses
func (s *Store) GetLines(_ context.Context, warehouseIDs []uuid.UUID, itemID string, kind domain.ItemKind) (map[uuid.UUID]domain.StockLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[uuid.UUID]domain.StockLine, len(warehouseIDs))
	for _, id := range warehouseIDs {
		if l, ok := s.lines[domain.StockKey{WarehouseID: id, ItemID: itemID, ItemKind: kind}]; ok {
			out[id] = *l
		}
	}
	return out, nil
}

// FindReservation retrieves one reservation in any status
func (s *Store) FindReservation(_ context.Context, warehouseID uuid.UUID, reservationID string) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, ok := s.reservations[reservationKey{warehouseID: warehouseID, id: reservationID}]
	if !ok {
		return nil, domain.NewNotFoundError(domain.ErrUnknownReservation, "reservation", reservationID)
	}
	return copyReservation(res), nil
}

// ListReservations pages through a warehouse's reservations, newest first
func (s *Store) ListReservations(_ context.Context, warehouseID uuid.UUID, filter domain.ReservationFilter) ([]*domain.Reservation, int64, error) {
	filter.Normalize()

	s.mu.Lock()
	all := make([]*domain.Reservation, 0)
	for k, res := range s.reservations {
		if k.warehouseID != warehouseID {
			continue
		}
		if filter.Status != "" && res.Status != filter.Status {
			continue
		}
		if filter.ItemID != "" && res.ItemID != filter.ItemID {
			continue
		}
		all = append(all, copyReservation(res))
	}
	s.mu.Unlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	return paginate(all, filter.Page, filter.PageSize), int64(len(all)), nil
}

// ListMovements pages through the journal of a warehouse, newest first
func (s *Store) ListMovements(_ context.Context, warehouseID uuid.UUID, filter domain.MovementFilter) ([]domain.Movement, int64, error) {
	filter.Normalize()

	s.mu.Lock()
	all := make([]domain.Movement, 0)
	for i := len(s.movements) - 1; i >= 0; i-- {
		m := s.movements[i]
		if m.WarehouseID != warehouseID {
			continue
		}
		if filter.ItemID != "" && m.ItemID != filter.ItemID {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		if filter.Since != nil && m.CreatedAt.Before(*filter.Since) {
			continue
		}
		if filter.Until != nil && !m.CreatedAt.Before(*filter.Until) {
			continue
		}
		all = append(all, m)
	}
	s.mu.Unlock()

	// journal order is append order; a stable sort keeps it for equal timestamps
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	return paginate(all, filter.Page, filter.PageSize), int64(len(all)), nil
}

func (s *Store) activeWarehouse(id uuid.UUID) (*domain.Warehouse, error) {
	w, ok := s.warehouses[id]
	if !ok {
		return nil, domain.NewNotFoundError(domain.ErrWarehouseNotFound, "warehouse", id.String())
	}
	if !w.IsActive {
		return nil, domain.NewConflictError(domain.ErrWarehouseInactive, id.String())
	}
	return w, nil
}

func (s *Store) line(key domain.StockKey) *domain.StockLine {
	l, ok := s.lines[key]
	if !ok {
		l = &domain.StockLine{WarehouseID: key.WarehouseID, ItemID: key.ItemID, ItemKind: key.ItemKind}
		s.lines[key] = l
	}
	return l
}

func (s *Store) available(key domain.StockKey) int64 {
	if l, ok := s.lines[key]; ok {
		return l.Available()
	}
	return 0
}

func (s *Store) journal(key domain.StockKey, t domain.MovementType, qty int64, reservationID string, at time.Time) {
	s.movements = append(s.movements, domain.NewMovement(key, t, qty, reservationID, at))
}

func insufficient(key domain.StockKey, requested, available int64) error {
	return &domain.InsufficientStockError{
		WarehouseID: key.WarehouseID.String(),
		ItemID:      key.ItemID,
		ItemKind:    key.ItemKind,
		Requested:   requested,
		Available:   available,
	}
}

func paginate[T any](all []T, page, pageSize int) []T {
	start := (page - 1) * pageSize
	if start >= len(all) {
		return []T{}
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

func copyWarehouse(w *domain.Warehouse) *domain.Warehouse {
	c := *w
	if w.LastIncomeAt != nil {
		c.LastIncomeAt = timePtr(*w.LastIncomeAt)
	}
	if w.LastOutcomeAt != nil {
		c.LastOutcomeAt = timePtr(*w.LastOutcomeAt)
	}
	return &c
}

func copyReservation(r *domain.Reservation) *domain.Reservation {
	c := *r
	if r.ExpiresAt != nil {
		c.ExpiresAt = timePtr(*r.ExpiresAt)
	}
	if r.SettledAt != nil {
		c.SettledAt = timePtr(*r.SettledAt)
	}
	return &c
}

func timePtr(t time.Time) *time.Time { return &t }
