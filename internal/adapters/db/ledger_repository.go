// internal/adapters/db/ledger_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/stock-ledger/internal/core/domain"
	"github.com/ammerola/stock-ledger/internal/core/ports"
)

const (
	stockLineColumns   = `warehouse_id, item_id, item_kind, total_quantity, reserved_quantity, updated_at`
	reservationColumns = `id, warehouse_id, item_id, item_kind, quantity, status, created_at, expires_at, settled_at`
	movementColumns    = `id, warehouse_id, item_id, item_kind, movement_type, quantity, reservation_id, created_at`
)

const (
	upsertIncomeSQL = `
		INSERT INTO stock_lines (warehouse_id, item_id, item_kind, total_quantity, reserved_quantity, updated_at)
		VALUES ($1, $2, $3, $4, 0, $5)
		ON CONFLICT (warehouse_id, item_kind, item_id) DO UPDATE
		SET total_quantity = stock_lines.total_quantity + EXCLUDED.total_quantity,
		    updated_at = EXCLUDED.updated_at
		WHERE stock_lines.total_quantity <= $6::bigint - EXCLUDED.total_quantity`

	// The WHERE guard makes the availability check and the decrement one atomic step.
	outcomeLineSQL = `
		UPDATE stock_lines
		SET total_quantity = total_quantity - $4, updated_at = $5
		WHERE warehouse_id = $1 AND item_id = $2 AND item_kind = $3
		  AND total_quantity - reserved_quantity >= $4`

	reserveLineSQL = `
		UPDATE stock_lines
		SET reserved_quantity = reserved_quantity + $4, updated_at = $5
		WHERE warehouse_id = $1 AND item_id = $2 AND item_kind = $3
		  AND total_quantity - reserved_quantity >= $4`

	releaseLineSQL = `
		UPDATE stock_lines
		SET reserved_quantity = reserved_quantity - $4, updated_at = $5
		WHERE warehouse_id = $1 AND item_id = $2 AND item_kind = $3
		  AND reserved_quantity >= $4`

	consumeLineSQL = `
		UPDATE stock_lines
		SET total_quantity = total_quantity - $4, reserved_quantity = reserved_quantity - $4, updated_at = $5
		WHERE warehouse_id = $1 AND item_id = $2 AND item_kind = $3
		  AND reserved_quantity >= $4`

	availableSQL = `
		SELECT total_quantity - reserved_quantity FROM stock_lines
		WHERE warehouse_id = $1 AND item_id = $2 AND item_kind = $3`

	insertMovementSQL = `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
)

// ledgerRepository implements ports.LedgerRepository on Postgres
type ledgerRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *Database, logger *slog.Logger) ports.LedgerRepository {
	return &ledgerRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "ledger")),
	}
}

// ApplyIncome upserts every line of the batch in lock order, journals the
// movements and stamps the warehouse, all in one transaction. The upsert
// guard leaves a line untouched when its total would pass domain.MaxQuantity.
func (r *ledgerRepository) ApplyIncome(ctx context.Context, warehouseID uuid.UUID, items []domain.MovementItem, at time.Time) (*domain.Warehouse, error) {
	var w *domain.Warehouse

	err := r.db.Transaction(ctx, func(tx pgx.Tx) error {
		movements := make([]domain.Movement, 0, len(items))
		for _, it := range items {
			tag, err := tx.Exec(ctx, upsertIncomeSQL, warehouseID, it.ItemID, it.ItemKind, it.Quantity, at, domain.MaxQuantity)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return domain.LineOverflow(it.ItemID, it.ItemKind)
			}
			key := domain.StockKey{WarehouseID: warehouseID, ItemID: it.ItemID, ItemKind: it.ItemKind}
			movements = append(movements, domain.NewMovement(key, domain.MovementIncome, it.Quantity, "", at))
		}

		batch := &pgx.Batch{}
		queueMovements(batch, movements)
		if err := execBatch(ctx, tx, batch); err != nil {
			return err
		}

		var err error
		w, err = stampWarehouse(ctx, tx, warehouseID, "last_income_at", at, true)
		return err
	})
	if err != nil {
		return nil, classify("income", err)
	}

	r.logger.DebugContext(ctx, "income applied",
		slog.String("warehouse_id", warehouseID.String()),
		slog.Int("lines", len(items)))

	return w, nil
}

// ApplyOutcome decrements each line only while its available quantity
// covers the request. The first short line aborts the whole batch.
func (r *ledgerRepository) ApplyOutcome(ctx context.Context, warehouseID uuid.UUID, items []domain.MovementItem, at time.Time) (*domain.Warehouse, error) {
	var w *domain.Warehouse

	err := r.db.Transaction(ctx, func(tx pgx.Tx) error {
		movements := make([]domain.Movement, 0, len(items))
		for _, it := range items {
			key := domain.StockKey{WarehouseID: warehouseID, ItemID: it.ItemID, ItemKind: it.ItemKind}
			tag, err := tx.Exec(ctx, outcomeLineSQL, warehouseID, it.ItemID, it.ItemKind, it.Quantity, at)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return insufficient(ctx, tx, key, it.Quantity)
			}
			movements = append(movements, domain.NewMovement(key, domain.MovementOutcome, it.Quantity, "", at))
		}

		batch := &pgx.Batch{}
		queueMovements(batch, movements)
		if err := execBatch(ctx, tx, batch); err != nil {
			return err
		}

		var err error
		w, err = stampWarehouse(ctx, tx, warehouseID, "last_outcome_at", at, true)
		return err
	})
	if err != nil {
		return nil, classify("outcome", err)
	}

	r.logger.DebugContext(ctx, "outcome applied",
		slog.String("warehouse_id", warehouseID.String()),
		slog.Int("lines", len(items)))

	return w, nil
}

// Reserve records a held reservation and raises the line's reserved quantity.
// The warehouse row is share-locked first so a concurrent deactivation
// either lands before the check or waits for the commit.
func (r *ledgerRepository) Reserve(ctx context.Context, res *domain.Reservation) error {
	err := r.db.Transaction(ctx, func(tx pgx.Tx) error {
		if err := lockActiveWarehouse(ctx, tx, res.WarehouseID); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
			INSERT INTO reservations (warehouse_id, id, item_id, item_kind, quantity, status, created_at, expires_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (warehouse_id, id) DO NOTHING`,
			res.WarehouseID, res.ID, res.ItemID, res.ItemKind, res.Quantity,
			domain.ReservationHeld, res.CreatedAt, res.ExpiresAt,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.NewConflictError(domain.ErrDuplicateReservation, res.ID)
		}

		key := res.Key()
		tag, err = tx.Exec(ctx, reserveLineSQL, key.WarehouseID, key.ItemID, key.ItemKind, res.Quantity, res.CreatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return insufficient(ctx, tx, key, res.Quantity)
		}

		m := domain.NewMovement(key, domain.MovementReserve, res.Quantity, res.ID, res.CreatedAt)
		_, err = tx.Exec(ctx, insertMovementSQL, movementArgs(m)...)
		return err
	})
	if err != nil {
		return classify("reserve", err)
	}

	res.Status = domain.ReservationHeld
	return nil
}

// Release returns a held reservation's quantity to the available pool
func (r *ledgerRepository) Release(ctx context.Context, warehouseID uuid.UUID, reservationID string, at time.Time) (*domain.Reservation, error) {
	return r.settle(ctx, "release", warehouseID, reservationID, at,
		domain.ReservationReleased, domain.MovementRelease, releaseLineSQL)
}

// Consume turns a held reservation into an outcome of the reserved quantity
func (r *ledgerRepository) Consume(ctx context.Context, warehouseID uuid.UUID, reservationID string, at time.Time) (*domain.Reservation, error) {
	return r.settle(ctx, "consume", warehouseID, reservationID, at,
		domain.ReservationConsumed, domain.MovementConsume, consumeLineSQL)
}

func (r *ledgerRepository) settle(
	ctx context.Context,
	op string,
	warehouseID uuid.UUID,
	reservationID string,
	at time.Time,
	status domain.ReservationStatus,
	mt domain.MovementType,
	lineSQL string,
) (*domain.Reservation, error) {
	var res *domain.Reservation

	err := r.db.Transaction(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			UPDATE reservations SET status = $3, settled_at = $4
			WHERE warehouse_id = $1 AND id = $2 AND status = 'held'
			RETURNING `+reservationColumns,
			warehouseID, reservationID, status, at)

		var err error
		res, err = scanReservation(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.NewNotFoundError(domain.ErrUnknownReservation, "reservation", reservationID)
			}
			return err
		}

		key := res.Key()
		tag, err := tx.Exec(ctx, lineSQL, key.WarehouseID, key.ItemID, key.ItemKind, res.Quantity, at)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("stock line %s/%s/%s does not cover reservation %s", key.WarehouseID, key.ItemKind, key.ItemID, res.ID)
		}

		m := domain.NewMovement(key, mt, res.Quantity, res.ID, at)
		if _, err := tx.Exec(ctx, insertMovementSQL, movementArgs(m)...); err != nil {
			return err
		}

		if status == domain.ReservationConsumed {
			_, err = stampWarehouse(ctx, tx, warehouseID, "last_outcome_at", at, false)
		}
		return err
	})
	if err != nil {
		return nil, classify(op, err)
	}

	r.logger.DebugContext(ctx, "reservation settled",
		slog.String("reservation_id", reservationID),
		slog.String("status", string(status)))

	return res, nil
}

// ExpireReservations claims due reservations with SKIP LOCKED so concurrent
// sweepers never block each other, then returns their quantities.
func (r *ledgerRepository) ExpireReservations(ctx context.Context, now time.Time, limit int) ([]domain.ExpiredReservation, error) {
	var expired []domain.ExpiredReservation

	err := r.db.Transaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			WITH due AS (
				SELECT warehouse_id, id FROM reservations
				WHERE status = 'held' AND expires_at IS NOT NULL AND expires_at <= $1
				ORDER BY expires_at
				LIMIT $2
				FOR UPDATE SKIP LOCKED
			)
			UPDATE reservations r SET status = 'expired', settled_at = $1
			FROM due
			WHERE r.warehouse_id = due.warehouse_id AND r.id = due.id
			RETURNING r.id, r.warehouse_id, r.item_id, r.item_kind, r.quantity`,
			now, limit)
		if err != nil {
			return err
		}

		expired, err = ScanMany(rows, func(rows pgx.Rows) (domain.ExpiredReservation, error) {
			var e domain.ExpiredReservation
			err := rows.Scan(&e.ID, &e.WarehouseID, &e.ItemID, &e.ItemKind, &e.Quantity)
			return e, err
		})
		if err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}

		totals := make(map[domain.StockKey]int64)
		for _, e := range expired {
			totals[domain.StockKey{WarehouseID: e.WarehouseID, ItemID: e.ItemID, ItemKind: e.ItemKind}] += e.Quantity
		}
		keys := make([]domain.StockKey, 0, len(totals))
		for k := range totals {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

		for _, k := range keys {
			tag, err := tx.Exec(ctx, releaseLineSQL, k.WarehouseID, k.ItemID, k.ItemKind, totals[k], now)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("stock line %s/%s/%s does not cover expired reservations", k.WarehouseID, k.ItemKind, k.ItemID)
			}
		}

		batch := &pgx.Batch{}
		movements := make([]domain.Movement, 0, len(expired))
		for _, e := range expired {
			key := domain.StockKey{WarehouseID: e.WarehouseID, ItemID: e.ItemID, ItemKind: e.ItemKind}
			movements = append(movements, domain.NewMovement(key, domain.MovementExpire, e.Quantity, e.ID, now))
		}
		queueMovements(batch, movements)
		return execBatch(ctx, tx, batch)
	})
	if err != nil {
		return nil, classify("expire", err)
	}

	return expired, nil
}

// PurgeReservations deletes settled reservations older than before
func (r *ledgerRepository) PurgeReservations(ctx context.Context, before time.Time, limit int) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM reservations
		WHERE (warehouse_id, id) IN (
			SELECT warehouse_id, id FROM reservations
			WHERE status <> 'held' AND settled_at < $1
			ORDER BY settled_at
			LIMIT $2
		)`, before, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to purge reservations: %w", err)
	}
	return tag.RowsAffected(), nil
}

// GetStock lists every line of a warehouse, zero lines included
func (r *ledgerRepository) GetStock(ctx context.Context, warehouseID uuid.UUID) ([]domain.StockLine, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+stockLineColumns+` FROM stock_lines
		WHERE warehouse_id = $1
		ORDER BY item_kind, item_id`, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock: %w", err)
	}

	lines, err := ScanMany(rows, scanStockLine)
	if err != nil {
		return nil, fmt.Errorf("failed to scan stock: %w", err)
	}
	return lines, nil
}

// GetLines fetches one item's line across warehouses
func (r *ledgerRepository) GetLines(ctx context.Context, warehouseIDs []uuid.UUID, itemID string, kind domain.ItemKind) (map[uuid.UUID]domain.StockLine, error) {
	out := make(map[uuid.UUID]domain.StockLine, len(warehouseIDs))
	if len(warehouseIDs) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(warehouseIDs))
	for _, id := range warehouseIDs {
		ids = append(ids, id.String())
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+stockLineColumns+` FROM stock_lines
		WHERE warehouse_id = ANY($1::uuid[]) AND item_id = $2 AND item_kind = $3`,
		ids, itemID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock lines: %w", err)
	}

	lines, err := ScanMany(rows, scanStockLine)
	if err != nil {
		return nil, fmt.Errorf("failed to scan stock lines: %w", err)
	}
	for _, l := range lines {
		out[l.WarehouseID] = l
	}
	return out, nil
}

// FindReservation retrieves one reservation in any status
func (r *ledgerRepository) FindReservation(ctx context.Context, warehouseID uuid.UUID, reservationID string) (*domain.Reservation, error) {
	row := r.db.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations
		WHERE warehouse_id = $1 AND id = $2`, warehouseID, reservationID)

	res, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError(domain.ErrUnknownReservation, "reservation", reservationID)
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}
	return res, nil
}

// ListReservations pages through a warehouse's reservations, newest first
func (r *ledgerRepository) ListReservations(ctx context.Context, warehouseID uuid.UUID, filter domain.ReservationFilter) ([]*domain.Reservation, int64, error) {
	filter.Normalize()

	where := squirrel.And{squirrel.Eq{"warehouse_id": warehouseID}}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"status": filter.Status})
	}
	if filter.ItemID != "" {
		where = append(where, squirrel.Eq{"item_id": filter.ItemID})
	}

	total, err := r.count(ctx, "reservations", where)
	if err != nil {
		return nil, 0, err
	}

	query, args, err := psql.Select(reservationColumns).From("reservations").Where(where).
		OrderBy("created_at DESC", "id ASC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64((filter.Page - 1) * filter.PageSize)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query reservations: %w", err)
	}

	list, err := ScanMany(rows, func(rows pgx.Rows) (*domain.Reservation, error) { return scanReservation(rows) })
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan reservations: %w", err)
	}
	return list, total, nil
}

// ListMovements pages through the journal of a warehouse, newest first
func (r *ledgerRepository) ListMovements(ctx context.Context, warehouseID uuid.UUID, filter domain.MovementFilter) ([]domain.Movement, int64, error) {
	filter.Normalize()

	where := squirrel.And{squirrel.Eq{"warehouse_id": warehouseID}}
	if filter.ItemID != "" {
		where = append(where, squirrel.Eq{"item_id": filter.ItemID})
	}
	if filter.Type != "" {
		where = append(where, squirrel.Eq{"movement_type": filter.Type})
	}
	if filter.Since != nil {
		where = append(where, squirrel.GtOrEq{"created_at": *filter.Since})
	}
	if filter.Until != nil {
		where = append(where, squirrel.Lt{"created_at": *filter.Until})
	}

	total, err := r.count(ctx, "stock_movements", where)
	if err != nil {
		return nil, 0, err
	}

	query, args, err := psql.Select(movementColumns).From("stock_movements").Where(where).
		OrderBy("created_at DESC", "id ASC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64((filter.Page - 1) * filter.PageSize)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query movements: %w", err)
	}

	list, err := ScanMany(rows, func(rows pgx.Rows) (domain.Movement, error) {
		var m domain.Movement
		err := rows.Scan(&m.ID, &m.WarehouseID, &m.ItemID, &m.ItemKind, &m.Type, &m.Quantity, &m.ReservationID, &m.CreatedAt)
		return m, err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan movements: %w", err)
	}
	return list, total, nil
}

func (r *ledgerRepository) count(ctx context.Context, table string, where squirrel.Sqlizer) (int64, error) {
	query, args, err := psql.Select("COUNT(*)").From(table).Where(where).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return total, nil
}

// stampWarehouse sets a movement timestamp column. With requireActive an
// inactive warehouse aborts the transaction.
func stampWarehouse(ctx context.Context, tx pgx.Tx, id uuid.UUID, column string, at time.Time, requireActive bool) (*domain.Warehouse, error) {
	query := fmt.Sprintf(`UPDATE warehouses SET %s = $2, updated_at = $2 WHERE id = $1`, column)
	if requireActive {
		query += ` AND is_active`
	}
	query += ` RETURNING ` + warehouseColumns

	w, err := scanWarehouse(tx.QueryRow(ctx, query, id, at))
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	var active bool
	if err := tx.QueryRow(ctx, `SELECT is_active FROM warehouses WHERE id = $1`, id).Scan(&active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError(domain.ErrWarehouseNotFound, "warehouse", id.String())
		}
		return nil, err
	}
	return nil, domain.NewConflictError(domain.ErrWarehouseInactive, id.String())
}

func lockActiveWarehouse(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	var active bool
	err := tx.QueryRow(ctx, `SELECT is_active FROM warehouses WHERE id = $1 FOR SHARE`, id).Scan(&active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NewNotFoundError(domain.ErrWarehouseNotFound, "warehouse", id.String())
		}
		return err
	}
	if !active {
		return domain.NewConflictError(domain.ErrWarehouseInactive, id.String())
	}
	return nil
}

// insufficient builds the error for a line whose guard rejected the update
func insufficient(ctx context.Context, tx pgx.Tx, key domain.StockKey, requested int64) error {
	var available int64
	err := tx.QueryRow(ctx, availableSQL, key.WarehouseID, key.ItemID, key.ItemKind).Scan(&available)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	return &domain.InsufficientStockError{
		WarehouseID: key.WarehouseID.String(),
		ItemID:      key.ItemID,
		ItemKind:    key.ItemKind,
		Requested:   requested,
		Available:   available,
	}
}

func queueMovements(batch *pgx.Batch, movements []domain.Movement) {
	for _, m := range movements {
		batch.Queue(insertMovementSQL, movementArgs(m)...)
	}
}

func movementArgs(m domain.Movement) []interface{} {
	return []interface{}{m.ID, m.WarehouseID, m.ItemID, m.ItemKind, m.Type, m.Quantity, m.ReservationID, m.CreatedAt}
}

func execBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return err
		}
	}
	return br.Close()
}

func scanStockLine(rows pgx.Rows) (domain.StockLine, error) {
	var l domain.StockLine
	err := rows.Scan(&l.WarehouseID, &l.ItemID, &l.ItemKind, &l.TotalQuantity, &l.ReservedQuantity, &l.UpdatedAt)
	return l, err
}

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	res := &domain.Reservation{}
	err := row.Scan(&res.ID, &res.WarehouseID, &res.ItemID, &res.ItemKind, &res.Quantity,
		&res.Status, &res.CreatedAt, &res.ExpiresAt, &res.SettledAt)
	if err != nil {
		return nil, err
	}
	return res, nil
}
