// internal/adapters/db/warehouse_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/stock-ledger/internal/core/domain"
	"github.com/ammerola/stock-ledger/internal/core/ports"
)

const warehouseColumns = `id, branch_id, manager_id,
	address_line1, address_line2, city, region, postal_code, country,
	is_active, last_income_at, last_outcome_at, created_at, updated_at`

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// warehouseRepository implements ports.WarehouseRepository
type warehouseRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewWarehouseRepository creates a new warehouse repository
func NewWarehouseRepository(db *Database, logger *slog.Logger) ports.WarehouseRepository {
	return &warehouseRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "warehouse")),
	}
}

// Create registers a warehouse; the branch_id unique constraint rejects duplicates.
func (r *warehouseRepository) Create(ctx context.Context, w *domain.Warehouse) error {
	query := `
		INSERT INTO warehouses (
			id, branch_id, manager_id,
			address_line1, address_line2, city, region, postal_code, country,
			is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.Exec(ctx, query,
		w.ID, w.BranchID, w.ManagerID,
		w.Address.Line1, w.Address.Line2, w.Address.City, w.Address.Region,
		w.Address.PostalCode, w.Address.Country,
		w.IsActive, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "warehouses_branch_id_key") {
			return domain.NewConflictError(domain.ErrDuplicateWarehouse, w.BranchID)
		}
		return fmt.Errorf("failed to create warehouse: %w", err)
	}

	r.logger.DebugContext(ctx, "warehouse created",
		slog.String("warehouse_id", w.ID.String()),
		slog.String("branch_id", w.BranchID))

	return nil
}

// FindByID retrieves a warehouse by id
func (r *warehouseRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Warehouse, error) {
	row := r.db.QueryRow(ctx, `SELECT `+warehouseColumns+` FROM warehouses WHERE id = $1`, id)
	w, err := scanWarehouse(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError(domain.ErrWarehouseNotFound, "warehouse", id.String())
		}
		return nil, fmt.Errorf("failed to find warehouse: %w", err)
	}
	return w, nil
}

// FindByBranch retrieves the warehouse owned by a branch
func (r *warehouseRepository) FindByBranch(ctx context.Context, branchID string) (*domain.Warehouse, error) {
	row := r.db.QueryRow(ctx, `SELECT `+warehouseColumns+` FROM warehouses WHERE branch_id = $1`, branchID)
	w, err := scanWarehouse(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError(domain.ErrWarehouseNotFound, "branch", branchID)
		}
		return nil, fmt.Errorf("failed to find warehouse by branch: %w", err)
	}
	return w, nil
}

// FindByBranches resolves many branches at once
func (r *warehouseRepository) FindByBranches(ctx context.Context, branchIDs []string) (map[string]*domain.Warehouse, error) {
	out := make(map[string]*domain.Warehouse, len(branchIDs))
	if len(branchIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+warehouseColumns+` FROM warehouses WHERE branch_id = ANY($1)`, branchIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query warehouses by branch: %w", err)
	}

	list, err := ScanMany(rows, func(rows pgx.Rows) (*domain.Warehouse, error) { return scanWarehouse(rows) })
	if err != nil {
		return nil, fmt.Errorf("failed to scan warehouses: %w", err)
	}
	for _, w := range list {
		out[w.BranchID] = w
	}
	return out, nil
}

// List retrieves warehouses with filtering and pagination
func (r *warehouseRepository) List(ctx context.Context, filter domain.WarehouseFilter) ([]*domain.Warehouse, int64, error) {
	filter.Normalize()

	where := squirrel.And{}
	if filter.Active != nil {
		where = append(where, squirrel.Eq{"is_active": *filter.Active})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("warehouses").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count warehouses: %w", err)
	}

	query, args, err := psql.Select(warehouseColumns).From("warehouses").Where(where).
		OrderBy("created_at ASC", "id ASC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64((filter.Page - 1) * filter.PageSize)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query warehouses: %w", err)
	}

	list, err := ScanMany(rows, func(rows pgx.Rows) (*domain.Warehouse, error) { return scanWarehouse(rows) })
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan warehouses: %w", err)
	}
	return list, total, nil
}

// SetActive flips the active flag; stock lines are untouched
func (r *warehouseRepository) SetActive(ctx context.Context, id uuid.UUID, active bool, at time.Time) (*domain.Warehouse, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE warehouses SET is_active = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+warehouseColumns, id, active, at)

	w, err := scanWarehouse(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError(domain.ErrWarehouseNotFound, "warehouse", id.String())
		}
		return nil, fmt.Errorf("failed to update warehouse: %w", err)
	}

	r.logger.DebugContext(ctx, "warehouse activity changed",
		slog.String("warehouse_id", id.String()),
		slog.Bool("is_active", active))

	return w, nil
}

func scanWarehouse(row pgx.Row) (*domain.Warehouse, error) {
	w := &domain.Warehouse{}
	err := row.Scan(
		&w.ID, &w.BranchID, &w.ManagerID,
		&w.Address.Line1, &w.Address.Line2, &w.Address.City, &w.Address.Region,
		&w.Address.PostalCode, &w.Address.Country,
		&w.IsActive, &w.LastIncomeAt, &w.LastOutcomeAt, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return w, nil
}
