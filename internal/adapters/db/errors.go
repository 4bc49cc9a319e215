// internal/adapters/db/errors.go
package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ammerola/stock-ledger/internal/core/domain"
)

// Postgres SQLSTATE codes the ledger reacts to.
const (
	pgUniqueViolation      = "23505"
	pgCheckViolation       = "23514"
	pgForeignKeyViolation  = "23503"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgNumericOutOfRange    = "22003"
)

// reservedCheck is the only CHECK whose violation means a line ran short.
const reservedCheck = "stock_lines_reserved_check"

// checkFields names the request field behind each remaining CHECK constraint.
var checkFields = map[string]string{
	"stock_lines_item_kind_check":     "item_kind",
	"stock_lines_total_max_check":     "quantity",
	"reservations_quantity_check":     "quantity",
	"reservations_quantity_max_check": "quantity",
	"stock_movements_quantity_check":  "quantity",
	"reservations_status_check":       "status",
	"stock_movements_type_check":      "movement_type",
}

// IsRetryable reports whether err is a transient contention failure.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
		return true
	}
	return false
}

// classify translates driver errors into the domain taxonomy. Errors that
// already belong to the taxonomy pass through untouched.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
		return &domain.ConcurrencyError{Op: op, Err: err}
	case pgCheckViolation:
		if pgErr.ConstraintName == reservedCheck {
			return &domain.InsufficientStockError{}
		}
		return domain.NewValidationError(checkFields[pgErr.ConstraintName],
			fmt.Sprintf("violates %s", pgErr.ConstraintName))
	case pgNumericOutOfRange:
		return domain.NewValidationError("quantity", "is out of range")
	case pgForeignKeyViolation:
		return domain.NewNotFoundError(domain.ErrWarehouseNotFound, "warehouse", "")
	}
	return err
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgUniqueViolation && (constraint == "" || pgErr.ConstraintName == constraint)
}
