// internal/core/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every error surfaced by the ledger matches exactly one
// of these through errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrConcurrency       = errors.New("concurrent modification")
)

// Specific reasons carried by the categorized errors.
var (
	ErrBranchNotFound       = errors.New("branch not found")
	ErrWarehouseNotFound    = errors.New("warehouse not found")
	ErrItemNotFound         = errors.New("item not found")
	ErrUnknownReservation   = errors.New("unknown reservation")
	ErrDuplicateWarehouse   = errors.New("warehouse already exists for branch")
	ErrDuplicateReservation = errors.New("reservation already exists")
	ErrWarehouseInactive    = errors.New("warehouse is inactive")
)

// ValidationError reports malformed input.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports a missing branch, warehouse, item or reservation.
type NotFoundError struct {
	Reason   error
	Resource string
	ID       string
}

func NewNotFoundError(reason error, resource, id string) *NotFoundError {
	return &NotFoundError{Reason: reason, Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Reason.Error()
	}
	return fmt.Sprintf("%s: %s %s", e.Reason, e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func (e *NotFoundError) Unwrap() error { return e.Reason }

// ConflictError reports a uniqueness or state conflict.
type ConflictError struct {
	Reason error
	ID     string
}

func NewConflictError(reason error, id string) *ConflictError {
	return &ConflictError{Reason: reason, ID: id}
}

func (e *ConflictError) Error() string {
	if e.ID == "" {
		return e.Reason.Error()
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.ID)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

func (e *ConflictError) Unwrap() error { return e.Reason }

// InsufficientStockError is returned when a movement or reservation asks for
// more than the line's available quantity.
type InsufficientStockError struct {
	WarehouseID string
	ItemID      string
	ItemKind    ItemKind
	Requested   int64
	Available   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s %s in warehouse %s: requested %d, available %d",
		e.ItemKind, e.ItemID, e.WarehouseID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// ConcurrencyError is returned once contention retries are exhausted.
type ConcurrencyError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *ConcurrencyError) Error() string {
	if e.Attempts > 0 {
		return fmt.Sprintf("%s: concurrent modification after %d attempts", e.Op, e.Attempts)
	}
	return fmt.Sprintf("%s: concurrent modification", e.Op)
}

func (e *ConcurrencyError) Is(target error) bool { return target == ErrConcurrency }

func (e *ConcurrencyError) Unwrap() error { return e.Err }

// ErrorCode returns a stable machine readable code for err.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrBranchNotFound):
		return "branch_not_found"
	case errors.Is(err, ErrItemNotFound):
		return "item_not_found"
	case errors.Is(err, ErrUnknownReservation):
		return "unknown_reservation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrDuplicateWarehouse):
		return "duplicate_warehouse"
	case errors.Is(err, ErrDuplicateReservation):
		return "duplicate_reservation"
	case errors.Is(err, ErrWarehouseInactive):
		return "warehouse_inactive"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrConcurrency):
		return "concurrency_error"
	default:
		return "internal_error"
	}
}
