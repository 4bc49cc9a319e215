// internal/core/domain/warehouse.go
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Address is the postal address of a warehouse
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Validate checks the mandatory address fields
func (a Address) Validate() error {
	switch {
	case strings.TrimSpace(a.Line1) == "":
		return NewValidationError("address.line1", "is required")
	case strings.TrimSpace(a.City) == "":
		return NewValidationError("address.city", "is required")
	case strings.TrimSpace(a.PostalCode) == "":
		return NewValidationError("address.postal_code", "is required")
	case strings.TrimSpace(a.Country) == "":
		return NewValidationError("address.country", "is required")
	}
	return nil
}

// Warehouse is the stock-holding location of a branch. A branch owns at most one.
type Warehouse struct {
	ID            uuid.UUID  `json:"id"`
	BranchID      string     `json:"branch_id"`
	ManagerID     string     `json:"manager_id"`
	Address       Address    `json:"address"`
	IsActive      bool       `json:"is_active"`
	LastIncomeAt  *time.Time `json:"last_income_at,omitempty"`
	LastOutcomeAt *time.Time `json:"last_outcome_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Validate performs domain validation on the warehouse
func (w *Warehouse) Validate() error {
	if strings.TrimSpace(w.BranchID) == "" {
		return NewValidationError("branch_id", "is required")
	}
	if strings.TrimSpace(w.ManagerID) == "" {
		return NewValidationError("manager_id", "is required")
	}
	return w.Address.Validate()
}

// PrepareForStorage assigns identity and timestamps for a new warehouse
func (w *Warehouse) PrepareForStorage(now time.Time) {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	w.BranchID = strings.TrimSpace(w.BranchID)
	w.ManagerID = strings.TrimSpace(w.ManagerID)
	if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}
	w.UpdatedAt = now
}

// WarehouseFilter narrows warehouse listings
type WarehouseFilter struct {
	Active   *bool
	Page     int
	PageSize int
}

// Normalize clamps paging to sane bounds
func (f *WarehouseFilter) Normalize() {
	f.Page, f.PageSize = normalizePage(f.Page, f.PageSize)
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 50
	}
	if size > 500 {
		size = 500
	}
	return page, size
}
