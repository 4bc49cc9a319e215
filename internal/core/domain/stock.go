// internal/core/domain/stock.go
package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxQuantity bounds every requested quantity and every line total. It is
// the largest integer a float64 holds exactly, so JSON clients keep precision.
const MaxQuantity int64 = 1 << 53

// ItemKind distinguishes sellable products from consumable materials
type ItemKind string

const (
	ItemKindProduct  ItemKind = "product"
	ItemKindMaterial ItemKind = "material"
)

// IsValid reports whether k is a known item kind
func (k ItemKind) IsValid() bool {
	return k == ItemKindProduct || k == ItemKindMaterial
}

// ParseItemKind accepts an empty value as product.
func ParseItemKind(s string) (ItemKind, error) {
	k := ItemKind(strings.ToLower(strings.TrimSpace(s)))
	if k == "" {
		return ItemKindProduct, nil
	}
	if !k.IsValid() {
		return "", NewValidationError("item_kind", "must be product or material")
	}
	return k, nil
}

// StockKey identifies a stock line
type StockKey struct {
	WarehouseID uuid.UUID
	ItemID      string
	ItemKind    ItemKind
}

// Less orders keys by warehouse, item kind and item id. Batches lock lines in this order.
func (k StockKey) Less(o StockKey) bool {
	if k.WarehouseID != o.WarehouseID {
		return k.WarehouseID.String() < o.WarehouseID.String()
	}
	if k.ItemKind != o.ItemKind {
		return k.ItemKind < o.ItemKind
	}
	return k.ItemID < o.ItemID
}

// StockLine holds the quantities of one item in one warehouse.
// 0 <= ReservedQuantity <= TotalQuantity at every committed state.
type StockLine struct {
	WarehouseID      uuid.UUID `json:"warehouse_id"`
	ItemID           string    `json:"item_id"`
	ItemKind         ItemKind  `json:"item_kind"`
	TotalQuantity    int64     `json:"total_quantity"`
	ReservedQuantity int64     `json:"reserved_quantity"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Key returns the line's identity
func (l StockLine) Key() StockKey {
	return StockKey{WarehouseID: l.WarehouseID, ItemID: l.ItemID, ItemKind: l.ItemKind}
}

// Available is the quantity that may still be moved out or reserved
func (l StockLine) Available() int64 {
	return l.TotalQuantity - l.ReservedQuantity
}

// Consistent reports whether the line satisfies the quantity invariant
func (l StockLine) Consistent() bool {
	return l.ReservedQuantity >= 0 && l.ReservedQuantity <= l.TotalQuantity
}

// StockLevel is the read model returned by stock queries
type StockLevel struct {
	ItemID    string   `json:"item_id"`
	ItemKind  ItemKind `json:"item_kind"`
	Total     int64    `json:"total"`
	Reserved  int64    `json:"reserved"`
	Available int64    `json:"available"`
}

// LevelOf projects a stock line into its read model
func LevelOf(l StockLine) StockLevel {
	return StockLevel{
		ItemID:    l.ItemID,
		ItemKind:  l.ItemKind,
		Total:     l.TotalQuantity,
		Reserved:  l.ReservedQuantity,
		Available: l.Available(),
	}
}

// BranchAvailability is one entry of an availability query
type BranchAvailability struct {
	BranchID        string     `json:"branch_id"`
	WarehouseID     *uuid.UUID `json:"warehouse_id,omitempty"`
	ItemID          string     `json:"item_id"`
	ItemKind        ItemKind   `json:"item_kind"`
	Available       int64      `json:"available"`
	HasWarehouse    bool       `json:"has_warehouse"`
	WarehouseActive bool       `json:"warehouse_active"`
}

// MovementItem is one line of an income or outcome batch
type MovementItem struct {
	ItemID   string   `json:"item_id"`
	ItemKind ItemKind `json:"item_kind"`
	Quantity int64    `json:"quantity"`
}

// Validate checks a single batch entry
func (m MovementItem) Validate() error {
	if strings.TrimSpace(m.ItemID) == "" {
		return NewValidationError("item_id", "is required")
	}
	if !m.ItemKind.IsValid() {
		return NewValidationError("item_kind", "must be product or material")
	}
	return validateQuantity(m.Quantity)
}

func validateQuantity(q int64) error {
	if q <= 0 {
		return NewValidationError("quantity", "must be greater than 0")
	}
	if q > MaxQuantity {
		return NewValidationError("quantity", fmt.Sprintf("must be at most %d", MaxQuantity))
	}
	return nil
}

// LineOverflow is the error of an income that would push a line total past MaxQuantity
func LineOverflow(itemID string, kind ItemKind) *ValidationError {
	return NewValidationError("quantity",
		fmt.Sprintf("would raise the %s %s total past %d", kind, itemID, MaxQuantity))
}

// ExceedsMax reports whether adding delta to total would pass MaxQuantity
func ExceedsMax(total, delta int64) bool {
	return total > MaxQuantity-delta
}

// NormalizeItems validates a batch, merges repeated (item, kind) pairs and
// returns the entries in lock order.
func NormalizeItems(items []MovementItem) ([]MovementItem, error) {
	if len(items) == 0 {
		return nil, NewValidationError("items", "must not be empty")
	}

	merged := make(map[StockKey]int64, len(items))
	for _, it := range items {
		it.ItemID = strings.TrimSpace(it.ItemID)
		if it.ItemKind == "" {
			it.ItemKind = ItemKindProduct
		}
		if err := it.Validate(); err != nil {
			return nil, err
		}
		key := StockKey{ItemID: it.ItemID, ItemKind: it.ItemKind}
		if ExceedsMax(merged[key], it.Quantity) {
			return nil, NewValidationError("quantity",
				fmt.Sprintf("of %s %s must total at most %d", it.ItemKind, it.ItemID, MaxQuantity))
		}
		merged[key] += it.Quantity
	}

	keys := make([]StockKey, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	out := make([]MovementItem, 0, len(keys))
	for _, k := range keys {
		out = append(out, MovementItem{ItemID: k.ItemID, ItemKind: k.ItemKind, Quantity: merged[k]})
	}
	return out, nil
}

// ItemRef names a catalog item
type ItemRef struct {
	ItemID   string   `json:"item_id"`
	ItemKind ItemKind `json:"item_kind"`
}

// RefsOf extracts the catalog references of a batch
func RefsOf(items []MovementItem) []ItemRef {
	refs := make([]ItemRef, 0, len(items))
	for _, it := range items {
		refs = append(refs, ItemRef{ItemID: it.ItemID, ItemKind: it.ItemKind})
	}
	return refs
}
