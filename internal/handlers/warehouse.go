// internal/handlers/warehouse.go
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/ammerola/stock-ledger/internal/core/domain"
	"github.com/ammerola/stock-ledger/internal/core/ports"
)

// WarehouseHandler serves the warehouse registry
type WarehouseHandler struct {
	service ports.WarehouseService
	logger  *slog.Logger
}

// NewWarehouseHandler creates a new warehouse handler
func NewWarehouseHandler(service ports.WarehouseService, logger *slog.Logger) *WarehouseHandler {
	return &WarehouseHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "warehouse")),
	}
}

// CreateWarehouse handles POST /api/v1/warehouses
func (h *WarehouseHandler) CreateWarehouse(w http.ResponseWriter, r *http.Request) {
	var req ports.CreateWarehouseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondDomainError(w, r, h.logger, "create warehouse", err)
		return
	}

	warehouse, err := h.service.CreateWarehouse(r.Context(), req)
	if err != nil {
		respondDomainError(w, r, h.logger, "create warehouse", err)
		return
	}

	w.Header().Set("Location", "/api/v1/warehouses/"+warehouse.ID.String())
	respondJSON(w, h.logger, http.StatusCreated, warehouse)
}

// GetWarehouse handles GET /api/v1/warehouses/{id}
func (h *WarehouseHandler) GetWarehouse(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondDomainError(w, r, h.logger, "get warehouse", err)
		return
	}

	warehouse, err := h.service.GetWarehouse(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, h.logger, "get warehouse", err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, warehouse)
}

// GetBranchWarehouse handles GET /api/v1/branches/{branchId}/warehouse
func (h *WarehouseHandler) GetBranchWarehouse(w http.ResponseWriter, r *http.Request) {
	warehouse, err := h.service.GetByBranch(r.Context(), r.PathValue("branchId"))
	if err != nil {
		respondDomainError(w, r, h.logger, "get branch warehouse", err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, warehouse)
}

// ListWarehouses handles GET /api/v1/warehouses
func (h *WarehouseHandler) ListWarehouses(w http.ResponseWriter, r *http.Request) {
	page, size, err := pageParams(r)
	if err != nil {
		respondDomainError(w, r, h.logger, "list warehouses", err)
		return
	}
	filter := domain.WarehouseFilter{Page: page, PageSize: size}

	if raw := r.URL.Query().Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			respondDomainError(w, r, h.logger, "list warehouses",
				domain.NewValidationError("active", "must be a boolean"))
			return
		}
		filter.Active = &active
	}

	result, err := h.service.ListWarehouses(r.Context(), filter)
	if err != nil {
		respondDomainError(w, r, h.logger, "list warehouses", err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, result)
}

// ActivateWarehouse handles POST /api/v1/warehouses/{id}/activate
func (h *WarehouseHandler) ActivateWarehouse(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "activate warehouse", h.service.Activate)
}

// DeactivateWarehouse handles POST /api/v1/warehouses/{id}/deactivate
func (h *WarehouseHandler) DeactivateWarehouse(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "deactivate warehouse", h.service.Deactivate)
}

func (h *WarehouseHandler) toggle(w http.ResponseWriter, r *http.Request, op string,
	fn func(ctx context.Context, id uuid.UUID) (*domain.Warehouse, error)) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondDomainError(w, r, h.logger, op, err)
		return
	}

	warehouse, err := fn(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, h.logger, op, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, warehouse)
}
