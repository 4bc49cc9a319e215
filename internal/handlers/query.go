// internal/handlers/query.go
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ammerola/stock-ledger/internal/core/domain"
	"github.com/ammerola/stock-ledger/internal/core/ports"
)

// QueryHandler serves stock levels, availability and the listings
type QueryHandler struct {
	service ports.QueryService
	logger  *slog.Logger
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(service ports.QueryService, logger *slog.Logger) *QueryHandler {
	return &QueryHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "query")),
	}
}

// StockResponse wraps the levels of one warehouse
type StockResponse struct {
	WarehouseID string              `json:"warehouse_id"`
	Items       []domain.StockLevel `json:"items"`
}

// AvailabilityResponse wraps an availability query
type AvailabilityResponse struct {
	ItemID   string                      `json:"item_id"`
	Branches []domain.BranchAvailability `json:"branches"`
}

// GetStock handles GET /api/v1/warehouses/{id}/stock
func (h *QueryHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondDomainError(w, r, h.logger, "get stock", err)
		return
	}

	levels, err := h.service.GetStock(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, h.logger, "get stock", err)
		return
	}
	if levels == nil {
		levels = []domain.StockLevel{}
	}
	respondJSON(w, h.logger, http.StatusOK, StockResponse{WarehouseID: id.String(), Items: levels})
}

// GetAvailability handles GET /api/v1/items/{itemId}/availability.
// branch_id may repeat and each value may hold a comma separated list.
func (h *QueryHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("itemId")
	q := r.URL.Query()

	result, err := h.service.GetAvailability(r.Context(), itemID, domain.ItemKind(q.Get("kind")), q["branch_id"])
	if err != nil {
		respondDomainError(w, r, h.logger, "get availability", err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, AvailabilityResponse{ItemID: itemID, Branches: result})
}

// GetReservation handles GET /api/v1/warehouses/{id}/reservations/{rid}
func (h *QueryHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondDomainError(w, r, h.logger, "get reservation", err)
		return
	}

	res, err := h.service.GetReservation(r.Context(), id, r.PathValue("rid"))
	if err != nil {
		respondDomainError(w, r, h.logger, "get reservation", err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, res)
}

// ListReservations handles GET /api/v1/warehouses/{id}/reservations
func (h *QueryHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondDomainError(w, r, h.logger, "list reservations", err)
		return
	}
	page, size, err := pageParams(r)
	if err != nil {
		respondDomainError(w, r, h.logger, "list reservations", err)
		return
	}

	q := r.URL.Query()
	result, err := h.service.ListReservations(r.Context(), id, domain.ReservationFilter{
		Status:   domain.ReservationStatus(q.Get("status")),
		ItemID:   q.Get("item_id"),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		respondDomainError(w, r, h.logger, "list reservations", err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, result)
}

// ListMovements handles GET /api/v1/warehouses/{id}/movements
func (h *QueryHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondDomainError(w, r, h.logger, "list movements", err)
		return
	}
	filter, err := parseMovementFilter(r)
	if err != nil {
		respondDomainError(w, r, h.logger, "list movements", err)
		return
	}

	result, err := h.service.ListMovements(r.Context(), id, filter)
	if err != nil {
		respondDomainError(w, r, h.logger, "list movements", err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, result)
}

func parseMovementFilter(r *http.Request) (domain.MovementFilter, error) {
	page, size, err := pageParams(r)
	if err != nil {
		return domain.MovementFilter{}, err
	}

	q := r.URL.Query()
	filter := domain.MovementFilter{
		ItemID:   q.Get("item_id"),
		Type:     domain.MovementType(q.Get("type")),
		Page:     page,
		PageSize: size,
	}
	if filter.Since, err = optionalTime(q.Get("since"), "since"); err != nil {
		return filter, err
	}
	if filter.Until, err = optionalTime(q.Get("until"), "until"); err != nil {
		return filter, err
	}
	return filter, nil
}

func optionalTime(raw, field string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, domain.NewValidationError(field, "must be an RFC 3339 timestamp")
	}
	return &t, nil
}
