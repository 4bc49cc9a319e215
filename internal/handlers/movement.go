// internal/handlers/movement.go
package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/stock-ledger/internal/core/domain"
	"github.com/ammerola/stock-ledger/internal/core/ports"
	"github.com/ammerola/stock-ledger/internal/pkg/logger"
)

// MovementHandler serves stock movements and reservation transitions
type MovementHandler struct {
	service ports.MovementService
	now     func() time.Time
	logger  *slog.Logger
}

// NewMovementHandler creates a new movement handler
func NewMovementHandler(service ports.MovementService, logger *slog.Logger) *MovementHandler {
	return &MovementHandler{
		service: service,
		now:     time.Now,
		logger:  logger.With(slog.String("handler", "movement")),
	}
}

// MovementRequest is the body of income and outcome
type MovementRequest struct {
	Items []domain.MovementItem `json:"items"`
}

// maxTTLSeconds caps ttl_seconds at one year
const maxTTLSeconds int64 = 366 * 24 * 60 * 60

// ReserveRequest is the body of a reservation. ExpiresAt and TTLSeconds are
// mutually exclusive; with neither the server default applies.
type ReserveRequest struct {
	ReservationID string          `json:"reservation_id"`
	ItemID        string          `json:"item_id"`
	ItemKind      domain.ItemKind `json:"item_kind,omitempty"`
	Quantity      int64           `json:"quantity"`
	ExpiresAt     *time.Time      `json:"expires_at,omitempty"`
	TTLSeconds    *int64          `json:"ttl_seconds,omitempty"`
}

// ToDomain resolves the expiry against now
func (req *ReserveRequest) ToDomain(now time.Time) (domain.ReserveRequest, error) {
	out := domain.ReserveRequest{
		ItemID:        req.ItemID,
		ItemKind:      req.ItemKind,
		Quantity:      req.Quantity,
		ReservationID: req.ReservationID,
		ExpiresAt:     req.ExpiresAt,
	}

	if req.TTLSeconds != nil {
		if req.ExpiresAt != nil {
			return out, domain.NewValidationError("ttl_seconds", "cannot be combined with expires_at")
		}
		if *req.TTLSeconds <= 0 {
			return out, domain.NewValidationError("ttl_seconds", "must be positive")
		}
		if *req.TTLSeconds > maxTTLSeconds {
			return out, domain.NewValidationError("ttl_seconds", fmt.Sprintf("must be at most %d", maxTTLSeconds))
		}
		at := now.Add(time.Duration(*req.TTLSeconds) * time.Second)
		out.ExpiresAt = &at
	}
	return out, nil
}

// Income handles POST /api/v1/warehouses/{id}/income
func (h *MovementHandler) Income(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, "income", h.service.Income)
}

// Outcome handles POST /api/v1/warehouses/{id}/outcome
func (h *MovementHandler) Outcome(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, "outcome", h.service.Outcome)
}

type moveFunc func(ctx context.Context, id uuid.UUID, items []domain.MovementItem) (*domain.Warehouse, error)

func (h *MovementHandler) move(w http.ResponseWriter, r *http.Request, op string, fn moveFunc) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondDomainError(w, r, h.logger, op, err)
		return
	}

	var req MovementRequest
	if err := decodeJSON(r, &req); err != nil {
		respondDomainError(w, r, h.logger, op, err)
		return
	}

	warehouse, err := fn(r.Context(), id, req.Items)
	if err != nil {
		respondDomainError(w, r, h.logger, op, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, warehouse)
}

// Reserve handles POST /api/v1/warehouses/{id}/reservations
func (h *MovementHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondDomainError(w, r, h.logger, "reserve", err)
		return
	}

	var body ReserveRequest
	if err := decodeJSON(r, &body); err != nil {
		respondDomainError(w, r, h.logger, "reserve", err)
		return
	}
	req, err := body.ToDomain(h.now())
	if err != nil {
		respondDomainError(w, r, h.logger, "reserve", err)
		return
	}
	req.WarehouseID = id

	ctx := logger.WithValue(r.Context(), logger.ContextKeyReservationID, req.ReservationID)
	res, err := h.service.Reserve(ctx, req)
	if err != nil {
		respondDomainError(w, r.WithContext(ctx), h.logger, "reserve", err)
		return
	}

	w.Header().Set("Location", "/api/v1/warehouses/"+id.String()+"/reservations/"+res.ID)
	respondJSON(w, h.logger, http.StatusCreated, res)
}

// Release handles POST /api/v1/warehouses/{id}/reservations/{rid}/release
func (h *MovementHandler) Release(w http.ResponseWriter, r *http.Request) {
	h.settle(w, r, "release", h.service.Release)
}

// Consume handles POST /api/v1/warehouses/{id}/reservations/{rid}/consume
func (h *MovementHandler) Consume(w http.ResponseWriter, r *http.Request) {
	h.settle(w, r, "consume", h.service.Consume)
}

type settleFunc func(ctx context.Context, id uuid.UUID, reservationID string) (*domain.Reservation, error)

func (h *MovementHandler) settle(w http.ResponseWriter, r *http.Request, op string, fn settleFunc) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondDomainError(w, r, h.logger, op, err)
		return
	}
	rid := r.PathValue("rid")

	ctx := logger.WithValue(r.Context(), logger.ContextKeyReservationID, rid)
	res, err := fn(ctx, id, rid)
	if err != nil {
		respondDomainError(w, r.WithContext(ctx), h.logger, op, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, res)
}
