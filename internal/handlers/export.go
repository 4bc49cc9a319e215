// internal/handlers/export.go
package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ammerola/stock-ledger/internal/core/ports"
	"github.com/ammerola/stock-ledger/internal/export"
)

// ExportHandler serves workbook downloads and queues archived snapshots
type ExportHandler struct {
	exporter   ports.StockExporter
	warehouses ports.WarehouseService
	scheduler  ports.SnapshotScheduler
	logger     *slog.Logger
}

// NewExportHandler creates a new export handler. A nil scheduler disables
// snapshot requests.
func NewExportHandler(exporter ports.StockExporter, warehouses ports.WarehouseService,
	scheduler ports.SnapshotScheduler, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		exporter:   exporter,
		warehouses: warehouses,
		scheduler:  scheduler,
		logger:     logger.With(slog.String("handler", "export")),
	}
}

// SnapshotQueuedResponse acknowledges a queued snapshot
type SnapshotQueuedResponse struct {
	TaskID      string `json:"task_id"`
	WarehouseID string `json:"warehouse_id"`
	Status      string `json:"status"`
}

// ExportStock handles GET /api/v1/warehouses/{id}/stock/export
func (h *ExportHandler) ExportStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathUUID(r, "id")
	if err != nil {
		respondDomainError(w, r, h.logger, "export stock", err)
		return
	}

	data, warehouse, err := h.exporter.Workbook(ctx, id)
	if err != nil {
		respondDomainError(w, r, h.logger, "export stock", err)
		return
	}

	filename := fmt.Sprintf("stock_%s_%s.xlsx", warehouse.BranchID, time.Now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(data); err != nil {
		h.logger.ErrorContext(ctx, "failed to write workbook", slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "stock exported",
		slog.String("warehouse_id", id.String()),
		slog.Int("bytes", len(data)))
}

// RequestSnapshot handles POST /api/v1/warehouses/{id}/stock/snapshots
func (h *ExportHandler) RequestSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.scheduler == nil {
		respondError(w, h.logger, http.StatusServiceUnavailable, "snapshots_disabled", "snapshots are not configured")
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		respondDomainError(w, r, h.logger, "request snapshot", err)
		return
	}
	if _, err := h.warehouses.GetWarehouse(ctx, id); err != nil {
		respondDomainError(w, r, h.logger, "request snapshot", err)
		return
	}

	taskID, err := h.scheduler.EnqueueSnapshot(ctx, id)
	if err != nil {
		respondDomainError(w, r, h.logger, "request snapshot", err)
		return
	}

	respondJSON(w, h.logger, http.StatusAccepted, SnapshotQueuedResponse{
		TaskID:      taskID,
		WarehouseID: id.String(),
		Status:      "queued",
	})
}
