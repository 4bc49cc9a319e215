// internal/core/services/snapshot.go
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/stock-ledger/internal/core/domain"
	"github.com/ammerola/stock-ledger/internal/core/ports"
	"github.com/ammerola/stock-ledger/internal/export"
)

// SnapshotService renders stock workbooks and archives them
type SnapshotService struct {
	warehouses ports.WarehouseRepository
	ledger     ports.LedgerRepository
	archive    ports.SnapshotArchive
	now        func() time.Time
	logger     *slog.Logger
}

// NewSnapshotService creates a new snapshot service
func NewSnapshotService(warehouses ports.WarehouseRepository, ledger ports.LedgerRepository, archive ports.SnapshotArchive,
	opts LedgerOptions, logger *slog.Logger) *SnapshotService {
	opts = opts.withDefaults()
	return &SnapshotService{
		warehouses: warehouses,
		ledger:     ledger,
		archive:    archive,
		now:        opts.Now,
		logger:     logger.With(slog.String("service", "snapshot")),
	}
}

// Workbook renders the current stock of a warehouse
func (s *SnapshotService) Workbook(ctx context.Context, warehouseID uuid.UUID) ([]byte, *domain.Warehouse, error) {
	w, err := s.warehouses.FindByID(ctx, warehouseID)
	if err != nil {
		return nil, nil, err
	}

	lines, err := s.ledger.GetStock(ctx, warehouseID)
	if err != nil {
		return nil, nil, err
	}
	levels := make([]domain.StockLevel, 0, len(lines))
	for _, l := range lines {
		levels = append(levels, domain.LevelOf(l))
	}

	data, err := export.StockWorkbook(w, levels, s.now())
	if err != nil {
		return nil, nil, err
	}
	return data, w, nil
}

// Snapshot archives one warehouse's workbook and returns its location
func (s *SnapshotService) Snapshot(ctx context.Context, warehouseID uuid.UUID) (string, error) {
	data, _, err := s.Workbook(ctx, warehouseID)
	if err != nil {
		return "", err
	}

	key := export.SnapshotKey(warehouseID, s.now())
	location, err := s.archive.Upload(ctx, key, bytes.NewReader(data), export.ContentType)
	if err != nil {
		return "", fmt.Errorf("failed to archive snapshot: %w", err)
	}

	s.logger.InfoContext(ctx, "stock snapshot archived",
		slog.String("warehouse_id", warehouseID.String()),
		slog.String("location", location))

	return location, nil
}

// SnapshotAll archives every active warehouse. It continues past failures
// and returns them joined.
func (s *SnapshotService) SnapshotAll(ctx context.Context) (int, error) {
	active := true
	filter := domain.WarehouseFilter{Active: &active, Page: 1, PageSize: 500}

	var (
		done int
		errs []error
	)
	for {
		list, total, err := s.warehouses.List(ctx, filter)
		if err != nil {
			return done, err
		}
		for _, w := range list {
			if _, err := s.Snapshot(ctx, w.ID); err != nil {
				errs = append(errs, fmt.Errorf("warehouse %s: %w", w.ID, err))
				continue
			}
			done++
		}
		if int64(filter.Page*filter.PageSize) >= total || len(list) == 0 {
			break
		}
		filter.Page++
	}

	return done, errors.Join(errs...)
}
