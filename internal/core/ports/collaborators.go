// internal/core/ports/collaborators.go
package ports

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/ammerola/stock-ledger/internal/core/domain"
)

// BranchDirectory answers whether a branch exists in the organization service.
type BranchDirectory interface {
	BranchExists(ctx context.Context, branchID string) (bool, error)
}

// Catalog resolves item references against the product and material catalogs.
type Catalog interface {
	// MissingItems returns the refs the catalog does not know. Empty means all exist.
	MissingItems(ctx context.Context, refs []domain.ItemRef) ([]domain.ItemRef, error)
}

// SnapshotArchive stores rendered stock snapshots.
type SnapshotArchive interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// SnapshotScheduler queues asynchronous stock snapshots.
type SnapshotScheduler interface {
	EnqueueSnapshot(ctx context.Context, warehouseID uuid.UUID) (string, error)
}
