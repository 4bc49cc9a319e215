// internal/adapters/directory/cached.go
package directory

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ammerola/stock-ledger/internal/core/ports"
)

// CachedBranchDirectory remembers branches known to exist. Unknown branches
// are never cached so a newly created branch is visible immediately.
type CachedBranchDirectory struct {
	next   ports.BranchDirectory
	cache  ports.CacheRepository
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

// NewCachedBranchDirectory wraps next with a cache
func NewCachedBranchDirectory(next ports.BranchDirectory, cache ports.CacheRepository, ttl time.Duration, logger *slog.Logger) *CachedBranchDirectory {
	return &CachedBranchDirectory{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "branch_cache")),
	}
}

func branchKey(branchID string) string {
	return "branch:" + branchID
}

// BranchExists consults the cache before the directory
func (d *CachedBranchDirectory) BranchExists(ctx context.Context, branchID string) (bool, error) {
	var known bool
	if err := d.cache.Get(ctx, branchKey(branchID), &known); err == nil && known {
		return true, nil
	}

	v, err, _ := d.group.Do(branchID, func() (interface{}, error) {
		return d.next.BranchExists(ctx, branchID)
	})
	if err != nil {
		return false, err
	}

	exists := v.(bool)
	if exists {
		if err := d.cache.SetWithTTL(ctx, branchKey(branchID), true, d.ttl); err != nil {
			d.logger.WarnContext(ctx, "failed to cache branch",
				slog.String("branch_id", branchID),
				slog.String("error", err.Error()))
		}
	}
	return exists, nil
}
