// Package jobs contains the maintenance jobs run by the scheduler.
package jobs

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/devask/devask-hub/pkg/logger"
)

// Purger removes expired cache entries.
type Purger interface {
	Purge(ctx context.Context) (int, error)
}

// PurgeCacheJob sweeps expired entries from the in-process cache.
type PurgeCacheJob struct {
	cache  Purger
	logger *logger.Logger

	total atomic.Int64
}

// NewPurgeCacheJob creates the job.
func NewPurgeCacheJob(cache Purger, log *logger.Logger) *PurgeCacheJob {
	if log == nil {
		log = logger.Default()
	}
	return &PurgeCacheJob{cache: cache, logger: log}
}

func (j *PurgeCacheJob) Name() string { return "purge_expired_cache" }

// Run performs one sweep.
func (j *PurgeCacheJob) Run(ctx context.Context) error {
	removed, err := j.cache.Purge(ctx)
	if err != nil {
		return fmt.Errorf("purge cache: %w", err)
	}
	if removed > 0 {
		j.total.Add(int64(removed))
		j.logger.Debug("expired cache entries purged", logger.Int("removed", removed))
	}
	return nil
}

// Removed returns how many entries all runs have purged.
func (j *PurgeCacheJob) Removed() int64 {
	return j.total.Load()
}
