// Package prefetch issues look-ahead snapshot fetches so timeline scrubbing
// hits a warm cache.
package prefetch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/liyue/tracemap/internal/domain"
)

// Fetcher is the slice of the repository the controller needs.
type Fetcher interface {
	Timestamps(ctx context.Context) ([]int64, error)
	ContactsAt(ctx context.Context, timestamp int64) ([]domain.ContactPair, error)
	HasContactsAt(timestamp int64) bool
}

// Controller warms the contacts cache ahead of the timestamp currently on
// display. Prefetching is a latency-hiding optimization, not a user-visible
// operation: it never blocks, and failures are logged, not surfaced. Cached
// aggregates are immutable, so a prefetch can never corrupt an entry a
// concurrent display read is holding.
type Controller struct {
	source Fetcher
	logger *slog.Logger

	mu       sync.Mutex
	inflight map[int64]struct{}
	wg       sync.WaitGroup
}

// New builds a Controller over the given fetcher.
func New(source Fetcher, logger *slog.Logger) *Controller {
	return &Controller{
		source:   source,
		logger:   logger,
		inflight: make(map[int64]struct{}),
	}
}

// Prefetch warms the snapshot for a timestamp. No-op when the snapshot is
// already cached or a prefetch for it is in flight; otherwise the fetch runs
// on its own goroutine, detached from the caller's cancellation.
func (c *Controller) Prefetch(ctx context.Context, timestamp int64) {
	if c.source.HasContactsAt(timestamp) {
		return
	}

	c.mu.Lock()
	if _, busy := c.inflight[timestamp]; busy {
		c.mu.Unlock()
		return
	}
	c.inflight[timestamp] = struct{}{}
	c.mu.Unlock()

	fetchCtx := context.WithoutCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			c.mu.Lock()
			delete(c.inflight, timestamp)
			c.mu.Unlock()
		}()

		if _, err := c.source.ContactsAt(fetchCtx, timestamp); err != nil {
			c.logger.Debug("prefetch failed", "timestamp", timestamp, "error", err)
		}
	}()
}

// PrefetchNext warms the timestamp immediately after current in the known
// sequence, if there is one.
func (c *Controller) PrefetchNext(ctx context.Context, current int64) {
	timestamps, err := c.source.Timestamps(ctx)
	if err != nil {
		c.logger.Debug("prefetch skipped, timestamp sequence unavailable", "error", err)
		return
	}
	for _, ts := range timestamps {
		if ts > current {
			c.Prefetch(ctx, ts)
			return
		}
	}
}

// Wait blocks until every in-flight prefetch has finished. Used on shutdown
// and in tests.
func (c *Controller) Wait() {
	c.wg.Wait()
}
