package marketdata

import (
	"context"
	"sync"
	"time"

	"github.com/mounirlabaied/QPAS/internal/domain"
	"github.com/mounirlabaied/QPAS/internal/observability"
)

// Cache wraps a Source and memoizes results per instrument for the
// lifetime of the cache. One cache is meant to live for a single
// recomputation pass: each distinct instrument costs one coarse upstream
// request, repeated lookups are free, and the cache is dropped afterwards
// so prices never go stale across runs.
type Cache struct {
	source  Source
	timeout time.Duration

	mu      sync.Mutex
	entries map[int]cacheEntry
}

type cacheEntry struct {
	bars []*domain.OHLCBar
	err  error
}

// NewCache creates a caching wrapper. timeout bounds each upstream fetch;
// zero means no per-fetch bound beyond the caller's context.
func NewCache(source Source, timeout time.Duration) *Cache {
	return &Cache{
		source:  source,
		timeout: timeout,
		entries: make(map[int]cacheEntry),
	}
}

// GetData fetches bars through the cache. The first request for an
// instrument hits the upstream source; later requests return the cached
// result regardless of range, which is adequate when every caller asks for
// the same window, as the stats updater does.
func (c *Cache) GetData(ctx context.Context, instrument *domain.Instrument, start, end time.Time, barSize domain.BarSize) ([]*domain.OHLCBar, error) {
	c.mu.Lock()
	if e, ok := c.entries[instrument.ID]; ok {
		c.mu.Unlock()
		return e.bars, e.err
	}
	c.mu.Unlock()

	fetchCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	started := time.Now()
	bars, err := c.source.GetData(fetchCtx, instrument, start, end, barSize)
	observability.RecordMarkFetch(time.Since(started).Seconds(), err)

	c.mu.Lock()
	c.entries[instrument.ID] = cacheEntry{bars: bars, err: err}
	c.mu.Unlock()

	return bars, err
}
