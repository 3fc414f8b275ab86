package files

import (
	"sync"
	"time"

	"github.com/farxc/mgnrega-goa/internal/logger"
	"github.com/farxc/mgnrega-goa/internal/mgnrega/types"
	"golang.org/x/sync/singleflight"
)

// DefaultFreshness is how long a parsed CSV is served without touching disk.
const DefaultFreshness = 5 * time.Minute

// CSVCache owns the single parsed-CSV slot. Entries expire by age only;
// file changes inside the window are not noticed.
type CSVCache struct {
	path    string
	charset string
	ttl     time.Duration
	now     func() time.Time
	log     *logger.Logger

	mu         sync.RWMutex
	records    []types.Record
	capturedAt time.Time

	flight singleflight.Group
}

type CacheOption func(*CSVCache)

func WithClock(now func() time.Time) CacheOption {
	return func(c *CSVCache) { c.now = now }
}

func WithCharset(charset string) CacheOption {
	return func(c *CSVCache) { c.charset = charset }
}

func WithLogger(l *logger.Logger) CacheOption {
	return func(c *CSVCache) { c.log = l }
}

func NewCSVCache(path string, ttl time.Duration, opts ...CacheOption) *CSVCache {
	if ttl <= 0 {
		ttl = DefaultFreshness
	}
	c := &CSVCache{
		path:    path,
		charset: EncodingUTF8,
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CSVCache) Path() string { return c.path }

// Load returns the cached records while fresh, otherwise re-reads the file.
// Concurrent refreshes share one read.
func (c *CSVCache) Load() ([]types.Record, error) {
	const component = "CSVCache"

	if records, ok := c.fresh(); ok {
		c.log.Debug(component, "Cache hit: path=%s records=%d", c.path, len(records))
		return records, nil
	}

	v, err, _ := c.flight.Do(c.path, func() (interface{}, error) {
		if records, ok := c.fresh(); ok {
			return records, nil
		}
		now := c.now()
		records, err := LoadCSV(c.path, c.charset, now)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.records = records
		c.capturedAt = now
		c.mu.Unlock()

		c.log.Info(component, "CSV loaded: path=%s records=%d", c.path, len(records))
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]types.Record), nil
}

// Clear drops the cached slot. Safe to call repeatedly.
func (c *CSVCache) Clear() {
	c.mu.Lock()
	c.records = nil
	c.capturedAt = time.Time{}
	c.mu.Unlock()
}

// CapturedAt reports when the current slot was filled; zero when empty.
func (c *CSVCache) CapturedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.capturedAt
}

func (c *CSVCache) fresh() ([]types.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.records == nil {
		return nil, false
	}
	if c.now().Sub(c.capturedAt) >= c.ttl {
		return nil, false
	}
	return c.records, true
}
