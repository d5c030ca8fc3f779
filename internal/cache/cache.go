// Package cache keeps a dispatcher's view of the published snapshot,
// re-reading the shared record at most once per refresh interval.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/heytom-labs/heytom-healthroute/internal/logging"
	"github.com/heytom-labs/heytom-healthroute/internal/snapshot"
	"github.com/heytom-labs/heytom-healthroute/internal/store"
	"github.com/heytom-labs/heytom-healthroute/internal/telemetry"
)

// ErrFieldMissing is logged when the record exists but has no snapshot field.
var ErrFieldMissing = errors.New("snapshot field missing")

// Cache 注册表缓存
type Cache struct {
	store    store.Store
	field    string
	interval time.Duration
	metrics  *telemetry.Metrics
	log      zerolog.Logger
	now      func() time.Time

	mu          sync.Mutex
	snap        snapshot.Snapshot
	refreshedAt time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithMetrics records refresh outcomes.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// New creates an empty cache; the first Snapshot call reads the store.
func New(s store.Store, field string, interval time.Duration, log zerolog.Logger, opts ...Option) *Cache {
	c := &Cache{
		store:    s,
		field:    field,
		interval: interval,
		metrics:  telemetry.Nop(),
		log:      logging.Component(log, "cache"),
		now:      time.Now,
		snap:     snapshot.Empty(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns the cached snapshot, refreshing it first when more than
// the refresh interval has passed since the last refresh. A failed refresh
// replaces the cache with an empty snapshot and still resets the clock, so
// the store is read at most once per interval.
//
// The returned snapshot is shared; callers must not modify it.
func (c *Cache) Snapshot(ctx context.Context) snapshot.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if !c.refreshedAt.IsZero() && now.Sub(c.refreshedAt) <= c.interval {
		return c.snap
	}

	c.log.Info().Msg("refreshing healthy members from shared record")
	snap, err := c.load(ctx)
	c.metrics.RecordRefresh(ctx, err)
	if err != nil {
		c.log.Error().Err(err).Str("field", c.field).Msg("failed to load snapshot, using empty mapping")
		snap = snapshot.Empty()
	}

	c.snap = snap
	c.refreshedAt = now
	return c.snap
}

// RefreshedAt returns when the cache was last refreshed; zero before the
// first refresh.
func (c *Cache) RefreshedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshedAt
}

func (c *Cache) load(ctx context.Context) (snapshot.Snapshot, error) {
	rec, err := c.store.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}
	raw, ok := rec.Fields[c.field]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFieldMissing, c.field)
	}
	return snapshot.Decode(raw)
}
