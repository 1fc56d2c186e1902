package price

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"rent-reclaim-bot/internal/domain"
	"rent-reclaim-bot/internal/observability"
)

// DefaultTTL is how long a fetched price is served without a refresh.
const DefaultTTL = 15 * time.Minute

// SnapshotRecorder receives every successfully fetched snapshot.
type SnapshotRecorder interface {
	Insert(ctx context.Context, snap *domain.PriceSnapshot) error
}

// CacheOptions configures a Cache.
type CacheOptions struct {
	TTL      time.Duration
	Symbol   string
	Convert  string
	Recorder SnapshotRecorder // optional
	Logger   logrus.FieldLogger
	Now      func() time.Time // for tests
}

// Cache serves the latest quote for up to TTL and refreshes it lazily.
// Concurrent callers that find the snapshot stale share one outbound request.
type Cache struct {
	source QuoteSource
	opts   CacheOptions
	logger logrus.FieldLogger

	mu   sync.RWMutex
	snap *domain.PriceSnapshot

	flight singleflight.Group
}

// NewCache creates a cache in front of source.
func NewCache(source QuoteSource, opts CacheOptions) *Cache {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Symbol == "" {
		opts.Symbol = "SOL"
	}
	if opts.Convert == "" {
		opts.Convert = "USD"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Cache{
		source: source,
		opts:   opts,
		logger: logger.WithField("component", "price_cache"),
	}
}

// Price returns the cached price if it is younger than TTL, otherwise refreshes it.
// On refresh failure the previous price is returned, or 0 if none was ever fetched.
// It never returns an error.
func (c *Cache) Price(ctx context.Context) float64 {
	if p, ok := c.fresh(); ok {
		return p
	}

	v, _, _ := c.flight.Do("refresh", func() (interface{}, error) {
		// Another flight may have finished between the check above and this call.
		if p, ok := c.fresh(); ok {
			return p, nil
		}
		return c.refresh(ctx), nil
	})
	return v.(float64)
}

// Snapshot returns the current snapshot, if any.
func (c *Cache) Snapshot() (domain.PriceSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap == nil {
		return domain.PriceSnapshot{}, false
	}
	return *c.snap, true
}

func (c *Cache) fresh() (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap == nil {
		return 0, false
	}
	age := c.opts.Now().Sub(time.UnixMilli(c.snap.FetchedAtMs))
	if age >= c.opts.TTL {
		return 0, false
	}
	return c.snap.PriceUSD, true
}

func (c *Cache) current() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap == nil {
		return 0
	}
	return c.snap.PriceUSD
}

// refresh runs detached from the caller's cancellation so that waiters sharing
// the flight are not failed by the first caller going away.
func (c *Cache) refresh(ctx context.Context) float64 {
	ctx = context.WithoutCancel(ctx)

	c.logger.WithField("source", c.source.Name()).Debug("fetching new price")
	q, err := c.source.Quote(ctx, c.opts.Symbol, c.opts.Convert)
	if err != nil {
		observability.RecordPriceRefresh("error")
		old := c.current()
		c.logger.WithError(err).WithField("fallback", old).Warn("could not fetch price")
		return old
	}

	snap := &domain.PriceSnapshot{
		Symbol:      q.Symbol,
		Currency:    q.Currency,
		PriceUSD:    q.Value,
		FetchedAtMs: c.opts.Now().UnixMilli(),
		Source:      c.source.Name(),
	}

	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()

	observability.RecordPriceRefresh("ok")
	observability.UpdatePrice(snap.PriceUSD, snap.FetchedAtMs)
	c.logger.WithField("price", snap.PriceUSD).Info("new price fetched")

	if c.opts.Recorder != nil {
		record := *snap
		if err := c.opts.Recorder.Insert(ctx, &record); err != nil {
			observability.RecordStorageError("price_snapshots")
			c.logger.WithError(err).Warn("failed to record price snapshot")
		}
	}

	return snap.PriceUSD
}
