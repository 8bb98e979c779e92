package catalog

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/handlekurv/deal-service/internal/planner"
)

// CacheConfig holds catalog cache settings.
type CacheConfig struct {
	TTL               time.Duration `mapstructure:"ttl"`
	LoadTimeout       time.Duration `mapstructure:"load_timeout"`
	WarmupConcurrency int           `mapstructure:"warmup_concurrency"`
}

// DefaultCacheConfig returns the default cache settings.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:               15 * time.Minute,
		LoadTimeout:       30 * time.Second,
		WarmupConcurrency: 4,
	}
}

// regionLister is the subset of the repository the cache needs beyond Source.
type regionLister interface {
	Regions(ctx context.Context) ([]string, error)
}

// Cache serves immutable per-region catalog snapshots in front of the
// repository. Snapshots are built off-lock and swapped atomically; a stale
// snapshot keeps serving while a reload fails or the breaker is open.
type Cache struct {
	regionsMu sync.RWMutex
	regions   map[string]*regionCache
	sf        singleFlightGroup

	source  Source
	lister  regionLister
	config  CacheConfig
	breaker *Breaker
	metrics *CacheMetrics
	logger  zerolog.Logger
}

// regionCache holds one region's snapshot with atomic swaps.
type regionCache struct {
	snapshot atomic.Value // []planner.DiscountItem
	loadedAt atomic.Value // time.Time
}

// singleFlightGroup deduplicates concurrent loads of the same region. A
// custom type instead of x/sync/singleflight so loads run on a dedicated
// context and one request's cancellation cannot fail the others.
type singleFlightGroup struct {
	mu    sync.Mutex
	calls map[string]*singleFlightCall
}

type singleFlightCall struct {
	wg    sync.WaitGroup
	items []planner.DiscountItem
	err   error
}

func (g *singleFlightGroup) Do(key string, fn func() ([]planner.DiscountItem, error)) ([]planner.DiscountItem, error) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[string]*singleFlightCall)
	}
	if call, ok := g.calls[key]; ok {
		g.mu.Unlock()
		call.wg.Wait()
		return call.items, call.err
	}

	call := &singleFlightCall{}
	call.wg.Add(1)
	g.calls[key] = call
	g.mu.Unlock()

	call.items, call.err = fn()
	call.wg.Done()

	g.mu.Lock()
	delete(g.calls, key)
	g.mu.Unlock()

	return call.items, call.err
}

// NewCache creates a snapshot cache over the repository.
func NewCache(repo *Repository, config CacheConfig) *Cache {
	logger := log.With().Str("component", "catalog_cache").Logger()
	return &Cache{
		regions: make(map[string]*regionCache),
		source:  repo,
		lister:  repo,
		config:  config,
		breaker: NewBreaker(DefaultBreakerConfig(), logger),
		metrics: NewCacheMetrics(),
		logger:  logger,
	}
}

// Snapshot returns the cached snapshot for a region, loading it when missing
// or older than the TTL. A stale snapshot is returned rather than an error
// when the reload fails or the breaker is open.
func (c *Cache) Snapshot(ctx context.Context, region string) ([]planner.DiscountItem, error) {
	rc := c.regionCache(region)

	if items, fresh := c.current(rc); items != nil && fresh {
		c.metrics.RecordHit(region)
		return items, nil
	}
	c.metrics.RecordMiss(region)

	if !c.breaker.Allow() {
		if items, _ := c.current(rc); items != nil {
			c.logger.Warn().Str("region", region).Msg("Breaker open, serving stale snapshot")
			return items, nil
		}
		return nil, fmt.Errorf("catalog unavailable for region %s: breaker %s", region, c.breaker.State())
	}

	items, err := c.sf.Do(region, func() ([]planner.DiscountItem, error) {
		return c.load(region, rc)
	})
	if err != nil {
		if stale, _ := c.current(rc); stale != nil {
			c.logger.Warn().Err(err).Str("region", region).Msg("Snapshot reload failed, serving stale snapshot")
			return stale, nil
		}
		return nil, err
	}
	return items, nil
}

// Warmup loads every known region up front, bounded by WarmupConcurrency.
func (c *Cache) Warmup(ctx context.Context) error {
	regions, err := c.lister.Regions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list regions: %w", err)
	}

	c.logger.Info().Int("regions", len(regions)).Msg("Starting catalog cache warmup")

	sem := semaphore.NewWeighted(int64(c.config.WarmupConcurrency))
	var wg sync.WaitGroup
	errCh := make(chan error, len(regions))

	for _, region := range regions {
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		wg.Add(1)
		go func(region string) {
			defer sem.Release(1)
			defer wg.Done()
			if _, err := c.Snapshot(ctx, region); err != nil {
				errCh <- fmt.Errorf("region %s: %w", region, err)
			}
		}(region)
	}

	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			return err
		}
	}

	c.logger.Info().Msg("Catalog cache warmup completed")
	return nil
}

// Invalidate drops a region's snapshot so the next request reloads it.
// Ingestion calls this after persisting a new feed.
func (c *Cache) Invalidate(region string) {
	c.regionsMu.Lock()
	delete(c.regions, region)
	c.regionsMu.Unlock()
	c.logger.Debug().Str("region", region).Msg("Invalidated region snapshot")
}

// BreakerState exposes the load breaker state for health reporting.
func (c *Cache) BreakerState() BreakerState {
	return c.breaker.State()
}

// load builds a fresh snapshot on a dedicated context and swaps it in.
func (c *Cache) load(region string, rc *regionCache) ([]planner.DiscountItem, error) {
	loadCtx, cancel := context.WithTimeout(context.Background(), c.config.LoadTimeout)
	defer cancel()

	start := time.Now()
	items, err := c.source.Snapshot(loadCtx, region)
	if err != nil {
		c.breaker.RecordFailure(err)
		return nil, fmt.Errorf("failed to load snapshot for region %s: %w", region, err)
	}
	c.breaker.RecordSuccess()

	if items == nil {
		items = []planner.DiscountItem{}
	}
	rc.snapshot.Store(items)
	rc.loadedAt.Store(time.Now())
	c.metrics.RecordLoad(region, len(items), time.Since(start))

	c.logger.Info().
		Str("region", region).
		Int("items", len(items)).
		Dur("duration", time.Since(start)).
		Msg("Loaded catalog snapshot")

	return items, nil
}

func (c *Cache) regionCache(region string) *regionCache {
	c.regionsMu.RLock()
	rc, ok := c.regions[region]
	c.regionsMu.RUnlock()
	if ok {
		return rc
	}

	c.regionsMu.Lock()
	defer c.regionsMu.Unlock()
	if rc, ok = c.regions[region]; ok {
		return rc
	}
	rc = &regionCache{}
	c.regions[region] = rc
	return rc
}

// current returns the stored snapshot and whether it is within the TTL.
func (c *Cache) current(rc *regionCache) ([]planner.DiscountItem, bool) {
	val := rc.snapshot.Load()
	if val == nil {
		return nil, false
	}
	items := val.([]planner.DiscountItem)

	loadedVal := rc.loadedAt.Load()
	if loadedVal == nil {
		return items, false
	}
	return items, time.Since(loadedVal.(time.Time)) <= c.config.TTL
}
