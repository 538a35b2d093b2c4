package harvester

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"jobpipe/pkg/utils"
)

// DedupCacheOptions configures the optional Redis-backed URL existence
// accelerator described in §9's "partial duplicate detection in
// harvester across runs" open question. It is never the
// correctness-bearing path — Store.ExistingURLs (backed by the unique
// constraint the store enforces at insert time) always remains
// authoritative; this cache only lets the harvester skip re-fetching a
// card it already knows about before it ever reaches the store.
type DedupCacheOptions struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	Timeout  time.Duration
	TTL      time.Duration
}

// DedupCache wraps a Redis set per platform, refreshed lazily from the
// store on first use and updated incrementally as URLs are inserted.
type DedupCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// NewDedupCache connects to Redis if opts.Enabled, otherwise returns nil
// so callers can treat an absent cache as a no-op via a nil receiver.
func NewDedupCache(opts DedupCacheOptions, logger *logrus.Logger) *DedupCache {
	if !opts.Enabled {
		return nil
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: opts.Timeout,
	})
	return &DedupCache{client: client, ttl: opts.TTL, logger: logger}
}

func cacheKey(platform utils.Platform) string {
	return "jobpipe:dedup:" + string(platform)
}

// Seed loads the known set of URLs for platform into the cache's Redis
// set, called once per process the first time a platform is harvested.
// A Redis error here is logged and swallowed — the cache degrades to
// "miss everything", which only costs extra (still-deduped) fetches.
func (c *DedupCache) Seed(ctx context.Context, platform utils.Platform, urls map[string]struct{}) {
	if c == nil || len(urls) == 0 {
		return
	}
	members := make([]interface{}, 0, len(urls))
	for u := range urls {
		members = append(members, u)
	}
	key := cacheKey(platform)
	if err := c.client.SAdd(ctx, key, members...).Err(); err != nil {
		c.logger.WithError(err).Warn("harvester: dedup cache seed failed, continuing without acceleration")
		return
	}
	if c.ttl > 0 {
		c.client.Expire(ctx, key, c.ttl)
	}
}

// Contains reports whether url is already known for platform. On any
// Redis error it reports false (cache miss), never a false positive.
func (c *DedupCache) Contains(ctx context.Context, platform utils.Platform, url string) bool {
	if c == nil {
		return false
	}
	ok, err := c.client.SIsMember(ctx, cacheKey(platform), url).Result()
	if err != nil {
		return false
	}
	return ok
}

// Add records newly-inserted URLs so later cycles in the same run (and
// later processes, until TTL expiry) skip them without a store round trip.
func (c *DedupCache) Add(ctx context.Context, platform utils.Platform, urls []string) {
	if c == nil || len(urls) == 0 {
		return
	}
	members := make([]interface{}, 0, len(urls))
	for _, u := range urls {
		members = append(members, u)
	}
	key := cacheKey(platform)
	if err := c.client.SAdd(ctx, key, members...).Err(); err != nil {
		c.logger.WithError(err).Warn("harvester: dedup cache update failed")
		return
	}
	if c.ttl > 0 {
		c.client.Expire(ctx, key, c.ttl)
	}
}

// Close releases the underlying Redis connection pool.
func (c *DedupCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
