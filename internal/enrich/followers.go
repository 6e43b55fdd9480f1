// Package enrich resolves author follower counts during a collection run.
// Lookups open extra profile pages, so they are cached per username and
// paced by a rate limiter to avoid tripping server-side limits.
package enrich

import (
	"context"
	"sync"

	"xscraper/pkg/logger"
	"xscraper/pkg/ratelimit"
)

// Source fetches the follower count for one username. The browser session
// provides the real implementation.
type Source func(ctx context.Context, username string) (int64, bool)

// FollowerCache memoizes follower lookups for the lifetime of one run. A
// failed lookup is cached too, so a profile that cannot be read is fetched
// only once.
type FollowerCache struct {
	source  Source
	limiter ratelimit.Limiter
	log     logger.Logger

	mu    sync.Mutex
	cache map[string]cached
}

type cached struct {
	count int64
	ok    bool
}

// NewFollowerCache wraps a lookup source with caching and pacing.
func NewFollowerCache(source Source, limiter ratelimit.Limiter, log logger.Logger) *FollowerCache {
	return &FollowerCache{
		source:  source,
		limiter: limiter,
		log:     log,
		cache:   make(map[string]cached),
	}
}

// Lookup returns the follower count for a username, consulting the cache
// first. Satisfies the collection engine's FollowerLookup contract.
func (c *FollowerCache) Lookup(ctx context.Context, username string) (int64, bool) {
	if username == "" {
		return 0, false
	}

	c.mu.Lock()
	if hit, found := c.cache[username]; found {
		c.mu.Unlock()
		return hit.count, hit.ok
	}
	c.mu.Unlock()

	if ctx.Err() != nil {
		return 0, false
	}
	if c.limiter != nil {
		c.limiter.Wait()
	}

	count, ok := c.source(ctx, username)
	if !ok {
		c.log.WithField("username", username).Debug("follower count unavailable")
	}

	c.mu.Lock()
	c.cache[username] = cached{count: count, ok: ok}
	c.mu.Unlock()

	return count, ok
}

// Prefetch resolves a username ahead of the run. Account-mode searches use
// this once so every collected record shares the count.
func (c *FollowerCache) Prefetch(ctx context.Context, username string) {
	c.Lookup(ctx, username)
}
