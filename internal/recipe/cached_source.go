package recipe

import (
	"context"
	"log/slog"
	"time"
)

// Cache is the storage used by CachedSource. *Repository satisfies it.
type Cache interface {
	Get(ctx context.Context, id string) (*CachedRecipe, error)
	Save(ctx context.Context, rec Recipe, fetchedAt time.Time) error
}

// CachedSource wraps a Source and serves recent lookups from a local cache.
// Lookups of unknown recipes are never cached, and upstream failures are
// returned as-is so callers observe them.
type CachedSource struct {
	upstream Source
	cache    Cache
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewCachedSource creates a CachedSource. A non-positive ttl disables cache reads.
func NewCachedSource(upstream Source, cache Cache, ttl time.Duration, logger *slog.Logger) *CachedSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedSource{
		upstream: upstream,
		cache:    cache,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// FetchByID returns the cached recipe while it is fresh, otherwise asks the upstream.
func (c *CachedSource) FetchByID(ctx context.Context, id string) (*Recipe, error) {
	if c.ttl > 0 {
		cached, err := c.cache.Get(ctx, id)
		if err != nil {
			c.logger.Warn("reading recipe cache", "recipe_id", id, "error", err)
		} else if cached != nil && c.now().Sub(cached.FetchedAt) < c.ttl {
			rec := cached.Recipe.Clone()
			return &rec, nil
		}
	}

	rec, err := c.upstream.FetchByID(ctx, id)
	if err != nil || rec == nil {
		return rec, err
	}
	c.store(ctx, *rec)
	return rec, nil
}

// Search always goes to the upstream and refreshes the cache with the results.
func (c *CachedSource) Search(ctx context.Context, query, category string) ([]Recipe, error) {
	recipes, err := c.upstream.Search(ctx, query, category)
	if err != nil {
		return nil, err
	}
	for _, rec := range recipes {
		c.store(ctx, rec)
	}
	return recipes, nil
}

// Categories is passed through to the upstream.
func (c *CachedSource) Categories(ctx context.Context) ([]Category, error) {
	return c.upstream.Categories(ctx)
}

func (c *CachedSource) store(ctx context.Context, rec Recipe) {
	if rec.ID == "" {
		return
	}
	if err := c.cache.Save(ctx, rec, c.now()); err != nil {
		c.logger.Warn("writing recipe cache", "recipe_id", rec.ID, "error", err)
	}
}
