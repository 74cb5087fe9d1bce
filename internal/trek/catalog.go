package trek

import (
	"context"
	"time"

	"trekbooking/pkg/cache"
)

const (
	cacheKeyActive = "treks:active"
	cacheKeyByID   = "trek:"
)

// Catalog reads treks through the optional Redis cache.
type Catalog struct {
	Repo  *Repository
	Cache *cache.Cache
	TTL   time.Duration
}

func (c *Catalog) Active(ctx context.Context) ([]Trek, error) {
	var out []Trek
	if c.Cache.GetJSON(ctx, cacheKeyActive, &out) {
		return out, nil
	}
	out, err := c.Repo.List(ctx, false)
	if err != nil {
		return nil, err
	}
	c.Cache.SetJSON(ctx, cacheKeyActive, out, c.TTL)
	return out, nil
}

func (c *Catalog) Get(ctx context.Context, id string) (*Trek, error) {
	var t Trek
	if c.Cache.GetJSON(ctx, cacheKeyByID+id, &t) {
		return &t, nil
	}
	got, err := c.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Cache.SetJSON(ctx, cacheKeyByID+id, got, c.TTL)
	return got, nil
}

func (c *Catalog) Invalidate(ctx context.Context, id string) {
	c.Cache.Delete(ctx, cacheKeyActive, cacheKeyByID+id)
}
