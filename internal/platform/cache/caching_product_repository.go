// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"market_backend/internal/feature/catalog/domain/entity"
	"market_backend/internal/feature/catalog/usecase"
)

// CachingProductRepository decorates a ProductRepository with Redis caching.
// Reads are served from Redis when possible; every write invalidates the
// affected product and all cached listings.
type CachingProductRepository struct {
	inner     usecase.ProductRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.ProductRepository = (*CachingProductRepository)(nil)

// NewCachingProductRepository decorates a ProductRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "products".
// A nil rdb disables caching.
func NewCachingProductRepository(rdb *redis.Client, ttl time.Duration, inner usecase.ProductRepository, namespace string) *CachingProductRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "products"
	}
	return &CachingProductRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// List returns a cached listing, falling back to the inner repository.
func (c *CachingProductRepository) List(ctx context.Context, filter usecase.ListFilter) ([]entity.Product, error) {
	if c.rdb == nil {
		return c.inner.List(ctx, filter)
	}

	key := c.listKey(filter)
	var out []entity.Product
	if c.get(ctx, key, &out) {
		return out, nil
	}

	out, err := c.inner.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, out)
	return out, nil
}

// FindByID returns a cached product, falling back to the inner repository.
// Not-found results are not cached.
func (c *CachingProductRepository) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	if c.rdb == nil {
		return c.inner.FindByID(ctx, id)
	}

	key := c.itemKey(id)
	var p entity.Product
	if c.get(ctx, key, &p) {
		return &p, nil
	}

	found, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, found)
	return found, nil
}

// Create stores the product and drops cached listings.
func (c *CachingProductRepository) Create(ctx context.Context, p *entity.Product) error {
	if err := c.inner.Create(ctx, p); err != nil {
		return err
	}
	c.invalidate(ctx, "")
	return nil
}

// Update saves the product and drops its cache entry and cached listings.
func (c *CachingProductRepository) Update(ctx context.Context, p *entity.Product) error {
	if err := c.inner.Update(ctx, p); err != nil {
		return err
	}
	c.invalidate(ctx, p.ID)
	return nil
}

// Delete removes the product and drops its cache entry and cached listings.
func (c *CachingProductRepository) Delete(ctx context.Context, id string) error {
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

// CountBySeller is not cached; it is a single indexed count.
func (c *CachingProductRepository) CountBySeller(ctx context.Context, sellerID string) (int64, error) {
	return c.inner.CountBySeller(ctx, sellerID)
}

// get decodes key into dst. A corrupted entry is deleted and reported as a miss.
func (c *CachingProductRepository) get(ctx context.Context, key string, dst any) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil || len(b) == 0 {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		_ = c.rdb.Del(ctx, key).Err()
		return false
	}
	return true
}

// set stores v under key (best effort).
func (c *CachingProductRepository) set(ctx context.Context, key string, v any) {
	if b, err := json.Marshal(v); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
}

// invalidate deletes the item entry (when id is set) and every cached listing.
// Failures are ignored; entries expire with the TTL anyway.
func (c *CachingProductRepository) invalidate(ctx context.Context, id string) {
	if c.rdb == nil {
		return
	}
	if id != "" {
		_ = c.rdb.Del(ctx, c.itemKey(id)).Err()
	}
	_ = c.deleteByPattern(ctx, c.namespace+":list:*")
}

// itemKey generates the cache key for a single product.
func (c *CachingProductRepository) itemKey(id string) string {
	return fmt.Sprintf("%s:item:%s", c.namespace, safe(id))
}

// listKey generates the cache key for a listing query.
func (c *CachingProductRepository) listKey(f usecase.ListFilter) string {
	return fmt.Sprintf("%s:list:%s:%s:%d",
		c.namespace,
		safe(f.Category),
		safe(f.SellerID),
		f.Limit,
	)
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingProductRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	s = strings.ReplaceAll(s, "*", "_")
	return s
}
