package catalog

import (
	"context"
	"sync/atomic"

	"catalog-service/core/cachestore"
	"catalog-service/core/resilience"
	"catalog-service/feature/catalog/models"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultMaxPageSize bounds the list query so a single page can never blow
// up load cost or cache entry size.
const DefaultMaxPageSize = 100

const defaultPageSize = 20

// ReadStore is the read side of the relational store the cache loads from
// on a miss.
type ReadStore interface {
	FindProductByID(ctx context.Context, id uint64) (*models.Product, error)
	FindBrandByID(ctx context.Context, id uint64) (*models.Brand, error)
	ListProducts(ctx context.Context, brandID uint64, sort string, page, size int) ([]models.Product, int64, error)
}

// Cache is the read-through catalog cache. Hits are served from the cache
// stores; a miss acquires a per-key load lock shared by all concurrent
// callers, reads from the relational store, publishes the entry, and fans
// the result out to every waiter. No entry is visible until its load
// completed.
type Cache struct {
	store       ReadStore
	detail      cachestore.Store
	lists       cachestore.Store
	group       singleflight.Group
	gen         atomic.Uint64
	maxPageSize int
	logger      *zap.Logger
}

// NewCache creates a catalog cache over the given stores.
func NewCache(store ReadStore, detail, lists cachestore.Store, maxPageSize int, logger *zap.Logger) *Cache {
	if maxPageSize <= 0 {
		maxPageSize = DefaultMaxPageSize
	}
	return &Cache{
		store:       store,
		detail:      detail,
		lists:       lists,
		maxPageSize: maxPageSize,
		logger:      logger,
	}
}

// GetProduct returns the product read-model, loading it from the relational
// store on a miss. NotFound propagates unchanged.
func (c *Cache) GetProduct(ctx context.Context, id uint64) (ProductResponse, error) {
	key := ProductDetailKey(id)

	var cached ProductResponse
	if c.lookup(c.detail, key, &cached) {
		return cached, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		var resp ProductResponse
		if c.lookup(c.detail, key, &resp) {
			return resp, nil
		}
		gen := c.gen.Load()
		p, err := c.store.FindProductByID(ctx, id)
		if err != nil {
			return nil, err
		}
		resp = ProductResponseFrom(p)
		c.publish(c.detail, key, resp, gen)
		return resp, nil
	})
	if err != nil {
		return ProductResponse{}, err
	}
	return v.(ProductResponse), nil
}

// GetBrand returns the brand read-model, loading it on a miss.
func (c *Cache) GetBrand(ctx context.Context, id uint64) (BrandResponse, error) {
	key := BrandDetailKey(id)

	var cached BrandResponse
	if c.lookup(c.detail, key, &cached) {
		return cached, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		var resp BrandResponse
		if c.lookup(c.detail, key, &resp) {
			return resp, nil
		}
		gen := c.gen.Load()
		b, err := c.store.FindBrandByID(ctx, id)
		if err != nil {
			return nil, err
		}
		resp = BrandResponseFrom(b)
		c.publish(c.detail, key, resp, gen)
		return resp, nil
	})
	if err != nil {
		return BrandResponse{}, err
	}
	return v.(BrandResponse), nil
}

// ListProducts returns one page of a brand's product list. The cache key is
// the full query tuple; sorting and pagination happen in the store, never
// approximated here. A size above the configured maximum is rejected.
func (c *Cache) ListProducts(ctx context.Context, brandID uint64, sort string, page, size int) (ProductPage, error) {
	if size > c.maxPageSize {
		return ProductPage{}, resilience.Errorf(resilience.KindNonTransient,
			"page size %d exceeds maximum %d", size, c.maxPageSize)
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if page < 0 {
		page = 0
	}
	sort = NormalizeSort(sort)

	key := ProductListKey(brandID, sort, page, size)

	var cached ProductPage
	if c.lookup(c.lists, key, &cached) {
		return cached, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		var resp ProductPage
		if c.lookup(c.lists, key, &resp) {
			return resp, nil
		}
		gen := c.gen.Load()
		items, total, err := c.store.ListProducts(ctx, brandID, sort, page, size)
		if err != nil {
			return ProductPage{}, err
		}
		resp = buildPage(items, total, page, size)
		// Empty pages are not cached; a brand's first products would
		// otherwise hide behind a negative entry until its TTL lapsed.
		if len(resp.Items) > 0 {
			c.publish(c.lists, key, resp, gen)
		}
		return resp, nil
	})
	if err != nil {
		return ProductPage{}, err
	}
	return v.(ProductPage), nil
}

// InvalidateProduct drops the product's detail entry.
func (c *Cache) InvalidateProduct(id uint64) {
	c.gen.Add(1)
	c.detail.Delete(ProductDetailKey(id))
}

// InvalidateBrand drops the brand's detail entry.
func (c *Cache) InvalidateBrand(id uint64) {
	c.gen.Add(1)
	c.detail.Delete(BrandDetailKey(id))
}

// InvalidateBrandLists drops every list entry scoped to the brand. Exact
// membership of affected lists is unknowable without reloading them, so
// over-invalidating the brand's prefix trades hit-rate for correctness.
func (c *Cache) InvalidateBrandLists(brandID uint64) int {
	c.gen.Add(1)
	return c.lists.DeleteByPrefix(ProductListPrefix(brandID))
}

// lookup decodes a cached entry into out. Undecodable entries are dropped
// and treated as misses.
func (c *Cache) lookup(store cachestore.Store, key string, out any) bool {
	raw, ok := store.Get(key)
	if !ok {
		return false
	}
	if err := msgpack.Unmarshal(raw, out); err != nil {
		c.logger.Warn("dropping undecodable cache entry",
			zap.String("key", key), zap.Error(err))
		store.Delete(key)
		return false
	}
	return true
}

// publish writes an entry back after a load, unless an invalidation raced
// the load. The generation marker is monotonic: if it moved between the
// store read and the write-back, the entry may already be stale and is not
// published — the next read simply loads again.
func (c *Cache) publish(store cachestore.Store, key string, v any, gen uint64) {
	raw, err := msgpack.Marshal(v)
	if err != nil {
		c.logger.Error("encode cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if c.gen.Load() != gen {
		c.logger.Debug("invalidation raced load, skipping write-back",
			zap.String("key", key))
		return
	}
	store.Set(key, raw)
}

func buildPage(items []models.Product, total int64, page, size int) ProductPage {
	resp := ProductPage{
		Items:      make([]ProductResponse, 0, len(items)),
		Page:       page,
		Size:       size,
		TotalCount: total,
	}
	for i := range items {
		resp.Items = append(resp.Items, ProductResponseFrom(&items[i]))
	}
	if size > 0 {
		resp.TotalPages = int((total + int64(size) - 1) / int64(size))
	}
	return resp
}
