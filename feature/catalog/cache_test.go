package catalog_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"catalog-service/core/cachestore"
	"catalog-service/core/resilience"
	"catalog-service/feature/catalog"
	"catalog-service/feature/catalog/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// fakeReadStore counts loads so tests can assert how often the relational
// store was actually hit.
type fakeReadStore struct {
	mu       sync.Mutex
	products map[uint64]models.Product
	brands   map[uint64]models.Brand

	productReads atomic.Int32
	brandReads   atomic.Int32
	listReads    atomic.Int32

	// block, when non-nil, holds every load open until closed.
	block chan struct{}

	// forcedErr, when set, fails every load with that error.
	forcedErr error
}

func newFakeReadStore() *fakeReadStore {
	return &fakeReadStore{
		products: map[uint64]models.Product{},
		brands:   map[uint64]models.Brand{},
	}
}

func (s *fakeReadStore) put(p models.Product) {
	s.mu.Lock()
	s.products[p.ID] = p
	s.mu.Unlock()
}

func (s *fakeReadStore) wait() {
	if s.block != nil {
		<-s.block
	}
}

func (s *fakeReadStore) FindProductByID(ctx context.Context, id uint64) (*models.Product, error) {
	s.productReads.Add(1)
	s.wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.forcedErr != nil {
		return nil, s.forcedErr
	}
	p, ok := s.products[id]
	if !ok {
		return nil, resilience.Errorf(resilience.KindNotFound, "product %d not found", id)
	}
	return &p, nil
}

func (s *fakeReadStore) FindBrandByID(ctx context.Context, id uint64) (*models.Brand, error) {
	s.brandReads.Add(1)
	s.wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.brands[id]
	if !ok {
		return nil, resilience.Errorf(resilience.KindNotFound, "brand %d not found", id)
	}
	return &b, nil
}

func (s *fakeReadStore) ListProducts(ctx context.Context, brandID uint64, sort string, page, size int) ([]models.Product, int64, error) {
	s.listReads.Add(1)
	s.wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []models.Product
	for _, p := range s.products {
		if p.BrandID == brandID && p.Status == models.ProductStatusActive {
			items = append(items, p)
		}
	}
	total := int64(len(items))
	start := page * size
	if start >= len(items) {
		return nil, total, nil
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], total, nil
}

func newTestCache(store *fakeReadStore) *catalog.Cache {
	cfg := cachestore.Config{Capacity: 1000, NumShards: 2, EvictionPercentage: 10}
	detail := cachestore.New(cfg, time.Minute)
	lists := cachestore.New(cfg, time.Minute)
	return catalog.NewCache(store, detail, lists, catalog.DefaultMaxPageSize, zap.NewNop())
}

func activeProduct(id, brandID uint64, price int64) models.Product {
	return models.Product{
		ID:               id,
		ExternalKey:      "sku",
		BrandID:          brandID,
		Name:             "Product",
		Price:            price,
		Stock:            5,
		MaxOrderQuantity: 10,
		Status:           models.ProductStatusActive,
		LikeCount:        3,
	}
}

func TestGetProductReadThrough(t *testing.T) {
	store := newFakeReadStore()
	store.put(activeProduct(1, 10, 1000))
	cache := newTestCache(store)

	resp, err := cache.GetProduct(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), resp.ProductID)
	assert.Equal(t, int64(1000), resp.Price)
	assert.Equal(t, int64(3), resp.LikeCount)

	// Second read is a hit.
	_, err = cache.GetProduct(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, int32(1), store.productReads.Load())
}

func TestGetProductNotFoundIsNotCached(t *testing.T) {
	store := newFakeReadStore()
	cache := newTestCache(store)

	_, err := cache.GetProduct(context.Background(), 99)
	assert.Equal(t, resilience.KindNotFound, resilience.KindOf(err))

	// The miss was not cached as a negative entry; the next read loads again.
	_, err = cache.GetProduct(context.Background(), 99)
	assert.Equal(t, resilience.KindNotFound, resilience.KindOf(err))
	assert.Equal(t, int32(2), store.productReads.Load())
}

func TestGetBrandReadThrough(t *testing.T) {
	store := newFakeReadStore()
	store.brands[10] = models.Brand{ID: 10, ExternalKey: "brand-a", Name: "Brand A", IsActive: true}
	cache := newTestCache(store)

	resp, err := cache.GetBrand(context.Background(), 10)
	assert.NoError(t, err)
	assert.Equal(t, "Brand A", resp.Name)

	_, err = cache.GetBrand(context.Background(), 10)
	assert.NoError(t, err)
	assert.Equal(t, int32(1), store.brandReads.Load())
}

func TestConcurrentMissesLoadOnce(t *testing.T) {
	store := newFakeReadStore()
	store.put(activeProduct(1, 10, 1000))
	store.block = make(chan struct{})
	cache := newTestCache(store)

	const readers = 16
	var wg sync.WaitGroup
	results := make([]catalog.ProductResponse, readers)
	errs := make([]error, readers)

	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = cache.GetProduct(context.Background(), 1)
		}(i)
	}

	// Let the readers pile up on the load lock, then release the store.
	assert.Eventually(t, func() bool {
		return store.productReads.Load() >= 1
	}, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	close(store.block)
	wg.Wait()

	// Every waiter got the same loaded value from a single store read.
	for i := 0; i < readers; i++ {
		assert.NoError(t, errs[i])
		assert.Equal(t, int64(1000), results[i].Price)
	}
	assert.Equal(t, int32(1), store.productReads.Load())
}

func TestListProductsCachesPerQueryTuple(t *testing.T) {
	store := newFakeReadStore()
	store.put(activeProduct(1, 10, 1000))
	cache := newTestCache(store)

	_, err := cache.ListProducts(context.Background(), 10, catalog.SortLatest, 0, 20)
	assert.NoError(t, err)
	_, err = cache.ListProducts(context.Background(), 10, catalog.SortLatest, 0, 20)
	assert.NoError(t, err)
	assert.Equal(t, int32(1), store.listReads.Load())

	// A different sort, page, or size is a different entry.
	_, _ = cache.ListProducts(context.Background(), 10, catalog.SortPriceAsc, 0, 20)
	_, _ = cache.ListProducts(context.Background(), 10, catalog.SortLatest, 1, 20)
	_, _ = cache.ListProducts(context.Background(), 10, catalog.SortLatest, 0, 50)
	assert.Equal(t, int32(4), store.listReads.Load())
}

func TestListProductsUnknownSortSharesFallbackEntry(t *testing.T) {
	store := newFakeReadStore()
	store.put(activeProduct(1, 10, 1000))
	cache := newTestCache(store)

	_, err := cache.ListProducts(context.Background(), 10, "rating_desc", 0, 20)
	assert.NoError(t, err)
	_, err = cache.ListProducts(context.Background(), 10, catalog.SortLatest, 0, 20)
	assert.NoError(t, err)

	// Unknown sort normalizes to latest, so both reads share one entry.
	assert.Equal(t, int32(1), store.listReads.Load())
}

func TestListProductsRejectsOversizedPage(t *testing.T) {
	store := newFakeReadStore()
	cache := newTestCache(store)

	_, err := cache.ListProducts(context.Background(), 10, catalog.SortLatest, 0, catalog.DefaultMaxPageSize+1)
	assert.Equal(t, resilience.KindNonTransient, resilience.KindOf(err))
	assert.Equal(t, int32(0), store.listReads.Load())
}

func TestListProductsDefaultsPageAndSize(t *testing.T) {
	store := newFakeReadStore()
	store.put(activeProduct(1, 10, 1000))
	cache := newTestCache(store)

	page, err := cache.ListProducts(context.Background(), 10, "", -3, 0)
	assert.NoError(t, err)
	assert.Equal(t, 0, page.Page)
	assert.Equal(t, 20, page.Size)
	assert.Equal(t, int64(1), page.TotalCount)
	assert.Equal(t, 1, page.TotalPages)
}

func TestListProductsEmptyPageNotCached(t *testing.T) {
	store := newFakeReadStore()
	cache := newTestCache(store)

	page, err := cache.ListProducts(context.Background(), 10, catalog.SortLatest, 0, 20)
	assert.NoError(t, err)
	assert.Empty(t, page.Items)

	_, err = cache.ListProducts(context.Background(), 10, catalog.SortLatest, 0, 20)
	assert.NoError(t, err)
	// Both reads hit the store; an empty page never hides behind a cache entry.
	assert.Equal(t, int32(2), store.listReads.Load())
}

func TestInvalidateProductDropsDetailEntry(t *testing.T) {
	store := newFakeReadStore()
	store.put(activeProduct(1, 10, 1000))
	cache := newTestCache(store)

	_, _ = cache.GetProduct(context.Background(), 1)
	cache.InvalidateProduct(1)

	store.put(activeProduct(1, 10, 500))
	resp, err := cache.GetProduct(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(500), resp.Price)
	assert.Equal(t, int32(2), store.productReads.Load())
}

func TestInvalidateBrandListsIsScoped(t *testing.T) {
	store := newFakeReadStore()
	store.put(activeProduct(1, 10, 1000))
	store.put(activeProduct(2, 20, 2000))
	cache := newTestCache(store)

	// Warm several list entries for brand 10 and one for brand 20.
	_, _ = cache.ListProducts(context.Background(), 10, catalog.SortLatest, 0, 20)
	_, _ = cache.ListProducts(context.Background(), 10, catalog.SortPriceAsc, 0, 20)
	_, _ = cache.ListProducts(context.Background(), 10, catalog.SortLikesDesc, 1, 20)
	_, _ = cache.ListProducts(context.Background(), 20, catalog.SortLatest, 0, 20)

	// Page 1 of brand 10 was empty (one product only) and thus not cached.
	dropped := cache.InvalidateBrandLists(10)
	assert.Equal(t, 2, dropped)

	// Brand 20's entry survived.
	_, _ = cache.ListProducts(context.Background(), 20, catalog.SortLatest, 0, 20)
	assert.Equal(t, int32(4), store.listReads.Load())
}

func TestInvalidationDuringLoadSuppressesWriteBack(t *testing.T) {
	store := newFakeReadStore()
	store.put(activeProduct(1, 10, 1000))
	store.block = make(chan struct{})
	cache := newTestCache(store)

	done := make(chan catalog.ProductResponse, 1)
	go func() {
		resp, _ := cache.GetProduct(context.Background(), 1)
		done <- resp
	}()

	assert.Eventually(t, func() bool {
		return store.productReads.Load() == 1
	}, time.Second, time.Millisecond)

	// The invalidation lands while the load is in flight. Its write-back must
	// not resurrect the stale value.
	cache.InvalidateProduct(1)
	close(store.block)
	resp := <-done
	assert.Equal(t, int64(1000), resp.Price)

	store.block = nil
	store.put(activeProduct(1, 10, 500))
	fresh, err := cache.GetProduct(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(500), fresh.Price)
}
