package catalog

import (
	"context"

	"go.uber.org/zap"
)

// Service exposes the catalog read path. Reads go through the cache; store
// errors propagate with their kind unchanged so the handler can map them.
type Service struct {
	cache  *Cache
	logger *zap.Logger
}

// NewService creates a catalog service.
func NewService(cache *Cache, logger *zap.Logger) *Service {
	return &Service{cache: cache, logger: logger}
}

// GetProduct returns product detail by identifier.
func (s *Service) GetProduct(ctx context.Context, id uint64) (ProductResponse, error) {
	return s.cache.GetProduct(ctx, id)
}

// GetBrand returns brand detail by identifier.
func (s *Service) GetBrand(ctx context.Context, id uint64) (BrandResponse, error) {
	return s.cache.GetBrand(ctx, id)
}

// ListProducts returns one page of a brand's products.
func (s *Service) ListProducts(ctx context.Context, brandID uint64, sort string, page, size int) (ProductPage, error) {
	return s.cache.ListProducts(ctx, brandID, sort, page, size)
}
