package catalog

import (
	"catalog-service/core/cachestore"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	repository *Repository
	cache      *Cache
	service    *Service
	handler    *Handler
}

// NewFeature creates the catalog feature and wires its layers.
func NewFeature(db *gorm.DB, cacheCfg cachestore.Config, logger *zap.Logger) *Feature {
	repo := NewRepository(db, logger)
	detail := cachestore.New(cacheCfg, cacheCfg.DetailTTL())
	lists := cachestore.New(cacheCfg, cacheCfg.ListTTL())
	cache := NewCache(repo, detail, lists, DefaultMaxPageSize, logger)
	svc := NewService(cache, logger)
	h := NewHandler(svc)
	return &Feature{repository: repo, cache: cache, service: svc, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "catalog"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// Repository exposes the relational store for the reconciliation wiring.
func (f *Feature) Repository() *Repository {
	return f.repository
}

// Cache exposes the catalog cache for the synchronizer wiring.
func (f *Feature) Cache() *Cache {
	return f.cache
}
