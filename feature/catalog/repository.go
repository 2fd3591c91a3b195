package catalog

import (
	"context"
	"errors"
	"fmt"

	"catalog-service/core/collector"
	"catalog-service/core/reconcile"
	"catalog-service/core/resilience"
	"catalog-service/feature/catalog/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repository is the gorm-backed relational store for the catalog. Reads are
// point or paged queries; writes happen only through ApplyBatch, one
// transaction per batch.
type Repository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewRepository creates a catalog repository.
func NewRepository(db *gorm.DB, logger *zap.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// FindProductByID returns the product row or a NotFound-tagged error.
func (r *Repository) FindProductByID(ctx context.Context, id uint64) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, resilience.Errorf(resilience.KindNotFound, "product %d not found", id)
		}
		return nil, fmt.Errorf("find product %d: %w", id, err)
	}
	return &p, nil
}

// FindBrandByID returns the brand row or a NotFound-tagged error.
func (r *Repository) FindBrandByID(ctx context.Context, id uint64) (*models.Brand, error) {
	var b models.Brand
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, resilience.Errorf(resilience.KindNotFound, "brand %d not found", id)
		}
		return nil, fmt.Errorf("find brand %d: %w", id, err)
	}
	return &b, nil
}

// ListProducts returns one page of a brand's active products, sorted
// server-side. Page numbering is zero-based.
func (r *Repository) ListProducts(ctx context.Context, brandID uint64, sort string, page, size int) ([]models.Product, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("brand_id = ? AND status = ?", brandID, models.ProductStatusActive)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count products for brand %d: %w", brandID, err)
	}

	var items []models.Product
	err := base.
		Order(orderClause(sort)).
		Offset(page * size).
		Limit(size).
		Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list products for brand %d: %w", brandID, err)
	}
	return items, total, nil
}

// orderClause maps a sort key onto a deterministic ORDER BY. The row id
// breaks ties so pagination stays stable.
func orderClause(sort string) string {
	switch sort {
	case SortLikesDesc:
		return "like_count DESC, id ASC"
	case SortPriceAsc:
		return "price ASC, id ASC"
	default:
		return "created_at DESC, id ASC"
	}
}

// ApplyBatch upserts one batch of validated records inside a single
// transaction. Unchanged rows are left untouched and emit no change, so
// re-applying the same batch is a no-op. Per-record constraint violations
// are data-integrity bugs: the record is logged and skipped, the batch
// continues. Any other error rolls the whole batch back.
func (r *Repository) ApplyBatch(ctx context.Context, records []collector.Record) (reconcile.BatchResult, error) {
	var result reconcile.BatchResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Brands resolved earlier in this batch, keyed by external key.
		brands := make(map[string]*models.Brand)

		for _, rec := range records {
			if rec.Deleted {
				change, err := r.deleteProduct(tx, rec)
				if err != nil {
					return err
				}
				if change != nil {
					result.Changes = append(result.Changes, *change)
				}
				continue
			}

			brand, changes, err := r.ensureBrand(tx, brands, rec)
			if err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					r.logger.Error("skipping record, brand constraint violation",
						zap.String("brand_key", rec.BrandKey), zap.Error(err))
					result.Skipped++
					continue
				}
				return err
			}
			result.Changes = append(result.Changes, changes...)

			change, err := r.upsertProduct(tx, rec, brand.ID)
			if err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					r.logger.Error("skipping record, product constraint violation",
						zap.String("external_key", rec.ExternalKey), zap.Error(err))
					result.Skipped++
					continue
				}
				return err
			}
			result.Changes = append(result.Changes, change...)
		}
		return nil
	})
	if err != nil {
		return reconcile.BatchResult{}, fmt.Errorf("apply batch: %w", err)
	}
	return result, nil
}

// ensureBrand resolves the record's brand, creating it in the same run when
// it does not exist yet.
func (r *Repository) ensureBrand(tx *gorm.DB, seen map[string]*models.Brand, rec collector.Record) (*models.Brand, []reconcile.Change, error) {
	if b, ok := seen[rec.BrandKey]; ok {
		return b, nil, nil
	}

	var brand models.Brand
	err := tx.Where("external_key = ?", rec.BrandKey).First(&brand).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		brand = models.Brand{
			ExternalKey: rec.BrandKey,
			Name:        rec.BrandName,
			IsActive:    true,
		}
		if err := tx.Create(&brand).Error; err != nil {
			return nil, nil, err
		}
		seen[rec.BrandKey] = &brand
		return &brand, []reconcile.Change{{
			Entity: reconcile.EntityBrand, ID: brand.ID, BrandID: brand.ID, Op: reconcile.OpCreated,
		}}, nil
	case err != nil:
		return nil, nil, err
	}

	seen[rec.BrandKey] = &brand
	if rec.BrandName != "" && rec.BrandName != brand.Name {
		if err := tx.Model(&brand).Update("name", rec.BrandName).Error; err != nil {
			return nil, nil, err
		}
		return &brand, []reconcile.Change{{
			Entity: reconcile.EntityBrand, ID: brand.ID, BrandID: brand.ID, Op: reconcile.OpUpdated,
		}}, nil
	}
	return &brand, nil, nil
}

// upsertProduct inserts or updates the product by its external key. The
// updated timestamp advances only when at least one field changed; like
// count belongs to the like flow and is never written here.
func (r *Repository) upsertProduct(tx *gorm.DB, rec collector.Record, brandID uint64) ([]reconcile.Change, error) {
	var p models.Product
	err := tx.Where("external_key = ?", rec.ExternalKey).First(&p).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		p = models.Product{
			ExternalKey:      rec.ExternalKey,
			BrandID:          brandID,
			Name:             rec.Name,
			Description:      rec.Description,
			Price:            rec.Price,
			Stock:            rec.Stock,
			MaxOrderQuantity: rec.MaxOrderQuantity,
			Status:           models.ProductStatus(rec.Status),
		}
		if err := tx.Create(&p).Error; err != nil {
			return nil, err
		}
		return []reconcile.Change{{
			Entity: reconcile.EntityProduct, ID: p.ID, BrandID: brandID, Op: reconcile.OpCreated,
		}}, nil
	case err != nil:
		return nil, err
	}

	updates := map[string]any{}
	if p.BrandID != brandID {
		updates["brand_id"] = brandID
	}
	if p.Name != rec.Name {
		updates["name"] = rec.Name
	}
	if p.Description != rec.Description {
		updates["description"] = rec.Description
	}
	if p.Price != rec.Price {
		updates["price"] = rec.Price
	}
	if p.Stock != rec.Stock {
		updates["stock"] = rec.Stock
	}
	if p.MaxOrderQuantity != rec.MaxOrderQuantity {
		updates["max_order_quantity"] = rec.MaxOrderQuantity
	}
	if string(p.Status) != rec.Status {
		updates["status"] = rec.Status
	}
	if len(updates) == 0 {
		return nil, nil
	}

	oldBrandID := p.BrandID
	if err := tx.Model(&p).Updates(updates).Error; err != nil {
		return nil, err
	}

	changes := []reconcile.Change{{
		Entity: reconcile.EntityProduct, ID: p.ID, BrandID: brandID, Op: reconcile.OpUpdated,
	}}
	if oldBrandID != brandID {
		// The product left another brand's lists; those need invalidation too.
		changes = append(changes, reconcile.Change{
			Entity: reconcile.EntityProduct, ID: p.ID, BrandID: oldBrandID, Op: reconcile.OpUpdated,
		})
	}
	return changes, nil
}

// deleteProduct removes the row for a deleted record. A missing row is a
// no-op so deletions stay idempotent across runs.
func (r *Repository) deleteProduct(tx *gorm.DB, rec collector.Record) (*reconcile.Change, error) {
	var p models.Product
	err := tx.Where("external_key = ?", rec.ExternalKey).First(&p).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	case err != nil:
		return nil, err
	}
	if err := tx.Delete(&p).Error; err != nil {
		return nil, err
	}
	return &reconcile.Change{
		Entity: reconcile.EntityProduct, ID: p.ID, BrandID: p.BrandID, Op: reconcile.OpDeleted,
	}, nil
}
