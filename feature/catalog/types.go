package catalog

import "catalog-service/feature/catalog/models"

// Sort keys accepted by the product list query. Unknown sort keys fall back
// to SortLatest.
const (
	// SortLikesDesc orders by like count, most liked first.
	SortLikesDesc = "likes_desc"
	// SortPriceAsc orders by price, cheapest first.
	SortPriceAsc = "price_asc"
	// SortLatest orders by creation time, newest first.
	SortLatest = "latest"
)

// NormalizeSort maps an arbitrary sort parameter onto a supported sort key.
func NormalizeSort(sort string) string {
	switch sort {
	case SortLikesDesc, SortPriceAsc, SortLatest:
		return sort
	default:
		return SortLatest
	}
}

// ProductResponse is the read-model for a single product. It is what gets
// cached and what the API returns.
type ProductResponse struct {
	ProductID        uint64 `json:"productId" msgpack:"product_id"`
	BrandID          uint64 `json:"brandId" msgpack:"brand_id"`
	Name             string `json:"name" msgpack:"name"`
	Description      string `json:"description" msgpack:"description"`
	Price            int64  `json:"price" msgpack:"price"`
	Stock            int    `json:"stock" msgpack:"stock"`
	MaxOrderQuantity int    `json:"maxOrderQuantity" msgpack:"max_order_quantity"`
	Status           string `json:"status" msgpack:"status"`
	LikeCount        int64  `json:"likeCount" msgpack:"like_count"`
}

// ProductResponseFrom maps a row to its read-model.
func ProductResponseFrom(p *models.Product) ProductResponse {
	return ProductResponse{
		ProductID:        p.ID,
		BrandID:          p.BrandID,
		Name:             p.Name,
		Description:      p.Description,
		Price:            p.Price,
		Stock:            p.Stock,
		MaxOrderQuantity: p.MaxOrderQuantity,
		Status:           string(p.Status),
		LikeCount:        p.LikeCount,
	}
}

// BrandResponse is the read-model for a single brand.
type BrandResponse struct {
	BrandID     uint64 `json:"brandId" msgpack:"brand_id"`
	Name        string `json:"name" msgpack:"name"`
	Description string `json:"description" msgpack:"description"`
	IsActive    bool   `json:"isActive" msgpack:"is_active"`
}

// BrandResponseFrom maps a row to its read-model.
func BrandResponseFrom(b *models.Brand) BrandResponse {
	return BrandResponse{
		BrandID:     b.ID,
		Name:        b.Name,
		Description: b.Description,
		IsActive:    b.IsActive,
	}
}

// ProductPage is one page of a brand's product list.
type ProductPage struct {
	Items      []ProductResponse `json:"items" msgpack:"items"`
	Page       int               `json:"page" msgpack:"page"`
	Size       int               `json:"size" msgpack:"size"`
	TotalCount int64             `json:"totalCount" msgpack:"total_count"`
	TotalPages int               `json:"totalPages" msgpack:"total_pages"`
}
