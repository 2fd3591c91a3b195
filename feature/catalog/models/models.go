package models

import "time"

// ProductStatus is the lifecycle status of a product.
//
// Status is reconciled from the external source independently of stock, so
// stock == 0 with status ACTIVE is a tolerated, observable state rather than
// a constraint violation.
type ProductStatus string

const (
	// ProductStatusActive means the product is purchasable.
	ProductStatusActive ProductStatus = "ACTIVE"
	// ProductStatusOutOfStock means the product is listed but not purchasable.
	ProductStatusOutOfStock ProductStatus = "OUT_OF_STOCK"
	// ProductStatusInactive means the product has been withdrawn.
	ProductStatusInactive ProductStatus = "INACTIVE"
)

// IsValid reports whether s is a known status.
func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductStatusActive, ProductStatusOutOfStock, ProductStatusInactive:
		return true
	default:
		return false
	}
}

// Product is a catalog product row. Rows are owned by the relational store;
// cached copies are derived and disposable.
type Product struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	// ExternalKey is the collector-side natural key used for upserts.
	ExternalKey string `gorm:"size:64;uniqueIndex:uq_product_external_key;not null" json:"-"`

	BrandID uint64 `gorm:"not null;index:idx_product_brand_status_price,priority:1" json:"brandId"`

	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	// Price is in the smallest currency unit.
	Price int64 `gorm:"not null;index:idx_product_brand_status_price,priority:3" json:"price"`

	Stock            int `gorm:"not null" json:"stock"`
	MaxOrderQuantity int `gorm:"not null" json:"maxOrderQuantity"`

	Status ProductStatus `gorm:"size:32;not null;index:idx_product_brand_status_price,priority:2" json:"status"`

	// LikeCount is mutated by the like flow, never by the batch pipeline.
	LikeCount int64 `gorm:"not null;default:0" json:"likeCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName maps Product to the product table.
func (Product) TableName() string {
	return "product"
}

// Brand is a catalog brand row.
type Brand struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	// ExternalKey is the collector-side natural key used for upserts.
	ExternalKey string `gorm:"size:64;uniqueIndex:uq_brand_external_key;not null" json:"-"`

	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	IsActive    bool   `gorm:"not null;default:true" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName maps Brand to the brand table.
func (Brand) TableName() string {
	return "brand"
}
