package catalog

import "fmt"

// Cache keys are derived deterministically from the query shape and its
// parameters. List keys embed the full query tuple and share a
// brand-scoped prefix so a whole brand's list entries can be dropped in
// one invalidation.

// ProductDetailKey is the cache key for a single product.
func ProductDetailKey(id uint64) string {
	return fmt.Sprintf("product:detail:%d", id)
}

// BrandDetailKey is the cache key for a single brand.
func BrandDetailKey(id uint64) string {
	return fmt.Sprintf("brand:detail:%d", id)
}

// ProductListKey is the cache key for one page of a brand's product list.
func ProductListKey(brandID uint64, sort string, page, size int) string {
	return fmt.Sprintf("products:list::b%d:s%s:p%d:s%d", brandID, sort, page, size)
}

// ProductListPrefix covers every list entry scoped to the brand.
func ProductListPrefix(brandID uint64) string {
	return fmt.Sprintf("products:list::b%d:", brandID)
}
