package reconcile

import (
	"fmt"

	"catalog-service/core/collector"
)

var validStatuses = map[string]struct{}{
	"ACTIVE":       {},
	"OUT_OF_STOCK": {},
	"INACTIVE":     {},
}

// ValidateRecord checks a raw record for required fields and shape
// constraints. Referential validity of the brand is not checked here: a
// referenced brand that does not exist yet is created in the same run by
// the store.
func ValidateRecord(r collector.Record) error {
	if r.ExternalKey == "" {
		return fmt.Errorf("missing external_key")
	}
	if r.BrandKey == "" {
		return fmt.Errorf("missing brand_key")
	}
	if r.Deleted {
		// A deletion only needs its keys.
		return nil
	}
	if r.Name == "" {
		return fmt.Errorf("missing name")
	}
	if r.Price < 0 {
		return fmt.Errorf("negative price %d", r.Price)
	}
	if r.Stock < 0 {
		return fmt.Errorf("negative stock %d", r.Stock)
	}
	if r.MaxOrderQuantity <= 0 {
		return fmt.Errorf("non-positive max_order_quantity %d", r.MaxOrderQuantity)
	}
	if _, ok := validStatuses[r.Status]; !ok {
		return fmt.Errorf("unknown status %q", r.Status)
	}
	return nil
}
