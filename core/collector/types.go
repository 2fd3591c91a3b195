package collector

// Record is one raw catalog record from the external collector. Records are
// keyed by the external natural key, not by our row identifiers.
type Record struct {
	// ExternalKey is the collector-side natural key for the product.
	ExternalKey string `json:"external_key"`

	// BrandKey is the collector-side natural key for the owning brand.
	BrandKey string `json:"brand_key"`

	// BrandName is the display name of the owning brand.
	BrandName string `json:"brand_name"`

	// Name is the product display name.
	Name string `json:"name"`

	// Description is optional free text.
	Description string `json:"description"`

	// Price is in the smallest currency unit.
	Price int64 `json:"price"`

	// Stock is the available quantity.
	Stock int `json:"stock"`

	// MaxOrderQuantity caps a single order.
	MaxOrderQuantity int `json:"max_order_quantity"`

	// Status is the collector-reported product status (ACTIVE, OUT_OF_STOCK).
	Status string `json:"status"`

	// Deleted marks the record as removed upstream.
	Deleted bool `json:"deleted"`
}

// Page is one bounded batch of records plus the continuation cursor.
type Page struct {
	// Records is the page content, up to the requested size.
	Records []Record `json:"records"`

	// NextCursor continues the fetch; empty when EndOfData is set.
	NextCursor string `json:"next_cursor"`

	// EndOfData marks the final page.
	EndOfData bool `json:"end_of_data"`
}
