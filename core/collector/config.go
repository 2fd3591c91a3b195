package collector

// Config holds configuration for the external collector endpoint.
type Config struct {
	// BaseURL is the collector endpoint, e.g. "http://collector:9090".
	BaseURL string `mapstructure:"base_url" default:"http://localhost:9090"`
	// PageSize is the number of records requested per page.
	PageSize int `mapstructure:"page_size" default:"200"`
}
