package cachestore

import "time"

// Config holds configuration for the in-process cache stores.
// Detail and list entries live in separate stores because they carry
// different TTLs: detail entries are long-lived, list entries turn over
// quickly since their membership changes with every reconciliation.
type Config struct {
	// Capacity is the maximum number of entries per store.
	Capacity int `mapstructure:"capacity" default:"10000"`
	// NumShards is the number of shards for concurrent access.
	NumShards int `mapstructure:"num_shards" default:"256"`
	// EvictionPercentage is the share of entries evicted when a store is full.
	EvictionPercentage int `mapstructure:"eviction_percentage" default:"10"`
	// DetailTTLSeconds is the safety-net TTL for entity detail entries.
	DetailTTLSeconds int `mapstructure:"detail_ttl_seconds" default:"600"`
	// ListTTLSeconds is the safety-net TTL for list entries.
	ListTTLSeconds int `mapstructure:"list_ttl_seconds" default:"60"`
}

// DetailTTL returns the detail store TTL.
func (c Config) DetailTTL() time.Duration {
	if c.DetailTTLSeconds <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.DetailTTLSeconds) * time.Second
}

// ListTTL returns the list store TTL.
func (c Config) ListTTL() time.Duration {
	if c.ListTTLSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.ListTTLSeconds) * time.Second
}

func (c Config) withDefaults() Config {
	if c.Capacity <= 0 {
		c.Capacity = 10000
	}
	if c.NumShards <= 0 {
		c.NumShards = 256
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		c.EvictionPercentage = 10
	}
	return c
}
