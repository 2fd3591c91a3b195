package cachestore

import (
	"strings"
	"time"

	"github.com/viccon/sturdyc"
)

// Store is the key/value cache contract the catalog layer depends on.
// Values are opaque serialized bytes; the TTL is fixed per store instance
// and acts as a safety net only, correctness comes from explicit
// invalidation.
type Store interface {
	// Get returns the cached value and whether it was present.
	Get(key string) ([]byte, bool)
	// Set stores a value under key with the store's TTL.
	Set(key string, value []byte)
	// Delete removes the exact key.
	Delete(key string)
	// DeleteByPrefix removes every key starting with prefix and returns
	// how many entries were dropped.
	DeleteByPrefix(prefix string) int
	// Len returns the number of live entries.
	Len() int
}

// sturdycStore backs Store with a sturdyc client.
type sturdycStore struct {
	client *sturdyc.Client[[]byte]
}

// New creates a sturdyc-backed store with the given TTL.
func New(cfg Config, ttl time.Duration) Store {
	cfg = cfg.withDefaults()
	return &sturdycStore{
		client: sturdyc.New[[]byte](cfg.Capacity, cfg.NumShards, ttl, cfg.EvictionPercentage),
	}
}

func (s *sturdycStore) Get(key string) ([]byte, bool) {
	return s.client.Get(key)
}

func (s *sturdycStore) Set(key string, value []byte) {
	s.client.Set(key, value)
}

func (s *sturdycStore) Delete(key string) {
	s.client.Delete(key)
}

func (s *sturdycStore) DeleteByPrefix(prefix string) int {
	dropped := 0
	for _, key := range s.client.ScanKeys() {
		if strings.HasPrefix(key, prefix) {
			s.client.Delete(key)
			dropped++
		}
	}
	return dropped
}

func (s *sturdycStore) Len() int {
	return s.client.Size()
}
