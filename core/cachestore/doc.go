// Package cachestore provides the key/value cache store contract and its
// sturdyc-backed implementation.
//
// The contract is deliberately small: get, set with a per-store TTL, delete
// by exact key, and delete by key prefix. Prefix deletion is what makes
// brand-scoped list invalidation cheap; exact membership of affected lists
// is never computed.
package cachestore
