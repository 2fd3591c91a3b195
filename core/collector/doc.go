// Package collector implements the typed client for the external catalog
// data source.
//
// The collector exposes a paged fetch: each request carries a cursor and a
// page size, each response carries a bounded batch of raw records plus a
// continuation cursor or an end-of-data marker. All calls run through a
// resilience.Gate so partial upstream failure never cascades into callers.
package collector
