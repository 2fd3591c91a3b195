package reconcile

import (
	"context"
	"time"

	"catalog-service/core/collector"
)

// EntityType identifies the kind of entity a change applies to.
type EntityType string

const (
	// EntityProduct is a catalog product.
	EntityProduct EntityType = "product"
	// EntityBrand is a catalog brand.
	EntityBrand EntityType = "brand"
)

// Operation is the kind of mutation applied to an entity.
type Operation string

const (
	// OpCreated means the row was inserted.
	OpCreated Operation = "CREATED"
	// OpUpdated means at least one field changed.
	OpUpdated Operation = "UPDATED"
	// OpDeleted means the row was removed.
	OpDeleted Operation = "DELETED"
)

// Change records one mutation applied during a committed batch.
type Change struct {
	// Entity is the entity type the change applies to.
	Entity EntityType `json:"entity"`

	// ID is the row identifier.
	ID uint64 `json:"id"`

	// BrandID scopes list invalidation for product changes. For brand
	// changes it equals ID.
	BrandID uint64 `json:"brand_id"`

	// Op is the applied operation.
	Op Operation `json:"op"`
}

// ChangeSet is the ordered record of entities affected by one run. It is
// immutable once emitted and consumed exactly once by the synchronizer for
// that run; invalidation is idempotent and commutative, so the set stays
// replayable after a partial failure.
type ChangeSet []Change

// BatchResult is the outcome of one committed batch.
type BatchResult struct {
	// Changes lists the rows actually mutated, in apply order.
	Changes []Change

	// Skipped counts records rejected inside the batch for data-integrity
	// reasons. Skipped records never abort the batch.
	Skipped int
}

// Store is the transactional write side of the relational store. ApplyBatch
// upserts the records by natural key inside a single transaction; a returned
// error means the whole batch rolled back.
type Store interface {
	ApplyBatch(ctx context.Context, records []collector.Record) (BatchResult, error)
}

// Fetcher pages raw records out of the external collector.
type Fetcher interface {
	FetchPage(ctx context.Context, cursor string) (collector.Page, error)
}

// Synchronizer consumes one ChangeSet per run and invalidates the affected
// cache entries.
type Synchronizer interface {
	Apply(ctx context.Context, changes ChangeSet) error
}

// RunState is the engine's position in a run.
type RunState string

const (
	StateIdle          RunState = "IDLE"
	StateFetching      RunState = "FETCHING"
	StateValidating    RunState = "VALIDATING"
	StateCommitting    RunState = "COMMITTING"
	StateSynchronizing RunState = "SYNCHRONIZING"
	StateFailed        RunState = "FAILED"
)

// Report summarizes one run.
type Report struct {
	// Pages is the number of pages fetched.
	Pages int `json:"pages"`

	// Fetched is the total number of records received.
	Fetched int `json:"fetched"`

	// Invalid counts records dropped during validation.
	Invalid int `json:"invalid"`

	// Skipped counts records dropped during commit for data-integrity reasons.
	Skipped int `json:"skipped"`

	// Applied is the number of rows actually mutated.
	Applied int `json:"applied"`

	// Changes is the emitted change set.
	Changes ChangeSet `json:"changes"`

	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
}

// Config holds the run budget and schedule for the engine.
type Config struct {
	// Enabled turns the background scheduler on.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// IntervalSeconds is the fixed interval between scheduled runs.
	IntervalSeconds int `mapstructure:"interval_seconds" default:"300"`
	// MaxPages bounds the number of pages fetched per run.
	MaxPages int `mapstructure:"max_pages" default:"100"`
}

// Interval returns the scheduler interval.
func (c Config) Interval() time.Duration {
	if c.IntervalSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.IntervalSeconds) * time.Second
}
