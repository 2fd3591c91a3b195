// Package reconcile implements the batch pipeline that keeps the relational
// catalog in step with the external collector.
//
// One run moves through FETCHING, VALIDATING, COMMITTING, and SYNCHRONIZING
// before returning to IDLE, or lands in FAILED at any stage:
//
//  1. FETCHING: successive pages are requested from the collector until an
//     empty page, end-of-data, or the page budget is exhausted. Each page is
//     a bounded batch.
//  2. VALIDATING: records missing required fields or violating shape
//     constraints are dropped and counted, never fatal to the run.
//  3. COMMITTING: each batch is applied inside a single transaction; a batch
//     failure rolls back that batch only, prior batches stay committed and
//     the cursor resumes from the last committed batch on the next run.
//  4. SYNCHRONIZING: the accumulated ChangeSet is handed to the cache
//     synchronizer synchronously before the run is declared successful.
//
// Runs never overlap: a trigger during a run is rejected with
// ErrRunInProgress, not queued. Re-running against unchanged external state
// is a no-op — upserts by natural key emit no changes for unchanged rows.
//
// The hand-off between engine and synchronizer is an immutable ChangeSet
// value, never a callback registered into the engine, which keeps the two
// independently testable.
package reconcile
