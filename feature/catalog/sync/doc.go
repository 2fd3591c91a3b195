// Package sync invalidates catalog cache entries from the ChangeSet emitted
// by a reconciliation run.
package sync
