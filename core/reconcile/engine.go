package reconcile

import (
	"context"
	"errors"
	"sync"
	"time"

	"catalog-service/core/collector"

	"go.uber.org/zap"
)

// ErrRunInProgress is returned when a run is triggered while another run is
// still in progress. Triggers are rejected, not queued.
var ErrRunInProgress = errors.New("reconciliation run already in progress")

// Engine is the batch reconciliation pipeline. One run pages records out of
// the collector, validates them, commits them batch-by-batch into the
// relational store, and hands the resulting ChangeSet to the synchronizer.
type Engine struct {
	fetcher Fetcher
	store   Store
	sync    Synchronizer
	cfg     Config
	logger  *zap.Logger

	runMu sync.Mutex // run-level exclusivity

	mu     sync.Mutex
	state  RunState
	cursor string // resumes from the last committed batch
}

// NewEngine wires the pipeline stages together.
func NewEngine(fetcher Fetcher, store Store, sync Synchronizer, cfg Config, logger *zap.Logger) *Engine {
	return &Engine{
		fetcher: fetcher,
		store:   store,
		sync:    sync,
		cfg:     cfg,
		logger:  logger,
		state:   StateIdle,
	}
}

// State returns the engine's current run state.
func (e *Engine) State() RunState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) setState(s RunState) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

func (e *Engine) loadCursor() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

func (e *Engine) storeCursor(c string) {
	e.mu.Lock()
	e.cursor = c
	e.mu.Unlock()
}

// Run executes one reconciliation run. A run already in progress makes Run
// return ErrRunInProgress immediately. Batch failures leave prior committed
// batches applied; the cursor resumes from the last committed batch on the
// next run.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	if !e.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer e.runMu.Unlock()

	report := &Report{Started: time.Now()}
	changes := ChangeSet{}
	cursor := e.loadCursor()

	defer func() { report.Finished = time.Now() }()

	for {
		if e.cfg.MaxPages > 0 && report.Pages >= e.cfg.MaxPages {
			e.logger.Info("page budget exhausted, finishing run early",
				zap.Int("pages", report.Pages))
			break
		}
		if err := ctx.Err(); err != nil {
			// Cancellation leaves the store at the last committed batch and
			// hands no partial ChangeSet to the synchronizer.
			e.setState(StateFailed)
			return report, err
		}

		e.setState(StateFetching)
		page, err := e.fetcher.FetchPage(ctx, cursor)
		if err != nil {
			e.setState(StateFailed)
			e.logger.Error("fetch failed, aborting run",
				zap.String("cursor", cursor), zap.Error(err))
			return report, err
		}
		report.Pages++
		report.Fetched += len(page.Records)

		if len(page.Records) > 0 {
			e.setState(StateValidating)
			valid := e.validate(page.Records, report)

			if len(valid) > 0 {
				e.setState(StateCommitting)
				res, err := e.store.ApplyBatch(ctx, valid)
				if err != nil {
					// This batch rolled back; earlier batches stay committed,
					// so their changes are still synchronized below.
					e.setState(StateFailed)
					e.logger.Error("batch commit failed",
						zap.String("cursor", cursor), zap.Error(err))
					e.synchronize(ctx, changes, report)
					return report, err
				}
				changes = append(changes, res.Changes...)
				report.Skipped += res.Skipped
				report.Applied += len(res.Changes)
			}
		}

		// The cursor only advances past a committed batch.
		cursor = page.NextCursor
		e.storeCursor(cursor)

		if page.EndOfData || len(page.Records) == 0 {
			// Full pass complete, the next run starts over.
			e.storeCursor("")
			break
		}
	}

	if err := e.synchronize(ctx, changes, report); err != nil {
		e.setState(StateFailed)
		return report, err
	}

	e.setState(StateIdle)
	report.Changes = changes
	e.logger.Info("reconciliation run complete",
		zap.Int("pages", report.Pages),
		zap.Int("fetched", report.Fetched),
		zap.Int("invalid", report.Invalid),
		zap.Int("skipped", report.Skipped),
		zap.Int("applied", report.Applied),
	)
	return report, nil
}

// validate drops invalid records, logging each one. Invalid records are
// counted, never fatal to the run.
func (e *Engine) validate(records []collector.Record, report *Report) []collector.Record {
	valid := records[:0:0]
	for _, r := range records {
		if err := ValidateRecord(r); err != nil {
			report.Invalid++
			e.logger.Warn("dropping invalid record",
				zap.String("external_key", r.ExternalKey),
				zap.String("brand_key", r.BrandKey),
				zap.Error(err),
			)
			continue
		}
		valid = append(valid, r)
	}
	return valid
}

// synchronize hands the accumulated ChangeSet to the synchronizer. The set
// covers committed batches only, so it is never partial with respect to the
// store.
func (e *Engine) synchronize(ctx context.Context, changes ChangeSet, report *Report) error {
	if len(changes) == 0 {
		report.Changes = changes
		return nil
	}
	e.setState(StateSynchronizing)
	if err := e.sync.Apply(ctx, changes); err != nil {
		e.logger.Error("cache synchronization failed", zap.Error(err))
		return err
	}
	report.Changes = changes
	return nil
}
