package reconcile_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"catalog-service/core/collector"
	"catalog-service/core/reconcile"
	"catalog-service/core/resilience"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// fakeFetcher serves a scripted set of pages keyed by cursor.
type fakeFetcher struct {
	pages map[string]collector.Page
	errs  map[string]error
	block chan struct{} // when set, FetchPage waits until closed

	mu      sync.Mutex
	cursors []string
}

func (f *fakeFetcher) FetchPage(ctx context.Context, cursor string) (collector.Page, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.cursors = append(f.cursors, cursor)
	f.mu.Unlock()
	if err, ok := f.errs[cursor]; ok {
		return collector.Page{}, err
	}
	return f.pages[cursor], nil
}

func (f *fakeFetcher) cursorCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cursors)
}

// fakeStore turns each record into one product change, failing on demand.
type fakeStore struct {
	batches [][]collector.Record
	failOn  int  // 1-based batch index that fails, 0 = never
	noop    bool // rows already match, emit no changes
	skipped int
	nextID  uint64
}

func (s *fakeStore) ApplyBatch(ctx context.Context, records []collector.Record) (reconcile.BatchResult, error) {
	s.batches = append(s.batches, records)
	if s.failOn > 0 && len(s.batches) == s.failOn {
		return reconcile.BatchResult{}, errors.New("deadlock detected")
	}
	if s.noop {
		return reconcile.BatchResult{}, nil
	}
	var res reconcile.BatchResult
	for range records {
		s.nextID++
		res.Changes = append(res.Changes, reconcile.Change{
			Entity:  reconcile.EntityProduct,
			ID:      s.nextID,
			BrandID: 1,
			Op:      reconcile.OpCreated,
		})
	}
	res.Skipped = s.skipped
	return res, nil
}

type fakeSync struct {
	applied []reconcile.ChangeSet
	err     error
}

func (s *fakeSync) Apply(ctx context.Context, changes reconcile.ChangeSet) error {
	if s.err != nil {
		return s.err
	}
	s.applied = append(s.applied, changes)
	return nil
}

func record(key string) collector.Record {
	return collector.Record{
		ExternalKey:      key,
		BrandKey:         "brand-a",
		BrandName:        "Brand A",
		Name:             "Product " + key,
		Price:            1000,
		Stock:            5,
		MaxOrderQuantity: 10,
		Status:           "ACTIVE",
	}
}

func newTestEngine(fetcher *fakeFetcher, store *fakeStore, sync *fakeSync, cfg reconcile.Config) *reconcile.Engine {
	return reconcile.NewEngine(fetcher, store, sync, cfg, zap.NewNop())
}

func TestEngineRunAppliesAllPages(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]collector.Page{
		"":   {Records: []collector.Record{record("sku-1"), record("sku-2")}, NextCursor: "c1"},
		"c1": {Records: []collector.Record{record("sku-3")}, EndOfData: true},
	}}
	store := &fakeStore{}
	sync := &fakeSync{}
	engine := newTestEngine(fetcher, store, sync, reconcile.Config{})

	report, err := engine.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, report.Pages)
	assert.Equal(t, 3, report.Fetched)
	assert.Equal(t, 3, report.Applied)
	assert.Equal(t, 0, report.Invalid)
	assert.Len(t, report.Changes, 3)
	assert.Equal(t, reconcile.StateIdle, engine.State())

	// One ChangeSet per run, covering every committed batch.
	assert.Len(t, sync.applied, 1)
	assert.Len(t, sync.applied[0], 3)

	// A completed pass resets the cursor; the next run starts over.
	_, err = engine.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{"", "c1", ""}, fetcher.cursors[:3])
}

func TestEngineDropsInvalidRecords(t *testing.T) {
	bad := record("sku-bad")
	bad.Price = -5
	fetcher := &fakeFetcher{pages: map[string]collector.Page{
		"": {Records: []collector.Record{record("sku-1"), bad}, EndOfData: true},
	}}
	store := &fakeStore{}
	sync := &fakeSync{}
	engine := newTestEngine(fetcher, store, sync, reconcile.Config{})

	report, err := engine.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, report.Fetched)
	assert.Equal(t, 1, report.Invalid)
	assert.Equal(t, 1, report.Applied)

	// Only the valid record reached the store.
	assert.Len(t, store.batches, 1)
	assert.Len(t, store.batches[0], 1)
	assert.Equal(t, "sku-1", store.batches[0][0].ExternalKey)
}

func TestEngineCountsSkippedRecords(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]collector.Page{
		"": {Records: []collector.Record{record("sku-1")}, EndOfData: true},
	}}
	store := &fakeStore{skipped: 2}
	sync := &fakeSync{}
	engine := newTestEngine(fetcher, store, sync, reconcile.Config{})

	report, err := engine.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, report.Skipped)
}

func TestEngineRejectsConcurrentRun(t *testing.T) {
	block := make(chan struct{})
	fetcher := &fakeFetcher{
		pages: map[string]collector.Page{"": {EndOfData: true}},
		block: block,
	}
	engine := newTestEngine(fetcher, &fakeStore{}, &fakeSync{}, reconcile.Config{})

	done := make(chan error, 1)
	go func() {
		_, err := engine.Run(context.Background())
		done <- err
	}()

	// Wait until the first run holds the lock inside FetchPage.
	assert.Eventually(t, func() bool {
		_, err := engine.Run(context.Background())
		return errors.Is(err, reconcile.ErrRunInProgress)
	}, time.Second, time.Millisecond)

	close(block)
	assert.NoError(t, <-done)
}

func TestEngineBatchFailureKeepsCommittedBatches(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]collector.Page{
		"":   {Records: []collector.Record{record("sku-1")}, NextCursor: "c1"},
		"c1": {Records: []collector.Record{record("sku-2")}, EndOfData: true},
	}}
	store := &fakeStore{failOn: 2}
	sync := &fakeSync{}
	engine := newTestEngine(fetcher, store, sync, reconcile.Config{})

	_, err := engine.Run(context.Background())
	assert.Error(t, err)
	assert.Equal(t, reconcile.StateFailed, engine.State())

	// The first batch's changes are still synchronized.
	assert.Len(t, sync.applied, 1)
	assert.Len(t, sync.applied[0], 1)

	// The next run resumes from the failed batch, not from the start.
	store.failOn = 0
	report, err := engine.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "c1", fetcher.cursors[len(fetcher.cursors)-1])
	assert.Equal(t, 1, report.Applied)
}

func TestEngineFetchFailureAbortsWithoutSync(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[string]collector.Page{},
		errs:  map[string]error{"": resilience.Errorf(resilience.KindCircuitOpen, "collector: circuit open")},
	}
	sync := &fakeSync{}
	engine := newTestEngine(fetcher, &fakeStore{}, sync, reconcile.Config{})

	_, err := engine.Run(context.Background())
	assert.Equal(t, resilience.KindCircuitOpen, resilience.KindOf(err))
	assert.Equal(t, reconcile.StateFailed, engine.State())
	assert.Empty(t, sync.applied)
}

func TestEngineHonorsPageBudget(t *testing.T) {
	// Every page points at itself, an unbounded stream.
	fetcher := &fakeFetcher{pages: map[string]collector.Page{
		"":  {Records: []collector.Record{record("sku-1")}, NextCursor: "c"},
		"c": {Records: []collector.Record{record("sku-2")}, NextCursor: "c"},
	}}
	store := &fakeStore{}
	sync := &fakeSync{}
	engine := newTestEngine(fetcher, store, sync, reconcile.Config{MaxPages: 2})

	report, err := engine.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, report.Pages)
	// Partial pass still synchronizes what it committed.
	assert.Len(t, sync.applied, 1)
}

func TestEngineCancelledBeforeFetchDoesNotSync(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]collector.Page{
		"": {Records: []collector.Record{record("sku-1")}, EndOfData: true},
	}}
	sync := &fakeSync{}
	engine := newTestEngine(fetcher, &fakeStore{}, sync, reconcile.Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sync.applied)
	assert.Empty(t, fetcher.cursors)
}

func TestEngineSyncFailureFailsRun(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]collector.Page{
		"": {Records: []collector.Record{record("sku-1")}, EndOfData: true},
	}}
	sync := &fakeSync{err: errors.New("invalidation failed")}
	engine := newTestEngine(fetcher, &fakeStore{}, sync, reconcile.Config{})

	_, err := engine.Run(context.Background())
	assert.Error(t, err)
	assert.Equal(t, reconcile.StateFailed, engine.State())
}

func TestEngineUnchangedSourceEmitsEmptyChangeSet(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]collector.Page{
		"": {Records: []collector.Record{record("sku-1"), record("sku-2")}, EndOfData: true},
	}}
	store := &fakeStore{noop: true}
	sync := &fakeSync{}
	engine := newTestEngine(fetcher, store, sync, reconcile.Config{})

	report, err := engine.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, report.Fetched)
	assert.Equal(t, 0, report.Applied)
	assert.Empty(t, report.Changes)
	// Nothing changed, so the synchronizer is never invoked.
	assert.Empty(t, sync.applied)
}

func TestEngineEmptyPageEndsPass(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]collector.Page{
		"": {NextCursor: "c1"},
	}}
	store := &fakeStore{}
	sync := &fakeSync{}
	engine := newTestEngine(fetcher, store, sync, reconcile.Config{})

	report, err := engine.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, report.Pages)
	assert.Empty(t, store.batches)
	// Nothing changed, nothing to synchronize.
	assert.Empty(t, sync.applied)
}
