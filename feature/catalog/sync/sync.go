package sync

import (
	"context"

	"catalog-service/core/reconcile"
	"catalog-service/feature/catalog"

	"go.uber.org/zap"
)

// Synchronizer consumes the ChangeSet of one reconciliation run and
// invalidates the affected cache entries. Entries are processed
// sequentially in the order received; invalidation is idempotent, so an
// interrupted pass can be retried from the replayable ChangeSet without
// re-deriving which entries were affected.
type Synchronizer struct {
	cache  *catalog.Cache
	logger *zap.Logger
}

// NewSynchronizer creates a synchronizer over the catalog cache.
func NewSynchronizer(cache *catalog.Cache, logger *zap.Logger) *Synchronizer {
	return &Synchronizer{cache: cache, logger: logger}
}

// Apply invalidates the direct cache key of every changed entity, plus all
// list entries scoped to the entity's brand. List invalidation covers
// updates as well: a price or like-count change can reorder a sorted list
// even when membership is unchanged.
func (s *Synchronizer) Apply(ctx context.Context, changes reconcile.ChangeSet) error {
	dropped := 0
	for _, ch := range changes {
		if err := ctx.Err(); err != nil {
			return err
		}

		switch ch.Entity {
		case reconcile.EntityProduct:
			s.cache.InvalidateProduct(ch.ID)
			dropped += s.cache.InvalidateBrandLists(ch.BrandID)
		case reconcile.EntityBrand:
			s.cache.InvalidateBrand(ch.ID)
			dropped += s.cache.InvalidateBrandLists(ch.ID)
		default:
			s.logger.Warn("unknown entity type in change set",
				zap.String("entity", string(ch.Entity)),
				zap.Uint64("id", ch.ID),
			)
		}
	}

	s.logger.Info("cache synchronization complete",
		zap.Int("changes", len(changes)),
		zap.Int("list_entries_dropped", dropped),
	)
	return nil
}
