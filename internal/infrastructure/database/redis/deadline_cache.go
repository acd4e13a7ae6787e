package redis

import (
	"context"
	"time"

	"github.com/complyops/deadline-engine/internal/domain/deadline"
	"github.com/complyops/deadline-engine/internal/infrastructure/monitoring/logging"
	"github.com/complyops/deadline-engine/pkg/errors"
)

// CachedDeadlineRepository wraps a DeadlineRepository with a read-through
// cache keyed by calculation ID.  Point lookups are served from Redis;
// writes go to the store first and then refresh or drop the cached entry.
// Range queries and dependency snapshots always hit the store, their
// results shift with the as-of time.
type CachedDeadlineRepository struct {
	inner  deadline.DeadlineRepository
	cache  Cache
	logger logging.Logger
	ttl    time.Duration
}

// NewCachedDeadlineRepository decorates inner with a Redis cache.  A zero
// ttl uses one hour.
func NewCachedDeadlineRepository(inner deadline.DeadlineRepository, cache Cache, log logging.Logger, ttl time.Duration) *CachedDeadlineRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachedDeadlineRepository{
		inner:  inner,
		cache:  cache,
		logger: log,
		ttl:    ttl,
	}
}

func deadlineKey(calculationID string) string {
	return "calc:" + calculationID
}

func (r *CachedDeadlineRepository) Insert(ctx context.Context, d *deadline.CalculatedDeadline) error {
	if err := r.inner.Insert(ctx, d); err != nil {
		return err
	}
	if err := r.cache.Set(ctx, deadlineKey(d.CalculationID), d, r.ttl); err != nil {
		r.logger.Warn("Failed to cache inserted deadline",
			logging.String("calculation_id", d.CalculationID), logging.Err(err))
	}
	return nil
}

func (r *CachedDeadlineRepository) GetByCalculationID(ctx context.Context, calculationID string) (*deadline.CalculatedDeadline, error) {
	var rec deadline.CalculatedDeadline
	err := r.cache.GetOrSet(ctx, deadlineKey(calculationID), &rec, r.ttl, func(ctx context.Context) (interface{}, error) {
		loaded, err := r.inner.GetByCalculationID(ctx, calculationID)
		if err != nil {
			return nil, err
		}
		if loaded == nil {
			return nil, nil
		}
		return loaded, nil
	})
	if err == ErrCacheMiss {
		// Null-cached absence.
		return nil, nil
	}
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeCacheError) || errors.IsCode(err, errors.ErrCodeSerialization) {
			// Degraded cache must not take point lookups down with it.
			r.logger.Warn("Deadline cache unavailable, reading store directly",
				logging.String("calculation_id", calculationID), logging.Err(err))
			return r.inner.GetByCalculationID(ctx, calculationID)
		}
		return nil, err
	}
	return &rec, nil
}

func (r *CachedDeadlineRepository) ListUpcoming(ctx context.Context, asOf time.Time, daysAhead int, filter deadline.ListFilter) ([]*deadline.CalculatedDeadline, error) {
	return r.inner.ListUpcoming(ctx, asOf, daysAhead, filter)
}

func (r *CachedDeadlineRepository) ListOverdue(ctx context.Context, asOf time.Time, filter deadline.ListFilter) ([]*deadline.CalculatedDeadline, error) {
	return r.inner.ListOverdue(ctx, asOf, filter)
}

func (r *CachedDeadlineRepository) UpdateStatus(ctx context.Context, calculationID string, status deadline.Status, daysRemaining, businessDaysRemaining int) (bool, error) {
	changed, err := r.inner.UpdateStatus(ctx, calculationID, status, daysRemaining, businessDaysRemaining)
	if err != nil {
		return changed, err
	}
	if changed {
		r.invalidate(ctx, calculationID)
	}
	return changed, nil
}

func (r *CachedDeadlineRepository) RecordAlert(ctx context.Context, calculationID string, threshold int) error {
	if err := r.inner.RecordAlert(ctx, calculationID, threshold); err != nil {
		return err
	}
	r.invalidate(ctx, calculationID)
	return nil
}

func (r *CachedDeadlineRepository) CompletedByDeadlineIDs(ctx context.Context, deadlineIDs []string, reportingPeriod string) (map[string]bool, error) {
	return r.inner.CompletedByDeadlineIDs(ctx, deadlineIDs, reportingPeriod)
}

func (r *CachedDeadlineRepository) invalidate(ctx context.Context, calculationID string) {
	if err := r.cache.Delete(ctx, deadlineKey(calculationID)); err != nil {
		r.logger.Warn("Failed to invalidate cached deadline",
			logging.String("calculation_id", calculationID), logging.Err(err))
	}
}
