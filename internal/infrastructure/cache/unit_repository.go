package cache

import (
	"context"
	"time"

	"github.com/erp/product-dimension/internal/domain/catalog"
	"github.com/erp/product-dimension/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CachedUnitOfMeasureRepository serves unit lookups from a UnitStore.
// Lists and counts always go to the wrapped repository.
type CachedUnitOfMeasureRepository struct {
	next   catalog.UnitOfMeasureRepository
	store  UnitStore
	ttl    time.Duration
	logger *zap.Logger
	onHit  func(hit bool)
}

// CachedUnitOption configures the cached repository
type CachedUnitOption func(*CachedUnitOfMeasureRepository)

// WithLookupObserver is called with the outcome of every cached lookup
func WithLookupObserver(fn func(hit bool)) CachedUnitOption {
	return func(r *CachedUnitOfMeasureRepository) {
		r.onHit = fn
	}
}

// NewCachedUnitOfMeasureRepository wraps next with the store
func NewCachedUnitOfMeasureRepository(next catalog.UnitOfMeasureRepository, store UnitStore, ttl time.Duration, logger *zap.Logger, opts ...CachedUnitOption) *CachedUnitOfMeasureRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &CachedUnitOfMeasureRepository{next: next, store: store, ttl: ttl, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Decorator returns a function that wraps repositories with this cache's store
func Decorator(store UnitStore, ttl time.Duration, logger *zap.Logger, opts ...CachedUnitOption) func(catalog.UnitOfMeasureRepository) catalog.UnitOfMeasureRepository {
	return func(next catalog.UnitOfMeasureRepository) catalog.UnitOfMeasureRepository {
		return NewCachedUnitOfMeasureRepository(next, store, ttl, logger, opts...)
	}
}

// FindByID finds a unit by ID
func (r *CachedUnitOfMeasureRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.UnitOfMeasure, error) {
	return r.lookup(ctx, unitIDKey(id), func() (*catalog.UnitOfMeasure, error) {
		return r.next.FindByID(ctx, id)
	})
}

// FindByCode finds a unit by code
func (r *CachedUnitOfMeasureRepository) FindByCode(ctx context.Context, code string) (*catalog.UnitOfMeasure, error) {
	return r.lookup(ctx, unitCodeKey(code), func() (*catalog.UnitOfMeasure, error) {
		return r.next.FindByCode(ctx, code)
	})
}

// FindAll is not cached
func (r *CachedUnitOfMeasureRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.UnitOfMeasure, error) {
	return r.next.FindAll(ctx, filter)
}

// Count is not cached
func (r *CachedUnitOfMeasureRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return r.next.Count(ctx, filter)
}

// ExistsByCode is not cached
func (r *CachedUnitOfMeasureRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return r.next.ExistsByCode(ctx, code)
}

// Save persists the unit and drops its cache entries
func (r *CachedUnitOfMeasureRepository) Save(ctx context.Context, unit *catalog.UnitOfMeasure) error {
	if err := r.next.Save(ctx, unit); err != nil {
		return err
	}
	if err := r.store.Delete(ctx, unitIDKey(unit.ID), unitCodeKey(unit.Code)); err != nil {
		r.logger.Warn("Failed to invalidate cached unit",
			zap.String("unit_id", unit.ID.String()),
			zap.Error(err),
		)
	}
	return nil
}

func (r *CachedUnitOfMeasureRepository) lookup(ctx context.Context, key string, load func() (*catalog.UnitOfMeasure, error)) (*catalog.UnitOfMeasure, error) {
	unit, ok, err := r.store.Get(ctx, key)
	if err != nil {
		r.logger.Warn("Unit cache read failed", zap.String("key", key), zap.Error(err))
	}
	if r.onHit != nil {
		r.onHit(ok)
	}
	if ok {
		return unit, nil
	}

	unit, err = load()
	if err != nil {
		return nil, err
	}
	if err := r.store.Set(ctx, key, unit, r.ttl); err != nil {
		r.logger.Warn("Unit cache write failed", zap.String("key", key), zap.Error(err))
	}
	return unit, nil
}

var _ catalog.UnitOfMeasureRepository = (*CachedUnitOfMeasureRepository)(nil)
