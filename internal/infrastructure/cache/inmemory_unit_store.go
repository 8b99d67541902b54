package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erp/product-dimension/internal/domain/catalog"
	"go.uber.org/zap"
)

const defaultCleanupInterval = 30 * time.Second

// InMemoryUnitStore implements UnitStore in process memory.
// It is used when Redis is disabled and in tests.
type InMemoryUnitStore struct {
	entries sync.Map // map[string]*cacheEntry[unitSnapshot]
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped int32

	hits   int64
	misses int64
}

// cacheEntry wraps a cached value with expiration time
type cacheEntry[T any] struct {
	value     T
	expiresAt time.Time
}

func (e *cacheEntry[T]) isExpired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// InMemoryUnitStoreOption configures the store
type InMemoryUnitStoreOption func(*InMemoryUnitStore)

// WithInMemoryLogger sets the logger for the store
func WithInMemoryLogger(logger *zap.Logger) InMemoryUnitStoreOption {
	return func(s *InMemoryUnitStore) {
		s.logger = logger
	}
}

// NewInMemoryUnitStore creates the store and starts its cleanup loop
func NewInMemoryUnitStore(opts ...InMemoryUnitStoreOption) *InMemoryUnitStore {
	s := &InMemoryUnitStore{
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.cleanupExpired()

	return s
}

// Get returns a copy of the cached unit
func (s *InMemoryUnitStore) Get(_ context.Context, key string) (*catalog.UnitOfMeasure, bool, error) {
	if value, ok := s.entries.Load(key); ok {
		entry := value.(*cacheEntry[unitSnapshot])
		if !entry.isExpired(time.Now()) {
			atomic.AddInt64(&s.hits, 1)
			return entry.value.unit(), true, nil
		}
		s.entries.Delete(key)
	}
	atomic.AddInt64(&s.misses, 1)
	return nil, false, nil
}

// Set stores a unit; a zero ttl never expires
func (s *InMemoryUnitStore) Set(_ context.Context, key string, unit *catalog.UnitOfMeasure, ttl time.Duration) error {
	if unit == nil {
		return nil
	}
	entry := &cacheEntry[unitSnapshot]{value: snapshotOf(unit)}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	s.entries.Store(key, entry)
	return nil
}

// Delete removes keys from the store
func (s *InMemoryUnitStore) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		s.entries.Delete(key)
	}
	return nil
}

// Stats returns hit and miss counts
func (s *InMemoryUnitStore) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&s.hits), atomic.LoadInt64(&s.misses)
}

// Close stops the cleanup loop
func (s *InMemoryUnitStore) Close() error {
	if atomic.CompareAndSwapInt32(&s.stopped, 0, 1) {
		close(s.stopCh)
	}
	return nil
}

func (s *InMemoryUnitStore) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case now := <-ticker.C:
			removed := 0
			s.entries.Range(func(key, value any) bool {
				if value.(*cacheEntry[unitSnapshot]).isExpired(now) {
					s.entries.Delete(key)
					removed++
				}
				return true
			})
			if removed > 0 {
				s.logger.Debug("Removed expired unit cache entries", zap.Int("count", removed))
			}
		}
	}
}

var _ UnitStore = (*InMemoryUnitStore)(nil)
