package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/product-dimension/internal/domain/catalog"
	"github.com/redis/go-redis/v9"
)

const defaultUnitKeyPrefix = "catalog:uom:"

// RedisUnitStore implements UnitStore on Redis so that every instance
// shares invalidations
type RedisUnitStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisUnitStore connects to Redis and verifies the connection
func NewRedisUnitStore(ctx context.Context, cfg RedisConfig) (*RedisUnitStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisUnitStoreWithClient(client, ""), nil
}

// NewRedisUnitStoreWithClient creates a store on an existing client
func NewRedisUnitStoreWithClient(client *redis.Client, keyPrefix string) *RedisUnitStore {
	if keyPrefix == "" {
		keyPrefix = defaultUnitKeyPrefix
	}
	return &RedisUnitStore{client: client, keyPrefix: keyPrefix}
}

// Get returns the cached unit
func (s *RedisUnitStore) Get(ctx context.Context, key string) (*catalog.UnitOfMeasure, bool, error) {
	data, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached unit: %w", err)
	}
	unit, err := decodeUnit(data)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode cached unit: %w", err)
	}
	return unit, true, nil
}

// Set stores a unit; a zero ttl never expires
func (s *RedisUnitStore) Set(ctx context.Context, key string, unit *catalog.UnitOfMeasure, ttl time.Duration) error {
	if unit == nil {
		return nil
	}
	data, err := encodeUnit(unit)
	if err != nil {
		return fmt.Errorf("failed to encode unit: %w", err)
	}
	if err := s.client.Set(ctx, s.keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache unit: %w", err)
	}
	return nil
}

// Delete removes keys
func (s *RedisUnitStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.keyPrefix + k
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached unit: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisUnitStore) Close() error {
	return s.client.Close()
}

var _ UnitStore = (*RedisUnitStore)(nil)
