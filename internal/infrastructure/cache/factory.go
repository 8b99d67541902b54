package cache

import (
	"context"

	"github.com/erp/product-dimension/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewUnitStore returns a Redis store when Redis is enabled and reachable,
// falling back to process memory otherwise
func NewUnitStore(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) UnitStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		logger.Info("Using in-memory unit of measure cache")
		return NewInMemoryUnitStore(WithInMemoryLogger(logger))
	}

	store, err := NewRedisUnitStore(ctx, RedisConfig{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory unit cache. "+
			"Unit changes made by other instances may be served stale until the TTL expires.",
			zap.String("addr", cfg.RedisAddr()),
			zap.Error(err),
		)
		return NewInMemoryUnitStore(WithInMemoryLogger(logger))
	}

	logger.Info("Using Redis unit of measure cache", zap.String("addr", cfg.RedisAddr()))
	return store
}
