package bootstrap

import (
	"context"
	"log/slog"

	"escrowbook/internal/infra/cache"
	"escrowbook/internal/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var RedisModule = fx.Module("redis",
	fx.Provide(
		NewRedis,
		NewAvailabilityCache,
	),
)

func NewRedis(lc fx.Lifecycle, cfg config.Config) (*redis.Client, error) {
	client, cleanup, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})

	return client, nil
}

func NewAvailabilityCache(client *redis.Client, cfg config.Config, logger *slog.Logger) *cache.AvailabilityCache {
	return cache.NewAvailabilityCache(client, cfg.Redis.CacheTTL, logger)
}
