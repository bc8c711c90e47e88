package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"escrowbook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "avail"

// AvailabilityCache stores month rollups keyed by offering and month, with a
// per-provider key set so a committed-status change can drop every cached
// month for that provider in one call.
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewAvailabilityCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *AvailabilityCache {
	return &AvailabilityCache{client: client, ttl: ttl, logger: logger}
}

func monthKey(offeringID uuid.UUID, year int, month time.Month) string {
	return fmt.Sprintf("%s:month:%s:%04d-%02d", keyPrefix, offeringID, year, int(month))
}

func providerSetKey(providerID uuid.UUID) string {
	return fmt.Sprintf("%s:provider:%s", keyPrefix, providerID)
}

// GetMonth returns the cached rollup or (nil, false). Cache trouble is
// treated as a miss so availability never depends on redis being up.
func (c *AvailabilityCache) GetMonth(ctx context.Context, offeringID uuid.UUID, year int, month time.Month) (*queries.MonthAvailability, bool) {
	raw, err := c.client.Get(ctx, monthKey(offeringID, year, month)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("availability cache read failed", "error", err)
		}
		return nil, false
	}
	var rollup queries.MonthAvailability
	if err := json.Unmarshal(raw, &rollup); err != nil {
		c.logger.Warn("availability cache entry corrupt, dropping", "error", err)
		_ = c.client.Del(ctx, monthKey(offeringID, year, month)).Err()
		return nil, false
	}
	return &rollup, true
}

func (c *AvailabilityCache) SetMonth(ctx context.Context, providerID uuid.UUID, rollup *queries.MonthAvailability) {
	raw, err := json.Marshal(rollup)
	if err != nil {
		c.logger.Warn("availability cache encode failed", "error", err)
		return
	}
	key := monthKey(rollup.OfferingID, rollup.Year, rollup.Month)

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, key, raw, c.ttl)
	pipe.SAdd(ctx, providerSetKey(providerID), key)
	pipe.Expire(ctx, providerSetKey(providerID), c.ttl*2)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("availability cache write failed", "error", err)
	}
}

// InvalidateProvider drops every cached month for the provider. Called
// synchronously after any committed-status change commits.
func (c *AvailabilityCache) InvalidateProvider(ctx context.Context, providerID uuid.UUID) {
	setKey := providerSetKey(providerID)
	keys, err := c.client.SMembers(ctx, setKey).Result()
	if err != nil {
		c.logger.Warn("availability cache invalidation read failed", "provider_id", providerID, "error", err)
		return
	}
	keys = append(keys, setKey)
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("availability cache invalidation failed", "provider_id", providerID, "error", err)
	}
}

func NewRedisClient(addr, password string, db int) (*redis.Client, func(), error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = client.Close() }
	return client, cleanup, nil
}
