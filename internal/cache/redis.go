// Package cache stores rendered cart views in Redis. Stock decisions never read from it.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const maxJitter = 5 * time.Minute

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// RedisCartCache keeps one JSON document per user under cart:<user id>.
type RedisCartCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisCartCache(client *redis.Client, ttl time.Duration) *RedisCartCache {
	return &RedisCartCache{client: client, baseTTL: ttl}
}

func (r *RedisCartCache) Get(ctx context.Context, userID uuid.UUID, dst any) (bool, error) {
	data, err := r.client.Get(ctx, cacheKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return true, nil
}

func (r *RedisCartCache) Set(ctx context.Context, userID uuid.UUID, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	ttl := r.baseTTL + rand.N(maxJitter)
	if err := r.client.Set(ctx, cacheKey(userID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCartCache) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := r.client.Del(ctx, cacheKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(userID uuid.UUID) string {
	return "cart:" + userID.String()
}

// NopCartCache never stores anything. It is used when Redis is disabled.
type NopCartCache struct{}

func (NopCartCache) Get(context.Context, uuid.UUID, any) (bool, error) { return false, nil }
func (NopCartCache) Set(context.Context, uuid.UUID, any) error         { return nil }
func (NopCartCache) Delete(context.Context, uuid.UUID) error           { return nil }
