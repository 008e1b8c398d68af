package config

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient returns nil when REDIS_ADDR is not configured.
func NewRedisClient(env Env) *redis.Client {
	if env.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:        env.RedisAddr,
		Password:    env.RedisPassword,
		DB:          env.RedisDB,
		DialTimeout: 3 * time.Second,
	})
}

func PingRedis(ctx context.Context, client *redis.Client) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}
