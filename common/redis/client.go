package redis

import (
	"context"

	"safetrack/common/config"

	"github.com/go-redis/redis/v8"
)

// Client alias so callers don't import go-redis directly for the type.
type Client = redis.Client

// NewRedisClient builds a client; it does not dial until first use.
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func Ping(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}

func Close(client *redis.Client) error {
	if client == nil {
		return nil
	}
	return client.Close()
}
