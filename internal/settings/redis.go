package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisConfig describes the Redis connection.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Prefix is prepended to every settings key.
	Prefix string
}

// Redis stores each settings key as a hash.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to Redis and verifies the connection with PING.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is empty")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis %s: %w", cfg.Addr, err)
	}
	return NewRedisFromClient(client, cfg.Prefix), nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) hashKey(key string) string {
	return r.prefix + key
}

// Read returns the hash stored under key, or an empty map.
func (r *Redis) Read(ctx context.Context, key string) (map[string]string, error) {
	values, err := r.client.HGetAll(ctx, r.hashKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis HGETALL %s: %w", r.hashKey(key), err)
	}
	if values == nil {
		values = make(map[string]string)
	}
	return values, nil
}

// Write replaces the hash under key inside a MULTI/EXEC block.
func (r *Redis) Write(ctx context.Context, key string, values map[string]string) error {
	hk := r.hashKey(key)
	fields := make([]interface{}, 0, len(values)*2)
	for k, v := range values {
		fields = append(fields, k, v)
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, hk)
		if len(fields) > 0 {
			pipe.HSet(ctx, hk, fields...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis write %s: %w", hk, err)
	}
	return nil
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}
