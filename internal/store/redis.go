// ABOUTME: Redis implementation of the per-session key-value contract
// ABOUTME: Lets several dashboard replicas share token state; keys expire with the session TTL

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "jobsforce-admin"

// RedisKV stores session values in Redis under jobsforce-admin:<session>:<key>.
type RedisKV struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// RedisOptions configures NewRedisKV.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// TTL applied to every write. Zero keeps values until deleted.
	TTL time.Duration
}

// NewRedisKV connects to Redis and verifies the connection with a ping.
func NewRedisKV(ctx context.Context, opts RedisOptions) (*RedisKV, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", opts.Addr, err)
	}

	logger := slog.Default().With("component", "store.redis")
	logger.Info("Redis token store connected", "addr", opts.Addr, "db", opts.DB)

	return &RedisKV{client: client, ttl: opts.TTL, logger: logger}, nil
}

func redisKey(sessionID, key string) string {
	return redisKeyPrefix + ":" + sessionID + ":" + key
}

// GetValue returns the value stored under key for the session.
func (r *RedisKV) GetValue(ctx context.Context, sessionID, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, redisKey(sessionID, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return b, nil
}

// PutValue stores value under key, replacing any previous value.
func (r *RedisKV) PutValue(ctx context.Context, sessionID, key string, value []byte) error {
	if err := r.client.Set(ctx, redisKey(sessionID, key), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// DeleteValue removes key from the session. Missing keys are not an error.
func (r *RedisKV) DeleteValue(ctx context.Context, sessionID, key string) error {
	if err := r.client.Del(ctx, redisKey(sessionID, key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Ping checks that Redis is reachable.
func (r *RedisKV) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection pool.
func (r *RedisKV) Close() error {
	return r.client.Close()
}
