package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on top of a Redis client
type RedisStore struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	Prefix       string // key namespace, default "portal:"
	MaxRetries   int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Logger       *slog.Logger
}

// DefaultRedisConfig returns a default Redis configuration
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:         "localhost:6379",
		Prefix:       "portal:",
		MaxRetries:   3,
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// NewRedisStore connects to Redis and verifies the connection with PING.
func NewRedisStore(ctx context.Context, config *RedisConfig) (*RedisStore, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		MaxRetries:   config.MaxRetries,
		PoolSize:     config.PoolSize,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Error("redis connection failed", "error", err, "addr", config.Addr)
		client.Close()
		return nil, &StoreError{Op: "connect", Err: err}
	}

	logger.Info("redis store initialized", "addr", config.Addr, "db", config.DB)

	return NewRedisStoreFromClient(client, config.Prefix, logger), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, prefix string, logger *slog.Logger) *RedisStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStore{client: client, prefix: prefix, logger: logger}
}

// Get retrieves a value from Redis
func (rs *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := rs.client.Get(ctx, rs.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		rs.logger.Error("redis get failed", "error", err, "key", key)
		return "", &StoreError{Op: "get", Key: key, Err: err}
	}
	return val, nil
}

// Set stores a value in Redis; ttl <= 0 keeps it until deleted
func (rs *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := rs.client.Set(ctx, rs.key(key), value, ttl).Err(); err != nil {
		rs.logger.Error("redis set failed", "error", err, "key", key)
		return &StoreError{Op: "set", Key: key, Err: err}
	}
	return nil
}

// Delete removes a value from Redis. DEL is acknowledged before it returns,
// so a following Get observes the absence.
func (rs *RedisStore) Delete(ctx context.Context, key string) error {
	if err := rs.client.Del(ctx, rs.key(key)).Err(); err != nil {
		rs.logger.Error("redis delete failed", "error", err, "key", key)
		return &StoreError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

// Ping checks if Redis is reachable
func (rs *RedisStore) Ping(ctx context.Context) error {
	if err := rs.client.Ping(ctx).Err(); err != nil {
		return &StoreError{Op: "ping", Err: err}
	}
	return nil
}

// Close closes the Redis connection pool
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}

func (rs *RedisStore) key(key string) string {
	return rs.prefix + key
}
