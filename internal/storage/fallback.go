package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// FallbackStore writes through to a primary store (Redis) and a local
// memory store, and reads from the memory store when the primary fails.
type FallbackStore struct {
	primary  Store
	fallback Store
	logger   *slog.Logger
}

// NewFallbackStore combines primary and fallback. A nil primary degrades to
// the fallback alone.
func NewFallbackStore(primary, fallback Store, logger *slog.Logger) *FallbackStore {
	if logger == nil {
		logger = slog.Default()
	}
	if fallback == nil {
		fallback = NewMemoryStore(time.Minute)
	}
	return &FallbackStore{primary: primary, fallback: fallback, logger: logger}
}

// Get reads the primary first; a miss there is authoritative.
func (fs *FallbackStore) Get(ctx context.Context, key string) (string, error) {
	if fs.primary != nil {
		val, err := fs.primary.Get(ctx, key)
		if err == nil || errors.Is(err, ErrNotFound) {
			return val, err
		}
		fs.logger.Warn("primary store get failed, trying fallback", "error", err, "key", key)
	}
	return fs.fallback.Get(ctx, key)
}

// Set writes both stores
func (fs *FallbackStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	var primaryErr error
	if fs.primary != nil {
		if primaryErr = fs.primary.Set(ctx, key, value, ttl); primaryErr != nil {
			fs.logger.Warn("primary store set failed", "error", primaryErr, "key", key)
		}
	}

	if err := fs.fallback.Set(ctx, key, value, ttl); err != nil {
		fs.logger.Error("fallback store set failed", "error", err, "key", key)
		return err
	}
	return primaryErr
}

// Delete removes key from both stores. Both deletes are attempted; a
// primary failure is reported so callers know the value may survive there.
func (fs *FallbackStore) Delete(ctx context.Context, key string) error {
	var primaryErr error
	if fs.primary != nil {
		if primaryErr = fs.primary.Delete(ctx, key); primaryErr != nil {
			fs.logger.Warn("primary store delete failed", "error", primaryErr, "key", key)
		}
	}
	return errors.Join(primaryErr, fs.fallback.Delete(ctx, key))
}

// Ping reports the primary's health when there is one
func (fs *FallbackStore) Ping(ctx context.Context) error {
	if fs.primary != nil {
		return fs.primary.Ping(ctx)
	}
	return fs.fallback.Ping(ctx)
}

// Close closes both stores
func (fs *FallbackStore) Close() error {
	var primaryErr error
	if fs.primary != nil {
		primaryErr = fs.primary.Close()
	}
	return errors.Join(primaryErr, fs.fallback.Close())
}
