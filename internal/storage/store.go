// Package storage is the durable key-value store behind per-client portal
// state. The only value the shell cares about is the session token.
package storage

import (
	"context"
	"errors"
	"time"
)

// Store is the narrow storage surface used by the portal.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key. ttl <= 0 means no expiration.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

var (
	ErrNotFound = errors.New("key not found")
	ErrClosed   = errors.New("store closed")
)

// StoreError wraps a backend failure with the operation and key involved.
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	if e.Key == "" {
		return "storage " + e.Op + " failed: " + e.Err.Error()
	}
	return "storage " + e.Op + " " + e.Key + " failed: " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Has reports whether key holds a value. Backend errors are returned as-is.
func Has(ctx context.Context, s Store, key string) (bool, error) {
	_, err := s.Get(ctx, key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, err
}
