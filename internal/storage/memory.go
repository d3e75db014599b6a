package storage

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps values in process memory with optional expiry.
type MemoryStore struct {
	mu     sync.RWMutex
	items  map[string]memoryItem
	closed bool
	stopCh chan struct{}
	once   sync.Once
}

type memoryItem struct {
	value     string
	expiresAt time.Time
}

func (it memoryItem) expired(now time.Time) bool {
	return !it.expiresAt.IsZero() && now.After(it.expiresAt)
}

// NewMemoryStore creates an in-memory store. cleanupInterval <= 0 disables
// the background sweep; expired items are still hidden on read.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	ms := &MemoryStore{
		items:  make(map[string]memoryItem),
		stopCh: make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go ms.sweep(cleanupInterval)
	}
	return ms
}

// Get retrieves a value
func (ms *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if ms.closed {
		return "", &StoreError{Op: "get", Key: key, Err: ErrClosed}
	}
	it, ok := ms.items[key]
	if !ok || it.expired(time.Now()) {
		return "", ErrNotFound
	}
	return it.value, nil
}

// Set stores a value
func (ms *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.closed {
		return &StoreError{Op: "set", Key: key, Err: ErrClosed}
	}
	it := memoryItem{value: value}
	if ttl > 0 {
		it.expiresAt = time.Now().Add(ttl)
	}
	ms.items[key] = it
	return nil
}

// Delete removes a value
func (ms *MemoryStore) Delete(ctx context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.closed {
		return &StoreError{Op: "delete", Key: key, Err: ErrClosed}
	}
	delete(ms.items, key)
	return nil
}

// Ping always succeeds until the store is closed
func (ms *MemoryStore) Ping(ctx context.Context) error {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	if ms.closed {
		return &StoreError{Op: "ping", Err: ErrClosed}
	}
	return nil
}

// Close stops the sweeper and rejects further operations
func (ms *MemoryStore) Close() error {
	ms.once.Do(func() {
		ms.mu.Lock()
		ms.closed = true
		ms.items = nil
		ms.mu.Unlock()
		close(ms.stopCh)
	})
	return nil
}

// Len returns the number of live entries.
func (ms *MemoryStore) Len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	now := time.Now()
	n := 0
	for _, it := range ms.items {
		if !it.expired(now) {
			n++
		}
	}
	return n
}

func (ms *MemoryStore) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ms.removeExpired()
		case <-ms.stopCh:
			return
		}
	}
}

func (ms *MemoryStore) removeExpired() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	for key, it := range ms.items {
		if it.expired(now) {
			delete(ms.items, key)
		}
	}
}
