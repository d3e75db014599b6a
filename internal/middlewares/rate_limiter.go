package middlewares

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimitConfig holds configuration for token bucket rate limiting
type RateLimitConfig struct {
	Logger *slog.Logger

	// Capacity is the maximum number of tokens in the bucket (default: 10)
	Capacity int

	// RefillRate is the number of tokens added per second (default: 1)
	RefillRate float64

	// KeyGenerator picks the bucket for a request. Default: client IP
	KeyGenerator func(r *http.Request) string

	// Store holds bucket state. Default: in-memory store
	Store TokenBucketStore

	// Skipper exempts requests, e.g. safe methods
	Skipper func(r *http.Request) bool

	// LimitHandler renders the rejection. Default: plain 429.
	LimitHandler func(w http.ResponseWriter, r *http.Request, retryAfter time.Duration)
}

// TokenBucketStore holds per-key bucket state.
type TokenBucketStore interface {
	Allow(ctx context.Context, key string, capacity int, refillRate float64) (allowed bool, remaining int, retryAfter time.Duration, err error)
	Reset(ctx context.Context, key string) error
}

type tokenBucket struct {
	tokens     float64
	lastRefill time.Time
}

// MemoryTokenBucketStore implements an in-memory token bucket store
type MemoryTokenBucketStore struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucket
	idle    time.Duration
	stop    chan struct{}
	once    sync.Once
}

// NewMemoryTokenBucketStore creates a store that forgets buckets idle for
// longer than idle.
func NewMemoryTokenBucketStore(idle time.Duration) *MemoryTokenBucketStore {
	if idle <= 0 {
		idle = 10 * time.Minute
	}
	store := &MemoryTokenBucketStore{
		buckets: make(map[string]*tokenBucket),
		idle:    idle,
		stop:    make(chan struct{}),
	}
	go store.cleanup()
	return store
}

// Allow takes one token from key's bucket if one is available.
func (m *MemoryTokenBucketStore) Allow(ctx context.Context, key string, capacity int, refillRate float64) (bool, int, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	bucket, exists := m.buckets[key]
	if !exists {
		bucket = &tokenBucket{tokens: float64(capacity), lastRefill: now}
		m.buckets[key] = bucket
	}

	elapsed := now.Sub(bucket.lastRefill).Seconds()
	bucket.tokens = math.Min(float64(capacity), bucket.tokens+elapsed*refillRate)
	bucket.lastRefill = now

	if bucket.tokens >= 1.0 {
		bucket.tokens--
		return true, int(bucket.tokens), 0, nil
	}

	retryAfter := time.Duration((1.0 - bucket.tokens) / refillRate * float64(time.Second))
	return false, 0, retryAfter, nil
}

// Reset resets the bucket for a key
func (m *MemoryTokenBucketStore) Reset(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.buckets, key)
	return nil
}

// Close stops the cleanup goroutine
func (m *MemoryTokenBucketStore) Close() {
	m.once.Do(func() { close(m.stop) })
}

func (m *MemoryTokenBucketStore) cleanup() {
	ticker := time.NewTicker(m.idle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			m.mu.Lock()
			for key, bucket := range m.buckets {
				if now.Sub(bucket.lastRefill) > m.idle {
					delete(m.buckets, key)
				}
			}
			m.mu.Unlock()
		case <-m.stop:
			return
		}
	}
}

// RateLimit returns a token bucket rate limiting middleware
func RateLimit(config *RateLimitConfig) func(next http.Handler) http.Handler {
	if config == nil {
		config = &RateLimitConfig{}
	}
	if config.Capacity <= 0 {
		config.Capacity = 10
	}
	if config.RefillRate <= 0 {
		config.RefillRate = 1.0
	}
	if config.KeyGenerator == nil {
		config.KeyGenerator = func(r *http.Request) string { return "ip:" + clientIP(r) }
	}
	if config.Store == nil {
		config.Store = NewMemoryTokenBucketStore(0)
	}
	if config.LimitHandler == nil {
		config.LimitHandler = func(w http.ResponseWriter, r *http.Request, _ time.Duration) {
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.Debug("rate limiter middleware initialized",
		"capacity", config.Capacity,
		"refill_rate", config.RefillRate,
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.Skipper != nil && config.Skipper(r) {
				next.ServeHTTP(w, r)
				return
			}

			key := config.KeyGenerator(r)
			allowed, remaining, retryAfter, err := config.Store.Allow(r.Context(), key, config.Capacity, config.RefillRate)
			if err != nil {
				// fail open
				logger.Error("rate limiter store error", "key", key, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.Capacity))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !allowed {
				logger.Warn("rate limit exceeded",
					"method", r.Method,
					"path", r.URL.Path,
					"key", key,
				)
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				config.LimitHandler(w, r, retryAfter)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
