package storage

import (
	"context"
	"time"
)

// Scoped namespaces every key of an underlying store. The portal uses one
// scope per client profile, which plays the role of the browser's own
// durable storage.
type Scoped struct {
	base   Store
	prefix string
}

// Scope returns a view of base whose keys live under "profile:<id>:".
func Scope(base Store, profileID string) *Scoped {
	return &Scoped{base: base, prefix: "profile:" + profileID + ":"}
}

func (s *Scoped) Get(ctx context.Context, key string) (string, error) {
	return s.base.Get(ctx, s.prefix+key)
}

func (s *Scoped) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.base.Set(ctx, s.prefix+key, value, ttl)
}

func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.base.Delete(ctx, s.prefix+key)
}

func (s *Scoped) Ping(ctx context.Context) error {
	return s.base.Ping(ctx)
}

// Close is a no-op; the base store is owned by whoever created it.
func (s *Scoped) Close() error {
	return nil
}
