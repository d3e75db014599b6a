package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr_portal/internal/storage"
)

func quietManager() *ShutdownManager {
	cfg := DefaultShutdownConfig()
	cfg.Logger = slog.New(slog.DiscardHandler)
	cfg.Timeout = time.Second
	return NewShutdownManager(cfg)
}

func TestShutdownClosesEveryResource(t *testing.T) {
	sm := quietManager()

	var closed atomic.Int32
	for _, name := range []string{"a", "b", "c"} {
		sm.Register(NewCustomResource(name, func(ctx context.Context) error {
			closed.Add(1)
			return nil
		}))
	}

	require.NoError(t, sm.Shutdown(context.Background()))
	assert.EqualValues(t, 3, closed.Load())
}

func TestShutdownJoinsErrors(t *testing.T) {
	sm := quietManager()
	boom := errors.New("boom")

	sm.Register(NewCustomResource("ok", func(ctx context.Context) error { return nil }))
	sm.Register(NewCustomResource("broken", func(ctx context.Context) error { return boom }))

	err := sm.Shutdown(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broken")
}

func TestShutdownRespectsDeadline(t *testing.T) {
	sm := quietManager()
	release := make(chan struct{})
	defer close(release)

	sm.Register(NewCustomResource("stuck", func(ctx context.Context) error {
		<-release
		return nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, sm.Shutdown(ctx), context.DeadlineExceeded)
}

func TestShutdownClosesFirstPhaseBeforeOthers(t *testing.T) {
	sm := quietManager()
	var frontDone atomic.Bool
	release := make(chan struct{})

	sm.RegisterFirst(NewCustomResource("front", func(ctx context.Context) error {
		<-release
		frontDone.Store(true)
		return nil
	}))
	var sawFrontOpen atomic.Bool
	sm.Register(NewCustomResource("backend", func(ctx context.Context) error {
		if !frontDone.Load() {
			sawFrontOpen.Store(true)
		}
		return nil
	}))

	done := make(chan error, 1)
	go func() { done <- sm.Shutdown(context.Background()) }()
	time.Sleep(20 * time.Millisecond)
	close(release)

	require.NoError(t, <-done)
	assert.False(t, sawFrontOpen.Load(), "backend closed while the front resource was still draining")
}

func TestShutdownLetsInFlightRequestUseStore(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore(0)
	require.NoError(t, store.Set(ctx, "authToken", "tok", 0))

	entered := make(chan struct{})
	release := make(chan struct{})
	deleted := make(chan error, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		deleted <- store.Delete(r.Context(), "authToken")
		w.WriteHeader(http.StatusSeeOther)
	}))
	defer ts.Close()

	go func() {
		if resp, err := http.Get(ts.URL); err == nil {
			resp.Body.Close()
		}
	}()
	<-entered

	sm := quietManager()
	sm.RegisterFirst(NewHTTPServerResource("http-server", ts.Config))
	sm.Register(NewStoreResource("client-store", store))

	done := make(chan error, 1)
	go func() { done <- sm.Shutdown(ctx) }()

	time.Sleep(20 * time.Millisecond)
	assert.NoError(t, store.Ping(ctx), "store closed while a request was running")
	close(release)

	require.NoError(t, <-done)
	assert.NoError(t, <-deleted)
	assert.ErrorIs(t, store.Ping(ctx), storage.ErrClosed)
}

func TestStoreResourceClosesStore(t *testing.T) {
	store := storage.NewMemoryStore(0)
	res := NewStoreResource("client-store", store)

	require.NoError(t, res.Close(context.Background()))
	assert.Equal(t, "client-store", res.Name())
	assert.ErrorIs(t, store.Ping(context.Background()), storage.ErrClosed)
}

func TestHTTPServerResource(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	res := NewHTTPServerResource("http-server", ts.Config)
	require.NoError(t, res.Close(context.Background()))
}

func TestNewAppliesConfig(t *testing.T) {
	cfg := ProductionConfig(":9999")
	cfg.Logger = slog.New(slog.DiscardHandler)

	srv := New(http.NotFoundHandler(), cfg)
	assert.Equal(t, ":9999", srv.Addr)
	assert.Equal(t, 5*time.Second, srv.ReadHeaderTimeout)
	assert.Equal(t, 120*time.Second, srv.IdleTimeout)
}
