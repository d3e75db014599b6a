package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackendDown = errors.New("backend down")

// brokenStore fails every operation.
type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (string, error) { return "", errBackendDown }
func (brokenStore) Set(context.Context, string, string, time.Duration) error {
	return errBackendDown
}
func (brokenStore) Delete(context.Context, string) error { return errBackendDown }
func (brokenStore) Ping(context.Context) error           { return errBackendDown }
func (brokenStore) Close() error                         { return nil }

func TestFallbackStore_WritesBoth(t *testing.T) {
	ctx := context.Background()
	primary := NewMemoryStore(0)
	local := NewMemoryStore(0)
	fs := NewFallbackStore(primary, local, nil)

	require.NoError(t, fs.Set(ctx, "k", "v", 0))
	for _, s := range []Store{primary, local} {
		got, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v", got)
	}

	require.NoError(t, fs.Delete(ctx, "k"))
	for _, s := range []Store{primary, local} {
		_, err := s.Get(ctx, "k")
		assert.ErrorIs(t, err, ErrNotFound)
	}
}

func TestFallbackStore_PrimaryMissIsAuthoritative(t *testing.T) {
	ctx := context.Background()
	primary := NewMemoryStore(0)
	local := NewMemoryStore(0)
	require.NoError(t, local.Set(ctx, "k", "stale", 0))

	fs := NewFallbackStore(primary, local, nil)
	_, err := fs.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFallbackStore_ReadsLocalWhenPrimaryFails(t *testing.T) {
	ctx := context.Background()
	fs := NewFallbackStore(brokenStore{}, NewMemoryStore(0), nil)

	err := fs.Set(ctx, "k", "v", 0)
	assert.ErrorIs(t, err, errBackendDown)

	got, err := fs.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestFallbackStore_DeleteReportsPrimaryFailure(t *testing.T) {
	ctx := context.Background()
	local := NewMemoryStore(0)
	fs := NewFallbackStore(brokenStore{}, local, nil)
	require.NoError(t, local.Set(ctx, "k", "v", 0))

	err := fs.Delete(ctx, "k")
	assert.ErrorIs(t, err, errBackendDown)

	_, err = local.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound, "local copy is removed even when the primary fails")
}

func TestFallbackStore_NilPrimary(t *testing.T) {
	ctx := context.Background()
	fs := NewFallbackStore(nil, nil, nil)
	defer fs.Close()

	require.NoError(t, fs.Set(ctx, "k", "v", 0))
	got, err := fs.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
	assert.NoError(t, fs.Ping(ctx))
}
