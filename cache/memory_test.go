package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySetGet(t *testing.T) {
	m := NewMemory()
	defer m.Shutdown()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestMemoryMissIsNilNil(t *testing.T) {
	m := NewMemory()
	defer m.Shutdown()

	got, err := m.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory()
	defer m.Shutdown()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got, "expired entry must read as a miss")
}

func TestMemoryZeroTTLNeverExpires(t *testing.T) {
	m := NewMemory()
	defer m.Shutdown()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 0))
	time.Sleep(20 * time.Millisecond)

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestMemoryDelete(t *testing.T) {
	m := NewMemory()
	defer m.Shutdown()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, m.Delete(ctx, "k"))

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryCleanupSweepsExpired(t *testing.T) {
	m := NewMemory()
	defer m.Shutdown()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "old", []byte("v"), 5*time.Millisecond))
	require.NoError(t, m.Set(ctx, "fresh", []byte("v"), time.Minute))
	time.Sleep(20 * time.Millisecond)

	m.cleanup()

	m.mu.RLock()
	defer m.mu.RUnlock()
	assert.NotContains(t, m.items, "old")
	assert.Contains(t, m.items, "fresh")
}
