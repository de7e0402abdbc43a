package matchlock

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secretsanta/pkg/platform/sentinel"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()

	t.Run("second caller is refused until release", func(t *testing.T) {
		m := NewMemory()
		unlock, ok, err := m.TryLock(ctx, "match:a", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		_, ok, err = m.TryLock(ctx, "match:a", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, unlock(ctx))
		_, ok, err = m.TryLock(ctx, "match:a", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("keys are independent", func(t *testing.T) {
		m := NewMemory()
		_, ok, _ := m.TryLock(ctx, "match:a", time.Minute)
		require.True(t, ok)
		_, ok, _ = m.TryLock(ctx, "match:b", time.Minute)
		assert.True(t, ok)
	})

	t.Run("expired lock can be taken and stale unlock is ignored", func(t *testing.T) {
		now := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
		m := NewMemory()
		m.now = func() time.Time { return now }

		staleUnlock, ok, _ := m.TryLock(ctx, "match:a", time.Second)
		require.True(t, ok)

		now = now.Add(2 * time.Second)
		_, ok, _ = m.TryLock(ctx, "match:a", time.Second)
		require.True(t, ok)

		require.NoError(t, staleUnlock(ctx))
		_, ok, _ = m.TryLock(ctx, "match:a", time.Second)
		assert.False(t, ok, "stale unlock must not free the new holder")
	})
}

func TestRedisUnreachableIsUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	_, ok, err := NewRedis(client).TryLock(context.Background(), "match:a", time.Second)
	require.Error(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
}
