package cooldown

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/shandysiswandi/gomarket/internal/pkg/clock"
)

func TestMemory(t *testing.T) {
	// Arrange
	ctx := context.Background()
	now := clock.NewManual(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	cd := NewMemory(now)

	// Act & Assert
	ok, _, err := cd.Acquire(ctx, "+919999999999", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	now.Advance(10 * time.Second)
	ok, left, err := cd.Acquire(ctx, "+919999999999", 30*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 20*time.Second, left)

	ok, _, err = cd.Acquire(ctx, "buyer@market.example", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "other keys are independent")

	now.Advance(20 * time.Second)
	ok, _, err = cd.Acquire(ctx, "+919999999999", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "window elapsed")

	require.NoError(t, cd.Release(ctx, "+919999999999"))
	ok, _, err = cd.Acquire(ctx, "+919999999999", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "released")
}

func TestMemoryEdgeCases(t *testing.T) {
	cd := NewMemory(clock.New())

	_, _, err := cd.Acquire(context.Background(), "", time.Second)
	assert.ErrorIs(t, err, ErrEmptyKey)

	for range 3 {
		ok, _, err := cd.Acquire(context.Background(), "k", 0)
		require.NoError(t, err)
		assert.True(t, ok, "zero window disables the cooldown")
	}
}

func TestRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	cd := NewRedis(client)

	ok, _, err := cd.Acquire(ctx, "+919999999999", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, left, err := cd.Acquire(ctx, "+919999999999", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Greater(t, left, time.Duration(0))
	assert.LessOrEqual(t, left, time.Minute)

	require.NoError(t, cd.Release(ctx, "+919999999999"))
	ok, _, err = cd.Acquire(ctx, "+919999999999", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
