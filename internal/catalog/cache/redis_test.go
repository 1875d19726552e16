package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/snowflake"
	"github.com/golang/snappy"
	"github.com/railzwaylabs/pricecalc/internal/catalog/domain"
	"github.com/railzwaylabs/pricecalc/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, domain.Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedis(client, ttl)
}

func TestRedisCacheSnapshot(t *testing.T) {
	mr, c := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	items := []domain.Item{
		{ID: snowflake.ID(1), Module: "Core", Feature: "Seats", Unit: "seat", MonthlyPrice: 12.5, Increment: 1, ReleaseStage: domain.GeneralAvailability},
		{ID: snowflake.ID(2), Module: "Core", Feature: "Storage", Unit: "GB", MonthlyPrice: 0.1, Increment: 10, ReleaseStage: domain.GeneralAvailability},
	}
	require.NoError(t, c.Set(ctx, items))

	raw, err := mr.Get(snapshotKey)
	require.NoError(t, err)
	_, err = snappy.Decode(nil, []byte(raw))
	require.NoError(t, err, "snapshot is stored snappy compressed")

	got, ok, err := c.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, items[1].ID, got[1].ID)
	assert.Equal(t, 0.1, got[1].MonthlyPrice)

	mr.FastForward(2 * time.Minute)
	_, ok, err = c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "snapshot expires after the ttl")
}

func TestRedisCacheInvalidate(t *testing.T) {
	_, c := newTestCache(t, 0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, nil))
	got, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok, "an empty catalog is still a valid snapshot")
	assert.Empty(t, got)

	require.NoError(t, c.Invalidate(ctx))
	_, ok, err = c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCacheCorruptSnapshot(t *testing.T) {
	mr, c := newTestCache(t, 0)
	require.NoError(t, mr.Set(snapshotKey, "not snappy"))

	_, ok, err := c.Get(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestNewWithoutRedis(t *testing.T) {
	c := New(nil, config.Config{})
	_, ok, err := c.Get(context.Background())
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Set(context.Background(), nil))
	assert.NoError(t, c.Invalidate(context.Background()))
}
