package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/zach-dev/internal/cache"
	"github.com/Zachkp/zach-dev/internal/config"
	"github.com/Zachkp/zach-dev/internal/database"
)

func newSQLite(t *testing.T) *cache.SQLite {
	t.Helper()
	db, err := database.Open(context.Background(), database.Memory)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return cache.NewSQLite(db)
}

func TestSQLite_SetGet(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)

	_, ok, err := s.Get(ctx, "posts")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "posts", []byte(`[1]`), time.Hour))
	require.NoError(t, s.Set(ctx, "posts", []byte(`[2]`), time.Hour))

	v, ok, err := s.Get(ctx, "posts")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[2]`, string(v))
}

func TestSQLite_ExpiredIsMissAndPurged(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)

	require.NoError(t, s.Set(ctx, "stale", []byte("x"), -time.Second))
	require.NoError(t, s.Set(ctx, "fresh", []byte("y"), time.Hour))

	_, ok, err := s.Get(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := s.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok, _ = s.Get(ctx, "fresh")
	assert.True(t, ok)
}

func TestRedis_SetGetExpire(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := cache.NewRedis(client, cache.DefaultPrefix)
	defer s.Close()

	_, ok, err := s.Get(ctx, "videos")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "videos", []byte(`[]`), time.Minute))
	assert.True(t, mr.Exists(cache.DefaultPrefix+"videos"))

	v, ok, err := s.Get(ctx, "videos")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, string(v))

	mr.FastForward(2 * time.Minute)
	_, ok, err = s.Get(ctx, "videos")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedis_ErrorWhenServerGone(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	s := cache.NewRedis(client, "")
	mr.Close()

	_, _, err := s.Get(context.Background(), "k")
	assert.Error(t, err)
}

func TestNew_Drivers(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := cache.New(config.CacheConfig{Driver: cache.DriverRedis, RedisAddress: mr.Addr()}, nil)
	require.NoError(t, err)
	assert.IsType(t, &cache.Redis{}, s)
	require.NoError(t, s.Close())

	s, err = cache.New(config.CacheConfig{Driver: cache.DriverNone}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), "k", []byte("v"), time.Hour))
	_, ok, _ := s.Get(context.Background(), "k")
	assert.False(t, ok)

	_, err = cache.New(config.CacheConfig{Driver: "memcached"}, nil)
	require.ErrorIs(t, err, cache.ErrUnknownDriver)

	_, err = cache.New(config.CacheConfig{Driver: cache.DriverRedis}, nil)
	require.ErrorIs(t, err, cache.ErrEmptyAddress)
}
