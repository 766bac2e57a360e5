package redis

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-inventory/internal/domain/book"
	"github.com/xiebiao/bookstore-inventory/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-inventory/pkg/circuitbreaker"
)

func newTestCache(t *testing.T) (*BookCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return NewBookCache(client, time.Minute, zap.NewNop()), mr
}

func TestBookCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)

	got, version, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got, "未命中返回nil")
	assert.Zero(t, version)

	b := &book.Book{
		ID:        1,
		Name:      "The Midnight Library",
		Author:    "Matt Haig",
		Quantity:  12,
		Price:     14.99,
		CreatedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	}
	require.NoError(t, cache.Set(ctx, b, version))
	assert.True(t, mr.Exists("inventory:book:1"))
	assert.Equal(t, time.Minute, mr.TTL("inventory:book:1"))

	got, _, err = cache.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, b.Name, got.Name)
	assert.Equal(t, b.Quantity, got.Quantity)
	assert.InDelta(t, b.Price, got.Price, 0.0001)
	assert.True(t, b.CreatedAt.Equal(got.CreatedAt))

	require.NoError(t, cache.Delete(ctx, 1))
	got, version, err = cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, int64(1), version, "删除后版本号+1")
	assert.Equal(t, 24*time.Hour, mr.TTL("inventory:book:1:ver"))
}

func TestBookCache_StaleFillDiscarded(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)
	stale := &book.Book{ID: 1, Name: "X", Author: "YYY", Quantity: 5, Price: 10}

	// 读库期间记录被售罄删除
	_, version, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, cache.Delete(ctx, 1))

	require.NoError(t, cache.Set(ctx, stale, version))
	assert.False(t, mr.Exists("inventory:book:1"), "旧版本不回填")

	got, current, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, cache.Set(ctx, stale, current))
	assert.True(t, mr.Exists("inventory:book:1"), "新版本正常回填")
}

func TestBookCache_PendingDeleteRetried(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)
	b := &book.Book{ID: 2, Name: "X", Author: "YYY", Quantity: 5, Price: 10}
	require.NoError(t, cache.Set(ctx, b, 0))

	mr.SetError("LOADING Redis is loading the dataset in memory")
	require.Error(t, cache.Delete(ctx, 2))

	_, _, err := cache.Get(ctx, 2)
	assert.Error(t, err, "补删失败时不提供缓存")
	require.NoError(t, cache.Set(ctx, b, 0), "待补删时跳过回填")

	mr.SetError("")
	assert.True(t, mr.Exists("inventory:book:2"))

	got, version, err := cache.Get(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, got, "恢复后先补删")
	assert.Equal(t, int64(1), version)
	assert.False(t, mr.Exists("inventory:book:2"))
}

func TestBookCache_Expire(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)

	require.NoError(t, cache.Set(ctx, &book.Book{ID: 7, Name: "X", Author: "YYY", Quantity: 1}, 0))
	mr.FastForward(2 * time.Minute)

	got, _, err := cache.Get(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, got, "过期后未命中")
}

func TestBookCache_MissDoesNotTrip(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t)

	for i := 0; i < 10; i++ {
		_, _, err := cache.Get(ctx, uint(100+i))
		require.NoError(t, err)
	}
	assert.Equal(t, circuitbreaker.StateClosed, cache.State())
}

func TestBookCache_BreakerOpensWhenRedisDown(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)
	mr.Close()

	for i := 0; i < 5; i++ {
		_, _, err := cache.Get(ctx, 1)
		require.Error(t, err)
	}
	assert.Equal(t, circuitbreaker.StateOpen, cache.State())

	_, _, err := cache.Get(ctx, 1)
	assert.ErrorIs(t, err, circuitbreaker.ErrOpenState, "熔断后快速失败")
}

func TestNewClient(t *testing.T) {
	t.Run("未开启返回nil", func(t *testing.T) {
		client, cleanup, err := NewClient(&config.Config{}, zap.NewNop())
		require.NoError(t, err)
		assert.Nil(t, client)
		cleanup()
	})

	t.Run("开启并连接成功", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := &config.Config{Redis: config.RedisConfig{
			Enabled:     true,
			Host:        mr.Host(),
			Port:        mustPort(t, mr),
			DialTimeout: time.Second,
		}}
		client, cleanup, err := NewClient(cfg, zap.NewNop())
		require.NoError(t, err)
		require.NotNil(t, client)
		defer cleanup()
		assert.NoError(t, client.Ping(context.Background()).Err())
	})
}

func mustPort(t *testing.T, mr *miniredis.Miniredis) int {
	t.Helper()
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	return port
}
