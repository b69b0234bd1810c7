// Package cache Redis 缓存模块单元测试
package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/lodge-booking-backend/internal/common/config"
)

// newTestCache 用 miniredis 接管包级客户端
func newTestCache(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	s, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	SetClient(client)

	t.Cleanup(func() {
		_ = client.Close()
		SetClient(nil)
		s.Close()
	})
	return s
}

// ==================== 连接管理测试 ====================

func TestInit(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client, err := Init(&config.RedisConfig{
		Host:         s.Host(),
		Port:         s.Server().Addr().Port,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5,
		ReadTimeout:  3,
		WriteTimeout: 3,
	})
	require.NoError(t, err)
	assert.Same(t, client, GetClient())
	assert.NoError(t, Close())
	SetClient(nil)
}

func TestInit_ConnectionFailed(t *testing.T) {
	client, err := Init(&config.RedisConfig{
		Host:        "invalid-host",
		Port:        9999,
		DialTimeout: 1,
	})
	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "failed to connect redis")
}

func TestClose_NilClient(t *testing.T) {
	SetClient(nil)
	assert.NoError(t, Close())
}

// ==================== 读写测试 ====================

func TestSetGet_JSONRoundTrip(t *testing.T) {
	newTestCache(t)
	ctx := context.Background()

	type constants struct {
		RoomPrice    int64 `json:"room_price"`
		CampingPrice int64 `json:"camping_price"`
	}
	want := constants{RoomPrice: 400000, CampingPrice: 40000}

	require.NoError(t, Set(ctx, KeyPrefixConstants, want, time.Minute))

	var got constants
	require.NoError(t, Get(ctx, KeyPrefixConstants, &got))
	assert.Equal(t, want, got)
}

func TestGet_Missing(t *testing.T) {
	newTestCache(t)

	var dest string
	err := Get(context.Background(), "pricing:quote:missing", &dest)
	assert.ErrorIs(t, err, redis.Nil)

	_, err = GetString(context.Background(), "pricing:version")
	assert.ErrorIs(t, err, redis.Nil)
}

func TestSet_MarshalError(t *testing.T) {
	newTestCache(t)

	err := Set(context.Background(), "bad:value", make(chan int), time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to marshal value")
}

func TestDelete(t *testing.T) {
	s := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, s.Set("pricing:overrides", "{}"))
	require.NoError(t, s.Set("pricing:constants", "{}"))

	require.NoError(t, Delete(ctx, "pricing:overrides", "pricing:constants"))
	assert.False(t, s.Exists("pricing:overrides"))
	assert.False(t, s.Exists("pricing:constants"))
}

func TestIncr_VersionCounter(t *testing.T) {
	newTestCache(t)
	ctx := context.Background()

	val, err := Incr(ctx, KeyPricingVersion)
	require.NoError(t, err)
	assert.Equal(t, int64(1), val)

	val, err = Incr(ctx, KeyPricingVersion)
	require.NoError(t, err)
	assert.Equal(t, int64(2), val)
}

func TestSetNX_Lock(t *testing.T) {
	newTestCache(t)
	ctx := context.Background()
	lockKey := KeyPrefixLock + "booking:13812345678"

	ok, err := SetNX(ctx, lockKey, "1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	// 锁被占用时写入失败
	ok, err = SetNX(ctx, lockKey, "1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

// ==================== 缓存键前缀测试 ====================

func TestCacheKeyPrefixes(t *testing.T) {
	assert.Equal(t, "pricing:overrides", KeyPrefixOverrides)
	assert.Equal(t, "pricing:constants", KeyPrefixConstants)
	assert.Equal(t, "pricing:quote:", KeyPrefixQuote)
	assert.Equal(t, "pricing:version", KeyPricingVersion)
	assert.Equal(t, "booking:", KeyPrefixBooking)
	assert.Equal(t, "ratelimit:", KeyPrefixRateLimit)
	assert.Equal(t, "lock:", KeyPrefixLock)
}

// ==================== 嵌套结构测试 ====================

func TestSet_QuoteSnapshot(t *testing.T) {
	newTestCache(t)
	ctx := context.Background()

	type night struct {
		Date string `json:"date"`
		Cost int64  `json:"cost"`
	}
	type quoteSnapshot struct {
		Nights    int      `json:"nights"`
		Total     int64    `json:"total"`
		Breakdown []night  `json:"breakdown"`
		Tags      []string `json:"tags"`
	}

	snapshot := quoteSnapshot{
		Nights: 2,
		Total:  800000,
		Breakdown: []night{
			{Date: "2026-09-01", Cost: 400000},
			{Date: "2026-09-02", Cost: 400000},
		},
		Tags: []string{"room", "no-camping"},
	}

	require.NoError(t, Set(ctx, KeyPrefixQuote+"2026-09-01:2026-09-03:4", snapshot, time.Hour))

	var got quoteSnapshot
	require.NoError(t, Get(ctx, KeyPrefixQuote+"2026-09-01:2026-09-03:4", &got))
	assert.Equal(t, snapshot, got)
}
