// Package cache 提供 Redis 缓存功能
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dumeirei/lodge-booking-backend/internal/common/config"
)

// 缓存键前缀
const (
	KeyPrefixOverrides = "pricing:overrides" // 全量覆盖集合
	KeyPrefixConstants = "pricing:constants" // 定价常量
	KeyPrefixQuote     = "pricing:quote:"    // 报价结果
	KeyPricingVersion  = "pricing:version"   // 定价数据版本号
	KeyPrefixBooking   = "booking:"          // 预订详情
	KeyPrefixRateLimit = "ratelimit:"        // IP 限流
	KeyPrefixLock      = "lock:"             // 分布式锁
)

var rdb *redis.Client

// Init 初始化 Redis 连接并探活
func Init(cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  time.Duration(cfg.DialTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect redis: %w", err)
	}

	rdb = client
	return rdb, nil
}

// SetClient 注入客户端（测试用 miniredis）
func SetClient(client *redis.Client) {
	rdb = client
}

// GetClient 获取 Redis 客户端
func GetClient() *redis.Client {
	return rdb
}

// Close 关闭 Redis 连接
func Close() error {
	if rdb == nil {
		return nil
	}
	return rdb.Close()
}

// Set 将值序列化为 JSON 后写入
func Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return rdb.Set(ctx, key, data, expiration).Err()
}

// Get 读取并反序列化到 dest，键不存在时返回 redis.Nil
func Get(ctx context.Context, key string, dest interface{}) error {
	data, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// GetString 读取原始字符串值
func GetString(ctx context.Context, key string) (string, error) {
	return rdb.Get(ctx, key).Result()
}

// Delete 删除一个或多个键
func Delete(ctx context.Context, keys ...string) error {
	return rdb.Del(ctx, keys...).Err()
}

// Incr 自增，用于定价数据版本号
func Incr(ctx context.Context, key string) (int64, error) {
	return rdb.Incr(ctx, key).Result()
}

// SetNX 不存在时写入，预订防重锁依赖其原子性
func SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	return rdb.SetNX(ctx, key, value, expiration).Result()
}
