package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"trivai/internal/config"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

var (
	mu     sync.Mutex
	client *redis.Client
)

// GetClient 返回会话存储共享的 Redis 客户端，首次调用时建立连接。
// 连接失败不会被缓存，下一次调用会重新尝试。
func GetClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	mu.Lock()
	defer mu.Unlock()
	if client != nil {
		return client, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Address,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("无法连接到 Redis %s: %w", cfg.Address, err)
	}

	logrus.WithField("address", cfg.Address).Info("成功连接到 Redis")
	client = rdb
	return client, nil
}

// Close 关闭共享客户端，之后的 GetClient 会重新连接。
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if client == nil {
		return nil
	}
	err := client.Close()
	client = nil
	return err
}

// HealthCheck 检查 Redis 是否可以响应 PING。
func HealthCheck(ctx context.Context) error {
	mu.Lock()
	c := client
	mu.Unlock()
	if c == nil {
		return fmt.Errorf("Redis 客户端未初始化")
	}
	return c.Ping(ctx).Err()
}
