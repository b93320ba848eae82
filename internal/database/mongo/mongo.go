package mongo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"trivai/internal/config"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const connectTimeout = 10 * time.Second

var (
	mu     sync.Mutex
	client *mongo.Client
)

// GetClient 返回进程内共享的 MongoDB 客户端，首次调用时建立连接。
// 连接失败不会被缓存，下一次调用会重新尝试。
func GetClient(ctx context.Context, cfg *config.MongoConfig) (*mongo.Client, error) {
	mu.Lock()
	defer mu.Unlock()
	if client != nil {
		return client, nil
	}

	opts := options.Client().
		ApplyURI(cfg.Address).
		SetAppName("trivai").
		SetServerSelectionTimeout(connectTimeout)
	// URI 中没有凭据时才使用单独配置的用户名和密码。
	if cfg.Username != "" && cfg.Password != "" {
		opts.SetAuth(options.Credential{Username: cfg.Username, Password: cfg.Password})
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	c, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("无法连接到 MongoDB: %w", err)
	}
	if err := c.Ping(ctx, readpref.Primary()); err != nil {
		_ = c.Disconnect(context.Background())
		return nil, fmt.Errorf("无法 Ping MongoDB: %w", err)
	}

	logrus.WithField("database", cfg.Database).Info("成功连接到 MongoDB")
	client = c
	return client, nil
}

// Close 断开共享客户端，之后的 GetClient 会重新连接。
func Close(ctx context.Context) error {
	mu.Lock()
	defer mu.Unlock()
	if client == nil {
		return nil
	}
	err := client.Disconnect(ctx)
	client = nil
	return err
}

// HealthCheck 向主节点发送 Ping，趣闻写入只走主节点。
func HealthCheck(ctx context.Context) error {
	mu.Lock()
	c := client
	mu.Unlock()
	if c == nil {
		return fmt.Errorf("MongoDB 客户端未初始化")
	}
	return c.Ping(ctx, readpref.Primary())
}
