package mysql

import (
	"context"
	"fmt"
	"sync"
	"time"

	"trivai/internal/config"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	mu sync.Mutex
	db *gorm.DB
)

// dsn 以 UTC 解析时间，趣闻的 created_at 统一按 UTC 存储。
func dsn(cfg *config.MySQLConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.Username, cfg.Password, cfg.Address, cfg.Database)
}

// GetDB 返回共享的 GORM 实例，首次调用时建立连接并配置连接池。
// 连接失败不会被缓存，下一次调用会重新尝试。
func GetDB(ctx context.Context, cfg *config.MySQLConfig) (*gorm.DB, error) {
	mu.Lock()
	defer mu.Unlock()
	if db != nil {
		return db, nil
	}

	gdb, err := gorm.Open(mysql.Open(dsn(cfg)), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Warn),
		SkipDefaultTransaction: true, // 趣闻表只有单条写入
	})
	if err != nil {
		return nil, fmt.Errorf("无法连接到 MySQL: %w", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("无法获取底层 SQL DB 实例: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("无法 Ping MySQL: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}

	logrus.WithField("database", cfg.Database).Info("成功连接到 MySQL")
	db = gdb
	return db, nil
}

// Close 关闭共享连接池，之后的 GetDB 会重新连接。
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	db = nil
	if err != nil {
		return fmt.Errorf("获取底层 SQL DB 实例失败: %w", err)
	}
	return sqlDB.Close()
}

// HealthCheck 检查连接池是否可用。
func HealthCheck(ctx context.Context) error {
	mu.Lock()
	gdb := db
	mu.Unlock()
	if gdb == nil {
		return fmt.Errorf("数据库连接未初始化")
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("无法获取底层 SQL DB 实例进行健康检查: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
