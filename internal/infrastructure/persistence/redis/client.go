package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-inventory/internal/infrastructure/config"
)

// NewClient 创建Redis客户端
// redis.enabled=false时返回nil客户端,调用方使用NopCache
// 设计说明：
// 1. 配置连接池参数（PoolSize、MinIdleConns）
// 2. 配置超时参数（DialTimeout、ReadTimeout、WriteTimeout）
// 3. 启动时测试连接可用性
func NewClient(cfg *config.Config, log *zap.Logger) (*redis.Client, func(), error) {
	if !cfg.Redis.Enabled {
		log.Info("Redis缓存未开启")
		return nil, func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Redis.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("Redis连接失败: %w", err)
	}

	log.Info("Redis连接成功", zap.String("addr", cfg.Redis.Addr()))

	cleanup := func() {
		if err := client.Close(); err != nil {
			log.Warn("关闭Redis连接失败", zap.Error(err))
		}
	}
	return client, cleanup, nil
}
