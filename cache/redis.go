package cache

import (
	"context"
	"fmt"
	"time"

	"FrameFlow/config"

	"github.com/redis/go-redis/v9"
)

// Client 缓存层的Redis客户端（v9）
// 新客户端库的迁移从这里开始，db 包里的 v8 连接只剩播放会话在用
var Client *redis.Client

// Connect 初始化缓存层Redis连接
func Connect(cfg *config.Config) error {
	Client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := Client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis (cache): %w", err)
	}

	return nil
}

// Close 关闭缓存层Redis连接
func Close() error {
	if Client != nil {
		return Client.Close()
	}
	return nil
}
