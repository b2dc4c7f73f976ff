package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"FrameFlow/config"

	"github.com/go-redis/redis/v8"
)

// RedisClient 是全局Redis客户端（v8）
// 历史遗留：播放会话状态仍走这条连接，文档缓存已迁到 cache 包的 v9 客户端
var RedisClient *redis.Client

// ConnectRedis 初始化Redis连接
func ConnectRedis(cfg *config.Config) error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return nil
}

// CloseRedis 关闭Redis连接
func CloseRedis() error {
	if RedisClient != nil {
		return RedisClient.Close()
	}
	return nil
}

// PlaybackState 播放会话的落盘快照：断线重连后恢复到上次位置
type PlaybackState struct {
	Position  float64 `json:"position"`  // 当前播放位置（秒）
	IsPlaying bool    `json:"isPlaying"`
	UpdatedAt int64   `json:"updatedAt"` // 毫秒时间戳
}

func playbackKey(projectID string) string {
	return fmt.Sprintf("session:playback:%s", projectID)
}

// SavePlaybackState 保存项目的播放状态，24小时过期
func SavePlaybackState(ctx context.Context, projectID string, state PlaybackState) error {
	if RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	state.UpdatedAt = time.Now().UnixMilli()
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal playback state: %w", err)
	}

	if err := RedisClient.Set(ctx, playbackKey(projectID), data, 24*time.Hour).Err(); err != nil {
		return fmt.Errorf("failed to save playback state: %w", err)
	}
	return nil
}

// LoadPlaybackState 读取项目的播放状态，不存在返回 (nil, nil)
func LoadPlaybackState(ctx context.Context, projectID string) (*PlaybackState, error) {
	if RedisClient == nil {
		return nil, fmt.Errorf("Redis client not initialized")
	}

	data, err := RedisClient.Get(ctx, playbackKey(projectID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load playback state: %w", err)
	}

	var state PlaybackState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal playback state: %w", err)
	}
	return &state, nil
}
