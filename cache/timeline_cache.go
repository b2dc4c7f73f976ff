package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"FrameFlow/model"

	"github.com/redis/go-redis/v9"
)

// 时间轴文档缓存：编辑接口每次落库后回填，读路径先查缓存再回源
// 文档是整值换入换出的，缓存里永远是一份完整一致的 JSON

const timelineTTL = 6 * time.Hour

func timelineKey(projectID string) string {
	return fmt.Sprintf("timeline:doc:%s", projectID)
}

// SetDocument 缓存项目的时间轴文档
func SetDocument(ctx context.Context, projectID string, doc *model.Document) error {
	if Client == nil {
		return fmt.Errorf("cache client not initialized")
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal timeline document: %w", err)
	}

	if err := Client.Set(ctx, timelineKey(projectID), data, timelineTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache timeline document: %w", err)
	}
	return nil
}

// GetDocument 读取缓存的时间轴文档，未命中返回 (nil, nil)
func GetDocument(ctx context.Context, projectID string) (*model.Document, error) {
	if Client == nil {
		return nil, fmt.Errorf("cache client not initialized")
	}

	data, err := Client.Get(ctx, timelineKey(projectID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached timeline document: %w", err)
	}

	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached timeline document: %w", err)
	}
	return &doc, nil
}

// InvalidateDocument 项目切换或删除时清掉缓存
func InvalidateDocument(ctx context.Context, projectID string) error {
	if Client == nil {
		return fmt.Errorf("cache client not initialized")
	}
	return Client.Del(ctx, timelineKey(projectID)).Err()
}
