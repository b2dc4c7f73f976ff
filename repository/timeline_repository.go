package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"FrameFlow/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TimelineRepository 时间轴文档持久化
// 文档整值序列化为 JSON 存一条记录，读出即一份完整一致的快照
type TimelineRepository interface {
	Save(ctx context.Context, projectID string, doc *model.Document) error
	Get(ctx context.Context, projectID string) (*model.Document, error)
	Delete(ctx context.Context, projectID string) error
}

// gormTimelineRepository GORM 实现
type gormTimelineRepository struct {
	db *gorm.DB
}

// NewGormTimelineRepository 创建时间轴仓库
func NewGormTimelineRepository(db *gorm.DB) TimelineRepository {
	return &gormTimelineRepository{db: db}
}

func (r *gormTimelineRepository) Save(ctx context.Context, projectID string, doc *model.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("序列化时间轴文档失败: %w", err)
	}

	record := model.TimelineRecord{
		ProjectID: projectID,
		Payload:   payload,
		Version:   1,
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "project_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"payload": payload,
			"version": gorm.Expr("version + 1"),
		}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("保存时间轴文档失败: %w", err)
	}
	return nil
}

func (r *gormTimelineRepository) Get(ctx context.Context, projectID string) (*model.Document, error) {
	var record model.TimelineRecord
	err := r.db.WithContext(ctx).First(&record, "project_id = ?", projectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取时间轴文档失败: %w", err)
	}

	var doc model.Document
	if err := json.Unmarshal(record.Payload, &doc); err != nil {
		return nil, fmt.Errorf("反序列化时间轴文档失败: %w", err)
	}
	return &doc, nil
}

func (r *gormTimelineRepository) Delete(ctx context.Context, projectID string) error {
	if err := r.db.WithContext(ctx).Delete(&model.TimelineRecord{}, "project_id = ?", projectID).Error; err != nil {
		return fmt.Errorf("删除时间轴文档失败: %w", err)
	}
	return nil
}
