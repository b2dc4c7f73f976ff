package repository

import (
	"context"
	"errors"
	"fmt"

	"FrameFlow/model"

	"gorm.io/gorm"
)

// NodeRepository 素材节点数据访问接口
// 时间轴引擎只通过 mediastore 读它，写入来自画布编辑器接口和 ingest
type NodeRepository interface {
	Create(ctx context.Context, node *model.MediaNode) error
	GetByID(ctx context.Context, id string) (*model.MediaNode, error)
	ListByProject(ctx context.Context, projectID string) ([]*model.MediaNode, error)
	Delete(ctx context.Context, id string) error
}

// gormNodeRepository GORM 实现
type gormNodeRepository struct {
	db *gorm.DB
}

// NewGormNodeRepository 创建素材节点仓库
func NewGormNodeRepository(db *gorm.DB) NodeRepository {
	return &gormNodeRepository{db: db}
}

func (r *gormNodeRepository) Create(ctx context.Context, node *model.MediaNode) error {
	if err := r.db.WithContext(ctx).Create(node).Error; err != nil {
		return fmt.Errorf("创建素材节点失败: %w", err)
	}
	return nil
}

func (r *gormNodeRepository) GetByID(ctx context.Context, id string) (*model.MediaNode, error) {
	var node model.MediaNode
	err := r.db.WithContext(ctx).First(&node, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询素材节点失败: %w", err)
	}
	return &node, nil
}

func (r *gormNodeRepository) ListByProject(ctx context.Context, projectID string) ([]*model.MediaNode, error) {
	var nodes []*model.MediaNode
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&nodes).Error
	if err != nil {
		return nil, fmt.Errorf("查询素材节点列表失败: %w", err)
	}
	return nodes, nil
}

func (r *gormNodeRepository) Delete(ctx context.Context, id string) error {
	// 只删节点记录；引用它的片段悬空，由渲染层按占位处理，引擎不级联清理
	if err := r.db.WithContext(ctx).Delete(&model.MediaNode{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("删除素材节点失败: %w", err)
	}
	return nil
}
