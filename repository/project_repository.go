package repository

import (
	"context"
	"errors"
	"fmt"

	"FrameFlow/model"

	"gorm.io/gorm"
)

// ProjectRepository 项目数据访问接口
type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, id string) (*model.Project, error)
	ListByUser(ctx context.Context, userID int64) ([]*model.Project, error)
	Update(ctx context.Context, project *model.Project) error
	Delete(ctx context.Context, id string) error
}

// gormProjectRepository GORM 实现
type gormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository 创建项目仓库
func NewGormProjectRepository(db *gorm.DB) ProjectRepository {
	return &gormProjectRepository{db: db}
}

func (r *gormProjectRepository) Create(ctx context.Context, project *model.Project) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return fmt.Errorf("创建项目失败: %w", err)
	}
	return nil
}

func (r *gormProjectRepository) GetByID(ctx context.Context, id string) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询项目失败: %w", err)
	}
	return &project, nil
}

func (r *gormProjectRepository) ListByUser(ctx context.Context, userID int64) ([]*model.Project, error) {
	var projects []*model.Project
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.ProjectStatusActive).
		Order("updated_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("查询项目列表失败: %w", err)
	}
	return projects, nil
}

func (r *gormProjectRepository) Update(ctx context.Context, project *model.Project) error {
	if err := r.db.WithContext(ctx).Save(project).Error; err != nil {
		return fmt.Errorf("更新项目失败: %w", err)
	}
	return nil
}

func (r *gormProjectRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&model.Project{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("删除项目失败: %w", err)
	}
	return nil
}
