package model

import (
	"time"

	"gorm.io/gorm"
)

// ProjectStatus 项目状态
type ProjectStatus string

const (
	ProjectStatusActive   ProjectStatus = "active"
	ProjectStatusArchived ProjectStatus = "archived"
)

// Project 表示一个分镜/视频项目
type Project struct {
	ID          string        `json:"id" gorm:"primaryKey;size:36"`
	UserID      int64         `json:"userId" gorm:"index"`
	Name        string        `json:"name" gorm:"size:255"`
	Description string        `json:"description,omitempty" gorm:"type:text"`
	CoverPath   string        `json:"coverPath,omitempty" gorm:"size:767"`
	Status      ProjectStatus `json:"status" gorm:"size:16;default:active"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// TimelineRecord 时间轴文档的持久化载体
// 文档本体序列化为 JSON 存在 Payload 里，一个项目对应一条记录
type TimelineRecord struct {
	ProjectID string         `json:"projectId" gorm:"primaryKey;size:36"`
	Payload   []byte         `json:"-" gorm:"type:mediumblob"`
	Version   int64          `json:"version"` // 每次编辑自增，乐观并发用
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName 指定表名
func (TimelineRecord) TableName() string {
	return "timeline_documents"
}
