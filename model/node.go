package model

import "time"

// NodeKind 素材节点类型
type NodeKind string

const (
	NodeKindImage NodeKind = "image"
	NodeKindVideo NodeKind = "video"
	NodeKindAudio NodeKind = "audio"
	NodeKindText  NodeKind = "text"
)

// MediaNode 表示一个素材节点：画布编辑器或生成服务产出的图片/视频/音频/台词
// 时间轴引擎只读该记录，从不创建或修改
type MediaNode struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	ProjectID    string    `json:"projectId" gorm:"index;size:36"`
	Kind         NodeKind  `json:"kind" gorm:"size:16"`
	Name         string    `json:"name" gorm:"size:255"`
	ObjectPath   string    `json:"objectPath,omitempty" gorm:"size:767"` // MinIO 对象路径，可为空（纯文本节点）
	MediaURL     string    `json:"mediaUrl,omitempty" gorm:"size:1024"`  // 可直接播放的地址，可为空
	DurationHint float64   `json:"durationHint,omitempty"`               // 素材固有时长（秒），图片/文本为 0
	TextLabel    string    `json:"textLabel,omitempty" gorm:"type:text"` // 台词/字幕文本
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (MediaNode) TableName() string {
	return "media_nodes"
}

// HasMedia 节点是否有可取用的媒体内容
func (n *MediaNode) HasMedia() bool {
	return n.ObjectPath != "" || n.MediaURL != ""
}
