package export

import (
	"math"

	"FrameFlow/model"
)

// 互换格式的清单结构
//
// 目标剪辑软件的草稿包：根部一个 draft.json 清单，媒体文件嵌在
// assets/<nodeId>.<ext> 下。清单里的所有时间都用固定的亚秒整数单位——微秒。

// MicrosecondsPerSecond 清单时间单位换算系数
const MicrosecondsPerSecond = 1e6

// Usec 秒转微秒（四舍五入到整微秒）
func Usec(sec float64) int64 {
	return int64(math.Round(sec * MicrosecondsPerSecond))
}

// Timerange 一段微秒区间
type Timerange struct {
	Start    int64 `json:"start"`
	Duration int64 `json:"duration"`
}

// Segment 一个片段在清单里的投影：
// target_timerange 是全局时间轴上的位置，source_timerange 是素材内的取用区间
type Segment struct {
	ID              string    `json:"id"`
	MaterialID      string    `json:"material_id"`
	TargetTimerange Timerange `json:"target_timerange"`
	SourceTimerange Timerange `json:"source_timerange"`
	Speed           float64   `json:"speed"`
	Volume          float64   `json:"volume"`
	Opacity         float64   `json:"opacity"`
}

// DraftTrack 清单里的一条轨道，type ∈ {video, audio, text}
type DraftTrack struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Segments []Segment `json:"segments"`
}

// Material 一份素材记录；每个被引用的节点只物化一次
// 视频/图片/音频素材的 Path 指向包内 assets/ 下的文件，文本素材只有 Content
type Material struct {
	ID       string `json:"id"`
	Type     string `json:"type"` // video / photo / audio / text
	Name     string `json:"name,omitempty"`
	Path     string `json:"path,omitempty"`
	Content  string `json:"content,omitempty"`
	Duration int64  `json:"duration,omitempty"`
}

// Materials 按类别分组的素材边表
type Materials struct {
	Videos []Material `json:"videos"`
	Audios []Material `json:"audios"`
	Texts  []Material `json:"texts"`
}

// CanvasConfig 画布尺寸
type CanvasConfig struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Draft 草稿包根清单
type Draft struct {
	ID        string       `json:"id"`
	Canvas    CanvasConfig `json:"canvas_config"`
	Duration  int64        `json:"duration"` // 全局时长，微秒
	FPS       int          `json:"fps"`
	Tracks    []DraftTrack `json:"tracks"`
	Materials Materials    `json:"materials"`
}

// draftTrackType 引擎轨道类型到清单轨道类型的映射
func draftTrackType(kind model.TrackKind) string {
	switch kind {
	case model.TrackKindVideo:
		return "video"
	case model.TrackKindAudio:
		return "audio"
	case model.TrackKindSubtitle:
		return "text"
	default:
		return string(kind)
	}
}

// materialType 素材节点类型到清单素材类型的映射
func materialType(kind model.NodeKind) string {
	switch kind {
	case model.NodeKindImage:
		return "photo"
	case model.NodeKindVideo:
		return "video"
	case model.NodeKindAudio:
		return "audio"
	default:
		return "text"
	}
}
