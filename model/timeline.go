package model

// TrackKind 轨道类型，约束轨道上的片段可引用的素材类型：
// 视频轨渲染图片/视频节点，音频轨渲染可播放音频，字幕轨只渲染文本、从不拉取媒体
type TrackKind string

const (
	TrackKindVideo    TrackKind = "video"
	TrackKindAudio    TrackKind = "audio"
	TrackKindSubtitle TrackKind = "subtitle"
)

const (
	// MinClipDuration 任何编辑下片段时长的下限（秒）
	MinClipDuration = 0.1
	// DefaultClipDuration 素材无固有时长提示时新片段的默认时长（秒）
	DefaultClipDuration = 4.0
)

// Clip 是对素材节点的一次放置引用：在全局时间轴上有位置、时长和入点偏移
// NodeID 不持有素材，节点被删除后引用悬空，渲染为占位内容，引擎从不自动清理
type Clip struct {
	ID           string  `json:"id"`
	NodeID       string  `json:"nodeId"`
	TrackID      string  `json:"trackId"`
	StartTime    float64 `json:"startTime"` // 全局时间轴上的位置（秒），>= 0
	Duration     float64 `json:"duration"`  // 时长（秒），> 0
	TrimStart    float64 `json:"trimStart"` // 素材自身时间轴上的播放起点偏移（秒）
	Opacity      float64 `json:"opacity"`      // [0,1]，默认 1
	Volume       float64 `json:"volume"`       // [0,2]，默认 1
	PlaybackRate float64 `json:"playbackRate"` // 默认 1
	CustomLabel  string  `json:"customLabel,omitempty"`
}

// End 片段在全局时间轴上的结束时刻
func (c *Clip) End() float64 {
	return c.StartTime + c.Duration
}

// Contains 全局时刻 t 是否落在片段的 [start, end) 区间内
func (c *Clip) Contains(t float64) bool {
	return t >= c.StartTime && t < c.End()
}

// Track 一条轨道：同类片段的有序集合
// Clips 按插入顺序保存，空间顺序由 StartTime 派生；同轨片段允许重叠
type Track struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      TrackKind `json:"kind"`
	Clips     []Clip    `json:"clips"`
	IsVisible bool      `json:"isVisible"`
	IsMuted   bool      `json:"isMuted"`
	IsLocked  bool      `json:"isLocked"`
}

// Document 时间轴文档：纯数据，所有行为在 core/timeline 里
// Tracks 的顺序即视觉堆叠顺序，靠后的轨道在视频合成时优先（last-on-top）
type Document struct {
	Tracks        []Track `json:"tracks"`
	TotalDuration float64 `json:"totalDuration"` // 软上限：播放时钟 clamp 到此值，scrub 可瞬时越过
	FPS           int     `json:"fps"`           // 仅用于导出互换格式，内部计时是连续的
}

// 默认轨道ID，新建文档时固定生成
const (
	TrackMainVideo    = "video-main"
	TrackOverlayVideo = "video-overlay"
	TrackAudioA       = "audio-a"
	TrackAudioB       = "audio-b"
	TrackSubtitle     = "subtitle"
)

// NewDocument 创建带默认轨道组的空文档：
// 主视频轨、叠加视频轨、两条音频轨、一条字幕轨
func NewDocument(fps int) *Document {
	if fps <= 0 {
		fps = 30
	}
	return &Document{
		FPS:           fps,
		TotalDuration: 0,
		Tracks: []Track{
			{ID: TrackMainVideo, Name: "主视频轨", Kind: TrackKindVideo, Clips: []Clip{}, IsVisible: true},
			{ID: TrackOverlayVideo, Name: "叠加视频轨", Kind: TrackKindVideo, Clips: []Clip{}, IsVisible: true},
			{ID: TrackAudioA, Name: "音频轨 A", Kind: TrackKindAudio, Clips: []Clip{}, IsVisible: true},
			{ID: TrackAudioB, Name: "音频轨 B", Kind: TrackKindAudio, Clips: []Clip{}, IsVisible: true},
			{ID: TrackSubtitle, Name: "字幕轨", Kind: TrackKindSubtitle, Clips: []Clip{}, IsVisible: true},
		},
	}
}

// Clone 深拷贝整个文档
// 编辑算法先 Clone 再改，调用方手里的旧文档永远不会被原地修改
func (d *Document) Clone() *Document {
	out := &Document{
		Tracks:        make([]Track, len(d.Tracks)),
		TotalDuration: d.TotalDuration,
		FPS:           d.FPS,
	}
	for i, tr := range d.Tracks {
		nt := tr
		nt.Clips = make([]Clip, len(tr.Clips))
		copy(nt.Clips, tr.Clips)
		out.Tracks[i] = nt
	}
	return out
}

// FindTrack 按ID查找轨道，未找到返回 nil
func (d *Document) FindTrack(trackID string) *Track {
	for i := range d.Tracks {
		if d.Tracks[i].ID == trackID {
			return &d.Tracks[i]
		}
	}
	return nil
}

// FindClip 按ID查找片段，返回所属轨道与片段，未找到返回 (nil, nil)
func (d *Document) FindClip(clipID string) (*Track, *Clip) {
	for i := range d.Tracks {
		for j := range d.Tracks[i].Clips {
			if d.Tracks[i].Clips[j].ID == clipID {
				return &d.Tracks[i], &d.Tracks[i].Clips[j]
			}
		}
	}
	return nil, nil
}

// ContentEnd 所有片段里最靠后的结束时刻，文档为空时为 0
func (d *Document) ContentEnd() float64 {
	var end float64
	for i := range d.Tracks {
		for j := range d.Tracks[i].Clips {
			if e := d.Tracks[i].Clips[j].End(); e > end {
				end = e
			}
		}
	}
	return end
}
