package timeline

import (
	"context"
	"math"

	"FrameFlow/model"
)

// DriftTolerance 播放器与逻辑时钟的漂移容忍（秒）
// 小于该值不强行校正，避免每帧 seek 造成可见抖动
const DriftTolerance = 0.15

// Player 一个可独立寻址的媒体播放器（一个视频元素或一个音频元素）
// 播放器由 Reconciler 独占管理，其它组件不直接触碰
type Player interface {
	Position() float64
	Seek(t float64)
	Play()
	Pause()
	IsPlaying() bool
}

// NodeResolver 素材节点只读查询，悬空引用返回 (nil, false)，不是错误
type NodeResolver interface {
	Lookup(ctx context.Context, nodeID string) (*model.MediaNode, bool)
}

// Reconciler 同步协调器：让每个活跃播放器的内部时钟对齐播放时钟，
// 并把全局播放/暂停状态镜像到各个播放器上
//
// 播放器按轨道挂载：一条视频轨/音频轨至多一个播放器。
// 字幕是拉取式的，不经过播放器，见 ActiveSubtitle。
type Reconciler struct {
	nodes   NodeResolver
	players map[string]Player // trackID -> player
	active  map[string]bool   // 上一次 reconcile 时该轨道是否有活跃片段
}

// NewReconciler 创建协调器
func NewReconciler(nodes NodeResolver) *Reconciler {
	return &Reconciler{
		nodes:   nodes,
		players: make(map[string]Player),
		active:  make(map[string]bool),
	}
}

// Attach 把播放器挂到轨道上，重复挂载覆盖旧的
func (r *Reconciler) Attach(trackID string, p Player) {
	r.players[trackID] = p
}

// Detach 摘下轨道上的播放器
func (r *Reconciler) Detach(trackID string) {
	delete(r.players, trackID)
	delete(r.active, trackID)
}

// activeClip 轨道上包含时刻 t 的片段；重叠时取 startTime 最靠后的（last-on-top）
func activeClip(track *model.Track, t float64) *model.Clip {
	var found *model.Clip
	for i := range track.Clips {
		c := &track.Clips[i]
		if !c.Contains(t) {
			continue
		}
		if found == nil || c.StartTime >= found.StartTime {
			found = c
		}
	}
	return found
}

// Reconcile 按时钟当前值对齐所有挂载的播放器，每帧调用一次
//
// 对每个活跃片段：localTime = current - clip.startTime + clip.trimStart，
// 漂移超过 DriftTolerance 才强制 seek。时钟在播放而播放器停着就拉起，
// 反之则按停。片段失活的播放器按停一次，之后不再参与，直到再次活跃。
// 素材解析不到媒体的片段是静默空帧，不动它的播放器，也不算错误。
func (r *Reconciler) Reconcile(ctx context.Context, doc *model.Document, clock *Clock) {
	now := clock.Current()

	for trackID, p := range r.players {
		track := doc.FindTrack(trackID)
		if track == nil || track.Kind == model.TrackKindSubtitle {
			continue
		}

		clip := activeClip(track, now)
		hidden := (track.Kind == model.TrackKindVideo && !track.IsVisible) ||
			(track.Kind == model.TrackKindAudio && track.IsMuted)

		if clip == nil || hidden {
			if r.active[trackID] {
				p.Pause()
				r.active[trackID] = false
			}
			continue
		}

		node, ok := r.nodes.Lookup(ctx, clip.NodeID)
		if !ok || node == nil || !node.HasMedia() {
			// 悬空引用或空媒体：静默空帧
			continue
		}

		r.active[trackID] = true

		localTime := now - clip.StartTime + clip.TrimStart
		if math.Abs(p.Position()-localTime) > DriftTolerance {
			p.Seek(localTime)
		}

		if clock.Running() && !p.IsPlaying() {
			p.Play()
		} else if !clock.Running() && p.IsPlaying() {
			p.Pause()
		}
	}
}

// ActiveSubtitle 当前时刻应显示的字幕文本，每帧直接从文档重算
//
// 取可见字幕轨上的活跃片段，优先片段自定义文案，其次素材节点的台词。
// 没有活跃字幕返回空串。
func (r *Reconciler) ActiveSubtitle(ctx context.Context, doc *model.Document, t float64) string {
	for i := len(doc.Tracks) - 1; i >= 0; i-- {
		track := &doc.Tracks[i]
		if track.Kind != model.TrackKindSubtitle || !track.IsVisible {
			continue
		}
		clip := activeClip(track, t)
		if clip == nil {
			continue
		}
		if clip.CustomLabel != "" {
			return clip.CustomLabel
		}
		if node, ok := r.nodes.Lookup(ctx, clip.NodeID); ok && node != nil {
			return node.TextLabel
		}
	}
	return ""
}
