package timeline

import (
	"sort"

	"FrameFlow/model"

	"github.com/google/uuid"
)

// 片段编辑算法
//
// 所有函数都是 (文档, 参数) 的确定性纯函数：先深拷贝再修改，
// 返回新文档，调用方持有的旧文档不受影响。
// 非法参数来自连续的指针输入，每一帧都可能瞬时越界，
// 因此一律 clamp 或原样返回（no-op），从不报错。

// ResizeSide 拖拽的是片段哪一侧的把手
type ResizeSide string

const (
	ResizeLeft  ResizeSide = "left"
	ResizeRight ResizeSide = "right"
)

// refreshTotal 每次编辑后把文档软上限同步为内容末尾
func refreshTotal(doc *model.Document) *model.Document {
	doc.TotalDuration = doc.ContentEnd()
	return doc
}

// Split 在全局时刻 at 处把片段一分为二
//
// 前件：at 严格落在 (start, end) 内，否则 no-op。
// 前段保留原 startTime/trimStart，时长为 at-start；
// 后段获得新ID，startTime=at，trimStart 顺延前段时长，其余字段照抄。
// 两段时长之和恒等于原时长，切点两侧 trimStart 连续。
func Split(doc *model.Document, clipID string, at float64) *model.Document {
	_, probe := doc.FindClip(clipID)
	if probe == nil || at <= probe.StartTime || at >= probe.End() {
		return doc
	}

	out := doc.Clone()
	track, clip := out.FindClip(clipID)

	firstDuration := at - clip.StartTime
	second := *clip
	second.ID = uuid.NewString()
	second.StartTime = at
	second.TrimStart = clip.TrimStart + firstDuration
	second.Duration = clip.Duration - firstDuration

	clip.Duration = firstDuration
	track.Clips = append(track.Clips, second)

	return refreshTotal(out)
}

// Merge 把片段与同轨道上按 startTime 顺延的同素材片段合并
//
// 只认相邻与同源：在同一轨道上找 startTime 最小且大于选中片段的、
// nodeId 相同的片段；找到则删掉它并把选中片段的时长延伸到它的末尾。
// 不检查 trim 连续性，也不关心两者之间是否有缝隙。找不到则 no-op。
func Merge(doc *model.Document, clipID string) *model.Document {
	probeTrack, probe := doc.FindClip(clipID)
	if probe == nil {
		return doc
	}

	nextIdx := -1
	for i := range probeTrack.Clips {
		c := &probeTrack.Clips[i]
		if c.ID == clipID || c.NodeID != probe.NodeID {
			continue
		}
		if c.StartTime < probe.StartTime {
			continue
		}
		if nextIdx == -1 || c.StartTime < probeTrack.Clips[nextIdx].StartTime {
			nextIdx = i
		}
	}
	if nextIdx == -1 {
		return doc
	}
	nextID := probeTrack.Clips[nextIdx].ID
	nextEnd := probeTrack.Clips[nextIdx].End()

	out := doc.Clone()
	track, clip := out.FindClip(clipID)
	clip.Duration = nextEnd - clip.StartTime

	kept := track.Clips[:0]
	for _, c := range track.Clips {
		if c.ID != nextID {
			kept = append(kept, c)
		}
	}
	track.Clips = kept

	return refreshTotal(out)
}

// AlignLeft 把轨道上的片段从 0 点起无缝重排
//
// 按当前 startTime 升序稳定排序（相等时保持原相对顺序），
// 依次首尾相接：每个片段的新 startTime 等于前面所有片段时长之和。
// 时长与 trim 不动。
func AlignLeft(doc *model.Document, trackID string) *model.Document {
	if doc.FindTrack(trackID) == nil {
		return doc
	}

	out := doc.Clone()
	track := out.FindTrack(trackID)

	sort.SliceStable(track.Clips, func(i, j int) bool {
		return track.Clips[i].StartTime < track.Clips[j].StartTime
	})

	var cursor float64
	for i := range track.Clips {
		track.Clips[i].StartTime = cursor
		cursor += track.Clips[i].Duration
	}

	return refreshTotal(out)
}

// Resize 拖动片段某一侧把手到指针所在时刻
//
// 左侧：新 startTime 被 clamp 到 [0, end-0.1]，末尾保持不动，
// 位置与时长同时变化；右侧：起点不动，时长 = max(0.1, pointer-start)。
// 拖拽手势期间每帧连续调用，不是松手才生效。
func Resize(doc *model.Document, clipID string, side ResizeSide, pointerTime float64) *model.Document {
	_, probe := doc.FindClip(clipID)
	if probe == nil {
		return doc
	}

	out := doc.Clone()
	_, clip := out.FindClip(clipID)

	switch side {
	case ResizeLeft:
		end := clip.End()
		newStart := pointerTime
		if newStart < 0 {
			newStart = 0
		}
		if newStart > end-model.MinClipDuration {
			newStart = end - model.MinClipDuration
		}
		clip.StartTime = newStart
		clip.Duration = end - newStart
	case ResizeRight:
		newDuration := pointerTime - clip.StartTime
		if newDuration < model.MinClipDuration {
			newDuration = model.MinClipDuration
		}
		clip.Duration = newDuration
	default:
		return doc
	}

	return refreshTotal(out)
}

// Move 把片段挪到目标轨道的新位置（同轨重排与跨轨移动共用）
//
// 从原轨道的片段集合里移除，再以同一个ID插入目标轨道。
// 目标轨道不存在则 no-op；新 startTime 取 max(0, t)。
func Move(doc *model.Document, clipID, newTrackID string, newStartTime float64) *model.Document {
	_, probe := doc.FindClip(clipID)
	if probe == nil || doc.FindTrack(newTrackID) == nil {
		return doc
	}

	out := doc.Clone()
	srcTrack, clip := out.FindClip(clipID)
	moved := *clip
	if newStartTime < 0 {
		newStartTime = 0
	}
	moved.StartTime = newStartTime
	moved.TrackID = newTrackID

	kept := srcTrack.Clips[:0]
	for _, c := range srcTrack.Clips {
		if c.ID != clipID {
			kept = append(kept, c)
		}
	}
	srcTrack.Clips = kept

	dst := out.FindTrack(newTrackID)
	dst.Clips = append(dst.Clips, moved)

	return refreshTotal(out)
}

// Insert 把素材节点落到轨道上，生成一个新片段
//
// 新片段：新ID、trimStart=0、时长取素材固有时长提示，
// 提示缺失（<=0）时退到默认 4 秒。外部把素材拖进轨道时调用。
func Insert(doc *model.Document, nodeID, trackID string, startTime, durationHint float64) *model.Document {
	if doc.FindTrack(trackID) == nil {
		return doc
	}

	duration := durationHint
	if duration <= 0 {
		duration = model.DefaultClipDuration
	}
	if startTime < 0 {
		startTime = 0
	}

	out := doc.Clone()
	track := out.FindTrack(trackID)
	track.Clips = append(track.Clips, model.Clip{
		ID:           uuid.NewString(),
		NodeID:       nodeID,
		TrackID:      trackID,
		StartTime:    startTime,
		Duration:     duration,
		TrimStart:    0,
		Opacity:      1,
		Volume:       1,
		PlaybackRate: 1,
	})

	return refreshTotal(out)
}
