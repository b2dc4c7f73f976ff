package timeline

import (
	"context"

	"FrameFlow/model"
)

// DragMode 拖拽手势模式，三种互斥，同一时刻至多一种活跃
type DragMode int

const (
	DragNone   DragMode = iota
	DragScrub           // 标尺/播放头/轨道空白处拖动 -> seek
	DragResize          // 片段边缘把手拖动 -> Resize
	DragMove            // 片段整体拖动 -> 原生拖放，落点时 Move/Insert
)

// DropPayload 拖放落点携带的负载：二选一
// ClipID 非空表示移动已有片段，否则 NodeID 表示落入新素材
type DropPayload struct {
	ClipID string `json:"clipId,omitempty"`
	NodeID string `json:"nodeId,omitempty"`
}

// DragController 把指针拖拽输入翻译成时钟 seek 或片段几何变更
//
// 一个显式状态机：开启任何一种拖拽先暂停时钟（避免时钟和手势互相拉扯），
// 并隐式取消正在进行的另一种拖拽——"两个拖拽同时进行"在此处是静态不可能。
// 指针移动每帧最多生效一次：帧间多余的移动被最新值覆盖（合并，不排队），
// 压住快速拖动时的重渲染开销。
type DragController struct {
	engine *Engine
	nodes  NodeResolver

	mode   DragMode
	clipID string
	side   ResizeSide

	pixelsPerSecond float64
	scrollOffset    float64 // 轨道容器横向滚动偏移（像素）

	pending   float64 // 本帧待生效的指针横坐标
	hasMotion bool
}

// NewDragController 创建输入控制器
func NewDragController(engine *Engine, nodes NodeResolver, pixelsPerSecond float64) *DragController {
	if pixelsPerSecond <= 0 {
		pixelsPerSecond = 100
	}
	return &DragController{
		engine:          engine,
		nodes:           nodes,
		pixelsPerSecond: pixelsPerSecond,
	}
}

// Mode 当前活跃的拖拽模式
func (dc *DragController) Mode() DragMode {
	return dc.mode
}

// SetScale 更新时间轴缩放（每秒像素数）
func (dc *DragController) SetScale(pixelsPerSecond float64) {
	if pixelsPerSecond > 0 {
		dc.pixelsPerSecond = pixelsPerSecond
	}
}

// SetScroll 更新轨道容器滚动偏移（像素）
func (dc *DragController) SetScroll(px float64) {
	dc.scrollOffset = px
}

// timeAt 指针横坐标换算成时间轴时刻
func (dc *DragController) timeAt(offsetX float64) float64 {
	return (offsetX + dc.scrollOffset) / dc.pixelsPerSecond
}

// begin 进入新模式：取消旧拖拽并暂停播放
func (dc *DragController) begin(mode DragMode) {
	dc.engine.Clock().Pause()
	dc.mode = mode
	dc.clipID = ""
	dc.side = ""
	dc.hasMotion = false
}

// BeginScrub 在标尺或轨道空白处按下指针
func (dc *DragController) BeginScrub() {
	dc.begin(DragScrub)
}

// BeginResize 在片段边缘把手上按下指针
func (dc *DragController) BeginResize(clipID string, side ResizeSide) {
	dc.begin(DragResize)
	dc.clipID = clipID
	dc.side = side
}

// BeginMove 开始原生拖动一个片段
func (dc *DragController) BeginMove(clipID string) {
	dc.begin(DragMove)
	dc.clipID = clipID
}

// PointerMove 记录指针移动，只保留最新值，OnFrame 时统一生效
func (dc *DragController) PointerMove(offsetX float64) {
	if dc.mode == DragNone {
		return
	}
	dc.pending = offsetX
	dc.hasMotion = true
}

// OnFrame 每显示帧调用一次，把积压的指针移动落成一次实际更新
func (dc *DragController) OnFrame() {
	if !dc.hasMotion {
		return
	}
	dc.hasMotion = false
	t := dc.timeAt(dc.pending)

	switch dc.mode {
	case DragScrub:
		dc.engine.Clock().Seek(t)
	case DragResize:
		clipID, side := dc.clipID, dc.side
		dc.engine.Apply(func(doc *model.Document) *model.Document {
			return Resize(doc, clipID, side, t)
		})
	}
	// DragMove 的几何变更在 Drop 落点时一次性生效
}

// Drop 拖放落到某条轨道上：按负载区分移动已有片段还是插入新素材
func (dc *DragController) Drop(ctx context.Context, payload DropPayload, trackID string, offsetX float64) {
	t := dc.timeAt(offsetX)
	if t < 0 {
		t = 0
	}

	switch {
	case payload.ClipID != "":
		dc.engine.Apply(func(doc *model.Document) *model.Document {
			return Move(doc, payload.ClipID, trackID, t)
		})
	case payload.NodeID != "":
		var hint float64
		if node, ok := dc.nodes.Lookup(ctx, payload.NodeID); ok && node != nil {
			hint = node.DurationHint
		}
		dc.engine.Apply(func(doc *model.Document) *model.Document {
			return Insert(doc, payload.NodeID, trackID, t, hint)
		})
	}
	dc.End()
}

// End 指针抬起：撤掉拖拽状态，不做任何吸附
func (dc *DragController) End() {
	dc.mode = DragNone
	dc.clipID = ""
	dc.side = ""
	dc.hasMotion = false
}
