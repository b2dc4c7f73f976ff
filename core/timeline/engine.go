package timeline

import (
	"context"
	"sync"

	"FrameFlow/model"
)

// Engine 把文档、时钟、协调器拼成一个时间轴实例
//
// 文档按不可变值对待：每次编辑产出新文档后整体换引用，
// 并发读者（渲染、HTTP 快照）拿到的永远是完整一致的结构。
// 时钟与协调器只被帧循环触碰；mu 只保护文档引用的换入换出。
// 每个 Engine 自成一体，不依赖任何包级状态，测试里可以并存多个实例。
type Engine struct {
	mu    sync.RWMutex
	doc   *model.Document
	clock *Clock
	rec   *Reconciler
}

// NewEngine 用初始文档创建时间轴实例
func NewEngine(doc *model.Document, nodes NodeResolver) *Engine {
	clock := NewClock()
	clock.SetTotal(doc.TotalDuration)
	return &Engine{
		doc:   doc,
		clock: clock,
		rec:   NewReconciler(nodes),
	}
}

// Document 当前文档快照引用
func (e *Engine) Document() *model.Document {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.doc
}

// Clock 时间轴的播放时钟
func (e *Engine) Clock() *Clock {
	return e.clock
}

// Reconciler 时间轴的同步协调器
func (e *Engine) Reconciler() *Reconciler {
	return e.rec
}

// Apply 套用一个纯编辑函数并换入结果文档，返回新文档
func (e *Engine) Apply(edit func(*model.Document) *model.Document) *model.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.doc = edit(e.doc)
	e.clock.SetTotal(e.doc.TotalDuration)
	return e.doc
}

// Replace 整体换入新文档（项目切换/外部持久化层加载后调用）
func (e *Engine) Replace(doc *model.Document) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.doc = doc
	e.clock.SetTotal(doc.TotalDuration)
}

// Tick 帧循环的唯一入口：推进时钟、对齐播放器、重算字幕
// 返回当前应显示的字幕文本
func (e *Engine) Tick(ctx context.Context, delta float64) string {
	e.clock.Advance(delta)
	doc := e.Document()
	e.rec.Reconcile(ctx, doc, e.clock)
	return e.rec.ActiveSubtitle(ctx, doc, e.clock.Current())
}
