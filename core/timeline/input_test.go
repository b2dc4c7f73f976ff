package timeline

import (
	"context"
	"testing"

	"FrameFlow/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func controllerFixture(clips ...model.Clip) (*DragController, *Engine) {
	resolver := &fakeResolver{nodes: map[string]*model.MediaNode{
		"n1": videoNode("n1"),
		"n2": {ID: "n2", Kind: model.NodeKindAudio, MediaURL: "https://cdn/n2.mp3", DurationHint: 7},
	}}
	eng := NewEngine(testDoc(clips...), resolver)
	// 100 px/s，滚动偏移 0
	return NewDragController(eng, resolver, 100), eng
}

func TestDrag_StartingCancelsPlayback(t *testing.T) {
	dc, eng := controllerFixture(clip("c1", "n1", model.TrackMainVideo, 0, 10, 0))
	eng.Clock().Play()

	dc.BeginScrub()

	assert.False(t, eng.Clock().Running(), "starting a drag must pause the clock")
	assert.Equal(t, DragScrub, dc.Mode())
}

func TestDrag_ModesAreMutuallyExclusive(t *testing.T) {
	dc, _ := controllerFixture(clip("c1", "n1", model.TrackMainVideo, 0, 10, 0))

	dc.BeginResize("c1", ResizeRight)
	require.Equal(t, DragResize, dc.Mode())

	// 开启新拖拽隐式取消旧的
	dc.BeginScrub()
	assert.Equal(t, DragScrub, dc.Mode())

	dc.PointerMove(500)
	dc.OnFrame()

	// 生效的是 scrub（seek 到 5s），不是 resize
	_, c := dc.engine.Document().FindClip("c1")
	assert.Equal(t, 10.0, c.Duration)
	assert.Equal(t, 5.0, dc.engine.Clock().Current())
}

func TestDrag_CoalescesMovesPerFrame(t *testing.T) {
	dc, eng := controllerFixture(clip("c1", "n1", model.TrackMainVideo, 0, 10, 0))

	dc.BeginScrub()
	dc.PointerMove(100)
	dc.PointerMove(200)
	dc.PointerMove(300)
	dc.OnFrame()

	// 帧间多次移动只生效最后一次
	assert.Equal(t, 3.0, eng.Clock().Current())

	// 没有新移动时后续帧是 no-op
	eng.Clock().Seek(1)
	dc.OnFrame()
	assert.Equal(t, 1.0, eng.Clock().Current())
}

func TestDrag_ResizeThroughPointer(t *testing.T) {
	dc, eng := controllerFixture(clip("c1", "n1", model.TrackMainVideo, 0, 10, 0))
	dc.SetScroll(100) // 容器向右滚了 1 秒

	dc.BeginResize("c1", ResizeRight)
	dc.PointerMove(500) // (500+100)/100 = 6s
	dc.OnFrame()

	_, c := eng.Document().FindClip("c1")
	assert.Equal(t, 6.0, c.Duration)
}

func TestDrag_EndTearsDown(t *testing.T) {
	dc, eng := controllerFixture(clip("c1", "n1", model.TrackMainVideo, 0, 10, 0))

	dc.BeginScrub()
	dc.PointerMove(400)
	dc.End()
	dc.OnFrame()

	assert.Equal(t, DragNone, dc.Mode())
	assert.Equal(t, 0.0, eng.Clock().Current(), "moves after drag end are dropped, no snapping")
}

func TestDrop_MovesExistingClip(t *testing.T) {
	dc, eng := controllerFixture(clip("c1", "n1", model.TrackMainVideo, 0, 5, 0))

	dc.BeginMove("c1")
	dc.Drop(context.Background(), DropPayload{ClipID: "c1"}, model.TrackOverlayVideo, 300)

	overlay := eng.Document().FindTrack(model.TrackOverlayVideo)
	require.Len(t, overlay.Clips, 1)
	assert.Equal(t, 3.0, overlay.Clips[0].StartTime)
	assert.Equal(t, DragNone, dc.Mode(), "drop ends the gesture")
}

func TestDrop_InsertsNewNodeWithHint(t *testing.T) {
	dc, eng := controllerFixture()

	dc.Drop(context.Background(), DropPayload{NodeID: "n2"}, model.TrackAudioA, 200)

	track := eng.Document().FindTrack(model.TrackAudioA)
	require.Len(t, track.Clips, 1)
	assert.Equal(t, "n2", track.Clips[0].NodeID)
	assert.Equal(t, 2.0, track.Clips[0].StartTime)
	assert.Equal(t, 7.0, track.Clips[0].Duration, "duration from the node hint")
}
