package timeline

import (
	"context"
	"testing"

	"FrameFlow/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePlayer 记录被调用的次数，模拟一个媒体播放器
type fakePlayer struct {
	position float64
	playing  bool
	seeks    int
	plays    int
	pauses   int
}

func (p *fakePlayer) Position() float64 { return p.position }
func (p *fakePlayer) Seek(t float64)    { p.position = t; p.seeks++ }
func (p *fakePlayer) Play()             { p.playing = true; p.plays++ }
func (p *fakePlayer) Pause()            { p.playing = false; p.pauses++ }
func (p *fakePlayer) IsPlaying() bool   { return p.playing }

// fakeResolver 内存素材表
type fakeResolver struct {
	nodes map[string]*model.MediaNode
}

func (r *fakeResolver) Lookup(_ context.Context, id string) (*model.MediaNode, bool) {
	n, ok := r.nodes[id]
	return n, ok
}

func videoNode(id string) *model.MediaNode {
	return &model.MediaNode{ID: id, Kind: model.NodeKindVideo, MediaURL: "https://cdn/" + id + ".mp4", DurationHint: 30}
}

func reconcilerFixture(t *testing.T) (*Reconciler, *Clock, *model.Document, *fakePlayer) {
	t.Helper()
	resolver := &fakeResolver{nodes: map[string]*model.MediaNode{
		"n1": videoNode("n1"),
		"sub": {ID: "sub", Kind: model.NodeKindText, TextLabel: "第一场：雨夜"},
	}}
	doc := testDoc(
		clip("c1", "n1", model.TrackMainVideo, 2, 10, 1),
	)
	rec := NewReconciler(resolver)
	clock := NewClock()
	clock.SetTotal(doc.TotalDuration)
	player := &fakePlayer{}
	rec.Attach(model.TrackMainVideo, player)
	return rec, clock, doc, player
}

func TestReconcile_SeeksOnLargeDrift(t *testing.T) {
	rec, clock, doc, player := reconcilerFixture(t)
	clock.Seek(5) // 片段内：local = 5 - 2 + 1 = 4
	player.position = 1.0

	rec.Reconcile(context.Background(), doc, clock)

	assert.Equal(t, 1, player.seeks)
	assert.Equal(t, 4.0, player.position)
}

func TestReconcile_IgnoresSmallDrift(t *testing.T) {
	rec, clock, doc, player := reconcilerFixture(t)
	clock.Seek(5)
	player.position = 4.1 // 漂移 0.1 < 0.15

	rec.Reconcile(context.Background(), doc, clock)

	assert.Zero(t, player.seeks, "drift under tolerance must not trigger a seek")
}

func TestReconcile_IdempotentWithoutClockChange(t *testing.T) {
	rec, clock, doc, player := reconcilerFixture(t)
	clock.Seek(5)
	player.position = 1.0

	rec.Reconcile(context.Background(), doc, clock)
	require.Equal(t, 1, player.seeks)

	// 时钟没动、漂移已在容忍内：第二次必须是 no-op
	rec.Reconcile(context.Background(), doc, clock)
	assert.Equal(t, 1, player.seeks)
}

func TestReconcile_MirrorsPlayPause(t *testing.T) {
	rec, clock, doc, player := reconcilerFixture(t)
	clock.Seek(5)
	clock.Play()

	rec.Reconcile(context.Background(), doc, clock)
	assert.True(t, player.IsPlaying(), "running clock pulls a paused player up")

	clock.Pause()
	rec.Reconcile(context.Background(), doc, clock)
	assert.False(t, player.IsPlaying(), "paused clock stops a playing player")
}

func TestReconcile_DeactivatesLeftInterval(t *testing.T) {
	rec, clock, doc, player := reconcilerFixture(t)
	clock.Seek(5)
	clock.Play()
	rec.Reconcile(context.Background(), doc, clock)
	require.True(t, player.IsPlaying())

	// 时间离开片段区间 [2,12)
	clock.Seek(20)
	rec.Reconcile(context.Background(), doc, clock)
	assert.False(t, player.IsPlaying())
	pauses := player.pauses

	// 失活后不再参与，不会反复按停
	rec.Reconcile(context.Background(), doc, clock)
	assert.Equal(t, pauses, player.pauses)
}

func TestReconcile_DanglingNodeIsSilentNoop(t *testing.T) {
	rec, clock, doc, player := reconcilerFixture(t)
	// 换成指向不存在节点的片段
	doc = testDoc(clip("c1", "ghost", model.TrackMainVideo, 0, 10, 0))
	clock.Seek(5)
	clock.Play()

	rec.Reconcile(context.Background(), doc, clock)

	assert.Zero(t, player.seeks)
	assert.Zero(t, player.plays, "unresolvable media contributes nothing to playback")
}

func TestReconcile_LastOnTopWithinTrack(t *testing.T) {
	rec, clock, _, player := reconcilerFixture(t)
	resolver := &fakeResolver{nodes: map[string]*model.MediaNode{
		"a": videoNode("a"),
		"b": videoNode("b"),
	}}
	rec.nodes = resolver

	// 两个片段重叠，startTime 靠后的在上
	doc := testDoc(
		clip("under", "a", model.TrackMainVideo, 0, 10, 0),
		clip("over", "b", model.TrackMainVideo, 4, 4, 0),
	)
	clock.Seek(5)
	player.position = 100 // 强制 seek，检验对齐到哪个片段

	rec.Reconcile(context.Background(), doc, clock)

	// over 片段：local = 5 - 4 + 0 = 1
	assert.Equal(t, 1.0, player.position)
}

func TestActiveSubtitle_PulledFromDocument(t *testing.T) {
	rec, _, _, _ := reconcilerFixture(t)
	doc := testDoc(clip("s1", "sub", model.TrackSubtitle, 1, 3, 0))

	assert.Equal(t, "第一场：雨夜", rec.ActiveSubtitle(context.Background(), doc, 2))
	assert.Equal(t, "", rec.ActiveSubtitle(context.Background(), doc, 10))
}

func TestActiveSubtitle_CustomLabelWins(t *testing.T) {
	rec, _, _, _ := reconcilerFixture(t)
	c := clip("s1", "sub", model.TrackSubtitle, 0, 5, 0)
	c.CustomLabel = "改写后的台词"
	doc := testDoc(c)

	assert.Equal(t, "改写后的台词", rec.ActiveSubtitle(context.Background(), doc, 1))
}

func TestEngine_TickDrivesEverything(t *testing.T) {
	resolver := &fakeResolver{nodes: map[string]*model.MediaNode{
		"n1":  videoNode("n1"),
		"sub": {ID: "sub", Kind: model.NodeKindText, TextLabel: "开场白"},
	}}
	doc := testDoc(
		clip("c1", "n1", model.TrackMainVideo, 0, 5, 0),
		clip("s1", "sub", model.TrackSubtitle, 0, 5, 0),
	)
	eng := NewEngine(doc, resolver)
	player := &fakePlayer{}
	eng.Reconciler().Attach(model.TrackMainVideo, player)

	eng.Clock().Play()
	label := eng.Tick(context.Background(), 0.033)

	assert.Equal(t, "开场白", label)
	assert.True(t, player.IsPlaying())
	assert.InDelta(t, 0.033, eng.Clock().Current(), 1e-9)
}
