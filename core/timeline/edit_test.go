package timeline

import (
	"testing"

	"FrameFlow/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDoc(clips ...model.Clip) *model.Document {
	doc := model.NewDocument(30)
	for _, c := range clips {
		track := doc.FindTrack(c.TrackID)
		track.Clips = append(track.Clips, c)
	}
	doc.TotalDuration = doc.ContentEnd()
	return doc
}

func clip(id, nodeID, trackID string, start, dur, trim float64) model.Clip {
	return model.Clip{
		ID: id, NodeID: nodeID, TrackID: trackID,
		StartTime: start, Duration: dur, TrimStart: trim,
		Opacity: 1, Volume: 1, PlaybackRate: 1,
	}
}

func TestSplit_Conservation(t *testing.T) {
	doc := testDoc(clip("c1", "n1", model.TrackMainVideo, 0, 10, 0))

	out := Split(doc, "c1", 4)

	track := out.FindTrack(model.TrackMainVideo)
	require.Len(t, track.Clips, 2)

	first := track.Clips[0]
	second := track.Clips[1]

	assert.Equal(t, "c1", first.ID)
	assert.Equal(t, 0.0, first.StartTime)
	assert.Equal(t, 4.0, first.Duration)
	assert.Equal(t, 0.0, first.TrimStart)

	assert.NotEqual(t, "c1", second.ID, "second half must get a fresh id")
	assert.Equal(t, 4.0, second.StartTime)
	assert.Equal(t, 6.0, second.Duration)
	assert.Equal(t, 4.0, second.TrimStart, "trim must be continuous across the cut")
	assert.Equal(t, "n1", second.NodeID)

	assert.Equal(t, 10.0, first.Duration+second.Duration, "durations must sum to the original")
}

func TestSplit_TrimContinuity(t *testing.T) {
	doc := testDoc(clip("c1", "n1", model.TrackAudioA, 2, 8, 1.5))

	out := Split(doc, "c1", 5)

	track := out.FindTrack(model.TrackAudioA)
	require.Len(t, track.Clips, 2)
	assert.Equal(t, 3.0, track.Clips[0].Duration)
	assert.Equal(t, 1.5, track.Clips[0].TrimStart)
	assert.Equal(t, 4.5, track.Clips[1].TrimStart, "second trimStart = first trimStart + first duration")
}

func TestSplit_OutOfBoundsIsNoop(t *testing.T) {
	doc := testDoc(clip("c1", "n1", model.TrackMainVideo, 2, 5, 0))

	cases := []struct {
		name string
		at   float64
	}{
		{"before start", 1},
		{"exactly at start", 2},
		{"exactly at end", 7},
		{"after end", 9},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := Split(doc, "c1", tc.at)
			assert.Len(t, out.FindTrack(model.TrackMainVideo).Clips, 1)
		})
	}
}

func TestSplit_DoesNotMutateInput(t *testing.T) {
	doc := testDoc(clip("c1", "n1", model.TrackMainVideo, 0, 10, 0))

	_ = Split(doc, "c1", 4)

	track := doc.FindTrack(model.TrackMainVideo)
	require.Len(t, track.Clips, 1)
	assert.Equal(t, 10.0, track.Clips[0].Duration, "input document must stay untouched")
}

func TestMerge_SameSourceNeighbor(t *testing.T) {
	doc := testDoc(
		clip("c1", "A", model.TrackMainVideo, 0, 5, 0),
		clip("c2", "A", model.TrackMainVideo, 5, 3, 5),
	)

	out := Merge(doc, "c1")

	track := out.FindTrack(model.TrackMainVideo)
	require.Len(t, track.Clips, 1)
	assert.Equal(t, "c1", track.Clips[0].ID)
	assert.Equal(t, 0.0, track.Clips[0].StartTime)
	assert.Equal(t, 8.0, track.Clips[0].Duration, "duration = (next.start+next.duration) - selected.start")
}

func TestMerge_SkipsDifferentSource(t *testing.T) {
	doc := testDoc(
		clip("c1", "A", model.TrackMainVideo, 0, 5, 0),
		clip("c2", "B", model.TrackMainVideo, 5, 3, 0),
		clip("c3", "A", model.TrackMainVideo, 9, 2, 0),
	)

	out := Merge(doc, "c1")

	track := out.FindTrack(model.TrackMainVideo)
	require.Len(t, track.Clips, 2, "merges with c3 (same source), not c2")
	_, merged := out.FindClip("c1")
	require.NotNil(t, merged)
	assert.Equal(t, 11.0, merged.Duration, "extends across the gap to next same-source clip end")
}

func TestMerge_NoNeighborIsNoop(t *testing.T) {
	doc := testDoc(
		clip("c1", "A", model.TrackMainVideo, 5, 3, 0),
		clip("c2", "A", model.TrackAudioA, 9, 2, 0), // 另一条轨道，不参与
	)

	out := Merge(doc, "c1")
	assert.Len(t, out.FindTrack(model.TrackMainVideo).Clips, 1)
}

func TestAlignLeft_Packing(t *testing.T) {
	doc := testDoc(
		clip("c1", "A", model.TrackMainVideo, 2, 3, 0),
		clip("c2", "B", model.TrackMainVideo, 10, 2, 0),
		clip("c3", "C", model.TrackMainVideo, 20, 1, 0),
	)

	out := AlignLeft(doc, model.TrackMainVideo)

	track := out.FindTrack(model.TrackMainVideo)
	require.Len(t, track.Clips, 3)
	assert.Equal(t, 0.0, track.Clips[0].StartTime)
	assert.Equal(t, 3.0, track.Clips[1].StartTime)
	assert.Equal(t, 5.0, track.Clips[2].StartTime)
	assert.Equal(t, 3.0, track.Clips[0].Duration, "durations untouched")
	assert.Equal(t, 6.0, out.TotalDuration)
}

func TestAlignLeft_StableForEqualStarts(t *testing.T) {
	doc := testDoc(
		clip("first", "A", model.TrackAudioA, 4, 2, 0),
		clip("second", "B", model.TrackAudioA, 4, 3, 0),
	)

	out := AlignLeft(doc, model.TrackAudioA)

	track := out.FindTrack(model.TrackAudioA)
	assert.Equal(t, "first", track.Clips[0].ID, "stable sort keeps original relative order")
	assert.Equal(t, 0.0, track.Clips[0].StartTime)
	assert.Equal(t, 2.0, track.Clips[1].StartTime)
}

func TestResize_Clamping(t *testing.T) {
	cases := []struct {
		name        string
		side        ResizeSide
		pointerTime float64
		wantStart   float64
		wantDur     float64
	}{
		{"left edge moves start", ResizeLeft, 2, 2, 8},
		{"left edge clamps at min duration", ResizeLeft, 9.99, 9.9, 0.1},
		{"left edge clamps at zero", ResizeLeft, -3, 0, 10},
		{"right edge grows", ResizeRight, 12, 5, 7},
		{"right edge clamps at min duration", ResizeRight, 5.01, 5, 0.1},
		{"right edge pointer before start", ResizeRight, 1, 5, 0.1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := testDoc(clip("c1", "A", model.TrackMainVideo, 5, 5, 0))

			out := Resize(doc, "c1", tc.side, tc.pointerTime)

			_, c := out.FindClip("c1")
			require.NotNil(t, c)
			assert.InDelta(t, tc.wantStart, c.StartTime, 1e-9)
			assert.InDelta(t, tc.wantDur, c.Duration, 1e-9)
			assert.GreaterOrEqual(t, c.Duration, model.MinClipDuration)
			assert.GreaterOrEqual(t, c.StartTime, 0.0)
		})
	}
}

func TestResize_LeftKeepsEndFixed(t *testing.T) {
	doc := testDoc(clip("c1", "A", model.TrackMainVideo, 5, 5, 0))

	out := Resize(doc, "c1", ResizeLeft, 3)

	_, c := out.FindClip("c1")
	assert.Equal(t, 10.0, c.End(), "left resize must not move the clip end")
}

func TestMove_AcrossTracks(t *testing.T) {
	doc := testDoc(clip("c1", "A", model.TrackMainVideo, 0, 5, 0))

	out := Move(doc, "c1", model.TrackOverlayVideo, 7)

	assert.Empty(t, out.FindTrack(model.TrackMainVideo).Clips)
	overlay := out.FindTrack(model.TrackOverlayVideo)
	require.Len(t, overlay.Clips, 1)
	assert.Equal(t, "c1", overlay.Clips[0].ID, "move keeps the same id")
	assert.Equal(t, 7.0, overlay.Clips[0].StartTime)
	assert.Equal(t, model.TrackOverlayVideo, overlay.Clips[0].TrackID)
}

func TestMove_UnknownTargetIsNoop(t *testing.T) {
	doc := testDoc(clip("c1", "A", model.TrackMainVideo, 0, 5, 0))

	out := Move(doc, "c1", "no-such-track", 7)
	assert.Len(t, out.FindTrack(model.TrackMainVideo).Clips, 1)
}

func TestInsert_Defaults(t *testing.T) {
	doc := model.NewDocument(30)

	out := Insert(doc, "nodeX", model.TrackAudioA, 3, 12.5)

	track := out.FindTrack(model.TrackAudioA)
	require.Len(t, track.Clips, 1)
	c := track.Clips[0]
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "nodeX", c.NodeID)
	assert.Equal(t, 3.0, c.StartTime)
	assert.Equal(t, 12.5, c.Duration, "duration comes from the node hint")
	assert.Equal(t, 0.0, c.TrimStart)
	assert.Equal(t, 1.0, c.Opacity)
	assert.Equal(t, 1.0, c.Volume)
}

func TestInsert_FallbackDuration(t *testing.T) {
	doc := model.NewDocument(30)

	out := Insert(doc, "nodeX", model.TrackMainVideo, 0, 0)

	track := out.FindTrack(model.TrackMainVideo)
	require.Len(t, track.Clips, 1)
	assert.Equal(t, model.DefaultClipDuration, track.Clips[0].Duration)
}

func TestEdits_RefreshTotalDuration(t *testing.T) {
	doc := model.NewDocument(30)

	out := Insert(doc, "n1", model.TrackMainVideo, 10, 5)
	assert.Equal(t, 15.0, out.TotalDuration)

	out = Resize(out, out.FindTrack(model.TrackMainVideo).Clips[0].ID, ResizeRight, 30)
	assert.Equal(t, 30.0, out.TotalDuration)
}
