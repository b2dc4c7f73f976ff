package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocumentDefaultTracks(t *testing.T) {
	doc := NewDocument(30)

	require.Len(t, doc.Tracks, 5)
	assert.Equal(t, TrackMainVideo, doc.Tracks[0].ID)
	assert.Equal(t, TrackKindVideo, doc.Tracks[0].Kind)
	assert.Equal(t, TrackOverlayVideo, doc.Tracks[1].ID)
	assert.Equal(t, TrackKindAudio, doc.Tracks[2].Kind)
	assert.Equal(t, TrackKindAudio, doc.Tracks[3].Kind)
	assert.Equal(t, TrackSubtitle, doc.Tracks[4].ID)
	assert.Equal(t, TrackKindSubtitle, doc.Tracks[4].Kind)

	for _, tr := range doc.Tracks {
		assert.True(t, tr.IsVisible, "轨道 %s 默认可见", tr.ID)
		assert.NotNil(t, tr.Clips)
		assert.Empty(t, tr.Clips)
	}
	assert.Equal(t, 0.0, doc.TotalDuration)
	assert.Equal(t, 30, doc.FPS)
}

func TestNewDocumentFPSFallback(t *testing.T) {
	assert.Equal(t, 30, NewDocument(0).FPS)
	assert.Equal(t, 30, NewDocument(-5).FPS)
	assert.Equal(t, 24, NewDocument(24).FPS)
}

func TestCloneIsIndependent(t *testing.T) {
	doc := NewDocument(30)
	doc.Tracks[0].Clips = append(doc.Tracks[0].Clips, Clip{
		ID: "c1", NodeID: "n1", TrackID: TrackMainVideo,
		StartTime: 1, Duration: 5,
	})
	doc.TotalDuration = 6

	cp := doc.Clone()
	cp.Tracks[0].Clips[0].StartTime = 99
	cp.Tracks[0].Clips = append(cp.Tracks[0].Clips, Clip{ID: "c2"})
	cp.TotalDuration = 123

	assert.Equal(t, 1.0, doc.Tracks[0].Clips[0].StartTime)
	assert.Len(t, doc.Tracks[0].Clips, 1)
	assert.Equal(t, 6.0, doc.TotalDuration)
}

func TestClipEndAndContains(t *testing.T) {
	c := Clip{StartTime: 2, Duration: 3}

	assert.Equal(t, 5.0, c.End())
	assert.False(t, c.Contains(1.9))
	assert.True(t, c.Contains(2))
	assert.True(t, c.Contains(4.99))
	// 区间右端开放
	assert.False(t, c.Contains(5))
}

func TestFindClipAndContentEnd(t *testing.T) {
	doc := NewDocument(30)
	doc.Tracks[0].Clips = append(doc.Tracks[0].Clips, Clip{ID: "c1", StartTime: 0, Duration: 4})
	doc.Tracks[2].Clips = append(doc.Tracks[2].Clips, Clip{ID: "c2", StartTime: 3, Duration: 9})

	tr, clip := doc.FindClip("c2")
	require.NotNil(t, clip)
	assert.Equal(t, TrackAudioA, tr.ID)

	tr, clip = doc.FindClip("missing")
	assert.Nil(t, tr)
	assert.Nil(t, clip)

	assert.Equal(t, 12.0, doc.ContentEnd())
	assert.Nil(t, doc.FindTrack("no-such-track"))
}
