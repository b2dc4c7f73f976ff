package export

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"FrameFlow/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore 内存素材库，可指定某些节点拉取失败
type fakeStore struct {
	nodes map[string]*model.MediaNode
	blobs map[string]string // nodeID -> 内容
	fail  map[string]bool
}

func (s *fakeStore) Lookup(_ context.Context, id string) (*model.MediaNode, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

func (s *fakeStore) Fetch(_ context.Context, id string) (io.ReadCloser, string, error) {
	if s.fail[id] {
		return nil, "", errors.New("connection reset")
	}
	blob, ok := s.blobs[id]
	if !ok {
		return nil, "", errors.New("no content")
	}
	return io.NopCloser(strings.NewReader(blob)), ".mp4", nil
}

func exportDoc() *model.Document {
	doc := model.NewDocument(30)
	main := doc.FindTrack(model.TrackMainVideo)
	main.Clips = append(main.Clips,
		model.Clip{ID: "c1", NodeID: "nv", TrackID: main.ID, StartTime: 0, Duration: 4, TrimStart: 0, Opacity: 1, Volume: 1, PlaybackRate: 1},
		model.Clip{ID: "c2", NodeID: "nv", TrackID: main.ID, StartTime: 4, Duration: 2.5, TrimStart: 4, Opacity: 1, Volume: 1, PlaybackRate: 1},
	)
	sub := doc.FindTrack(model.TrackSubtitle)
	sub.Clips = append(sub.Clips,
		model.Clip{ID: "s1", NodeID: "nt", TrackID: sub.ID, StartTime: 0, Duration: 3, Opacity: 1, Volume: 1, PlaybackRate: 1},
	)
	doc.TotalDuration = doc.ContentEnd()
	return doc
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nodes: map[string]*model.MediaNode{
			"nv": {ID: "nv", Kind: model.NodeKindVideo, ObjectPath: "assets/nv.mp4", DurationHint: 10, Name: "镜头一"},
			"nt": {ID: "nt", Kind: model.NodeKindText, TextLabel: "雨还在下"},
		},
		blobs: map[string]string{"nv": "fake-mp4-bytes"},
		fail:  map[string]bool{},
	}
}

func runExport(t *testing.T, store *fakeStore) (*Draft, map[string][]byte) {
	t.Helper()

	var buf bytes.Buffer
	s := NewSerializer(store, 1920, 1080)
	require.NoError(t, s.Export(context.Background(), exportDoc(), &buf))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	files := map[string][]byte{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		files[f.Name] = data
	}

	manifest, ok := files["draft.json"]
	require.True(t, ok, "archive must contain the root manifest")

	var draft Draft
	require.NoError(t, json.Unmarshal(manifest, &draft))
	return &draft, files
}

func TestExport_MaterialDedupAndSegments(t *testing.T) {
	draft, files := runExport(t, newFakeStore())

	require.Len(t, draft.Materials.Videos, 1, "one material per distinct node")
	mat := draft.Materials.Videos[0]
	assert.Equal(t, "video", mat.Type)
	assert.Equal(t, "assets/nv.mp4", mat.Path)

	var mainTrack *DraftTrack
	for i := range draft.Tracks {
		if draft.Tracks[i].ID == model.TrackMainVideo {
			mainTrack = &draft.Tracks[i]
		}
	}
	require.NotNil(t, mainTrack)
	require.Len(t, mainTrack.Segments, 2, "one segment per clip of the shared node")
	for _, seg := range mainTrack.Segments {
		assert.Equal(t, mat.ID, seg.MaterialID)
	}

	assert.Equal(t, []byte("fake-mp4-bytes"), files["assets/nv.mp4"])
}

func TestExport_TimerangesInMicroseconds(t *testing.T) {
	draft, _ := runExport(t, newFakeStore())

	var mainTrack *DraftTrack
	for i := range draft.Tracks {
		if draft.Tracks[i].ID == model.TrackMainVideo {
			mainTrack = &draft.Tracks[i]
		}
	}
	require.NotNil(t, mainTrack)

	second := mainTrack.Segments[1]
	assert.Equal(t, int64(4_000_000), second.TargetTimerange.Start)
	assert.Equal(t, int64(2_500_000), second.TargetTimerange.Duration)
	assert.Equal(t, int64(4_000_000), second.SourceTimerange.Start)
	assert.Equal(t, int64(6_500_000), draft.Duration)
	assert.Equal(t, 30, draft.FPS)
	assert.Equal(t, 1920, draft.Canvas.Width)
}

func TestExport_SubtitleAsTextMaterial(t *testing.T) {
	draft, files := runExport(t, newFakeStore())

	require.Len(t, draft.Materials.Texts, 1)
	txt := draft.Materials.Texts[0]
	assert.Equal(t, "text", txt.Type)
	assert.Equal(t, "雨还在下", txt.Content)
	assert.Empty(t, txt.Path, "text materials carry no backing media file")

	for name := range files {
		assert.False(t, strings.HasPrefix(name, "assets/nt"), "subtitle node must not fetch media")
	}

	var textTrack *DraftTrack
	for i := range draft.Tracks {
		if draft.Tracks[i].Type == "text" {
			textTrack = &draft.Tracks[i]
		}
	}
	require.NotNil(t, textTrack)
	assert.Len(t, textTrack.Segments, 1)
}

func TestExport_FailedFetchIsSkippedNotFatal(t *testing.T) {
	store := newFakeStore()
	store.fail["nv"] = true

	draft, files := runExport(t, store)

	// 清单仍然完整，只有素材文件缺席
	require.Len(t, draft.Materials.Videos, 1)
	assert.Empty(t, draft.Materials.Videos[0].Path)
	_, hasAsset := files["assets/nv.mp4"]
	assert.False(t, hasAsset)

	var mainTrack *DraftTrack
	for i := range draft.Tracks {
		if draft.Tracks[i].ID == model.TrackMainVideo {
			mainTrack = &draft.Tracks[i]
		}
	}
	require.NotNil(t, mainTrack)
	assert.Len(t, mainTrack.Segments, 2, "remaining clips still export")
}

func TestExport_DanglingClipIsDropped(t *testing.T) {
	store := newFakeStore()
	delete(store.nodes, "nt")

	draft, _ := runExport(t, store)

	assert.Empty(t, draft.Materials.Texts)
	for _, tr := range draft.Tracks {
		if tr.Type == "text" {
			assert.Empty(t, tr.Segments)
		}
	}
}

func TestUsec(t *testing.T) {
	cases := []struct {
		sec  float64
		want int64
	}{
		{0, 0},
		{1, 1_000_000},
		{2.5, 2_500_000},
		{0.1, 100_000},
		{1.0000004, 1_000_000},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Usec(tc.sec))
	}
}
