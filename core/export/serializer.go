package export

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"FrameFlow/logger"
	"FrameFlow/model"

	"github.com/google/uuid"
)

// MediaFetcher 序列化器对素材库的全部依赖：
// 查节点元数据，按节点取媒体内容（返回内容流和文件扩展名）
type MediaFetcher interface {
	Lookup(ctx context.Context, nodeID string) (*model.MediaNode, bool)
	Fetch(ctx context.Context, nodeID string) (io.ReadCloser, string, error)
}

// Serializer 把时间轴文档和素材库打成自洽的草稿包（zip）
type Serializer struct {
	store        MediaFetcher
	canvasWidth  int
	canvasHeight int
	fetchTimeout time.Duration // 单个素材拉取的上限，慢源不拖垮整体
	workers      int
}

// NewSerializer 创建序列化器
func NewSerializer(store MediaFetcher, canvasWidth, canvasHeight int) *Serializer {
	if canvasWidth <= 0 {
		canvasWidth = 1920
	}
	if canvasHeight <= 0 {
		canvasHeight = 1080
	}
	return &Serializer{
		store:        store,
		canvasWidth:  canvasWidth,
		canvasHeight: canvasHeight,
		fetchTimeout: 30 * time.Second,
		workers:      4,
	}
}

// fetchedAsset 拉取成功的素材内容
type fetchedAsset struct {
	data []byte
	ext  string
}

// Export 遍历文档与素材库，向 w 写出完整草稿包
//
// 每个被引用的节点只物化一条素材记录（按节点ID去重），每个片段对应
// 一条 segment。字幕片段只产出文本素材，不拉媒体。媒体拉取失败只记
// 警告并从包里略去该素材文件，不中断其余部分的导出。
func (s *Serializer) Export(ctx context.Context, doc *model.Document, w io.Writer) error {
	draft := &Draft{
		ID:       uuid.NewString(),
		Canvas:   CanvasConfig{Width: s.canvasWidth, Height: s.canvasHeight},
		Duration: Usec(doc.TotalDuration),
		FPS:      doc.FPS,
	}

	materialIDs := map[string]string{}       // nodeID -> materialID
	materials := map[string]*Material{}      // nodeID -> material
	needsMedia := map[string]*model.MediaNode{} // 待拉取内容的节点

	for i := range doc.Tracks {
		track := &doc.Tracks[i]
		dt := DraftTrack{
			ID:       track.ID,
			Type:     draftTrackType(track.Kind),
			Segments: []Segment{},
		}

		for j := range track.Clips {
			c := &track.Clips[j]
			node, ok := s.store.Lookup(ctx, c.NodeID)
			if !ok || node == nil {
				logger.Warn("导出时片段引用的素材节点不存在，跳过",
					logger.String("clipId", c.ID),
					logger.String("nodeId", c.NodeID))
				continue
			}

			matID, seen := materialIDs[node.ID]
			if !seen {
				matID = uuid.NewString()
				materialIDs[node.ID] = matID

				m := &Material{
					ID:       matID,
					Name:     node.Name,
					Duration: Usec(node.DurationHint),
				}
				if track.Kind == model.TrackKindSubtitle {
					m.Type = "text"
					m.Content = node.TextLabel
					if c.CustomLabel != "" {
						m.Content = c.CustomLabel
					}
				} else {
					m.Type = materialType(node.Kind)
					if node.HasMedia() {
						needsMedia[node.ID] = node
					}
				}
				materials[node.ID] = m
			}

			speed := c.PlaybackRate
			if speed <= 0 {
				speed = 1
			}
			dt.Segments = append(dt.Segments, Segment{
				ID:              uuid.NewString(),
				MaterialID:      matID,
				TargetTimerange: Timerange{Start: Usec(c.StartTime), Duration: Usec(c.Duration)},
				SourceTimerange: Timerange{Start: Usec(c.TrimStart), Duration: Usec(c.Duration)},
				Speed:           speed,
				Volume:          c.Volume,
				Opacity:         c.Opacity,
			})
		}

		draft.Tracks = append(draft.Tracks, dt)
	}

	// 并行拉取全部媒体内容，失败的单独略过
	assets := s.fetchAll(ctx, needsMedia)

	for nodeID, m := range materials {
		if a, ok := assets[nodeID]; ok {
			m.Path = fmt.Sprintf("assets/%s%s", nodeID, a.ext)
		}
		switch m.Type {
		case "video", "photo":
			draft.Materials.Videos = append(draft.Materials.Videos, *m)
		case "audio":
			draft.Materials.Audios = append(draft.Materials.Audios, *m)
		default:
			draft.Materials.Texts = append(draft.Materials.Texts, *m)
		}
	}

	return s.writeArchive(w, draft, assets)
}

// fetchAll 用小型 worker 池拉取素材，每个节点独立限时、独立成败
func (s *Serializer) fetchAll(ctx context.Context, nodes map[string]*model.MediaNode) map[string]fetchedAsset {
	results := make(map[string]fetchedAsset)
	if len(nodes) == 0 {
		return results
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	jobs := make(chan string)

	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for nodeID := range jobs {
				data, ext, err := s.fetchOne(ctx, nodeID)
				if err != nil {
					logger.Warn("素材拉取失败，从草稿包中略去",
						logger.String("nodeId", nodeID),
						logger.ErrorField(err))
					continue
				}
				mu.Lock()
				results[nodeID] = fetchedAsset{data: data, ext: ext}
				mu.Unlock()
			}
		}()
	}

	for nodeID := range nodes {
		jobs <- nodeID
	}
	close(jobs)
	wg.Wait()

	return results
}

func (s *Serializer) fetchOne(ctx context.Context, nodeID string) ([]byte, string, error) {
	fctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	rc, ext, err := s.store.Fetch(fctx, nodeID)
	if err != nil {
		return nil, "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, "", fmt.Errorf("读取素材内容失败: %w", err)
	}
	return data, ext, nil
}

// writeArchive 写出 zip：根部 draft.json，媒体在 assets/ 下按节点ID命名
func (s *Serializer) writeArchive(w io.Writer, draft *Draft, assets map[string]fetchedAsset) error {
	zw := zip.NewWriter(w)

	manifest, err := json.MarshalIndent(draft, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化清单失败: %w", err)
	}
	f, err := zw.Create("draft.json")
	if err != nil {
		return fmt.Errorf("创建清单条目失败: %w", err)
	}
	if _, err := io.Copy(f, bytes.NewReader(manifest)); err != nil {
		return fmt.Errorf("写入清单失败: %w", err)
	}

	for nodeID, a := range assets {
		entry, err := zw.Create(fmt.Sprintf("assets/%s%s", nodeID, a.ext))
		if err != nil {
			return fmt.Errorf("创建素材条目失败: %w", err)
		}
		if _, err := entry.Write(a.data); err != nil {
			return fmt.Errorf("写入素材 %s 失败: %w", nodeID, err)
		}
	}

	return zw.Close()
}
