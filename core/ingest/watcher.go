package ingest

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"FrameFlow/logger"
	"FrameFlow/model"
	"FrameFlow/repository"
	"FrameFlow/storage"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

// Watcher 本地素材投递目录的入库器
//
// 监听 ingestDir：落进来的媒体文件先用 ffprobe 探测固有时长，
// 再上传对象存储并登记为素材节点。目录结构 ingestDir/<projectID>/file.mp4，
// 直接丢在根目录的文件归入 "library" 项目。
// 架构：fsnotify 监听 → 探测时长 → MinIO 上传 → 节点入库
type Watcher struct {
	dir         string
	ffprobePath string
	nodes       repository.NodeRepository
	assets      *storage.AssetStore
}

// NewWatcher 创建入库器
func NewWatcher(dir, ffprobePath string, nodes repository.NodeRepository, assets *storage.AssetStore) *Watcher {
	return &Watcher{
		dir:         dir,
		ffprobePath: ffprobePath,
		nodes:       nodes,
		assets:      assets,
	}
}

// kindByExt 按扩展名归类素材
func kindByExt(ext string) (model.NodeKind, bool) {
	switch strings.ToLower(ext) {
	case ".mp4", ".mov", ".webm":
		return model.NodeKindVideo, true
	case ".mp3", ".wav", ".m4a", ".aac":
		return model.NodeKindAudio, true
	case ".png", ".jpg", ".jpeg", ".webp":
		return model.NodeKindImage, true
	default:
		return "", false
	}
}

// Run 阻塞运行监听循环，ctx 取消后返回
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("创建投递目录失败: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监听失败: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("监听投递目录失败: %w", err)
	}
	// 一级项目子目录也要监听
	entries, _ := os.ReadDir(w.dir)
	for _, e := range entries {
		if e.IsDir() {
			watcher.Add(filepath.Join(w.dir, e.Name()))
		}
	}

	logger.Info("素材入库监听启动", logger.String("dir", w.dir))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create == 0 {
				continue
			}
			info, err := os.Stat(event.Name)
			if err != nil {
				continue
			}
			if info.IsDir() {
				watcher.Add(event.Name)
				continue
			}
			// 等写入方落完盘再处理
			time.Sleep(500 * time.Millisecond)
			if err := w.ingestFile(ctx, event.Name); err != nil {
				logger.Warn("素材入库失败",
					logger.String("file", event.Name),
					logger.ErrorField(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("文件监听错误", logger.ErrorField(err))
		}
	}
}

// ingestFile 处理单个落盘文件：探测、上传、登记
func (w *Watcher) ingestFile(ctx context.Context, path string) error {
	ext := filepath.Ext(path)
	kind, ok := kindByExt(ext)
	if !ok {
		logger.Debug("跳过不认识的文件类型", logger.String("file", path))
		return nil
	}

	projectID := "library"
	if parent := filepath.Base(filepath.Dir(path)); parent != filepath.Base(w.dir) {
		projectID = parent
	}

	var duration float64
	if kind == model.NodeKindVideo || kind == model.NodeKindAudio {
		d, err := w.probeDuration(ctx, path)
		if err != nil {
			logger.Warn("时长探测失败，素材将使用默认片段时长",
				logger.String("file", path),
				logger.ErrorField(err))
		} else {
			duration = d
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("打开素材文件失败: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("读取素材文件信息失败: %w", err)
	}

	nodeID := uuid.NewString()
	objectPath, err := w.assets.PutNodeAsset(ctx, nodeID, ext, f, info.Size())
	if err != nil {
		return err
	}

	node := &model.MediaNode{
		ID:           nodeID,
		ProjectID:    projectID,
		Kind:         kind,
		Name:         strings.TrimSuffix(filepath.Base(path), ext),
		ObjectPath:   objectPath,
		DurationHint: duration,
	}
	if err := w.nodes.Create(ctx, node); err != nil {
		return err
	}

	logger.Info("素材入库完成",
		logger.String("nodeId", nodeID),
		logger.String("projectId", projectID),
		logger.String("kind", string(kind)),
		logger.Float64("duration", duration))
	return nil
}

// probeDuration 用 ffprobe 读容器时长（秒）
func (w *Watcher) probeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, w.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe 执行失败: %w", err)
	}

	d, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe 输出解析失败: %w", err)
	}
	return d, nil
}
