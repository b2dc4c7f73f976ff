package mediastore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"sync"

	"FrameFlow/logger"
	"FrameFlow/model"
	"FrameFlow/repository"
	"FrameFlow/storage"
)

// Store 素材节点库的只读契约
//
// 时间轴引擎与导出序列化器只认识这个接口：查节点元数据、取媒体内容。
// 查不到的节点返回 (nil, false)——悬空引用是一等公民，不是错误。
// 引擎从不写这个库。
type Store interface {
	Lookup(ctx context.Context, nodeID string) (*model.MediaNode, bool)
	Fetch(ctx context.Context, nodeID string) (io.ReadCloser, string, error)
}

// dbStore 生产实现：元数据走素材仓库，内容走 MinIO，外链素材走 HTTP
type dbStore struct {
	nodes  repository.NodeRepository
	assets *storage.AssetStore
	client *http.Client
}

// New 创建生产素材库
func New(nodes repository.NodeRepository, assets *storage.AssetStore) Store {
	return &dbStore{
		nodes:  nodes,
		assets: assets,
		client: http.DefaultClient,
	}
}

// Lookup 查节点元数据
func (s *dbStore) Lookup(ctx context.Context, nodeID string) (*model.MediaNode, bool) {
	node, err := s.nodes.GetByID(ctx, nodeID)
	if err != nil {
		logger.Warn("素材节点查询出错，按悬空处理",
			logger.String("nodeId", nodeID),
			logger.ErrorField(err))
		return nil, false
	}
	if node == nil {
		return nil, false
	}
	return node, true
}

// Fetch 取节点的媒体内容，返回内容流和带点号的扩展名
func (s *dbStore) Fetch(ctx context.Context, nodeID string) (io.ReadCloser, string, error) {
	node, ok := s.Lookup(ctx, nodeID)
	if !ok {
		return nil, "", fmt.Errorf("素材节点不存在: %s", nodeID)
	}

	if node.ObjectPath != "" {
		rc, err := s.assets.GetObject(ctx, node.ObjectPath)
		if err != nil {
			return nil, "", err
		}
		return rc, storage.ObjectExt(node.ObjectPath), nil
	}

	if node.MediaURL != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, node.MediaURL, nil)
		if err != nil {
			return nil, "", fmt.Errorf("构造素材请求失败: %w", err)
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return nil, "", fmt.Errorf("拉取外链素材失败: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, "", fmt.Errorf("拉取外链素材失败: HTTP %d", resp.StatusCode)
		}
		ext := path.Ext(strings.SplitN(node.MediaURL, "?", 2)[0])
		if ext == "" {
			ext = defaultExt(node.Kind)
		}
		return resp.Body, ext, nil
	}

	return nil, "", fmt.Errorf("素材节点没有媒体内容: %s", nodeID)
}

func defaultExt(kind model.NodeKind) string {
	switch kind {
	case model.NodeKindVideo:
		return ".mp4"
	case model.NodeKindAudio:
		return ".mp3"
	case model.NodeKindImage:
		return ".png"
	default:
		return ".bin"
	}
}

// Memory 内存素材库：测试与单机离线场景用
type Memory struct {
	mu    sync.RWMutex
	nodes map[string]*model.MediaNode
	blobs map[string][]byte
	exts  map[string]string
}

// NewMemory 创建内存素材库
func NewMemory() *Memory {
	return &Memory{
		nodes: make(map[string]*model.MediaNode),
		blobs: make(map[string][]byte),
		exts:  make(map[string]string),
	}
}

// Put 放入一个节点及其可选的媒体内容
func (m *Memory) Put(node *model.MediaNode, blob []byte, ext string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes[node.ID] = node
	if blob != nil {
		m.blobs[node.ID] = blob
		m.exts[node.ID] = ext
	}
}

// Lookup 查节点
func (m *Memory) Lookup(_ context.Context, nodeID string) (*model.MediaNode, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	node, ok := m.nodes[nodeID]
	return node, ok
}

// Fetch 取内容
func (m *Memory) Fetch(_ context.Context, nodeID string) (io.ReadCloser, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	blob, ok := m.blobs[nodeID]
	if !ok {
		return nil, "", fmt.Errorf("素材节点没有媒体内容: %s", nodeID)
	}
	return io.NopCloser(strings.NewReader(string(blob))), m.exts[nodeID], nil
}
