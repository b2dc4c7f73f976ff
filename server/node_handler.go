package server

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"time"

	"FrameFlow/logger"
	"FrameFlow/model"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// ListNodesHandler 项目的素材节点列表
func (h *APIHandler) ListNodesHandler(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["id"]

	nodes, err := h.nodeRepo.ListByProject(r.Context(), projectID)
	if err != nil {
		logger.Error("查询素材列表失败", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to list nodes")
		return
	}
	writeJSON(w, http.StatusOK, nodes)
}

// CreateNodeHandler 登记一个素材节点
// 纯文本节点只带 textLabel；外链素材带 mediaUrl；本地文件走 UploadNodeHandler
func (h *APIHandler) CreateNodeHandler(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["id"]

	var req struct {
		Kind         model.NodeKind `json:"kind"`
		Name         string         `json:"name"`
		MediaURL     string         `json:"mediaUrl"`
		DurationHint float64        `json:"durationHint"`
		TextLabel    string         `json:"textLabel"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Kind == "" {
		writeError(w, http.StatusBadRequest, "node kind is required")
		return
	}

	node := &model.MediaNode{
		ID:           uuid.NewString(),
		ProjectID:    projectID,
		Kind:         req.Kind,
		Name:         req.Name,
		MediaURL:     req.MediaURL,
		DurationHint: req.DurationHint,
		TextLabel:    req.TextLabel,
	}
	if err := h.nodeRepo.Create(r.Context(), node); err != nil {
		logger.Error("创建素材节点失败", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to create node")
		return
	}

	writeJSON(w, http.StatusCreated, node)
}

// UploadNodeHandler 上传素材文件并登记节点
func (h *APIHandler) UploadNodeHandler(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["id"]

	if err := r.ParseMultipartForm(256 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	kind := model.NodeKind(r.FormValue("kind"))
	if kind == "" {
		writeError(w, http.StatusBadRequest, "kind field is required")
		return
	}

	var durationHint float64
	if v := r.FormValue("durationHint"); v != "" {
		json.Unmarshal([]byte(v), &durationHint)
	}

	nodeID := uuid.NewString()
	ext := filepath.Ext(header.Filename)
	objectPath, err := h.assets.PutNodeAsset(r.Context(), nodeID, ext, file, header.Size)
	if err != nil {
		logger.Error("上传素材失败", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to store asset")
		return
	}

	node := &model.MediaNode{
		ID:           nodeID,
		ProjectID:    projectID,
		Kind:         kind,
		Name:         header.Filename,
		ObjectPath:   objectPath,
		DurationHint: durationHint,
	}
	if err := h.nodeRepo.Create(r.Context(), node); err != nil {
		logger.Error("登记素材节点失败", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to create node")
		return
	}

	logger.Info("素材上传成功",
		logger.String("nodeId", nodeID),
		logger.String("projectId", projectID))
	writeJSON(w, http.StatusCreated, node)
}

// NodeMediaURLHandler 素材媒体内容的限时下载地址
func (h *APIHandler) NodeMediaURLHandler(w http.ResponseWriter, r *http.Request) {
	nodeID := mux.Vars(r)["node_id"]

	node, ok := h.store.Lookup(r.Context(), nodeID)
	if !ok {
		writeError(w, http.StatusNotFound, "node not found")
		return
	}
	if node.MediaURL != "" {
		writeJSON(w, http.StatusOK, map[string]string{"url": node.MediaURL})
		return
	}
	if node.ObjectPath == "" {
		writeError(w, http.StatusNotFound, "node has no media")
		return
	}

	url, err := h.assets.PresignedURL(r.Context(), node.ObjectPath, time.Hour)
	if err != nil {
		logger.Error("生成下载地址失败", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to presign url")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// DeleteNodeHandler 删除素材节点
// 引用它的片段从此悬空，渲染为占位内容，时间轴不受影响
func (h *APIHandler) DeleteNodeHandler(w http.ResponseWriter, r *http.Request) {
	nodeID := mux.Vars(r)["node_id"]

	if err := h.nodeRepo.Delete(r.Context(), nodeID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete node")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
