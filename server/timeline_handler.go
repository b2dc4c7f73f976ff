package server

import (
	"context"
	"encoding/json"
	"net/http"

	"FrameFlow/cache"
	"FrameFlow/core/timeline"
	"FrameFlow/logger"
	"FrameFlow/model"

	"github.com/gorilla/mux"
)

// loadDocument 取项目的时间轴文档：缓存 → 数据库 → 新建默认文档
func (h *APIHandler) loadDocument(ctx context.Context, projectID string) (*model.Document, error) {
	doc, err := cache.GetDocument(ctx, projectID)
	if err != nil {
		logger.Warn("读取时间轴缓存失败，回源数据库", logger.ErrorField(err))
	}
	if doc != nil {
		return doc, nil
	}

	doc, err = h.timelineRepo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		doc = model.NewDocument(h.cfg.DefaultFPS)
		if err := h.timelineRepo.Save(ctx, projectID, doc); err != nil {
			return nil, err
		}
	}

	if err := cache.SetDocument(ctx, projectID, doc); err != nil {
		logger.Warn("回填时间轴缓存失败", logger.ErrorField(err))
	}
	return doc, nil
}

// saveDocument 落库、回填缓存、同步进活跃播放会话
func (h *APIHandler) saveDocument(ctx context.Context, projectID string, doc *model.Document) error {
	if err := h.timelineRepo.Save(ctx, projectID, doc); err != nil {
		return err
	}
	if err := cache.SetDocument(ctx, projectID, doc); err != nil {
		logger.Warn("回填时间轴缓存失败", logger.ErrorField(err))
	}
	h.hub.UpdateDocument(projectID, doc)
	return nil
}

// GetTimelineHandler 项目的时间轴文档
func (h *APIHandler) GetTimelineHandler(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["id"]

	doc, err := h.loadDocument(r.Context(), projectID)
	if err != nil {
		logger.Error("加载时间轴文档失败", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to load timeline")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// editRequest 所有编辑操作共用的请求体，按 op 取用各自的字段
type editRequest struct {
	ClipID    string  `json:"clipId,omitempty"`
	NodeID    string  `json:"nodeId,omitempty"`
	TrackID   string  `json:"trackId,omitempty"`
	Time      float64 `json:"time,omitempty"`      // split 切点 / resize 指针时刻 / move与insert 的落点
	Side      string  `json:"side,omitempty"`      // resize: left | right
}

// EditTimelineHandler 套用一个片段编辑算法并返回新文档
// 路径里的 op ∈ {split, merge, align, resize, move, insert, drop}
//
// 编辑算法对越界参数一律 clamp 或 no-op，这里不会因为参数出界而报错——
// 这些参数来自连续的指针拖动，每一帧都可能瞬时越界
func (h *APIHandler) EditTimelineHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	projectID := vars["id"]
	op := vars["op"]

	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := h.loadDocument(r.Context(), projectID)
	if err != nil {
		logger.Error("加载时间轴文档失败", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to load timeline")
		return
	}

	switch op {
	case "split":
		doc = timeline.Split(doc, req.ClipID, req.Time)
	case "merge":
		doc = timeline.Merge(doc, req.ClipID)
	case "align":
		doc = timeline.AlignLeft(doc, req.TrackID)
	case "resize":
		doc = timeline.Resize(doc, req.ClipID, timeline.ResizeSide(req.Side), req.Time)
	case "move":
		doc = timeline.Move(doc, req.ClipID, req.TrackID, req.Time)
	case "insert":
		doc = timeline.Insert(doc, req.NodeID, req.TrackID, req.Time, h.nodeDurationHint(r.Context(), req.NodeID))
	case "drop":
		// 拖放契约：负载带 clipId 是移动已有片段，带 nodeId 是落入新素材
		if req.ClipID != "" {
			doc = timeline.Move(doc, req.ClipID, req.TrackID, req.Time)
		} else if req.NodeID != "" {
			doc = timeline.Insert(doc, req.NodeID, req.TrackID, req.Time, h.nodeDurationHint(r.Context(), req.NodeID))
		} else {
			writeError(w, http.StatusBadRequest, "drop payload needs clipId or nodeId")
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "unknown edit operation")
		return
	}

	if err := h.saveDocument(r.Context(), projectID, doc); err != nil {
		logger.Error("保存时间轴文档失败", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to save timeline")
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (h *APIHandler) nodeDurationHint(ctx context.Context, nodeID string) float64 {
	if node, ok := h.store.Lookup(ctx, nodeID); ok && node != nil {
		return node.DurationHint
	}
	return 0
}
