package server

import (
	"fmt"
	"net/http"

	"FrameFlow/core/export"
	"FrameFlow/logger"

	"github.com/gorilla/mux"
)

// ExportTimelineHandler 把项目当前的时间轴导出成草稿包并直接下行
//
// 导出是尽力而为的批处理：个别素材拉取失败只会让该文件缺席，
// 不会让整个导出失败；对外只暴露整体成功/失败一个终态
func (h *APIHandler) ExportTimelineHandler(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["id"]

	doc, err := h.loadDocument(r.Context(), projectID)
	if err != nil {
		logger.Error("加载时间轴文档失败", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to load timeline")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="frameflow-%s.zip"`, projectID))

	serializer := export.NewSerializer(h.store, h.cfg.CanvasWidth, h.cfg.CanvasHeight)
	if err := serializer.Export(r.Context(), doc, w); err != nil {
		// 响应头已发出，只能记日志
		logger.Error("导出草稿包失败",
			logger.String("projectId", projectID),
			logger.ErrorField(err))
		return
	}

	logger.Info("导出草稿包完成", logger.String("projectId", projectID))
}
