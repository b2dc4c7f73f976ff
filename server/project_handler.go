package server

import (
	"encoding/json"
	"net/http"

	"FrameFlow/cache"
	"FrameFlow/logger"
	"FrameFlow/model"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// CreateProjectHandler 创建项目，同时生成带默认轨道组的时间轴文档
func (h *APIHandler) CreateProjectHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userFromContext(r.Context())

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "project name is required")
		return
	}

	project := &model.Project{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Status:      model.ProjectStatusActive,
	}
	if err := h.projectRepo.Create(r.Context(), project); err != nil {
		logger.Error("创建项目失败", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to create project")
		return
	}

	// 新项目开场即有固定默认轨道组的空文档
	doc := model.NewDocument(h.cfg.DefaultFPS)
	if err := h.timelineRepo.Save(r.Context(), project.ID, doc); err != nil {
		logger.Error("初始化时间轴文档失败", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to initialize timeline")
		return
	}

	logger.Info("项目创建成功",
		logger.String("projectId", project.ID),
		logger.Int64("userId", userID))
	writeJSON(w, http.StatusCreated, project)
}

// ListProjectsHandler 当前用户的项目列表
func (h *APIHandler) ListProjectsHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userFromContext(r.Context())

	projects, err := h.projectRepo.ListByUser(r.Context(), userID)
	if err != nil {
		logger.Error("查询项目列表失败", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to list projects")
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// GetProjectHandler 单个项目详情
func (h *APIHandler) GetProjectHandler(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["id"]

	project, err := h.projectRepo.GetByID(r.Context(), projectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get project")
		return
	}
	if project == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// DeleteProjectHandler 删除项目及其时间轴文档
func (h *APIHandler) DeleteProjectHandler(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["id"]

	if err := h.projectRepo.Delete(r.Context(), projectID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete project")
		return
	}
	if err := h.timelineRepo.Delete(r.Context(), projectID); err != nil {
		logger.Warn("删除时间轴文档失败", logger.ErrorField(err))
	}
	if err := cache.InvalidateDocument(r.Context(), projectID); err != nil {
		logger.Warn("清理时间轴缓存失败", logger.ErrorField(err))
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
