package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"FrameFlow/config"
	"FrameFlow/core/auth"
	"FrameFlow/core/mediastore"
	"FrameFlow/core/session"
	"FrameFlow/logger"
	"FrameFlow/repository"
	"FrameFlow/storage"
)

// APIHandler 处理所有API请求
type APIHandler struct {
	userRepo     repository.UserRepository
	projectRepo  repository.ProjectRepository
	nodeRepo     repository.NodeRepository
	timelineRepo repository.TimelineRepository
	store        mediastore.Store
	assets       *storage.AssetStore
	hub          *session.Hub
	cfg          *config.Config
}

// NewAPIHandler 创建新的API处理器
func NewAPIHandler(
	userRepo repository.UserRepository,
	projectRepo repository.ProjectRepository,
	nodeRepo repository.NodeRepository,
	timelineRepo repository.TimelineRepository,
	store mediastore.Store,
	assets *storage.AssetStore,
	hub *session.Hub,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		userRepo:     userRepo,
		projectRepo:  projectRepo,
		nodeRepo:     nodeRepo,
		timelineRepo: timelineRepo,
		store:        store,
		assets:       assets,
		hub:          hub,
		cfg:          cfg,
	}
}

// writeJSON 统一的JSON响应
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			logger.Error("写入响应失败", logger.ErrorField(err))
		}
	}
}

// errorResponse 错误响应体
type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

type contextKey string

const (
	ctxKeyUserID   contextKey = "userId"
	ctxKeyUsername contextKey = "username"
)

// AuthMiddleware 校验 Bearer token 并把用户信息塞进请求上下文
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "missing or malformed authorization header")
			return
		}

		claims, err := auth.ParseToken(h.cfg.JWTSecret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			logger.Warn("token校验失败", logger.ErrorField(err))
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUserID, claims.UserID)
		ctx = context.WithValue(ctx, ctxKeyUsername, claims.Username)
		next(w, r.WithContext(ctx))
	}
}

// userFromContext 从请求上下文取当前用户
func userFromContext(ctx context.Context) (int64, string) {
	userID, _ := ctx.Value(ctxKeyUserID).(int64)
	username, _ := ctx.Value(ctxKeyUsername).(string)
	return userID, username
}
