package server

import (
	"net/http"

	"FrameFlow/core/auth"
	"FrameFlow/core/session"
	"FrameFlow/logger"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SessionHandler 升级 WebSocket 并接入项目播放会话
//
// 鉴权走查询参数 token（浏览器的 WebSocket API 不带自定义头）；
// trackId 非空表示该连接承载一个轨道媒体播放器，交给协调器管
func (h *APIHandler) SessionHandler(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.ParseToken(h.cfg.JWTSecret, r.URL.Query().Get("token"))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	projectID := mux.Vars(r)["id"]
	trackID := r.URL.Query().Get("trackId")

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", logger.ErrorField(err))
		return
	}
	defer conn.Close()

	err = h.hub.Join(r.Context(), conn, projectID, claims.UserID, claims.Username,
		session.JoinData{TrackID: trackID})
	if err != nil {
		logger.Error("加入播放会话失败",
			logger.String("projectId", projectID),
			logger.ErrorField(err))
	}
}
