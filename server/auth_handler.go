package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"FrameFlow/core/auth"
	"FrameFlow/logger"
	"FrameFlow/model"
)

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// authResponse 登录/注册成功的响应
type authResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// LoginHandler handles user login requests
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"` // 可以是用户名或邮箱
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("[Login] 解析请求体失败", logger.ErrorField(err))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username/email and password are required")
		return
	}

	// 支持用户名或邮箱登录
	var user *model.User
	var err error
	if strings.Contains(req.Username, "@") {
		user, err = h.userRepo.GetUserByEmail(req.Username)
	} else {
		user, err = h.userRepo.GetUserByUsername(req.Username)
	}
	if err != nil {
		logger.Error("[Login] 查询用户失败", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil {
		logger.Warn("[Login] 用户不存在", logger.String("username", req.Username))
		writeError(w, http.StatusUnauthorized, "invalid username/email or password")
		return
	}

	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		logger.Warn("[Login] 密码验证失败", logger.String("username", req.Username))
		writeError(w, http.StatusUnauthorized, "invalid username/email or password")
		return
	}

	token, err := auth.GenerateToken(h.cfg.JWTSecret, user.ID, user.Username)
	if err != nil {
		logger.Error("[Login] 生成token失败", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

// RegisterHandler handles user registration requests
func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "username, password and email are required")
		return
	}

	if existing, err := h.userRepo.GetUserByUsername(req.Username); err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	} else if existing != nil {
		writeError(w, http.StatusConflict, "username already taken")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error("[Register] 密码哈希失败", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Phone:        req.Phone,
	}
	id, err := h.userRepo.CreateUser(user)
	if err != nil {
		logger.Error("[Register] 创建用户失败", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	user.ID = id

	token, err := auth.GenerateToken(h.cfg.JWTSecret, user.ID, user.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	logger.Info("[Register] 用户注册成功",
		logger.Int64("userId", id),
		logger.String("username", req.Username))
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}
