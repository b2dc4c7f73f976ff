package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"FrameFlow/core/mediastore"
	"FrameFlow/core/timeline"
	"FrameFlow/db"
	"FrameFlow/logger"
	"FrameFlow/model"
	"FrameFlow/repository"

	"github.com/gorilla/websocket"
)

// MessageType 消息类型
type MessageType string

const (
	// 系统消息
	MsgTypeJoin  MessageType = "join"  // 加入会话
	MsgTypeLeave MessageType = "leave" // 离开会话
	MsgTypeError MessageType = "error" // 错误消息
	MsgTypePing  MessageType = "ping"  // 心跳
	MsgTypePong  MessageType = "pong"  // 心跳响应
	MsgTypeSync  MessageType = "sync"  // 时钟状态同步（服务端 -> 所有客户端）

	// 播放控制消息（客户端 -> 服务端）
	MsgTypePlay   MessageType = "play"
	MsgTypePause  MessageType = "pause"
	MsgTypeSeek   MessageType = "seek"
	MsgTypeReport MessageType = "report" // 播放器上报自身位置

	// 播放器控制命令（服务端 -> 挂载了播放器的客户端）
	MsgTypePlayerSeek  MessageType = "player_seek"
	MsgTypePlayerPlay  MessageType = "player_play"
	MsgTypePlayerPause MessageType = "player_pause"
)

// WSMessage WebSocket 消息结构
type WSMessage struct {
	Type      MessageType     `json:"type"`
	ProjectID string          `json:"projectId,omitempty"`
	UserID    int64           `json:"userId,omitempty"`
	Username  string          `json:"username,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// JoinData 加入会话的负载；TrackID 非空表示此连接承载该轨道的媒体播放器
type JoinData struct {
	TrackID string `json:"trackId,omitempty"`
}

// SeekData seek 命令负载
type SeekData struct {
	Position float64 `json:"position"`
}

// ReportData 播放器位置上报负载
type ReportData struct {
	Position  float64 `json:"position"`
	IsPlaying bool    `json:"isPlaying"`
}

// PlayerCommandData 下行播放器命令负载
type PlayerCommandData struct {
	Position float64 `json:"position,omitempty"`
}

// SyncData 时钟状态广播负载
type SyncData struct {
	Position  float64 `json:"position"`
	IsPlaying bool    `json:"isPlaying"`
	Subtitle  string  `json:"subtitle,omitempty"`
	ServerTime int64  `json:"serverTime"`
}

// Client 一条会话内的 WebSocket 连接
type Client struct {
	conn     *websocket.Conn
	send     chan []byte
	session  *Session
	userID   int64
	username string
	player   *RemotePlayer // 非空表示该连接挂了一个轨道播放器
}

// trySend 非阻塞投递，慢消费者丢弃消息而不是拖垮广播
func (c *Client) trySend(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
		logger.Warn("会话消息投递失败，通道已满",
			logger.Int64("userId", c.userID))
	}
}

// Session 一个项目的实时播放会话
//
// 帧循环是会话内唯一推进时钟的代码路径；控制消息（play/pause/seek）
// 和帧 tick 都在 mu 下串行执行，互不交叠——协作式调度的服务端等价物。
type Session struct {
	projectID string
	engine    *timeline.Engine

	mu      sync.Mutex
	clients map[*Client]bool
	done    chan struct{}
	once    sync.Once
}

const (
	framePeriod  = 33 * time.Millisecond // ~30fps 的逻辑帧
	syncEvery    = 5                     // 每 5 帧广播一次时钟状态
	persistEvery = 60                    // 每 60 帧落一次 Redis
)

// run 帧循环：推进时钟、对齐播放器、广播状态、周期性落盘
func (s *Session) run() {
	ticker := time.NewTicker(framePeriod)
	defer ticker.Stop()

	last := time.Now()
	frame := 0

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			delta := now.Sub(last).Seconds()
			last = now
			frame++

			s.mu.Lock()
			subtitle := s.engine.Tick(context.Background(), delta)
			position := s.engine.Clock().Current()
			running := s.engine.Clock().Running()
			s.mu.Unlock()

			if frame%syncEvery == 0 {
				s.broadcastSync(position, running, subtitle)
			}
			if frame%persistEvery == 0 {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				if err := db.SavePlaybackState(ctx, s.projectID, db.PlaybackState{
					Position: position, IsPlaying: running,
				}); err != nil {
					logger.Warn("播放状态落盘失败", logger.ErrorField(err))
				}
				cancel()
			}
		}
	}
}

func (s *Session) broadcastSync(position float64, running bool, subtitle string) {
	data, _ := json.Marshal(SyncData{
		Position:   position,
		IsPlaying:  running,
		Subtitle:   subtitle,
		ServerTime: time.Now().UnixMilli(),
	})
	msg := WSMessage{Type: MsgTypeSync, ProjectID: s.projectID, Data: data, Timestamp: time.Now().UnixMilli()}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.trySend(msg)
	}
}

// handleMessage 处理一条客户端消息；与帧 tick 在同一把锁下串行
func (s *Session) handleMessage(c *Client, msg *WSMessage) {
	switch msg.Type {
	case MsgTypePing:
		c.trySend(WSMessage{Type: MsgTypePong, Timestamp: time.Now().UnixMilli()})

	case MsgTypePlay:
		s.mu.Lock()
		s.engine.Clock().Play()
		s.mu.Unlock()

	case MsgTypePause:
		s.mu.Lock()
		s.engine.Clock().Pause()
		s.mu.Unlock()

	case MsgTypeSeek:
		var data SeekData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}
		s.mu.Lock()
		s.engine.Clock().Seek(data.Position)
		s.mu.Unlock()

	case MsgTypeReport:
		if c.player == nil {
			return
		}
		var data ReportData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}
		c.player.report(data.Position, data.IsPlaying)

	default:
		logger.Debug("忽略未知会话消息", logger.String("type", string(msg.Type)))
	}
}

// close 停掉帧循环
func (s *Session) close() {
	s.once.Do(func() { close(s.done) })
}

// Hub 所有项目会话的登记处
type Hub struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	store     mediastore.Store
	timelines repository.TimelineRepository
	fps       int
}

// NewHub 创建会话登记处
func NewHub(store mediastore.Store, timelines repository.TimelineRepository, fps int) *Hub {
	return &Hub{
		sessions:  make(map[string]*Session),
		store:     store,
		timelines: timelines,
		fps:       fps,
	}
}

// getOrCreate 取项目会话，没有则加载文档并启动帧循环
func (h *Hub) getOrCreate(ctx context.Context, projectID string) (*Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s, ok := h.sessions[projectID]; ok {
		return s, nil
	}

	doc, err := h.timelines.Get(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("加载时间轴文档失败: %w", err)
	}
	if doc == nil {
		doc = model.NewDocument(h.fps)
	}

	s := &Session{
		projectID: projectID,
		engine:    timeline.NewEngine(doc, h.store),
		clients:   make(map[*Client]bool),
		done:      make(chan struct{}),
	}

	// 断线前的播放位置接着用
	if state, err := db.LoadPlaybackState(ctx, projectID); err == nil && state != nil {
		s.engine.Clock().Seek(state.Position)
	}

	h.sessions[projectID] = s
	go s.run()

	logger.Info("播放会话创建",
		logger.String("projectId", projectID))
	return s, nil
}

// UpdateDocument 编辑接口落库后把新文档同步进活跃会话
func (h *Hub) UpdateDocument(projectID string, doc *model.Document) {
	h.mu.Lock()
	s, ok := h.sessions[projectID]
	h.mu.Unlock()
	if !ok {
		return
	}
	s.mu.Lock()
	s.engine.Replace(doc)
	s.mu.Unlock()
}

// Join 把一条已升级的 WebSocket 连接接入项目会话，阻塞到连接关闭
func (h *Hub) Join(ctx context.Context, conn *websocket.Conn, projectID string, userID int64, username string, join JoinData) error {
	s, err := h.getOrCreate(ctx, projectID)
	if err != nil {
		return err
	}

	client := &Client{
		conn:     conn,
		send:     make(chan []byte, 64),
		session:  s,
		userID:   userID,
		username: username,
	}

	if join.TrackID != "" {
		client.player = newRemotePlayer(client, join.TrackID)
		s.mu.Lock()
		s.engine.Reconciler().Attach(join.TrackID, client.player)
		s.mu.Unlock()
	}

	s.mu.Lock()
	s.clients[client] = true
	s.mu.Unlock()

	logger.Info("客户端加入播放会话",
		logger.String("projectId", projectID),
		logger.Int64("userId", userID),
		logger.String("trackId", join.TrackID))

	go client.writePump()
	client.readPump() // 阻塞到连接断开

	h.leave(s, client)
	return nil
}

// leave 摘除客户端；会话空了就停帧循环
func (h *Hub) leave(s *Session, c *Client) {
	s.mu.Lock()
	delete(s.clients, c)
	if c.player != nil {
		s.engine.Reconciler().Detach(c.player.trackID)
	}
	empty := len(s.clients) == 0
	s.mu.Unlock()

	close(c.send)

	if empty {
		h.mu.Lock()
		delete(h.sessions, s.projectID)
		h.mu.Unlock()
		s.close()
		logger.Info("播放会话结束", logger.String("projectId", s.projectID))
	}
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// readPump 读循环：解析消息并交给会话处理
func (c *Client) readPump() {
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("会话连接异常断开", logger.ErrorField(err))
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Debug("会话消息解析失败", logger.ErrorField(err))
			continue
		}
		c.session.handleMessage(c, &msg)
	}
}

// writePump 写循环：从发送通道刷消息，定期 ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
