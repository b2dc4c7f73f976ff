package session

import (
	"encoding/json"
	"sync"
	"time"
)

// RemotePlayer 把一条 WebSocket 连接背后的浏览器媒体元素
// 映射成协调器眼中的 Player：命令下行，位置上报上行
//
// Position/IsPlaying 读的是播放器最近一次上报的状态，
// Seek/Play/Pause 向连接推送控制命令。命令发出后等待下一次上报
// 更新本地影子状态，期间协调器看到的仍是旧值——漂移门限吸收了这段延迟。
type RemotePlayer struct {
	mu       sync.RWMutex
	client   *Client
	position float64
	playing  bool
	trackID  string
}

// newRemotePlayer 创建远端播放器影子
func newRemotePlayer(client *Client, trackID string) *RemotePlayer {
	return &RemotePlayer{client: client, trackID: trackID}
}

// Position 播放器最近上报的位置（秒）
func (p *RemotePlayer) Position() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.position
}

// IsPlaying 播放器最近上报的播放状态
func (p *RemotePlayer) IsPlaying() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.playing
}

// Seek 命令播放器定位，并乐观更新影子位置
func (p *RemotePlayer) Seek(t float64) {
	p.mu.Lock()
	p.position = t
	p.mu.Unlock()
	p.command(MsgTypePlayerSeek, PlayerCommandData{Position: t})
}

// Play 命令播放器开始播放
func (p *RemotePlayer) Play() {
	p.mu.Lock()
	p.playing = true
	p.mu.Unlock()
	p.command(MsgTypePlayerPlay, PlayerCommandData{})
}

// Pause 命令播放器暂停
func (p *RemotePlayer) Pause() {
	p.mu.Lock()
	p.playing = false
	p.mu.Unlock()
	p.command(MsgTypePlayerPause, PlayerCommandData{})
}

// report 播放器上报真实状态，刷新影子
func (p *RemotePlayer) report(position float64, playing bool) {
	p.mu.Lock()
	p.position = position
	p.playing = playing
	p.mu.Unlock()
}

func (p *RemotePlayer) command(msgType MessageType, data PlayerCommandData) {
	payload, _ := json.Marshal(data)
	msg := WSMessage{
		Type:      msgType,
		Data:      payload,
		Timestamp: time.Now().UnixMilli(),
	}
	p.client.trySend(msg)
}
