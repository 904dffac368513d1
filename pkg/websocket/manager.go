package websocket

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Client 代表一条WebSocket连接
// 每打开一个会话页面建立一条连接，同一用户可以有多条

type Client struct {
	UID  string
	Conn *websocket.Conn
	Send chan []byte
}

// Manager 管理所有在线连接
// 并发安全；按UID索引，用于向指定用户推送通知

type Manager struct {
	clients map[string]map[*Client]struct{} // uid -> 该用户的全部连接
	lock    sync.RWMutex
}

var manager = &Manager{
	clients: make(map[string]map[*Client]struct{}),
}

// GetManager 获取全局WebSocket管理器
func GetManager() *Manager {
	return manager
}

// AddClient 添加新连接
func (m *Manager) AddClient(client *Client) {
	m.lock.Lock()
	defer m.lock.Unlock()
	set, ok := m.clients[client.UID]
	if !ok {
		set = make(map[*Client]struct{})
		m.clients[client.UID] = set
	}
	set[client] = struct{}{}
}

// RemoveClient 移除连接
func (m *Manager) RemoveClient(client *Client) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if set, ok := m.clients[client.UID]; ok {
		if _, exists := set[client]; exists {
			close(client.Send)
			delete(set, client)
		}
		if len(set) == 0 {
			delete(m.clients, client.UID)
		}
	}
}

// SendToUser 向指定用户的全部连接推送消息
// 用户不在线则直接丢弃，客户端上线后通过拉取接口补齐
func (m *Manager) SendToUser(uid string, msg []byte) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	for client := range m.clients[uid] {
		select {
		case client.Send <- msg:
		default:
			// 发送缓冲已满，可能连接已断开
		}
	}
}

// IsOnline 判断用户是否有活跃连接
func (m *Manager) IsOnline(uid string) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.clients[uid]) > 0
}
