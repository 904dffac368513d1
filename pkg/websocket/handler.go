package websocket

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"friends-server/config"
	"friends-server/internal/model"
	"friends-server/internal/service"
	"friends-server/pkg/jwt"
	"friends-server/pkg/redis"
	"friends-server/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许跨域
	},
}

// ChatHandler 会话实时订阅的WebSocket入口
// 连接即订阅：打开连接时建立ChatService订阅，连接断开时取消订阅
type ChatHandler struct {
	chatService *service.ChatService
	jwtService  *jwt.JWTService
	wsConfig    config.WebSocketConfig
}

// NewChatHandler 创建ChatHandler实例
func NewChatHandler(chatService *service.ChatService, jwtService *jwt.JWTService, wsConfig config.WebSocketConfig) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		jwtService:  jwtService,
		wsConfig:    wsConfig,
	}
}

// snapshotPayload 推送给客户端的会话快照
type snapshotPayload struct {
	Type           string                  `json:"type"`
	ConversationID string                  `json:"conversation_id"`
	Messages       []*response.MessageInfo `json:"messages"`
}

// Subscribe 处理 GET /ws/chats/:other_uid
// token通过query参数或Sec-WebSocket-Protocol传递
func (h *ChatHandler) Subscribe(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Sec-WebSocket-Protocol"), "Bearer ")
	}
	if token == "" {
		response.Unauthorized(c, "缺少token")
		return
	}

	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		response.Unauthorized(c, "token无效或已过期")
		return
	}
	uid := claims.Subject
	if uid == "" {
		response.Unauthorized(c, "token无效")
		return
	}
	username := ""
	if claims.Data != nil {
		if u, ok := claims.Data["username"].(string); ok {
			username = u
		}
	}

	otherUID := c.Param("other_uid")
	if otherUID == "" || otherUID == uid {
		response.BadRequest(c, "会话对象无效")
		return
	}

	// 回显子协议，避免客户端提示 "Server sent no subprotocol"
	respHeader := http.Header{}
	if protocol := c.GetHeader("Sec-WebSocket-Protocol"); protocol != "" {
		respHeader.Set("Sec-WebSocket-Protocol", protocol)
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, respHeader)
	if err != nil {
		return
	}

	conversationID := h.chatService.ConversationKey(uid, otherUID)
	client := &Client{
		UID:  uid,
		Conn: conn,
		Send: make(chan []byte, 256),
	}
	GetManager().AddClient(client)

	// 连接建立后标记用户在线
	_ = redis.SetUserPresence(uid, username, "online")

	// 写协程 + 定时发送ping心跳
	go func() {
		ticker := time.NewTicker(h.wsConfig.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case msg, ok := <-client.Send:
				if !ok {
					return
				}
				_ = conn.WriteMessage(websocket.TextMessage, msg)
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
					return
				}
			}
		}
	}()

	// 建立会话订阅：初始快照和每次新消息都推送完整升序列表
	cancel, err := h.chatService.SubscribeMessages(conversationID, func(messages []*model.Message) {
		payload, err := json.Marshal(snapshotPayload{
			Type:           "snapshot",
			ConversationID: conversationID,
			Messages:       response.FilterMessageList(messages),
		})
		if err != nil {
			return
		}
		select {
		case client.Send <- payload:
		default:
			// 发送缓冲已满，丢弃本次快照，下一个事件会补上
		}
	})
	if err != nil {
		GetManager().RemoveClient(client)
		_ = conn.Close()
		return
	}

	defer func() {
		// 会话页面关闭：先停订阅，再摘连接、标记离线
		cancel()
		GetManager().RemoveClient(client)
		_ = redis.SetUserPresence(uid, username, "offline")
		_ = conn.Close()
	}()

	// 读循环：只用于心跳和断线检测
	_ = conn.SetReadDeadline(time.Now().Add(h.wsConfig.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(h.wsConfig.ReadTimeout))
		_ = redis.RefreshUserPresence(uid)
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.wsConfig.ReadTimeout))
	}
}

// NotifyFriendRequest 向接收方推送好友请求通知（尽力而为）
func NotifyFriendRequest(fromUID, fromUsername, toUID string) {
	payload, err := json.Marshal(map[string]interface{}{
		"type":          "friend_request",
		"from_uid":      fromUID,
		"from_username": fromUsername,
	})
	if err != nil {
		return
	}
	GetManager().SendToUser(toUID, payload)
}
