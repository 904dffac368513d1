package handler

import (
	"friends-server/internal/service"
	"friends-server/pkg/jwt"
	"friends-server/pkg/response"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// SendMessage 发送消息
// 空白消息按无操作处理，不算失败
func (h *ChatHandler) SendMessage(c *gin.Context) {
	type req struct {
		Text string `json:"text"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	uid := jwt.GetUID(c)
	otherUID := c.Param("other_uid")
	if otherUID == "" || otherUID == uid {
		response.BadRequest(c, "会话对象无效")
		return
	}

	conversationID := h.chatService.ConversationKey(uid, otherUID)
	message, err := h.chatService.SendMessage(c.Request.Context(), conversationID, uid, otherUID, r.Text)
	if err != nil {
		response.InternalError(c, "发送消息失败")
		return
	}
	if message == nil {
		// 空白消息
		response.SuccessWithMessage(c, "空消息已忽略", nil)
		return
	}

	response.Success(c, response.FilterMessageInfo(message))
}

// GetMessages 拉取会话消息快照（按创建时间升序）
func (h *ChatHandler) GetMessages(c *gin.Context) {
	uid := jwt.GetUID(c)
	otherUID := c.Param("other_uid")
	if otherUID == "" || otherUID == uid {
		response.BadRequest(c, "会话对象无效")
		return
	}

	conversationID := h.chatService.ConversationKey(uid, otherUID)
	messages, err := h.chatService.GetMessages(c.Request.Context(), conversationID)
	if err != nil {
		response.InternalError(c, "拉取会话消息失败")
		return
	}

	response.Success(c, response.FilterMessageList(messages))
}
