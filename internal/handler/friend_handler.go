package handler

import (
	"errors"

	"friends-server/internal/model"
	"friends-server/internal/service"
	"friends-server/pkg/jwt"
	"friends-server/pkg/response"
	"friends-server/pkg/websocket"

	"github.com/gin-gonic/gin"
)

type FriendHandler struct {
	relationshipService *service.RelationshipService
}

func NewFriendHandler(relationshipService *service.RelationshipService) *FriendHandler {
	return &FriendHandler{relationshipService: relationshipService}
}

// SendRequest 发送好友请求
func (h *FriendHandler) SendRequest(c *gin.Context) {
	type req struct {
		ToUID string `json:"to_uid" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	uid := jwt.GetUID(c)
	if err := h.relationshipService.SendFriendRequest(c.Request.Context(), uid, r.ToUID); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	// 对方在线时推送通知（尽力而为）
	websocket.NotifyFriendRequest(uid, jwt.GetUsername(c), r.ToUID)

	response.SuccessWithMessage(c, "好友请求已发送", nil)
}

// Accept 接受好友请求
func (h *FriendHandler) Accept(c *gin.Context) {
	uid := jwt.GetUID(c)
	otherUID := c.Param("uid")

	if err := h.relationshipService.AcceptFriendRequest(c.Request.Context(), uid, otherUID); err != nil {
		if errors.Is(err, model.ErrRelationshipNotFound) {
			response.NotFound(c, "好友请求不存在")
			return
		}
		response.InternalError(c, "接受好友请求失败")
		return
	}

	response.SuccessWithMessage(c, "已接受好友请求", nil)
}

// Reject 拒绝好友请求
func (h *FriendHandler) Reject(c *gin.Context) {
	uid := jwt.GetUID(c)
	otherUID := c.Param("uid")

	if err := h.relationshipService.RejectFriendRequest(c.Request.Context(), uid, otherUID); err != nil {
		if errors.Is(err, model.ErrRelationshipNotFound) {
			response.NotFound(c, "好友请求不存在")
			return
		}
		response.InternalError(c, "拒绝好友请求失败")
		return
	}

	response.SuccessWithMessage(c, "已拒绝好友请求", nil)
}

// Incoming 获取收到的待处理好友请求
func (h *FriendHandler) Incoming(c *gin.Context) {
	uid := jwt.GetUID(c)

	records, err := h.relationshipService.GetIncomingRequests(c.Request.Context(), uid)
	if err != nil {
		response.InternalError(c, "查询好友请求失败")
		return
	}

	response.Success(c, response.FilterRelationshipList(records))
}

// Sent 获取发出的好友请求
func (h *FriendHandler) Sent(c *gin.Context) {
	uid := jwt.GetUID(c)

	records, err := h.relationshipService.GetSentRequests(c.Request.Context(), uid)
	if err != nil {
		response.InternalError(c, "查询好友请求失败")
		return
	}

	response.Success(c, response.FilterRelationshipList(records))
}

// List 获取好友列表（带对方资料）
func (h *FriendHandler) List(c *gin.Context) {
	uid := jwt.GetUID(c)

	friends, err := h.relationshipService.GetFriends(c.Request.Context(), uid)
	if err != nil {
		response.InternalError(c, "查询好友列表失败")
		return
	}

	response.Success(c, friends)
}
