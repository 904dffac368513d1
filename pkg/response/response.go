package response

import (
	"net/http"
	"time"

	"friends-server/internal/model"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`            // 状态码：0表示成功，其他表示错误
	Message string      `json:"message"`         // 响应消息
	Data    interface{} `json:"data,omitempty"`  // 响应数据
	Error   string      `json:"error,omitempty"` // 错误详情（仅在开发环境显示）
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 带自定义消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: message,
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 400错误
func BadRequest(c *gin.Context, message string) {
	Error(c, 400, message)
}

// Unauthorized 401错误
func Unauthorized(c *gin.Context, message string) {
	Error(c, 401, message)
}

// NotFound 404错误
func NotFound(c *gin.Context, message string) {
	Error(c, 404, message)
}

// InternalError 500错误
func InternalError(c *gin.Context, message string) {
	Error(c, 500, message)
}

// ProfileInfo 用户资料（隐藏敏感字段）
type ProfileInfo struct {
	UID       string `json:"uid"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Name      string `json:"name,omitempty"`
	CreatedAt string `json:"created_at"`
}

// FilterProfileInfo 过滤用户资料，隐藏密码哈希
func FilterProfileInfo(p *model.Profile) *ProfileInfo {
	if p == nil {
		return nil
	}

	return &ProfileInfo{
		UID:       p.UID,
		Email:     p.Email,
		Username:  p.Username,
		Name:      p.Name,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}

// LoginResponse 登录响应
type LoginResponse struct {
	User        *ProfileInfo `json:"user"`
	AccessToken string       `json:"access_token"`
}

// RegisterResponse 注册响应
type RegisterResponse struct {
	User        *ProfileInfo `json:"user"`
	AccessToken string       `json:"access_token"`
}

// RelationshipInfo 关系记录响应
type RelationshipInfo struct {
	FromUID   string `json:"from_uid"`
	ToUID     string `json:"to_uid"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// FilterRelationshipInfo 过滤关系记录
func FilterRelationshipInfo(r *model.Relationship) *RelationshipInfo {
	if r == nil {
		return nil
	}

	info := &RelationshipInfo{
		FromUID:   r.FromUID,
		ToUID:     r.ToUID,
		Status:    r.Status,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
	if r.UpdatedAt != nil {
		info.UpdatedAt = r.UpdatedAt.Format(time.RFC3339)
	}
	return info
}

// FilterRelationshipList 过滤关系记录列表
func FilterRelationshipList(records []*model.Relationship) []*RelationshipInfo {
	infos := make([]*RelationshipInfo, 0, len(records))
	for _, r := range records {
		infos = append(infos, FilterRelationshipInfo(r))
	}
	return infos
}

// MessageInfo 消息响应
type MessageInfo struct {
	ID        string `json:"id"`
	FromUID   string `json:"from_uid"`
	ToUID     string `json:"to_uid"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// FilterMessageInfo 过滤消息
func FilterMessageInfo(m *model.Message) *MessageInfo {
	if m == nil {
		return nil
	}

	return &MessageInfo{
		ID:        m.ID,
		FromUID:   m.FromUID,
		ToUID:     m.ToUID,
		Text:      m.Text,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}

// FilterMessageList 过滤消息列表
func FilterMessageList(messages []*model.Message) []*MessageInfo {
	infos := make([]*MessageInfo, 0, len(messages))
	for _, m := range messages {
		infos = append(infos, FilterMessageInfo(m))
	}
	return infos
}
