package handler

import (
	"time"

	"friends-server/internal/service"
	"friends-server/pkg/jwt"
	"friends-server/pkg/redis"
	"friends-server/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService   *service.UserService
	searchService *service.SearchService
}

func NewUserHandler(userService *service.UserService, searchService *service.SearchService) *UserHandler {
	return &UserHandler{
		userService:   userService,
		searchService: searchService,
	}
}

// Register 用户注册
func (h *UserHandler) Register(c *gin.Context) {
	type req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Name     string `json:"name"`
		Password string `json:"password" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	profile, token, err := h.userService.Register(c.Request.Context(), r.Username, r.Email, r.Name, r.Password)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.SuccessWithMessage(c, "注册成功", &response.RegisterResponse{
		User:        response.FilterProfileInfo(profile),
		AccessToken: token,
	})
}

// Login 用户登录
func (h *UserHandler) Login(c *gin.Context) {
	type req struct {
		UsernameOrEmail string `json:"usernameOrEmail" binding:"required"`
		Password        string `json:"password" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	profile, token, err := h.userService.Login(c.Request.Context(), r.UsernameOrEmail, r.Password)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	response.SuccessWithMessage(c, "登录成功", &response.LoginResponse{
		User:        response.FilterProfileInfo(profile),
		AccessToken: token,
	})
}

// GetProfile 获取当前用户资料（需要JWT认证）
// 附带当前token的过期时间，客户端据此决定何时重新登录
func (h *UserHandler) GetProfile(c *gin.Context) {
	uid := jwt.GetUID(c)

	profile, err := h.userService.GetProfile(c.Request.Context(), uid)
	if err != nil {
		response.NotFound(c, "用户不存在")
		return
	}

	data := gin.H{
		"user": response.FilterProfileInfo(profile),
	}
	if claims := jwt.GetClaims(c); claims != nil && claims.ExpiresAt != nil {
		data["token_expires_at"] = claims.ExpiresAt.Time.Format(time.RFC3339)
	}
	response.Success(c, data)
}

// GetUserStatus 查询指定用户的在线状态（需要JWT认证）
func (h *UserHandler) GetUserStatus(c *gin.Context) {
	uid := c.Param("uid")
	if uid == "" {
		response.BadRequest(c, "uid is required")
		return
	}

	online, err := redis.IsUserOnline(uid)
	if err != nil {
		response.InternalError(c, "查询在线状态失败")
		return
	}

	result := gin.H{
		"uid":    uid,
		"online": online,
	}

	// 在线时补充详细信息
	if online {
		if presence, err := redis.GetUserPresence(uid); err == nil {
			result["username"] = presence.Username
			result["last_seen"] = presence.LastSeen.Format(time.RFC3339)
		}
	}

	response.Success(c, result)
}

// SearchUsers 用户搜索（需要JWT认证）
// 空搜索词返回空列表
func (h *UserHandler) SearchUsers(c *gin.Context) {
	term := c.Query("q")

	profiles, err := h.searchService.SearchUsers(c.Request.Context(), term)
	if err != nil {
		response.InternalError(c, "搜索失败")
		return
	}

	results := make([]*response.ProfileInfo, 0, len(profiles))
	for _, p := range profiles {
		results = append(results, response.FilterProfileInfo(p))
	}
	response.Success(c, results)
}
