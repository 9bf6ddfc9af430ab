package public

import (
	"github.com/storefront-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserLogin 调用外部认证端点登录
func (h *Handler) UserLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request", err)
		return
	}

	ok, err := h.SessionStore.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to persist session", err)
		return
	}
	if !ok {
		msg := h.SessionStore.Err()
		if msg == "" {
			msg = "Login failed"
		}
		response.Unauthorized(c, msg)
		return
	}

	response.Success(c, gin.H{
		"user":          h.SessionStore.User(),
		"authenticated": true,
	})
}

// UserLogout 登出并删除持久化凭证
func (h *Handler) UserLogout(c *gin.Context) {
	if err := h.SessionStore.Logout(c.Request.Context()); err != nil {
		respondError(c, response.CodeInternal, "failed to clear session", err)
		return
	}
	response.Success(c, gin.H{"authenticated": false})
}

// GetCurrentUser 获取当前会话用户
func (h *Handler) GetCurrentUser(c *gin.Context) {
	response.Success(c, gin.H{
		"user":          h.SessionStore.User(),
		"authenticated": h.SessionStore.IsAuthenticated(),
	})
}
