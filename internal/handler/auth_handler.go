// Package handler 提供 HTTP 请求处理器
// 本文件处理登录请求
package handler

import (
	"context"
	"net/http"

	"chat_gateway_server/internal/codec"
	"chat_gateway_server/internal/dto/request"
	"chat_gateway_server/internal/dto/respond"
	"chat_gateway_server/internal/infrastructure/middleware"
	"chat_gateway_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// LoginService 登录
type LoginService interface {
	Login(ctx context.Context, req request.LoginRequest, meta request.LoginMeta) (string, error)
}

// CookieOptions 登录 cookie 属性
type CookieOptions struct {
	Domain string
	MaxAge int // 秒
	Secure bool
}

// AuthHandler 认证请求处理器
type AuthHandler struct {
	svc    LoginService
	cookie CookieOptions
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(svc LoginService, cookie CookieOptions) *AuthHandler {
	return &AuthHandler{svc: svc, cookie: cookie}
}

// Login 用户名密码登录
// POST /auth/login
// 请求体: zlib 压缩的 request.LoginRequest
// 响应: respond.LoginRespond；凭据错误时为 respond.LoginFailRespond
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := codec.DecodeZlibJSON(c.Request.Body, &req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := validateStruct(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	token, err := h.svc.Login(c.Request.Context(), req, request.LoginMeta{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		if errorx.HasCode(err, errorx.CodeInvalidPassword) {
			c.JSON(http.StatusUnauthorized, respond.LoginFailRespond{Ok: 0, Error: errorx.ErrInvalidCredentials.Msg})
			return
		}
		HandleErrorWithStatus(c, http.StatusInternalServerError, err)
		return
	}

	if req.Cookie {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.TokenCookie, token, h.cookie.MaxAge, "/", h.cookie.Domain, h.cookie.Secure, true)
	}
	c.JSON(http.StatusOK, respond.LoginRespond{Token: token})
}
