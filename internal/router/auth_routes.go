package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes 注册认证相关路由（无需登录）
func (rt *Router) RegisterAuthRoutes(rg *gin.RouterGroup) {
	// POST /auth/login - 用户名密码登录，请求体为 zlib 压缩的 JSON
	rg.POST("/login", rt.handlers.Auth.Login)
}
