// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"chat_gateway_server/internal/handler"

	"github.com/gin-gonic/gin"
)

// Router 持有 Handler 聚合和认证中间件
type Router struct {
	handlers *handler.Handlers
	auth     gin.HandlerFunc
}

// NewRouter 创建路由管理器
// auth: 认证中间件，挂在需要登录的路由组上
func NewRouter(handlers *handler.Handlers, auth gin.HandlerFunc) *Router {
	return &Router{handlers: handlers, auth: auth}
}

// RegisterRoutes 注册所有路由
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	rt.RegisterAuthRoutes(r.Group("/auth"))

	authed := r.Group("/")
	authed.Use(rt.auth)
	rt.RegisterWebSocketRoutes(authed)
	r.GET("/ws/stats", rt.handlers.Ws.Stats)
}
