package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterWebSocketRoutes 注册网关连接路由（需要认证）
// 请求示例: ws://host:port/ws，token 取自 cookie 或 Authorization 头
func (rt *Router) RegisterWebSocketRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws", rt.handlers.Ws.Connect)
}
