// Package handler 提供 HTTP 请求处理器
// 本文件处理 WebSocket 网关连接
package handler

import (
	"net/http"

	"chat_gateway_server/internal/gateway"
	"chat_gateway_server/internal/infrastructure/middleware"
	"chat_gateway_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// maxClientFrame 客户端帧上限（压缩后）
const maxClientFrame = 64 << 10

// WsOptions 升级参数
type WsOptions struct {
	ReadBufferSize  int
	WriteBufferSize int
	AllowOrigins    []string // 含 "*" 时不校验 Origin
}

// WsHandler 网关连接处理器
type WsHandler struct {
	deps     gateway.Deps
	upgrader websocket.Upgrader
}

// NewWsHandler 创建网关处理器，deps 在所有连接间共享
func NewWsHandler(deps gateway.Deps, opts WsOptions) *WsHandler {
	return &WsHandler{
		deps: deps,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  opts.ReadBufferSize,
			WriteBufferSize: opts.WriteBufferSize,
			CheckOrigin:     originChecker(opts.AllowOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// Connect 建立网关连接
// GET /ws（需要认证）
// 无会话记录返回 401；初始状态构建失败返回 503，不升级连接
func (h *WsHandler) Connect(c *gin.Context) {
	principal, ok := middleware.GetAuthUser(c)
	if !ok {
		HandleErrorWithStatus(c, http.StatusUnauthorized, errorx.ErrUnauthorized)
		return
	}
	session, err := gateway.NewSession(principal, h.deps)
	if err != nil {
		HandleErrorWithStatus(c, http.StatusUnauthorized, err)
		return
	}
	if _, err := session.Prepare(c.Request.Context()); err != nil {
		HandleErrorWithStatus(c, http.StatusServiceUnavailable, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 已写回错误响应
		zap.L().Debug("websocket upgrade failed", zap.String("user_id", principal.User.ID), zap.Error(err))
		return
	}
	conn.SetReadLimit(maxClientFrame)

	if err := session.Serve(c.Request.Context(), conn); err != nil {
		zap.L().Info("gateway session ended early", zap.String("user_id", principal.User.ID), zap.Error(err))
	}
}

// Stats 本实例在线连接数
// GET /ws/stats
func (h *WsHandler) Stats(c *gin.Context) {
	HandleSuccess(c, gin.H{"connections": h.deps.Hub.Count()})
}
