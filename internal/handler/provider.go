// Package handler 提供 HTTP 请求处理器
// 本文件定义 Handler 聚合结构和构造函数
package handler

// Handlers 聚合所有 Handler 实例，Router 层通过此结构访问各个 Handler
type Handlers struct {
	Auth *AuthHandler
	Ws   *WsHandler
}

// NewHandlers 聚合已构造的 Handler
func NewHandlers(auth *AuthHandler, ws *WsHandler) *Handlers {
	return &Handlers{Auth: auth, Ws: ws}
}
