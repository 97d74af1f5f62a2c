package request

// LoginRequest 登录请求，请求体为 zlib 压缩的 JSON
// 使用位置:
//   - internal/handler/auth_handler.go: LoginHandler
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=32"`
	Password string `json:"password" binding:"required,max=128"`
	// Cookie 为 true 时同时以 Set-Cookie 下发 token
	Cookie bool `json:"cookie"`
}

// LoginMeta 登录时记录到会话的客户端信息
type LoginMeta struct {
	UserAgent string
	IPAddress string
}
